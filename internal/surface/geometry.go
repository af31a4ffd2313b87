package surface

import (
	"fmt"

	"github.com/samdwyer/mazeview/internal/gfx"
	"github.com/samdwyer/mazeview/internal/maze"
)

// Layout controls how the grid is mapped onto the drawable.
type Layout struct {
	// Margin is the empty border around the maze, in pixels.
	Margin float32
	// WallRatio is the wall thickness as a fraction of the smaller cell side.
	WallRatio float32
	// Square forces square cells, centring the maze in the drawable.
	Square bool
}

// geometry is the set of quads for one frame of a given maze and size.
type geometry struct {
	floor []gfx.Quad
	walls []gfx.Quad
	path  []gfx.Quad
}

type geometryKey struct {
	generation    uint64
	width, height int
	showPath      bool
}

// buildGeometry reads every cell of m and lays out floor, wall and path quads
// for a width x height drawable. Each wall is emitted once: the north and
// west walls of every cell, plus the south walls of the last row and the east
// walls of the last column.
func buildGeometry(m Maze, width, height int, layout Layout, showPath bool) (geometry, error) {
	rows, cols := m.Rows(), m.Cols()
	availW := float32(width) - 2*layout.Margin
	availH := float32(height) - 2*layout.Margin
	cw, ch := availW/float32(cols), availH/float32(rows)
	if cw <= 0 || ch <= 0 {
		return geometry{}, nil
	}
	if layout.Square {
		cw = min(cw, ch)
		ch = cw
	}
	ox := (float32(width) - cw*float32(cols)) / 2
	oy := (float32(height) - ch*float32(rows)) / 2
	t := max(1, layout.WallRatio*min(cw, ch))
	half := t / 2

	g := geometry{
		floor: []gfx.Quad{{X: ox, Y: oy, W: cw * float32(cols), H: ch * float32(rows)}},
		walls: make([]gfx.Quad, 0, rows*cols*2+rows+cols),
	}
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			c, err := m.CellAt(row, col)
			if err != nil {
				return geometry{}, fmt.Errorf("read cell (%d,%d): %w", row, col, err)
			}
			x0 := ox + float32(col)*cw
			y0 := oy + float32(row)*ch
			if c.North {
				g.walls = append(g.walls, gfx.Quad{X: x0 - half, Y: y0 - half, W: cw + t, H: t})
			}
			if c.West {
				g.walls = append(g.walls, gfx.Quad{X: x0 - half, Y: y0 - half, W: t, H: ch + t})
			}
			if row == rows-1 && c.South {
				g.walls = append(g.walls, gfx.Quad{X: x0 - half, Y: y0 + ch - half, W: cw + t, H: t})
			}
			if col == cols-1 && c.East {
				g.walls = append(g.walls, gfx.Quad{X: x0 + cw - half, Y: y0 - half, W: t, H: ch + t})
			}
		}
	}

	if showPath {
		route, err := m.Path(maze.Position{}, maze.Position{Row: rows - 1, Col: cols - 1})
		if err != nil {
			return geometry{}, fmt.Errorf("solve path: %w", err)
		}
		g.path = pathQuads(route, ox, oy, cw, ch)
	}
	return g, nil
}

// pathQuads joins the centres of consecutive cells on route with bars a
// quarter of a cell thick.
func pathQuads(route []maze.Position, ox, oy, cw, ch float32) []gfx.Quad {
	if len(route) == 0 {
		return nil
	}
	p := max(1, min(cw, ch)/4)
	center := func(pos maze.Position) (float32, float32) {
		return ox + (float32(pos.Col)+0.5)*cw, oy + (float32(pos.Row)+0.5)*ch
	}

	quads := make([]gfx.Quad, 0, len(route))
	x, y := center(route[0])
	quads = append(quads, gfx.Quad{X: x - p/2, Y: y - p/2, W: p, H: p})
	for i := 1; i < len(route); i++ {
		ax, ay := center(route[i-1])
		bx, by := center(route[i])
		quads = append(quads, gfx.Quad{
			X: min(ax, bx) - p/2,
			Y: min(ay, by) - p/2,
			W: abs(bx-ax) + p,
			H: abs(by-ay) + p,
		})
	}
	return quads
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
