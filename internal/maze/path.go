package maze

import (
	"fmt"
	"strings"
)

// Validate reports whether the open walls form a spanning tree over the grid:
// exactly rows*cols-1 open wall pairs, with every cell reachable from (0,0).
func (e *Engine) Validate() error {
	want := e.rows*e.cols - 1
	if got := e.OpenWalls(); got != want {
		return fmt.Errorf("%w: %d open walls, want %d", ErrNotSpanningTree, got, want)
	}
	if reached := len(e.reachable(0)); reached != len(e.cells) {
		return fmt.Errorf("%w: %d of %d cells reachable", ErrNotSpanningTree, reached, len(e.cells))
	}
	return nil
}

// Path returns the cells on the route from one position to another through
// open walls, both ends included. In a generated maze the route is unique.
// A nil path with no error means to is unreachable from from.
func (e *Engine) Path(from, to Position) ([]Position, error) {
	for _, p := range []Position{from, to} {
		if !e.inBounds(p.Row, p.Col) {
			return nil, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, p.Row, p.Col, e.rows, e.cols)
		}
	}

	start, goal := e.index(from.Row, from.Col), e.index(to.Row, to.Col)
	parent := e.reachable(start)
	if _, ok := parent[goal]; !ok {
		return nil, nil
	}

	var path []Position
	for i := goal; ; i = parent[i] {
		path = append(path, Position{Row: i / e.cols, Col: i % e.cols})
		if i == start {
			break
		}
	}
	for l, r := 0, len(path)-1; l < r; l, r = l+1, r-1 {
		path[l], path[r] = path[r], path[l]
	}
	return path, nil
}

// reachable runs a breadth-first search over open walls from start and
// returns the BFS parent of every reached cell (start maps to itself).
func (e *Engine) reachable(start int) map[int]int {
	parent := map[int]int{start: start}
	queue := []int{start}
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		row, col := current/e.cols, current%e.cols
		for _, d := range directions {
			if e.wall(row, col, d) {
				continue
			}
			next, ok := e.neighbor(row, col, d)
			if !ok {
				continue
			}
			if _, seen := parent[next]; seen {
				continue
			}
			parent[next] = current
			queue = append(queue, next)
		}
	}
	return parent
}

// String renders the maze as ASCII art.
func (e *Engine) String() string {
	var b strings.Builder

	b.WriteString("+" + strings.Repeat("---+", e.cols) + "\n")
	for row := 0; row < e.rows; row++ {
		b.WriteString("|")
		for col := 0; col < e.cols; col++ {
			if e.wall(row, col, East) {
				b.WriteString("   |")
			} else {
				b.WriteString("    ")
			}
		}
		b.WriteString("\n+")
		for col := 0; col < e.cols; col++ {
			if e.wall(row, col, South) {
				b.WriteString("---+")
			} else {
				b.WriteString("   +")
			}
		}
		b.WriteString("\n")
	}
	return b.String()
}
