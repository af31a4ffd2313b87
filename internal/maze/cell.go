// Package maze provides perfect-maze generation over a fixed rectangular grid.
package maze

// Direction names one of the four sides of a cell.
type Direction int

const (
	North Direction = iota
	South
	East
	West
)

// String returns a human-readable direction name.
func (d Direction) String() string {
	switch d {
	case North:
		return "north"
	case South:
		return "south"
	case East:
		return "east"
	case West:
		return "west"
	default:
		return "unknown"
	}
}

// Opposite returns the side facing d on the neighboring cell.
func (d Direction) Opposite() Direction {
	switch d {
	case North:
		return South
	case South:
		return North
	case East:
		return West
	default:
		return East
	}
}

// delta returns the row and column offset of the neighbor in direction d.
func (d Direction) delta() (int, int) {
	switch d {
	case North:
		return -1, 0
	case South:
		return 1, 0
	case East:
		return 0, 1
	default:
		return 0, -1
	}
}

var directions = [4]Direction{North, South, East, West}

// Position identifies a cell in the grid.
type Position struct {
	Row int
	Col int
}

// Cell is a read-only snapshot of one grid position and its walls.
// A true wall flag means the wall is closed.
type Cell struct {
	Row int
	Col int

	North bool
	South bool
	East  bool
	West  bool
}

// Wall reports whether the wall on side d is closed.
func (c Cell) Wall(d Direction) bool {
	switch d {
	case North:
		return c.North
	case South:
		return c.South
	case East:
		return c.East
	default:
		return c.West
	}
}

// OpenSides returns the number of open walls around the cell.
func (c Cell) OpenSides() int {
	n := 0
	for _, d := range directions {
		if !c.Wall(d) {
			n++
		}
	}
	return n
}
