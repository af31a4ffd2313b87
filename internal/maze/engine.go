package maze

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"

	"github.com/samdwyer/mazeview/internal/telemetry"
)

var (
	// ErrInvalidDimension is returned by New when rows or cols is less than one.
	ErrInvalidDimension = errors.New("maze: invalid dimension")
	// ErrOutOfBounds is returned when a position falls outside the grid.
	ErrOutOfBounds = errors.New("maze: position out of bounds")
	// ErrNotSpanningTree is returned by Validate when the open walls do not form a spanning tree.
	ErrNotSpanningTree = errors.New("maze: open walls do not form a spanning tree")
)

// cell is the stored state for one grid position. Only the south and east
// walls are stored; a cell's north and west walls are its neighbors' south
// and east walls, so the two sides of a wall can never disagree.
type cell struct {
	south   bool
	east    bool
	visited bool
}

// Engine owns a rows x cols grid and carves perfect mazes into it.
// An Engine is not safe for concurrent use.
type Engine struct {
	rows  int
	cols  int
	cells []cell // row-major

	rng        *rand.Rand
	generation uint64
	id         uuid.UUID
	logger     *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithSeed makes the sequence of generated mazes reproducible.
func WithSeed(seed int64) Option {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand sets the random source used for carving.
func WithRand(rng *rand.Rand) Option {
	return func(e *Engine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// WithLogger sets the logger used for generation events.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// New creates an engine with every wall closed. No maze is carved until Generate is called.
func New(rows, cols int, opts ...Option) (*Engine, error) {
	if rows < 1 || cols < 1 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimension, rows, cols)
	}

	e := &Engine{
		rows:   rows,
		cols:   cols,
		cells:  make([]cell, rows*cols),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.reset()
	return e, nil
}

// Rows returns the number of grid rows.
func (e *Engine) Rows() int { return e.rows }

// Cols returns the number of grid columns.
func (e *Engine) Cols() int { return e.cols }

// Generation returns how many times Generate has completed. Zero means the
// grid is still fully walled.
func (e *Engine) Generation() uint64 { return e.generation }

// ID identifies the most recently generated maze. It is uuid.Nil before the first Generate.
func (e *Engine) ID() uuid.UUID { return e.id }

// Generate carves a new random maze using a randomized depth-first search
// with an explicit stack. Each call resets the grid first and advances the
// random stream, so consecutive calls produce different mazes.
func (e *Engine) Generate(ctx context.Context) {
	tracer := telemetry.Tracer("maze")
	_, span := tracer.Start(ctx, "maze.generate")
	defer span.End()

	startTime := time.Now()
	e.reset()

	origin := e.rng.Intn(len(e.cells))
	e.cells[origin].visited = true
	stack := make([]int, 0, len(e.cells))
	stack = append(stack, origin)

	var candidates [4]Direction
	opened := 0
	for len(stack) > 0 {
		current := stack[len(stack)-1]
		row, col := current/e.cols, current%e.cols

		n := 0
		for _, d := range directions {
			next, ok := e.neighbor(row, col, d)
			if ok && !e.cells[next].visited {
				candidates[n] = d
				n++
			}
		}
		if n == 0 {
			stack = stack[:len(stack)-1]
			continue
		}

		d := candidates[e.rng.Intn(n)]
		next, _ := e.neighbor(row, col, d)
		e.setWall(row, col, d, false)
		e.cells[next].visited = true
		stack = append(stack, next)
		opened++
	}

	e.generation++
	e.id = uuid.New()

	span.SetAttributes(
		attribute.String("maze.id", e.id.String()),
		attribute.Int("maze.rows", e.rows),
		attribute.Int("maze.cols", e.cols),
		attribute.Int("maze.open_walls", opened),
		attribute.Int64("maze.generation", int64(e.generation)),
		attribute.Int64("maze.generation_ms", time.Since(startTime).Milliseconds()),
	)
	e.logger.Debug("maze generated",
		"id", e.id, "rows", e.rows, "cols", e.cols, "open_walls", opened, "generation", e.generation)
}

// CellAt returns a snapshot of the cell at row, col.
func (e *Engine) CellAt(row, col int) (Cell, error) {
	if !e.inBounds(row, col) {
		return Cell{}, fmt.Errorf("%w: (%d,%d) not in %dx%d", ErrOutOfBounds, row, col, e.rows, e.cols)
	}
	return Cell{
		Row:   row,
		Col:   col,
		North: e.wall(row, col, North),
		South: e.wall(row, col, South),
		East:  e.wall(row, col, East),
		West:  e.wall(row, col, West),
	}, nil
}

// OpenWalls returns the number of open wall pairs in the grid.
func (e *Engine) OpenWalls() int {
	n := 0
	for row := 0; row < e.rows; row++ {
		for col := 0; col < e.cols; col++ {
			if !e.wall(row, col, South) {
				n++
			}
			if !e.wall(row, col, East) {
				n++
			}
		}
	}
	return n
}

// reset closes every wall and clears visited markers.
func (e *Engine) reset() {
	for i := range e.cells {
		e.cells[i] = cell{south: true, east: true}
	}
}

func (e *Engine) inBounds(row, col int) bool {
	return row >= 0 && row < e.rows && col >= 0 && col < e.cols
}

func (e *Engine) index(row, col int) int {
	return row*e.cols + col
}

// neighbor returns the index of the cell next to (row, col) in direction d.
func (e *Engine) neighbor(row, col int, d Direction) (int, bool) {
	dr, dc := d.delta()
	r, c := row+dr, col+dc
	if !e.inBounds(r, c) {
		return 0, false
	}
	return e.index(r, c), true
}

// wall reports whether the wall on side d of (row, col) is closed. Walls on
// the grid boundary are always closed.
func (e *Engine) wall(row, col int, d Direction) bool {
	switch d {
	case North:
		if row == 0 {
			return true
		}
		return e.cells[e.index(row-1, col)].south
	case South:
		if row == e.rows-1 {
			return true
		}
		return e.cells[e.index(row, col)].south
	case East:
		if col == e.cols-1 {
			return true
		}
		return e.cells[e.index(row, col)].east
	default:
		if col == 0 {
			return true
		}
		return e.cells[e.index(row, col-1)].east
	}
}

// setWall sets the wall shared by (row, col) and its neighbor in direction d.
// The neighbor must exist.
func (e *Engine) setWall(row, col int, d Direction, closed bool) {
	switch d {
	case North:
		e.cells[e.index(row-1, col)].south = closed
	case South:
		e.cells[e.index(row, col)].south = closed
	case East:
		e.cells[e.index(row, col)].east = closed
	case West:
		e.cells[e.index(row, col-1)].east = closed
	}
}
