package maze

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestPathConnectsCorners(t *testing.T) {
	e, _ := New(9, 11, WithSeed(2024))
	e.Generate(context.Background())

	from, to := Position{0, 0}, Position{8, 10}
	path, err := e.Path(from, to)
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if len(path) == 0 {
		t.Fatal("Path returned no route in a generated maze")
	}
	if path[0] != from || path[len(path)-1] != to {
		t.Errorf("path runs %v -> %v, want %v -> %v", path[0], path[len(path)-1], from, to)
	}

	// Each step must cross an open wall between adjacent cells.
	for i := 1; i < len(path); i++ {
		a, b := path[i-1], path[i]
		c, _ := e.CellAt(a.Row, a.Col)
		var d Direction
		switch {
		case b.Row == a.Row-1 && b.Col == a.Col:
			d = North
		case b.Row == a.Row+1 && b.Col == a.Col:
			d = South
		case b.Col == a.Col+1 && b.Row == a.Row:
			d = East
		case b.Col == a.Col-1 && b.Row == a.Row:
			d = West
		default:
			t.Fatalf("step %d: %v -> %v is not adjacent", i, a, b)
		}
		if c.Wall(d) {
			t.Errorf("step %d: %v -> %v crosses a closed %s wall", i, a, b, d)
		}
	}
}

func TestPathSameCell(t *testing.T) {
	e, _ := New(3, 3, WithSeed(1))
	e.Generate(context.Background())

	path, err := e.Path(Position{1, 1}, Position{1, 1})
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if len(path) != 1 {
		t.Errorf("len(path) = %d, want 1", len(path))
	}
}

func TestPathUnreachableBeforeGenerate(t *testing.T) {
	e, _ := New(3, 3)
	path, err := e.Path(Position{0, 0}, Position{2, 2})
	if err != nil {
		t.Fatalf("Path: %v", err)
	}
	if path != nil {
		t.Errorf("Path on a fully walled grid = %v, want nil", path)
	}
}

func TestPathOutOfBounds(t *testing.T) {
	e, _ := New(3, 3)
	if _, err := e.Path(Position{0, 0}, Position{3, 0}); !errors.Is(err, ErrOutOfBounds) {
		t.Errorf("Path error = %v, want ErrOutOfBounds", err)
	}
}

func TestValidateFailsBeforeGenerate(t *testing.T) {
	e, _ := New(2, 3)
	if err := e.Validate(); !errors.Is(err, ErrNotSpanningTree) {
		t.Errorf("Validate on walled grid error = %v, want ErrNotSpanningTree", err)
	}

	single, _ := New(1, 1)
	if err := single.Validate(); err != nil {
		t.Errorf("Validate on 1x1 grid: %v", err)
	}
}

func TestString(t *testing.T) {
	e, _ := New(2, 3)
	want := strings.Join([]string{
		"+---+---+---+",
		"|   |   |   |",
		"+---+---+---+",
		"|   |   |   |",
		"+---+---+---+",
		"",
	}, "\n")
	if got := e.String(); got != want {
		t.Errorf("String() =\n%s\nwant\n%s", got, want)
	}

	e.Generate(context.Background())
	lines := strings.Split(strings.TrimSuffix(e.String(), "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("String() has %d lines, want 5", len(lines))
	}
	for i, line := range lines {
		if len(line) != 13 {
			t.Errorf("line %d has width %d, want 13", i, len(line))
		}
	}
}
