package grid

import (
	"testing"

	"github.com/foamkit/diffuse/vecmath"
)

func TestBuildAndLookup(t *testing.T) {
	g := New(1.0)
	pos := []vecmath.Vec{
		{X: 0.1, Y: 0.1, Z: 0.1},
		{X: 0.9, Y: 0.1, Z: 0.1},
		{X: 5.0, Y: 5.0, Z: 5.0},
	}
	g.Build(pos)

	if len(g.NonEmptyCells()) != 2 {
		t.Fatalf("expected 2 non-empty cells, got %d", len(g.NonEmptyCells()))
	}

	c0 := g.CellOf(pos[0])
	c1 := g.CellOf(pos[1])
	if c0 != c1 {
		t.Errorf("points 0 and 1 should share a cell, got %v vs %v", c0, c1)
	}

	bucket := g.Particles(c0)
	if len(bucket) != 2 {
		t.Errorf("expected 2 particles in shared cell, got %d", len(bucket))
	}
}

func TestSurroundingOnlyOccupied(t *testing.T) {
	g := New(1.0)
	pos := []vecmath.Vec{
		{X: 0.1, Y: 0.1, Z: 0.1},
		{X: 5.0, Y: 5.0, Z: 5.0},
	}
	g.Build(pos)

	c := g.CellOf(pos[0])
	sur := g.Surrounding(c)
	if len(sur) != 1 {
		t.Fatalf("expected only the occupied cell itself, got %d cells", len(sur))
	}
	if sur[0] != c {
		t.Errorf("expected surrounding to contain self cell %v, got %v", c, sur[0])
	}
}

func TestRebuildClearsPreviousFrame(t *testing.T) {
	g := New(1.0)
	g.Build([]vecmath.Vec{{X: 0, Y: 0, Z: 0}})
	if len(g.NonEmptyCells()) != 1 {
		t.Fatalf("expected 1 cell after first build")
	}
	g.Build([]vecmath.Vec{{X: 10, Y: 10, Z: 10}, {X: 20, Y: 20, Z: 20}})
	if len(g.NonEmptyCells()) != 2 {
		t.Fatalf("expected 2 cells after rebuild, got %d", len(g.NonEmptyCells()))
	}
	old := CellKey{X: 0, Y: 0, Z: 0}
	if len(g.Particles(old)) != 0 {
		t.Errorf("stale cell should be empty after rebuild")
	}
}
