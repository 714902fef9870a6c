package world

import "testing"

func TestFindPath_StraightLine(t *testing.T) {
	w := newTestWorld(t)
	path := w.FindPath(Vec2i{X: 2, Y: 2}, Vec2i{X: 6, Y: 2})

	if len(path) == 0 {
		t.Fatalf("expected a path")
	}
	// BFS over a 4-connected open grid: the shortest route stops one cell
	// short of the target.
	if got := len(path); got != 3 {
		t.Fatalf("path length = %d, want 3", got)
	}
	if last := path[len(path)-1]; Chebyshev(last, Vec2i{X: 6, Y: 2}) > 1 {
		t.Fatalf("path ends at %+v, not adjacent to the target", last)
	}
	// Consecutive cells differ by exactly one 4-neighbour step.
	cur := Vec2i{X: 2, Y: 2}
	for _, p := range path {
		if Manhattan(cur, p) != 1 {
			t.Fatalf("non-adjacent step %+v -> %+v", cur, p)
		}
		cur = p
	}
}

func TestFindPath_AlreadyAdjacentIsNil(t *testing.T) {
	w := newTestWorld(t)
	if p := w.FindPath(Vec2i{X: 5, Y: 5}, Vec2i{X: 5, Y: 5}); p != nil {
		t.Fatalf("same cell: got %v, want nil", p)
	}
	if p := w.FindPath(Vec2i{X: 5, Y: 5}, Vec2i{X: 6, Y: 6}); p != nil {
		t.Fatalf("diagonal neighbour: got %v, want nil", p)
	}
}

func TestFindPath_RoutesAroundWalls(t *testing.T) {
	w := newTestWorld(t)
	// Vertical wall at x=5, y=0..9, with a gap at y=10.
	for y := 0; y < 10; y++ {
		w.walls[Vec2i{X: 5, Y: y}] = true
	}

	path := w.FindPath(Vec2i{X: 2, Y: 2}, Vec2i{X: 9, Y: 2})
	if len(path) == 0 {
		t.Fatalf("expected a detour path through the gap")
	}
	for _, p := range path {
		if w.walls[p] {
			t.Fatalf("path crosses a wall at %+v", p)
		}
	}
	// The detour must reach at least the gap row.
	maxY := 0
	for _, p := range path {
		if p.Y > maxY {
			maxY = p.Y
		}
	}
	if maxY < 10 {
		t.Fatalf("path never reached the gap row (maxY=%d)", maxY)
	}
}

func TestFindPath_UnreachableIsNil(t *testing.T) {
	w := newTestWorld(t)
	// Box the target in completely.
	target := Vec2i{X: 15, Y: 15}
	for dx := -2; dx <= 2; dx++ {
		for dy := -2; dy <= 2; dy++ {
			if Chebyshev(Vec2i{}, Vec2i{X: dx, Y: dy}) == 2 {
				w.walls[Vec2i{X: target.X + dx, Y: target.Y + dy}] = true
			}
		}
	}

	if p := w.FindPath(Vec2i{X: 2, Y: 2}, target); p != nil {
		t.Fatalf("walled-off target: got %v, want nil", p)
	}
}

func TestFindPath_BuildingsBlock(t *testing.T) {
	w := newTestWorld(t)
	w.SpawnEntity("kiln", Vec2i{X: 4, Y: 2})

	path := w.FindPath(Vec2i{X: 2, Y: 2}, Vec2i{X: 8, Y: 2})
	if len(path) == 0 {
		t.Fatalf("expected a path around the building")
	}
	for _, p := range path {
		if p == (Vec2i{X: 4, Y: 2}) {
			t.Fatalf("path crosses the building cell")
		}
	}
}
