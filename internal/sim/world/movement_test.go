package world

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestMovement_ProgressAndInterpolation(t *testing.T) {
	w := newTestWorld(t)
	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	wk.StartPath([]Vec2i{{X: 6, Y: 5}, {X: 7, Y: 5}})

	// MoveSpeed is 0.25 per tick: four ticks per cell. The grid position
	// holds until a full cell is consumed while the render position slides.
	stepN(w, 1)
	if wk.Pos != (Vec2i{X: 5, Y: 5}) {
		t.Fatalf("grid position moved early: %+v", wk.Pos)
	}
	if !almostEqual(wk.RenderX, 5.25) || !almostEqual(wk.RenderY, 5.0) {
		t.Fatalf("render = (%v,%v), want (5.25,5)", wk.RenderX, wk.RenderY)
	}

	stepN(w, 3)
	if wk.Pos != (Vec2i{X: 6, Y: 5}) {
		t.Fatalf("pos = %+v after 4 ticks, want (6,5)", wk.Pos)
	}
	if wk.Activity != ActivityMoving {
		t.Fatalf("activity=%s mid-route, want MOVING", wk.Activity)
	}

	stepN(w, 4)
	if wk.Pos != (Vec2i{X: 7, Y: 5}) {
		t.Fatalf("pos = %+v after 8 ticks, want (7,5)", wk.Pos)
	}
	if wk.IsMoving() {
		t.Fatalf("path should be exhausted")
	}
	if wk.Activity != ActivityIdle {
		t.Fatalf("activity=%s at path end, want IDLE", wk.Activity)
	}
	if !almostEqual(wk.RenderX, 7.0) || !almostEqual(wk.RenderY, 5.0) {
		t.Fatalf("render = (%v,%v), want (7,5)", wk.RenderX, wk.RenderY)
	}
}

func TestMovement_PendingBranchTruePathContinuesMoving(t *testing.T) {
	w := newTestWorld(t)
	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	wk.Carried = "gear"
	wk.Branch = &PendingBranch{
		At:        Vec2i{X: 6, Y: 5},
		Condition: "carrying_item",
		TruePath:  []Vec2i{{X: 6, Y: 6}},
		FalsePath: []Vec2i{{X: 6, Y: 4}},
	}
	wk.StartPath([]Vec2i{{X: 6, Y: 5}})

	stepN(w, 4)
	if wk.Pos != (Vec2i{X: 6, Y: 5}) {
		t.Fatalf("pos = %+v, want the fork cell", wk.Pos)
	}
	// The fork resolved on the same tick the path emptied: the worker is
	// already en route on the true sub-path, never idle in between.
	if wk.Activity != ActivityMoving {
		t.Fatalf("activity=%s at the fork, want MOVING", wk.Activity)
	}
	if wk.Branch != nil {
		t.Fatalf("branch should be consumed")
	}

	stepN(w, 4)
	if wk.Pos != (Vec2i{X: 6, Y: 6}) {
		t.Fatalf("pos = %+v, want the true-branch cell (6,6)", wk.Pos)
	}
	if wk.Activity != ActivityIdle {
		t.Fatalf("activity=%s after the sub-path, want IDLE", wk.Activity)
	}
}

func TestMovement_PendingBranchFalsePath(t *testing.T) {
	w := newTestWorld(t)
	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	wk.Branch = &PendingBranch{
		At:        Vec2i{X: 6, Y: 5},
		Condition: "carrying_item",
		TruePath:  []Vec2i{{X: 6, Y: 6}},
		FalsePath: []Vec2i{{X: 6, Y: 4}},
	}
	wk.StartPath([]Vec2i{{X: 6, Y: 5}})

	stepN(w, 8)
	if wk.Pos != (Vec2i{X: 6, Y: 4}) {
		t.Fatalf("pos = %+v, want the false-branch cell (6,4)", wk.Pos)
	}
}

func TestMovement_EmptyBranchPathGoesIdleAtNode(t *testing.T) {
	w := newTestWorld(t)
	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	wk.Branch = &PendingBranch{
		At:        Vec2i{X: 6, Y: 5},
		Condition: "carrying_item",
		TruePath:  []Vec2i{{X: 6, Y: 6}},
		// FalsePath empty: nothing to continue on when the condition fails.
	}
	wk.StartPath([]Vec2i{{X: 6, Y: 5}})

	stepN(w, 4)
	if wk.Branch != nil {
		t.Fatalf("branch should be consumed")
	}
	if wk.Activity != ActivityIdle {
		t.Fatalf("activity=%s, want IDLE when the chosen fork is empty", wk.Activity)
	}
}

func TestMovement_StaleBranchDiscarded(t *testing.T) {
	w := newTestWorld(t)
	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	wk.Carried = "gear"
	wk.Branch = &PendingBranch{
		At:       Vec2i{X: 20, Y: 20}, // not where this path ends
		TruePath: []Vec2i{{X: 6, Y: 6}},
	}
	wk.StartPath([]Vec2i{{X: 6, Y: 5}})

	stepN(w, 4)
	if wk.Branch != nil {
		t.Fatalf("a branch recorded for another cell must be discarded")
	}
	if wk.Activity != ActivityIdle {
		t.Fatalf("activity=%s, want IDLE (no fork taken)", wk.Activity)
	}
	if wk.Pos != (Vec2i{X: 6, Y: 5}) {
		t.Fatalf("pos = %+v, want (6,5)", wk.Pos)
	}
}
