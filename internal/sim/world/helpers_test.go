package world

import (
	"testing"

	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/behavior"
	"gridhive.ai/internal/sim/tuning"
)

func newTestWorld(t *testing.T) *World {
	t.Helper()
	w, err := New(WorldConfig{
		ID:         "test",
		TickRateHz: 10,
		Width:      24,
		Height:     24,
		Seed:       42,
	}, tuning.Default())
	if err != nil {
		t.Fatalf("world: %v", err)
	}
	return w
}

func stepN(w *World, n int) {
	for i := 0; i < n; i++ {
		w.step(nil, nil, nil, nil)
	}
}

func assignGraph(t *testing.T, w *World, wk *Worker, nodes []behavior.Node) *Cursor {
	t.Helper()
	w.AssignProgram(wk, behavior.NewGraph(nodes))
	return wk.Program
}

func eventsOfType(wk *Worker, typ string) []protocol.Event {
	var out []protocol.Event
	for _, e := range wk.Events {
		if e["type"] == typ {
			out = append(out, e)
		}
	}
	return out
}

func requireFailEvent(t *testing.T, wk *Worker, node, code string) {
	t.Helper()
	fails := eventsOfType(wk, "NODE_FAIL")
	if len(fails) != 1 {
		t.Fatalf("NODE_FAIL events = %d, want exactly 1 (%v)", len(fails), fails)
	}
	e := fails[0]
	if e["node"] != node {
		t.Fatalf("failure node = %v, want %q", e["node"], node)
	}
	got, _ := e["code"].(string)
	if got != code {
		t.Fatalf("failure code = %q, want %q", got, code)
	}
	if !protocol.IsKnownCode(got) {
		t.Fatalf("code %q missing from the error vocabulary", got)
	}
}
