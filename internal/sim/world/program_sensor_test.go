package world

import (
	"errors"
	"strings"
	"testing"
	"time"

	"gridhive.ai/internal/protocol"
	"gridhive.ai/internal/sim/behavior"
)

func sensorGraph() []behavior.Node {
	return []behavior.Node{
		{ID: 1, Type: behavior.TypeSensor, Params: map[string]any{"target": "depot"}, Next: 2},
		{ID: 2, Type: behavior.TypeLog, Params: map[string]any{"message": "after sensor"}, Next: 0},
	}
}

func TestSensor_NoCollaboratorAdvancesImmediately(t *testing.T) {
	w := newTestWorld(t)
	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	c := assignGraph(t, w, wk, sensorGraph())

	stepN(w, 1)
	if got := c.CurrentNodeID(); got != 2 {
		t.Fatalf("without a sensing collaborator the node is a no-op; cursor at %d", got)
	}
}

func TestSensor_ResultLoggedOnceThenAdvances(t *testing.T) {
	w := newTestWorld(t)
	calls := 0
	w.SetSensor(func(category string) (string, error) {
		calls++
		return "reading for " + category, nil
	})
	var lines []string
	w.SetLogSink(func(msg string) { lines = append(lines, msg) })

	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	c := assignGraph(t, w, wk, sensorGraph())

	// The call resolves on a background goroutine; keep ticking until the
	// program drains. Ticks keep elapsing while the call is in flight.
	deadline := time.Now().Add(2 * time.Second)
	for !c.Done && time.Now().Before(deadline) {
		stepN(w, 1)
		time.Sleep(time.Millisecond)
	}

	if !c.Done {
		t.Fatalf("sensor program never finished")
	}
	if calls != 1 {
		t.Fatalf("sensor invoked %d times, want exactly 1", calls)
	}
	var readings []string
	for _, l := range lines {
		if strings.HasPrefix(l, "reading for ") {
			readings = append(readings, l)
		}
	}
	if len(readings) != 1 || readings[0] != "reading for depot" {
		t.Fatalf("log sink readings = %v", readings)
	}
}

func TestSensor_FailureLoggedAndNonFatal(t *testing.T) {
	w := newTestWorld(t)
	w.SetSensor(func(category string) (string, error) {
		return "", errors.New("backend unreachable")
	})
	var lines []string
	w.SetLogSink(func(msg string) { lines = append(lines, msg) })

	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	c := assignGraph(t, w, wk, sensorGraph())

	deadline := time.Now().Add(2 * time.Second)
	for !c.Done && time.Now().Before(deadline) {
		stepN(w, 1)
		time.Sleep(time.Millisecond)
	}

	if !c.Done {
		t.Fatalf("a failing sensor must still complete the node")
	}
	var errs []string
	for _, l := range lines {
		if strings.HasPrefix(l, "sensor error: ") {
			errs = append(errs, l)
		}
	}
	if len(errs) != 1 {
		t.Fatalf("want exactly one error-shaped log line, got %v", errs)
	}
	if errs[0] != "sensor error: backend unreachable" {
		t.Fatalf("error line = %q", errs[0])
	}
	requireFailEvent(t, wk, "sensor", protocol.ErrSensor)
}

func TestSensor_TeardownWhileInFlightIsHarmless(t *testing.T) {
	w := newTestWorld(t)
	release := make(chan struct{})
	w.SetSensor(func(category string) (string, error) {
		<-release
		return "late", nil
	})

	wk := w.addWorker("t", Vec2i{X: 5, Y: 5})
	assignGraph(t, w, wk, sensorGraph())

	stepN(w, 1) // issues the call
	w.step(nil, []string{wk.ID}, nil, nil)
	if _, ok := w.workers[wk.ID]; ok {
		t.Fatalf("worker should have left")
	}

	// The callback resolves into the abandoned cursor mailbox; nothing to
	// assert beyond "the tick loop keeps going".
	close(release)
	stepN(w, 5)
}
