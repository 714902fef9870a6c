package log

import (
	"testing"

	"gridhive.ai/internal/sim/world"
)

func TestTickLog_WriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	w := NewTickLogWriter(dir)

	want := []world.TickLogEntry{
		{
			Tick:   0,
			Joins:  []world.RecordedJoin{{WorkerID: "W000001", Name: "scout"}},
			Digest: "d0",
		},
		{
			Tick: 1,
			Assigns: []world.RecordedAssign{{
				WorkerID: "W000001",
			}},
			Digest: "d1",
		},
		{
			Tick:     2,
			Controls: []world.RecordedControl{{Op: "backend_done"}},
			Leaves:   []string{"W000001"},
			Digest:   "d2",
		},
	}
	for _, e := range want {
		if err := w.WriteTick(e); err != nil {
			t.Fatalf("write tick %d: %v", e.Tick, err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadTickLog(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("entries = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i].Tick != want[i].Tick || got[i].Digest != want[i].Digest {
			t.Fatalf("entry %d = %+v, want %+v", i, got[i], want[i])
		}
	}
	if got[0].Joins[0].Name != "scout" {
		t.Fatalf("join payload lost: %+v", got[0])
	}
	if got[2].Controls[0].Op != "backend_done" || got[2].Leaves[0] != "W000001" {
		t.Fatalf("control/leave payload lost: %+v", got[2])
	}
}

func TestTickLog_EmptyDirReadsNothing(t *testing.T) {
	got, err := ReadTickLog(t.TempDir())
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("entries = %d, want 0", len(got))
	}
}

func TestJSONLZstdWriter_AppendAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	w := NewTickLogWriter(dir)
	if err := w.WriteTick(world.TickLogEntry{Tick: 0, Digest: "a"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// A second writer appends a new zstd frame to the same hourly file.
	w2 := NewTickLogWriter(dir)
	if err := w2.WriteTick(world.TickLogEntry{Tick: 1, Digest: "b"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := w2.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	got, err := ReadTickLog(dir)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(got) != 2 || got[0].Digest != "a" || got[1].Digest != "b" {
		t.Fatalf("entries = %+v", got)
	}
}
