package tuning

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*Tuning)
	}{
		{"zero tick rate", func(tn *Tuning) { tn.TickRateHz = 0 }},
		{"zero move speed", func(tn *Tuning) { tn.MoveSpeed = 0 }},
		{"move speed above one cell", func(tn *Tuning) { tn.MoveSpeed = 1.5 }},
		{"negative dwell", func(tn *Tuning) { tn.PickupDwellTicks = -1 }},
	}
	for _, tc := range cases {
		tn := Default()
		tc.mut(&tn)
		if err := tn.Validate(); err == nil {
			t.Fatalf("%s: expected an error", tc.name)
		}
	}
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	data := []byte("tick_rate_hz: 20\nmove_speed: 0.5\nplace_dwell_ticks: 5\n")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	tn, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if tn.TickRateHz != 20 || tn.MoveSpeed != 0.5 || tn.PlaceDwellTicks != 5 {
		t.Fatalf("overrides not applied: %+v", tn)
	}
	// Untouched fields keep their defaults.
	if tn.PickupDwellTicks != 15 || tn.TickLogEveryTicks != 1 {
		t.Fatalf("defaults lost: %+v", tn)
	}
}

func TestLoadRejectsInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tuning.yaml")
	if err := os.WriteFile(path, []byte("move_speed: 4.0\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("out-of-range move_speed should fail to load")
	}
}
