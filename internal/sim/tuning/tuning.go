package tuning

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Tuning struct {
	ProtocolVersion string `yaml:"protocol_version"`

	TickRateHz int `yaml:"tick_rate_hz"`

	// Worker movement: fraction of a cell traversed per tick.
	MoveSpeed float64 `yaml:"move_speed"`

	// Fixed visual dwells, in ticks, before a multi-tick node advances.
	PickupDwellTicks int `yaml:"pickup_dwell_ticks"`
	DropDwellTicks   int `yaml:"drop_dwell_ticks"`
	PlaceDwellTicks  int `yaml:"place_dwell_ticks"`

	TickLogEveryTicks int `yaml:"tick_log_every_ticks"`
}

func Default() Tuning {
	return Tuning{
		ProtocolVersion:   "1.0",
		TickRateHz:        10,
		MoveSpeed:         0.25,
		PickupDwellTicks:  15,
		DropDwellTicks:    15,
		PlaceDwellTicks:   20,
		TickLogEveryTicks: 1,
	}
}

func Load(path string) (Tuning, error) {
	t := Default()
	raw, err := os.ReadFile(path)
	if err != nil {
		return t, err
	}
	if err := yaml.Unmarshal(raw, &t); err != nil {
		return t, fmt.Errorf("tuning.yaml: %w", err)
	}
	return t, t.Validate()
}

func (t Tuning) Validate() error {
	if t.TickRateHz <= 0 {
		return fmt.Errorf("tick_rate_hz must be > 0")
	}
	if t.MoveSpeed <= 0 || t.MoveSpeed > 1 {
		return fmt.Errorf("move_speed must be in (0,1]")
	}
	if t.PickupDwellTicks < 0 || t.DropDwellTicks < 0 || t.PlaceDwellTicks < 0 {
		return fmt.Errorf("dwell ticks must be >= 0")
	}
	return nil
}
