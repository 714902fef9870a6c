// Package scenario loads the static layout of a world: grid size, walls,
// pre-placed buildings with starting inventories, loose items, and worker
// spawn points. Layouts are data, not code, so designers can edit them
// without rebuilding the server.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Scenario struct {
	Width  int `yaml:"width"`
	Height int `yaml:"height"`

	Walls     []Rect         `yaml:"walls,omitempty"`
	Buildings []BuildingSpec `yaml:"buildings,omitempty"`
	Items     []ItemSpec     `yaml:"items,omitempty"`
	Workers   []WorkerSpec   `yaml:"workers,omitempty"`
}

type Rect struct {
	X int `yaml:"x"`
	Y int `yaml:"y"`
	W int `yaml:"w"`
	H int `yaml:"h"`
}

type BuildingSpec struct {
	Category  string         `yaml:"category"`
	X         int            `yaml:"x"`
	Y         int            `yaml:"y"`
	Inventory map[string]int `yaml:"inventory,omitempty"`
}

type ItemSpec struct {
	Type string `yaml:"type"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

type WorkerSpec struct {
	Name string `yaml:"name"`
	X    int    `yaml:"x"`
	Y    int    `yaml:"y"`
}

func Load(path string) (Scenario, error) {
	var s Scenario
	raw, err := os.ReadFile(path)
	if err != nil {
		return s, err
	}
	if err := yaml.Unmarshal(raw, &s); err != nil {
		return s, fmt.Errorf("scenario.yaml: %w", err)
	}
	if err := s.Validate(); err != nil {
		return s, fmt.Errorf("scenario.yaml: %w", err)
	}
	return s, nil
}

func (s Scenario) Validate() error {
	if s.Width <= 0 || s.Height <= 0 {
		return fmt.Errorf("width/height must be > 0")
	}
	for _, b := range s.Buildings {
		if b.Category == "" {
			return fmt.Errorf("building at (%d,%d) has no category", b.X, b.Y)
		}
		if !s.inBounds(b.X, b.Y) {
			return fmt.Errorf("building %s at (%d,%d) out of bounds", b.Category, b.X, b.Y)
		}
	}
	for _, it := range s.Items {
		if it.Type == "" {
			return fmt.Errorf("item at (%d,%d) has no type", it.X, it.Y)
		}
		if !s.inBounds(it.X, it.Y) {
			return fmt.Errorf("item %s at (%d,%d) out of bounds", it.Type, it.X, it.Y)
		}
	}
	for _, wk := range s.Workers {
		if !s.inBounds(wk.X, wk.Y) {
			return fmt.Errorf("worker %q at (%d,%d) out of bounds", wk.Name, wk.X, wk.Y)
		}
	}
	return nil
}

func (s Scenario) inBounds(x, y int) bool {
	return x >= 0 && x < s.Width && y >= 0 && y < s.Height
}
