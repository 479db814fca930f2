// Package scenario runs scripted, headless simulations: a YAML file
// describes starting resources and a timed list of player actions, and
// the runner replays them tick by tick against the core.
package scenario

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Scenario is a headless simulation script.
type Scenario struct {
	Rows    int                `yaml:"rows"`
	Cols    int                `yaml:"cols"`
	Ticks   int                `yaml:"ticks"`
	TickMs  int                `yaml:"tick_ms"`
	Start   map[string]float64 `yaml:"start"`
	Actions []Action           `yaml:"actions"`
}

// Action is one scripted player action, executed just before the tick
// it is scheduled on.
type Action struct {
	Tick int    `yaml:"tick"`
	Op   string `yaml:"op"`

	// place
	Building string `yaml:"building,omitempty"`
	Row      int    `yaml:"row,omitempty"`
	Col      int    `yaml:"col,omitempty"`

	// upgrade / demolish
	Index int `yaml:"index,omitempty"`

	// sell
	Resource string  `yaml:"resource,omitempty"`
	Qty      float64 `yaml:"qty,omitempty"`
	Price    float64 `yaml:"price,omitempty"`
}

// Supported action ops.
const (
	OpPlace    = "place"
	OpUpgrade  = "upgrade"
	OpDemolish = "demolish"
	OpSell     = "sell"
)

// Load reads and parses a scenario file, applying defaults for omitted
// grid and timer settings.
func Load(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if s.Rows == 0 {
		s.Rows = 16
	}
	if s.Cols == 0 {
		s.Cols = 16
	}
	if s.TickMs == 0 {
		s.TickMs = 1000
	}

	for i, a := range s.Actions {
		switch a.Op {
		case OpPlace, OpUpgrade, OpDemolish, OpSell:
		default:
			return nil, fmt.Errorf("action %d: unknown op %q", i, a.Op)
		}
	}
	return &s, nil
}
