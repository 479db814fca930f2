package scenario

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lhoste/hamlet/internal/catalog"
)

func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.New(
		[]*catalog.ResourceDef{
			{ID: "gold", Name: "Gold", Currency: true},
			{ID: "wheat", Name: "Wheat", BaseCap: 100},
		},
		[]*catalog.BuildingDef{
			{
				Type: "wheat_farm", Name: "Wheat Farm",
				Cost:       catalog.Amounts{"gold": 10},
				Production: catalog.Amounts{"wheat": 1},
				Upgrades: []catalog.UpgradeTier{
					{Cost: catalog.Amounts{"gold": 50}, Mult: 2},
				},
				Footprint: 1,
			},
		},
	)
	if err != nil {
		t.Fatalf("catalog: %v", err)
	}
	return cat
}

func writeScenario(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scenario.yaml")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write scenario: %v", err)
	}
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeScenario(t, "ticks: 5\n")

	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Rows != 16 || s.Cols != 16 || s.TickMs != 1000 {
		t.Errorf("defaults = %d x %d @ %dms", s.Rows, s.Cols, s.TickMs)
	}
}

func TestLoadRejectsUnknownOp(t *testing.T) {
	path := writeScenario(t, `
ticks: 1
actions:
  - { tick: 0, op: teleport }
`)
	if _, err := Load(path); err == nil {
		t.Error("want error for unknown op")
	}
}

func TestRunReplaysActions(t *testing.T) {
	path := writeScenario(t, `
ticks: 3
start:
  gold: 50
actions:
  - { tick: 0, op: place, building: wheat_farm, row: 1, col: 1 }
  - { tick: 2, op: sell, resource: wheat, qty: 2, price: 3 }
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	simulation, outcomes, err := Run(s, testCatalog(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(outcomes) != 2 {
		t.Fatalf("outcomes = %d, want 2", len(outcomes))
	}
	for _, o := range outcomes {
		if !o.OK {
			t.Errorf("action at tick %d failed: %s", o.Tick, o.Detail)
		}
	}

	// 50 - 10 cost + 6 from selling the first two ticks' wheat.
	if got := simulation.Ledger().Get("gold"); got != 46 {
		t.Errorf("gold = %g, want 46", got)
	}
	// Grew 3, sold 2.
	if got := simulation.Ledger().Get("wheat"); got != 1 {
		t.Errorf("wheat = %g, want 1", got)
	}
}

func TestRunRecordsFailedActions(t *testing.T) {
	path := writeScenario(t, `
ticks: 1
start:
  gold: 5
actions:
  - { tick: 0, op: place, building: wheat_farm, row: 1, col: 1 }
`)
	s, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	_, outcomes, err := Run(s, testCatalog(t))
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if len(outcomes) != 1 || outcomes[0].OK {
		t.Fatalf("unaffordable placement should be a failed outcome: %+v", outcomes)
	}
	if outcomes[0].Detail == "" {
		t.Error("failed outcome should carry the core's error message")
	}
}
