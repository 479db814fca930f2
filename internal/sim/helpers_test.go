package sim

import (
	"testing"
	"time"

	"github.com/lhoste/hamlet/internal/catalog"
)

// testCatalog builds a small in-code catalog covering every building
// flavor: continuous producers and consumers, a processor, a storage
// building, a market and a wide-footprint gold producer.
func testCatalog(t *testing.T) *catalog.Catalog {
	t.Helper()

	resources := []*catalog.ResourceDef{
		{ID: "gold", Name: "Gold", Currency: true},
		{ID: "wheat", Name: "Wheat", BaseCap: 100},
		{ID: "flour", Name: "Flour", BaseCap: 50},
		{ID: "wood", Name: "Wood", BaseCap: 200},
	}

	buildings := []*catalog.BuildingDef{
		{
			Type: "wheat_farm", Name: "Wheat Farm",
			Cost:       catalog.Amounts{"gold": 10},
			Production: catalog.Amounts{"wheat": 1},
			Upgrades: []catalog.UpgradeTier{
				{Cost: catalog.Amounts{"gold": 50}, Mult: 2},
				{Cost: catalog.Amounts{"gold": 200}, Mult: 4},
			},
			Footprint: 1,
		},
		{
			Type: "stable", Name: "Stable",
			Cost:        catalog.Amounts{"gold": 20},
			Production:  catalog.Amounts{"gold": 2},
			Consumption: catalog.Amounts{"wheat": 1},
			Upgrades: []catalog.UpgradeTier{
				{Cost: catalog.Amounts{"gold": 100}, Mult: 3},
			},
			Footprint: 1,
		},
		{
			Type: "mill", Name: "Mill",
			Cost: catalog.Amounts{"gold": 25},
			Recipe: &catalog.Recipe{
				Inputs:      catalog.Amounts{"wheat": 2},
				Outputs:     catalog.Amounts{"flour": 1},
				CycleTimeMs: 10000,
			},
			Upgrades: []catalog.UpgradeTier{
				{Cost: catalog.Amounts{"gold": 100}, Mult: 2},
			},
			Footprint: 1,
		},
		{
			Type: "granary", Name: "Granary",
			Cost:         catalog.Amounts{"gold": 30},
			StorageBonus: catalog.Amounts{"wheat": 100, "flour": 50},
			Upgrades: []catalog.UpgradeTier{
				{Cost: catalog.Amounts{"gold": 80}, Mult: 2},
			},
			Footprint: 1,
		},
		{
			Type: "market", Name: "Market",
			Cost:        catalog.Amounts{"gold": 50},
			Unlock:      catalog.Amounts{"gold": 150},
			Market:      true,
			Consumption: catalog.Amounts{"flour": 1},
			Production:  catalog.Amounts{"gold": 5},
			Upgrades: []catalog.UpgradeTier{
				{Cost: catalog.Amounts{"gold": 120}, Mult: 2},
			},
			Footprint: 1,
		},
		{
			Type: "manor", Name: "Manor",
			Cost:       catalog.Amounts{"gold": 20},
			Production: catalog.Amounts{"gold": 1},
			Footprint:  2,
		},
	}

	cat, err := catalog.New(resources, buildings)
	if err != nil {
		t.Fatalf("test catalog: %v", err)
	}
	return cat
}

// newTestSim creates an 8x8 simulation with the given starting resources.
func newTestSim(t *testing.T, start catalog.Amounts) *Simulation {
	t.Helper()
	return New(testCatalog(t), Config{Rows: 8, Cols: 8, Start: start})
}

// tickSeconds runs n one-second ticks.
func tickSeconds(s *Simulation, n int) {
	for i := 0; i < n; i++ {
		s.Tick(time.Second)
	}
}

// mustPlace places a building or fails the test.
func mustPlace(t *testing.T, s *Simulation, bt catalog.BuildingType, row, col int) PlaceResult {
	t.Helper()
	res := s.Registry().Place(bt, row, col)
	if !res.Success {
		t.Fatalf("place %s at (%d,%d): %s", bt, row, col, res.Error)
	}
	return res
}

// collectEvents subscribes a recorder and returns the backing slice.
func collectEvents(s *Simulation) *[]Event {
	var events []Event
	s.Subscribe(func(e Event) {
		events = append(events, e)
	})
	return &events
}
