package scenario

import (
	"fmt"
	"time"

	"github.com/lhoste/hamlet/internal/catalog"
	"github.com/lhoste/hamlet/internal/sim"
)

// Outcome records how one scripted action resolved.
type Outcome struct {
	Tick   int
	Action Action
	OK     bool
	Detail string
}

// Run replays the scenario against a fresh simulation and returns it
// along with the outcome of every scripted action. Validation failures
// inside the core (cannot afford, invalid placement, ...) are recorded
// as failed outcomes, not errors; only a malformed script errors.
func Run(s *Scenario, cat *catalog.Catalog) (*sim.Simulation, []Outcome, error) {
	return RunWith(s, cat, nil)
}

// RunWith is Run with a setup hook invoked before any tick, so callers
// can subscribe to core events first.
func RunWith(s *Scenario, cat *catalog.Catalog, setup func(*sim.Simulation)) (*sim.Simulation, []Outcome, error) {
	start := make(catalog.Amounts, len(s.Start))
	for r, q := range s.Start {
		start[catalog.Resource(r)] = q
	}

	simulation := sim.New(cat, sim.Config{Rows: s.Rows, Cols: s.Cols, Start: start})
	if setup != nil {
		setup(simulation)
	}
	elapsed := time.Duration(s.TickMs) * time.Millisecond

	var outcomes []Outcome
	for tick := 0; tick < s.Ticks; tick++ {
		for _, a := range s.Actions {
			if a.Tick != tick {
				continue
			}
			outcomes = append(outcomes, apply(simulation, tick, a))
		}
		simulation.Tick(elapsed)
	}
	return simulation, outcomes, nil
}

func apply(simulation *sim.Simulation, tick int, a Action) Outcome {
	out := Outcome{Tick: tick, Action: a}

	switch a.Op {
	case OpPlace:
		res := simulation.Registry().Place(catalog.BuildingType(a.Building), a.Row, a.Col)
		out.OK = res.Success
		if res.Success {
			out.Detail = fmt.Sprintf("placed %s at (%d,%d) as #%d", a.Building, a.Row, a.Col, res.Index)
		} else {
			out.Detail = res.Error
		}

	case OpUpgrade:
		res := simulation.Registry().Upgrade(a.Index)
		out.OK = res.Success
		if res.Success {
			out.Detail = fmt.Sprintf("upgraded building #%d", a.Index)
		} else {
			out.Detail = res.Error
		}

	case OpDemolish:
		res := simulation.Registry().Remove(a.Index)
		out.OK = res.Success
		if res.Success {
			out.Detail = fmt.Sprintf("demolished building #%d, refund %v", a.Index, res.Refund)
		} else {
			out.Detail = "unknown building"
		}

	case OpSell:
		res := simulation.Ledger().Sell(catalog.Resource(a.Resource), a.Qty, a.Price)
		out.OK = res.Success
		if res.Success {
			out.Detail = fmt.Sprintf("sold %g %s for %g", a.Qty, a.Resource, res.GoldReceived)
		} else {
			out.Detail = res.Error
		}
	}
	return out
}
