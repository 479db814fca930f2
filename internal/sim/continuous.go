package sim

import "github.com/lhoste/hamlet/internal/catalog"

// ContinuousEngine resolves the per-tick net production and consumption
// of every non-processor building.
//
// Every building is evaluated against the tick-start snapshot, and the
// accumulated totals are applied as two batched ledger mutations at the
// end of the tick (consumption, then production). A producer's output
// therefore never extends a consumer's affordability within the same
// tick, which keeps results independent of building order. Under
// contention, affordability is additionally checked against the
// snapshot less amounts already reserved by earlier buildings, so the
// batch can never overdraw the ledger.
type ContinuousEngine struct {
	cat      *catalog.Catalog
	registry *Registry
	ledger   *Ledger
}

// NewContinuousEngine wires the engine to its collaborators.
func NewContinuousEngine(cat *catalog.Catalog, registry *Registry, ledger *Ledger) *ContinuousEngine {
	return &ContinuousEngine{cat: cat, registry: registry, ledger: ledger}
}

// Tick applies one fixed one-second production quantum. The external
// timer may fire faster or slower (speed control), but the quantum
// never changes.
func (e *ContinuousEngine) Tick() {
	snapshot := e.ledger.Snapshot()
	reserved := make(catalog.Amounts)
	totalProduction := make(catalog.Amounts)
	totalConsumption := make(catalog.Amounts)

	for _, b := range e.registry.Buildings() {
		def := e.cat.Building(b.Type)
		if def == nil || def.IsProcessor() {
			continue
		}

		// Consumption does not scale with the upgrade multiplier,
		// only production does.
		if len(def.Consumption) > 0 {
			affordable := true
			for r, q := range def.Consumption {
				if snapshot[r]-reserved[r] < q {
					affordable = false
					break
				}
			}
			if !affordable {
				continue
			}
			for r, q := range def.Consumption {
				reserved[r] += q
				totalConsumption[r] += q
			}
		}

		mult := def.MultiplierAt(b.Level)
		for r, q := range def.Production {
			totalProduction[r] += q * mult
		}
	}

	if !totalConsumption.IsZero() {
		e.ledger.Consume(totalConsumption)
	}
	if !totalProduction.IsZero() {
		e.ledger.Add(totalProduction)
	}
}
