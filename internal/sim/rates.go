package sim

import "github.com/lhoste/hamlet/internal/catalog"

// Rates is an approximate steady-state per-second flow, for display
// only. Continuous buildings contribute their scaled per-tick rates;
// processors contribute recipe quantities divided by their effective
// cycle seconds. Stalls and caps are ignored, so real throughput can
// be lower.
type Rates struct {
	Production  catalog.Amounts
	Consumption catalog.Amounts
}

// Net returns production minus consumption for a resource.
func (r Rates) Net(res catalog.Resource) float64 {
	return r.Production[res] - r.Consumption[res]
}

// EstimateRates aggregates the per-second rates of all placed buildings.
func EstimateRates(cat *catalog.Catalog, registry *Registry) Rates {
	rates := Rates{
		Production:  make(catalog.Amounts),
		Consumption: make(catalog.Amounts),
	}

	for _, b := range registry.Buildings() {
		def := cat.Building(b.Type)
		if def == nil {
			continue
		}
		mult := def.MultiplierAt(b.Level)

		if def.IsProcessor() {
			perSecond := mult * 1000 / def.Recipe.CycleTimeMs
			for r, q := range def.Recipe.Outputs {
				rates.Production[r] += q * perSecond
			}
			for r, q := range def.Recipe.Inputs {
				rates.Consumption[r] += q * perSecond
			}
			continue
		}

		for r, q := range def.Production {
			rates.Production[r] += q * mult
		}
		for r, q := range def.Consumption {
			rates.Consumption[r] += q
		}
	}
	return rates
}
