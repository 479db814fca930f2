package sim

import (
	"math"

	"github.com/lhoste/hamlet/internal/catalog"
)

// buildingSource is the slice of the registry the cap calculator needs.
type buildingSource interface {
	Buildings() []*Building
}

// CapCalculator derives per-resource storage capacity from the base cap
// in the resource definition plus the contribution of every placed
// storage building, scaled by its upgrade multiplier.
//
// The cap table is cached and invalidated on every building-list
// mutation (placement, upgrade, removal), not on a cheaper fingerprint
// such as a storage-building count. Keying invalidation on count alone
// would miss upgrades of an existing storage building and serve a stale
// cap.
type CapCalculator struct {
	cat    *catalog.Catalog
	source buildingSource

	table map[catalog.Resource]float64
}

// NewCapCalculator creates a calculator; bind attaches the registry
// once it exists.
func NewCapCalculator(cat *catalog.Catalog) *CapCalculator {
	return &CapCalculator{cat: cat}
}

func (c *CapCalculator) bind(source buildingSource) {
	c.source = source
	c.table = nil
}

// Cap returns the current capacity for a resource. Currency resources
// are uncapped (+Inf), as is any resource unknown to the catalog.
func (c *CapCalculator) Cap(r catalog.Resource) float64 {
	rd := c.cat.Resource(r)
	if rd == nil || rd.Currency {
		return math.Inf(1)
	}
	if c.table == nil {
		c.recompute()
	}
	return c.table[r]
}

// Invalidate drops the cached table, forcing recomputation on next access.
func (c *CapCalculator) Invalidate() {
	c.table = nil
}

func (c *CapCalculator) recompute() {
	c.table = make(map[catalog.Resource]float64)
	for _, r := range c.cat.Resources() {
		rd := c.cat.Resource(r)
		if rd.Currency {
			continue
		}
		c.table[r] = rd.BaseCap
	}

	if c.source == nil {
		return
	}
	for _, b := range c.source.Buildings() {
		def := c.cat.Building(b.Type)
		if def == nil || !def.IsStorage() {
			continue
		}
		mult := def.MultiplierAt(b.Level)
		for r, bonus := range def.StorageBonus {
			c.table[r] += bonus * mult
		}
	}
}
