package sim

import "github.com/lhoste/hamlet/internal/catalog"

// Snapshot is the full mutable state of a simulation as a plain,
// JSON-marshalable value. It is the persistence boundary: the core
// exports it and restores from it, and the surrounding save system
// decides where it lives.
type Snapshot struct {
	Tick      int                   `json:"tick"`
	Resources map[string]float64    `json:"resources"`
	Buildings []Building            `json:"buildings"`
	Cycles    map[uint64]CycleState `json:"cycles,omitempty"`
	NextID    uint64                `json:"next_id"`
}

// Export captures the current ledger, building list and processor
// cycle states.
func (s *Simulation) Export() Snapshot {
	snap := Snapshot{
		Tick:      s.tick,
		Resources: make(map[string]float64),
		Buildings: make([]Building, len(s.registry.buildings)),
		Cycles:    s.processors.states(),
		NextID:    s.registry.nextID,
	}
	for r, q := range s.ledger.quantities {
		snap.Resources[string(r)] = q
	}
	for i, b := range s.registry.buildings {
		snap.Buildings[i] = *b
	}
	return snap
}

// Restore replaces all mutable state from a snapshot. A loaded save is
// trusted: no affordability or placement validation is re-run and no
// change notifications are emitted.
func (s *Simulation) Restore(snap Snapshot) {
	s.tick = snap.Tick

	quantities := make(catalog.Amounts, len(snap.Resources))
	for r, q := range snap.Resources {
		quantities[catalog.Resource(r)] = q
	}
	s.ledger.restore(quantities)

	buildings := make([]*Building, len(snap.Buildings))
	nextID := snap.NextID
	for i := range snap.Buildings {
		b := snap.Buildings[i]
		buildings[i] = &b
		if b.ID >= nextID {
			nextID = b.ID + 1
		}
	}
	s.registry.restore(buildings, nextID)
	s.processors.restore(snap.Cycles)
}
