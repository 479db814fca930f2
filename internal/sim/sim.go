// Package sim implements the tick-driven economy core: the resource
// ledger and its mutation chokepoint, storage cap derivation, the
// placed-building registry, and the two production engines (continuous
// per-tick rates and recipe-based processor cycles).
//
// The core is strictly single threaded. It does not own a timer; an
// external collaborator calls Tick, and all reactions flow outward
// through the event dispatcher.
package sim

import (
	"time"

	"github.com/lhoste/hamlet/internal/catalog"
)

// Config sets up a new simulation.
type Config struct {
	// Grid dimensions for building placement.
	Rows, Cols int

	// Start is the initial resource grant, applied without cap
	// clamping or notification.
	Start catalog.Amounts
}

// Simulation wires the core components together with explicit
// constructor injection; there are no package-level singletons and no
// runtime service lookup.
type Simulation struct {
	cat        *catalog.Catalog
	events     *Dispatcher
	caps       *CapCalculator
	ledger     *Ledger
	registry   *Registry
	continuous *ContinuousEngine
	processors *ProcessorEngine

	tick int
}

// New assembles a simulation from a catalog and config.
func New(cat *catalog.Catalog, cfg Config) *Simulation {
	events := NewDispatcher()
	caps := NewCapCalculator(cat)
	ledger := NewLedger(cat, caps, events)
	registry := NewRegistry(cat, ledger, caps, events, cfg.Rows, cfg.Cols)

	s := &Simulation{
		cat:        cat,
		events:     events,
		caps:       caps,
		ledger:     ledger,
		registry:   registry,
		continuous: NewContinuousEngine(cat, registry, ledger),
		processors: NewProcessorEngine(cat, registry, ledger, events),
	}
	if len(cfg.Start) > 0 {
		ledger.restore(cfg.Start)
	}
	return s
}

// Tick runs one simulation step. The continuous engine always applies a
// fixed one-second quantum; the processor engine advances by the actual
// elapsed wall time. A speed control changes how often Tick fires, not
// the quantum.
func (s *Simulation) Tick(elapsed time.Duration) {
	s.tick++
	s.continuous.Tick()
	s.processors.Tick(float64(elapsed) / float64(time.Millisecond))
}

// TickCount returns how many ticks have run since start or restore.
func (s *Simulation) TickCount() int {
	return s.tick
}

// Subscribe registers a handler for all core change notifications.
func (s *Simulation) Subscribe(fn func(Event)) {
	s.events.Subscribe(fn)
}

// Ledger exposes the resource mutation API.
func (s *Simulation) Ledger() *Ledger {
	return s.ledger
}

// Registry exposes building placement, upgrade and demolition.
func (s *Simulation) Registry() *Registry {
	return s.registry
}

// Caps exposes derived storage capacities.
func (s *Simulation) Caps() *CapCalculator {
	return s.caps
}

// Processors exposes per-building cycle state for display.
func (s *Simulation) Processors() *ProcessorEngine {
	return s.processors
}

// Rates returns the aggregate per-second rate estimate.
func (s *Simulation) Rates() Rates {
	return EstimateRates(s.cat, s.registry)
}

// Catalog returns the static definitions the simulation runs on.
func (s *Simulation) Catalog() *catalog.Catalog {
	return s.cat
}
