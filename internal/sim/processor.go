package sim

import (
	"strings"

	"github.com/lhoste/hamlet/internal/catalog"
)

// ProcState is a processor building's cycle state.
type ProcState int

const (
	// Idle: no cycle in progress, inputs not yet committed.
	Idle ProcState = iota
	// Running: inputs consumed, progress advancing toward completion.
	Running
	// Stalled: cannot start a cycle; re-evaluated every tick. Not an
	// error, a steady recoverable state with a player-visible reason.
	Stalled
)

// String returns a string representation of the state.
func (s ProcState) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Running:
		return "Running"
	case Stalled:
		return "Stalled"
	default:
		return "Unknown"
	}
}

// CycleState is the transient per-building state of the processor state
// machine. It is keyed by the building's stable ID, not its list index,
// so demolishing an unrelated building never discards an in-progress
// cycle.
type CycleState struct {
	// ElapsedMs accumulates wall time spent in the current cycle.
	// Completion compares milliseconds, not summed progress fractions:
	// ten 1000ms ticks against a 10000ms cycle must complete exactly,
	// and repeated float fraction addition lands just short of 1.
	ElapsedMs      float64   `json:"elapsed_ms"`
	Progress       float64   `json:"progress"`
	State          ProcState `json:"state"`
	StallReason    string    `json:"stall_reason,omitempty"`
	InputsConsumed bool      `json:"inputs_consumed"`
}

// ProcessorEngine advances the cycle state machine of every processor
// building once per tick. Unlike the continuous engine it uses the
// actual elapsed wall time, and its ledger mutations are applied
// building by building, so list order is an observable tie-break when
// two processors race for the same scarce storage headroom.
type ProcessorEngine struct {
	cat      *catalog.Catalog
	registry *Registry
	ledger   *Ledger
	events   *Dispatcher

	cycles map[uint64]*CycleState
}

// NewProcessorEngine wires the engine and subscribes it to removal
// events so demolished buildings drop their cycle state.
func NewProcessorEngine(cat *catalog.Catalog, registry *Registry, ledger *Ledger, events *Dispatcher) *ProcessorEngine {
	e := &ProcessorEngine{
		cat:      cat,
		registry: registry,
		ledger:   ledger,
		events:   events,
		cycles:   make(map[uint64]*CycleState),
	}
	events.Subscribe(func(ev Event) {
		if removed, ok := ev.(BuildingRemoved); ok {
			delete(e.cycles, removed.ID)
		}
	})
	return e
}

// State returns a copy of the cycle state for a building ID.
func (e *ProcessorEngine) State(id uint64) (CycleState, bool) {
	st, ok := e.cycles[id]
	if !ok {
		return CycleState{}, false
	}
	return *st, true
}

// Tick advances every processor by the actual elapsed milliseconds.
func (e *ProcessorEngine) Tick(elapsedMs float64) {
	for index, b := range e.registry.Buildings() {
		def := e.cat.Building(b.Type)
		if def == nil || !def.IsProcessor() {
			continue
		}
		e.tickBuilding(index, b, def, elapsedMs)
	}
}

func (e *ProcessorEngine) tickBuilding(index int, b *Building, def *catalog.BuildingDef, elapsedMs float64) {
	st := e.cycles[b.ID]
	if st == nil {
		st = &CycleState{}
		e.cycles[b.ID] = st
	}

	recipe := def.Recipe
	effectiveMs := recipe.CycleTimeMs / def.MultiplierAt(b.Level)

	// Starting a cycle (paying inputs) and continuing one (no further
	// payment) are distinct operations; merging them would risk
	// double-charging inputs on the tick a cycle starts.
	if !(st.State == Running && st.InputsConsumed) {
		if reason, ok := e.startCheck(recipe); !ok {
			st.State = Stalled
			st.StallReason = reason
			st.ElapsedMs = 0
			st.Progress = 0
			st.InputsConsumed = false
			return
		}
		e.ledger.Consume(recipe.Inputs)
		st.State = Running
		st.StallReason = ""
		st.InputsConsumed = true
		st.ElapsedMs = 0
		st.Progress = 0
	}

	// A running cycle always continues to completion, even if its
	// inputs have since become unaffordable; they were already paid.
	st.ElapsedMs += elapsedMs
	st.Progress = st.ElapsedMs / effectiveMs
	if st.ElapsedMs < effectiveMs {
		return
	}

	e.ledger.Add(recipe.Outputs)
	e.events.publish(CycleCompleted{
		Index:   index,
		ID:      b.ID,
		Type:    b.Type,
		Outputs: recipe.Outputs.Clone(),
	})
	st.ElapsedMs = 0
	st.Progress = 0
	st.State = Idle
	st.InputsConsumed = false
	st.StallReason = ""
}

// startCheck verifies input affordability and output storage headroom
// against current quantities. Headroom is not pre-reserved; processors
// earlier in the building list claim scarce space first.
func (e *ProcessorEngine) startCheck(recipe *catalog.Recipe) (string, bool) {
	var missing []string
	for _, r := range e.cat.Resources() {
		need, ok := recipe.Inputs[r]
		if !ok {
			continue
		}
		if e.ledger.Get(r) < need {
			missing = append(missing, e.cat.DisplayName(r))
		}
	}
	if len(missing) > 0 {
		return "Need " + strings.Join(missing, ", "), false
	}

	var full []string
	for _, r := range e.cat.Resources() {
		out, ok := recipe.Outputs[r]
		if !ok {
			continue
		}
		if e.ledger.Headroom(r) < out {
			full = append(full, e.cat.DisplayName(r))
		}
	}
	if len(full) > 0 {
		return "Storage full: " + strings.Join(full, ", "), false
	}
	return "", true
}

// states returns the live cycle map for snapshot export.
func (e *ProcessorEngine) states() map[uint64]CycleState {
	out := make(map[uint64]CycleState, len(e.cycles))
	for id, st := range e.cycles {
		out[id] = *st
	}
	return out
}

// restore replaces all cycle state from a trusted snapshot.
func (e *ProcessorEngine) restore(states map[uint64]CycleState) {
	e.cycles = make(map[uint64]*CycleState, len(states))
	for id, st := range states {
		copied := st
		e.cycles[id] = &copied
	}
}
