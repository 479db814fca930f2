package sim

import "github.com/lhoste/hamlet/internal/catalog"

// EventKind discriminates the event variants the core emits.
type EventKind int

const (
	KindResourcesChanged EventKind = iota
	KindBuildingPlaced
	KindBuildingUpgraded
	KindBuildingRemoved
	KindCycleCompleted
)

// String returns a string representation of the event kind.
func (k EventKind) String() string {
	switch k {
	case KindResourcesChanged:
		return "ResourcesChanged"
	case KindBuildingPlaced:
		return "BuildingPlaced"
	case KindBuildingUpgraded:
		return "BuildingUpgraded"
	case KindBuildingRemoved:
		return "BuildingRemoved"
	case KindCycleCompleted:
		return "CycleCompleted"
	default:
		return "Unknown"
	}
}

// Event is the closed set of change notifications. Rendering,
// persistence and UI react to these; the core never calls outward
// through any other channel.
type Event interface {
	Kind() EventKind
}

// ResourcesChanged is emitted on every ledger mutation. Old and New are
// full snapshots, Delta holds only the resources that moved, and Capped
// holds per-resource overflow that was clamped away (nil when none).
type ResourcesChanged struct {
	Old    catalog.Amounts
	New    catalog.Amounts
	Delta  catalog.Amounts
	Capped catalog.Amounts
}

func (ResourcesChanged) Kind() EventKind { return KindResourcesChanged }

// BuildingPlaced carries enough classification metadata for dependents
// (stipend ending, merchant enabling) to react without re-deriving it.
type BuildingPlaced struct {
	Index        int
	ID           uint64
	Type         catalog.BuildingType
	Row, Col     int
	GoldProducer bool
	Market       bool
}

func (BuildingPlaced) Kind() EventKind { return KindBuildingPlaced }

// BuildingUpgraded reports a level increment.
type BuildingUpgraded struct {
	Index    int
	ID       uint64
	Type     catalog.BuildingType
	OldLevel int
	NewLevel int
}

func (BuildingUpgraded) Kind() EventKind { return KindBuildingUpgraded }

// BuildingRemoved reports a demolition and the refund granted for it.
// Indices of later buildings shift down by one.
type BuildingRemoved struct {
	Index  int
	ID     uint64
	Type   catalog.BuildingType
	Refund catalog.Amounts
}

func (BuildingRemoved) Kind() EventKind { return KindBuildingRemoved }

// CycleCompleted reports a processor finishing one recipe cycle.
type CycleCompleted struct {
	Index   int
	ID      uint64
	Type    catalog.BuildingType
	Outputs catalog.Amounts
}

func (CycleCompleted) Kind() EventKind { return KindCycleCompleted }

// Dispatcher delivers events synchronously, in subscription order, on
// the caller's goroutine. The simulation is single threaded; handlers
// must not re-enter the core mid-mutation.
type Dispatcher struct {
	handlers []func(Event)
}

// NewDispatcher creates an empty dispatcher.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a handler for every event the core emits.
func (d *Dispatcher) Subscribe(fn func(Event)) {
	d.handlers = append(d.handlers, fn)
}

func (d *Dispatcher) publish(e Event) {
	for _, fn := range d.handlers {
		fn(e)
	}
}
