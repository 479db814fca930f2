package sim

import (
	"fmt"
	"math"

	"github.com/lhoste/hamlet/internal/catalog"
)

// Building is one placed building instance. Instances are owned
// exclusively by the Registry's ordered list and addressed by index in
// the public API; ID is a stable monotonic identifier that survives
// removals of other buildings and keys transient per-building state.
type Building struct {
	ID    uint64               `json:"id"`
	Type  catalog.BuildingType `json:"type"`
	Row   int                  `json:"row"`
	Col   int                  `json:"col"`
	Level int                  `json:"level"`
}

// DisplayLevel is the 1-based level shown to the player.
func (b *Building) DisplayLevel() int {
	return b.Level + 1
}

// Tile is one grid cell.
type Tile struct {
	Row, Col int
}

// Result is the outcome of a registry mutation. Validation failures are
// routine, player-driven outcomes: they come back as data, never as
// panics or Go errors crossing the core boundary.
type Result struct {
	Success bool
	Error   string
}

func failure(format string, args ...any) Result {
	return Result{Error: fmt.Sprintf(format, args...)}
}

// PlaceResult is the outcome of a placement attempt.
type PlaceResult struct {
	Result
	Index int
	ID    uint64
}

// RemoveResult is the outcome of a demolition.
type RemoveResult struct {
	Success bool
	Refund  catalog.Amounts
}

// Registry is the ordered collection of placed buildings and the only
// sanctioned mutator of that list. It pays costs and grants refunds
// through the ledger and invalidates the cap cache on every mutation.
type Registry struct {
	cat    *catalog.Catalog
	ledger *Ledger
	caps   *CapCalculator
	events *Dispatcher

	rows, cols int
	buildings  []*Building
	nextID     uint64
}

// NewRegistry creates an empty registry for a rows x cols grid.
func NewRegistry(cat *catalog.Catalog, ledger *Ledger, caps *CapCalculator, events *Dispatcher, rows, cols int) *Registry {
	r := &Registry{
		cat:    cat,
		ledger: ledger,
		caps:   caps,
		events: events,
		rows:   rows,
		cols:   cols,
		nextID: 1,
	}
	caps.bind(r)
	return r
}

// Buildings returns the ordered building list. Callers must not mutate it.
func (r *Registry) Buildings() []*Building {
	return r.buildings
}

// Count returns the number of placed buildings.
func (r *Registry) Count() int {
	return len(r.buildings)
}

// Get returns the building at an index, or nil if out of range.
func (r *Registry) Get(index int) *Building {
	if index < 0 || index >= len(r.buildings) {
		return nil
	}
	return r.buildings[index]
}

// CanPlaceAt reports whether a building of the given type fits at
// (row, col): footprint fully in bounds and no tile overlap with any
// existing building.
func (r *Registry) CanPlaceAt(t catalog.BuildingType, row, col int) bool {
	def := r.cat.Building(t)
	if def == nil {
		return false
	}
	f := def.Footprint
	if row < 0 || col < 0 || row+f > r.rows || col+f > r.cols {
		return false
	}
	occupied := r.OccupiedTiles()
	for dr := 0; dr < f; dr++ {
		for dc := 0; dc < f; dc++ {
			if _, taken := occupied[Tile{row + dr, col + dc}]; taken {
				return false
			}
		}
	}
	return true
}

// Place validates unlock requirement, placement and affordability, pays
// the base cost atomically, and appends a new level-0 instance.
func (r *Registry) Place(t catalog.BuildingType, row, col int) PlaceResult {
	def := r.cat.Building(t)
	if def == nil {
		return PlaceResult{Result: failure("unknown building type %q", t), Index: -1}
	}
	if !r.ledger.IsUnlocked(def.Unlock) {
		return PlaceResult{Result: failure("%s is locked", def.Name), Index: -1}
	}
	if !r.CanPlaceAt(t, row, col) {
		return PlaceResult{Result: failure("cannot build there"), Index: -1}
	}
	if !r.ledger.Spend(def.Cost) {
		return PlaceResult{Result: failure("cannot afford %s", def.Name), Index: -1}
	}

	b := &Building{ID: r.nextID, Type: t, Row: row, Col: col}
	r.nextID++
	r.buildings = append(r.buildings, b)
	r.caps.Invalidate()

	index := len(r.buildings) - 1
	r.events.publish(BuildingPlaced{
		Index:        index,
		ID:           b.ID,
		Type:         t,
		Row:          row,
		Col:          col,
		GoldProducer: r.cat.IsGoldProducer(t),
		Market:       def.Market,
	})
	return PlaceResult{Result: Result{Success: true}, Index: index, ID: b.ID}
}

// Upgrade pays the next tier's cost and increments the building's level.
func (r *Registry) Upgrade(index int) Result {
	b := r.Get(index)
	if b == nil {
		return failure("unknown building")
	}
	def := r.cat.Building(b.Type)
	if b.Level >= def.MaxLevel() {
		return failure("%s is at max level", def.Name)
	}
	cost := def.Upgrades[b.Level].Cost
	if !r.ledger.Spend(cost) {
		return failure("cannot afford upgrade")
	}

	old := b.Level
	b.Level++
	r.caps.Invalidate()
	r.events.publish(BuildingUpgraded{
		Index:    index,
		ID:       b.ID,
		Type:     b.Type,
		OldLevel: old,
		NewLevel: b.Level,
	})
	return Result{Success: true}
}

// Remove demolishes the building at an index. It always succeeds for a
// valid index; the refund is half of the base cost plus half of every
// upgrade cost paid, each resource amount floored individually.
func (r *Registry) Remove(index int) RemoveResult {
	b := r.Get(index)
	if b == nil {
		return RemoveResult{}
	}
	def := r.cat.Building(b.Type)
	refund := refundFor(def, b.Level)

	r.buildings = append(r.buildings[:index], r.buildings[index+1:]...)
	r.caps.Invalidate()
	// Removing a storage building can drop caps below held quantities.
	r.ledger.clampToCaps()
	r.ledger.Add(refund)

	r.events.publish(BuildingRemoved{
		Index:  index,
		ID:     b.ID,
		Type:   b.Type,
		Refund: refund,
	})
	return RemoveResult{Success: true, Refund: refund}
}

// refundFor computes the demolition refund for a building at the given
// level: floor(0.5 x baseCost) plus floor(0.5 x upgradeCost_i) for every
// tier already paid, per resource.
func refundFor(def *catalog.BuildingDef, level int) catalog.Amounts {
	refund := make(catalog.Amounts)
	addHalf := func(cost catalog.Amounts) {
		for res, q := range cost {
			refund[res] += math.Floor(q * 0.5)
		}
	}
	addHalf(def.Cost)
	for i := 0; i < level && i < len(def.Upgrades); i++ {
		addHalf(def.Upgrades[i].Cost)
	}
	return refund
}

// OccupiedTiles returns the set of tiles covered by building footprints.
func (r *Registry) OccupiedTiles() map[Tile]struct{} {
	occupied := make(map[Tile]struct{})
	for _, b := range r.buildings {
		f := r.cat.Building(b.Type).Footprint
		for dr := 0; dr < f; dr++ {
			for dc := 0; dc < f; dc++ {
				occupied[Tile{b.Row + dr, b.Col + dc}] = struct{}{}
			}
		}
	}
	return occupied
}

// BuildingAt returns the building whose footprint covers (row, col) and
// its index, or (nil, -1).
func (r *Registry) BuildingAt(row, col int) (*Building, int) {
	for i, b := range r.buildings {
		f := r.cat.Building(b.Type).Footprint
		if row >= b.Row && row < b.Row+f && col >= b.Col && col < b.Col+f {
			return b, i
		}
	}
	return nil, -1
}

// CountByType returns how many buildings of a type are placed.
func (r *Registry) CountByType(t catalog.BuildingType) int {
	n := 0
	for _, b := range r.buildings {
		if b.Type == t {
			n++
		}
	}
	return n
}

// HasGoldProducer reports whether any placed building yields currency.
// Dependent systems use this to end the starting stipend.
func (r *Registry) HasGoldProducer() bool {
	for _, b := range r.buildings {
		if r.cat.IsGoldProducer(b.Type) {
			return true
		}
	}
	return false
}

// MarketLevel returns the display level of the first placed market and
// whether one exists. Trading availability and pricing key off this.
func (r *Registry) MarketLevel() (int, bool) {
	for _, b := range r.buildings {
		if r.cat.Building(b.Type).Market {
			return b.DisplayLevel(), true
		}
	}
	return 0, false
}

// restore replaces the building list from a trusted snapshot.
func (r *Registry) restore(buildings []*Building, nextID uint64) {
	r.buildings = buildings
	r.nextID = nextID
	r.caps.Invalidate()
}
