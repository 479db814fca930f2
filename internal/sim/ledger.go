package sim

import (
	"fmt"
	"math"

	"github.com/lhoste/hamlet/internal/catalog"
)

// Ledger holds the current quantity of every resource and is the only
// sanctioned mutator of those quantities. All spending, granting,
// production and consumption funnels through it so that cap clamping
// and the non-negativity invariant are enforced in one place.
type Ledger struct {
	cat    *catalog.Catalog
	caps   *CapCalculator
	events *Dispatcher

	quantities catalog.Amounts
}

// NewLedger creates a ledger with every catalog resource at zero.
func NewLedger(cat *catalog.Catalog, caps *CapCalculator, events *Dispatcher) *Ledger {
	l := &Ledger{
		cat:        cat,
		caps:       caps,
		events:     events,
		quantities: make(catalog.Amounts),
	}
	for _, r := range cat.Resources() {
		l.quantities[r] = 0
	}
	return l
}

// Get returns the held quantity of a resource, 0 if unknown.
func (l *Ledger) Get(r catalog.Resource) float64 {
	return l.quantities[r]
}

// Snapshot returns a copy of all current quantities.
func (l *Ledger) Snapshot() catalog.Amounts {
	return l.quantities.Clone()
}

// CanAfford reports whether every entry of the cost is held. An empty
// or nil cost is always affordable.
func (l *Ledger) CanAfford(cost catalog.Amounts) bool {
	for r, q := range cost {
		if l.quantities[r] < q {
			return false
		}
	}
	return true
}

// IsUnlocked reports whether a threshold requirement is met. Same
// semantics as CanAfford, but the requirement is never deducted.
func (l *Ledger) IsUnlocked(requirement catalog.Amounts) bool {
	return l.CanAfford(requirement)
}

// Spend deducts the cost atomically. It returns false without mutating
// anything if any entry is unaffordable.
func (l *Ledger) Spend(cost catalog.Amounts) bool {
	if !l.CanAfford(cost) {
		return false
	}
	if cost.IsZero() {
		return true
	}
	old := l.Snapshot()
	for r, q := range cost {
		l.set(r, l.quantities[r]-q)
	}
	l.emitChange(old, nil)
	return true
}

// Add credits each entry, clamping to the resource's current cap.
// Overflow beyond the cap is reported in the Capped field of the
// emitted notification and then lost; it is never queued or retried.
func (l *Ledger) Add(amounts catalog.Amounts) {
	if amounts.IsZero() {
		return
	}
	old := l.Snapshot()
	var capped catalog.Amounts
	for r, q := range amounts {
		if q == 0 {
			continue
		}
		next := l.quantities[r] + q
		cap := l.caps.Cap(r)
		if next > cap {
			if capped == nil {
				capped = make(catalog.Amounts)
			}
			capped[r] = next - cap
			next = cap
		}
		l.set(r, next)
	}
	l.emitChange(old, capped)
}

// Consume deducts the amounts atomically, failing without mutation if
// any entry is unaffordable.
func (l *Ledger) Consume(amounts catalog.Amounts) bool {
	return l.Spend(amounts)
}

// SellResult reports the outcome of a Sell call.
type SellResult struct {
	Success      bool
	GoldReceived float64
	Error        string
}

// Sell atomically removes qty of a resource and credits the currency at
// the given unit price.
func (l *Ledger) Sell(r catalog.Resource, qty, pricePerUnit float64) SellResult {
	currency := l.cat.Currency()
	if currency == "" {
		return SellResult{Error: "no currency resource defined"}
	}
	if qty <= 0 {
		return SellResult{Error: "nothing to sell"}
	}
	if l.quantities[r] < qty {
		return SellResult{Error: fmt.Sprintf("not enough %s", l.cat.DisplayName(r))}
	}

	gold := qty * pricePerUnit
	old := l.Snapshot()
	l.set(r, l.quantities[r]-qty)
	l.set(currency, l.quantities[currency]+gold)
	l.emitChange(old, nil)
	return SellResult{Success: true, GoldReceived: gold}
}

// set writes a quantity, guarding the non-negativity invariant. A
// materially negative result means a caller bypassed the affordability
// checks, which is a programming error, not a player-facing condition.
func (l *Ledger) set(r catalog.Resource, q float64) {
	if q < 0 {
		if q < -1e-6 {
			panic(fmt.Sprintf("ledger: negative quantity %g for %s", q, r))
		}
		q = 0
	}
	l.quantities[r] = q
}

// clampToCaps lowers every quantity above its resource's current cap,
// reporting the clamped amounts in the change notification. Demolishing
// a storage building can shrink caps below what is already held; the
// excess is discarded, never buffered.
func (l *Ledger) clampToCaps() {
	var old, capped catalog.Amounts
	for _, r := range l.cat.Resources() {
		cap := l.caps.Cap(r)
		if q := l.quantities[r]; q > cap {
			if capped == nil {
				old = l.Snapshot()
				capped = make(catalog.Amounts)
			}
			capped[r] = q - cap
			l.quantities[r] = cap
		}
	}
	if capped != nil {
		l.emitChange(old, capped)
	}
}

// restore overwrites all quantities from a trusted snapshot without
// validation or notification.
func (l *Ledger) restore(quantities catalog.Amounts) {
	l.quantities = make(catalog.Amounts)
	for _, r := range l.cat.Resources() {
		l.quantities[r] = 0
	}
	for r, q := range quantities {
		l.quantities[r] = q
	}
}

func (l *Ledger) emitChange(old, capped catalog.Amounts) {
	delta := make(catalog.Amounts)
	for r, q := range l.quantities {
		if d := q - old[r]; d != 0 {
			delta[r] = d
		}
	}
	l.events.publish(ResourcesChanged{
		Old:    old,
		New:    l.Snapshot(),
		Delta:  delta,
		Capped: capped,
	})
}

// Headroom returns the remaining storage space for a resource,
// +Inf for uncapped resources.
func (l *Ledger) Headroom(r catalog.Resource) float64 {
	cap := l.caps.Cap(r)
	if math.IsInf(cap, 1) {
		return cap
	}
	return cap - l.quantities[r]
}
