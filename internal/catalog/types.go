package catalog

// Resource identifies a resource type. The set of valid resources is
// defined by the loaded catalog, not by code.
type Resource string

// BuildingType identifies a building type in the catalog.
type BuildingType string

// Amounts maps resource types to quantities. Used for costs, production
// rates, consumption rates, recipe inputs/outputs and storage bonuses.
type Amounts map[Resource]float64

// Clone returns a copy of the amounts map. A nil receiver yields nil.
func (a Amounts) Clone() Amounts {
	if a == nil {
		return nil
	}
	out := make(Amounts, len(a))
	for r, q := range a {
		out[r] = q
	}
	return out
}

// IsZero reports whether the map is empty or holds only zero quantities.
func (a Amounts) IsZero() bool {
	for _, q := range a {
		if q != 0 {
			return false
		}
	}
	return true
}

// UpgradeTier is one entry in a building's upgrade table. Tier i is the
// upgrade that takes a building from level i to level i+1.
type UpgradeTier struct {
	Cost Amounts `json:"cost"`
	Mult float64 `json:"mult" validate:"gte=1"`
}

// Recipe describes batch production for processor buildings: all inputs
// are consumed at cycle start, all outputs appear at cycle completion.
type Recipe struct {
	Inputs      Amounts `json:"inputs" validate:"required"`
	Outputs     Amounts `json:"outputs" validate:"required"`
	CycleTimeMs float64 `json:"cycle_time_ms" validate:"gt=0"`
}

// ResourceDef is the static definition of one resource type.
// Currency resources are never capped.
type ResourceDef struct {
	ID       Resource `json:"id" validate:"required"`
	Name     string   `json:"name"`
	BaseCap  float64  `json:"base_cap" validate:"gte=0"`
	Currency bool     `json:"currency"`
}

// BuildingDef is the static definition of one building type.
// A building is either continuous (Production/Consumption rates applied
// every tick) or a processor (Recipe), never both.
type BuildingDef struct {
	Type        BuildingType `json:"type" validate:"required"`
	Name        string       `json:"name"`
	Cost        Amounts      `json:"cost"`
	Production  Amounts      `json:"production,omitempty"`
	Consumption Amounts      `json:"consumption,omitempty"`
	Recipe      *Recipe      `json:"recipe,omitempty"`

	// Upgrades is the upgrade table; its length bounds the building's
	// max level.
	Upgrades []UpgradeTier `json:"upgrades,omitempty"`

	// StorageBonus adds capacity per resource, scaled by the upgrade
	// multiplier of the placed instance.
	StorageBonus Amounts `json:"storage_bonus,omitempty"`

	// Footprint is the side of the N x N tile square the building occupies.
	Footprint int `json:"footprint" validate:"gte=1"`

	// Unlock is a resource threshold that must be held (never spent)
	// before the building may be placed.
	Unlock Amounts `json:"unlock,omitempty"`

	// Market marks the building that enables trading.
	Market bool `json:"market,omitempty"`
}

// IsProcessor reports whether the building produces in discrete cycles.
func (d *BuildingDef) IsProcessor() bool {
	return d.Recipe != nil
}

// IsStorage reports whether the building contributes storage capacity.
func (d *BuildingDef) IsStorage() bool {
	return len(d.StorageBonus) > 0
}

// MaxLevel returns the highest level reachable through the upgrade table.
func (d *BuildingDef) MaxLevel() int {
	return len(d.Upgrades)
}

// MultiplierAt returns the production multiplier for a building at the
// given level: 1 at level 0, otherwise the multiplier of the last
// applied upgrade tier.
func (d *BuildingDef) MultiplierAt(level int) float64 {
	if level <= 0 || len(d.Upgrades) == 0 {
		return 1
	}
	if level > len(d.Upgrades) {
		level = len(d.Upgrades)
	}
	return d.Upgrades[level-1].Mult
}
