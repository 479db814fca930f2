package catalog

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Catalog holds the validated static definitions the simulation reads
// from. It is immutable after construction; the core never writes to it.
type Catalog struct {
	resources map[Resource]*ResourceDef
	buildings map[BuildingType]*BuildingDef

	// Definition order from the data files, kept for deterministic
	// iteration.
	resourceOrder []Resource
	buildingOrder []BuildingType

	currency Resource
}

// New builds a catalog from definition lists, validating every entry.
func New(resources []*ResourceDef, buildings []*BuildingDef) (*Catalog, error) {
	v := validator.New()

	c := &Catalog{
		resources: make(map[Resource]*ResourceDef, len(resources)),
		buildings: make(map[BuildingType]*BuildingDef, len(buildings)),
	}

	for _, rd := range resources {
		if err := v.Struct(rd); err != nil {
			return nil, fmt.Errorf("invalid resource %q: %w", rd.ID, err)
		}
		if _, dup := c.resources[rd.ID]; dup {
			return nil, fmt.Errorf("duplicate resource %q", rd.ID)
		}
		if rd.Currency {
			if c.currency != "" {
				return nil, fmt.Errorf("multiple currency resources: %q and %q", c.currency, rd.ID)
			}
			c.currency = rd.ID
		}
		c.resources[rd.ID] = rd
		c.resourceOrder = append(c.resourceOrder, rd.ID)
	}

	for _, bd := range buildings {
		if err := v.Struct(bd); err != nil {
			return nil, fmt.Errorf("invalid building %q: %w", bd.Type, err)
		}
		if _, dup := c.buildings[bd.Type]; dup {
			return nil, fmt.Errorf("duplicate building %q", bd.Type)
		}
		if err := c.checkBuilding(bd); err != nil {
			return nil, fmt.Errorf("invalid building %q: %w", bd.Type, err)
		}
		c.buildings[bd.Type] = bd
		c.buildingOrder = append(c.buildingOrder, bd.Type)
	}

	return c, nil
}

// checkBuilding enforces the cross-field rules the validator tags cannot
// express: production model exclusivity and resource references.
func (c *Catalog) checkBuilding(bd *BuildingDef) error {
	if bd.IsProcessor() && (len(bd.Production) > 0 || len(bd.Consumption) > 0) {
		return fmt.Errorf("recipe and continuous rates are mutually exclusive")
	}

	refs := []Amounts{bd.Cost, bd.Production, bd.Consumption, bd.StorageBonus, bd.Unlock}
	if bd.Recipe != nil {
		refs = append(refs, bd.Recipe.Inputs, bd.Recipe.Outputs)
	}
	for _, tier := range bd.Upgrades {
		refs = append(refs, tier.Cost)
	}
	for _, amounts := range refs {
		for r, q := range amounts {
			if _, ok := c.resources[r]; !ok {
				return fmt.Errorf("references unknown resource %q", r)
			}
			if q < 0 {
				return fmt.Errorf("negative amount for resource %q", r)
			}
		}
	}
	return nil
}

// Resource returns the definition for a resource, or nil if unknown.
func (c *Catalog) Resource(id Resource) *ResourceDef {
	return c.resources[id]
}

// Building returns the definition for a building type, or nil if unknown.
func (c *Catalog) Building(t BuildingType) *BuildingDef {
	return c.buildings[t]
}

// Resources returns all resource IDs in definition order.
func (c *Catalog) Resources() []Resource {
	out := make([]Resource, len(c.resourceOrder))
	copy(out, c.resourceOrder)
	return out
}

// Buildings returns all building types in definition order.
func (c *Catalog) Buildings() []BuildingType {
	out := make([]BuildingType, len(c.buildingOrder))
	copy(out, c.buildingOrder)
	return out
}

// Currency returns the uncapped currency resource, or "" if the catalog
// defines none.
func (c *Catalog) Currency() Resource {
	return c.currency
}

// IsGoldProducer reports whether the building type yields currency,
// either continuously or through its recipe outputs.
func (c *Catalog) IsGoldProducer(t BuildingType) bool {
	bd := c.buildings[t]
	if bd == nil || c.currency == "" {
		return false
	}
	if bd.Production[c.currency] > 0 {
		return true
	}
	return bd.Recipe != nil && bd.Recipe.Outputs[c.currency] > 0
}

// DisplayName returns the human name of a resource, falling back to its ID.
func (c *Catalog) DisplayName(r Resource) string {
	if rd := c.resources[r]; rd != nil && rd.Name != "" {
		return rd.Name
	}
	return string(r)
}
