package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Load reads resources.json and buildings.json from dataDir and returns
// the validated catalog.
func Load(dataDir string) (*Catalog, error) {
	resources, err := loadResources(filepath.Join(dataDir, "resources.json"))
	if err != nil {
		return nil, err
	}

	buildings, err := loadBuildings(filepath.Join(dataDir, "buildings.json"))
	if err != nil {
		return nil, err
	}

	return New(resources, buildings)
}

func loadResources(path string) ([]*ResourceDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read resources: %w", err)
	}

	var defs []*ResourceDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return defs, nil
}

func loadBuildings(path string) ([]*BuildingDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read buildings: %w", err)
	}

	var defs []*BuildingDef
	if err := json.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	// Footprint defaults to a single tile when the data file omits it.
	for _, bd := range defs {
		if bd.Footprint == 0 {
			bd.Footprint = 1
		}
	}
	return defs, nil
}
