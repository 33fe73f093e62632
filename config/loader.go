package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// RegionOverrides is the on-disk format for extending the town lookup table
// without a new deployment. Keys are town names, values region keys.
type RegionOverrides struct {
	Towns map[string]RegionKey `json:"towns"`
}

// LoadRegionOverrides reads a JSON overrides file and merges its entries
// into the town lookup table. Unknown region keys are rejected so a typo
// cannot silently route properties to a page that does not exist.
func LoadRegionOverrides(path string) error {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %v", err)
	}

	data, err := os.ReadFile(absPath)
	if err != nil {
		return fmt.Errorf("failed to read overrides file: %v", err)
	}

	var overrides RegionOverrides
	if err := json.Unmarshal(data, &overrides); err != nil {
		return fmt.Errorf("failed to parse overrides file: %v", err)
	}

	for town, region := range overrides.Towns {
		if _, ok := Regions[region]; !ok {
			return fmt.Errorf("unknown region %q for town %q", region, town)
		}
	}

	townRegionLock.Lock()
	defer townRegionLock.Unlock()
	for town, region := range overrides.Towns {
		townToRegion[NormalizeTownName(town)] = region
	}
	return nil
}
