package pricing

import (
	"encoding/json"
	"fmt"
	"os"
)

// Catalog is the item price lookup, maintained as external configuration.
type Catalog map[string]float64

// Lookup returns the catalog price for an item, or 0 if the item is unknown.
func (c Catalog) Lookup(name string) float64 {
	return c[name]
}

// LoadCatalog reads a {"item name": price, ...} JSON file.
func LoadCatalog(path string) (Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog: %w", err)
	}

	var catalog Catalog
	if err := json.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	return catalog, nil
}
