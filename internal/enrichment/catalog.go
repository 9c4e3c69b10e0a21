// =============================================================================
// Sales Report Pipeline - Product Catalogs
// =============================================================================
//
// A ProductCatalog resolves a ProductID to its category, brand and rating.
// The enricher only depends on this interface, so the catalog behind it can
// be the built-in static table, a YAML file, the external product API, or a
// chain of them.
//
// CATALOG IMPLEMENTATIONS:
//   - StaticCatalog : fixed ProductID -> category table, constant brand/rating
//   - ChainCatalog  : asks several catalogs in order, first hit wins
//   - catalogapi.MappingCatalog (separate package) : external API mapping
//
// =============================================================================

package enrichment

import (
	"fmt"
	"os"
	"sort"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// CATALOG INTERFACE
// =============================================================================

// ProductCatalog looks up product metadata by ProductID.
//
// Lookup returns ok=false when the product is unknown. A non-nil error
// means the lookup itself failed; the enricher treats that as a miss for
// the affected record only.
type ProductCatalog interface {
	Lookup(productID string) (info types.Enrichment, ok bool, err error)
}

// =============================================================================
// STATIC CATALOG
// =============================================================================

// DefaultBrand is the brand attached to every static-table hit.
const DefaultBrand = "TechStore"

// DefaultRating is the rating attached to every static-table hit.
const DefaultRating = 4.5

// DefaultCategories is the built-in ProductID -> category table.
var DefaultCategories = map[string]string{
	"P101": "Laptop",
	"P102": "Mouse",
	"P103": "Keyboard",
	"P104": "Monitor",
	"P105": "Webcam",
	"P106": "Headphones",
	"P107": "Accessories",
	"P108": "Storage",
	"P109": "Mouse",
	"P110": "Charger",
}

// StaticCatalog is an in-memory ProductID -> category table.
type StaticCatalog struct {
	categories map[string]string
	brand      string
	rating     float64
}

// NewStaticCatalog returns a catalog over a copy of categories.
func NewStaticCatalog(categories map[string]string, brand string, rating float64) *StaticCatalog {
	copied := make(map[string]string, len(categories))
	for id, category := range categories {
		copied[id] = category
	}

	return &StaticCatalog{
		categories: copied,
		brand:      brand,
		rating:     rating,
	}
}

// DefaultCatalog returns the built-in ten-entry catalog.
func DefaultCatalog() *StaticCatalog {
	return NewStaticCatalog(DefaultCategories, DefaultBrand, DefaultRating)
}

// Lookup implements ProductCatalog.
func (c *StaticCatalog) Lookup(productID string) (types.Enrichment, bool, error) {
	category, ok := c.categories[productID]
	if !ok {
		return types.Enrichment{}, false, nil
	}

	return types.Enrichment{
		Category: category,
		Brand:    c.brand,
		Rating:   c.rating,
	}, true, nil
}

// ProductIDs returns the catalog's product IDs in sorted order.
func (c *StaticCatalog) ProductIDs() []string {
	ids := make([]string, 0, len(c.categories))
	for id := range c.categories {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of entries.
func (c *StaticCatalog) Len() int {
	return len(c.categories)
}

// =============================================================================
// CATALOG FILE
// =============================================================================

// CatalogFile is the YAML layout accepted by LoadCatalogFile.
//
// EXAMPLE:
//   brand: TechStore
//   rating: 4.5
//   categories:
//     P101: Laptop
//     P111: Tablet
type CatalogFile struct {
	Brand      string            `yaml:"brand"`
	Rating     float64           `yaml:"rating"`
	Categories map[string]string `yaml:"categories"`
}

// LoadCatalogFile builds a StaticCatalog from the built-in table extended
// and overridden by a YAML file. Brand and rating fall back to the
// defaults when the file leaves them unset.
func LoadCatalogFile(path string) (*StaticCatalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var file CatalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	categories := make(map[string]string, len(DefaultCategories)+len(file.Categories))
	for id, category := range DefaultCategories {
		categories[id] = category
	}
	for id, category := range file.Categories {
		categories[id] = category
	}

	brand := file.Brand
	if brand == "" {
		brand = DefaultBrand
	}
	rating := file.Rating
	if rating == 0 {
		rating = DefaultRating
	}

	return NewStaticCatalog(categories, brand, rating), nil
}

// =============================================================================
// CHAIN CATALOG
// =============================================================================

// ChainCatalog asks each catalog in order and returns the first hit.
// A failing catalog is skipped; its error is returned only when no later
// catalog matches.
type ChainCatalog []ProductCatalog

// Lookup implements ProductCatalog.
func (c ChainCatalog) Lookup(productID string) (types.Enrichment, bool, error) {
	var firstErr error

	for _, catalog := range c {
		if catalog == nil {
			continue
		}

		info, ok, err := catalog.Lookup(productID)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if ok {
			return info, true, nil
		}
	}

	return types.Enrichment{}, false, firstErr
}
