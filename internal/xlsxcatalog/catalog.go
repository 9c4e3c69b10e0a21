// =============================================================================
// Sales Report Pipeline - XLSX Product Catalog
// =============================================================================
//
// This module reads a product catalog maintained as an XLSX workbook. Each
// data row describes one product:
//
//   | Column A   | Column B  | Column C  | Column D |
//   |------------|-----------|-----------|----------|
//   | Product ID | Category  | Brand     | Rating   |
//   | P101       | Laptop    | TechStore | 4.5      |
//   | P111       | Tablet    | Acme      | 4.1      |
//
// Unlike the YAML catalog, brand and rating are per product. Blank cells
// fall back to the defaults in SheetColumns.
//
// CUSTOMIZATION:
//   - Modify SheetColumns to match a different column layout
//   - Set SheetName to read a sheet other than the first one
//
// =============================================================================

package xlsxcatalog

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/xuri/excelize/v2"
)

// =============================================================================
// SHEET LAYOUT
// =============================================================================

// SheetColumns defines which columns of the sheet hold which field.
// Column indices are 0-based (A=0, B=1, C=2, etc.)
type SheetColumns struct {
	// SheetName is the sheet to read. Empty means the first sheet.
	SheetName string

	ProductIDColumn int
	CategoryColumn  int
	BrandColumn     int
	RatingColumn    int

	// DataStartRow is the first data row (0-based). Rows above it are headers.
	DataStartRow int

	// DefaultBrand and DefaultRating fill blank brand and rating cells.
	DefaultBrand  string
	DefaultRating float64
}

// DefaultSheetColumns returns the layout shown in the file header.
func DefaultSheetColumns(defaultBrand string, defaultRating float64) SheetColumns {
	return SheetColumns{
		ProductIDColumn: 0, // Column A
		CategoryColumn:  1, // Column B
		BrandColumn:     2, // Column C
		RatingColumn:    3, // Column D
		DataStartRow:    1, // Row 2
		DefaultBrand:    defaultBrand,
		DefaultRating:   defaultRating,
	}
}

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is a product catalog loaded from a workbook.
type Catalog struct {
	// SourceFile is the workbook the catalog was read from.
	SourceFile string

	products map[string]types.Enrichment
}

// Lookup returns the metadata for productID, or ok=false when the
// workbook has no row for it.
func (c *Catalog) Lookup(productID string) (types.Enrichment, bool, error) {
	info, ok := c.products[productID]
	return info, ok, nil
}

// Len returns the number of products.
func (c *Catalog) Len() int {
	return len(c.products)
}

// ProductIDs returns the product IDs in sorted order.
func (c *Catalog) ProductIDs() []string {
	ids := make([]string, 0, len(c.products))
	for id := range c.products {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// =============================================================================
// LOADER FUNCTIONS
// =============================================================================

// Load reads a catalog workbook.
//
// PARAMETERS:
//   - path: The path to the XLSX file.
//   - columns: The sheet layout.
//
// RETURNS:
//   - The catalog. Later rows override earlier rows with the same ProductID.
//   - An error if the file cannot be opened or a row is malformed.
func Load(path string, columns SheetColumns) (*Catalog, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog workbook: %w", err)
	}
	defer f.Close()

	sheetName := columns.SheetName
	if sheetName == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("catalog workbook has no sheets")
		}
		sheetName = sheets[0]
	}

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheetName, err)
	}

	catalog := &Catalog{
		SourceFile: path,
		products:   make(map[string]types.Enrichment),
	}

	for i := columns.DataStartRow; i < len(rows); i++ {
		row := rows[i]
		if isRowEmpty(row) {
			continue
		}

		productID, info, err := parseRow(row, columns)
		if err != nil {
			// Row numbers in messages are 1-based to match the spreadsheet.
			return nil, fmt.Errorf("sheet %q row %d: %w", sheetName, i+1, err)
		}

		catalog.products[productID] = info
	}

	return catalog, nil
}

// parseRow extracts one product from a data row.
func parseRow(row []string, columns SheetColumns) (string, types.Enrichment, error) {
	getCell := func(index int) string {
		if index >= 0 && index < len(row) {
			return strings.TrimSpace(row[index])
		}
		return ""
	}

	productID := getCell(columns.ProductIDColumn)
	if productID == "" {
		return "", types.Enrichment{}, fmt.Errorf("missing product id")
	}

	info := types.Enrichment{
		Category: getCell(columns.CategoryColumn),
		Brand:    getCell(columns.BrandColumn),
		Rating:   columns.DefaultRating,
	}
	if info.Category == "" {
		return "", types.Enrichment{}, fmt.Errorf("product %s has no category", productID)
	}
	if info.Brand == "" {
		info.Brand = columns.DefaultBrand
	}

	if ratingStr := getCell(columns.RatingColumn); ratingStr != "" {
		rating, err := strconv.ParseFloat(ratingStr, 64)
		if err != nil {
			return "", types.Enrichment{}, fmt.Errorf("product %s has invalid rating %q", productID, ratingStr)
		}
		info.Rating = rating
	}

	return productID, info, nil
}

// isRowEmpty checks if a row contains only empty cells.
func isRowEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
