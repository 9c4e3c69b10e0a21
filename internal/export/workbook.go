// =============================================================================
// Sales Report Pipeline - XLSX Workbook Export
// =============================================================================
//
// Writes the enriched records and the aggregation tables to an XLSX
// workbook so the report can be opened in a spreadsheet.
//
// WORKBOOK LAYOUT (one sheet each, header row in bold):
//   | Sheet     | Rows                                              |
//   |-----------|---------------------------------------------------|
//   | Enriched  | one per enriched record, same 12 columns as file  |
//   | Regions   | RegionWiseSales                                   |
//   | Products  | every product with positive quantity, by quantity |
//   | Customers | CustomerAnalysis                                  |
//   | Daily     | DailySalesTrend                                   |
//
// =============================================================================

package export

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/analytics"
	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/xuri/excelize/v2"
)

// Sheet names, in workbook order.
const (
	SheetEnriched  = "Enriched"
	SheetRegions   = "Regions"
	SheetProducts  = "Products"
	SheetCustomers = "Customers"
	SheetDaily     = "Daily"
)

// sheet is one worksheet's header and rows.
type sheet struct {
	name   string
	header []interface{}
	rows   [][]interface{}
}

// WriteWorkbook writes the workbook to path.
//
// PARAMETERS:
//   - path: destination .xlsx file
//   - transactions: the validated transactions
//   - enriched: the enrichment output for the same transactions
//
// RETURNS:
//   - An error if any sheet cannot be written or the file cannot be saved.
func WriteWorkbook(path string, transactions []types.Transaction, enriched []types.EnrichedTransaction) error {
	f := excelize.NewFile()
	defer f.Close()

	boldStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range buildSheets(transactions, enriched) {
		if i == 0 {
			// A new workbook starts with a single default sheet.
			if err := f.SetSheetName(f.GetSheetName(0), s.name); err != nil {
				return fmt.Errorf("failed to rename sheet: %w", err)
			}
		} else if _, err := f.NewSheet(s.name); err != nil {
			return fmt.Errorf("failed to create sheet '%s': %w", s.name, err)
		}

		if err := writeSheet(f, s, boldStyle); err != nil {
			return fmt.Errorf("error writing sheet '%s': %w", s.name, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}

	return nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if err := f.SetSheetRow(s.name, "A1", &s.header); err != nil {
		return err
	}

	lastHeader, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", lastHeader, headerStyle); err != nil {
		return err
	}

	for i := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &s.rows[i]); err != nil {
			return err
		}
	}

	lastCol, err := excelize.ColumnNumberToName(len(s.header))
	if err != nil {
		return err
	}
	return f.SetColWidth(s.name, "A", lastCol, 16)
}

func buildSheets(transactions []types.Transaction, enriched []types.EnrichedTransaction) []sheet {
	enrichedSheet := sheet{name: SheetEnriched, header: headerRow(EnrichedHeader...)}
	for _, tx := range enriched {
		enrichedSheet.rows = append(enrichedSheet.rows, []interface{}{
			tx.TransactionID, tx.Date, tx.ProductID, tx.ProductName,
			tx.Quantity, tx.UnitPrice, tx.CustomerID, tx.Region,
			optionalString(tx.Category), optionalString(tx.Brand), optionalCell(tx.Rating), formatBool(tx.Match),
		})
	}

	regions := sheet{name: SheetRegions, header: headerRow("Region", "Sales", "Percentage", "Transactions")}
	for _, r := range analytics.RegionWiseSales(transactions) {
		regions.rows = append(regions.rows, []interface{}{r.Region, r.TotalSales, r.Percentage, r.TransactionCount})
	}

	products := sheet{name: SheetProducts, header: headerRow("Product Name", "Quantity", "Revenue")}
	for _, p := range analytics.TopSellingProducts(transactions, len(transactions)) {
		products.rows = append(products.rows, []interface{}{p.Name, p.Quantity, p.Revenue})
	}

	customers := sheet{name: SheetCustomers, header: headerRow("Customer ID", "Total Spent", "Order Count", "Avg Order Value", "Products Bought")}
	for _, c := range analytics.CustomerAnalysis(transactions) {
		customers.rows = append(customers.rows, []interface{}{
			c.CustomerID, c.TotalSpent, c.PurchaseCount, c.AvgOrderValue, strings.Join(c.ProductsBought, ", "),
		})
	}

	daily := sheet{name: SheetDaily, header: headerRow("Date", "Revenue", "Transactions", "Unique Customers")}
	for _, d := range analytics.DailySalesTrend(transactions) {
		daily.rows = append(daily.rows, []interface{}{d.Date, d.Revenue, d.TransactionCount, d.UniqueCustomers})
	}

	return []sheet{enrichedSheet, regions, products, customers, daily}
}

func headerRow(names ...string) []interface{} {
	row := make([]interface{}, len(names))
	for i, n := range names {
		row[i] = n
	}
	return row
}

func optionalCell(v *float64) interface{} {
	if v == nil {
		return ""
	}
	return *v
}
