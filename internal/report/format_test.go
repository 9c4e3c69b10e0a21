package report

import (
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/sales-report-pipeline/internal/enrichment"
	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sectionTitles = []string{
	"SALES ANALYTICS REPORT",
	"OVERALL SUMMARY",
	"REGION-WISE PERFORMANCE",
	"TOP 5 PRODUCTS",
	"TOP 5 CUSTOMERS",
	"DAILY SALES TREND",
	"PRODUCT PERFORMANCE ANALYSIS",
	"API ENRICHMENT SUMMARY",
}

func reportSales() []types.Transaction {
	return []types.Transaction{
		{TransactionID: "T001", Date: "2024-12-01", ProductID: "P101", ProductName: "Laptop", Quantity: 2, UnitPrice: 45000, CustomerID: "C001", Region: "North"},
		{TransactionID: "T002", Date: "2024-12-02", ProductID: "P102", ProductName: "Mouse", Quantity: 5, UnitPrice: 500, CustomerID: "C002", Region: "South"},
		{TransactionID: "T003", Date: "2024-12-02", ProductID: "P999", ProductName: "Gadget", Quantity: 12, UnitPrice: 100, CustomerID: "C002", Region: "South"},
	}
}

func fixedOptions() Options {
	return Options{GeneratedAt: time.Date(2024, 12, 18, 14, 30, 0, 0, time.UTC), RunID: "run-1"}
}

func TestFormat_SectionsInOrder(t *testing.T) {
	txs := reportSales()
	text := Format(txs, enrichment.Enrich(txs, enrichment.DefaultCatalog()), fixedOptions())

	last := -1
	for _, title := range sectionTitles {
		idx := strings.Index(text, title)
		require.GreaterOrEqual(t, idx, 0, "missing section %q", title)
		assert.Greater(t, idx, last, "section %q out of order", title)
		last = idx
	}
}

func TestFormat_Values(t *testing.T) {
	txs := reportSales()
	text := Format(txs, enrichment.Enrich(txs, enrichment.DefaultCatalog()), fixedOptions())

	assert.Contains(t, text, "Generated: 2024-12-18 14:30:00")
	assert.Contains(t, text, "Records Processed: 3")
	assert.Contains(t, text, "Run ID: run-1")
	assert.Contains(t, text, "₹93,700.00")
	assert.Contains(t, text, "2024-12-01 to 2024-12-02")
	assert.Contains(t, text, "96.05%")
	assert.Contains(t, text, "Best Selling Day: 2024-12-01")
	assert.Contains(t, text, "  - Laptop: 2 units")
	assert.Contains(t, text, "  - Mouse: 5 units")
	assert.NotContains(t, text, "  - Gadget")
	assert.Contains(t, text, "66.67%")
	assert.Contains(t, text, "P999")
}

func TestFormat_EmptyInput(t *testing.T) {
	text := Format(nil, nil, fixedOptions())

	for _, title := range sectionTitles {
		assert.Contains(t, text, title)
	}
	assert.Contains(t, text, "Records Processed: 0")
	assert.Contains(t, text, "₹0.00")
	assert.Contains(t, text, "Date Range:")
	assert.Contains(t, text, "Best Selling Day: N/A")
	assert.Contains(t, text, "0.00%")
	assert.GreaterOrEqual(t, strings.Count(text, "N/A"), 5)
}

func TestFormat_CustomOptions(t *testing.T) {
	txs := reportSales()
	opts := fixedOptions()
	opts.Currency = "$"
	opts.TopN = 1
	opts.LowStockThreshold = 3

	text := Format(txs, nil, opts)

	assert.Contains(t, text, "TOP 1 PRODUCTS")
	assert.Contains(t, text, "$93,700.00")
	assert.NotContains(t, text, "₹")
	assert.Contains(t, text, "Low Performing Products (quantity < 3):")
	assert.NotContains(t, text, "  - Mouse")
}

func TestMoney(t *testing.T) {
	assert.Equal(t, "₹1,234,567.89", Money("₹", 1234567.891))
	assert.Equal(t, "$0.50", Money("$", 0.5))
}

func TestPadding(t *testing.T) {
	assert.Equal(t, "ab   ", PadRight("ab", 5, ' '))
	assert.Equal(t, "00042", PadLeft("42", 5, '0'))
	assert.Equal(t, "₹1  ", PadRight("₹1", 4, ' '))
	assert.Equal(t, "toolong", PadRight("toolong", 3, ' '))
}
