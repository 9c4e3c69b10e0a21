// =============================================================================
// Sales Report Pipeline - Report Formatter
// =============================================================================
//
// Renders aggregation results into the fixed-layout text report.
//
// REPORT LAYOUT:
//   1. Header (generation time, record count, run ID)
//   2. OVERALL SUMMARY
//   3. REGION-WISE PERFORMANCE
//   4. TOP 5 PRODUCTS
//   5. TOP 5 CUSTOMERS
//   6. DAILY SALES TREND
//   7. PRODUCT PERFORMANCE ANALYSIS
//   8. API ENRICHMENT SUMMARY
//
// Every section renders even for empty input, with zero values and "N/A".
//
// CUSTOMIZATION:
//   - Currency symbol, top-N size and low stock threshold via Options
//   - Column widths in the section writers below
//
// =============================================================================

package report

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-report-pipeline/internal/analytics"
	"github.com/ginjaninja78/sales-report-pipeline/internal/enrichment"
	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	ruleWidth    = 70
	notAvailable = "N/A"

	// TimestampLayout is the layout of the Generated line.
	TimestampLayout = "2006-01-02 15:04:05"
)

// =============================================================================
// FORMAT OPTIONS
// =============================================================================

// Options controls report rendering.
type Options struct {
	// GeneratedAt is printed in the header.
	// Default: time.Now()
	GeneratedAt time.Time

	// Currency is prefixed to every money value.
	// Default: "₹"
	Currency string

	// TopN is the size of the product and customer rankings.
	// Default: 5
	TopN int

	// LowStockThreshold is the exclusive quantity bound for low performers.
	// Default: 10
	LowStockThreshold int

	// RunID identifies the pipeline run. Omitted from the header when empty.
	RunID string
}

// DefaultOptions returns the default report options.
func DefaultOptions() Options {
	return Options{
		GeneratedAt:       time.Now(),
		Currency:          "₹",
		TopN:              analytics.DefaultTopN,
		LowStockThreshold: analytics.DefaultLowStockThreshold,
	}
}

func (o Options) withDefaults() Options {
	defaults := DefaultOptions()
	if o.GeneratedAt.IsZero() {
		o.GeneratedAt = defaults.GeneratedAt
	}
	if o.Currency == "" {
		o.Currency = defaults.Currency
	}
	if o.TopN <= 0 {
		o.TopN = defaults.TopN
	}
	if o.LowStockThreshold <= 0 {
		o.LowStockThreshold = defaults.LowStockThreshold
	}
	return o
}

// =============================================================================
// REPORT GENERATION
// =============================================================================

// formatter carries the options and number printer for one report.
type formatter struct {
	opts    Options
	printer *message.Printer
	b       strings.Builder
}

// Format renders the full text report.
//
// PARAMETERS:
//   - transactions: the validated transactions
//   - enriched: the enrichment output for the same transactions
//   - opts: rendering options; zero fields take their defaults
//
// RETURNS:
//   - The report text, newline terminated.
func Format(transactions []types.Transaction, enriched []types.EnrichedTransaction, opts Options) string {
	f := &formatter{
		opts:    opts.withDefaults(),
		printer: message.NewPrinter(language.English),
	}

	f.writeHeader(transactions)
	f.writeSummary(transactions)
	f.writeRegions(transactions)
	f.writeTopProducts(transactions)
	f.writeTopCustomers(transactions)
	f.writeDailyTrend(transactions)
	f.writeProductPerformance(transactions)
	f.writeEnrichmentSummary(enriched)

	return f.b.String()
}

// Money renders v with the currency symbol and thousands-grouped two decimals.
func Money(currency string, v float64) string {
	return currency + message.NewPrinter(language.English).Sprintf("%.2f", v)
}

func (f *formatter) money(v float64) string {
	return f.opts.Currency + f.printer.Sprintf("%.2f", v)
}

func (f *formatter) count(n int) string {
	return f.printer.Sprintf("%d", n)
}

func (f *formatter) line(format string, args ...interface{}) {
	fmt.Fprintf(&f.b, format, args...)
	f.b.WriteString("\n")
}

func (f *formatter) section(title string) {
	f.b.WriteString("\n")
	f.b.WriteString(title)
	f.b.WriteString("\n")
	f.b.WriteString(strings.Repeat("-", ruleWidth))
	f.b.WriteString("\n")
}

// =============================================================================
// SECTION WRITERS
// =============================================================================

func (f *formatter) writeHeader(transactions []types.Transaction) {
	rule := strings.Repeat("=", ruleWidth)
	title := "SALES ANALYTICS REPORT"

	f.line("%s", rule)
	f.line("%s", PadLeft(title, (ruleWidth+len(title))/2, ' '))
	f.line("%s", rule)
	f.line("Generated: %s", f.opts.GeneratedAt.Format(TimestampLayout))
	f.line("Records Processed: %s", f.count(len(transactions)))
	if f.opts.RunID != "" {
		f.line("Run ID: %s", f.opts.RunID)
	}
	f.line("%s", rule)
}

func (f *formatter) writeSummary(transactions []types.Transaction) {
	f.section("OVERALL SUMMARY")

	dateRange := notAvailable
	if first, last := analytics.DateRange(transactions); first != "" || last != "" {
		dateRange = first + " to " + last
	}

	f.line("%s%s", PadRight("Total Revenue:", 24, ' '), f.money(analytics.TotalRevenue(transactions)))
	f.line("%s%s", PadRight("Total Transactions:", 24, ' '), f.count(len(transactions)))
	f.line("%s%s", PadRight("Average Order Value:", 24, ' '), f.money(analytics.AverageOrderValue(transactions)))
	f.line("%s%s", PadRight("Date Range:", 24, ' '), dateRange)
}

func (f *formatter) writeRegions(transactions []types.Transaction) {
	f.section("REGION-WISE PERFORMANCE")

	t := newTable([]string{"Region", "Sales", "% of Total", "Transactions"}, 12, 22, 14, 12)
	for _, r := range analytics.RegionWiseSales(transactions) {
		t.add(r.Region, f.money(r.TotalSales), fmt.Sprintf("%.2f%%", r.Percentage), f.count(r.TransactionCount))
	}
	t.write(&f.b)
}

func (f *formatter) writeTopProducts(transactions []types.Transaction) {
	f.section(fmt.Sprintf("TOP %d PRODUCTS", f.opts.TopN))

	t := newTable([]string{"Rank", "Product Name", "Quantity", "Revenue"}, 6, 26, 10, 20)
	for i, p := range analytics.TopSellingProducts(transactions, f.opts.TopN) {
		t.add(strconv.Itoa(i+1), p.Name, f.count(p.Quantity), f.money(p.Revenue))
	}
	t.write(&f.b)
}

func (f *formatter) writeTopCustomers(transactions []types.Transaction) {
	f.section(fmt.Sprintf("TOP %d CUSTOMERS", f.opts.TopN))

	customers := analytics.CustomerAnalysis(transactions)
	if len(customers) > f.opts.TopN {
		customers = customers[:f.opts.TopN]
	}

	t := newTable([]string{"Rank", "Customer ID", "Total Spent", "Order Count"}, 6, 16, 22, 12)
	for i, c := range customers {
		t.add(strconv.Itoa(i+1), c.CustomerID, f.money(c.TotalSpent), f.count(c.PurchaseCount))
	}
	t.write(&f.b)
}

func (f *formatter) writeDailyTrend(transactions []types.Transaction) {
	f.section("DAILY SALES TREND")

	t := newTable([]string{"Date", "Revenue", "Transactions", "Unique Customers"}, 14, 22, 14, 16)
	for _, d := range analytics.DailySalesTrend(transactions) {
		t.add(d.Date, f.money(d.Revenue), f.count(d.TransactionCount), f.count(d.UniqueCustomers))
	}
	t.write(&f.b)
}

func (f *formatter) writeProductPerformance(transactions []types.Transaction) {
	f.section("PRODUCT PERFORMANCE ANALYSIS")

	if peak, ok := analytics.FindPeakSalesDay(transactions); ok {
		f.line("Best Selling Day: %s (Revenue: %s, Transactions: %s)",
			peak.Date, f.money(peak.Revenue), f.count(peak.TransactionCount))
	} else {
		f.line("Best Selling Day: %s", notAvailable)
	}

	f.line("Low Performing Products (quantity < %d):", f.opts.LowStockThreshold)
	low := analytics.LowPerformingProducts(transactions, f.opts.LowStockThreshold)
	if len(low) == 0 {
		f.line("  None")
		return
	}
	for _, p := range low {
		f.line("  - %s: %s units", p.Name, f.count(p.Quantity))
	}
}

func (f *formatter) writeEnrichmentSummary(enriched []types.EnrichedTransaction) {
	f.section("API ENRICHMENT SUMMARY")

	matched, pct := analytics.EnrichmentRate(enriched)

	f.line("%s%s", PadRight("Total Records Enriched:", 26, ' '), f.count(len(enriched)))
	f.line("%s%s", PadRight("Successful Matches:", 26, ' '), f.count(matched))
	f.line("%s%.2f%%", PadRight("Success Rate:", 26, ' '), pct)

	unmatched := enrichment.UnmatchedProductIDs(enriched)
	if len(unmatched) == 0 {
		f.line("%s%s", PadRight("Unmatched Product IDs:", 26, ' '), "None")
	} else {
		f.line("%s%s", PadRight("Unmatched Product IDs:", 26, ' '), strings.Join(unmatched, ", "))
	}

	f.line("%s", strings.Repeat("=", ruleWidth))
}
