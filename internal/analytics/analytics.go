// =============================================================================
// Sales Report Pipeline - Analytics
// =============================================================================
//
// Pure aggregation functions over validated transactions. Nothing in this
// package does I/O or mutates its input.
//
// GROUPING:
//   Every grouping is a single pass that keeps a key -> index map plus a
//   slice of groups in order of first occurrence. Sorting is always stable,
//   so groups with equal sort keys keep their first-seen order.
//
// =============================================================================

package analytics

import (
	"math"
	"sort"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
)

// DefaultTopN is used by TopSellingProducts when n <= 0.
const DefaultTopN = 5

// DefaultLowStockThreshold is used by LowPerformingProducts when threshold <= 0.
const DefaultLowStockThreshold = 10

// =============================================================================
// RESULT TYPES
// =============================================================================

// RegionStat aggregates sales for one region.
type RegionStat struct {
	Region           string
	TotalSales       float64
	TransactionCount int

	// Percentage of the grand total, rounded to two decimals.
	Percentage float64
}

// ProductStat aggregates sales for one product name.
type ProductStat struct {
	Name     string
	Quantity int
	Revenue  float64
}

// CustomerStat aggregates purchases for one customer.
type CustomerStat struct {
	CustomerID     string
	TotalSpent     float64
	PurchaseCount  int
	AvgOrderValue  float64
	ProductsBought []string
}

// DailyStat aggregates sales for one date.
type DailyStat struct {
	Date             string
	Revenue          float64
	TransactionCount int
	UniqueCustomers  int
}

// PeakDay is the date with the highest revenue.
type PeakDay struct {
	Date             string
	Revenue          float64
	TransactionCount int
}

// =============================================================================
// AGGREGATIONS
// =============================================================================

// TotalRevenue sums Quantity * UnitPrice over all transactions.
func TotalRevenue(transactions []types.Transaction) float64 {
	total := 0.0
	for _, tx := range transactions {
		total += tx.Amount()
	}
	return total
}

// RegionWiseSales groups revenue by region, sorted by TotalSales
// descending. Percentages are 0 when the grand total is 0.
func RegionWiseSales(transactions []types.Transaction) []RegionStat {
	index := make(map[string]int)
	stats := []RegionStat{}
	grand := 0.0

	for _, tx := range transactions {
		i, ok := index[tx.Region]
		if !ok {
			i = len(stats)
			index[tx.Region] = i
			stats = append(stats, RegionStat{Region: tx.Region})
		}
		amount := tx.Amount()
		stats[i].TotalSales += amount
		stats[i].TransactionCount++
		grand += amount
	}

	for i := range stats {
		if grand != 0 {
			stats[i].Percentage = round2(stats[i].TotalSales / grand * 100)
		}
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].TotalSales > stats[b].TotalSales
	})

	return stats
}

// TopSellingProducts returns at most n products by total quantity,
// descending. Products whose total quantity is not positive are omitted.
//
// PARAMETERS:
//   - transactions: input records
//   - n: maximum number of entries; n <= 0 means DefaultTopN
func TopSellingProducts(transactions []types.Transaction, n int) []ProductStat {
	if n <= 0 {
		n = DefaultTopN
	}

	all := groupProducts(transactions)
	products := make([]ProductStat, 0, len(all))
	for _, p := range all {
		if p.Quantity > 0 {
			products = append(products, p)
		}
	}

	sort.SliceStable(products, func(a, b int) bool {
		return products[a].Quantity > products[b].Quantity
	})

	if len(products) > n {
		products = products[:n]
	}
	return products
}

// CustomerAnalysis groups purchases by customer, sorted by TotalSpent
// descending. ProductsBought lists distinct product names in first-seen order.
func CustomerAnalysis(transactions []types.Transaction) []CustomerStat {
	index := make(map[string]int)
	seenProduct := make(map[string]map[string]bool)
	stats := []CustomerStat{}

	for _, tx := range transactions {
		i, ok := index[tx.CustomerID]
		if !ok {
			i = len(stats)
			index[tx.CustomerID] = i
			seenProduct[tx.CustomerID] = make(map[string]bool)
			stats = append(stats, CustomerStat{CustomerID: tx.CustomerID, ProductsBought: []string{}})
		}

		stats[i].TotalSpent += tx.Amount()
		stats[i].PurchaseCount++

		if !seenProduct[tx.CustomerID][tx.ProductName] {
			seenProduct[tx.CustomerID][tx.ProductName] = true
			stats[i].ProductsBought = append(stats[i].ProductsBought, tx.ProductName)
		}
	}

	for i := range stats {
		stats[i].AvgOrderValue = round2(stats[i].TotalSpent / float64(stats[i].PurchaseCount))
	}

	sort.SliceStable(stats, func(a, b int) bool {
		return stats[a].TotalSpent > stats[b].TotalSpent
	})

	return stats
}

// DailySalesTrend groups sales by date in ascending date order.
func DailySalesTrend(transactions []types.Transaction) []DailyStat {
	days := groupDays(transactions)

	sort.SliceStable(days, func(a, b int) bool {
		return days[a].Date < days[b].Date
	})

	return days
}

// FindPeakSalesDay returns the date with the highest revenue. On a tie the
// date encountered first in the input wins. ok is false for empty input.
func FindPeakSalesDay(transactions []types.Transaction) (peak PeakDay, ok bool) {
	for i, day := range groupDays(transactions) {
		if i == 0 || day.Revenue > peak.Revenue {
			peak = PeakDay{
				Date:             day.Date,
				Revenue:          day.Revenue,
				TransactionCount: day.TransactionCount,
			}
			ok = true
		}
	}
	return peak, ok
}

// LowPerformingProducts returns products whose total quantity is strictly
// below threshold, sorted by quantity ascending.
//
// PARAMETERS:
//   - transactions: input records
//   - threshold: exclusive upper bound; threshold <= 0 means DefaultLowStockThreshold
func LowPerformingProducts(transactions []types.Transaction, threshold int) []ProductStat {
	if threshold <= 0 {
		threshold = DefaultLowStockThreshold
	}

	low := []ProductStat{}
	for _, p := range groupProducts(transactions) {
		if p.Quantity < threshold {
			low = append(low, p)
		}
	}

	sort.SliceStable(low, func(a, b int) bool {
		return low[a].Quantity < low[b].Quantity
	})

	return low
}

// DateRange returns the lexicographically smallest and largest dates.
// Both are empty for empty input.
func DateRange(transactions []types.Transaction) (first, last string) {
	for i, tx := range transactions {
		if i == 0 || tx.Date < first {
			first = tx.Date
		}
		if i == 0 || tx.Date > last {
			last = tx.Date
		}
	}
	return first, last
}

// AverageOrderValue is TotalRevenue divided by the record count, or 0.
func AverageOrderValue(transactions []types.Transaction) float64 {
	if len(transactions) == 0 {
		return 0
	}
	return TotalRevenue(transactions) / float64(len(transactions))
}

// EnrichmentRate returns the matched count and its percentage of the input,
// rounded to two decimals.
func EnrichmentRate(enriched []types.EnrichedTransaction) (matched int, pct float64) {
	for _, tx := range enriched {
		if tx.Match {
			matched++
		}
	}
	if len(enriched) == 0 {
		return 0, 0
	}
	return matched, round2(float64(matched) / float64(len(enriched)) * 100)
}

// =============================================================================
// HELPERS
// =============================================================================

func groupProducts(transactions []types.Transaction) []ProductStat {
	index := make(map[string]int)
	products := []ProductStat{}

	for _, tx := range transactions {
		i, ok := index[tx.ProductName]
		if !ok {
			i = len(products)
			index[tx.ProductName] = i
			products = append(products, ProductStat{Name: tx.ProductName})
		}
		products[i].Quantity += tx.Quantity
		products[i].Revenue += tx.Amount()
	}

	return products
}

// groupDays returns per-date stats in order of first occurrence.
func groupDays(transactions []types.Transaction) []DailyStat {
	index := make(map[string]int)
	customers := make(map[string]map[string]bool)
	days := []DailyStat{}

	for _, tx := range transactions {
		i, ok := index[tx.Date]
		if !ok {
			i = len(days)
			index[tx.Date] = i
			customers[tx.Date] = make(map[string]bool)
			days = append(days, DailyStat{Date: tx.Date})
		}
		days[i].Revenue += tx.Amount()
		days[i].TransactionCount++
		customers[tx.Date][tx.CustomerID] = true
	}

	for i := range days {
		days[i].UniqueCustomers = len(customers[days[i].Date])
	}

	return days
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
