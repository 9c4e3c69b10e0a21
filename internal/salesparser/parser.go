// =============================================================================
// Sales Report Pipeline - Sales Log Parser Module
// =============================================================================
//
// This module turns raw pipe-delimited lines from the sales log into typed
// Transaction records.
//
// LINE FORMAT (8 fields, fixed order):
//   TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
//   T001|2024-01-01|P101|Laptop|2|50000|C001|North
//
// PARSING RULES:
//   - A line that does not split into exactly 8 fields is dropped.
//   - Commas are removed from ProductName.
//   - Commas are removed from Quantity and UnitPrice before conversion
//     ("1,200" -> 1200). A conversion failure drops the line.
//   - Dropped lines leave no trace in the output. Rejecting well-formed but
//     invalid records is the validation module's job.
//
// The header line and blank lines are removed by the file reader
// (pkg/utils) before lines reach this module.
//
// =============================================================================

package salesparser

import (
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
)

// =============================================================================
// LINE LAYOUT
// =============================================================================

// Delimiter separates fields within a line.
const Delimiter = "|"

// FieldCount is the number of fields every data line must have.
const FieldCount = 8

// Column positions within a split line.
const (
	colTransactionID = iota
	colDate
	colProductID
	colProductName
	colQuantity
	colUnitPrice
	colCustomerID
	colRegion
)

// Drop reasons reported by ParseWithStats.
const (
	DropFieldCount = "field_count"
	DropQuantity   = "quantity"
	DropUnitPrice  = "unit_price"
)

// =============================================================================
// PARSE STATISTICS
// =============================================================================

// Stats describes what happened to the input lines of one parse call.
// It is diagnostic only; Parse does not surface it.
type Stats struct {
	// LinesRead is the number of lines given to the parser.
	LinesRead int

	// Parsed is the number of Transaction records emitted.
	Parsed int

	// Dropped counts dropped lines by reason.
	Dropped map[string]int
}

// DroppedTotal returns the number of dropped lines across all reasons.
func (s Stats) DroppedTotal() int {
	total := 0
	for _, n := range s.Dropped {
		total += n
	}
	return total
}

// =============================================================================
// PARSER FUNCTIONS
// =============================================================================

// Parse converts raw lines into transactions, preserving input order.
//
// PARAMETERS:
//   - lines: Data lines (header already removed).
//
// RETURNS:
//   - The parsed transactions. Never nil.
func Parse(lines []string) []types.Transaction {
	transactions, _ := ParseWithStats(lines)
	return transactions
}

// ParseWithStats is Parse plus a breakdown of dropped lines.
func ParseWithStats(lines []string) ([]types.Transaction, Stats) {
	stats := Stats{
		LinesRead: len(lines),
		Dropped:   make(map[string]int),
	}

	transactions := make([]types.Transaction, 0, len(lines))

	for _, line := range lines {
		tx, reason := parseLine(line)
		if reason != "" {
			stats.Dropped[reason]++
			continue
		}
		transactions = append(transactions, tx)
	}

	stats.Parsed = len(transactions)
	return transactions, stats
}

// parseLine parses a single line. A non-empty reason means the line was
// dropped.
func parseLine(line string) (types.Transaction, string) {
	parts := strings.Split(line, Delimiter)
	if len(parts) != FieldCount {
		return types.Transaction{}, DropFieldCount
	}

	// Numbers tolerate surrounding spaces; text fields are kept as split so
	// a padded ID or region still fails validation.
	quantity, err := strconv.Atoi(strings.TrimSpace(stripCommas(parts[colQuantity])))
	if err != nil {
		return types.Transaction{}, DropQuantity
	}

	unitPrice, err := strconv.ParseFloat(strings.TrimSpace(stripCommas(parts[colUnitPrice])), 64)
	if err != nil {
		return types.Transaction{}, DropUnitPrice
	}

	return types.Transaction{
		TransactionID: parts[colTransactionID],
		Date:          parts[colDate],
		ProductID:     parts[colProductID],
		ProductName:   stripCommas(parts[colProductName]),
		Quantity:      quantity,
		UnitPrice:     unitPrice,
		CustomerID:    parts[colCustomerID],
		Region:        parts[colRegion],
	}, ""
}

// stripCommas removes every comma, used for thousands separators in numbers
// and stray commas in product names.
func stripCommas(s string) string {
	return strings.ReplaceAll(s, ",", "")
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// GetUniqueValues returns the distinct values of a field in first-seen order.
//
// PARAMETERS:
//   - transactions: The parsed records.
//   - field: Extracts the value to deduplicate.
func GetUniqueValues(transactions []types.Transaction, field func(types.Transaction) string) []string {
	seen := make(map[string]bool)
	var unique []string

	for _, tx := range transactions {
		value := field(tx)
		if !seen[value] {
			seen[value] = true
			unique = append(unique, value)
		}
	}

	return unique
}
