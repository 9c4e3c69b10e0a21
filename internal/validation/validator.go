// =============================================================================
// Sales Report Pipeline - Validation Engine
// =============================================================================
//
// This module rejects malformed transactions and applies the optional
// business filters (region, amount range).
//
// VALIDATION STRATEGY:
//   Validation happens in two tiers:
//   1. Structural rules. A record failing any rule is invalid, counted in
//      InvalidCount, and excluded. Rules run in a fixed order and the first
//      failing rule wins, so a record is never counted twice.
//   2. Query filters. Structurally valid records may still be narrowed out
//      by the caller's filters. These are NOT validity failures and do not
//      touch InvalidCount.
//
// STRUCTURAL RULES (in order):
//   1. transaction_id  : TransactionID starts with "T"
//   2. product_id      : ProductID starts with "P"
//   3. customer_id     : CustomerID non-empty and starts with "C"
//   4. quantity_price  : Quantity > 0 and UnitPrice > 0
//   5. region          : Region is one of North, South, East, West
//
// KNOWN QUIRK:
//   A MinAmount or MaxAmount of exactly 0 means "no bound". Only a non-zero
//   value activates the filter. This matches the behaviour of the original
//   report and is kept as-is.
//
// =============================================================================

package validation

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
)

// =============================================================================
// RULE NAMES
// =============================================================================

// Rule names, in evaluation order.
const (
	RuleTransactionID = "transaction_id"
	RuleProductID     = "product_id"
	RuleCustomerID    = "customer_id"
	RuleQuantityPrice = "quantity_price"
	RuleRegion        = "region"
)

// ValidRegions is the fixed set of accepted regions.
var ValidRegions = []string{"North", "South", "East", "West"}

// IsValidRegion reports whether region is one of ValidRegions.
func IsValidRegion(region string) bool {
	for _, r := range ValidRegions {
		if region == r {
			return true
		}
	}
	return false
}

// =============================================================================
// VALIDATION ERROR TYPES
// =============================================================================

// ValidationError describes why one record was rejected.
type ValidationError struct {
	// TransactionID identifies the rejected record (may itself be malformed).
	TransactionID string

	// Index is the position of the record in the validator's input.
	Index int

	// Rule is the first rule the record failed.
	Rule string

	// Message is a human-readable explanation.
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("[%s] record %d (%s): %s", strings.ToUpper(e.Rule), e.Index, e.TransactionID, e.Message)
}

// =============================================================================
// VALIDATION RESULT
// =============================================================================

// Summary mirrors the run summary printed after validation.
type Summary struct {
	// TotalInput is the number of records given to Validate.
	TotalInput int `json:"total_input"`

	// Invalid is the number of records rejected by the structural rules.
	Invalid int `json:"invalid"`

	// FinalCount is the number of records left after the query filters.
	FinalCount int `json:"final_count"`
}

// Result contains the output of Validate.
type Result struct {
	// Valid holds the structurally valid records that passed every filter.
	Valid []types.Transaction

	// InvalidCount equals Summary.Invalid.
	InvalidCount int

	// Summary is the run summary.
	Summary Summary

	// Errors holds one entry per rejected record, in input order.
	Errors []*ValidationError
}

// =============================================================================
// FILTERS
// =============================================================================

// Filters narrows the structurally valid records.
// Zero values disable each filter.
type Filters struct {
	// Region keeps only records from this region when non-empty.
	Region string

	// MinAmount drops records whose Amount is below it when non-zero.
	MinAmount float64

	// MaxAmount drops records whose Amount is above it when non-zero.
	MaxAmount float64
}

// keep reports whether a structurally valid record passes the filters.
func (f Filters) keep(tx types.Transaction) bool {
	if f.Region != "" && tx.Region != f.Region {
		return false
	}

	amount := tx.Amount()

	if f.MinAmount != 0 && amount < f.MinAmount {
		return false
	}
	if f.MaxAmount != 0 && amount > f.MaxAmount {
		return false
	}

	return true
}

// =============================================================================
// MAIN VALIDATION FUNCTION
// =============================================================================

// Validate applies the structural rules and then the filters.
//
// PARAMETERS:
//   - transactions: Parsed records, in input order.
//   - filters: Optional query filters.
//
// RETURNS:
//   - A Result. Valid is never nil.
func Validate(transactions []types.Transaction, filters Filters) Result {
	result := Result{
		Valid: make([]types.Transaction, 0, len(transactions)),
	}

	for i, tx := range transactions {
		if verr := CheckTransaction(tx); verr != nil {
			verr.Index = i
			result.Errors = append(result.Errors, verr)
			result.InvalidCount++
			continue
		}

		if !filters.keep(tx) {
			continue
		}

		result.Valid = append(result.Valid, tx)
	}

	result.Summary = Summary{
		TotalInput: len(transactions),
		Invalid:    result.InvalidCount,
		FinalCount: len(result.Valid),
	}

	return result
}

// CheckTransaction runs the structural rules against one record and returns
// the first failure, or nil if the record is structurally valid.
func CheckTransaction(tx types.Transaction) *ValidationError {
	fail := func(rule, format string, args ...interface{}) *ValidationError {
		return &ValidationError{
			TransactionID: tx.TransactionID,
			Rule:          rule,
			Message:       fmt.Sprintf(format, args...),
		}
	}

	// =========================================================================
	// IDENTIFIER PREFIXES
	// =========================================================================

	if !strings.HasPrefix(tx.TransactionID, "T") {
		return fail(RuleTransactionID, "transaction id %q must start with 'T'", tx.TransactionID)
	}

	if !strings.HasPrefix(tx.ProductID, "P") {
		return fail(RuleProductID, "product id %q must start with 'P'", tx.ProductID)
	}

	if tx.CustomerID == "" || !strings.HasPrefix(tx.CustomerID, "C") {
		return fail(RuleCustomerID, "customer id %q must be non-empty and start with 'C'", tx.CustomerID)
	}

	// =========================================================================
	// NUMERIC RANGES
	// =========================================================================

	if tx.Quantity <= 0 || tx.UnitPrice <= 0 {
		return fail(RuleQuantityPrice, "quantity (%d) and unit price (%g) must both be positive", tx.Quantity, tx.UnitPrice)
	}

	// =========================================================================
	// REGION
	// =========================================================================

	if tx.Region == "" || !IsValidRegion(tx.Region) {
		return fail(RuleRegion, "region %q is not one of %s", tx.Region, strings.Join(ValidRegions, ", "))
	}

	return nil
}

// =============================================================================
// ERROR FORMATTING
// =============================================================================

// CountByRule groups validation errors by the rule they failed.
func CountByRule(errors []*ValidationError) map[string]int {
	counts := make(map[string]int)
	for _, err := range errors {
		counts[err.Rule]++
	}
	return counts
}

// FormatErrors formats validation errors for display or logging.
func FormatErrors(errors []*ValidationError) string {
	if len(errors) == 0 {
		return "No validation errors."
	}

	var builder strings.Builder

	builder.WriteString(fmt.Sprintf("Validation completed with %d error(s):\n\n", len(errors)))

	for i, err := range errors {
		builder.WriteString(fmt.Sprintf("%d. %s\n", i+1, err.Error()))
	}

	return builder.String()
}
