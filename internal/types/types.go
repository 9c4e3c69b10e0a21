// =============================================================================
// Sales Report Pipeline - Shared Types
// =============================================================================
//
// This package contains the record types shared by every pipeline stage to
// avoid import cycles. Types defined here are used by:
//   - salesparser  (produces Transaction)
//   - validation   (filters Transaction)
//   - enrichment   (produces EnrichedTransaction)
//   - analytics    (aggregates both)
//   - report       (renders both)
//   - export       (writes/reads EnrichedTransaction)
//
// OWNERSHIP:
//   Records are values. Each stage returns a new slice; no stage mutates the
//   slice it was given.
//
// =============================================================================

package types

// =============================================================================
// TRANSACTION TYPES
// =============================================================================

// Transaction is one parsed, not-yet-validated sales record.
type Transaction struct {
	// TransactionID is expected to start with "T".
	TransactionID string

	// Date is an ISO "YYYY-MM-DD" string. Lexicographic order is
	// chronological order, so it doubles as the sort key.
	Date string

	// ProductID is expected to start with "P".
	ProductID string

	// ProductName has all comma characters removed by the parser.
	ProductName string

	// Quantity must be > 0 for the record to be valid.
	Quantity int

	// UnitPrice must be > 0 for the record to be valid.
	UnitPrice float64

	// CustomerID must be non-empty and start with "C".
	CustomerID string

	// Region must be one of North, South, East, West.
	Region string
}

// Amount returns Quantity × UnitPrice. It is computed on every call.
func (t Transaction) Amount() float64 {
	return float64(t.Quantity) * t.UnitPrice
}

// =============================================================================
// ENRICHMENT TYPES
// =============================================================================

// Enrichment is the product metadata a catalog returns for a ProductID.
type Enrichment struct {
	Category string
	Brand    string
	Rating   float64
}

// EnrichedTransaction is a copy of a Transaction plus catalog metadata.
// Nil pointers mean "absent" and are written as empty strings.
type EnrichedTransaction struct {
	Transaction

	// Category is the catalog category, nil when the lookup missed.
	Category *string

	// Brand is the catalog brand, nil when the lookup missed.
	Brand *string

	// Rating is the catalog rating, nil when the lookup missed.
	Rating *float64

	// Match is true iff the catalog lookup by ProductID succeeded.
	Match bool
}

// Matched builds an EnrichedTransaction for a successful lookup.
func Matched(tx Transaction, info Enrichment) EnrichedTransaction {
	category := info.Category
	brand := info.Brand
	rating := info.Rating

	return EnrichedTransaction{
		Transaction: tx,
		Category:    &category,
		Brand:       &brand,
		Rating:      &rating,
		Match:       true,
	}
}

// Unmatched builds an EnrichedTransaction for a failed lookup.
func Unmatched(tx Transaction) EnrichedTransaction {
	return EnrichedTransaction{Transaction: tx}
}
