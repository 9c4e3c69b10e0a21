package enrichment

import (
	"fmt"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
)

// Outcome is the per-record result of a catalog lookup.
type Outcome struct {
	Info    types.Enrichment
	Matched bool

	// Err is set when the lookup failed rather than missed.
	Err error
}

// Enrich attaches catalog metadata to every transaction.
// The output has one record per input record, in input order. A failure
// while looking up one record turns that record into a miss and does not
// affect the others. The input slice is not modified.
func Enrich(transactions []types.Transaction, catalog ProductCatalog) []types.EnrichedTransaction {
	enriched, _ := EnrichWithOutcomes(transactions, catalog)
	return enriched
}

// EnrichWithOutcomes is Enrich plus the outcome of every lookup, so callers
// can log failed lookups.
func EnrichWithOutcomes(transactions []types.Transaction, catalog ProductCatalog) ([]types.EnrichedTransaction, []Outcome) {
	enriched := make([]types.EnrichedTransaction, len(transactions))
	outcomes := make([]Outcome, len(transactions))

	for i, tx := range transactions {
		outcome := lookup(catalog, tx.ProductID)
		outcomes[i] = outcome

		if outcome.Matched {
			enriched[i] = types.Matched(tx, outcome.Info)
		} else {
			enriched[i] = types.Unmatched(tx)
		}
	}

	return enriched, outcomes
}

// lookup runs one catalog lookup, converting errors and panics into a miss.
func lookup(catalog ProductCatalog, productID string) (outcome Outcome) {
	if catalog == nil {
		return Outcome{}
	}

	defer func() {
		if r := recover(); r != nil {
			outcome = Outcome{Err: fmt.Errorf("catalog lookup for %q panicked: %v", productID, r)}
		}
	}()

	info, ok, err := catalog.Lookup(productID)
	if err != nil {
		return Outcome{Err: fmt.Errorf("catalog lookup for %q: %w", productID, err)}
	}
	if !ok {
		return Outcome{}
	}

	info.Category = stripDelimiter(info.Category)
	info.Brand = stripDelimiter(info.Brand)

	return Outcome{Info: info, Matched: true}
}

// recordDelimiter separates fields in the enriched data file.
const recordDelimiter = "|"

// stripDelimiter removes the enriched file's field delimiter from catalog
// text so every written row keeps its 12 fields.
func stripDelimiter(s string) string {
	return strings.ReplaceAll(s, recordDelimiter, "")
}

// UnmatchedProductIDs returns the distinct ProductIDs whose lookup failed,
// in first-seen order.
func UnmatchedProductIDs(enriched []types.EnrichedTransaction) []string {
	seen := make(map[string]bool)
	var ids []string

	for _, tx := range enriched {
		if tx.Match || seen[tx.ProductID] {
			continue
		}
		seen[tx.ProductID] = true
		ids = append(ids, tx.ProductID)
	}

	return ids
}

// FailedLookups counts outcomes that carry an error.
func FailedLookups(outcomes []Outcome) int {
	failed := 0
	for _, o := range outcomes {
		if o.Err != nil {
			failed++
		}
	}
	return failed
}
