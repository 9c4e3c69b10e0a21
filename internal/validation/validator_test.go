package validation

import (
	"testing"

	"github.com/ginjaninja78/sales-report-pipeline/internal/salesparser"
	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validTx(id string) types.Transaction {
	return types.Transaction{
		TransactionID: id,
		Date:          "2024-01-01",
		ProductID:     "P101",
		ProductName:   "Laptop",
		Quantity:      2,
		UnitPrice:     50000,
		CustomerID:    "C001",
		Region:        "North",
	}
}

func TestCheckTransaction_Rules(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(tx *types.Transaction)
		wantRule string
	}{
		{name: "valid", mutate: func(tx *types.Transaction) {}, wantRule: ""},
		{name: "bad transaction id", mutate: func(tx *types.Transaction) { tx.TransactionID = "X001" }, wantRule: RuleTransactionID},
		{name: "bad product id", mutate: func(tx *types.Transaction) { tx.ProductID = "101" }, wantRule: RuleProductID},
		{name: "empty customer", mutate: func(tx *types.Transaction) { tx.CustomerID = "" }, wantRule: RuleCustomerID},
		{name: "bad customer prefix", mutate: func(tx *types.Transaction) { tx.CustomerID = "K001" }, wantRule: RuleCustomerID},
		{name: "zero quantity", mutate: func(tx *types.Transaction) { tx.Quantity = 0 }, wantRule: RuleQuantityPrice},
		{name: "negative price", mutate: func(tx *types.Transaction) { tx.UnitPrice = -5 }, wantRule: RuleQuantityPrice},
		{name: "central region", mutate: func(tx *types.Transaction) { tx.Region = "Central" }, wantRule: RuleRegion},
		{name: "empty region", mutate: func(tx *types.Transaction) { tx.Region = "" }, wantRule: RuleRegion},
		{name: "lowercase region", mutate: func(tx *types.Transaction) { tx.Region = "north" }, wantRule: RuleRegion},
		{
			name: "first failing rule wins",
			mutate: func(tx *types.Transaction) {
				tx.ProductID = "X"
				tx.Quantity = 0
				tx.Region = "Central"
			},
			wantRule: RuleProductID,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := validTx("T001")
			tt.mutate(&tx)

			err := CheckTransaction(tx)
			if tt.wantRule == "" {
				assert.Nil(t, err)
				return
			}
			require.NotNil(t, err)
			assert.Equal(t, tt.wantRule, err.Rule)
		})
	}
}

func TestValidate_CountsEachRejectOnce(t *testing.T) {
	bad := validTx("T002")
	bad.ProductID = "X"
	bad.CustomerID = ""
	bad.Region = "Central"

	central := validTx("T003")
	central.Region = "Central"

	result := Validate([]types.Transaction{validTx("T001"), bad, central}, Filters{})

	assert.Equal(t, 2, result.InvalidCount)
	assert.Equal(t, Summary{TotalInput: 3, Invalid: 2, FinalCount: 1}, result.Summary)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, 1, result.Errors[0].Index)
	assert.Equal(t, RuleRegion, result.Errors[1].Rule)
	assert.Equal(t, map[string]int{RuleProductID: 1, RuleRegion: 1}, CountByRule(result.Errors))
}

func TestValidate_PaddedFieldsAreInvalid(t *testing.T) {
	lines := []string{
		"T001|2024-01-01| P101|Laptop|2|50000|C001|North",
		"T002|2024-01-01|P101|Laptop|2|50000|C001| North",
		"T003|2024-01-01|P101|Laptop|2|50000|C001|North",
	}

	result := Validate(salesparser.Parse(lines), Filters{})

	assert.Equal(t, 2, result.InvalidCount)
	require.Len(t, result.Valid, 1)
	assert.Equal(t, "T003", result.Valid[0].TransactionID)
	require.Len(t, result.Errors, 2)
	assert.Equal(t, RuleProductID, result.Errors[0].Rule)
	assert.Equal(t, RuleRegion, result.Errors[1].Rule)
}

func TestValidate_Filters(t *testing.T) {
	small := validTx("T001")
	small.Quantity = 1
	small.UnitPrice = 500 // amount 500

	medium := validTx("T002")
	medium.Region = "South"
	medium.Quantity = 1
	medium.UnitPrice = 5000 // amount 5000

	large := validTx("T003") // amount 100000

	input := []types.Transaction{small, medium, large}

	tests := []struct {
		name    string
		filters Filters
		wantIDs []string
	}{
		{name: "no filters", filters: Filters{}, wantIDs: []string{"T001", "T002", "T003"}},
		{name: "region", filters: Filters{Region: "South"}, wantIDs: []string{"T002"}},
		{name: "min amount", filters: Filters{MinAmount: 1000}, wantIDs: []string{"T002", "T003"}},
		{name: "max amount", filters: Filters{MaxAmount: 5000}, wantIDs: []string{"T001", "T002"}},
		{name: "min and max", filters: Filters{MinAmount: 1000, MaxAmount: 10000}, wantIDs: []string{"T002"}},
		{name: "zero min disables bound", filters: Filters{MinAmount: 0, MaxAmount: 600}, wantIDs: []string{"T001"}},
		{name: "zero max disables bound", filters: Filters{MinAmount: 600, MaxAmount: 0}, wantIDs: []string{"T002", "T003"}},
		{name: "negative min is active", filters: Filters{MinAmount: -1}, wantIDs: []string{"T001", "T002", "T003"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Validate(input, tt.filters)

			var ids []string
			for _, tx := range result.Valid {
				ids = append(ids, tx.TransactionID)
			}
			assert.Equal(t, tt.wantIDs, ids)
			assert.Zero(t, result.InvalidCount, "filters must not count as invalid")
			assert.Equal(t, len(tt.wantIDs), result.Summary.FinalCount)
			assert.Equal(t, 3, result.Summary.TotalInput)
		})
	}
}

func TestValidate_EmptyInput(t *testing.T) {
	result := Validate(nil, Filters{})
	assert.NotNil(t, result.Valid)
	assert.Equal(t, Summary{}, result.Summary)
	assert.Equal(t, "No validation errors.", FormatErrors(result.Errors))
}

func TestFormatErrors(t *testing.T) {
	tx := validTx("T009")
	tx.Region = "Central"
	result := Validate([]types.Transaction{tx}, Filters{})

	out := FormatErrors(result.Errors)
	assert.Contains(t, out, "1 error(s)")
	assert.Contains(t, out, "[REGION] record 0 (T009)")
}
