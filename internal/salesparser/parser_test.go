package salesparser

import (
	"strings"
	"testing"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_SingleLine(t *testing.T) {
	got := Parse([]string{"T001|2024-01-01|P101|Laptop|2|50000|C001|North"})

	require.Len(t, got, 1)
	assert.Equal(t, types.Transaction{
		TransactionID: "T001",
		Date:          "2024-01-01",
		ProductID:     "P101",
		ProductName:   "Laptop",
		Quantity:      2,
		UnitPrice:     50000.0,
		CustomerID:    "C001",
		Region:        "North",
	}, got[0])
	assert.InDelta(t, 100000.0, got[0].Amount(), 1e-9)
}

func TestParse_DropsAndCleans(t *testing.T) {
	tests := []struct {
		name      string
		line      string
		wantCount int
		want      func(t *testing.T, tx types.Transaction)
	}{
		{
			name:      "seven fields dropped",
			line:      "T002|2024-01-01|P102|Mouse|2|500|C002",
			wantCount: 0,
		},
		{
			name:      "nine fields dropped",
			line:      "T002|2024-01-01|P102|Mouse|2|500|C002|South|extra",
			wantCount: 0,
		},
		{
			name:      "non numeric quantity dropped",
			line:      "T003|2024-01-01|P102|Mouse|two|500|C002|South",
			wantCount: 0,
		},
		{
			name:      "non numeric price dropped",
			line:      "T003|2024-01-01|P102|Mouse|2|abc|C002|South",
			wantCount: 0,
		},
		{
			name:      "fractional quantity dropped",
			line:      "T003|2024-01-01|P102|Mouse|2.5|500|C002|South",
			wantCount: 0,
		},
		{
			name:      "commas stripped from name and numbers",
			line:      "T004|2024-01-02|P104|Monitor,27 inch|1,000|12,500.50|C004|East",
			wantCount: 1,
			want: func(t *testing.T, tx types.Transaction) {
				assert.Equal(t, "Monitor27 inch", tx.ProductName)
				assert.Equal(t, 1000, tx.Quantity)
				assert.InDelta(t, 12500.50, tx.UnitPrice, 1e-9)
			},
		},
		{
			name:      "negative quantity kept for validator",
			line:      "T005|2024-01-02|P101|Laptop|-1|50000|C005|West",
			wantCount: 1,
			want: func(t *testing.T, tx types.Transaction) {
				assert.Equal(t, -1, tx.Quantity)
			},
		},
		{
			name:      "padded numbers parse, text fields kept as split",
			line:      "T007| 2024-01-03| P101| Laptop | 2 | 50,000 | C001| North",
			wantCount: 1,
			want: func(t *testing.T, tx types.Transaction) {
				assert.Equal(t, 2, tx.Quantity)
				assert.InDelta(t, 50000.0, tx.UnitPrice, 1e-9)
				assert.Equal(t, " P101", tx.ProductID)
				assert.Equal(t, " Laptop ", tx.ProductName)
				assert.Equal(t, " North", tx.Region)
			},
		},
		{
			name:      "empty customer kept for validator",
			line:      "T006|2024-01-02|P101|Laptop|1|50000||West",
			wantCount: 1,
			want: func(t *testing.T, tx types.Transaction) {
				assert.Empty(t, tx.CustomerID)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Parse([]string{tt.line})
			require.Len(t, got, tt.wantCount)
			if tt.want != nil {
				tt.want(t, got[0])
			}
		})
	}
}

func TestParse_PreservesOrderAndNeverGrows(t *testing.T) {
	lines := []string{
		"T010|2024-01-03|P103|Keyboard|3|1500|C010|South",
		"broken line",
		"T011|2024-01-01|P101|Lap,top|1|50000|C011|North",
		"T012|2024-01-02|P105|Webcam|x|3000|C012|East",
		"T013|2024-01-02|P105|Webcam|4|3000|C012|East",
	}

	got := Parse(lines)

	assert.LessOrEqual(t, len(got), len(lines))
	require.Len(t, got, 3)
	assert.Equal(t, []string{"T010", "T011", "T013"}, []string{got[0].TransactionID, got[1].TransactionID, got[2].TransactionID})
	for _, tx := range got {
		assert.False(t, strings.Contains(tx.ProductName, ","), "product name %q contains a comma", tx.ProductName)
	}
}

func TestParse_EmptyInput(t *testing.T) {
	got := Parse(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestParseWithStats(t *testing.T) {
	lines := []string{
		"T001|2024-01-01|P101|Laptop|2|50000|C001|North",
		"T002|2024-01-01|P102|Mouse|2|500|C002",
		"T003|2024-01-01|P102|Mouse|x|500|C002|South",
		"T004|2024-01-01|P102|Mouse|2|y|C002|South",
	}

	got, stats := ParseWithStats(lines)

	assert.Len(t, got, 1)
	assert.Equal(t, 4, stats.LinesRead)
	assert.Equal(t, 1, stats.Parsed)
	assert.Equal(t, 3, stats.DroppedTotal())
	assert.Equal(t, 1, stats.Dropped[DropFieldCount])
	assert.Equal(t, 1, stats.Dropped[DropQuantity])
	assert.Equal(t, 1, stats.Dropped[DropUnitPrice])
}

func TestGetUniqueValues(t *testing.T) {
	txs := Parse([]string{
		"T001|2024-01-01|P101|Laptop|2|50000|C001|North",
		"T002|2024-01-01|P102|Mouse|2|500|C002|South",
		"T003|2024-01-02|P101|Laptop|1|50000|C001|North",
	})

	regions := GetUniqueValues(txs, func(tx types.Transaction) string { return tx.Region })
	assert.Equal(t, []string{"North", "South"}, regions)
}
