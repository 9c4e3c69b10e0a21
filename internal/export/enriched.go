// =============================================================================
// Sales Report Pipeline - Enriched Data Export
// =============================================================================
//
// Writes and reads the enriched sales file.
//
// FILE FORMAT (pipe-delimited, 12 columns, header row first):
//   TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region|API_Category|API_Brand|API_Rating|API_Match
//   T001|2024-12-01|P101|Laptop|2|45000|C001|North|Laptop|TechStore|4.5|True
//   T002|2024-12-01|P999|Gadget|1|100|C002|South||||False
//
// Absent enrichment fields are written as empty strings. API_Match is
// written as True or False. Numbers use the shortest decimal form.
//
// =============================================================================

package export

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
)

// Delimiter separates fields in the enriched file.
const Delimiter = "|"

// EnrichedHeader lists the enriched file's columns in order.
var EnrichedHeader = []string{
	"TransactionID", "Date", "ProductID", "ProductName",
	"Quantity", "UnitPrice", "CustomerID", "Region",
	"API_Category", "API_Brand", "API_Rating", "API_Match",
}

// =============================================================================
// WRITING
// =============================================================================

// WriteEnriched writes the enriched records to path, replacing any
// existing file.
func WriteEnriched(path string, enriched []types.EnrichedTransaction) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create enriched file: %w", err)
	}
	defer file.Close()

	if err := EncodeEnriched(file, enriched); err != nil {
		return err
	}

	return file.Sync()
}

// EncodeEnriched writes the header and one row per record to w.
func EncodeEnriched(w io.Writer, enriched []types.EnrichedTransaction) error {
	writer := bufio.NewWriter(w)

	writer.WriteString(strings.Join(EnrichedHeader, Delimiter))
	writer.WriteString("\n")

	for _, tx := range enriched {
		writer.WriteString(strings.Join(enrichedRow(tx), Delimiter))
		writer.WriteString("\n")
	}

	if err := writer.Flush(); err != nil {
		return fmt.Errorf("failed to write enriched data: %w", err)
	}
	return nil
}

func enrichedRow(tx types.EnrichedTransaction) []string {
	return []string{
		tx.TransactionID,
		tx.Date,
		tx.ProductID,
		tx.ProductName,
		strconv.Itoa(tx.Quantity),
		formatNumber(tx.UnitPrice),
		tx.CustomerID,
		tx.Region,
		optionalString(tx.Category),
		optionalString(tx.Brand),
		optionalNumber(tx.Rating),
		formatBool(tx.Match),
	}
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func optionalString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optionalNumber(v *float64) string {
	if v == nil {
		return ""
	}
	return formatNumber(*v)
}

func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// =============================================================================
// READING
// =============================================================================

// ReadEnriched reads an enriched file written by WriteEnriched.
func ReadEnriched(path string) ([]types.EnrichedTransaction, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open enriched file: %w", err)
	}
	defer file.Close()

	return DecodeEnriched(file)
}

// DecodeEnriched parses enriched rows from r. The first line is the header.
// Blank lines are skipped; any other malformed row is an error.
func DecodeEnriched(r io.Reader) ([]types.EnrichedTransaction, error) {
	scanner := bufio.NewScanner(r)
	records := []types.EnrichedTransaction{}

	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if lineNum == 1 || line == "" {
			continue
		}

		tx, err := parseEnrichedRow(line)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNum, err)
		}
		records = append(records, tx)
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read enriched data: %w", err)
	}

	return records, nil
}

func parseEnrichedRow(line string) (types.EnrichedTransaction, error) {
	fields := strings.Split(line, Delimiter)
	if len(fields) != len(EnrichedHeader) {
		return types.EnrichedTransaction{}, fmt.Errorf("expected %d fields, got %d", len(EnrichedHeader), len(fields))
	}

	quantity, err := strconv.Atoi(fields[4])
	if err != nil {
		return types.EnrichedTransaction{}, fmt.Errorf("invalid Quantity %q: %w", fields[4], err)
	}
	unitPrice, err := strconv.ParseFloat(fields[5], 64)
	if err != nil {
		return types.EnrichedTransaction{}, fmt.Errorf("invalid UnitPrice %q: %w", fields[5], err)
	}

	tx := types.EnrichedTransaction{
		Transaction: types.Transaction{
			TransactionID: fields[0],
			Date:          fields[1],
			ProductID:     fields[2],
			ProductName:   fields[3],
			Quantity:      quantity,
			UnitPrice:     unitPrice,
			CustomerID:    fields[6],
			Region:        fields[7],
		},
	}

	if fields[8] != "" {
		category := fields[8]
		tx.Category = &category
	}
	if fields[9] != "" {
		brand := fields[9]
		tx.Brand = &brand
	}
	if fields[10] != "" {
		rating, err := strconv.ParseFloat(fields[10], 64)
		if err != nil {
			return types.EnrichedTransaction{}, fmt.Errorf("invalid API_Rating %q: %w", fields[10], err)
		}
		tx.Rating = &rating
	}

	switch strings.ToLower(fields[11]) {
	case "true":
		tx.Match = true
	case "false":
		tx.Match = false
	default:
		return types.EnrichedTransaction{}, fmt.Errorf("invalid API_Match %q", fields[11])
	}

	return tx, nil
}
