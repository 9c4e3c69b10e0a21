package pipeline

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/ginjaninja78/sales-report-pipeline/internal/config"
	"github.com/ginjaninja78/sales-report-pipeline/internal/export"
	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/ginjaninja78/sales-report-pipeline/pkg/utils"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

const salesData = `TransactionID|Date|ProductID|ProductName|Quantity|UnitPrice|CustomerID|Region
T001|2024-12-01|P101|Laptop|2|45,000|C001|North
T002|2024-12-01|P102|Mouse, Wireless|5|500|C002|South
T003|2024-12-02|P999|Gadget|1|1200|C003|East

T004|2024-12-02|P103|Keyboard|abc|1500|C001|North
T005|2024-12-03|P104|Monitor|1|12000|C004
X006|2024-12-03|P104|Monitor|1|12000|C004|West
T007|2024-12-03|P105|Webcam|3|2000|C002|Central
`

var fixedNow = time.Date(2024, 12, 18, 14, 30, 0, 0, time.UTC)

func testConfig(t *testing.T) *config.MainConfig {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "data", "sales_data.txt")
	require.NoError(t, os.MkdirAll(filepath.Dir(input), 0755))
	require.NoError(t, os.WriteFile(input, []byte(salesData), 0644))

	cfg := config.Default()
	cfg.InputFile = input
	cfg.EnrichedFile = filepath.Join(dir, "data", "enriched_sales_data.txt")
	cfg.OutputDir = filepath.Join(dir, "output")
	return cfg
}

func TestRun_EndToEnd(t *testing.T) {
	cfg := testConfig(t)
	logger, hook := logtest.NewNullLogger()

	result := New(cfg, logger).WithClock(func() time.Time { return fixedNow }).Run(context.Background())

	require.Empty(t, result.Errors)
	assert.True(t, result.Success())

	assert.Equal(t, 7, result.Stats.LinesRead)
	assert.Equal(t, 5, result.Stats.Parsed)
	assert.Equal(t, 2, result.Stats.Invalid)
	assert.Equal(t, 3, result.Stats.Valid)
	assert.Equal(t, 2, result.Stats.Matched)
	assert.InDelta(t, 90000+2500+1200, result.Stats.TotalRevenue, 1e-6)
	assert.Equal(t, 5, result.Validation.TotalInput)
	assert.Equal(t, 3, result.Validation.FinalCount)
	assert.Equal(t, "Mouse Wireless", result.Transactions[1].ProductName)

	enriched, err := export.ReadEnriched(result.EnrichedFile)
	require.NoError(t, err)
	require.Len(t, enriched, 3)
	assert.True(t, enriched[0].Match)
	assert.False(t, enriched[2].Match)

	text, err := os.ReadFile(result.ReportFile)
	require.NoError(t, err)
	assert.Equal(t, result.Report, string(text))
	assert.Contains(t, result.Report, "Generated: 2024-12-18 14:30:00")
	assert.Contains(t, result.Report, "Run ID: "+result.RunID)
	assert.Contains(t, result.Report, "P999")

	assert.Empty(t, result.WorkbookFile)
	assert.Empty(t, result.SummaryFile)

	var sawComplete bool
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Pipeline run complete" {
			sawComplete = true
			assert.Equal(t, result.RunID, entry.Data["run_id"])
		}
	}
	assert.True(t, sawComplete)
}

func TestRun_Filters(t *testing.T) {
	cfg := testConfig(t)
	cfg.Filters.Region = "North"

	result := New(cfg, nil).Run(context.Background())

	require.Len(t, result.Transactions, 1)
	assert.Equal(t, "T001", result.Transactions[0].TransactionID)
	assert.Equal(t, 2, result.Stats.Invalid, "filtered records are not counted as invalid")
}

func TestRun_MissingInputStillWritesReport(t *testing.T) {
	cfg := testConfig(t)
	cfg.InputFile = filepath.Join(t.TempDir(), "missing.txt")
	logger, hook := logtest.NewNullLogger()

	result := New(cfg, logger).Run(context.Background())

	require.Len(t, result.Errors, 1)
	assert.True(t, errors.Is(result.Errors[0], utils.ErrInputNotFound))
	assert.Empty(t, result.Transactions)
	assert.FileExists(t, result.ReportFile)
	assert.Contains(t, result.Report, "Records Processed: 0")

	var sawError bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel {
			sawError = true
		}
	}
	assert.True(t, sawError)
}

func TestRun_WorkbookAndSummary(t *testing.T) {
	cfg := testConfig(t)
	cfg.XLSXReport = true
	cfg.WriteSummaryLog = true
	cfg.OutputNameFormat = "sales_{run}"

	result := New(cfg, nil).Run(context.Background())

	require.Empty(t, result.Errors)
	assert.Equal(t, filepath.Join(cfg.OutputDir, "sales_"+result.RunID+".xlsx"), result.WorkbookFile)
	assert.FileExists(t, result.WorkbookFile)
	require.NotEmpty(t, result.SummaryFile)

	summary, err := os.ReadFile(result.SummaryFile)
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Valid Records:      3")
	assert.Contains(t, string(summary), result.WorkbookFile)

	assert.Contains(t, result.SummaryFile, result.RunID)
	logs, err := filepath.Glob(filepath.Join(cfg.OutputDir, "error_log_*_"+result.RunID+".txt"))
	require.NoError(t, err)
	require.Len(t, logs, 1)
	content, err := os.ReadFile(logs[0])
	require.NoError(t, err)
	assert.Contains(t, string(content), "Total Errors: 2")
	assert.Contains(t, string(content), "X006")
}

func TestRun_CatalogAPI(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"products":[{"id":999,"title":"Gizmo","category":"gadgets","brand":"Acme","rating":3.9}]}`))
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Catalog.APIEnabled = true
	cfg.Catalog.APIURL = server.URL

	result := New(cfg, nil).Run(context.Background())

	require.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Stats.Matched)
	require.NotNil(t, result.Enriched[2].Category)
	assert.Equal(t, "gadgets", *result.Enriched[2].Category)
	require.NotNil(t, result.Enriched[0].Category)
	assert.Equal(t, "Laptop", *result.Enriched[0].Category, "static table still answers API misses")
}

func TestRun_CatalogAPIFailureDegrades(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	cfg := testConfig(t)
	cfg.Catalog.APIEnabled = true
	cfg.Catalog.APIURL = server.URL

	result := New(cfg, nil).Run(context.Background())

	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0].Error(), "catalog api")
	assert.Equal(t, 2, result.Stats.Matched)
	assert.FileExists(t, result.ReportFile)
}

func TestRun_CatalogFile(t *testing.T) {
	cfg := testConfig(t)
	catalogPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("brand: Acme\ncategories:\n  P999: Gadgets\n"), 0644))
	cfg.Catalog.CatalogFile = catalogPath

	result := New(cfg, nil).Run(context.Background())

	require.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Stats.Matched)
	assert.Equal(t, "Acme", *result.Enriched[0].Brand)
}

func TestRun_CatalogWorkbook(t *testing.T) {
	cfg := testConfig(t)
	book := excelize.NewFile()
	row := []interface{}{"P999", "Gadgets", "Acme", "3.2"}
	require.NoError(t, book.SetSheetRow("Sheet1", "A2", &row))
	cfg.Catalog.CatalogFile = filepath.Join(t.TempDir(), "catalog.xlsx")
	require.NoError(t, book.SaveAs(cfg.Catalog.CatalogFile))
	require.NoError(t, book.Close())

	logger, hook := logtest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	result := New(cfg, logger).Run(context.Background())

	require.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Stats.Matched)
	assert.Equal(t, "Acme", *result.Enriched[2].Brand)

	var loaded *logrus.Entry
	for _, entry := range hook.AllEntries() {
		if entry.Message == "Loaded catalog file" {
			loaded = entry
		}
	}
	require.NotNil(t, loaded)
	assert.Equal(t, []string{"P999"}, loaded.Data["products"])
	assert.Equal(t, "TechStore", *result.Enriched[0].Brand, "built-in table answers rows the workbook omits")
}

func TestRun_CatalogDelimiterKeepsEnrichedFileReadable(t *testing.T) {
	cfg := testConfig(t)
	catalogPath := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(catalogPath, []byte("brand: \"Acme|Co\"\ncategories:\n  P999: \"Audio|Video\"\n"), 0644))
	cfg.Catalog.CatalogFile = catalogPath

	result := New(cfg, nil).Run(context.Background())
	require.Empty(t, result.Errors)

	enriched, err := export.ReadEnriched(result.EnrichedFile)
	require.NoError(t, err)
	require.Len(t, enriched, 3)
	assert.Equal(t, "AudioVideo", *enriched[2].Category)
	assert.Equal(t, "AcmeCo", *enriched[2].Brand)
}

type failingCatalog struct{}

func (failingCatalog) Lookup(string) (types.Enrichment, bool, error) {
	return types.Enrichment{}, false, errors.New("catalog offline")
}

func TestRun_LookupFailuresAreIsolated(t *testing.T) {
	cfg := testConfig(t)
	logger, hook := logtest.NewNullLogger()

	result := New(cfg, logger).WithCatalog(failingCatalog{}).Run(context.Background())

	require.Empty(t, result.Errors)
	assert.Equal(t, 3, result.Stats.FailedLookups)
	assert.Zero(t, result.Stats.Matched)
	assert.Len(t, result.Enriched, 3)

	warnings := 0
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.WarnLevel && strings.Contains(entry.Message, "Catalog lookup failed") {
			warnings++
		}
	}
	assert.Equal(t, 3, warnings)
}

func TestCheck(t *testing.T) {
	cfg := testConfig(t)

	check := New(cfg, nil).Check()

	require.NoError(t, check.ReadErr)
	assert.Equal(t, 7, check.Parse.LinesRead)
	assert.Equal(t, 2, check.Parse.DroppedTotal())
	assert.Equal(t, 2, check.Validation.InvalidCount)
	assert.Len(t, check.Validation.Errors, 2)
	assert.Equal(t, []string{"North", "South", "East", "West", "Central"}, check.Regions)
}
