// =============================================================================
// Sales Report Pipeline - Pipeline Module
// =============================================================================
//
// This module orchestrates one pipeline run, from the raw sales log to the
// written report.
//
// PIPELINE STAGES:
//   1. Read the sales log (encoding fallback, header and blank lines removed)
//   2. Parse lines into transactions
//   3. Validate and filter transactions
//   4. Build the product catalog (API mapping, catalog file, static table)
//   5. Enrich every valid transaction
//   6. Write the enriched data file
//   7. Format and write the text report
//   8. Optionally write the XLSX workbook and the run summary
//
// ERROR HANDLING:
//   No stage failure aborts the run. A failing stage is logged, recorded in
//   Result.Errors, and the run continues with whatever data it has (an
//   unreadable input file yields an empty report).
//
// =============================================================================

package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ginjaninja78/sales-report-pipeline/internal/analytics"
	"github.com/ginjaninja78/sales-report-pipeline/internal/catalogapi"
	"github.com/ginjaninja78/sales-report-pipeline/internal/config"
	"github.com/ginjaninja78/sales-report-pipeline/internal/enrichment"
	"github.com/ginjaninja78/sales-report-pipeline/internal/export"
	"github.com/ginjaninja78/sales-report-pipeline/internal/report"
	"github.com/ginjaninja78/sales-report-pipeline/internal/salesparser"
	"github.com/ginjaninja78/sales-report-pipeline/internal/types"
	"github.com/ginjaninja78/sales-report-pipeline/internal/validation"
	"github.com/ginjaninja78/sales-report-pipeline/internal/xlsxcatalog"
	"github.com/ginjaninja78/sales-report-pipeline/pkg/utils"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// =============================================================================
// RESULT STRUCTURE
// =============================================================================

// Result represents the outcome of one pipeline run.
type Result struct {
	// RunID identifies the run in logs, the report header and file names.
	RunID string

	// InputFile is the sales log that was read.
	InputFile string

	// EnrichedFile is the written enriched data file, empty if writing failed.
	EnrichedFile string

	// ReportFile is the written text report, empty if writing failed.
	ReportFile string

	// WorkbookFile is the written XLSX workbook, empty when disabled or failed.
	WorkbookFile string

	// SummaryFile is the written run summary, empty when disabled or failed.
	SummaryFile string

	// Report is the rendered report text.
	Report string

	// Validation is the validator's summary of the parsed records.
	Validation validation.Summary

	// Transactions are the valid, filtered records the report covers.
	Transactions []types.Transaction

	// Enriched are the enrichment results for Transactions.
	Enriched []types.EnrichedTransaction

	// Errors are the non-fatal stage failures of the run.
	Errors []error

	// Stats contains processing statistics.
	Stats ProcessingStats
}

// ProcessingStats contains statistics about the run.
type ProcessingStats struct {
	// LinesRead is the number of data lines read from the sales log.
	LinesRead int

	// Parsed is the number of lines that parsed into transactions.
	Parsed int

	// Dropped counts unparsable lines by reason.
	Dropped map[string]int

	// Invalid is the number of parsed records rejected by validation.
	Invalid int

	// Valid is the number of records that reached enrichment.
	Valid int

	// Matched is the number of records the catalog enriched.
	Matched int

	// FailedLookups is the number of catalog lookups that errored.
	FailedLookups int

	// TotalRevenue is the revenue of the valid records.
	TotalRevenue float64

	// ProcessingTime is the time taken by the run.
	ProcessingTime time.Duration
}

// Success reports whether every stage completed without error.
func (r Result) Success() bool {
	return len(r.Errors) == 0
}

// =============================================================================
// RUNNER STRUCTURE
// =============================================================================

// Runner executes pipeline runs for one configuration.
type Runner struct {
	cfg    *config.MainConfig
	logger logrus.FieldLogger

	// catalog replaces the configured catalog chain when set.
	catalog enrichment.ProductCatalog

	// now is the clock used for the report timestamp.
	now func() time.Time
}

// New creates a Runner. A nil logger discards output.
func New(cfg *config.MainConfig, logger logrus.FieldLogger) *Runner {
	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &Runner{
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// WithCatalog makes the runner enrich against catalog instead of the
// configured catalog chain.
func (r *Runner) WithCatalog(catalog enrichment.ProductCatalog) *Runner {
	r.catalog = catalog
	return r
}

// WithClock sets the clock used for the report timestamp.
func (r *Runner) WithClock(now func() time.Time) *Runner {
	r.now = now
	return r
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

// Run executes every pipeline stage.
//
// RETURNS:
//   - A Result describing the run. Stage failures are in Result.Errors.
func (r *Runner) Run(ctx context.Context) Result {
	startTime := r.now()
	result := Result{
		RunID:     uuid.New().String(),
		InputFile: r.cfg.InputFile,
	}
	log := r.logger.WithField("run_id", result.RunID)

	// =========================================================================
	// STEPS 1-3: READ, PARSE, VALIDATE
	// =========================================================================

	check := r.check(log)
	result.Stats.LinesRead = check.Parse.LinesRead
	result.Stats.Parsed = check.Parse.Parsed
	result.Stats.Dropped = check.Parse.Dropped
	result.Stats.Invalid = check.Validation.InvalidCount
	result.Validation = check.Validation.Summary
	result.Transactions = check.Validation.Valid
	result.Stats.Valid = len(result.Transactions)
	result.Stats.TotalRevenue = analytics.TotalRevenue(result.Transactions)
	if check.ReadErr != nil {
		result.Errors = append(result.Errors, check.ReadErr)
	}

	// =========================================================================
	// STEPS 4-5: ENRICH
	// =========================================================================

	catalog, err := r.buildCatalog(ctx, log)
	if err != nil {
		result.Errors = append(result.Errors, err)
	}

	enriched, outcomes := enrichment.EnrichWithOutcomes(result.Transactions, catalog)
	for i, outcome := range outcomes {
		if outcome.Err != nil {
			log.WithError(outcome.Err).WithField("transaction_id", result.Transactions[i].TransactionID).
				Warn("Catalog lookup failed, record left unenriched")
		}
	}
	result.Enriched = enriched
	result.Stats.Matched, _ = analytics.EnrichmentRate(enriched)
	result.Stats.FailedLookups = enrichment.FailedLookups(outcomes)
	log.WithFields(logrus.Fields{
		"stage":   "enrich",
		"count":   len(enriched),
		"matched": result.Stats.Matched,
	}).Info("Enrichment complete")

	// =========================================================================
	// STEPS 6-8: WRITE OUTPUTS
	// =========================================================================

	files := utils.NewFileManager(r.cfg.OutputDir, filepath.Dir(r.cfg.EnrichedFile))
	if err := files.EnsureDirectories(); err != nil {
		log.WithError(err).Error("Failed to create output directories")
		result.Errors = append(result.Errors, err)
	}

	if err := export.WriteEnriched(r.cfg.EnrichedFile, enriched); err != nil {
		log.WithError(err).WithField("file", r.cfg.EnrichedFile).Error("Failed to write enriched data")
		result.Errors = append(result.Errors, err)
	} else {
		result.EnrichedFile = r.cfg.EnrichedFile
		log.WithField("file", r.cfg.EnrichedFile).Info("Wrote enriched data")
	}

	result.Report = report.Format(result.Transactions, enriched, report.Options{
		GeneratedAt:       r.now(),
		Currency:          r.cfg.CurrencySymbol,
		TopN:              r.cfg.TopN,
		LowStockThreshold: r.cfg.LowStockThreshold,
		RunID:             result.RunID,
	})

	reportPath := files.OutputPath(r.cfg.ReportFileName)
	if err := writeText(reportPath, result.Report); err != nil {
		log.WithError(err).WithField("file", reportPath).Error("Failed to write report")
		result.Errors = append(result.Errors, err)
	} else {
		result.ReportFile = reportPath
		log.WithField("file", reportPath).Info("Wrote report")
	}

	names := map[string]string{"run": result.RunID}

	if r.cfg.XLSXReport {
		workbookPath := files.OutputPath(utils.GenerateOutputFileName(r.cfg.OutputNameFormat, ".xlsx", names))
		if err := export.WriteWorkbook(workbookPath, result.Transactions, enriched); err != nil {
			log.WithError(err).WithField("file", workbookPath).Error("Failed to write workbook")
			result.Errors = append(result.Errors, err)
		} else {
			result.WorkbookFile = workbookPath
			log.WithField("file", workbookPath).Info("Wrote workbook")
		}
	}

	// =========================================================================
	// COMPLETE
	// =========================================================================

	result.Stats.ProcessingTime = r.now().Sub(startTime)

	if r.cfg.WriteSummaryLog {
		r.writeLogs(&result, check.Validation.Errors, startTime, log)
	}

	log.WithFields(logrus.Fields{
		"valid":    result.Stats.Valid,
		"invalid":  result.Stats.Invalid,
		"errors":   len(result.Errors),
		"duration": result.Stats.ProcessingTime.String(),
	}).Info("Pipeline run complete")

	return result
}

// =============================================================================
// CHECK (READ, PARSE, VALIDATE)
// =============================================================================

// CheckResult is the outcome of the read, parse and validate stages.
type CheckResult struct {
	Parse      salesparser.Stats
	Validation validation.Result

	// Regions lists the distinct Region values of the parsed records in
	// first-seen order, invalid ones included.
	Regions []string

	// ReadErr is set when the sales log could not be read; Parse and
	// Validation then describe an empty input.
	ReadErr error
}

// Check runs only the read, parse and validate stages.
func (r *Runner) Check() CheckResult {
	return r.check(r.logger)
}

func (r *Runner) check(log logrus.FieldLogger) CheckResult {
	var check CheckResult

	lines, err := utils.ReadSalesLines(r.cfg.InputFile)
	if err != nil {
		log.WithError(err).WithField("file", r.cfg.InputFile).Error("Failed to read sales data, continuing with no records")
		check.ReadErr = fmt.Errorf("read stage: %w", err)
	}

	transactions, parseStats := salesparser.ParseWithStats(lines)
	check.Parse = parseStats
	check.Regions = salesparser.GetUniqueValues(transactions, func(tx types.Transaction) string { return tx.Region })
	log.WithFields(logrus.Fields{
		"stage":   "parse",
		"lines":   parseStats.LinesRead,
		"parsed":  parseStats.Parsed,
		"dropped": parseStats.DroppedTotal(),
		"regions": check.Regions,
	}).Info("Parsed sales data")

	check.Validation = validation.Validate(transactions, validation.Filters{
		Region:    r.cfg.Filters.Region,
		MinAmount: r.cfg.Filters.MinAmount,
		MaxAmount: r.cfg.Filters.MaxAmount,
	})
	for _, ve := range check.Validation.Errors {
		log.WithFields(logrus.Fields{
			"rule":           ve.Rule,
			"transaction_id": ve.TransactionID,
		}).Debug(ve.Message)
	}
	log.WithFields(logrus.Fields{
		"stage":       "validate",
		"total_input": check.Validation.Summary.TotalInput,
		"invalid":     check.Validation.Summary.Invalid,
		"final_count": check.Validation.Summary.FinalCount,
	}).Info("Validated transactions")

	return check
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

// buildCatalog assembles the catalog chain: the API mapping (if enabled),
// then the catalog file or the static table. Failures degrade to the
// remaining catalogs and are returned for the result's error list.
func (r *Runner) buildCatalog(ctx context.Context, log logrus.FieldLogger) (enrichment.ProductCatalog, error) {
	if r.catalog != nil {
		return r.catalog, nil
	}

	var chain enrichment.ChainCatalog
	var stageErr error

	if r.cfg.Catalog.APIEnabled {
		client := catalogapi.NewClient(r.cfg.Catalog.APIURL, time.Duration(r.cfg.Catalog.TimeoutSeconds)*time.Second)
		products, err := client.FetchProducts(ctx)
		if err != nil {
			log.WithError(err).WithField("url", r.cfg.Catalog.APIURL).Warn("Failed to fetch products, continuing without API catalog")
			stageErr = fmt.Errorf("catalog api: %w", err)
		} else {
			log.WithField("count", len(products)).Info("Products fetched successfully")
			chain = append(chain, catalogapi.NewMappingCatalog(catalogapi.CreateProductMapping(products)))
		}
	}

	var static enrichment.ProductCatalog = enrichment.DefaultCatalog()
	if r.cfg.Catalog.CatalogFile != "" {
		fileCatalog, productIDs, err := loadCatalogFile(r.cfg.Catalog.CatalogFile)
		if err != nil {
			log.WithError(err).WithField("file", r.cfg.Catalog.CatalogFile).Warn("Failed to load catalog file, using built-in catalog")
			if stageErr == nil {
				stageErr = fmt.Errorf("catalog file: %w", err)
			}
		} else {
			log.WithFields(logrus.Fields{
				"file":     r.cfg.Catalog.CatalogFile,
				"count":    len(productIDs),
				"products": productIDs,
			}).Debug("Loaded catalog file")
			static = fileCatalog
		}
	}

	return append(chain, static), stageErr
}

// loadCatalogFile loads a YAML catalog, or an XLSX catalog by extension,
// and returns the product IDs the file defines. An XLSX catalog replaces
// only the rows it lists; the built-in table still answers the rest.
func loadCatalogFile(path string) (enrichment.ProductCatalog, []string, error) {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		sheet, err := xlsxcatalog.Load(path, xlsxcatalog.DefaultSheetColumns(enrichment.DefaultBrand, enrichment.DefaultRating))
		if err != nil {
			return nil, nil, err
		}
		return enrichment.ChainCatalog{sheet, enrichment.DefaultCatalog()}, sheet.ProductIDs(), nil
	}

	fileCatalog, err := enrichment.LoadCatalogFile(path)
	if err != nil {
		return nil, nil, err
	}
	return fileCatalog, fileCatalog.ProductIDs(), nil
}

// writeLogs writes the run summary and the validation error log.
func (r *Runner) writeLogs(result *Result, rejected []*validation.ValidationError, startTime time.Time, log logrus.FieldLogger) {
	entries := make([]utils.ErrorLogEntry, 0, len(rejected))
	for _, ve := range rejected {
		entries = append(entries, utils.ErrorLogEntry{
			Timestamp:     startTime,
			Stage:         "validation",
			Rule:          ve.Rule,
			TransactionID: ve.TransactionID,
			RecordIndex:   ve.Index + 1,
			ErrorMessage:  ve.Message,
		})
	}
	if errorLog, err := utils.WriteErrorLog(entries, r.cfg.OutputDir, result.RunID, startTime); err != nil {
		log.WithError(err).Error("Failed to write error log")
		result.Errors = append(result.Errors, err)
	} else if errorLog != "" {
		log.WithField("file", errorLog).Info("Wrote error log")
	}

	var outputs []string
	for _, f := range []string{result.EnrichedFile, result.ReportFile, result.WorkbookFile} {
		if f != "" {
			outputs = append(outputs, f)
		}
	}
	var stageErrors []string
	for _, e := range result.Errors {
		stageErrors = append(stageErrors, e.Error())
	}

	summaryPath, err := utils.WriteSummaryLog(utils.RunSummary{
		RunID:          result.RunID,
		StartTime:      startTime,
		EndTime:        startTime.Add(result.Stats.ProcessingTime),
		InputFile:      result.InputFile,
		LinesRead:      result.Stats.LinesRead,
		Parsed:         result.Stats.Parsed,
		Dropped:        result.Stats.LinesRead - result.Stats.Parsed,
		InvalidRecords: result.Stats.Invalid,
		ValidRecords:   result.Stats.Valid,
		Enriched:       len(result.Enriched),
		Matched:        result.Stats.Matched,
		TotalRevenue:   report.Money(r.cfg.CurrencySymbol, result.Stats.TotalRevenue),
		OutputFiles:    outputs,
		StageErrors:    stageErrors,
	}, r.cfg.OutputDir)
	if err != nil {
		log.WithError(err).Error("Failed to write run summary")
		result.Errors = append(result.Errors, err)
		return
	}

	result.SummaryFile = summaryPath
	log.WithField("file", summaryPath).Info("Wrote run summary")
}

func writeText(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
