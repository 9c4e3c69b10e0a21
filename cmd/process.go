// =============================================================================
// Sales Report Pipeline - Process Command
// =============================================================================
//
// This file defines the 'process' command, which runs the whole pipeline.
//
// COMMAND USAGE:
//   salesreport process [flags]
//
// FLAGS:
//   --input        : Sales log to read
//   --output-dir   : Directory for the report and workbook
//   --region       : Keep only records from this region
//   --min-amount   : Drop records below this amount
//   --max-amount   : Drop records above this amount
//   --xlsx         : Also write an XLSX workbook
//   --api          : Enrich from the product API before the static catalog
//   --summary-log  : Write a run summary and validation error log
//
// Every flag overrides the matching config.yaml key.
//
// =============================================================================

package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/ginjaninja78/sales-report-pipeline/internal/pipeline"
	"github.com/ginjaninja78/sales-report-pipeline/internal/report"
	"github.com/spf13/cobra"
)

// =============================================================================
// PROCESS COMMAND DEFINITION
// =============================================================================

// processCmd represents the 'process' command.
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Run the sales report pipeline",
	Long: `The process command reads the sales log, parses and validates every record,
enriches the valid records with product metadata, and writes the enriched data
file and the text report.

Data problems never stop the run:
  - Unparsable lines are dropped
  - Invalid records are counted and excluded
  - Catalog failures leave records unenriched
  - A missing input file produces an empty report

Only an invalid configuration exits with a non-zero status.`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, processBindings)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runProcess(cmd.Context())
	},
}

// processBindings maps config keys to process flags.
var processBindings = map[string]string{
	"input_file":          "input",
	"output_dir":          "output-dir",
	"filters.region":      "region",
	"filters.min_amount":  "min-amount",
	"filters.max_amount":  "max-amount",
	"xlsx_report":         "xlsx",
	"catalog.api_enabled": "api",
	"write_summary_log":   "summary-log",
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	rootCmd.AddCommand(processCmd)

	flags := processCmd.Flags()
	flags.String("input", "", "Sales log to read")
	flags.String("output-dir", "", "Directory for the report and workbook")
	flags.String("region", "", "Keep only records from this region (North, South, East, West)")
	flags.Float64("min-amount", 0, "Drop records whose amount is below this value")
	flags.Float64("max-amount", 0, "Drop records whose amount is above this value")
	flags.Bool("xlsx", false, "Also write an XLSX workbook")
	flags.Bool("api", false, "Enrich from the product API before the static catalog")
	flags.Bool("summary-log", false, "Write a run summary and validation error log")
}

// =============================================================================
// MAIN PROCESSING FUNCTION
// =============================================================================

func runProcess(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	fmt.Println("=== Sales Report Pipeline ===")
	fmt.Println("Loading configuration...")

	cfg, logger, err := loadRuntime()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Printf("Reading %s\n", cfg.InputFile)

	result := pipeline.New(cfg, logger).Run(ctx)

	fmt.Println()
	fmt.Println(renderRunSummary(result, cfg.CurrencySymbol))

	if !result.Success() {
		fmt.Println("\nSome stages reported errors; see the log output above.")
	}

	return nil
}

// =============================================================================
// HELPER FUNCTIONS
// =============================================================================

var (
	summaryTitleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	summaryLabelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	summaryErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	summaryBoxStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
)

// renderRunSummary renders the end-of-run box printed to the console.
func renderRunSummary(result pipeline.Result, currency string) string {
	row := func(label, value string) string {
		return summaryLabelStyle.Render(fmt.Sprintf("%-18s", label)) + value
	}

	lines := []string{
		summaryTitleStyle.Render("Processing Complete"),
		row("Run ID:", result.RunID),
		row("Total input:", fmt.Sprintf("%d", result.Validation.TotalInput)),
		row("Invalid:", fmt.Sprintf("%d", result.Validation.Invalid)),
		row("Final count:", fmt.Sprintf("%d", result.Validation.FinalCount)),
		row("Catalog matches:", fmt.Sprintf("%d/%d", result.Stats.Matched, len(result.Enriched))),
		row("Total revenue:", report.Money(currency, result.Stats.TotalRevenue)),
		row("Time elapsed:", result.Stats.ProcessingTime.String()),
	}

	for _, f := range []struct{ label, path string }{
		{"Enriched data:", result.EnrichedFile},
		{"Report:", result.ReportFile},
		{"Workbook:", result.WorkbookFile},
		{"Run summary:", result.SummaryFile},
	} {
		if f.path != "" {
			lines = append(lines, row(f.label, f.path))
		}
	}

	for _, err := range result.Errors {
		lines = append(lines, summaryErrorStyle.Render("✗ "+err.Error()))
	}

	return summaryBoxStyle.Render(strings.Join(lines, "\n"))
}
