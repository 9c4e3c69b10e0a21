// =============================================================================
// Sales Report Pipeline - Main Entry Point
// =============================================================================
//
// This is the main entry point for the Sales Report Pipeline CLI application.
// It initializes the Cobra CLI framework and delegates command execution to
// the cmd package.
//
// USAGE:
//   salesreport process       - Run the full pipeline and write the report
//   salesreport validate      - Parse and validate the sales log only
//   salesreport version       - Display the application version
//
// ARCHITECTURE:
//   - cmd/           : CLI command definitions (Cobra)
//   - internal/      : Parsing, validation, enrichment, analytics and reporting
//   - pkg/utils/     : File reading, output naming and run logs
//
// =============================================================================

package main

import (
	"github.com/ginjaninja78/sales-report-pipeline/cmd"
)

// main is the entry point of the application.
func main() {
	cmd.Execute()
}
