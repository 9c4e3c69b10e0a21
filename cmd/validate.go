// =============================================================================
// Sales Report Pipeline - Validate Command
// =============================================================================
//
// This file defines the 'validate' command, which reads, parses and
// validates the sales log without enriching or writing anything.
//
// COMMAND USAGE:
//   salesreport validate [--input FILE] [--errors]
//
// OUTPUT:
//   Summary: {"total_input": 95, "invalid": 10, "final_count": 85}
//
// =============================================================================

package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/ginjaninja78/sales-report-pipeline/internal/pipeline"
	"github.com/ginjaninja78/sales-report-pipeline/internal/validation"
	"github.com/spf13/cobra"
)

// showErrors prints every rejected record.
var showErrors bool

// validateCmd represents the 'validate' command.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Parse and validate the sales log without writing outputs",
	Long: `The validate command reads and parses the sales log and applies the
validation rules and configured filters. It prints the parse statistics,
the validation summary and the rejections per rule.`,

	PreRunE: func(cmd *cobra.Command, args []string) error {
		return bindFlags(cmd, map[string]string{"input_file": "input"})
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		return runValidate()
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().BoolVar(&showErrors, "errors", false, "Print every rejected record")
	validateCmd.Flags().String("input", "", "Sales log to read")
}

func runValidate() error {
	cfg, logger, err := loadRuntime()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	fmt.Println("=== Sales Report Pipeline: Validation ===")
	fmt.Printf("Input: %s\n\n", cfg.InputFile)

	check := pipeline.New(cfg, logger).Check()
	if check.ReadErr != nil {
		fmt.Printf("Could not read input: %v\n\n", check.ReadErr)
	}

	fmt.Printf("Lines read:      %d\n", check.Parse.LinesRead)
	fmt.Printf("Parsed:          %d\n", check.Parse.Parsed)
	fmt.Printf("Dropped:         %d\n", check.Parse.DroppedTotal())
	fmt.Printf("Regions seen:    %s\n", strings.Join(check.Regions, ", "))

	summary, err := json.Marshal(check.Validation.Summary)
	if err != nil {
		return fmt.Errorf("failed to encode summary: %w", err)
	}
	fmt.Printf("\nSummary: %s\n", summary)

	byRule := validation.CountByRule(check.Validation.Errors)
	if len(byRule) > 0 {
		rules := make([]string, 0, len(byRule))
		for rule := range byRule {
			rules = append(rules, rule)
		}
		sort.Strings(rules)

		fmt.Println("\nRejections by rule:")
		for _, rule := range rules {
			fmt.Printf("  %-16s %d\n", rule, byRule[rule])
		}
	}

	if showErrors && len(check.Validation.Errors) > 0 {
		fmt.Println()
		fmt.Print(validation.FormatErrors(check.Validation.Errors))
	}

	return nil
}
