// =============================================================================
// Sales Report Pipeline - Root Command
// =============================================================================
//
// This file defines the root command for the Cobra CLI. The root command is
// the base command that all other commands are attached to.
//
// COBRA CLI STRUCTURE:
//   rootCmd (salesreport)
//   ├── processCmd (salesreport process)
//   ├── validateCmd (salesreport validate)
//   └── versionCmd (salesreport version)
//
// CONFIGURATION:
//   The root command is responsible for:
//   1. Setting up global flags (--config, --verbose, --log-level, --log-format)
//   2. Binding flags and SALESREPORT_* environment variables through viper
//   3. Resolving the configuration and building the logger
//
// =============================================================================

package cmd

import (
	"fmt"
	"os"

	"github.com/ginjaninja78/sales-report-pipeline/internal/config"
	"github.com/ginjaninja78/sales-report-pipeline/internal/logging"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// =============================================================================
// GLOBAL VARIABLES
// =============================================================================

// settings holds every flag and environment binding.
var settings = viper.New()

// =============================================================================
// ROOT COMMAND DEFINITION
// =============================================================================

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "salesreport",
	Short: "Sales Report Pipeline - Turn a pipe-delimited sales log into an analytics report",
	Long: `Sales Report Pipeline reads a pipe-delimited sales transaction log, cleans
and validates the records, enriches them with product catalog metadata, and
writes an enriched data file plus a multi-section text report.

Key Features:
  - Tolerant reading (UTF-8 with legacy encoding fallback)
  - Validation with per-rule error reporting and optional filters
  - Enrichment from a static catalog, a YAML catalog file or a product API
  - Region, product, customer and daily analytics
  - Optional XLSX workbook and run summary

Example Usage:
  salesreport process                         # Run the full pipeline
  salesreport process --region North --xlsx   # Report on one region, add a workbook
  salesreport validate                        # Parse and validate only
  SALESREPORT_TOP_N=10 salesreport process    # Override config from the environment`,

	SilenceUsage: true,

	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// =============================================================================
// EXECUTE FUNCTION
// =============================================================================

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// =============================================================================
// INITIALIZATION
// =============================================================================

func init() {
	flags := rootCmd.PersistentFlags()

	flags.String("config", "config.yaml", "Path to the configuration file (missing file means defaults)")
	flags.BoolP("verbose", "v", false, "Enable debug logging")
	flags.String("log-level", "", "Log level: debug, info, warn, error")
	flags.String("log-format", "", "Log format: text, json")

	_ = settings.BindPFlag("config", flags.Lookup("config"))
	_ = settings.BindPFlag("verbose", flags.Lookup("verbose"))
	_ = settings.BindPFlag("log_level", flags.Lookup("log-level"))
	_ = settings.BindPFlag("log_format", flags.Lookup("log-format"))

	config.ConfigureViper(settings)
}

// bindFlags binds a command's local flags to config keys. Binding happens
// when the command runs so commands sharing a key do not overwrite each other.
func bindFlags(cmd *cobra.Command, bindings map[string]string) error {
	for key, name := range bindings {
		if err := settings.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

// loadRuntime resolves the configuration and builds the logger shared by
// the commands. --verbose wins over the configured log level.
func loadRuntime() (*config.MainConfig, *logrus.Logger, error) {
	cfg, err := config.Resolve(settings)
	if err != nil {
		return nil, nil, err
	}

	if settings.GetBool("verbose") {
		cfg.LogLevel = "debug"
	}

	logger, err := logging.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to setup logging: %w", err)
	}

	return cfg, logger, nil
}
