// =============================================================================
// Sales Report Pipeline - Configuration Module
// =============================================================================
//
// This module loads and validates the pipeline configuration.
//
// CONFIGURATION SOURCES (later sources win):
//   1. Built-in defaults (applyMainConfigDefaults)
//   2. config.yaml (optional; a missing file means defaults only)
//   3. Environment variables with the SALESREPORT_ prefix
//   4. Command-line flags bound through viper
//
// Every source is validated once the configuration is assembled. An invalid
// configuration is the only condition that stops the pipeline from running.
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is the prefix for environment overrides (SALESREPORT_TOP_N).
const EnvPrefix = "SALESREPORT"

// =============================================================================
// MAIN CONFIGURATION STRUCTURE
// =============================================================================

// MainConfig holds the pipeline configuration.
type MainConfig struct {
	// =========================================================================
	// FILE SETTINGS
	// =========================================================================

	// InputFile is the pipe-delimited sales log.
	// Default: "data/sales_data.txt"
	InputFile string `yaml:"input_file" mapstructure:"input_file" validate:"required"`

	// EnrichedFile receives the enriched records.
	// Default: "data/enriched_sales_data.txt"
	EnrichedFile string `yaml:"enriched_file" mapstructure:"enriched_file" validate:"required"`

	// OutputDir receives the report and optional workbook.
	// Default: "output"
	OutputDir string `yaml:"output_dir" mapstructure:"output_dir" validate:"required"`

	// ReportFileName is the text report's file name inside OutputDir.
	// Default: "sales_report.txt"
	ReportFileName string `yaml:"report_file_name" mapstructure:"report_file_name" validate:"required"`

	// =========================================================================
	// LOGGING SETTINGS
	// =========================================================================

	// LogLevel controls the verbosity of logging.
	// Valid values: "debug", "info", "warn", "error"
	// Default: "info"
	LogLevel string `yaml:"log_level" mapstructure:"log_level" validate:"oneof=debug info warn error"`

	// LogFormat selects the log formatter.
	// Valid values: "text", "json"
	// Default: "text"
	LogFormat string `yaml:"log_format" mapstructure:"log_format" validate:"oneof=text json"`

	// =========================================================================
	// REPORT SETTINGS
	// =========================================================================

	// CurrencySymbol prefixes money values in the report.
	// Default: "₹"
	CurrencySymbol string `yaml:"currency_symbol" mapstructure:"currency_symbol"`

	// TopN is the size of the product and customer rankings.
	// Default: 5
	TopN int `yaml:"top_n" mapstructure:"top_n" validate:"gte=1,lte=100"`

	// LowStockThreshold is the exclusive quantity bound for low performers.
	// Default: 10
	LowStockThreshold int `yaml:"low_stock_threshold" mapstructure:"low_stock_threshold" validate:"gte=1"`

	// XLSXReport additionally writes an XLSX workbook.
	// Default: false
	XLSXReport bool `yaml:"xlsx_report" mapstructure:"xlsx_report"`

	// OutputNameFormat names the workbook and summary files.
	// Placeholders: {uuid}, {timestamp}, {date}, {time}, {run}
	// Default: "sales_report_{timestamp}"
	OutputNameFormat string `yaml:"output_name_format" mapstructure:"output_name_format" validate:"required"`

	// WriteSummaryLog writes a run summary and a validation error log
	// into OutputDir.
	// Default: false
	WriteSummaryLog bool `yaml:"write_summary_log" mapstructure:"write_summary_log"`

	// =========================================================================
	// PROCESSING SETTINGS
	// =========================================================================

	// Filters restricts which valid records reach the report.
	Filters FilterConfig `yaml:"filters" mapstructure:"filters"`

	// Catalog configures product enrichment.
	Catalog CatalogConfig `yaml:"catalog" mapstructure:"catalog"`
}

// FilterConfig holds the optional record filters. A zero value disables
// the corresponding filter.
type FilterConfig struct {
	// Region keeps only records of this region.
	Region string `yaml:"region" mapstructure:"region" validate:"omitempty,oneof=North South East West"`

	// MinAmount drops records whose amount is below it.
	MinAmount float64 `yaml:"min_amount" mapstructure:"min_amount" validate:"gte=0"`

	// MaxAmount drops records whose amount is above it.
	MaxAmount float64 `yaml:"max_amount" mapstructure:"max_amount" validate:"gte=0"`
}

// CatalogConfig configures the product catalogs used for enrichment.
type CatalogConfig struct {
	// APIEnabled consults the external product API before the static table.
	// Default: false
	APIEnabled bool `yaml:"api_enabled" mapstructure:"api_enabled"`

	// APIURL is the products endpoint.
	// Default: "https://dummyjson.com/products?limit=100"
	APIURL string `yaml:"api_url" mapstructure:"api_url" validate:"omitempty,url"`

	// TimeoutSeconds bounds the API request.
	// Default: 10
	TimeoutSeconds int `yaml:"timeout_seconds" mapstructure:"timeout_seconds" validate:"gte=1,lte=120"`

	// CatalogFile is an optional YAML file that extends the static table.
	CatalogFile string `yaml:"catalog_file" mapstructure:"catalog_file"`
}

// =============================================================================
// CONFIGURATION LOADING FUNCTIONS
// =============================================================================

// Default returns a configuration holding only default values.
func Default() *MainConfig {
	config := &MainConfig{}
	applyMainConfigDefaults(config)
	return config
}

// LoadMainConfig loads the configuration from a YAML file.
//
// PARAMETERS:
//   - configPath: The path to the configuration file. An empty path or a
//     missing file yields the defaults.
//
// RETURNS:
//   - A pointer to the validated MainConfig.
//   - An error if the file cannot be parsed or fails validation.
func LoadMainConfig(configPath string) (*MainConfig, error) {
	config, err := readMainConfig(configPath)
	if err != nil {
		return nil, err
	}

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// Resolve loads the file named by the "config" key and applies every key
// that viper reports as set (flags and environment) on top of it.
func Resolve(v *viper.Viper) (*MainConfig, error) {
	config, err := readMainConfig(v.GetString("config"))
	if err != nil {
		return nil, err
	}

	applyOverrides(config, v)

	if err := Validate(config); err != nil {
		return nil, err
	}

	return config, nil
}

// ConfigureViper sets the env prefix and key replacer used by Resolve, so
// "filters.min_amount" reads SALESREPORT_FILTERS_MIN_AMOUNT.
func ConfigureViper(v *viper.Viper) {
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

func readMainConfig(configPath string) (*MainConfig, error) {
	var config MainConfig

	if configPath != "" {
		data, err := os.ReadFile(configPath)
		switch {
		case errors.Is(err, fs.ErrNotExist):
			// Defaults only.
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := yaml.Unmarshal(data, &config); err != nil {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
		}
	}

	applyMainConfigDefaults(&config)
	return &config, nil
}

// applyMainConfigDefaults sets default values for any unset configuration options.
func applyMainConfigDefaults(config *MainConfig) {
	if config.InputFile == "" {
		config.InputFile = "data/sales_data.txt"
	}
	if config.EnrichedFile == "" {
		config.EnrichedFile = "data/enriched_sales_data.txt"
	}
	if config.OutputDir == "" {
		config.OutputDir = "output"
	}
	if config.ReportFileName == "" {
		config.ReportFileName = "sales_report.txt"
	}
	if config.LogLevel == "" {
		config.LogLevel = "info"
	}
	if config.LogFormat == "" {
		config.LogFormat = "text"
	}
	if config.CurrencySymbol == "" {
		config.CurrencySymbol = "₹"
	}
	if config.TopN == 0 {
		config.TopN = 5
	}
	if config.LowStockThreshold == 0 {
		config.LowStockThreshold = 10
	}
	if config.OutputNameFormat == "" {
		config.OutputNameFormat = "sales_report_{timestamp}"
	}
	if config.Catalog.APIURL == "" {
		config.Catalog.APIURL = "https://dummyjson.com/products?limit=100"
	}
	if config.Catalog.TimeoutSeconds == 0 {
		config.Catalog.TimeoutSeconds = 10
	}
}

// applyOverrides copies every key viper reports as set onto config.
func applyOverrides(config *MainConfig, v *viper.Viper) {
	stringKeys := map[string]*string{
		"input_file":           &config.InputFile,
		"enriched_file":        &config.EnrichedFile,
		"output_dir":           &config.OutputDir,
		"report_file_name":     &config.ReportFileName,
		"log_level":            &config.LogLevel,
		"log_format":           &config.LogFormat,
		"currency_symbol":      &config.CurrencySymbol,
		"output_name_format":   &config.OutputNameFormat,
		"filters.region":       &config.Filters.Region,
		"catalog.api_url":      &config.Catalog.APIURL,
		"catalog.catalog_file": &config.Catalog.CatalogFile,
	}
	for key, target := range stringKeys {
		if v.IsSet(key) {
			*target = v.GetString(key)
		}
	}

	intKeys := map[string]*int{
		"top_n":                   &config.TopN,
		"low_stock_threshold":     &config.LowStockThreshold,
		"catalog.timeout_seconds": &config.Catalog.TimeoutSeconds,
	}
	for key, target := range intKeys {
		if v.IsSet(key) {
			*target = v.GetInt(key)
		}
	}

	floatKeys := map[string]*float64{
		"filters.min_amount": &config.Filters.MinAmount,
		"filters.max_amount": &config.Filters.MaxAmount,
	}
	for key, target := range floatKeys {
		if v.IsSet(key) {
			*target = v.GetFloat64(key)
		}
	}

	boolKeys := map[string]*bool{
		"xlsx_report":         &config.XLSXReport,
		"write_summary_log":   &config.WriteSummaryLog,
		"catalog.api_enabled": &config.Catalog.APIEnabled,
	}
	for key, target := range boolKeys {
		if v.IsSet(key) {
			*target = v.GetBool(key)
		}
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

var validate = validator.New()

// Validate checks struct tags and the cross-field rules.
func Validate(config *MainConfig) error {
	if err := validate.Struct(config); err != nil {
		var fieldErrors validator.ValidationErrors
		if errors.As(err, &fieldErrors) {
			messages := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				messages = append(messages, formatFieldError(fe))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(messages, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}

	if config.Catalog.APIEnabled && config.Catalog.APIURL == "" {
		return fmt.Errorf("invalid configuration: catalog.api_url is required when catalog.api_enabled is true")
	}

	if config.Filters.MinAmount > 0 && config.Filters.MaxAmount > 0 && config.Filters.MinAmount > config.Filters.MaxAmount {
		return fmt.Errorf("invalid configuration: filters.min_amount (%g) is greater than filters.max_amount (%g)",
			config.Filters.MinAmount, config.Filters.MaxAmount)
	}

	return nil
}

func formatFieldError(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Namespace())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s], got %q", fe.Namespace(), fe.Param(), fmt.Sprint(fe.Value()))
	case "url":
		return fmt.Sprintf("%s must be a valid URL", fe.Namespace())
	default:
		return fmt.Sprintf("%s failed %s=%s (got %v)", fe.Namespace(), fe.Tag(), fe.Param(), fe.Value())
	}
}
