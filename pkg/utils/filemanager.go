// =============================================================================
// Sales Report Pipeline - File Manager Utility
// =============================================================================
//
// This module provides the file handling used around the pipeline:
//   - Directory management (output and data directories)
//   - Reading the sales log with encoding fallback
//   - Output file naming
//   - Validation error logs and run summaries
//
// ENCODING FALLBACK:
//   The sales log is decoded as UTF-8 first. Files that are not valid UTF-8
//   are decoded as ISO-8859-1 and then Windows-1252. The first decoder that
//   succeeds wins.
//
// CUSTOMIZATION:
//   - Add decoders to textDecoders
//   - Add placeholders to GenerateOutputFileName
//
// =============================================================================

package utils

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/encoding/charmap"
)

// ErrInputNotFound is returned when the sales log does not exist.
var ErrInputNotFound = errors.New("input file not found")

// ErrUndecodable is returned when no decoder accepts the sales log.
var ErrUndecodable = errors.New("unable to decode input file")

// =============================================================================
// FILE MANAGER
// =============================================================================

// FileManager owns the directories a pipeline run writes into.
type FileManager struct {
	// OutputDir receives the report, workbook and log files.
	OutputDir string

	// DataDir receives the enriched data file.
	DataDir string
}

// NewFileManager creates a new FileManager with the specified directories.
func NewFileManager(outputDir, dataDir string) *FileManager {
	return &FileManager{
		OutputDir: outputDir,
		DataDir:   dataDir,
	}
}

// EnsureDirectories creates all required directories if they don't exist.
// Empty entries are skipped.
//
// RETURNS:
//   - An error if any directory cannot be created.
func (fm *FileManager) EnsureDirectories() error {
	for _, dir := range []string{fm.OutputDir, fm.DataDir} {
		if dir == "" || dir == "." {
			continue
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	return nil
}

// OutputPath joins a file name onto the output directory.
func (fm *FileManager) OutputPath(name string) string {
	return filepath.Join(fm.OutputDir, name)
}

// =============================================================================
// SALES LOG READING
// =============================================================================

type textDecoder struct {
	name   string
	decode func([]byte) ([]byte, error)
}

var textDecoders = []textDecoder{
	{name: "utf-8", decode: func(b []byte) ([]byte, error) {
		if !utf8.Valid(b) {
			return nil, errors.New("invalid utf-8")
		}
		return b, nil
	}},
	{name: "iso-8859-1", decode: func(b []byte) ([]byte, error) {
		return charmap.ISO8859_1.NewDecoder().Bytes(b)
	}},
	{name: "windows-1252", decode: func(b []byte) ([]byte, error) {
		return charmap.Windows1252.NewDecoder().Bytes(b)
	}},
}

// DecodeText decodes raw file content using the first decoder that accepts
// it and returns the text with the name of that decoder.
func DecodeText(data []byte) (string, string, error) {
	for _, d := range textDecoders {
		decoded, err := d.decode(data)
		if err != nil {
			continue
		}
		return string(decoded), d.name, nil
	}

	return "", "", ErrUndecodable
}

// ReadSalesLines reads the sales log and returns its data lines.
//
// The first line is the header and is skipped. Every remaining line is
// trimmed and blank lines are dropped.
//
// RETURNS:
//   - The data lines, never nil.
//   - ErrInputNotFound or ErrUndecodable (wrapped) on failure. The line
//     slice is empty in that case so callers can carry on.
func ReadSalesLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return []string{}, fmt.Errorf("%w: %s", ErrInputNotFound, path)
		}
		return []string{}, fmt.Errorf("failed to read input file: %w", err)
	}

	text, _, err := DecodeText(data)
	if err != nil {
		return []string{}, fmt.Errorf("%w: %s", err, path)
	}

	return SplitDataLines(text), nil
}

// SplitDataLines drops the header line, trims every other line and removes
// blank ones. "\r\n" and bare "\r" line endings are accepted.
func SplitDataLines(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	lines := make([]string, 0, len(raw))

	for i, line := range raw {
		if i == 0 {
			continue
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}

	return lines
}

// =============================================================================
// FILE NAMING
// =============================================================================

// GenerateOutputFileName generates an output file name based on a format
// string.
//
// PARAMETERS:
//   - format: The format string for the file name.
//             Placeholders:
//               {uuid}      - A random UUID
//               {timestamp} - Current timestamp (YYYYMMDD_HHMMSS)
//               {date}      - Current date (YYYYMMDD)
//               {time}      - Current time (HHMMSS)
//               {run}       - Run ID (when passed in params)
//   - ext: The extension to ensure, including the dot (".txt", ".xlsx").
//   - params: Extra placeholder values.
//
// EXAMPLE:
//   format: "sales_report_{date}"
//   ext:    ".xlsx"
//   output: "sales_report_20241218.xlsx"
func GenerateOutputFileName(format, ext string, params map[string]string) string {
	now := time.Now()

	replacements := map[string]string{
		"{uuid}":      uuid.New().String(),
		"{timestamp}": now.Format("20060102_150405"),
		"{date}":      now.Format("20060102"),
		"{time}":      now.Format("150405"),
	}
	for key, value := range params {
		replacements["{"+key+"}"] = value
	}

	result := format
	for placeholder, value := range replacements {
		result = strings.ReplaceAll(result, placeholder, value)
	}

	if ext != "" && !strings.HasSuffix(strings.ToLower(result), strings.ToLower(ext)) {
		result += ext
	}

	return result
}

// =============================================================================
// ERROR LOG GENERATION
// =============================================================================

// ErrorLogEntry is one rejected record or failed stage.
type ErrorLogEntry struct {
	Timestamp     time.Time
	Stage         string
	Rule          string
	TransactionID string
	RecordIndex   int
	ErrorMessage  string
}

// WriteErrorLog writes error entries to a log file in outputDir.
//
// PARAMETERS:
//   - entries: The errors to record.
//   - outputDir: The directory for the log file.
//   - runID: Appended to the file name so runs in the same second do not collide.
//   - generatedAt: The run's clock reading, used for the name and header.
//
// RETURNS:
//   - The path to the error log file, or "" when there are no entries.
//   - An error if writing fails.
func WriteErrorLog(entries []ErrorLogEntry, outputDir, runID string, generatedAt time.Time) (string, error) {
	if len(entries) == 0 {
		return "", nil
	}

	logPath := filepath.Join(outputDir, runLogName("error_log", runID, generatedAt))

	file, err := os.Create(logPath)
	if err != nil {
		return "", fmt.Errorf("failed to create error log: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Sales Report Pipeline - Error Log\n"+
		"Generated: %s\n"+
		"Total Errors: %d\n"+
		"================================================================================\n\n",
		generatedAt.Format("2006-01-02 15:04:05"),
		len(entries))

	for i, entry := range entries {
		fmt.Fprintf(writer, "Error #%d\n"+
			"  Timestamp:      %s\n"+
			"  Stage:          %s\n"+
			"  Message:        %s\n",
			i+1,
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Stage,
			entry.ErrorMessage)

		if entry.Rule != "" {
			fmt.Fprintf(writer, "  Rule:           %s\n", entry.Rule)
		}
		if entry.TransactionID != "" {
			fmt.Fprintf(writer, "  Transaction ID: %s\n", entry.TransactionID)
		}
		if entry.RecordIndex > 0 {
			fmt.Fprintf(writer, "  Record:         %d\n", entry.RecordIndex)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Error Log\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush error log: %w", err)
	}

	return logPath, nil
}

// =============================================================================
// RUN SUMMARY
// =============================================================================

// RunSummary contains summary information about a pipeline run.
type RunSummary struct {
	RunID          string
	StartTime      time.Time
	EndTime        time.Time
	InputFile      string
	LinesRead      int
	Parsed         int
	Dropped        int
	InvalidRecords int
	ValidRecords   int
	Enriched       int
	Matched        int
	TotalRevenue   string
	OutputFiles    []string
	StageErrors    []string
}

// WriteSummaryLog writes a run summary to a file in outputDir.
//
// RETURNS:
//   - The path to the summary file.
//   - An error if writing fails.
func WriteSummaryLog(summary RunSummary, outputDir string) (string, error) {
	summaryPath := filepath.Join(outputDir, runLogName("run_summary", summary.RunID, summary.StartTime))

	file, err := os.Create(summaryPath)
	if err != nil {
		return "", fmt.Errorf("failed to create summary file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)

	fmt.Fprintf(writer, "Sales Report Pipeline - Run Summary\n"+
		"================================================================================\n\n"+
		"Run Information:\n"+
		"  Run ID:         %s\n"+
		"  Start Time:     %s\n"+
		"  End Time:       %s\n"+
		"  Duration:       %s\n"+
		"  Input File:     %s\n\n"+
		"Statistics:\n"+
		"  Lines Read:         %d\n"+
		"  Parsed:             %d\n"+
		"  Dropped:            %d\n"+
		"  Invalid Records:    %d\n"+
		"  Valid Records:      %d\n"+
		"  Enriched:           %d\n"+
		"  Catalog Matches:    %d\n"+
		"  Total Revenue:      %s\n\n",
		summary.RunID,
		summary.StartTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Format("2006-01-02 15:04:05"),
		summary.EndTime.Sub(summary.StartTime).String(),
		summary.InputFile,
		summary.LinesRead,
		summary.Parsed,
		summary.Dropped,
		summary.InvalidRecords,
		summary.ValidRecords,
		summary.Enriched,
		summary.Matched,
		summary.TotalRevenue)

	if len(summary.OutputFiles) > 0 {
		writer.WriteString("Output Files:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, f := range summary.OutputFiles {
			fmt.Fprintf(writer, "  %s\n", f)
		}
		writer.WriteString("\n")
	}

	if len(summary.StageErrors) > 0 {
		writer.WriteString("Errors:\n")
		writer.WriteString("--------------------------------------------------------------------------------\n")
		for _, e := range summary.StageErrors {
			fmt.Fprintf(writer, "  %s\n", e)
		}
		writer.WriteString("\n")
	}

	writer.WriteString("================================================================================\n" +
		"End of Summary\n")

	if err := writer.Flush(); err != nil {
		return "", fmt.Errorf("failed to flush summary file: %w", err)
	}

	return summaryPath, nil
}

// =============================================================================
// UTILITY FUNCTIONS
// =============================================================================

// runLogName builds "<prefix>_<timestamp>[_<runID>].txt".
func runLogName(prefix, runID string, at time.Time) string {
	name := prefix + "_" + at.Format("20060102_150405")
	if runID != "" {
		name += "_" + runID
	}
	return name + ".txt"
}
