// =============================================================================
// Sales Report Pipeline - Version Command
// =============================================================================
//
// This file defines the 'version' command, which displays the application
// version and build information.
//
// COMMAND USAGE:
//   salesreport version
//
// OUTPUT:
//   Sales Report Pipeline
//   Version:    1.0.0
//   Build Date: 2024-12-18
//   Go Version: go1.24.0
//
// =============================================================================

package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

// =============================================================================
// VERSION INFORMATION
// =============================================================================
// These variables are set at build time using ldflags.
// Example build command:
//   go build -ldflags "-X 'github.com/ginjaninja78/sales-report-pipeline/cmd.Version=1.1.0'"

// Version is the application version.
var Version = "1.0.0"

// BuildDate is the date the application was built.
var BuildDate = "unknown"

// versionCmd represents the 'version' command.
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Display the application version",
	Long:  `Display the application version, build date, and Go runtime version.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprint(cmd.OutOrStdout(), versionText())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func versionText() string {
	return fmt.Sprintf("Sales Report Pipeline\nVersion:    %s\nBuild Date: %s\nGo Version: %s\n",
		Version, BuildDate, runtime.Version())
}
