package commands

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ppiankov/piispectre/internal/config"
	"github.com/ppiankov/piispectre/internal/logging"
)

var (
	verbose bool
	version string
	commit  string
	date    string
	cfg     config.File
)

var rootCmd = &cobra.Command{
	Use:   "piispectre",
	Short: "PIISpectre - incremental S3 PII scanner",
	Long: `PIISpectre scans S3 buckets for sensitive text patterns such as email
addresses. Content-hash change detection keeps re-runs incremental: objects
whose bytes and stored results are unchanged are skipped. Findings are
persisted to a result bucket and optionally forwarded to an SQS queue.

Part of the Spectre family of infrastructure cleanup tools.`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(verbose)
		loaded, err := config.Load(".")
		if err != nil {
			slog.Warn("Failed to load config file", "error", err)
		} else {
			cfg = loaded
		}
	},
}

// Execute runs the root command with injected build info.
func Execute(v, c, d string) error {
	version = v
	commit = c
	date = d
	return rootCmd.Execute()
}

// GetVersion returns the current version.
func GetVersion() string {
	return version
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable verbose logging")
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(versionCmd)
}
