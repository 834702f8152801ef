// Package cli defines the veil command line interface.
package cli

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "veil",
	Short: "Privacy risk assessment service",
	Long: `veil scores the privacy exposure of linked social accounts,
analyzes score trends over time, detects anomalous behavior shifts,
and recommends prioritized privacy improvements.`,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.CompletionOptions.HiddenDefaultCmd = false
}
