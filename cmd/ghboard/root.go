package main

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ghboard",
	Short: "A terminal workspace for GitHub Projects v2",
	Long:  `ghboard syncs one or more GitHub Projects v2 boards into a local SQLite cache and drives a full-screen terminal UI over it, with a built-in work-session timer.`,
	RunE:  runGhboard,
}

func init() {
	rootCmd.Flags().String("config", "", "path to the project config YAML (required)")
	rootCmd.Flags().String("db", defaultDBPath(), "path to the SQLite cache file")
	rootCmd.Flags().Bool("discover", false, "list open projects per configured owner and exit")
	rootCmd.Flags().Bool("no-ui", false, "sync once, print a summary, and exit without launching the TUI")
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
