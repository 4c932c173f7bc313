// Package cli implements the Momentum command-line interface using Cobra.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Momentum — tasks, habits and execution score",
	Long: `Momentum is a personal productivity daemon.
It keeps a prioritized task list and daily habits, awards XP for finishing
them, reports an execution score, and reminds you when a task is due.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command. Called from main.go.
func Execute(version string) {
	rootCmd.Version = version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
