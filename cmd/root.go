// Package cmd implements the daily command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "daily",
	Short: "daily - tool-invocation server for AI agents",
	Long: `daily serves a small catalog of morning-routine tools (weather, commute,
calendar, todos, market quotes) to AI agents over MCP and HTTP.

Every tool declares JSON Schemas for its input and output; calls are
validated, cached, and executed under per-tool timeout, retry, and
circuit-breaker policies. Without provider API keys the server runs fully
offline with deterministic synthetic data.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		// Bare invocation serves MCP on stdio, the common launcher setup.
		return runMCP()
	},
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
