package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dailymcp/daily/internal/config"
	"github.com/dailymcp/daily/internal/log"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "List the registered tools",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runTools(cmd)
	},
}

func init() {
	rootCmd.AddCommand(toolsCmd)
}

// runTools prints the tool catalog with each tool's mode (live/offline).
func runTools(cmd *cobra.Command) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	registry, _, err := buildTools(cfg, log.NewNop())
	if err != nil {
		return err
	}

	live := map[string]bool{
		"weather.get_daily":    cfg.WeatherAPIKey != "",
		"mobility.get_commute": cfg.MapsAPIKey != "",
		"finance.get_quotes":   cfg.AlphaVantageKey != "",
	}

	out := cmd.OutOrStdout()
	for _, info := range registry.List() {
		mode := "offline"
		if live[info.Name] {
			mode = "live"
		}
		fmt.Fprintf(out, "%-22s %-8s %s\n", info.Name, mode, info.Description)
	}
	return nil
}
