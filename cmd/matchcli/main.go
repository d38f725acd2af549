// Package main is the entry point for the matchcli tool: offline timeline
// reconstruction, skill and habit readouts, chart rendering, and store
// maintenance without running the server.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ringside-data/stock.report/internal/config"
	"github.com/ringside-data/stock.report/internal/match"
	"github.com/ringside-data/stock.report/internal/version"
)

var (
	dbPath     string
	tuningPath string
)

var rootCmd = &cobra.Command{
	Use:     "matchcli",
	Short:   "Match telemetry analysis tool",
	Long:    "Reconstruct two-player match timelines from noisy telemetry samples and inspect the resulting events, skill estimates, and habit readouts.",
	Version: version.String(),
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "stockreport.db", "path to SQLite database")
	rootCmd.PersistentFlags().StringVar(&tuningPath, "tuning", "", "engine tuning JSON path (empty uses built-in defaults)")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(skillCmd)
	rootCmd.AddCommand(habitsCmd)
	rootCmd.AddCommand(migrateCmd)
}

// engineFromFlags builds the engine with any tuning overrides applied on
// top of the defaults.
func engineFromFlags() (*match.Engine, *config.TuningConfig, error) {
	tuning := config.EmptyTuningConfig()
	if tuningPath != "" {
		var err error
		tuning, err = config.LoadTuningConfig(tuningPath)
		if err != nil {
			return nil, nil, fmt.Errorf("load tuning: %w", err)
		}
	}
	return match.New(tuning.EngineConfig()), tuning, nil
}
