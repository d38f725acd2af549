package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ringside-data/stock.report/internal/httputil"
	"github.com/ringside-data/stock.report/internal/report"
	"github.com/ringside-data/stock.report/internal/vision"
)

var (
	analyzeSave      bool
	analyzeJSON      bool
	analyzeVisionURL string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze <samples.json>",
	Short: "Reconstruct a match timeline from a telemetry samples file",
	Args:  cobra.ExactArgs(1),
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeSave, "save", false, "persist the match, samples, and events to the database")
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "print the raw timeline as JSON instead of tables")
	analyzeCmd.Flags().StringVar(&analyzeVisionURL, "vision-url", "", "vision refinement service base URL")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	engine, tuning, err := engineFromFlags()
	if err != nil {
		return err
	}

	samples, err := loadSamples(args[0])
	if err != nil {
		return err
	}

	tl := engine.Analyze(samples)

	if analyzeVisionURL != "" {
		client := vision.NewClient(analyzeVisionURL, httputil.NewStandardClient(nil), tuning.GetVisionTimeout())
		tl = client.Refine(cmd.Context(), filepath.Base(args[0]), tl)
	}

	if analyzeJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(tl)
	}

	p1Char, p2Char := charactersFromSamples(samples)
	meta := report.Meta{
		MatchID:     filepath.Base(args[0]),
		P1Character: p1Char,
		P2Character: p2Char,
		Source:      "file",
	}

	report.PrintSummary(os.Stdout, meta, tl.Stats)
	report.PrintEvents(os.Stdout, tl)

	if analyzeSave {
		id, err := saveMatch(cmd.Context(), samples, tl, "cli", p1Char, p2Char)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stdout, "\nSaved as match %s\n", id)
	}

	return nil
}
