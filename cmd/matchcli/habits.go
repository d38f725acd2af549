package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ringside-data/stock.report/internal/habits"
	"github.com/ringside-data/stock.report/internal/report"
)

var habitsJSON bool

var habitsCmd = &cobra.Command{
	Use:   "habits <samples.json|match-id>",
	Short: "Flag repeated tendencies in a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runHabits,
}

func init() {
	habitsCmd.Flags().BoolVar(&habitsJSON, "json", false, "print the report as JSON instead of a table")
}

func runHabits(cmd *cobra.Command, args []string) error {
	engine, _, err := engineFromFlags()
	if err != nil {
		return err
	}

	_, _, tl, err := resolveInput(engine, args[0])
	if err != nil {
		return err
	}

	rep := habits.Detect(tl)

	if habitsJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	report.PrintHabits(os.Stdout, rep)
	return nil
}
