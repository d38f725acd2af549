package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"github.com/ringside-data/stock.report/internal/report"
	"github.com/ringside-data/stock.report/internal/skill"
)

var skillJSON bool

var skillCmd = &cobra.Command{
	Use:   "skill <samples.json|match-id>",
	Short: "Estimate a skill profile for a match",
	Args:  cobra.ExactArgs(1),
	RunE:  runSkill,
}

func init() {
	skillCmd.Flags().BoolVar(&skillJSON, "json", false, "print the profile as JSON instead of a table")
}

func runSkill(cmd *cobra.Command, args []string) error {
	engine, _, err := engineFromFlags()
	if err != nil {
		return err
	}

	_, _, tl, err := resolveInput(engine, args[0])
	if err != nil {
		return err
	}

	profile := skill.Estimate(tl)

	if skillJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(profile)
	}

	report.PrintSkill(os.Stdout, profile)
	return nil
}
