package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ringside-data/stock.report/internal/report"
	"github.com/ringside-data/stock.report/internal/security"
)

var reportOut string

var reportCmd = &cobra.Command{
	Use:   "report <samples.json|match-id>",
	Short: "Render a match as an HTML chart page or a PNG image",
	Args:  cobra.ExactArgs(1),
	RunE:  runReport,
}

func init() {
	reportCmd.Flags().StringVar(&reportOut, "out", "report.html", "output path; the extension picks the format (.html or .png)")
}

func runReport(cmd *cobra.Command, args []string) error {
	ext := filepath.Ext(reportOut)
	if ext != ".html" && ext != ".png" {
		return fmt.Errorf("unsupported output extension %q (want .html or .png)", ext)
	}
	if err := security.ValidateExportPath(reportOut); err != nil {
		return err
	}

	engine, _, err := engineFromFlags()
	if err != nil {
		return err
	}

	meta, samples, tl, err := resolveInput(engine, args[0])
	if err != nil {
		return err
	}

	f, err := os.Create(reportOut)
	if err != nil {
		return fmt.Errorf("create output: %w", err)
	}
	defer f.Close()

	if ext == ".png" {
		err = report.RenderPNG(f, meta, samples, tl)
	} else {
		err = report.RenderHTML(f, meta, samples, tl)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(os.Stdout, "Wrote %s\n", reportOut)
	return nil
}
