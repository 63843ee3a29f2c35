package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/T9ner/echo-sub000/pkg/export"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import events from a JSON or iCalendar file",
	Long: `Import reads events from an export file and creates them through the
calendar API. Files ending in .ics or .ical are parsed as iCalendar,
everything else as JSON. Items that fail validation are reported and skipped;
the rest are still created.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	rootCmd.AddCommand(importCmd)
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	deps, err := buildDependencies(ctx)
	if err != nil {
		return err
	}

	path := args[0]
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	var summary *export.Summary
	switch strings.ToLower(filepath.Ext(path)) {
	case ".ics", ".ical":
		summary, err = deps.Importer.ImportICS(ctx, f)
	default:
		summary, err = deps.Importer.ImportJSON(ctx, f)
	}
	if err != nil {
		return err
	}

	fmt.Printf("Imported %d events, %d failed\n", summary.Successful, summary.Failed)
	for _, importErr := range summary.Errors {
		fmt.Printf("  #%d %s: %v\n", importErr.Index, importErr.Title, importErr.Err)
	}
	return nil
}
