package cmd

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/T9ner/echo-sub000/pkg/export"
	"github.com/spf13/cobra"
)

var (
	exportFormat string
	exportOut    string
	exportFrom   string
	exportTo     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export events to a JSON, CSV, or iCalendar file",
	Long: `Export fetches events from the calendar API and writes them to a file
or stdout. --from and --to bound the export to events overlapping the given
dates; without them every event is exported.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "Output format: json, csv, or ics")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Output file (default stdout)")
	exportCmd.Flags().StringVar(&exportFrom, "from", "", "Only events ending on or after this date (YYYY-MM-DD)")
	exportCmd.Flags().StringVar(&exportTo, "to", "", "Only events starting on or before this date (YYYY-MM-DD)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	deps, err := buildDependencies(ctx)
	if err != nil {
		return err
	}

	var filter event.EventFilter
	if exportFrom != "" {
		from, err := time.Parse("2006-01-02", exportFrom)
		if err != nil {
			return fmt.Errorf("invalid --from date: %w", err)
		}
		filter.StartDate = &from
	}
	if exportTo != "" {
		to, err := time.Parse("2006-01-02", exportTo)
		if err != nil {
			return fmt.Errorf("invalid --to date: %w", err)
		}
		filter.EndDate = &to
	}

	events, err := fetchAllEvents(ctx, deps.EventService, filter)
	if err != nil {
		return err
	}

	out := os.Stdout
	if exportOut != "" {
		f, err := os.Create(exportOut)
		if err != nil {
			return fmt.Errorf("failed to create %s: %w", exportOut, err)
		}
		defer f.Close()
		out = f
	}

	switch exportFormat {
	case "json":
		err = export.WriteJSON(out, events, time.Now())
	case "csv":
		err = export.WriteCSV(out, events)
	case "ics":
		err = export.WriteICS(out, events)
	default:
		return fmt.Errorf("unknown format %q: want json, csv, or ics", exportFormat)
	}
	if err != nil {
		return err
	}

	if exportOut != "" {
		fmt.Printf("Exported %d events to %s\n", len(events), exportOut)
	}
	return nil
}

func fetchAllEvents(ctx context.Context, service event.EventService, filter event.EventFilter) ([]event.Event, error) {
	var all []event.Event
	page := event.Page{Page: 1, PerPage: event.MaxPerPage}
	for {
		result, err := service.ListEvents(ctx, filter, page)
		if err != nil {
			return nil, err
		}
		all = append(all, result.Events...)
		if !result.HasNext {
			return all, nil
		}
		page.Page++
	}
}
