package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var upcomingLimit int

var upcomingCmd = &cobra.Command{
	Use:   "upcoming",
	Short: "List the next scheduled events",
	RunE:  runUpcoming,
}

func init() {
	upcomingCmd.Flags().IntVar(&upcomingLimit, "limit", 10, "Maximum number of events to list (1-50)")
	rootCmd.AddCommand(upcomingCmd)
}

func runUpcoming(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	deps, err := buildDependencies(ctx)
	if err != nil {
		return err
	}

	events, err := deps.EventService.UpcomingEvents(ctx, upcomingLimit)
	if err != nil {
		return fmt.Errorf("failed to fetch upcoming events: %w", err)
	}

	if len(events) == 0 {
		fmt.Println("No upcoming events.")
		return nil
	}

	for _, e := range events {
		when := e.StartTime.Local().Format("Mon Jan 2 15:04")
		if e.AllDay {
			when = e.StartTime.Format("Mon Jan 2") + " (all day)"
		}
		fmt.Printf("  %s  %s\n", when, e.Title)
		if e.Location != "" {
			fmt.Printf("    at %s\n", e.Location)
		}
	}
	return nil
}
