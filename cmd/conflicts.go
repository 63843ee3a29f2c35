package cmd

import (
	"fmt"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/spf13/cobra"
)

var (
	conflictStart string
	conflictEnd   string
)

var conflictsCmd = &cobra.Command{
	Use:   "conflicts",
	Short: "Check a time slot for conflicting events",
	Long: `Conflicts checks whether any scheduled event overlaps the given slot.
Events that merely touch the slot's boundaries do not count as overlapping.`,
	RunE: runConflicts,
}

func init() {
	conflictsCmd.Flags().StringVar(&conflictStart, "start", "", "Slot start (RFC 3339, e.g. 2025-06-11T09:00:00Z)")
	conflictsCmd.Flags().StringVar(&conflictEnd, "end", "", "Slot end (RFC 3339)")
	_ = conflictsCmd.MarkFlagRequired("start")
	_ = conflictsCmd.MarkFlagRequired("end")
	rootCmd.AddCommand(conflictsCmd)
}

func runConflicts(cmd *cobra.Command, args []string) error {
	start, err := time.Parse(time.RFC3339, conflictStart)
	if err != nil {
		return fmt.Errorf("invalid --start time: %w", err)
	}
	end, err := time.Parse(time.RFC3339, conflictEnd)
	if err != nil {
		return fmt.Errorf("invalid --end time: %w", err)
	}

	ctx := cmd.Context()
	deps, err := buildDependencies(ctx)
	if err != nil {
		return err
	}

	result, err := deps.EventService.CheckConflicts(ctx, event.ConflictCheck{
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return fmt.Errorf("conflict check failed: %w", err)
	}

	if !result.HasConflicts {
		fmt.Println("No conflicts.")
		return nil
	}

	fmt.Printf("%d conflicting events:\n", len(result.ConflictingEvents))
	for _, e := range result.ConflictingEvents {
		fmt.Printf("  %s - %s  %s\n",
			e.StartTime.Local().Format("Mon Jan 2 15:04"),
			e.EndTime.Local().Format("15:04"),
			e.Title)
	}
	return nil
}
