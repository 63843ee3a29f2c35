package reminder

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/T9ner/echo-sub000/pkg/event"
)

// Scheduler manages the reminders attached to an event.
type Scheduler struct {
	gateway event.Gateway
	clock   utils.Clock
}

func NewScheduler(gateway event.Gateway, clock utils.Clock) *Scheduler {
	if clock == nil {
		clock = &utils.SystemClock{}
	}
	return &Scheduler{
		gateway: gateway,
		clock:   clock,
	}
}

// Add attaches a reminder to an event. The lead time must be between zero and
// one week (in minutes).
func (s *Scheduler) Add(ctx context.Context, eventID string, create event.ReminderCreate) (*event.Reminder, error) {
	create.Normalize()
	if err := create.Validate(); err != nil {
		return nil, err
	}
	created, err := s.gateway.AddReminder(ctx, eventID, create)
	if err != nil {
		return nil, fmt.Errorf("failed to add reminder: %w", err)
	}
	return created, nil
}

// List returns the event's reminders ordered by lead time ascending, the
// order they are displayed in.
func (s *Scheduler) List(ctx context.Context, eventID string) ([]event.Reminder, error) {
	reminders, err := s.gateway.ListReminders(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	slices.SortFunc(reminders, func(a, b event.Reminder) int {
		return cmp.Compare(a.MinutesBefore, b.MinutesBefore)
	})
	return reminders, nil
}

func (s *Scheduler) Remove(ctx context.Context, eventID, reminderID string) error {
	if err := s.gateway.DeleteReminder(ctx, eventID, reminderID); err != nil {
		return fmt.Errorf("failed to delete reminder: %w", err)
	}
	return nil
}

// SuggestFor returns lead-time suggestions for the event, skipping offsets
// its reminders already cover.
func (s *Scheduler) SuggestFor(ctx context.Context, eventID string) ([]int, error) {
	withReminders, err := s.gateway.GetEvent(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to load event: %w", err)
	}
	return Suggest(withReminders.StartTime, s.clock.Now(), withReminders.Reminders), nil
}
