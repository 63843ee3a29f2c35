package reminder

import (
	"slices"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
)

// tiers maps how far away an event starts to the two lead times worth
// offering for it. Close events get short leads, distant ones long.
var tiers = []struct {
	within  time.Duration
	offsets [2]int
}{
	{within: 2 * time.Hour, offsets: [2]int{5, 15}},
	{within: 24 * time.Hour, offsets: [2]int{15, 60}},
	{within: 7 * 24 * time.Hour, offsets: [2]int{60, 1440}},
}

// farOffsets applies to events more than a week away: a day and a week.
var farOffsets = [2]int{1440, 10080}

// Suggest returns lead-time suggestions in minutes for an event starting at
// start, leaving out offsets an existing reminder already covers. Events that
// have already started get no suggestions.
func Suggest(start, now time.Time, existing []event.Reminder) []int {
	until := start.Sub(now)
	if until <= 0 {
		return nil
	}

	offsets := farOffsets
	for _, tier := range tiers {
		if until < tier.within {
			offsets = tier.offsets
			break
		}
	}

	taken := make(map[int]bool, len(existing))
	for _, r := range existing {
		taken[r.MinutesBefore] = true
	}

	suggestions := make([]int, 0, len(offsets))
	for _, offset := range offsets {
		if !taken[offset] {
			suggestions = append(suggestions, offset)
		}
	}
	return suggestions
}

// Pending returns the reminders a notifier would dispatch at now: not yet
// sent, for a scheduled event that still lies ahead, with the lead time
// already reached. The result is ordered by fire time. Marking reminders sent
// is the server's job; clients only read the flag.
func Pending(events []event.Event, reminders []event.Reminder, now time.Time) []event.Reminder {
	byID := make(map[string]event.Event, len(events))
	for _, e := range events {
		byID[e.ID] = e
	}

	fireAt := func(r event.Reminder) time.Time {
		return byID[r.EventID].StartTime.Add(-time.Duration(r.MinutesBefore) * time.Minute)
	}

	var due []event.Reminder
	for _, r := range reminders {
		if r.Sent {
			continue
		}
		e, ok := byID[r.EventID]
		if !ok || e.Status != event.StatusScheduled || !e.StartTime.After(now) {
			continue
		}
		if now.Before(fireAt(r)) {
			continue
		}
		due = append(due, r)
	}

	slices.SortFunc(due, func(a, b event.Reminder) int {
		return fireAt(a).Compare(fireAt(b))
	})
	return due
}
