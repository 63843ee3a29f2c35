package conflict

import (
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
)

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) overlap. Intervals that merely touch do not.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}

// Detect returns the events whose interval overlaps the candidate, in input
// order. Cancelled events and the event named by check.ExcludeEventID are
// never reported. All-day intervals, on either side, are normalized to
// midnight-to-midnight before the comparison, so an all-day event conflicts
// with any timed event on the same calendar day.
func Detect(check event.ConflictCheck, events []event.Event) []event.Event {
	candidateStart, candidateEnd := check.StartTime, check.EndTime
	if check.AllDay {
		candidateStart, candidateEnd = dayInterval(check.StartTime)
	}

	var conflicting []event.Event
	for _, e := range events {
		if e.Status == event.StatusCancelled {
			continue
		}
		if check.ExcludeEventID != nil && e.ID == *check.ExcludeEventID {
			continue
		}
		otherStart, otherEnd := e.Interval()
		if Overlaps(candidateStart, candidateEnd, otherStart, otherEnd) {
			conflicting = append(conflicting, e)
		}
	}
	return conflicting
}

// HasConflict reports whether Detect would find at least one overlap.
func HasConflict(check event.ConflictCheck, events []event.Event) bool {
	return len(Detect(check, events)) > 0
}

func dayInterval(t time.Time) (time.Time, time.Time) {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}
