package conflict

import (
	"testing"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func timedEvent(id string, start, end time.Time) event.Event {
	return event.Event{
		ID:        id,
		Title:     "event " + id,
		StartTime: start,
		EndTime:   end,
		Type:      event.TypeMeeting,
		Status:    event.StatusScheduled,
	}
}

func allDayEvent(id string, day time.Time) event.Event {
	e := timedEvent(id, day, day)
	e.AllDay = true
	return e
}

func TestOverlaps(t *testing.T) {
	base := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	type interval struct {
		start, end time.Time
	}
	tests := []struct {
		name string
		a    interval
		b    interval
		want bool
	}{
		{
			name: "partial overlap",
			a:    interval{base, base.Add(2 * time.Hour)},
			b:    interval{base.Add(time.Hour), base.Add(3 * time.Hour)},
			want: true,
		},
		{
			name: "containment",
			a:    interval{base, base.Add(4 * time.Hour)},
			b:    interval{base.Add(time.Hour), base.Add(2 * time.Hour)},
			want: true,
		},
		{
			name: "touching endpoints do not conflict",
			a:    interval{base, base.Add(time.Hour)},
			b:    interval{base.Add(time.Hour), base.Add(2 * time.Hour)},
			want: false,
		},
		{
			name: "disjoint",
			a:    interval{base, base.Add(time.Hour)},
			b:    interval{base.Add(2 * time.Hour), base.Add(3 * time.Hour)},
			want: false,
		},
		{
			name: "zero-length candidate inside another interval",
			a:    interval{base, base},
			b:    interval{base.Add(-time.Hour), base.Add(time.Hour)},
			want: true,
		},
		{
			name: "zero-length candidate at the other interval's start",
			a:    interval{base, base},
			b:    interval{base, base.Add(time.Hour)},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Overlaps(tt.a.start, tt.a.end, tt.b.start, tt.b.end)
			assert.Equal(t, tt.want, got)
			// The overlap relation is symmetric.
			assert.Equal(t, got, Overlaps(tt.b.start, tt.b.end, tt.a.start, tt.a.end))
		})
	}
}

func TestDetect(t *testing.T) {
	day := time.Date(2025, time.June, 2, 0, 0, 0, 0, time.UTC)
	nineToTen := timedEvent("timed", day.Add(9*time.Hour), day.Add(10*time.Hour))

	t.Run("skips cancelled events", func(t *testing.T) {
		cancelled := nineToTen
		cancelled.ID = "cancelled"
		cancelled.Status = event.StatusCancelled

		check := event.ConflictCheck{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour)}
		assert.Empty(t, Detect(check, []event.Event{cancelled}))
	})

	t.Run("skips the excluded event id", func(t *testing.T) {
		excludeID := "timed"
		check := event.ConflictCheck{
			StartTime:      day.Add(9 * time.Hour),
			EndTime:        day.Add(10 * time.Hour),
			ExcludeEventID: &excludeID,
		}
		assert.Empty(t, Detect(check, []event.Event{nineToTen}))
		assert.False(t, HasConflict(check, []event.Event{nineToTen}))
	})

	t.Run("all-day candidate conflicts with a timed event the same day", func(t *testing.T) {
		check := event.ConflictCheck{StartTime: day.Add(13 * time.Hour), EndTime: day.Add(13 * time.Hour), AllDay: true}

		got := Detect(check, []event.Event{nineToTen})
		require.Len(t, got, 1)
		assert.Equal(t, "timed", got[0].ID)
	})

	t.Run("all-day event conflicts with a timed candidate the same day", func(t *testing.T) {
		check := event.ConflictCheck{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(10 * time.Hour)}

		got := Detect(check, []event.Event{allDayEvent("allday", day)})
		require.Len(t, got, 1)
		assert.Equal(t, "allday", got[0].ID)
	})

	t.Run("all-day event does not conflict with a timed event the next day", func(t *testing.T) {
		nextDay := timedEvent("next", day.AddDate(0, 0, 1).Add(9*time.Hour), day.AddDate(0, 0, 1).Add(10*time.Hour))
		check := event.ConflictCheck{StartTime: day, EndTime: day, AllDay: true}

		assert.Empty(t, Detect(check, []event.Event{nextDay}))
	})

	t.Run("preserves input order", func(t *testing.T) {
		first := timedEvent("first", day.Add(9*time.Hour), day.Add(11*time.Hour))
		second := timedEvent("second", day.Add(10*time.Hour), day.Add(12*time.Hour))
		outside := timedEvent("outside", day.Add(15*time.Hour), day.Add(16*time.Hour))

		check := event.ConflictCheck{StartTime: day.Add(9 * time.Hour), EndTime: day.Add(13 * time.Hour)}
		got := Detect(check, []event.Event{first, second, outside})
		require.Len(t, got, 2)
		assert.Equal(t, "first", got[0].ID)
		assert.Equal(t, "second", got[1].ID)
	})
}
