package calendar

import (
	"fmt"
	"strings"
	"time"
)

// View selects how much of the calendar is visible at once.
type View string

const (
	ViewDay    View = "day"
	ViewWeek   View = "week"
	ViewMonth  View = "month"
	ViewAgenda View = "agenda"
)

// agendaDays is the length of the rolling agenda window.
const agendaDays = 30

// ParseView maps a view name onto a View. Matching is case-insensitive.
func ParseView(name string) (View, error) {
	v := View(strings.ToLower(strings.TrimSpace(name)))
	switch v {
	case ViewDay, ViewWeek, ViewMonth, ViewAgenda:
		return v, nil
	}
	return "", fmt.Errorf("unknown calendar view %q", name)
}

func (v View) Valid() bool {
	_, err := ParseView(string(v))
	return err == nil
}

type rangeFn func(focus time.Time) (time.Time, time.Time)

type stepFn func(focus time.Time, n int) time.Time

// visibleRange maps each view to the half-open window [from, to) it shows
// around a focus date. Adding a view means adding a row here and in step.
var visibleRange = map[View]rangeFn{
	ViewDay: func(focus time.Time) (time.Time, time.Time) {
		from := startOfDay(focus)
		return from, from.AddDate(0, 0, 1)
	},
	ViewWeek: func(focus time.Time) (time.Time, time.Time) {
		from := startOfWeek(focus)
		return from, from.AddDate(0, 0, 7)
	},
	ViewMonth: func(focus time.Time) (time.Time, time.Time) {
		from := startOfMonth(focus)
		return from, from.AddDate(0, 1, 0)
	},
	ViewAgenda: func(focus time.Time) (time.Time, time.Time) {
		from := startOfDay(focus)
		return from, from.AddDate(0, 0, agendaDays)
	},
}

// step maps each view to its navigation unit. Month steps use AddDate month
// arithmetic, which normalizes overflowing days (Jan 31 plus one month lands
// on Mar 2 or Mar 3).
var step = map[View]stepFn{
	ViewDay: func(focus time.Time, n int) time.Time {
		return focus.AddDate(0, 0, n)
	},
	ViewWeek: func(focus time.Time, n int) time.Time {
		return focus.AddDate(0, 0, 7*n)
	},
	ViewMonth: func(focus time.Time, n int) time.Time {
		return focus.AddDate(0, n, 0)
	},
	ViewAgenda: func(focus time.Time, n int) time.Time {
		return focus.AddDate(0, 0, agendaDays*n)
	},
}

// RangeFor returns the half-open window [from, to) the view shows for the
// given focus date. Week windows are Sunday-aligned.
func RangeFor(view View, focus time.Time) (time.Time, time.Time) {
	fn, ok := visibleRange[view]
	if !ok {
		fn = visibleRange[ViewMonth]
	}
	return fn(focus)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// startOfWeek returns the most recent Sunday midnight at or before t.
func startOfWeek(t time.Time) time.Time {
	d := startOfDay(t)
	return d.AddDate(0, 0, -int(d.Weekday()))
}

func startOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}
