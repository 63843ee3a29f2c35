package provider

import (
	"context"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
)

// CalendarInfo identifies one calendar on an external provider.
type CalendarInfo struct {
	ID      string
	Summary string
}

// Feed reads calendars and events from an external calendar provider. The
// feed is read-only: writes stay with the calendar API, external events are
// only mirrored for display.
type Feed interface {
	Calendars(ctx context.Context) ([]CalendarInfo, error)
	Events(ctx context.Context, calendarID string, from time.Time, to time.Time) ([]event.Event, error)
}
