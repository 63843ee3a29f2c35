package calendar

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/T9ner/echo-sub000/internal/event_bus"
	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/T9ner/echo-sub000/pkg/recurrence"
	log "github.com/sirupsen/logrus"
)

// Occurrence is one concrete slot an event occupies inside the visible
// window. A recurring event contributes one Occurrence per expansion hit, a
// single event exactly one.
type Occurrence struct {
	Event event.Event
	Start time.Time
	End   time.Time
}

// Controller holds the active view and focus date, and loads the events the
// view shows. Fetches are ordered by a monotonic token: a response that comes
// back under a superseded token lost the race and is discarded, so slow
// responses can never overwrite newer state.
type Controller struct {
	events event.EventService
	clock  utils.Clock

	token atomic.Uint64

	mu       sync.Mutex
	view     View
	focus    time.Time
	snapshot []event.Event
	lastErr  error
}

// NewController starts on the month view focused on the current date. It
// subscribes to events.changed so that in-flight fetches issued before a
// write cannot land after it.
func NewController(events event.EventService, bus *event_bus.EventBus, clock utils.Clock) *Controller {
	c := &Controller{
		events: events,
		clock:  clock,
		view:   ViewMonth,
		focus:  clock.Now(),
	}

	event_bus.SubscribeTyped[event_bus.EventsChanged](bus, event_bus.EventsChangedType,
		func(event_bus.EventT[event_bus.EventsChanged]) error {
			c.token.Add(1)
			return nil
		})

	return c
}

func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.view
}

func (c *Controller) FocusDate() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.focus
}

// SetView switches the view. The focus date stays as it is; only the visible
// range recomputes.
func (c *Controller) SetView(v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown calendar view %q", v)
	}
	c.mu.Lock()
	c.view = v
	c.mu.Unlock()
	c.token.Add(1)
	return nil
}

func (c *Controller) GoToDate(d time.Time) {
	c.mu.Lock()
	c.focus = d
	c.mu.Unlock()
	c.token.Add(1)
}

func (c *Controller) Today() {
	c.GoToDate(c.clock.Now())
}

// Next advances the focus date by one unit of the active view: a day, a week,
// a calendar month, or an agenda window.
func (c *Controller) Next() {
	c.shift(1)
}

func (c *Controller) Previous() {
	c.shift(-1)
}

func (c *Controller) shift(n int) {
	c.mu.Lock()
	c.focus = step[c.view](c.focus, n)
	c.mu.Unlock()
	c.token.Add(1)
}

// VisibleRange returns the half-open window [from, to) the active view shows.
func (c *Controller) VisibleRange() (time.Time, time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return RangeFor(c.view, c.focus)
}

// LastError reports the failure state of the most recent committed fetch. It
// is nil again after the next successful one.
func (c *Controller) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Events returns the events overlapping the visible window. When the fetch
// fails, the last successfully loaded events are returned alongside the
// error, so a caller can keep showing known data with an error indicator.
func (c *Controller) Events(ctx context.Context) ([]event.Event, error) {
	return c.load(ctx, false)
}

// Refresh reloads the visible window from the server even when a cached copy
// exists. The poller drives this.
func (c *Controller) Refresh(ctx context.Context) ([]event.Event, error) {
	return c.load(ctx, true)
}

func (c *Controller) load(ctx context.Context, reload bool) ([]event.Event, error) {
	token := c.token.Add(1)
	loaded, err := c.fetchVisible(ctx, reload)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token.Load() != token {
		log.Debugf("discarding superseded calendar fetch (token %d)", token)
		return c.snapshot, c.lastErr
	}
	if err != nil {
		c.lastErr = err
		return c.snapshot, err
	}
	c.snapshot = loaded
	c.lastErr = nil
	return loaded, nil
}

// fetchVisible loads every page of the visible window. Cached pages are good
// enough for navigation; reload forces server reads for the poller.
func (c *Controller) fetchVisible(ctx context.Context, reload bool) ([]event.Event, error) {
	from, to := c.VisibleRange()
	filter := event.EventFilter{StartDate: &from, EndDate: &to}

	fetch := c.events.ListEvents
	if reload {
		fetch = c.events.ReloadEvents
	}

	var all []event.Event
	page := event.Page{Page: 1, PerPage: event.MaxPerPage}
	for {
		result, err := fetch(ctx, filter, page)
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

// Occurrences expands recurring events across the visible window and merges
// them with single events, ordered by start time.
func (c *Controller) Occurrences(ctx context.Context) ([]Occurrence, error) {
	loaded, err := c.Events(ctx)
	if err != nil {
		return nil, err
	}
	from, to := c.VisibleRange()
	window := recurrence.Window{From: from, To: to}

	occurrences := make([]Occurrence, 0, len(loaded))
	for _, e := range loaded {
		if !e.IsRecurring() {
			start, end := e.Interval()
			occurrences = append(occurrences, Occurrence{Event: e, Start: start, End: end})
			continue
		}

		rule, err := ruleFor(e)
		if err != nil {
			log.Warnf("skipping event %s with unusable recurrence: %v", e.ID, err)
			continue
		}
		start, end := e.Interval()
		expanded, err := recurrence.Expand(start, end, rule, window)
		if err != nil {
			return nil, fmt.Errorf("failed to expand event %s: %w", e.ID, err)
		}
		for _, o := range expanded {
			occurrences = append(occurrences, Occurrence{Event: e, Start: o.Start, End: o.End})
		}
	}

	slices.SortFunc(occurrences, func(a, b Occurrence) int {
		return a.Start.Compare(b.Start)
	})
	return occurrences, nil
}

func ruleFor(e event.Event) (recurrence.Rule, error) {
	freq, err := recurrence.ParseFreq(string(e.RecurrenceType))
	if err != nil {
		return recurrence.Rule{}, err
	}
	rule := recurrence.Rule{Freq: freq, Interval: 1, Until: e.RecurrenceEndDate}
	if e.RecurrenceInterval != nil {
		rule.Interval = *e.RecurrenceInterval
	}
	if e.RecurrenceCount != nil {
		rule.Count = *e.RecurrenceCount
	}
	return rule, nil
}
