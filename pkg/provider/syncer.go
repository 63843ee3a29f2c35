package provider

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/T9ner/echo-sub000/internal/event_bus"
	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/cenkalti/backoff/v4"
	log "github.com/sirupsen/logrus"
)

const (
	// syncMaxRetries bounds transient retries per sync; the next poll tick
	// picks up where a failed sync left off.
	syncMaxRetries = 3

	syncInitialWait = 500 * time.Millisecond
)

// Syncer mirrors one external calendar into an in-memory snapshot. Each Sync
// fetches the window's events from the feed, retrying transient failures,
// and publishes provider.synced on success. It satisfies the poller's
// ProviderSync interface.
type Syncer struct {
	feed       Feed
	bus        *event_bus.EventBus
	clock      utils.Clock
	calendarID string
	window     func() (time.Time, time.Time)
	retryWait  time.Duration

	mu       sync.RWMutex
	snapshot []event.Event
	lastSync time.Time
}

// NewSyncer creates a Syncer for calendarID. window supplies the time range
// to fetch on each sync; a nil window falls back to the week behind through
// the month ahead of the current time.
func NewSyncer(feed Feed, bus *event_bus.EventBus, clock utils.Clock, calendarID string, window func() (time.Time, time.Time)) *Syncer {
	if clock == nil {
		clock = &utils.SystemClock{}
	}
	s := &Syncer{
		feed:       feed,
		bus:        bus,
		clock:      clock,
		calendarID: calendarID,
		window:     window,
		retryWait:  syncInitialWait,
	}
	if s.window == nil {
		s.window = s.defaultWindow
	}
	return s
}

func (s *Syncer) defaultWindow() (time.Time, time.Time) {
	now := s.clock.Now()
	return now.AddDate(0, 0, -7), now.AddDate(0, 0, 30)
}

// Sync fetches the current window from the feed and replaces the snapshot.
// Transient failures are retried with exponential backoff; a definite
// failure or exhausted retries leave the previous snapshot in place.
func (s *Syncer) Sync(ctx context.Context) error {
	from, to := s.window()

	var fetched []event.Event
	fetch := func() error {
		events, err := s.feed.Events(ctx, s.calendarID, from, to)
		if err != nil {
			if event.IsTransient(err) {
				log.Debugf("provider fetch for %s failed, will retry: %v", s.calendarID, err)
				return err
			}
			return backoff.Permanent(err)
		}
		fetched = events
		return nil
	}

	if err := backoff.Retry(fetch, s.newBackOff(ctx)); err != nil {
		return fmt.Errorf("failed to sync calendar %s: %w", s.calendarID, err)
	}

	syncedAt := s.clock.Now()
	s.mu.Lock()
	s.snapshot = fetched
	s.lastSync = syncedAt
	s.mu.Unlock()

	s.publishSynced(ctx, len(fetched), syncedAt)
	log.Debugf("provider sync complete: %d events from %s", len(fetched), s.calendarID)
	return nil
}

// Snapshot returns a copy of the events stored by the last successful sync.
func (s *Syncer) Snapshot() []event.Event {
	s.mu.RLock()
	defer s.mu.RUnlock()
	events := make([]event.Event, len(s.snapshot))
	copy(events, s.snapshot)
	return events
}

// LastSync returns the completion time of the last successful sync, zero if
// none has succeeded yet.
func (s *Syncer) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

func (s *Syncer) newBackOff(ctx context.Context) backoff.BackOff {
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = s.retryWait
	return backoff.WithContext(backoff.WithMaxRetries(exp, syncMaxRetries), ctx)
}

func (s *Syncer) publishSynced(ctx context.Context, count int, syncedAt time.Time) {
	e := event_bus.NewEvent(ctx, event_bus.ProviderSyncedType, event_bus.ProviderSynced{
		CalendarID: s.calendarID,
		Count:      count,
		SyncedAt:   syncedAt,
	})
	if err := s.bus.Publish(e); err != nil {
		log.Errorf("failed to publish %s: %v", event_bus.ProviderSyncedType, err)
	}
}
