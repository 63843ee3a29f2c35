package event

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/T9ner/echo-sub000/internal/event_bus"
	"github.com/T9ner/echo-sub000/pkg/cache"
	log "github.com/sirupsen/logrus"
)

// eventsKeyPrefix namespaces every cache entry this service writes, so one
// Invalidate call drops all cached event queries at once.
const eventsKeyPrefix = "events:"

const (
	defaultEventsTTL    = 5 * time.Minute
	defaultAnalyticsTTL = 10 * time.Minute

	defaultUpcomingLimit = 10
	maxUpcomingLimit     = 50
)

type EventService interface {
	ListEvents(ctx context.Context, filter EventFilter, page Page) (*EventPage, error)
	// ReloadEvents bypasses the cache read but refreshes the entry, so pollers
	// always see server state.
	ReloadEvents(ctx context.Context, filter EventFilter, page Page) (*EventPage, error)
	GetEvent(ctx context.Context, id string) (*EventWithReminders, error)
	CreateEvent(ctx context.Context, create EventCreate) (*Event, error)
	UpdateEvent(ctx context.Context, id string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CheckConflicts(ctx context.Context, check ConflictCheck) (*ConflictResult, error)
	MonthEvents(ctx context.Context, year int, month int) (*MonthEvents, error)
	BulkCreate(ctx context.Context, creates []EventCreate) (*BulkResult, error)
	UpcomingEvents(ctx context.Context, limit int) ([]Event, error)
	StatsByType(ctx context.Context) (*TypeStats, error)
}

type EventServiceImpl struct {
	gateway      Gateway
	store        cache.Store
	bus          *event_bus.EventBus
	eventsTTL    time.Duration
	analyticsTTL time.Duration
}

// NewEventService wires the gateway to the query cache. It subscribes to
// events.changed so that any published write, including ones from other
// components, drops the cached event queries.
func NewEventService(gateway Gateway, store cache.Store, bus *event_bus.EventBus, eventsTTL, analyticsTTL time.Duration) *EventServiceImpl {
	if eventsTTL <= 0 {
		eventsTTL = defaultEventsTTL
	}
	if analyticsTTL <= 0 {
		analyticsTTL = defaultAnalyticsTTL
	}
	s := &EventServiceImpl{
		gateway:      gateway,
		store:        store,
		bus:          bus,
		eventsTTL:    eventsTTL,
		analyticsTTL: analyticsTTL,
	}

	event_bus.SubscribeTyped[event_bus.EventsChanged](bus, event_bus.EventsChangedType,
		func(e event_bus.EventT[event_bus.EventsChanged]) error {
			n := s.store.Invalidate(eventsKeyPrefix)
			log.Debugf("dropped %d cached event queries after %s", n, e.Data.Op)
			return nil
		})

	return s
}

func (s *EventServiceImpl) ListEvents(ctx context.Context, filter EventFilter, page Page) (*EventPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	key := listKey(filter, page)
	if cached, ok := s.store.Get(key); ok {
		if result, ok := cached.(*EventPage); ok {
			return result, nil
		}
	}
	return s.fetchEvents(ctx, filter, page, key)
}

func (s *EventServiceImpl) ReloadEvents(ctx context.Context, filter EventFilter, page Page) (*EventPage, error) {
	if err := filter.Validate(); err != nil {
		return nil, err
	}
	return s.fetchEvents(ctx, filter, page, listKey(filter, page))
}

func (s *EventServiceImpl) fetchEvents(ctx context.Context, filter EventFilter, page Page, key string) (*EventPage, error) {
	result, err := s.gateway.ListEvents(ctx, filter, page)
	if err != nil {
		return nil, err
	}
	s.store.Set(key, result, s.eventsTTL)
	return result, nil
}

func (s *EventServiceImpl) GetEvent(ctx context.Context, id string) (*EventWithReminders, error) {
	return s.gateway.GetEvent(ctx, id)
}

func (s *EventServiceImpl) CreateEvent(ctx context.Context, create EventCreate) (*Event, error) {
	create.Normalize()
	if err := create.Validate(); err != nil {
		return nil, err
	}
	created, err := s.gateway.CreateEvent(ctx, create)
	if err != nil {
		s.handleWriteFailure(ctx, event_bus.ChangeOpCreate, err)
		return nil, err
	}
	s.publishChanged(ctx, event_bus.ChangeOpCreate, created.ID)
	return created, nil
}

func (s *EventServiceImpl) UpdateEvent(ctx context.Context, id string, update EventUpdate) (*Event, error) {
	if err := update.Validate(); err != nil {
		return nil, err
	}
	updated, err := s.gateway.UpdateEvent(ctx, id, update)
	if err != nil {
		s.handleWriteFailure(ctx, event_bus.ChangeOpUpdate, err)
		return nil, err
	}
	s.publishChanged(ctx, event_bus.ChangeOpUpdate, updated.ID)
	return updated, nil
}

func (s *EventServiceImpl) DeleteEvent(ctx context.Context, id string) error {
	if err := s.gateway.DeleteEvent(ctx, id); err != nil {
		s.handleWriteFailure(ctx, event_bus.ChangeOpDelete, err)
		return err
	}
	s.publishChanged(ctx, event_bus.ChangeOpDelete, id)
	return nil
}

func (s *EventServiceImpl) CheckConflicts(ctx context.Context, check ConflictCheck) (*ConflictResult, error) {
	if check.EndTime.Before(check.StartTime) {
		return nil, &ValidationError{Field: "end_time", Reason: "must not be before start_time"}
	}
	return s.gateway.CheckConflicts(ctx, check)
}

func (s *EventServiceImpl) MonthEvents(ctx context.Context, year int, month int) (*MonthEvents, error) {
	if month < 1 || month > 12 {
		return nil, &ValidationError{Field: "month", Reason: "must be between 1 and 12"}
	}
	key := monthKey(year, month)
	if cached, ok := s.store.Get(key); ok {
		if result, ok := cached.(*MonthEvents); ok {
			return result, nil
		}
	}
	result, err := s.gateway.MonthEvents(ctx, year, month)
	if err != nil {
		return nil, err
	}
	s.store.Set(key, result, s.eventsTTL)
	return result, nil
}

func (s *EventServiceImpl) BulkCreate(ctx context.Context, creates []EventCreate) (*BulkResult, error) {
	if len(creates) == 0 {
		return &BulkResult{}, nil
	}
	if len(creates) > MaxBulkEvents {
		return nil, &ValidationError{
			Field:  "events",
			Reason: fmt.Sprintf("at most %d events per bulk request", MaxBulkEvents),
		}
	}
	for i := range creates {
		creates[i].Normalize()
	}
	result, err := s.gateway.CreateEvents(ctx, creates)
	if err != nil {
		s.handleWriteFailure(ctx, event_bus.ChangeOpCreate, err)
		return nil, err
	}
	s.publishChanged(ctx, event_bus.ChangeOpCreate, "")
	return result, nil
}

func (s *EventServiceImpl) UpcomingEvents(ctx context.Context, limit int) ([]Event, error) {
	if limit <= 0 {
		limit = defaultUpcomingLimit
	}
	if limit > maxUpcomingLimit {
		limit = maxUpcomingLimit
	}
	return s.gateway.UpcomingEvents(ctx, limit)
}

func (s *EventServiceImpl) StatsByType(ctx context.Context) (*TypeStats, error) {
	key := statsKey()
	if cached, ok := s.store.Get(key); ok {
		if result, ok := cached.(*TypeStats); ok {
			return result, nil
		}
	}
	result, err := s.gateway.StatsByType(ctx)
	if err != nil {
		return nil, err
	}
	s.store.Set(key, result, s.analyticsTTL)
	return result, nil
}

// handleWriteFailure publishes a change notification for writes whose outcome
// is unknown, so cached reads are not trusted past them.
func (s *EventServiceImpl) handleWriteFailure(ctx context.Context, op event_bus.ChangeOp, err error) {
	if !writeMayHaveLanded(err) {
		return
	}
	log.Debugf("write failed with uncertain outcome (%s), dropping cached event queries: %v", op, err)
	s.publishChanged(ctx, op, "")
}

// writeMayHaveLanded reports whether a failed write could still have changed
// server state. Transport failures cut off the response, and 5xx responses can
// follow a partial apply. 4xx responses are clean rejections.
func writeMayHaveLanded(err error) bool {
	if IsTransient(err) {
		return true
	}
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode >= 500
}

func (s *EventServiceImpl) publishChanged(ctx context.Context, op event_bus.ChangeOp, id string) {
	e := event_bus.NewEvent(ctx, event_bus.EventsChangedType, event_bus.EventsChanged{Op: op, EventID: id})
	if err := s.bus.Publish(e); err != nil {
		log.Errorf("failed to publish %s: %v", event_bus.EventsChangedType, err)
	}
}

func listKey(filter EventFilter, page Page) string {
	return eventsKeyPrefix + "list:" + filter.QueryValues(page).Encode()
}

func monthKey(year int, month int) string {
	return fmt.Sprintf("%smonth:%d-%02d", eventsKeyPrefix, year, month)
}

func statsKey() string {
	return eventsKeyPrefix + "stats:by-type"
}
