package event

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/google/uuid"
)

// StubGateway is an in-memory Gateway used across package tests. It mirrors
// the calendar API's filter, ordering, and conflict semantics so service and
// controller tests run without a network.
type StubGateway struct {
	mu        sync.Mutex
	clock     utils.Clock
	events    map[string]Event
	reminders map[string]map[string]Reminder

	err        error
	createHook func(create EventCreate) error
	listHook   func()
	listCalls  int
}

func NewStubGateway(clock utils.Clock) *StubGateway {
	if clock == nil {
		clock = &utils.SystemClock{}
	}
	return &StubGateway{
		clock:     clock,
		events:    make(map[string]Event),
		reminders: make(map[string]map[string]Reminder),
	}
}

// SetError makes every subsequent call fail with err until reset with nil.
func (s *StubGateway) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// SetCreateHook installs a per-create failure: CreateEvent and the bulk path
// reject any create for which hook returns an error.
func (s *StubGateway) SetCreateHook(hook func(create EventCreate) error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.createHook = hook
}

// SetListHook runs hook inside every ListEvents call. Tests use it to
// interleave writes with an in-flight read; the hook must not call back into
// the gateway.
func (s *StubGateway) SetListHook(hook func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listHook = hook
}

// Seed stores events directly, bypassing create defaults. Useful for tests
// that need fixed ids.
func (s *StubGateway) Seed(events ...Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range events {
		s.events[e.ID] = e
	}
}

// ListCalls reports how many times ListEvents reached the stub; cache tests
// use it to distinguish hits from fetches.
func (s *StubGateway) ListCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.listCalls
}

func (s *StubGateway) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = make(map[string]Event)
	s.reminders = make(map[string]map[string]Reminder)
	s.err = nil
	s.createHook = nil
	s.listHook = nil
	s.listCalls = 0
}

func (s *StubGateway) ListEvents(_ context.Context, filter EventFilter, page Page) (*EventPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.listCalls++
	if s.err != nil {
		return nil, s.err
	}
	if s.listHook != nil {
		s.listHook()
	}

	matched := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		if matchesFilter(e, filter) {
			matched = append(matched, e)
		}
	}
	sortByStart(matched)

	page = page.Normalize()
	total := len(matched)
	from := (page.Page - 1) * page.PerPage
	if from > total {
		from = total
	}
	to := from + page.PerPage
	if to > total {
		to = total
	}

	return &EventPage{
		Events:  matched[from:to],
		Total:   total,
		Page:    page.Page,
		PerPage: page.PerPage,
		HasNext: page.Page*page.PerPage < total,
		HasPrev: page.Page > 1,
	}, nil
}

func (s *StubGateway) GetEvent(_ context.Context, id string) (*EventWithReminders, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, notFound("event " + id + " not found")
	}
	return &EventWithReminders{Event: e, Reminders: s.sortedReminders(id)}, nil
}

func (s *StubGateway) CreateEvent(_ context.Context, create EventCreate) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	return s.createLocked(create)
}

func (s *StubGateway) createLocked(create EventCreate) (*Event, error) {
	if s.createHook != nil {
		if err := s.createHook(create); err != nil {
			return nil, err
		}
	}
	create.Normalize()
	now := s.clock.Now()
	e := Event{
		ID:                 uuid.NewString(),
		Title:              create.Title,
		Description:        create.Description,
		Location:           create.Location,
		StartTime:          create.StartTime,
		EndTime:            create.EndTime,
		AllDay:             create.AllDay,
		Type:               create.Type,
		Status:             create.Status,
		RecurrenceType:     create.RecurrenceType,
		RecurrenceInterval: create.RecurrenceInterval,
		RecurrenceEndDate:  create.RecurrenceEndDate,
		RecurrenceCount:    create.RecurrenceCount,
		TaskID:             create.TaskID,
		HabitID:            create.HabitID,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	s.events[e.ID] = e
	return &e, nil
}

func (s *StubGateway) UpdateEvent(_ context.Context, id string, update EventUpdate) (*Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	e, ok := s.events[id]
	if !ok {
		return nil, notFound("event " + id + " not found")
	}

	if update.Title != nil {
		e.Title = *update.Title
	}
	if update.Description != nil {
		e.Description = *update.Description
	}
	if update.Location != nil {
		e.Location = *update.Location
	}
	if update.StartTime != nil {
		e.StartTime = *update.StartTime
	}
	if update.EndTime != nil {
		e.EndTime = *update.EndTime
	}
	if update.AllDay != nil {
		e.AllDay = *update.AllDay
	}
	if update.Type != nil {
		e.Type = *update.Type
	}
	if update.Status != nil {
		e.Status = *update.Status
	}
	if update.RecurrenceType != nil {
		e.RecurrenceType = *update.RecurrenceType
	}
	if update.RecurrenceInterval != nil {
		e.RecurrenceInterval = update.RecurrenceInterval
	}
	if update.RecurrenceEndDate != nil {
		e.RecurrenceEndDate = update.RecurrenceEndDate
	}
	if update.RecurrenceCount != nil {
		e.RecurrenceCount = update.RecurrenceCount
	}
	e.UpdatedAt = s.clock.Now()

	s.events[id] = e
	return &e, nil
}

func (s *StubGateway) DeleteEvent(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if _, ok := s.events[id]; !ok {
		return notFound("event " + id + " not found")
	}
	delete(s.events, id)
	// Reminders are owned by their event and go with it.
	delete(s.reminders, id)
	return nil
}

func (s *StubGateway) CheckConflicts(_ context.Context, check ConflictCheck) (*ConflictResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	candidateStart, candidateEnd := check.StartTime, check.EndTime
	if check.AllDay {
		candidateStart = startOfDay(check.StartTime)
		candidateEnd = candidateStart.AddDate(0, 0, 1)
	}

	conflicting := []Event{}
	for _, e := range s.sortedEvents() {
		if e.Status == StatusCancelled {
			continue
		}
		if check.ExcludeEventID != nil && e.ID == *check.ExcludeEventID {
			continue
		}
		otherStart, otherEnd := e.Interval()
		if candidateStart.Before(otherEnd) && otherStart.Before(candidateEnd) {
			conflicting = append(conflicting, e)
		}
	}
	return &ConflictResult{
		HasConflicts:      len(conflicting) > 0,
		ConflictingEvents: conflicting,
	}, nil
}

func (s *StubGateway) MonthEvents(_ context.Context, year int, month int) (*MonthEvents, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	monthStart := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	monthEnd := monthStart.AddDate(0, 1, 0)

	matched := []Event{}
	for _, e := range s.sortedEvents() {
		if e.StartTime.Before(monthEnd) && !e.EndTime.Before(monthStart) {
			matched = append(matched, e)
		}
	}
	return &MonthEvents{
		Year:        year,
		Month:       month,
		Events:      matched,
		TotalEvents: len(matched),
	}, nil
}

func (s *StubGateway) CreateEvents(_ context.Context, creates []EventCreate) (*BulkResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	result := &BulkResult{CreatedEvents: []Event{}, FailedEvents: []FailedEvent{}}
	for _, create := range creates {
		created, err := s.createLocked(create)
		if err != nil {
			result.FailedEvents = append(result.FailedEvents, FailedEvent{EventData: create, Error: err.Error()})
			continue
		}
		result.CreatedEvents = append(result.CreatedEvents, *created)
	}
	result.TotalCreated = len(result.CreatedEvents)
	result.TotalFailed = len(result.FailedEvents)
	return result, nil
}

func (s *StubGateway) UpcomingEvents(_ context.Context, limit int) ([]Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	now := s.clock.Now()
	upcoming := []Event{}
	for _, e := range s.sortedEvents() {
		if e.StartTime.After(now) && e.Status == StatusScheduled {
			upcoming = append(upcoming, e)
		}
	}
	if len(upcoming) > limit {
		upcoming = upcoming[:limit]
	}
	return upcoming, nil
}

func (s *StubGateway) StatsByType(_ context.Context) (*TypeStats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}

	stats := make(map[EventType]int)
	for _, e := range s.events {
		stats[e.Type]++
	}
	return &TypeStats{StatsByType: stats, TotalEvents: len(s.events)}, nil
}

func (s *StubGateway) AddReminder(_ context.Context, eventID string, create ReminderCreate) (*Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.events[eventID]; !ok {
		return nil, notFound("event " + eventID + " not found")
	}

	create.Normalize()
	r := Reminder{
		ID:            uuid.NewString(),
		EventID:       eventID,
		MinutesBefore: create.MinutesBefore,
		Method:        create.Method,
		CreatedAt:     s.clock.Now(),
	}
	if s.reminders[eventID] == nil {
		s.reminders[eventID] = make(map[string]Reminder)
	}
	s.reminders[eventID][r.ID] = r
	return &r, nil
}

func (s *StubGateway) ListReminders(_ context.Context, eventID string) ([]Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	if _, ok := s.events[eventID]; !ok {
		return nil, notFound("event " + eventID + " not found")
	}
	return s.sortedReminders(eventID), nil
}

func (s *StubGateway) DeleteReminder(_ context.Context, eventID string, reminderID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return s.err
	}
	if _, ok := s.reminders[eventID][reminderID]; !ok {
		return notFound("reminder " + reminderID + " not found")
	}
	delete(s.reminders[eventID], reminderID)
	return nil
}

func (s *StubGateway) sortedEvents() []Event {
	events := make([]Event, 0, len(s.events))
	for _, e := range s.events {
		events = append(events, e)
	}
	sortByStart(events)
	return events
}

func (s *StubGateway) sortedReminders(eventID string) []Reminder {
	reminders := make([]Reminder, 0, len(s.reminders[eventID]))
	for _, r := range s.reminders[eventID] {
		reminders = append(reminders, r)
	}
	sort.Slice(reminders, func(i, j int) bool {
		return reminders[i].MinutesBefore < reminders[j].MinutesBefore
	})
	return reminders
}

func matchesFilter(e Event, filter EventFilter) bool {
	// Date bounds select events whose interval overlaps the range, not ones
	// fully contained in it.
	if filter.StartDate != nil && e.EndTime.Before(*filter.StartDate) {
		return false
	}
	if filter.EndDate != nil && e.StartTime.After(*filter.EndDate) {
		return false
	}
	if filter.Type != nil && e.Type != *filter.Type {
		return false
	}
	if filter.Status != nil && e.Status != *filter.Status {
		return false
	}
	if filter.TaskID != nil && (e.TaskID == nil || *e.TaskID != *filter.TaskID) {
		return false
	}
	if filter.HabitID != nil && (e.HabitID == nil || *e.HabitID != *filter.HabitID) {
		return false
	}
	if filter.Search != "" {
		needle := strings.ToLower(filter.Search)
		if !strings.Contains(strings.ToLower(e.Title), needle) &&
			!strings.Contains(strings.ToLower(e.Description), needle) &&
			!strings.Contains(strings.ToLower(e.Location), needle) {
			return false
		}
	}
	return true
}

func sortByStart(events []Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].StartTime.Before(events[j].StartTime)
	})
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func notFound(detail string) error {
	return &APIError{StatusCode: http.StatusNotFound, Detail: detail}
}

var _ Gateway = (*StubGateway)(nil)

// ErrGatewayTest is a sentinel for injected stub failures.
var ErrGatewayTest = errors.New("gateway test error")
