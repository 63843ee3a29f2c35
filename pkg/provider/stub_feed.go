package provider

import (
	"context"
	"sync"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
)

// StubFeed is an in-memory Feed for tests. Events are filtered against the
// requested window the way the Google list call does it server-side.
type StubFeed struct {
	mu        sync.Mutex
	calendars []CalendarInfo
	events    map[string][]event.Event

	err        error
	failTimes  int
	eventCalls int
}

func NewStubFeed() *StubFeed {
	return &StubFeed{
		events: make(map[string][]event.Event),
	}
}

// SetError makes every subsequent call fail with err until reset with nil.
func (s *StubFeed) SetError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.err = err
}

// FailTimes makes the next n Events calls fail with err before the stub
// recovers. Used for retry tests.
func (s *StubFeed) FailTimes(n int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failTimes = n
	s.err = err
}

// SeedCalendars replaces the stub's calendar list.
func (s *StubFeed) SeedCalendars(calendars ...CalendarInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calendars = calendars
}

// SeedEvents stores events for calendarID, bypassing any mapping.
func (s *StubFeed) SeedEvents(calendarID string, events ...event.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[calendarID] = append(s.events[calendarID], events...)
}

// EventCalls reports how many times Events reached the stub, failed attempts
// included.
func (s *StubFeed) EventCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eventCalls
}

func (s *StubFeed) Calendars(_ context.Context) ([]CalendarInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return append([]CalendarInfo(nil), s.calendars...), nil
}

func (s *StubFeed) Events(_ context.Context, calendarID string, from time.Time, to time.Time) ([]event.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.eventCalls++
	if s.err != nil {
		err := s.err
		if s.failTimes > 0 {
			s.failTimes--
			if s.failTimes == 0 {
				s.err = nil
			}
		}
		return nil, err
	}

	matched := make([]event.Event, 0, len(s.events[calendarID]))
	for _, e := range s.events[calendarID] {
		if e.StartTime.Before(to) && e.EndTime.After(from) {
			matched = append(matched, e)
		}
	}
	return matched, nil
}

var _ Feed = (*StubFeed)(nil)
