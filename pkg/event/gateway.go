package event

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

const (
	DefaultPerPage = 50
	MaxPerPage     = 100

	// MaxBulkEvents is the largest batch the bulk endpoint accepts.
	MaxBulkEvents = 100
)

// EventFilter narrows event listings. StartDate and EndDate select events
// whose interval overlaps the range: an event matches when it ends at or
// after StartDate and starts at or before EndDate.
type EventFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Type      *EventType
	Status    *EventStatus
	Search    string
	TaskID    *string
	HabitID   *string
}

type Page struct {
	Page    int
	PerPage int
}

func (p Page) Normalize() Page {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage <= 0 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	return p
}

// QueryValues encodes the filter and pagination as URL query parameters.
// url.Values encodes keys in sorted order, so the result is canonical and
// doubles as a cache fingerprint: equal filters produce equal strings.
func (f EventFilter) QueryValues(p Page) url.Values {
	p = p.Normalize()
	values := url.Values{}
	if f.StartDate != nil {
		values.Set("start_date", f.StartDate.Format(time.RFC3339))
	}
	if f.EndDate != nil {
		values.Set("end_date", f.EndDate.Format(time.RFC3339))
	}
	if f.Type != nil {
		values.Set("event_type", string(*f.Type))
	}
	if f.Status != nil {
		values.Set("status", string(*f.Status))
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.TaskID != nil {
		values.Set("task_id", *f.TaskID)
	}
	if f.HabitID != nil {
		values.Set("habit_id", *f.HabitID)
	}
	values.Set("page", strconv.Itoa(p.Page))
	values.Set("per_page", strconv.Itoa(p.PerPage))
	return values
}

type EventPage struct {
	Events  []Event `json:"events"`
	Total   int     `json:"total"`
	Page    int     `json:"page"`
	PerPage int     `json:"per_page"`
	HasNext bool    `json:"has_next"`
	HasPrev bool    `json:"has_prev"`
}

type MonthEvents struct {
	Year        int     `json:"year"`
	Month       int     `json:"month"`
	Events      []Event `json:"events"`
	TotalEvents int     `json:"total_events"`
}

type ConflictCheck struct {
	StartTime      time.Time `json:"start_time"`
	EndTime        time.Time `json:"end_time"`
	AllDay         bool      `json:"all_day"`
	ExcludeEventID *string   `json:"exclude_event_id,omitempty"`
}

type ConflictResult struct {
	HasConflicts      bool    `json:"has_conflicts"`
	ConflictingEvents []Event `json:"conflicting_events"`
}

type FailedEvent struct {
	EventData EventCreate `json:"event_data"`
	Error     string      `json:"error"`
}

type BulkResult struct {
	CreatedEvents []Event       `json:"created_events"`
	FailedEvents  []FailedEvent `json:"failed_events"`
	TotalCreated  int           `json:"total_created"`
	TotalFailed   int           `json:"total_failed"`
}

type TypeStats struct {
	StatsByType map[EventType]int `json:"stats_by_type"`
	TotalEvents int               `json:"total_events"`
}

// Gateway is the REST boundary to the calendar API. Implementations return
// *APIError for non-2xx responses; transport failures satisfy IsTransient.
type Gateway interface {
	ListEvents(ctx context.Context, filter EventFilter, page Page) (*EventPage, error)
	GetEvent(ctx context.Context, id string) (*EventWithReminders, error)
	CreateEvent(ctx context.Context, create EventCreate) (*Event, error)
	UpdateEvent(ctx context.Context, id string, update EventUpdate) (*Event, error)
	DeleteEvent(ctx context.Context, id string) error
	CheckConflicts(ctx context.Context, check ConflictCheck) (*ConflictResult, error)
	MonthEvents(ctx context.Context, year int, month int) (*MonthEvents, error)
	CreateEvents(ctx context.Context, creates []EventCreate) (*BulkResult, error)
	UpcomingEvents(ctx context.Context, limit int) ([]Event, error)
	StatsByType(ctx context.Context) (*TypeStats, error)
	AddReminder(ctx context.Context, eventID string, create ReminderCreate) (*Reminder, error)
	ListReminders(ctx context.Context, eventID string) ([]Reminder, error)
	DeleteReminder(ctx context.Context, eventID string, reminderID string) error
}
