package event

import (
	"time"
)

type EventType string

const (
	TypeMeeting     EventType = "meeting"
	TypeTask        EventType = "task"
	TypePersonal    EventType = "personal"
	TypeReminder    EventType = "reminder"
	TypeAppointment EventType = "appointment"
)

func (t EventType) Valid() bool {
	switch t {
	case TypeMeeting, TypeTask, TypePersonal, TypeReminder, TypeAppointment:
		return true
	}
	return false
}

type EventStatus string

const (
	StatusScheduled  EventStatus = "scheduled"
	StatusInProgress EventStatus = "in_progress"
	StatusCompleted  EventStatus = "completed"
	StatusCancelled  EventStatus = "cancelled"
)

func (s EventStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

type RecurrenceType string

const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
)

func (r RecurrenceType) Valid() bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly:
		return true
	}
	return false
}

type ReminderMethod string

const (
	MethodNotification ReminderMethod = "notification"
	MethodEmail        ReminderMethod = "email"
	MethodSMS          ReminderMethod = "sms"
)

func (m ReminderMethod) Valid() bool {
	switch m {
	case MethodNotification, MethodEmail, MethodSMS:
		return true
	}
	return false
}

// Event is the wire representation used by the calendar API. Timestamps are
// RFC 3339.
type Event struct {
	ID                 string         `json:"id"`
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Location           string         `json:"location,omitempty"`
	StartTime          time.Time      `json:"start_time"`
	EndTime            time.Time      `json:"end_time"`
	AllDay             bool           `json:"all_day"`
	Type               EventType      `json:"event_type"`
	Status             EventStatus    `json:"status"`
	RecurrenceType     RecurrenceType `json:"recurrence_type"`
	RecurrenceInterval *int           `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate  *time.Time     `json:"recurrence_end_date,omitempty"`
	RecurrenceCount    *int           `json:"recurrence_count,omitempty"`
	TaskID             *string        `json:"task_id,omitempty"`
	HabitID            *string        `json:"habit_id,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

func (e Event) IsRecurring() bool {
	return e.RecurrenceType != "" && e.RecurrenceType != RecurrenceNone
}

// DurationMinutes returns the event duration in minutes. All-day events count
// as a full day.
func (e Event) DurationMinutes() int {
	if e.AllDay {
		return 24 * 60
	}
	return int(e.EndTime.Sub(e.StartTime) / time.Minute)
}

// Interval returns the half-open interval [start, end) the event occupies.
// All-day events are normalized to midnight-to-midnight in the start time's
// location.
func (e Event) Interval() (time.Time, time.Time) {
	if !e.AllDay {
		return e.StartTime, e.EndTime
	}
	day := e.StartTime
	start := time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, day.Location())
	return start, start.AddDate(0, 0, 1)
}

type Reminder struct {
	ID            string         `json:"id"`
	EventID       string         `json:"event_id"`
	MinutesBefore int            `json:"minutes_before"`
	Method        ReminderMethod `json:"method"`
	Sent          bool           `json:"sent"`
	SentAt        *time.Time     `json:"sent_at,omitempty"`
	CreatedAt     time.Time      `json:"created_at"`
}

type EventWithReminders struct {
	Event
	Reminders []Reminder `json:"reminders"`
}

// EventCreate is the payload for creating an event. Zero-valued enum fields
// are filled with defaults by Normalize.
type EventCreate struct {
	Title              string         `json:"title"`
	Description        string         `json:"description,omitempty"`
	Location           string         `json:"location,omitempty"`
	StartTime          time.Time      `json:"start_time"`
	EndTime            time.Time      `json:"end_time"`
	AllDay             bool           `json:"all_day"`
	Type               EventType      `json:"event_type"`
	Status             EventStatus    `json:"status"`
	RecurrenceType     RecurrenceType `json:"recurrence_type"`
	RecurrenceInterval *int           `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate  *time.Time     `json:"recurrence_end_date,omitempty"`
	RecurrenceCount    *int           `json:"recurrence_count,omitempty"`
	TaskID             *string        `json:"task_id,omitempty"`
	HabitID            *string        `json:"habit_id,omitempty"`
}

func (c *EventCreate) Normalize() {
	if c.Type == "" {
		c.Type = TypePersonal
	}
	if c.Status == "" {
		c.Status = StatusScheduled
	}
	if c.RecurrenceType == "" {
		c.RecurrenceType = RecurrenceNone
	}
}

// EventUpdate is a partial update; nil fields are left unchanged.
type EventUpdate struct {
	Title              *string         `json:"title,omitempty"`
	Description        *string         `json:"description,omitempty"`
	Location           *string         `json:"location,omitempty"`
	StartTime          *time.Time      `json:"start_time,omitempty"`
	EndTime            *time.Time      `json:"end_time,omitempty"`
	AllDay             *bool           `json:"all_day,omitempty"`
	Type               *EventType      `json:"event_type,omitempty"`
	Status             *EventStatus    `json:"status,omitempty"`
	RecurrenceType     *RecurrenceType `json:"recurrence_type,omitempty"`
	RecurrenceInterval *int            `json:"recurrence_interval,omitempty"`
	RecurrenceEndDate  *time.Time      `json:"recurrence_end_date,omitempty"`
	RecurrenceCount    *int            `json:"recurrence_count,omitempty"`
}

type ReminderCreate struct {
	MinutesBefore int            `json:"minutes_before"`
	Method        ReminderMethod `json:"method"`
}

func (c *ReminderCreate) Normalize() {
	if c.Method == "" {
		c.Method = MethodNotification
	}
}
