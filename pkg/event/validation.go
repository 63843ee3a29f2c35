package event

import (
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 1000
	maxLocationLength    = 200
	maxSearchLength      = 100

	minRecurrenceInterval = 1
	maxRecurrenceInterval = 365
	minRecurrenceCount    = 1
	maxRecurrenceCount    = 1000

	// MaxReminderLeadMinutes is one week expressed in minutes.
	MaxReminderLeadMinutes = 7 * 24 * 60
)

// ValidationError reports a request that was rejected before reaching the
// API.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

func (c EventCreate) Validate() error {
	if utf8.RuneCountInString(c.Title) == 0 {
		return &ValidationError{Field: "title", Reason: "must not be empty"}
	}
	if utf8.RuneCountInString(c.Title) > maxTitleLength {
		return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
	}
	if utf8.RuneCountInString(c.Description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	if utf8.RuneCountInString(c.Location) > maxLocationLength {
		return &ValidationError{Field: "location", Reason: fmt.Sprintf("must be at most %d characters", maxLocationLength)}
	}
	if c.StartTime.IsZero() {
		return &ValidationError{Field: "start_time", Reason: "is required"}
	}
	if c.EndTime.IsZero() {
		return &ValidationError{Field: "end_time", Reason: "is required"}
	}
	// All-day events collapse to a date range, so a single-day event may carry
	// equal instants; Interval normalizes it to midnight-to-midnight.
	if c.AllDay {
		if c.EndTime.Before(c.StartTime) {
			return &ValidationError{Field: "end_time", Reason: "must not be before start_time"}
		}
	} else if !c.EndTime.After(c.StartTime) {
		return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
	}
	if c.Type != "" && !c.Type.Valid() {
		return &ValidationError{Field: "event_type", Reason: fmt.Sprintf("unknown value %q", c.Type)}
	}
	if c.Status != "" && !c.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", c.Status)}
	}
	if c.RecurrenceType != "" && !c.RecurrenceType.Valid() {
		return &ValidationError{Field: "recurrence_type", Reason: fmt.Sprintf("unknown value %q", c.RecurrenceType)}
	}
	return validateRecurrenceBounds(c.StartTime, c.RecurrenceInterval, c.RecurrenceEndDate, c.RecurrenceCount)
}

func (u EventUpdate) Validate() error {
	if u.Title != nil {
		if utf8.RuneCountInString(*u.Title) == 0 {
			return &ValidationError{Field: "title", Reason: "must not be empty"}
		}
		if utf8.RuneCountInString(*u.Title) > maxTitleLength {
			return &ValidationError{Field: "title", Reason: fmt.Sprintf("must be at most %d characters", maxTitleLength)}
		}
	}
	if u.Description != nil && utf8.RuneCountInString(*u.Description) > maxDescriptionLength {
		return &ValidationError{Field: "description", Reason: fmt.Sprintf("must be at most %d characters", maxDescriptionLength)}
	}
	if u.Location != nil && utf8.RuneCountInString(*u.Location) > maxLocationLength {
		return &ValidationError{Field: "location", Reason: fmt.Sprintf("must be at most %d characters", maxLocationLength)}
	}
	// The server re-checks start/end ordering against the stored event; the
	// client can only verify it when both sides are part of the update.
	if u.StartTime != nil && u.EndTime != nil {
		if u.AllDay != nil && *u.AllDay {
			if u.EndTime.Before(*u.StartTime) {
				return &ValidationError{Field: "end_time", Reason: "must not be before start_time"}
			}
		} else if !u.EndTime.After(*u.StartTime) {
			return &ValidationError{Field: "end_time", Reason: "must be after start_time"}
		}
	}
	if u.Type != nil && !u.Type.Valid() {
		return &ValidationError{Field: "event_type", Reason: fmt.Sprintf("unknown value %q", *u.Type)}
	}
	if u.Status != nil && !u.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", *u.Status)}
	}
	if u.RecurrenceType != nil && !u.RecurrenceType.Valid() {
		return &ValidationError{Field: "recurrence_type", Reason: fmt.Sprintf("unknown value %q", *u.RecurrenceType)}
	}
	var start time.Time
	if u.StartTime != nil {
		start = *u.StartTime
	}
	return validateRecurrenceBounds(start, u.RecurrenceInterval, u.RecurrenceEndDate, u.RecurrenceCount)
}

func validateRecurrenceBounds(start time.Time, interval *int, endDate *time.Time, count *int) error {
	if interval != nil && (*interval < minRecurrenceInterval || *interval > maxRecurrenceInterval) {
		return &ValidationError{
			Field:  "recurrence_interval",
			Reason: fmt.Sprintf("must be between %d and %d", minRecurrenceInterval, maxRecurrenceInterval),
		}
	}
	if count != nil && (*count < minRecurrenceCount || *count > maxRecurrenceCount) {
		return &ValidationError{
			Field:  "recurrence_count",
			Reason: fmt.Sprintf("must be between %d and %d", minRecurrenceCount, maxRecurrenceCount),
		}
	}
	if endDate != nil && count != nil {
		return &ValidationError{Field: "recurrence_count", Reason: "recurrence_end_date and recurrence_count are mutually exclusive"}
	}
	if endDate != nil && !start.IsZero() && !endDate.After(start) {
		return &ValidationError{Field: "recurrence_end_date", Reason: "must be after start_time"}
	}
	return nil
}

func (c ReminderCreate) Validate() error {
	if c.MinutesBefore < 0 || c.MinutesBefore > MaxReminderLeadMinutes {
		return &ValidationError{
			Field:  "minutes_before",
			Reason: fmt.Sprintf("must be between 0 and %d", MaxReminderLeadMinutes),
		}
	}
	if c.Method != "" && !c.Method.Valid() {
		return &ValidationError{Field: "method", Reason: fmt.Sprintf("unknown value %q", c.Method)}
	}
	return nil
}

func (f EventFilter) Validate() error {
	if utf8.RuneCountInString(f.Search) > maxSearchLength {
		return &ValidationError{Field: "search", Reason: fmt.Sprintf("must be at most %d characters", maxSearchLength)}
	}
	if f.Type != nil && !f.Type.Valid() {
		return &ValidationError{Field: "event_type", Reason: fmt.Sprintf("unknown value %q", *f.Type)}
	}
	if f.Status != nil && !f.Status.Valid() {
		return &ValidationError{Field: "status", Reason: fmt.Sprintf("unknown value %q", *f.Status)}
	}
	return nil
}
