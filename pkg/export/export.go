package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
)

// Version identifies the JSON export layout.
const Version = "1.0"

// Document is the JSON export envelope.
type Document struct {
	Version     string        `json:"version"`
	ExportDate  time.Time     `json:"exportDate"`
	TotalEvents int           `json:"totalEvents"`
	Events      []EventRecord `json:"events"`
}

// EventRecord is one exported event. The field set matches the calendar API's
// wire names minus the server-assigned ones (id, created_at, updated_at), so
// an exported record can be resubmitted as a create.
type EventRecord struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	Location           string     `json:"location"`
	StartTime          time.Time  `json:"start_time"`
	EndTime            time.Time  `json:"end_time"`
	AllDay             bool       `json:"all_day"`
	EventType          string     `json:"event_type"`
	Status             string     `json:"status"`
	RecurrenceType     string     `json:"recurrence_type"`
	RecurrenceInterval *int       `json:"recurrence_interval"`
	RecurrenceEndDate  *time.Time `json:"recurrence_end_date"`
	RecurrenceCount    *int       `json:"recurrence_count"`
}

func recordOf(e event.Event) EventRecord {
	return EventRecord{
		Title:              e.Title,
		Description:        e.Description,
		Location:           e.Location,
		StartTime:          e.StartTime,
		EndTime:            e.EndTime,
		AllDay:             e.AllDay,
		EventType:          string(e.Type),
		Status:             string(e.Status),
		RecurrenceType:     string(e.RecurrenceType),
		RecurrenceInterval: e.RecurrenceInterval,
		RecurrenceEndDate:  e.RecurrenceEndDate,
		RecurrenceCount:    e.RecurrenceCount,
	}
}

func (r EventRecord) toCreate() event.EventCreate {
	return event.EventCreate{
		Title:              r.Title,
		Description:        r.Description,
		Location:           r.Location,
		StartTime:          r.StartTime,
		EndTime:            r.EndTime,
		AllDay:             r.AllDay,
		Type:               event.EventType(r.EventType),
		Status:             event.EventStatus(r.Status),
		RecurrenceType:     event.RecurrenceType(r.RecurrenceType),
		RecurrenceInterval: r.RecurrenceInterval,
		RecurrenceEndDate:  r.RecurrenceEndDate,
		RecurrenceCount:    r.RecurrenceCount,
	}
}

// WriteJSON writes the events to w as an indented export document stamped
// with exportDate = now.
func WriteJSON(w io.Writer, events []event.Event, now time.Time) error {
	doc := Document{
		Version:     Version,
		ExportDate:  now,
		TotalEvents: len(events),
		Events:      make([]EventRecord, 0, len(events)),
	}
	for _, e := range events {
		doc.Events = append(doc.Events, recordOf(e))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode export document: %w", err)
	}
	if _, err := w.Write(data); err != nil {
		return fmt.Errorf("failed to write export document: %w", err)
	}
	return nil
}

// ParseJSON reads an export document and returns its events as create
// payloads. A malformed document or an unsupported version fails as a whole;
// no partial result is returned.
func ParseJSON(r io.Reader) ([]event.EventCreate, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read import file: %w", err)
	}

	var doc Document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("malformed import file: %w", err)
	}
	if doc.Version != Version {
		return nil, fmt.Errorf("unsupported export version %q", doc.Version)
	}

	creates := make([]event.EventCreate, 0, len(doc.Events))
	for _, record := range doc.Events {
		creates = append(creates, record.toCreate())
	}
	return creates, nil
}
