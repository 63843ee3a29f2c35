package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	ics "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/teambition/rrule-go"
)

const icsProductID = "-//echo-calendar//EN"

// WriteICS writes the events to w as an iCalendar stream, one VEVENT per
// event. All timestamps are UTC.
func WriteICS(w io.Writer, events []event.Event) error {
	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId(icsProductID)

	for _, e := range events {
		uid := e.ID
		if uid == "" {
			uid = uuid.NewString()
		}
		ve := cal.AddEvent(uid)
		ve.SetSummary(e.Title)
		ve.SetStartAt(e.StartTime.UTC())
		ve.SetEndAt(e.EndTime.UTC())
		ve.SetCreatedTime(e.CreatedAt.UTC())
		ve.SetModifiedAt(e.UpdatedAt.UTC())
		ve.SetStatus(icsStatus(e.Status))
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
	}

	if _, err := io.WriteString(w, cal.Serialize()); err != nil {
		return fmt.Errorf("failed to write calendar: %w", err)
	}
	return nil
}

// icsStatus maps an event status onto the three values VEVENT STATUS allows.
// Everything that is still happening or already happened counts as confirmed.
func icsStatus(s event.EventStatus) ics.ObjectStatus {
	if s == event.StatusCancelled {
		return ics.ObjectStatusCancelled
	}
	return ics.ObjectStatusConfirmed
}

// ParseICS reads an iCalendar stream and returns its VEVENTs as create
// payloads. A stream that does not parse as a calendar fails as a whole;
// individual VEVENTs without a usable start are skipped.
func ParseICS(r io.Reader) ([]event.EventCreate, error) {
	cal, err := ics.ParseCalendar(r)
	if err != nil {
		return nil, fmt.Errorf("malformed calendar: %w", err)
	}

	events := cal.Events()
	creates := make([]event.EventCreate, 0, len(events))
	for _, ve := range events {
		create, err := createFromVEvent(ve)
		if err != nil {
			log.Warnf("skipping calendar entry: %v", err)
			continue
		}
		creates = append(creates, create)
	}
	return creates, nil
}

func createFromVEvent(ve *ics.VEvent) (event.EventCreate, error) {
	var create event.EventCreate

	if p := ve.GetProperty(ics.ComponentPropertySummary); p != nil {
		create.Title = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyDescription); p != nil {
		create.Description = p.Value
	}
	if p := ve.GetProperty(ics.ComponentPropertyLocation); p != nil {
		create.Location = p.Value
	}

	create.AllDay = isAllDay(ve)

	start, err := eventStart(ve, create.AllDay)
	if err != nil {
		return create, fmt.Errorf("%q has no usable start: %w", create.Title, err)
	}
	create.StartTime = start
	create.EndTime = eventEnd(ve, create.AllDay, start)

	if p := ve.GetProperty(ics.ComponentPropertyStatus); p != nil &&
		strings.EqualFold(p.Value, string(ics.ObjectStatusCancelled)) {
		create.Status = event.StatusCancelled
	}

	if p := ve.GetProperty(ics.ComponentPropertyRrule); p != nil {
		applyRRule(p.Value, &create)
	}

	create.Normalize()
	return create, nil
}

// isAllDay reports whether DTSTART carries a date without a time, either via
// an explicit VALUE=DATE parameter or by its form.
func isAllDay(ve *ics.VEvent) bool {
	p := ve.GetProperty(ics.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if values, ok := p.ICalParameters["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
		return true
	}
	return !strings.Contains(p.Value, "T")
}

func eventStart(ve *ics.VEvent, allDay bool) (time.Time, error) {
	if allDay {
		return ve.GetAllDayStartAt()
	}
	return ve.GetStartAt()
}

// eventEnd falls back to a one-day slot for all-day entries and a one-hour
// slot for timed ones when DTEND is absent.
func eventEnd(ve *ics.VEvent, allDay bool, start time.Time) time.Time {
	if allDay {
		if end, err := ve.GetAllDayEndAt(); err == nil && !end.IsZero() {
			return end
		}
		return start.AddDate(0, 0, 1)
	}
	if end, err := ve.GetEndAt(); err == nil && !end.IsZero() {
		return end
	}
	return start.Add(time.Hour)
}

// applyRRule maps the calendar frequencies onto recurrence fields. Rules the
// event model cannot express (sub-daily, by-day sets) import as single
// events.
func applyRRule(raw string, create *event.EventCreate) {
	opt, err := rrule.StrToROption(raw)
	if err != nil {
		log.Warnf("ignoring unparseable recurrence rule %q: %v", raw, err)
		return
	}

	switch opt.Freq {
	case rrule.DAILY:
		create.RecurrenceType = event.RecurrenceDaily
	case rrule.WEEKLY:
		create.RecurrenceType = event.RecurrenceWeekly
	case rrule.MONTHLY:
		create.RecurrenceType = event.RecurrenceMonthly
	case rrule.YEARLY:
		create.RecurrenceType = event.RecurrenceYearly
	default:
		return
	}

	if opt.Interval > 1 {
		interval := opt.Interval
		create.RecurrenceInterval = &interval
	}
	if opt.Count > 0 {
		count := opt.Count
		create.RecurrenceCount = &count
	}
	if !opt.Until.IsZero() {
		until := opt.Until
		create.RecurrenceEndDate = &until
	}
}
