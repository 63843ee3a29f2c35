package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

const dateOnly = "2006-01-02"

// GoogleFeed reads events from Google Calendar. Token acquisition happens
// outside this package; the feed only needs a ready oauth2.TokenSource.
type GoogleFeed struct {
	service *gcal.Service
}

func NewGoogleFeed(ctx context.Context, tokenSource oauth2.TokenSource) (*GoogleFeed, error) {
	service, err := gcal.NewService(ctx, option.WithTokenSource(tokenSource))
	if err != nil {
		err := fmt.Errorf("unable to create Google Calendar client: %v", err)
		log.Error(err)
		return nil, err
	}
	return &GoogleFeed{service: service}, nil
}

func (f *GoogleFeed) Calendars(ctx context.Context) ([]CalendarInfo, error) {
	calendars, err := f.service.CalendarList.List().Context(ctx).Do()
	if err != nil {
		err := fmt.Errorf("unable to retrieve calendars from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}
	items := make([]CalendarInfo, 0, len(calendars.Items))
	for _, cal := range calendars.Items {
		items = append(items, CalendarInfo{
			ID:      cal.Id,
			Summary: cal.Summary,
		})
	}
	return items, nil
}

func (f *GoogleFeed) Events(ctx context.Context, calendarID string, from time.Time, to time.Time) ([]event.Event, error) {
	googleEvents, err := f.service.Events.List(calendarID).
		TimeMin(from.Format(time.RFC3339)).
		TimeMax(to.Format(time.RFC3339)).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()

	if err != nil {
		err := fmt.Errorf("unable to retrieve events from Google Calendar: %v", err)
		log.Error(err)
		return nil, err
	}

	return googleEventsToEvents(googleEvents.Items), nil
}

func googleEventsToEvents(googleEvents []*gcal.Event) []event.Event {
	events := make([]event.Event, 0, len(googleEvents))
	for _, item := range googleEvents {
		e, err := googleEventToEvent(item)
		if err != nil {
			log.Warnf("skipping calendar item %s (%s): %v", item.Id, item.Summary, err)
			continue
		}
		events = append(events, e)
	}
	return events
}

// googleEventToEvent maps one Google Calendar item onto the wire model.
// All-day items carry a date instead of a dateTime; Google's exclusive end
// date matches the half-open interval convention directly.
func googleEventToEvent(item *gcal.Event) (event.Event, error) {
	if item.Start == nil || item.End == nil {
		return event.Event{}, fmt.Errorf("item has no start or end")
	}

	allDay := item.Start.DateTime == ""
	var startTime, endTime time.Time
	var err error
	if allDay {
		startTime, err = time.Parse(dateOnly, item.Start.Date)
		if err != nil {
			return event.Event{}, fmt.Errorf("invalid start date %q: %v", item.Start.Date, err)
		}
		endTime, err = time.Parse(dateOnly, item.End.Date)
		if err != nil {
			return event.Event{}, fmt.Errorf("invalid end date %q: %v", item.End.Date, err)
		}
	} else {
		startTime, err = time.Parse(time.RFC3339, item.Start.DateTime)
		if err != nil {
			return event.Event{}, fmt.Errorf("invalid start time %q: %v", item.Start.DateTime, err)
		}
		endTime, err = time.Parse(time.RFC3339, item.End.DateTime)
		if err != nil {
			return event.Event{}, fmt.Errorf("invalid end time %q: %v", item.End.DateTime, err)
		}
	}

	status := event.StatusScheduled
	if item.Status == "cancelled" {
		status = event.StatusCancelled
	}

	// The list call expands recurring events into single instances, so the
	// mapped event never carries a recurrence of its own.
	createdAt, _ := time.Parse(time.RFC3339, item.Created)
	updatedAt, _ := time.Parse(time.RFC3339, item.Updated)
	return event.Event{
		ID:             item.Id,
		Title:          item.Summary,
		Description:    item.Description,
		Location:       item.Location,
		StartTime:      startTime,
		EndTime:        endTime,
		AllDay:         allDay,
		Type:           event.TypePersonal,
		Status:         status,
		RecurrenceType: event.RecurrenceNone,
		CreatedAt:      createdAt,
		UpdatedAt:      updatedAt,
	}, nil
}

var _ Feed = (*GoogleFeed)(nil)
