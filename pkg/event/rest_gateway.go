package event

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// RestGateway talks to the calendar API over HTTP.
type RestGateway struct {
	client *resty.Client
}

func NewRestGateway(baseURL string, timeout time.Duration) *RestGateway {
	c := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json").
		SetTimeout(timeout)

	return &RestGateway{client: c}
}

func (g *RestGateway) ListEvents(ctx context.Context, filter EventFilter, page Page) (*EventPage, error) {
	var out EventPage
	err := g.execute(ctx, "list_events", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParamsFromValues(filter.QueryValues(page)).Get("/events")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) GetEvent(ctx context.Context, id string) (*EventWithReminders, error) {
	var out EventWithReminders
	err := g.execute(ctx, "get_event", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/events/" + id)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) CreateEvent(ctx context.Context, create EventCreate) (*Event, error) {
	var out Event
	err := g.execute(ctx, "create_event", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(&create).Post("/events")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) UpdateEvent(ctx context.Context, id string, update EventUpdate) (*Event, error) {
	var out Event
	err := g.execute(ctx, "update_event", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(&update).Put("/events/" + id)
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) DeleteEvent(ctx context.Context, id string) error {
	return g.execute(ctx, "delete_event", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/events/" + id)
	}, nil)
}

func (g *RestGateway) CheckConflicts(ctx context.Context, check ConflictCheck) (*ConflictResult, error) {
	var out ConflictResult
	err := g.execute(ctx, "check_conflicts", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(&check).Post("/events/conflicts")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) MonthEvents(ctx context.Context, year int, month int) (*MonthEvents, error) {
	var out MonthEvents
	err := g.execute(ctx, "month_events", func(r *resty.Request) (*resty.Response, error) {
		return r.Get(fmt.Sprintf("/events/month/%d/%d", year, month))
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) CreateEvents(ctx context.Context, creates []EventCreate) (*BulkResult, error) {
	body := struct {
		Events []EventCreate `json:"events"`
	}{Events: creates}

	var out BulkResult
	err := g.execute(ctx, "create_events_bulk", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(&body).Post("/events/bulk")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) UpcomingEvents(ctx context.Context, limit int) ([]Event, error) {
	var out []Event
	err := g.execute(ctx, "upcoming_events", func(r *resty.Request) (*resty.Response, error) {
		return r.SetQueryParam("limit", strconv.Itoa(limit)).Get("/events/upcoming/list")
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *RestGateway) StatsByType(ctx context.Context) (*TypeStats, error) {
	var out TypeStats
	err := g.execute(ctx, "stats_by_type", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/events/stats/by-type")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) AddReminder(ctx context.Context, eventID string, create ReminderCreate) (*Reminder, error) {
	var out Reminder
	err := g.execute(ctx, "add_reminder", func(r *resty.Request) (*resty.Response, error) {
		return r.SetBody(&create).Post("/events/" + eventID + "/reminders")
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (g *RestGateway) ListReminders(ctx context.Context, eventID string) ([]Reminder, error) {
	var out []Reminder
	err := g.execute(ctx, "list_reminders", func(r *resty.Request) (*resty.Response, error) {
		return r.Get("/events/" + eventID + "/reminders")
	}, &out)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (g *RestGateway) DeleteReminder(ctx context.Context, eventID string, reminderID string) error {
	return g.execute(ctx, "delete_reminder", func(r *resty.Request) (*resty.Response, error) {
		return r.Delete("/events/" + eventID + "/reminders/" + reminderID)
	}, nil)
}

// execute runs one request, maps non-2xx responses to *APIError, and decodes
// the body into out when out is non-nil.
func (g *RestGateway) execute(ctx context.Context, operation string, send func(r *resty.Request) (*resty.Response, error), out any) error {
	apiRequestsTotal.WithLabelValues(operation).Inc()

	resp, err := send(g.client.R().SetContext(ctx))
	if err != nil {
		apiRequestFailuresTotal.WithLabelValues(operation).Inc()
		return fmt.Errorf("%s: %w", operation, err)
	}
	if resp.StatusCode() < 200 || resp.StatusCode() >= 300 {
		apiRequestFailuresTotal.WithLabelValues(operation).Inc()
		return apiErrorFrom(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		apiRequestFailuresTotal.WithLabelValues(operation).Inc()
		return fmt.Errorf("%s: decode response: %w", operation, err)
	}
	return nil
}

func apiErrorFrom(resp *resty.Response) error {
	body := struct {
		Detail string `json:"detail"`
	}{}
	_ = json.Unmarshal(resp.Body(), &body)
	if body.Detail == "" {
		body.Detail = strings.TrimSpace(resp.String())
	}
	return &APIError{StatusCode: resp.StatusCode(), Detail: body.Detail}
}
