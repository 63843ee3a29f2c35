package event

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAPI routes requests the way the calendar API does and records the last
// request for assertions.
type fakeAPI struct {
	router *mux.Router

	lastPath   string
	lastMethod string
	lastQuery  map[string]string
	lastBody   []byte
}

func newFakeAPI() *fakeAPI {
	f := &fakeAPI{router: mux.NewRouter()}
	return f
}

func (f *fakeAPI) handle(method, path string, status int, response any) {
	f.router.HandleFunc(path, func(w http.ResponseWriter, r *http.Request) {
		f.lastPath = r.URL.Path
		f.lastMethod = r.Method
		f.lastQuery = map[string]string{}
		for key, values := range r.URL.Query() {
			f.lastQuery[key] = values[0]
		}
		if r.Body != nil {
			f.lastBody, _ = io.ReadAll(r.Body)
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		if response != nil {
			_ = json.NewEncoder(w).Encode(response)
		}
	}).Methods(method)
}

func (f *fakeAPI) start(t *testing.T) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(f.router)
	t.Cleanup(server.Close)
	return server
}

func TestRestGatewayListEvents(t *testing.T) {
	start := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	t.Run("sends filters as query parameters and decodes the page", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events", http.StatusOK, EventPage{
			Events: []Event{{ID: "e1", Title: "Standup", StartTime: start, EndTime: start.Add(time.Hour)}},
			Total:  1, Page: 1, PerPage: 50,
		})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		eventType := TypeMeeting
		endDate := start.AddDate(0, 0, 7)
		page, err := gateway.ListEvents(context.Background(), EventFilter{
			StartDate: &start,
			EndDate:   &endDate,
			Type:      &eventType,
			Search:    "stand",
		}, Page{Page: 2, PerPage: 25})

		require.NoError(t, err)
		assert.Equal(t, 1, page.Total)
		assert.Equal(t, "Standup", page.Events[0].Title)

		assert.Equal(t, "/events", api.lastPath)
		assert.Equal(t, start.Format(time.RFC3339), api.lastQuery["start_date"])
		assert.Equal(t, endDate.Format(time.RFC3339), api.lastQuery["end_date"])
		assert.Equal(t, "meeting", api.lastQuery["event_type"])
		assert.Equal(t, "stand", api.lastQuery["search"])
		assert.Equal(t, "2", api.lastQuery["page"])
		assert.Equal(t, "25", api.lastQuery["per_page"])
	})

	t.Run("maps a 500 with detail to an APIError", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events", http.StatusInternalServerError, map[string]string{"detail": "database unavailable"})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		_, err := gateway.ListEvents(context.Background(), EventFilter{}, Page{})
		require.Error(t, err)

		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusInternalServerError, apiErr.StatusCode)
		assert.Equal(t, "database unavailable", apiErr.Detail)
		assert.False(t, IsTransient(err))
	})

	t.Run("reports malformed response bodies", func(t *testing.T) {
		router := mux.NewRouter()
		router.HandleFunc("/events", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{not json"))
		})
		server := httptest.NewServer(router)
		defer server.Close()
		gateway := NewRestGateway(server.URL, time.Second)

		_, err := gateway.ListEvents(context.Background(), EventFilter{}, Page{})
		assert.ErrorContains(t, err, "decode response")
	})
}

func TestRestGatewayWrites(t *testing.T) {
	start := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)

	t.Run("create posts the payload and returns the created event", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodPost, "/events", http.StatusCreated, Event{ID: "e1", Title: "Dentist"})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		created, err := gateway.CreateEvent(context.Background(), EventCreate{
			Title:     "Dentist",
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			Type:      TypeAppointment,
		})

		require.NoError(t, err)
		assert.Equal(t, "e1", created.ID)
		assert.Equal(t, http.MethodPost, api.lastMethod)

		var sent EventCreate
		require.NoError(t, json.Unmarshal(api.lastBody, &sent))
		assert.Equal(t, "Dentist", sent.Title)
		assert.Equal(t, TypeAppointment, sent.Type)
	})

	t.Run("update puts to the event path", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodPut, "/events/{id}", http.StatusOK, Event{ID: "e1", Title: "Moved"})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		title := "Moved"
		updated, err := gateway.UpdateEvent(context.Background(), "e1", EventUpdate{Title: &title})

		require.NoError(t, err)
		assert.Equal(t, "Moved", updated.Title)
		assert.Equal(t, "/events/e1", api.lastPath)
	})

	t.Run("delete returns nil on 204", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodDelete, "/events/{id}", http.StatusNoContent, nil)
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		require.NoError(t, gateway.DeleteEvent(context.Background(), "e1"))
		assert.Equal(t, "/events/e1", api.lastPath)
	})

	t.Run("delete of an unknown event is IsNotFound", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodDelete, "/events/{id}", http.StatusNotFound, map[string]string{"detail": "event not found"})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		err := gateway.DeleteEvent(context.Background(), "missing")
		assert.True(t, IsNotFound(err))
	})

	t.Run("bulk wraps the creates in an events envelope", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodPost, "/events/bulk", http.StatusCreated, BulkResult{TotalCreated: 2})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		result, err := gateway.CreateEvents(context.Background(), []EventCreate{
			{Title: "a", StartTime: start, EndTime: start.Add(time.Hour)},
			{Title: "b", StartTime: start, EndTime: start.Add(time.Hour)},
		})

		require.NoError(t, err)
		assert.Equal(t, 2, result.TotalCreated)

		var sent struct {
			Events []EventCreate `json:"events"`
		}
		require.NoError(t, json.Unmarshal(api.lastBody, &sent))
		assert.Len(t, sent.Events, 2)
	})
}

func TestRestGatewayQueries(t *testing.T) {
	t.Run("conflicts posts the candidate interval", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodPost, "/events/conflicts", http.StatusOK, ConflictResult{HasConflicts: true})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		excludeID := "self"
		start := time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC)
		result, err := gateway.CheckConflicts(context.Background(), ConflictCheck{
			StartTime:      start,
			EndTime:        start.Add(time.Hour),
			ExcludeEventID: &excludeID,
		})

		require.NoError(t, err)
		assert.True(t, result.HasConflicts)

		var sent ConflictCheck
		require.NoError(t, json.Unmarshal(api.lastBody, &sent))
		require.NotNil(t, sent.ExcludeEventID)
		assert.Equal(t, "self", *sent.ExcludeEventID)
	})

	t.Run("month events hits the year and month path", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events/month/{year}/{month}", http.StatusOK, MonthEvents{Year: 2025, Month: 6})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		result, err := gateway.MonthEvents(context.Background(), 2025, 6)
		require.NoError(t, err)
		assert.Equal(t, 2025, result.Year)
		assert.Equal(t, "/events/month/2025/6", api.lastPath)
	})

	t.Run("upcoming passes the limit", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events/upcoming/list", http.StatusOK, []Event{{ID: "e1"}})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		events, err := gateway.UpcomingEvents(context.Background(), 5)
		require.NoError(t, err)
		assert.Len(t, events, 1)
		assert.Equal(t, "5", api.lastQuery["limit"])
	})

	t.Run("stats by type decodes the map", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events/stats/by-type", http.StatusOK, TypeStats{
			StatsByType: map[EventType]int{TypeMeeting: 3},
			TotalEvents: 3,
		})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		stats, err := gateway.StatsByType(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 3, stats.StatsByType[TypeMeeting])
	})
}

func TestRestGatewayReminders(t *testing.T) {
	t.Run("add posts under the event path", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodPost, "/events/{id}/reminders", http.StatusCreated, Reminder{ID: "r1", EventID: "e1", MinutesBefore: 15})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		reminder, err := gateway.AddReminder(context.Background(), "e1", ReminderCreate{MinutesBefore: 15, Method: MethodEmail})
		require.NoError(t, err)
		assert.Equal(t, "r1", reminder.ID)
		assert.Equal(t, "/events/e1/reminders", api.lastPath)

		var sent ReminderCreate
		require.NoError(t, json.Unmarshal(api.lastBody, &sent))
		assert.Equal(t, 15, sent.MinutesBefore)
		assert.Equal(t, MethodEmail, sent.Method)
	})

	t.Run("list decodes the reminder slice", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events/{id}/reminders", http.StatusOK, []Reminder{
			{ID: "r1", MinutesBefore: 5},
			{ID: "r2", MinutesBefore: 60},
		})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		reminders, err := gateway.ListReminders(context.Background(), "e1")
		require.NoError(t, err)
		require.Len(t, reminders, 2)
		assert.Equal(t, 5, reminders[0].MinutesBefore)
	})

	t.Run("delete targets the reminder path", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodDelete, "/events/{id}/reminders/{reminderId}", http.StatusNoContent, nil)
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		require.NoError(t, gateway.DeleteReminder(context.Background(), "e1", "r1"))
		assert.Equal(t, "/events/e1/reminders/r1", api.lastPath)
	})
}

func TestRestGatewayTransientFailures(t *testing.T) {
	t.Run("connection failure is transient", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		server.Close() // nothing listens anymore

		gateway := NewRestGateway(server.URL, time.Second)
		_, err := gateway.ListEvents(context.Background(), EventFilter{}, Page{})

		require.Error(t, err)
		assert.True(t, IsTransient(err))
	})

	t.Run("cancelled context is not transient", func(t *testing.T) {
		api := newFakeAPI()
		api.handle(http.MethodGet, "/events", http.StatusOK, EventPage{})
		server := api.start(t)
		gateway := NewRestGateway(server.URL, time.Second)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := gateway.ListEvents(ctx, EventFilter{}, Page{})

		require.Error(t, err)
		assert.False(t, IsTransient(err))
	})
}
