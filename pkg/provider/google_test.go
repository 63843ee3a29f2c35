package provider

import (
	"testing"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gcal "google.golang.org/api/calendar/v3"
)

func TestGoogleEventToEvent(t *testing.T) {
	t.Run("timed item maps dateTime fields", func(t *testing.T) {
		item := &gcal.Event{
			Id:          "g1",
			Summary:     "Planning",
			Description: "quarterly planning",
			Location:    "Room 2",
			Status:      "confirmed",
			Created:     "2025-06-01T08:00:00Z",
			Updated:     "2025-06-02T08:00:00Z",
			Start:       &gcal.EventDateTime{DateTime: "2025-06-11T09:00:00Z"},
			End:         &gcal.EventDateTime{DateTime: "2025-06-11T10:30:00Z"},
		}

		e, err := googleEventToEvent(item)

		require.NoError(t, err)
		assert.Equal(t, "g1", e.ID)
		assert.Equal(t, "Planning", e.Title)
		assert.Equal(t, "quarterly planning", e.Description)
		assert.Equal(t, "Room 2", e.Location)
		assert.Equal(t, time.Date(2025, time.June, 11, 9, 0, 0, 0, time.UTC), e.StartTime)
		assert.Equal(t, time.Date(2025, time.June, 11, 10, 30, 0, 0, time.UTC), e.EndTime)
		assert.False(t, e.AllDay)
		assert.Equal(t, event.TypePersonal, e.Type)
		assert.Equal(t, event.StatusScheduled, e.Status)
		assert.Equal(t, event.RecurrenceNone, e.RecurrenceType)
		assert.Equal(t, time.Date(2025, time.June, 1, 8, 0, 0, 0, time.UTC), e.CreatedAt)
	})

	t.Run("all-day item maps date fields", func(t *testing.T) {
		item := &gcal.Event{
			Id:      "g2",
			Summary: "Conference",
			Start:   &gcal.EventDateTime{Date: "2025-06-11"},
			End:     &gcal.EventDateTime{Date: "2025-06-12"},
		}

		e, err := googleEventToEvent(item)

		require.NoError(t, err)
		assert.True(t, e.AllDay)
		assert.Equal(t, time.Date(2025, time.June, 11, 0, 0, 0, 0, time.UTC), e.StartTime)
		assert.Equal(t, time.Date(2025, time.June, 12, 0, 0, 0, 0, time.UTC), e.EndTime)
	})

	t.Run("cancelled status carries over", func(t *testing.T) {
		item := &gcal.Event{
			Id:     "g3",
			Status: "cancelled",
			Start:  &gcal.EventDateTime{DateTime: "2025-06-11T09:00:00Z"},
			End:    &gcal.EventDateTime{DateTime: "2025-06-11T10:00:00Z"},
		}

		e, err := googleEventToEvent(item)

		require.NoError(t, err)
		assert.Equal(t, event.StatusCancelled, e.Status)
	})

	t.Run("item without start or end is rejected", func(t *testing.T) {
		_, err := googleEventToEvent(&gcal.Event{Id: "g4"})
		assert.Error(t, err)
	})

	t.Run("unparseable time is rejected", func(t *testing.T) {
		item := &gcal.Event{
			Id:    "g5",
			Start: &gcal.EventDateTime{DateTime: "today at nine"},
			End:   &gcal.EventDateTime{DateTime: "2025-06-11T10:00:00Z"},
		}
		_, err := googleEventToEvent(item)
		assert.Error(t, err)
	})
}

func TestGoogleEventsToEvents(t *testing.T) {
	items := []*gcal.Event{
		{
			Id:    "ok",
			Start: &gcal.EventDateTime{DateTime: "2025-06-11T09:00:00Z"},
			End:   &gcal.EventDateTime{DateTime: "2025-06-11T10:00:00Z"},
		},
		{Id: "broken"},
		{
			Id:    "ok-2",
			Start: &gcal.EventDateTime{Date: "2025-06-12"},
			End:   &gcal.EventDateTime{Date: "2025-06-13"},
		},
	}

	events := googleEventsToEvents(items)

	require.Len(t, events, 2)
	assert.Equal(t, "ok", events[0].ID)
	assert.Equal(t, "ok-2", events[1].ID)
}
