package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type schedulerFixture struct {
	clock     *utils.MockClock
	gateway   *event.StubGateway
	scheduler *Scheduler
}

func newSchedulerFixture(t *testing.T) *schedulerFixture {
	t.Helper()
	clock := &utils.MockClock{FixedNow: time.Date(2025, time.June, 2, 8, 0, 0, 0, time.UTC)}
	gateway := event.NewStubGateway(clock)
	return &schedulerFixture{
		clock:     clock,
		gateway:   gateway,
		scheduler: NewScheduler(gateway, clock),
	}
}

func (f *schedulerFixture) seedEvent(id string, start time.Time) {
	f.gateway.Seed(event.Event{
		ID:        id,
		Title:     id,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Type:      event.TypePersonal,
		Status:    event.StatusScheduled,
	})
}

func TestSchedulerAdd(t *testing.T) {
	ctx := context.Background()

	t.Run("stores a reminder with the default method", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(time.Hour))

		created, err := f.scheduler.Add(ctx, "e1", event.ReminderCreate{MinutesBefore: 15})
		require.NoError(t, err)
		assert.Equal(t, "e1", created.EventID)
		assert.Equal(t, 15, created.MinutesBefore)
		assert.Equal(t, event.MethodNotification, created.Method)
	})

	t.Run("rejects a lead time beyond one week", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(time.Hour))

		_, err := f.scheduler.Add(ctx, "e1", event.ReminderCreate{MinutesBefore: 10081})
		assert.True(t, event.IsValidation(err))

		reminders, err := f.scheduler.List(ctx, "e1")
		require.NoError(t, err)
		assert.Empty(t, reminders)
	})

	t.Run("reports a missing event", func(t *testing.T) {
		f := newSchedulerFixture(t)

		_, err := f.scheduler.Add(ctx, "ghost", event.ReminderCreate{MinutesBefore: 15})
		assert.True(t, event.IsNotFound(err))
	})
}

func TestSchedulerListAndRemove(t *testing.T) {
	ctx := context.Background()

	t.Run("lists reminders ascending by lead time", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(24*time.Hour))

		for _, minutes := range []int{60, 5, 1440} {
			_, err := f.scheduler.Add(ctx, "e1", event.ReminderCreate{MinutesBefore: minutes})
			require.NoError(t, err)
		}

		reminders, err := f.scheduler.List(ctx, "e1")
		require.NoError(t, err)
		require.Len(t, reminders, 3)
		assert.Equal(t, 5, reminders[0].MinutesBefore)
		assert.Equal(t, 60, reminders[1].MinutesBefore)
		assert.Equal(t, 1440, reminders[2].MinutesBefore)
	})

	t.Run("remove deletes a single reminder", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(24*time.Hour))

		keep, err := f.scheduler.Add(ctx, "e1", event.ReminderCreate{MinutesBefore: 5})
		require.NoError(t, err)
		drop, err := f.scheduler.Add(ctx, "e1", event.ReminderCreate{MinutesBefore: 60})
		require.NoError(t, err)

		require.NoError(t, f.scheduler.Remove(ctx, "e1", drop.ID))

		reminders, err := f.scheduler.List(ctx, "e1")
		require.NoError(t, err)
		require.Len(t, reminders, 1)
		assert.Equal(t, keep.ID, reminders[0].ID)
	})

	t.Run("removing an unknown reminder reports not found", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(24*time.Hour))

		err := f.scheduler.Remove(ctx, "e1", "ghost")
		assert.True(t, event.IsNotFound(err))
	})
}

func TestSchedulerSuggestFor(t *testing.T) {
	ctx := context.Background()

	t.Run("suggests by time until the event", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(90*time.Minute))

		suggestions, err := f.scheduler.SuggestFor(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, []int{5, 15}, suggestions)
	})

	t.Run("existing reminders shrink the suggestions", func(t *testing.T) {
		f := newSchedulerFixture(t)
		f.seedEvent("e1", f.clock.Now().Add(90*time.Minute))
		_, err := f.scheduler.Add(ctx, "e1", event.ReminderCreate{MinutesBefore: 5})
		require.NoError(t, err)

		suggestions, err := f.scheduler.SuggestFor(ctx, "e1")
		require.NoError(t, err)
		assert.Equal(t, []int{15}, suggestions)
	})

	t.Run("reports a missing event", func(t *testing.T) {
		f := newSchedulerFixture(t)

		_, err := f.scheduler.SuggestFor(ctx, "ghost")
		assert.True(t, event.IsNotFound(err))
	})
}
