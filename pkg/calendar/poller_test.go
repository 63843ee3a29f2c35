package calendar

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingSync struct {
	mu    sync.Mutex
	calls int
}

func (c *countingSync) Sync(context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.calls++
	return nil
}

func (c *countingSync) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func TestPollerRunsScheduledJobs(t *testing.T) {
	f := newControllerFixture(t)
	syncer := &countingSync{}

	// Cron delay schedules have one-second granularity, so the test uses the
	// smallest interval it supports.
	p := NewPoller(f.controller, syncer, time.Second, time.Second)
	require.NoError(t, p.Start())
	defer p.Stop()

	assert.Eventually(t, func() bool {
		return f.gateway.ListCalls() > 0 && syncer.count() > 0
	}, 5*time.Second, 50*time.Millisecond)
}

func TestPollerWithoutProvider(t *testing.T) {
	f := newControllerFixture(t)

	p := NewPoller(f.controller, nil, time.Second, time.Second)
	require.NoError(t, p.Start())
	p.Stop()
}

func TestEveryFormatsDurations(t *testing.T) {
	assert.Equal(t, "@every 30s", every(30*time.Second))
	assert.Equal(t, "@every 5m0s", every(5*time.Minute))
}
