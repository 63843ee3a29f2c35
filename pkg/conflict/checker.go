package conflict

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/T9ner/echo-sub000/pkg/event"
	log "github.com/sirupsen/logrus"
)

// DefaultDebounce is how long the candidate interval must stay unchanged
// before a probe is issued.
const DefaultDebounce = 500 * time.Millisecond

// ProbeFunc asks the backing store whether a candidate interval conflicts.
type ProbeFunc func(ctx context.Context, check event.ConflictCheck) (*event.ConflictResult, error)

// Result is one delivered probe outcome. Token orders results: the checker
// only delivers results for the most recently issued probe.
type Result struct {
	Token  uint64
	Check  event.ConflictCheck
	Result *event.ConflictResult
	Err    error
}

// Checker debounces interactive conflict probes. Each Check call resets the
// timer, so while the user keeps editing a time field no probe is issued;
// only the final candidate fires after the debounce delay. Every fired probe
// carries a monotonically increasing token and a result arriving for a token
// older than the latest fired one is dropped instead of overwriting newer
// state.
type Checker struct {
	probe    ProbeFunc
	delay    time.Duration
	onResult func(Result)

	seq atomic.Uint64

	mu      sync.Mutex
	timer   *time.Timer
	pending event.ConflictCheck
	closed  bool
}

func NewChecker(probe ProbeFunc, delay time.Duration, onResult func(Result)) *Checker {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Checker{
		probe:    probe,
		delay:    delay,
		onResult: onResult,
	}
}

// Check schedules a probe for the candidate after the debounce delay,
// replacing any probe still waiting to fire.
func (c *Checker) Check(ctx context.Context, check event.ConflictCheck) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.pending = check
	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.delay, func() {
		c.fire(ctx)
	})
}

// Close stops any pending probe. Results of probes already in flight are
// still delivered.
func (c *Checker) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}
}

func (c *Checker) fire(ctx context.Context) {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	check := c.pending
	c.mu.Unlock()

	token := c.seq.Add(1)

	result, err := c.probe(ctx, check)
	if token != c.seq.Load() {
		log.Debugf("dropping stale conflict result (token %d, latest %d)", token, c.seq.Load())
		return
	}
	if c.onResult != nil {
		c.onResult(Result{Token: token, Check: check, Result: result, Err: err})
	}
}
