package calendar

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

// pollTimeout bounds a single poll run so a stuck request cannot pile up
// behind the next scheduled one.
const pollTimeout = 25 * time.Second

// ProviderSync is the part of the provider syncer the poller drives.
type ProviderSync interface {
	Sync(ctx context.Context) error
}

// Poller periodically reloads the controller's visible window and, when an
// external feed is configured, re-syncs it. Intervals come from config.
type Poller struct {
	controller    *Controller
	provider      ProviderSync
	eventsEvery   time.Duration
	providerEvery time.Duration
	cron          *cron.Cron
}

// NewPoller schedules an event refresh every eventsEvery and, when provider
// is non-nil, a provider sync every providerEvery.
func NewPoller(controller *Controller, provider ProviderSync, eventsEvery, providerEvery time.Duration) *Poller {
	return &Poller{
		controller:    controller,
		provider:      provider,
		eventsEvery:   eventsEvery,
		providerEvery: providerEvery,
		cron:          cron.New(),
	}
}

// Start registers the polling jobs and starts the scheduler. The first run of
// each job happens one interval after Start.
func (p *Poller) Start() error {
	if _, err := p.cron.AddFunc(every(p.eventsEvery), p.refreshEvents); err != nil {
		return fmt.Errorf("failed to schedule event refresh: %w", err)
	}
	if p.provider != nil {
		if _, err := p.cron.AddFunc(every(p.providerEvery), p.syncProvider); err != nil {
			return fmt.Errorf("failed to schedule provider sync: %w", err)
		}
	}
	p.cron.Start()
	log.Debugf("poller started: events every %s, provider every %s", p.eventsEvery, p.providerEvery)
	return nil
}

// Stop stops scheduling and waits for any running job to finish.
func (p *Poller) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Poller) refreshEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	if _, err := p.controller.Refresh(ctx); err != nil {
		log.Warnf("background event refresh failed: %v", err)
	}
}

func (p *Poller) syncProvider() {
	ctx, cancel := context.WithTimeout(context.Background(), pollTimeout)
	defer cancel()
	if err := p.provider.Sync(ctx); err != nil {
		log.Warnf("provider sync failed: %v", err)
	}
}

func every(d time.Duration) string {
	return fmt.Sprintf("@every %s", d)
}
