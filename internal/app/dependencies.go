package app

import (
	"context"
	"time"

	"github.com/T9ner/echo-sub000/internal/config"
	"github.com/T9ner/echo-sub000/internal/event_bus"
	"github.com/T9ner/echo-sub000/internal/utils"
	"github.com/T9ner/echo-sub000/pkg/cache"
	"github.com/T9ner/echo-sub000/pkg/calendar"
	"github.com/T9ner/echo-sub000/pkg/conflict"
	"github.com/T9ner/echo-sub000/pkg/event"
	"github.com/T9ner/echo-sub000/pkg/export"
	"github.com/T9ner/echo-sub000/pkg/provider"
	"github.com/T9ner/echo-sub000/pkg/reminder"
	"golang.org/x/oauth2"
)

// Dependencies holds all services wired for the application.
type Dependencies struct {
	Clock utils.Clock
	Bus   *event_bus.EventBus
	Store cache.Store

	Gateway      event.Gateway
	EventService event.EventService

	Controller *calendar.Controller
	Scheduler  *reminder.Scheduler
	Importer   *export.Importer

	// Feed and Syncer stay nil unless an external provider is configured.
	Feed   provider.Feed
	Syncer *provider.Syncer

	Poller *calendar.Poller
}

// BuildDependencies initializes and wires all application services. The token
// source carries provider credentials obtained by the embedding application;
// it may be nil when the provider is disabled.
func BuildDependencies(ctx context.Context, cfg config.Application, tokenSource oauth2.TokenSource) (*Dependencies, error) {
	deps := &Dependencies{}

	deps.Clock = &utils.SystemClock{}
	deps.Bus = event_bus.NewEventBus()
	deps.Store = cache.NewMemoryStore(cfg.Cache.EventsTTL, deps.Clock)

	deps.Gateway = event.NewRestGateway(cfg.API.BaseURL, cfg.API.Timeout)
	deps.EventService = event.NewEventService(deps.Gateway, deps.Store, deps.Bus, cfg.Cache.EventsTTL, cfg.Cache.AnalyticsTTL)

	deps.Controller = calendar.NewController(deps.EventService, deps.Bus, deps.Clock)
	deps.Scheduler = reminder.NewScheduler(deps.Gateway, deps.Clock)
	deps.Importer = export.NewImporter(deps.EventService)

	var providerSync calendar.ProviderSync
	if cfg.Google.Enabled && tokenSource != nil {
		feed, err := provider.NewGoogleFeed(ctx, tokenSource)
		if err != nil {
			return nil, err
		}
		deps.Feed = feed
		deps.Syncer = provider.NewSyncer(feed, deps.Bus, deps.Clock, cfg.Google.CalendarId, deps.Controller.VisibleRange)
		providerSync = deps.Syncer
	}

	deps.Poller = calendar.NewPoller(deps.Controller, providerSync, cfg.Polling.EventsInterval, cfg.Polling.ProviderInterval)

	return deps, nil
}

// ConflictChecker builds a debounced checker probing through the event
// service. Each interactive surface owns its checker and result callback.
func (d *Dependencies) ConflictChecker(delay time.Duration, onResult func(conflict.Result)) *conflict.Checker {
	return conflict.NewChecker(d.EventService.CheckConflicts, delay, onResult)
}
