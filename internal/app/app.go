package app

import (
	"context"

	"github.com/T9ner/echo-sub000/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Application wires configuration, services, and the poller lifecycle.
type Application struct {
	cfg  config.Application
	deps *Dependencies
}

// NewApplication loads configuration and builds all dependencies, ready to
// Run(). tokenSource may be nil when no external provider is configured.
func NewApplication(ctx context.Context, configPath string, tokenSource oauth2.TokenSource) (*Application, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	deps, err := BuildDependencies(ctx, cfg, tokenSource)
	if err != nil {
		return nil, err
	}

	return &Application{cfg: cfg, deps: deps}, nil
}

func (a *Application) Config() config.Application {
	return a.cfg
}

func (a *Application) Dependencies() *Dependencies {
	return a.deps
}

// Run starts the background pollers and blocks until ctx is cancelled, then
// waits for running jobs to finish.
func (a *Application) Run(ctx context.Context) error {
	if err := a.deps.Poller.Start(); err != nil {
		return err
	}
	log.Infof("calendar client started, API at %s", a.cfg.API.BaseURL)

	<-ctx.Done()

	log.Info("shutting down")
	a.deps.Poller.Stop()
	return nil
}
