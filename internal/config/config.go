package config

import (
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
	log "github.com/sirupsen/logrus"
)

type Application struct {
	API     API     `koanf:"api"`
	Cache   Cache   `koanf:"cache"`
	Polling Polling `koanf:"polling"`
	Google  Google  `koanf:"google"`
}

type API struct {
	BaseURL string        `koanf:"baseurl"`
	Timeout time.Duration `koanf:"timeout"`
}

type Cache struct {
	// EventsTTL covers event range and month queries.
	EventsTTL time.Duration `koanf:"eventsttl"`
	// AnalyticsTTL covers slow-moving aggregates such as counts by type.
	AnalyticsTTL time.Duration `koanf:"analyticsttl"`
}

type Polling struct {
	EventsInterval   time.Duration `koanf:"eventsinterval"`
	ProviderInterval time.Duration `koanf:"providerinterval"`
}

type Google struct {
	Enabled    bool   `koanf:"enabled"`
	CalendarId string `koanf:"calendarid"`
}

func Load(path string) (Application, error) {
	var k = koanf.New(".")

	err := k.Load(structs.Provider(Application{
		API: API{
			BaseURL: "http://localhost:8000/api/v1",
			Timeout: 30 * time.Second,
		},
		Cache: Cache{
			EventsTTL:    5 * time.Minute,
			AnalyticsTTL: 10 * time.Minute,
		},
		Polling: Polling{
			EventsInterval:   30 * time.Second,
			ProviderInterval: 5 * time.Minute,
		},
		Google: Google{
			CalendarId: "primary",
		},
	}, "koanf"), nil)
	if err != nil {
		log.Errorf("error loading config from structs: %v", err)
		return Application{}, err
	}

	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		if os.IsNotExist(err) {
			log.Infof("Config file not found at %s, using defaults and environment variables", path)
		} else {
			log.Errorf("error loading config from YAML: %v", err)
			return Application{}, err
		}
	} else {
		log.Infof("Loaded configuration from file: %s", path)
	}

	err = k.Load(env.Provider(".", env.Opt{
		Prefix: "ECHO_",
		TransformFunc: func(k, v string) (string, any) {
			// Transform the key.
			k = strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(k, "ECHO_")), "_", ".")
			return k, v
		},
	}), nil)
	if err != nil {
		log.Errorf("error loading config from envs: %v", err)
		return Application{}, err
	}

	var app Application
	if err := k.Unmarshal("", &app); err != nil {
		return Application{}, err
	}

	return app, nil
}
