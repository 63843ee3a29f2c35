package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	hitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "echo_calendar",
		Name:      "cache_hits_total",
		Help:      "Cache lookups answered from a fresh entry.",
	})

	missesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "echo_calendar",
		Name:      "cache_misses_total",
		Help:      "Cache lookups that found no entry or an expired one.",
	})

	invalidatedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "echo_calendar",
		Name:      "cache_invalidated_entries_total",
		Help:      "Entries removed by prefix invalidation.",
	})
)
