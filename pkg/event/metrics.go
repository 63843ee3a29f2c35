package event

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	apiRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "echo_calendar",
			Name:      "api_requests_total",
			Help:      "Requests issued to the calendar API.",
		},
		[]string{"operation"},
	)

	apiRequestFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "echo_calendar",
			Name:      "api_request_failures_total",
			Help:      "Calendar API requests that returned an error.",
		},
		[]string{"operation"},
	)
)
