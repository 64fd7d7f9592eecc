// Package metrics registers the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Calculations counts EMI and schedule computations by outcome.
	Calculations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_schedule_calculations_total",
			Help: "EMI and amortization schedule computations.",
		},
		[]string{"operation", "status"},
	)

	// HTTPRequests counts handled requests by route and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_schedule_http_requests_total",
			Help: "HTTP requests handled by route and status code.",
		},
		[]string{"route", "status"},
	)

	// ExchangeFetches counts exchange rate lookups by source (cache, upstream).
	ExchangeFetches = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "loan_schedule_exchange_fetches_total",
			Help: "Exchange rate lookups by source and outcome.",
		},
		[]string{"source", "status"},
	)
)
