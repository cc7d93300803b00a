// Package metrics holds Prometheus instruments that are used across the
// console.  All collectors are registered with the global registry, so
// mounting promhttp.Handler() in main.go is enough to expose them on
// /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	OracleLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_oracle_lookups_total",
			Help: "Slug existence lookups issued, by entity kind.",
		}, []string{"kind"})

	OracleFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_oracle_failures_total",
			Help: "Slug existence lookups that failed and were treated as free.",
		}, []string{"kind"})

	ResolverAttempts = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "slug_resolver_attempts",
			Help:    "Oracle probes needed to resolve a unique slug.",
			Buckets: []float64{1, 2, 3, 5, 10, 50, 100, 1000},
		})

	ValidatorChecks = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_validator_checks_total",
			Help: "Debounced live slug checks started, by entity kind.",
		}, []string{"kind"})

	ValidatorStale = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "slug_validator_stale_total",
			Help: "Live slug check results discarded because the field changed.",
		}, []string{"kind"})

	ProxyRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "proxy_requests_total",
			Help: "Pass-through proxy requests, by upstream and status class.",
		}, []string{"upstream", "class"})

	BackendSaves = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_saves_total",
			Help: "Catalog writes issued by the console, by entity and outcome.",
		}, []string{"entity", "outcome"})

	ActiveSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "console_active_sessions",
			Help: "Console sessions currently held in memory.",
		})
)

func init() {
	prometheus.MustRegister(
		OracleLookups,
		OracleFailures,
		ResolverAttempts,
		ValidatorChecks,
		ValidatorStale,
		ProxyRequests,
		BackendSaves,
		ActiveSessions,
	)
}

// StatusClass folds an HTTP status into "2xx", "4xx", ….
func StatusClass(code int) string {
	switch {
	case code >= 500:
		return "5xx"
	case code >= 400:
		return "4xx"
	case code >= 300:
		return "3xx"
	case code >= 200:
		return "2xx"
	default:
		return "1xx"
	}
}
