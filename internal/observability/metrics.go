// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors. All recording methods are safe to
// call on a nil *Metrics so that library callers and tests may omit them.
type Metrics struct {
	// Searches counts completed searches by status (ok, failed, superseded).
	Searches *prometheus.CounterVec

	// PagesFetched counts search result pages retrieved from the upstream API.
	PagesFetched prometheus.Counter

	// RecordsDropped counts records rejected by the year range.
	RecordsDropped prometheus.Counter

	// SearchDuration observes end-to-end search duration in seconds.
	SearchDuration prometheus.Histogram

	// Exports counts export runs by format and status.
	Exports *prometheus.CounterVec

	// Summaries counts summarization calls by status (ok, failed).
	Summaries *prometheus.CounterVec

	// ActiveSessions tracks sessions held by the HTTP server.
	ActiveSessions prometheus.Gauge
}

// NewMetrics registers collectors under namespace with reg. A nil registerer
// uses the default Prometheus registry.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	f := promauto.With(reg)

	return &Metrics{
		Searches: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "searches_total",
			Help:      "Searches run against the paper API, by status.",
		}, []string{"status"}),
		PagesFetched: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_pages_fetched_total",
			Help:      "Result pages fetched from the paper API.",
		}),
		RecordsDropped: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_records_dropped_total",
			Help:      "Records dropped for falling outside the accepted year range.",
		}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search duration in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		Exports: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exports_total",
			Help:      "Export runs, by format and status.",
		}, []string{"format", "status"}),
		Summaries: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "summaries_total",
			Help:      "Summarization calls, by status.",
		}, []string{"status"}),
		ActiveSessions: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Sessions currently held by the server.",
		}),
	}
}

// RecordSearch counts a finished search and its duration.
func (m *Metrics) RecordSearch(status string, seconds float64) {
	if m == nil {
		return
	}
	m.Searches.WithLabelValues(status).Inc()
	m.SearchDuration.Observe(seconds)
}

// RecordPage counts one fetched page and the records it dropped.
func (m *Metrics) RecordPage(dropped int) {
	if m == nil {
		return
	}
	m.PagesFetched.Inc()
	if dropped > 0 {
		m.RecordsDropped.Add(float64(dropped))
	}
}

// RecordExport counts an export run.
func (m *Metrics) RecordExport(format, status string) {
	if m == nil {
		return
	}
	m.Exports.WithLabelValues(format, status).Inc()
}

// RecordSummary counts a summarization call.
func (m *Metrics) RecordSummary(ok bool) {
	if m == nil {
		return
	}
	status := "ok"
	if !ok {
		status = "failed"
	}
	m.Summaries.WithLabelValues(status).Inc()
}

// SetActiveSessions records the number of live sessions.
func (m *Metrics) SetActiveSessions(n int) {
	if m == nil {
		return
	}
	m.ActiveSessions.Set(float64(n))
}
