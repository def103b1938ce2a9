// Package metrics provides Prometheus metrics for tfbscan.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for tfbscan. A nil *Metrics is valid
// and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	// Search metrics
	SearchesTotal     *prometheus.CounterVec
	SearchDuration    prometheus.Histogram
	WindowsScored     prometheus.Counter
	WindowsAccepted   prometheus.Counter
	WindowsSuppressed prometheus.Counter
	DegenerateRatios  prometheus.Counter
	CacheHitsTotal    prometheus.Counter

	// Remote source metrics
	RemoteFetchesTotal *prometheus.CounterVec

	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge
}

// NewMetrics creates all metrics on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	f := promauto.With(reg)

	return &Metrics{
		Registry: reg,
		SearchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tfbscan_searches_total",
			Help: "Total number of TFBS searches",
		}, []string{"status"}),
		SearchDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tfbscan_search_duration_seconds",
			Help:    "Duration of TFBS searches in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5, 10, 30, 60},
		}),
		WindowsScored: f.NewCounter(prometheus.CounterOpts{
			Name: "tfbscan_windows_scored_total",
			Help: "Total number of candidate windows scored",
		}),
		WindowsAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "tfbscan_windows_accepted_total",
			Help: "Total number of windows accepted",
		}),
		WindowsSuppressed: f.NewCounter(prometheus.CounterOpts{
			Name: "tfbscan_windows_suppressed_total",
			Help: "Accepted candidates dropped because they repeated the previous score",
		}),
		DegenerateRatios: f.NewCounter(prometheus.CounterOpts{
			Name: "tfbscan_degenerate_ratios_total",
			Help: "Proximity ratios skipped because they were not finite",
		}),
		CacheHitsTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "tfbscan_cache_hits_total",
			Help: "Searches answered from the result cache",
		}),
		RemoteFetchesTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tfbscan_remote_fetches_total",
			Help: "Downloads from remote data sources",
		}, []string{"source", "status"}),
		HTTPRequestsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tfbscan_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "status"}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tfbscan_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"}),
		HTTPInFlight: f.NewGauge(prometheus.GaugeOpts{
			Name: "tfbscan_http_requests_in_flight",
			Help: "Number of HTTP requests currently being served",
		}),
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.Registry, promhttp.HandlerOpts{})
}

// SearchStats is what a finished search reports.
type SearchStats struct {
	Candidates int
	Accepted   int
	Suppressed int
	Degenerate int
	Cached     bool
}

// RecordSearch records a finished search.
func (m *Metrics) RecordSearch(s SearchStats, duration time.Duration, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.SearchesTotal.WithLabelValues(status).Inc()
	m.SearchDuration.Observe(duration.Seconds())
	if err != nil {
		return
	}
	if s.Cached {
		m.CacheHitsTotal.Inc()
	}
	m.WindowsScored.Add(float64(s.Candidates))
	m.WindowsAccepted.Add(float64(s.Accepted))
	m.WindowsSuppressed.Add(float64(s.Suppressed))
	m.DegenerateRatios.Add(float64(s.Degenerate))
}

// RecordFetch records one download from a remote source.
func (m *Metrics) RecordFetch(source string, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.RemoteFetchesTotal.WithLabelValues(source, status).Inc()
}

// RecordHTTPRequest records a served HTTP request.
func (m *Metrics) RecordHTTPRequest(path, status string, duration time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}
