package metrics

import (
	"time"

	"github.com/andresuchdata/mpstock/internal/domain"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Collector records refresh and view activity of the monitoring service.
type Collector interface {
	ObserveRefresh(source string, d time.Duration, err error)
	SetSnapshot(records int, updatedAt time.Time)
	ObserveView(mp domain.Marketplace, d time.Duration, cacheHit bool)
	SetAlerts(mp domain.Marketplace, alerts int)
	ObserveHTTPRequest(method, route string, status int, d time.Duration)
}

type collector struct {
	refreshTotal     *prometheus.CounterVec
	refreshDuration  prometheus.Histogram
	snapshotRecords  prometheus.Gauge
	snapshotLoadedAt prometheus.Gauge
	viewDuration     *prometheus.HistogramVec
	viewCache        *prometheus.CounterVec
	activeAlerts     *prometheus.GaugeVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

// NewCollector registers the collectors on reg. A nil reg uses the default
// prometheus registerer.
func NewCollector(namespace string, reg prometheus.Registerer) Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	factory := promauto.With(reg)

	return &collector{
		refreshTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "snapshot_refresh_total",
				Help:      "Total number of snapshot refreshes by source and result",
			},
			[]string{"source", "result"},
		),
		refreshDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "snapshot_refresh_duration_seconds",
				Help:      "Duration of snapshot refreshes",
				Buckets:   prometheus.DefBuckets,
			},
		),
		snapshotRecords: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_records",
				Help:      "Monitoring records built from the current snapshot",
			},
		),
		snapshotLoadedAt: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "snapshot_loaded_timestamp_seconds",
				Help:      "Unix time of the last successful refresh",
			},
		),
		viewDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "view_duration_seconds",
				Help:      "Time to serve a monitoring view",
				Buckets:   []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
			[]string{"marketplace"},
		),
		viewCache: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "view_cache_total",
				Help:      "View cache lookups by result",
			},
			[]string{"result"},
		),
		activeAlerts: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "active_alerts",
				Help:      "Cluster alerts in the last computed view per marketplace",
			},
			[]string{"marketplace"},
		),
		httpRequests: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		httpDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
	}
}

func (c *collector) ObserveRefresh(source string, d time.Duration, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	c.refreshTotal.WithLabelValues(source, result).Inc()
	c.refreshDuration.Observe(d.Seconds())
}

func (c *collector) SetSnapshot(records int, updatedAt time.Time) {
	c.snapshotRecords.Set(float64(records))
	c.snapshotLoadedAt.Set(float64(updatedAt.Unix()))
}

func (c *collector) ObserveView(mp domain.Marketplace, d time.Duration, cacheHit bool) {
	result := "miss"
	if cacheHit {
		result = "hit"
	}
	c.viewCache.WithLabelValues(result).Inc()
	c.viewDuration.WithLabelValues(string(mp)).Observe(d.Seconds())
}

func (c *collector) SetAlerts(mp domain.Marketplace, alerts int) {
	c.activeAlerts.WithLabelValues(string(mp)).Set(float64(alerts))
}

func (c *collector) ObserveHTTPRequest(method, route string, status int, d time.Duration) {
	c.httpRequests.WithLabelValues(method, route, statusClass(status)).Inc()
	c.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

func statusClass(status int) string {
	switch {
	case status >= 500:
		return "5xx"
	case status >= 400:
		return "4xx"
	case status >= 300:
		return "3xx"
	}
	return "2xx"
}

type noop struct{}

// NewNoop returns a collector that records nothing.
func NewNoop() Collector {
	return noop{}
}

func (noop) ObserveRefresh(string, time.Duration, error)           {}
func (noop) SetSnapshot(int, time.Time)                            {}
func (noop) ObserveView(domain.Marketplace, time.Duration, bool)   {}
func (noop) SetAlerts(domain.Marketplace, int)                     {}
func (noop) ObserveHTTPRequest(string, string, int, time.Duration) {}
