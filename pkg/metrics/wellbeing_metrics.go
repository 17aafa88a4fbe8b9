// Package metrics exposes Prometheus collectors for the analysis pipeline.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "wellbeing"

// Collector owns a private registry and the pipeline's metric vectors.
// A nil *Collector is valid and records nothing.
type Collector struct {
	registry *prometheus.Registry

	MessagesProcessed   *prometheus.CounterVec
	ScopeOverrides      *prometheus.CounterVec
	GatewayFailures     *prometheus.CounterVec
	GatewayDuration     *prometheus.HistogramVec
	ViolentWords        prometheus.Counter
	ThemeIncrements     *prometheus.CounterVec
	StatsResets         prometheus.Counter
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewCollector creates a Collector with its own Prometheus registry.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	c := &Collector{
		registry: reg,
		MessagesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "messages_processed_total",
			Help:      "Messages analyzed, by final scope decision",
		}, []string{"scope"}),
		ScopeOverrides: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "scope_overrides_total",
			Help:      "Reconciler overrides applied to the model decision, by rule",
		}, []string{"rule"}),
		GatewayFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_failures_total",
			Help:      "Language model call failures, by stage",
		}, []string{"stage"}),
		GatewayDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_duration_seconds",
			Help:      "Duration of language model calls in seconds",
			Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 16, 32},
		}, []string{"stage"}),
		ViolentWords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "violent_words_recorded_total",
			Help:      "Violent word occurrences persisted",
		}),
		ThemeIncrements: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "theme_increments_total",
			Help:      "Employee theme counter increments, by theme",
		}, []string{"theme"}),
		StatsResets: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stats_resets_total",
			Help:      "Administrative statistics resets",
		}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "path", "status_code"}),
		HTTPRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path"}),
	}

	reg.MustRegister(
		c.MessagesProcessed,
		c.ScopeOverrides,
		c.GatewayFailures,
		c.GatewayDuration,
		c.ViolentWords,
		c.ThemeIncrements,
		c.StatsResets,
		c.HTTPRequestsTotal,
		c.HTTPRequestDuration,
	)

	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler returns an http.Handler serving the registry in exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// RecordMessage counts an analyzed message under its final scope decision.
func (c *Collector) RecordMessage(scopeFlag bool) {
	if c == nil {
		return
	}
	scope := "in_scope"
	if scopeFlag {
		scope = "out_of_scope"
	}
	c.MessagesProcessed.WithLabelValues(scope).Inc()
}

// RecordOverride counts a reconciler rule that changed the model output.
func (c *Collector) RecordOverride(rule string) {
	if c == nil {
		return
	}
	c.ScopeOverrides.WithLabelValues(rule).Inc()
}

// RecordGatewayCall observes one model call, counting it as a failure when err != nil.
func (c *Collector) RecordGatewayCall(stage string, d time.Duration, err error) {
	if c == nil {
		return
	}
	c.GatewayDuration.WithLabelValues(stage).Observe(d.Seconds())
	if err != nil {
		c.GatewayFailures.WithLabelValues(stage).Inc()
	}
}

// RecordStats counts persisted violent words and theme increments.
func (c *Collector) RecordStats(violentWords int, themes []string) {
	if c == nil {
		return
	}
	c.ViolentWords.Add(float64(violentWords))
	for _, name := range themes {
		c.ThemeIncrements.WithLabelValues(name).Inc()
	}
}

// RecordReset counts an administrative reset.
func (c *Collector) RecordReset() {
	if c == nil {
		return
	}
	c.StatsResets.Inc()
}

// RecordHTTP observes a completed HTTP request.
func (c *Collector) RecordHTTP(method, path, status string, d time.Duration) {
	if c == nil {
		return
	}
	c.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.HTTPRequestDuration.WithLabelValues(method, path).Observe(d.Seconds())
}
