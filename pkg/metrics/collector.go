package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/getmockd/recordsd/pkg/loader"
)

// Collector holds the Prometheus metrics of one process.
type Collector struct {
	registry *prometheus.Registry

	httpRequests *prometheus.CounterVec
	httpDuration *prometheus.HistogramVec

	queryResults  *prometheus.HistogramVec
	queryDuration *prometheus.HistogramVec
	queryRejected *prometheus.CounterVec

	loaderPrepares    *prometheus.CounterVec
	loaderTransitions *prometheus.CounterVec
	loaderDiscards    *prometheus.CounterVec

	fetchRequests *prometheus.CounterVec
	fetchDuration *prometheus.HistogramVec
	cacheLookups  *prometheus.CounterVec
	breakerState  *prometheus.GaugeVec
}

// New creates a Collector on a fresh registry. Go runtime and process
// collectors are registered alongside.
func New(namespace string) *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"server", "method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"server", "method", "route"}),
		queryResults: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_results",
			Help:      "Number of records returned per collection list",
			Buckets:   []float64{0, 1, 2, 5, 10, 50, 100},
		}, []string{"collection"}),
		queryDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "query_duration_seconds",
			Help:      "Collection list duration in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}, []string{"collection"}),
		queryRejected: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "query_rejected_total",
			Help:      "Collection requests rejected for their method",
		}, []string{"collection", "method"}),
		loaderPrepares: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_prepares_total",
			Help:      "Page data preparations by execution context and resulting state",
		}, []string{"collection", "context", "state"}),
		loaderTransitions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_transitions_total",
			Help:      "View state transitions",
		}, []string{"collection", "from", "to"}),
		loaderDiscards: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "loader_discards_total",
			Help:      "Fetch results discarded because their view had unmounted",
		}, []string{"collection"}),
		fetchRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_requests_total",
			Help:      "Upstream collection requests by outcome",
		}, []string{"collection", "outcome"}),
		fetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "fetch_duration_seconds",
			Help:      "Upstream collection request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"collection"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "fetch_cache_lookups_total",
			Help:      "Response cache lookups by result",
		}, []string{"collection", "result"}),
		breakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "fetch_breaker_state",
			Help:      "Circuit breaker state per collection: 0 closed, 1 half-open, 2 open",
		}, []string{"collection"}),
	}

	c.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.httpRequests,
		c.httpDuration,
		c.queryResults,
		c.queryDuration,
		c.queryRejected,
		c.loaderPrepares,
		c.loaderTransitions,
		c.loaderDiscards,
		c.fetchRequests,
		c.fetchDuration,
		c.cacheLookups,
		c.breakerState,
	)
	return c
}

// Registry returns the underlying registry.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// OnList implements query.Observer.
func (c *Collector) OnList(collection string, count int, duration time.Duration) {
	c.queryResults.WithLabelValues(collection).Observe(float64(count))
	c.queryDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

// OnRejected implements query.Observer.
func (c *Collector) OnRejected(collection, method string) {
	c.queryRejected.WithLabelValues(collection, method).Inc()
}

// OnPrepare implements loader.Observer.
func (c *Collector) OnPrepare(collection string, exec loader.ExecContext, state loader.State) {
	c.loaderPrepares.WithLabelValues(collection, exec.String(), state.String()).Inc()
}

// OnTransition implements loader.Observer.
func (c *Collector) OnTransition(collection string, from, to loader.State) {
	c.loaderTransitions.WithLabelValues(collection, from.String(), to.String()).Inc()
}

// OnDiscard implements loader.Observer.
func (c *Collector) OnDiscard(collection string) {
	c.loaderDiscards.WithLabelValues(collection).Inc()
}

// OnFetch implements fetch.Observer.
func (c *Collector) OnFetch(collection string, duration time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	c.fetchRequests.WithLabelValues(collection, outcome).Inc()
	c.fetchDuration.WithLabelValues(collection).Observe(duration.Seconds())
}

// OnCacheLookup implements fetch.Observer.
func (c *Collector) OnCacheLookup(collection string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookups.WithLabelValues(collection, result).Inc()
}

// OnBreakerStateChange implements fetch.Observer.
func (c *Collector) OnBreakerStateChange(collection, _, to string) {
	var v float64
	switch to {
	case "half-open":
		v = 1
	case "open":
		v = 2
	}
	c.breakerState.WithLabelValues(collection).Set(v)
}
