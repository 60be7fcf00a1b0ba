package telemetry

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "orders"

// Metrics holds the Prometheus collectors of the service.
// Safe for concurrent use.
type Metrics struct {
	registry *prometheus.Registry

	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
	importRuns       *prometheus.CounterVec
	importDuration   prometheus.Histogram
	importGoods      prometheus.Counter
	importQueueDepth prometheus.Gauge
	basketLinesAdded prometheus.Counter
	ordersPlaced     prometheus.Counter
	orderTransitions *prometheus.CounterVec
}

// NewMetrics registers all collectors on a dedicated registry
func NewMetrics() *Metrics {
	m := &Metrics{registry: prometheus.NewRegistry()}

	m.httpRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of handled HTTP requests.",
	}, []string{"method", "route", "status"})

	m.httpDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Duration of HTTP requests in seconds.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})

	m.importRuns = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "runs_total",
		Help:      "Catalog import runs by outcome.",
	}, []string{"outcome"})

	m.importDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "duration_seconds",
		Help:      "Duration of catalog import runs from fetch to commit.",
		Buckets:   []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
	})

	m.importGoods = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "goods_total",
		Help:      "Product variants written by successful imports.",
	})

	m.importQueueDepth = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Subsystem: "import",
		Name:      "queue_depth",
		Help:      "Import jobs waiting for a worker.",
	})

	m.basketLinesAdded = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "basket",
		Name:      "lines_added_total",
		Help:      "Basket lines created.",
	})

	m.ordersPlaced = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "placed_total",
		Help:      "Baskets turned into new orders.",
	})

	m.orderTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Subsystem: "orders",
		Name:      "transitions_total",
		Help:      "Administrative order state transitions by target state.",
	}, []string{"to"})

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequests,
		m.httpDuration,
		m.importRuns,
		m.importDuration,
		m.importGoods,
		m.importQueueDepth,
		m.basketLinesAdded,
		m.ordersPlaced,
		m.orderTransitions,
	)
	return m
}

// Handler serves the registry in the Prometheus text format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry exposes the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTP records one finished request. route is the matched pattern, not the raw path.
func (m *Metrics) ObserveHTTP(method, route string, status int, d time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	m.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// ImportFinished records a finished import run
func (m *Metrics) ImportFinished(outcome string, goods int, d time.Duration) {
	m.importRuns.WithLabelValues(outcome).Inc()
	m.importDuration.Observe(d.Seconds())
	if goods > 0 {
		m.importGoods.Add(float64(goods))
	}
}

// ImportQueueDepth sets the number of waiting import jobs
func (m *Metrics) ImportQueueDepth(n int) {
	m.importQueueDepth.Set(float64(n))
}

// BasketLinesAdded counts created basket lines
func (m *Metrics) BasketLinesAdded(n int) {
	if n > 0 {
		m.basketLinesAdded.Add(float64(n))
	}
}

// OrderPlaced counts a placed order
func (m *Metrics) OrderPlaced() {
	m.ordersPlaced.Inc()
}

// OrderTransitioned counts an administrative transition
func (m *Metrics) OrderTransitioned(to string) {
	m.orderTransitions.WithLabelValues(to).Inc()
}
