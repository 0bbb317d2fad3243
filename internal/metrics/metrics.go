package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "homecraft",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homecraft",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "path", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "homecraft",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "path"},
	)

	ordersCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homecraft",
			Subsystem: "orders",
			Name:      "created_total",
			Help:      "Order creation attempts by outcome.",
		},
		[]string{"result"},
	)

	orderCreateDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "homecraft",
			Subsystem: "orders",
			Name:      "create_duration_seconds",
			Help:      "Duration of the order creation unit of work.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 12),
		},
	)

	statusTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "homecraft",
			Subsystem: "orders",
			Name:      "status_transitions_total",
			Help:      "Accepted order status transitions.",
		},
		[]string{"from", "to"},
	)

	stockConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homecraft",
			Subsystem: "inventory",
			Name:      "stock_conflicts_total",
			Help:      "Conditional stock decrements that matched no row.",
		},
	)

	unitsRestocked = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homecraft",
			Subsystem: "inventory",
			Name:      "units_restocked_total",
			Help:      "Units returned to stock by cancellations and deletions.",
		},
	)

	uploadsSwept = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "homecraft",
			Subsystem: "uploads",
			Name:      "swept_files_total",
			Help:      "Expired upload files removed by the sweeper.",
		},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		ordersCreated,
		orderCreateDuration,
		statusTransitions,
		stockConflicts,
		unitsRestocked,
		uploadsSwept,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// Middleware records request count and latency per matched route.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.URL.Path == "/metrics" {
			c.Next()
			return
		}

		start := time.Now()
		httpInFlight.Inc()
		defer httpInFlight.Dec()

		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		httpRequests.WithLabelValues(c.Request.Method, path, strconv.Itoa(c.Writer.Status())).Inc()
		httpDuration.WithLabelValues(c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}

// RecordOrderCreated records one creation attempt. result is "ok" or the
// error kind that rejected it.
func RecordOrderCreated(result string, duration time.Duration) {
	ordersCreated.WithLabelValues(result).Inc()
	if result == "ok" {
		orderCreateDuration.Observe(duration.Seconds())
	}
}

func RecordStatusTransition(from, to string) {
	statusTransitions.WithLabelValues(from, to).Inc()
}

func RecordStockConflict() {
	stockConflicts.Inc()
}

func RecordRestock(units int) {
	if units > 0 {
		unitsRestocked.Add(float64(units))
	}
}

func RecordUploadsSwept(n int) {
	if n > 0 {
		uploadsSwept.Add(float64(n))
	}
}
