// internal/pkg/metrics/metrics.go
package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "foodcart",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "foodcart",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 10), // 5ms to ~5s
		},
		[]string{"method", "route"},
	)

	cartActions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "cart",
			Name:      "actions_total",
			Help:      "Total number of cart actions applied.",
		},
		[]string{"action"},
	)

	cartSessions = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "foodcart",
			Subsystem: "cart",
			Name:      "cached_sessions",
			Help:      "Number of cart sessions held in memory.",
		},
	)

	checkoutSubmissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "foodcart",
			Subsystem: "checkout",
			Name:      "submissions_total",
			Help:      "Total number of order service submissions by operation and result.",
		},
		[]string{"operation", "result"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		cartActions,
		cartSessions,
		checkoutSubmissions,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// RequestStarted tracks an in-flight request; call the returned func when done.
func RequestStarted() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordRequest records a finished HTTP request. route is the matched route
// pattern, never the raw path.
func RecordRequest(method, route string, status int, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	method = strings.ToUpper(method)
	httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	httpDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordCartAction counts an applied cart action
func RecordCartAction(action string) {
	cartActions.WithLabelValues(action).Inc()
}

// SetCachedSessions reports the number of cart sessions held in memory
func SetCachedSessions(n int) {
	cartSessions.Set(float64(n))
}

// RecordSubmission counts an order service submission
func RecordSubmission(operation string, err error) {
	result := "success"
	if err != nil {
		result = "failure"
	}
	checkoutSubmissions.WithLabelValues(operation, result).Inc()
}
