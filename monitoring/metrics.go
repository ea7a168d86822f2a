package monitoring

import (
	"strconv"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// HTTP metrics
	HttpRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	HttpRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	HttpResponseSize = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_size_bytes",
			Help:    "HTTP response size in bytes",
			Buckets: prometheus.ExponentialBuckets(100, 10, 8),
		},
		[]string{"method", "endpoint"},
	)

	ActiveConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of requests currently being served",
		},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errors_total",
			Help: "Total number of errors",
		},
		[]string{"type", "endpoint"},
	)

	// Trivia metrics
	CategoriesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trivia_categories_created_total",
			Help: "Categories created through the API",
		},
	)

	CluesInvalidated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trivia_clues_invalidated_total",
			Help: "Times a clue was flagged invalid",
		},
	)

	RandomCluesServed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "trivia_random_clues_served_total",
			Help: "Random clues returned, by whether invalid clues were excluded",
		},
		[]string{"valid_only"},
	)

	CustomGamesCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "trivia_custom_games_created_total",
			Help: "Custom games generated",
		},
	)
)

var registerOnce sync.Once

// InitMetrics registers every collector with the default registry. Safe to call more than once.
func InitMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			HttpRequestsTotal,
			HttpRequestDuration,
			HttpResponseSize,
			ActiveConnections,
			ErrorsTotal,
			CategoriesCreated,
			CluesInvalidated,
			RandomCluesServed,
			CustomGamesCreated,
		)
	})
}

// PrometheusMiddleware collects metrics for each request
func PrometheusMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		ActiveConnections.Inc()
		defer ActiveConnections.Dec()

		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		status := c.Writer.Status()

		HttpRequestsTotal.WithLabelValues(c.Request.Method, endpoint, strconv.Itoa(status)).Inc()
		HttpRequestDuration.WithLabelValues(c.Request.Method, endpoint).Observe(time.Since(start).Seconds())
		HttpResponseSize.WithLabelValues(c.Request.Method, endpoint).Observe(float64(c.Writer.Size()))

		if status >= 500 {
			ErrorsTotal.WithLabelValues("server_error", endpoint).Inc()
		} else if status >= 400 {
			ErrorsTotal.WithLabelValues("client_error", endpoint).Inc()
		}
	}
}

// PrometheusHandler returns Prometheus metrics handler
func PrometheusHandler() gin.HandlerFunc {
	h := promhttp.Handler()
	return func(c *gin.Context) {
		h.ServeHTTP(c.Writer, c.Request)
	}
}
