package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/valyala/fasthttp/fasthttpadaptor"
)

var (
	// HTTP metrics
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tacmon",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Tracking pipeline metrics
	LocationsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "tracking",
		Name:      "locations_ingested_total",
		Help:      "Total location samples consumed from relay streams",
	}, []string{"device"})

	AlertsRaised = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "tracking",
		Name:      "alerts_raised_total",
		Help:      "Total alerts produced by spatial evaluation",
	}, []string{"kind"})

	RelayConnectErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "tracking",
		Name:      "relay_connect_errors_total",
		Help:      "Total failed dials to the external GPS relay",
	})

	BroadcastFailures = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "tracking",
		Name:      "broadcast_failures_total",
		Help:      "Total per-recipient dashboard delivery failures (swallowed)",
	})

	ActiveDashboardClients = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tacmon",
		Subsystem: "ws",
		Name:      "active_dashboard_clients",
		Help:      "Current number of connected dashboard clients",
	})

	ActiveRelayStreams = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "tacmon",
		Subsystem: "ws",
		Name:      "active_relay_streams",
		Help:      "Current number of open external relay streams",
	})

	CacheHits = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "cache",
		Name:      "hits_total",
		Help:      "Total cache hits",
	}, []string{"operation"})

	CacheMisses = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tacmon",
		Subsystem: "cache",
		Name:      "misses_total",
		Help:      "Total cache misses",
	}, []string{"operation"})
)

// Middleware records request metrics.
func Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		duration := time.Since(start).Seconds()
		status := strconv.Itoa(c.Response().StatusCode())
		path := c.Route().Path
		if path == "" {
			path = c.Path()
		}
		method := c.Method()

		httpRequestsTotal.WithLabelValues(method, path, status).Inc()
		httpRequestDuration.WithLabelValues(method, path).Observe(duration)

		return err
	}
}

// Handler returns a Fiber handler serving the Prometheus /metrics endpoint.
func Handler() fiber.Handler {
	handler := promhttp.Handler()
	return func(c *fiber.Ctx) error {
		fasthttpadaptor.NewFastHTTPHandler(handler)(c.Context())
		return nil
	}
}
