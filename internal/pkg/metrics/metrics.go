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
	// HTTP metrics (ops endpoints)
	httpRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total HTTP requests processed",
	}, []string{"method", "path", "status"})

	httpRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "buswatch",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency in seconds",
		Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"method", "path"})

	// Poll cycle metrics
	PollCycles = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "poll",
		Name:      "cycles_total",
		Help:      "Total polling cycles run",
	})

	PollErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "poll",
		Name:      "errors_total",
		Help:      "Total polling cycles that failed to fetch the feed",
	})

	PollDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "buswatch",
		Subsystem: "poll",
		Name:      "cycle_duration_seconds",
		Help:      "Duration of one fetch-match-notify cycle",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30},
	})

	VehiclesSeen = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "poll",
		Name:      "vehicles_seen_total",
		Help:      "Total vehicle reports received from the tracking feed",
	})

	// Match and delivery metrics
	MatchesDetected = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "match",
		Name:      "detected_total",
		Help:      "Total vehicles observed within range of a watched stop",
	}, []string{"stop"})

	NotificationsSent = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "notify",
		Name:      "sent_total",
		Help:      "Total notifications delivered",
	})

	NotificationErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "notify",
		Name:      "errors_total",
		Help:      "Total notification sends that failed",
	})

	EventsPublished = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "events",
		Name:      "published_total",
		Help:      "Total match events published to the broker",
	})

	EventPublishErrors = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "buswatch",
		Subsystem: "events",
		Name:      "errors_total",
		Help:      "Total match event publishes that failed",
	})

	WaypointsLoaded = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "buswatch",
		Subsystem: "watch",
		Name:      "waypoints_loaded",
		Help:      "Number of bus stops being watched",
	})
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
