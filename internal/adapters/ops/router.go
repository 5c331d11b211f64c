package ops

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"github.com/calummacrae/buswatch/internal/pkg/metrics"
)

// SetupRoutes registers the ops endpoints.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Request ID
	app.Use(requestid.New())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))
	app.Get("/v1/status", StatusHandler(deps))
}
