package ops

import (
	"time"

	"github.com/gofiber/fiber/v2"
)

// HealthHandler returns a basic liveness check.
func HealthHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "healthy",
			"uptime":  time.Since(deps.Status.StartedAt()).String(),
			"version": "dev",
		})
	}
}

// ReadyHandler checks the poll loop and broker connectivity.
func ReadyHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		checks := make(map[string]string)
		allOK := true

		snap := deps.Status.Snapshot()
		switch {
		case snap.CyclesRun == 0:
			checks["poller"] = "waiting for first cycle"
			allOK = false
		case !snap.LastCycleOK:
			checks["poller"] = "error: " + snap.LastError
			allOK = false
		default:
			checks["poller"] = "ok"
		}

		if deps.Events != nil {
			if deps.Events.IsConnected() {
				checks["events"] = "ok"
			} else {
				checks["events"] = "disconnected"
				allOK = false
			}
		} else {
			checks["events"] = "not configured"
		}

		status := "ready"
		code := 200
		if !allOK {
			status = "not ready"
			code = 503
		}

		return c.Status(code).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}

// StatusHandler reports the watch configuration and cycle counters.
func StatusHandler(deps *Dependencies) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(deps.Status.Snapshot())
	}
}
