package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	natsadapter "github.com/calummacrae/buswatch/internal/adapters/nats"
	"github.com/calummacrae/buswatch/internal/adapters/ops"
	"github.com/calummacrae/buswatch/internal/adapters/stagecoach"
	"github.com/calummacrae/buswatch/internal/adapters/telegram"
	"github.com/calummacrae/buswatch/internal/core/domain"
	"github.com/calummacrae/buswatch/internal/core/ports"
	"github.com/calummacrae/buswatch/internal/core/usecases"
	"github.com/calummacrae/buswatch/internal/pkg/config"
	"github.com/calummacrae/buswatch/internal/pkg/logging"
	"github.com/calummacrae/buswatch/internal/pkg/metrics"
	"github.com/calummacrae/buswatch/internal/pkg/telemetry"
)

// tracer is a no-op until InitTracer installs a real provider.
var tracer = otel.Tracer("buswatch/watcher")

func main() {
	cfg, err := config.Load("buswatch-watcher")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logging.Setup(cfg.Telemetry.ServiceName, cfg.Log.Level, cfg.Log.Format)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.Endpoint)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Bus stops
	waypoints, warnings := domain.ParseWaypoints(cfg.Stops.Spec)
	for _, w := range warnings {
		slog.Warn(w)
	}
	slog.Info("loaded bus stops", "count", len(waypoints))
	if len(waypoints) == 0 {
		slog.Warn("no bus stops configured, no bus will ever match")
	}
	metrics.WaypointsLoaded.Set(float64(len(waypoints)))

	// Vehicle feed
	source := stagecoach.NewClient(stagecoach.Config{
		BaseURL:      cfg.Upstream.BaseURL,
		Lat:          cfg.Watch.Lat,
		Lng:          cfg.Watch.Lng,
		RadiusMeters: cfg.Watch.RadiusMeters,
		Timeout:      cfg.Upstream.Timeout,
	})

	// Telegram
	notifier := telegram.NewNotifier(telegram.Config{
		BaseURL:  cfg.Telegram.BaseURL,
		BotToken: cfg.Telegram.BotToken,
		ChatID:   cfg.Telegram.ChatID,
		Timeout:  cfg.Telegram.Timeout,
	})

	// NATS (optional)
	var events *natsadapter.Publisher
	var eventSink ports.EventPublisher
	if cfg.NATS.URL != "" {
		pub, err := natsadapter.NewPublisher(cfg.NATS.URL)
		if err != nil {
			slog.Warn("nats unavailable", "error", err)
		} else {
			events = pub
			eventSink = pub
			defer pub.Close()
		}
	}

	// Use cases
	proximity := usecases.NewProximityService(waypoints, cfg.Watch.ThresholdMeters)
	watcher := usecases.NewWatchService(source, proximity, notifier, eventSink)

	tracker := ops.NewStatusTracker(waypoints,
		domain.GeoPoint{Lat: cfg.Watch.Lat, Lon: cfg.Watch.Lng},
		cfg.Watch.RadiusMeters, cfg.Watch.PollInterval)

	// Ops server (health, readiness, status, Prometheus metrics)
	var app *fiber.App
	if cfg.Ops.Enabled {
		app = fiber.New(fiber.Config{
			ReadTimeout:  time.Duration(cfg.Ops.ReadTimeout) * time.Second,
			WriteTimeout: time.Duration(cfg.Ops.WriteTimeout) * time.Second,
			AppName:      "BusWatch Ops",
		})
		app.Use(recover.New())
		ops.SetupRoutes(app, &ops.Dependencies{Status: tracker, Events: events})

		go func() {
			addr := fmt.Sprintf(":%d", cfg.Ops.Port)
			slog.Info("ops server starting", "addr", addr)
			if err := app.Listen(addr); err != nil {
				log.Fatalf("listen: %v", err)
			}
		}()
	}

	// Signal handling
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-quit
		slog.Info("shutdown signal received, stopping", "signal", sig.String())
		cancel()
	}()

	slog.Info("watching for buses",
		"lat", cfg.Watch.Lat,
		"lng", cfg.Watch.Lng,
		"radius_meters", cfg.Watch.RadiusMeters,
		"stops", len(waypoints),
		"poll_interval", cfg.Watch.PollInterval.String())

	watchLoop(ctx, cfg.Watch, watcher, tracker, eventSink != nil)

	// Graceful shutdown
	if app != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer shutdownCancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			slog.Error("forced shutdown", "error", err)
		}
	}

	slog.Info("watcher stopped")
}

// ---------------------------------------------------------------------------
// Poll loop
// ---------------------------------------------------------------------------

// watchLoop runs cycles until the context is cancelled or the optional
// runtime bound elapses. The first cycle starts immediately; each later
// cycle starts one poll interval after the previous one finished.
func watchLoop(ctx context.Context, watch config.WatchConfig, watcher *usecases.WatchService, tracker *ops.StatusTracker, eventsEnabled bool) {
	var deadline <-chan time.Time
	if watch.MaxRuntime > 0 {
		deadline = time.After(watch.MaxRuntime)
		slog.Info("watch window bounded", "max_runtime", watch.MaxRuntime.String())
	}

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-timer.C:
			slog.Debug("checking buses",
				"radius_meters", watch.RadiusMeters,
				"lat", watch.Lat,
				"lng", watch.Lng)
			runCycle(ctx, watcher, tracker, eventsEnabled)
			timer.Reset(watch.PollInterval)
		case <-deadline:
			slog.Info("watch window complete", "ran_for", watch.MaxRuntime.String())
			return
		case <-ctx.Done():
			return
		}
	}
}

// runCycle executes one fetch-match-notify pass and records the outcome.
func runCycle(ctx context.Context, watcher *usecases.WatchService, tracker *ops.StatusTracker, eventsEnabled bool) {
	ctx, span := tracer.Start(ctx, "poll.cycle")
	defer span.End()

	start := time.Now()
	summary, err := watcher.CheckVehicles(ctx)
	if err != nil && ctx.Err() != nil {
		// Shutdown interrupted the fetch; not a cycle failure.
		return
	}

	metrics.PollCycles.Inc()
	metrics.PollDuration.Observe(time.Since(start).Seconds())
	tracker.RecordCycle(summary, err)
	span.SetAttributes(
		attribute.Int("vehicles", summary.VehiclesSeen),
		attribute.Int("matches", len(summary.Matches)),
	)

	if err != nil {
		metrics.PollErrors.Inc()
		span.RecordError(err)
		slog.Error("poll cycle failed", "error", err)
		return
	}

	metrics.VehiclesSeen.Add(float64(summary.VehiclesSeen))

	for _, m := range summary.Matches {
		metrics.MatchesDetected.WithLabelValues(m.Waypoint.Name).Inc()
		slog.Info("bus near stop",
			"service", m.Vehicle.ServiceNumber,
			"description", m.Vehicle.ServiceDescription,
			"stop", m.Waypoint.Name,
			"distance_m", int(m.DistanceMeters))
	}

	metrics.NotificationsSent.Add(float64(len(summary.Matches) - summary.NotifyFailures))
	metrics.NotificationErrors.Add(float64(summary.NotifyFailures))

	if eventsEnabled {
		metrics.EventsPublished.Add(float64(len(summary.Matches) - summary.PublishFailures))
		metrics.EventPublishErrors.Add(float64(summary.PublishFailures))
	}

	if len(summary.Matches) == 0 {
		slog.Info("no bus found near any stop", "vehicles", summary.VehiclesSeen)
	}
}
