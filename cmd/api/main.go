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
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.temporal.io/sdk/client"

	"github.com/dhifafaz/tactical-monitor/internal/adapters/http"
	"github.com/dhifafaz/tactical-monitor/internal/adapters/memory"
	natsadapter "github.com/dhifafaz/tactical-monitor/internal/adapters/nats"
	"github.com/dhifafaz/tactical-monitor/internal/adapters/postgres"
	"github.com/dhifafaz/tactical-monitor/internal/adapters/valkey"
	"github.com/dhifafaz/tactical-monitor/internal/core/domain"
	"github.com/dhifafaz/tactical-monitor/internal/core/ports"
	"github.com/dhifafaz/tactical-monitor/internal/core/usecases"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/config"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/logging"
	"github.com/dhifafaz/tactical-monitor/internal/pkg/telemetry"
	"github.com/dhifafaz/tactical-monitor/internal/tracking"
	"github.com/dhifafaz/tactical-monitor/internal/workflows"
)

func main() {
	cfg, err := config.Load("tacmon-api")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	// Structured logging
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	logging.Setup(logLevel, "json")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Telemetry
	if cfg.Telemetry.Enabled {
		shutdown, err := telemetry.InitTracer(ctx, cfg.Telemetry.ServiceName, cfg.Telemetry.OTLPAddr)
		if err != nil {
			slog.Warn("telemetry init failed", "error", err)
		} else {
			defer shutdown()
		}
	}

	// Storage: Postgres when reachable, in-memory otherwise. The memory
	// stores make local demos and field deployments without a database
	// possible; state is lost on restart.
	var (
		offenderRepo ports.OffenderRepository
		deviceRepo   ports.DeviceRepository
		poiRepo      ports.POIRepository
		alertRepo    ports.AlertRepository
		db           *postgres.DB
	)
	db, err = postgres.New(ctx, cfg.Database.DSN())
	if err != nil {
		slog.Warn("database unavailable, using in-memory storage", "error", err)
		db = nil
		offenderRepo = memory.NewOffenderStore()
		deviceRepo = memory.NewDeviceStore()
		poiRepo = memory.NewPOIStore()
		alertRepo = memory.NewAlertStore()
	} else {
		defer db.Close()
		offenderRepo = postgres.NewOffenderRepo(db)
		deviceRepo = postgres.NewDeviceRepo(db)
		poiRepo = postgres.NewPOIRepo(db)
		alertRepo = postgres.NewAlertRepo(db)
	}

	// Cache
	var cacheSvc ports.CacheService
	cache, err := valkey.New(cfg.Valkey.Addr)
	if err != nil {
		slog.Warn("valkey unavailable", "error", err)
		cache = nil
	} else {
		defer cache.Close()
		cacheSvc = cache
	}

	// NATS
	var publisher ports.EventPublisher
	nc, err := natsadapter.NewPublisher(cfg.NATS.URL)
	if err != nil {
		slog.Warn("nats unavailable", "error", err)
		nc = nil
	} else {
		defer nc.Close()
		publisher = nc
	}

	// Use cases
	offenderSvc := usecases.NewOffenderService(offenderRepo)
	deviceSvc := usecases.NewDeviceService(deviceRepo, offenderRepo)
	poiSvc := usecases.NewPOIService(poiRepo, cacheSvc)
	alertSvc := usecases.NewAlertService(alertRepo)
	statsSvc := usecases.NewStatsService(offenderRepo, deviceRepo, poiRepo, alertRepo, cacheSvc)
	engine := usecases.NewAlertEngine()

	// Tracking: connection registry + relay listener
	registry := tracking.NewRegistry()
	dialer := &tracking.WebsocketDialer{
		BaseURL:        cfg.Relay.BaseURL,
		ConnectTimeout: cfg.Relay.Timeout(),
	}
	listener := tracking.NewListener(registry, dialer, deviceRepo, offenderRepo, alertRepo, poiSvc, engine, publisher)

	// Temporal: chase unacknowledged alerts. Optional; without a reachable
	// server alerts simply never escalate beyond the dashboard.
	if tc, err := client.Dial(client.Options{HostPort: cfg.Temporal.HostPort}); err != nil {
		slog.Warn("temporal unavailable, alert escalation disabled", "error", err)
	} else {
		defer tc.Close()
		grace := time.Duration(cfg.Temporal.AckGracePeriod) * time.Minute
		taskQueue := cfg.Temporal.TaskQueue
		listener.OnAlert(func(ctx context.Context, alert *domain.Alert) {
			opts := client.StartWorkflowOptions{
				ID:        "escalate-" + alert.ID,
				TaskQueue: taskQueue,
			}
			input := workflows.EscalationInput{
				AlertID:     alert.ID,
				OffenderID:  alert.OffenderID,
				GracePeriod: grace,
			}
			if _, err := tc.ExecuteWorkflow(ctx, opts, workflows.EscalationWorkflow, input); err != nil {
				slog.Warn("start escalation workflow", "alert_id", alert.ID, "error", err)
			}
		})
	}

	deps := &http.Dependencies{
		Offenders: offenderSvc,
		Devices:   deviceSvc,
		POIs:      poiSvc,
		Alerts:    alertSvc,
		Stats:     statsSvc,
		Registry:  registry,
		Listener:  listener,
		NATS:      nc,
		DB:        db,
		Cache:     cache,
	}

	// Fiber
	app := fiber.New(fiber.Config{
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		BodyLimit:    1024 * 1024, // 1 MB max request body
		AppName:      "Tactical Monitor API",
	})
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     "*",
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: false,
		MaxAge:           3600,
	}))

	http.SetupRoutes(app, deps)

	// Graceful shutdown
	go func() {
		addr := fmt.Sprintf(":%d", cfg.Server.Port)
		slog.Info("API server starting", "addr", addr)
		if err := app.Listen(addr); err != nil {
			log.Fatalf("listen: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	slog.Info("shutdown signal received, draining connections...", "signal", sig.String())

	// Give in-flight requests up to 10s to complete
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		slog.Error("forced shutdown", "error", err)
	}

	slog.Info("server stopped")
}
