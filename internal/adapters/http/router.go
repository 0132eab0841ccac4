package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/dhifafaz/tactical-monitor/internal/pkg/metrics"
)

// SetupRoutes registers all REST, GraphQL, and WebSocket routes.
func SetupRoutes(app *fiber.App, deps *Dependencies) {
	// Prometheus metrics
	app.Use(metrics.Middleware())
	app.Get("/metrics", metrics.Handler())

	// Response compression (gzip)
	app.Use(compress.New(compress.Config{
		Level: compress.LevelBestSpeed,
	}))

	// Request ID
	app.Use(requestid.New())

	// Propagate request ID into slog context
	app.Use(RequestIDLogMiddleware())

	// Access logs (structured HTTP request logging)
	app.Use(AccessLogMiddleware())

	// Rate limiting: 300 requests per minute per IP. The dashboard polls
	// stats and alerts aggressively, so the ceiling is generous.
	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(429).JSON(fiber.Map{
				"error":   "rate limit exceeded",
				"message": "too many requests, please try again later",
			})
		},
		Next: func(c *fiber.Ctx) bool {
			// WebSocket upgrades are long-lived, not request traffic.
			return websocket.IsWebSocketUpgrade(c)
		},
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("X-XSS-Protection", "1; mode=block")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// REST API v1 — 15s per-request timeout
	v1 := app.Group("/v1")
	v1.Get("/offenders", timeout.NewWithContext(ListOffendersHandler(deps), 15*time.Second))
	v1.Post("/offenders", timeout.NewWithContext(CreateOffenderHandler(deps), 15*time.Second))
	v1.Get("/offenders/:id", timeout.NewWithContext(GetOffenderHandler(deps), 15*time.Second))
	v1.Put("/offenders/:id", timeout.NewWithContext(UpdateOffenderHandler(deps), 15*time.Second))
	v1.Delete("/offenders/:id", timeout.NewWithContext(DeleteOffenderHandler(deps), 15*time.Second))

	v1.Get("/devices", timeout.NewWithContext(ListDevicesHandler(deps), 15*time.Second))
	v1.Post("/devices", timeout.NewWithContext(RegisterDeviceHandler(deps), 15*time.Second))
	v1.Get("/devices/:id", timeout.NewWithContext(GetDeviceHandler(deps), 15*time.Second))
	v1.Put("/devices/:id", timeout.NewWithContext(UpdateDeviceHandler(deps), 15*time.Second))
	v1.Delete("/devices/:id", timeout.NewWithContext(DeleteDeviceHandler(deps), 15*time.Second))

	v1.Get("/pois", timeout.NewWithContext(ListPOIsHandler(deps), 15*time.Second))
	v1.Post("/pois", timeout.NewWithContext(CreatePOIHandler(deps), 15*time.Second))
	v1.Get("/pois/:id", timeout.NewWithContext(GetPOIHandler(deps), 15*time.Second))
	v1.Put("/pois/:id", timeout.NewWithContext(UpdatePOIHandler(deps), 15*time.Second))
	v1.Delete("/pois/:id", timeout.NewWithContext(DeletePOIHandler(deps), 15*time.Second))

	v1.Get("/alerts", timeout.NewWithContext(ListAlertsHandler(deps), 15*time.Second))
	v1.Get("/alerts/:id", timeout.NewWithContext(GetAlertHandler(deps), 15*time.Second))
	v1.Post("/alerts/:id/acknowledge", timeout.NewWithContext(AcknowledgeAlertHandler(deps), 15*time.Second))

	v1.Get("/stats/dashboard", timeout.NewWithContext(DashboardStatsHandler(deps), 15*time.Second))

	// GraphQL
	app.Post("/graphql", GraphQLHandler(deps))

	// WebSocket
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/tracking/:client_id", websocket.New(TrackingWebSocketHandler(deps)))
}
