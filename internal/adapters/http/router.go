package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/fiber/v2/middleware/timeout"
	"github.com/gofiber/websocket/v2"

	"github.com/jmateos/dispatchmap/internal/pkg/metrics"
)

// SetupRoutes registers the map control REST API and the surface
// WebSocket endpoint.
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

	// Rate limiting: 120 requests per minute per IP
	app.Use(limiter.New(limiter.Config{
		Max:        120,
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
		SkipFailedRequests: false,
	}))

	// Security headers + API version
	app.Use(func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		c.Set("X-API-Version", "1.0.0")
		return c.Next()
	})

	// Health & readiness (no timeout — fast internal checks)
	app.Get("/v1/health", HealthHandler(deps))
	app.Get("/v1/ready", ReadyHandler(deps))

	// Map control API — mutations are fast surface commands, but the
	// location endpoints wait on a device fix, so they get the long
	// timeout the position flow itself uses.
	v1 := app.Group("/v1")
	v1.Get("/sessions", ListSessionsHandler(deps))
	v1.Post("/map/items", timeout.NewWithContext(UpdateMapHandler(deps), 15*time.Second))
	v1.Post("/map/zoom", timeout.NewWithContext(ZoomHandler(deps), 15*time.Second))
	v1.Post("/map/route", timeout.NewWithContext(SetRouteHandler(deps), 15*time.Second))
	v1.Delete("/map/route", timeout.NewWithContext(ClearRouteHandler(deps), 15*time.Second))
	v1.Post("/map/terminals", timeout.NewWithContext(AddTerminalsHandler(deps), 15*time.Second))
	v1.Delete("/map/terminals", timeout.NewWithContext(ClearTerminalsHandler(deps), 15*time.Second))
	v1.Get("/location", timeout.NewWithContext(LocationHandler(deps), 60*time.Second))
	v1.Get("/location/place", timeout.NewWithContext(LocationPlaceHandler(deps), 60*time.Second))

	// WebSocket surface attach
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws", websocket.New(WebSocketHandler(deps)))
}
