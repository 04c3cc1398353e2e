package router

import (
	"github.com/gofiber/fiber/v3"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"

	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/handler"
	"github.com/mathieu-neron/PulseFeed/pulsefeed-go/internal/middleware"
)

// Handlers holds all handler instances needed by the router.
type Handlers struct {
	Session   *handler.SessionHandler
	Attention *handler.AttentionHandler
	Accrual   *handler.AccrualHandler
	Progress  *handler.ProgressHandler
	Health    *handler.HealthHandler
}

// Setup configures the middleware stack and all API routes on the given Fiber app.
func Setup(app *fiber.App, h *Handlers, corsOrigins string) {
	// Middleware stack (order matters)
	app.Use(recoverer.New())
	app.Use(middleware.NewRequestLogger())
	app.Use(middleware.NewCORS(corsOrigins))
	app.Use(handler.MetricsMiddleware())

	// Health checks (before API group)
	app.Get("/health/live", h.Health.Live)
	app.Get("/health/ready", h.Health.Ready)

	// Prometheus metrics
	app.Get("/metrics", handler.MetricsHandler())

	// API routes
	api := app.Group("/api")

	// Session lifecycle
	sessionLimiter := middleware.NewSessionStartRateLimiter()
	standingLimiter := middleware.NewStandingRateLimiter()
	api.Post("/sessions", h.Session.Start, sessionLimiter.Handler())
	api.Delete("/sessions/:sessionId", h.Session.End)
	api.Get("/sessions/:sessionId/standing", h.Session.Standing, standingLimiter.Handler())

	// Attention events
	attentionLimiter := middleware.NewAttentionRateLimiter()
	api.Post("/attention", h.Attention.Report, attentionLimiter.Handler())

	// Continuous earning
	accrualLimiter := middleware.NewAccrualRateLimiter()
	accrual := api.Group("/accrual", accrualLimiter.Handler())
	accrual.Post("/:videoId/start", h.Accrual.Start)
	accrual.Put("/:videoId/speed", h.Accrual.SetSpeed)
	accrual.Post("/:videoId/pause", h.Accrual.Pause)
	accrual.Post("/:videoId/flush", h.Accrual.Flush)
	accrual.Post("/:videoId/stop", h.Accrual.Stop)

	// Watch progress
	progressLimiter := middleware.NewProgressRateLimiter()
	progress := api.Group("/progress", progressLimiter.Handler())
	progress.Get("/:videoId", h.Progress.Get)
	progress.Post("/:videoId/segments", h.Progress.MarkSegment)
	progress.Put("/:videoId/position", h.Progress.SavePosition)
	progress.Post("/:videoId/reward", h.Progress.CreditReward)
	progress.Delete("/:videoId", h.Progress.Clear)
}
