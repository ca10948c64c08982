package router

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/makeasinger/scales/internal/config"
	"github.com/makeasinger/scales/internal/handler"
	"github.com/makeasinger/scales/internal/middleware"
	ws "github.com/makeasinger/scales/internal/websocket"
)

// Deps holds everything the routes are wired to. Jobs and Hub are nil when
// background jobs are disabled.
type Deps struct {
	Config      *config.Config
	Scales      *handler.ScaleHandler
	Theory      *handler.TheoryHandler
	Jobs        *handler.JobHandler
	Hub         *ws.Hub
	Auth        *middleware.AuthMiddleware
	RateLimiter *middleware.RateLimiter
}

// Setup registers health, API and websocket routes on app
func Setup(app *fiber.App, d Deps) {
	storage := d.Config.Storage.Provider

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok", "storage": storage})
	})

	api := app.Group("/api")
	authenticate := d.Auth.Authenticate()
	writeLimit := d.RateLimiter.WriteLimit(d.Config.RateLimit.WritePerMin)

	// Theory routes
	theory := api.Group("/theory")
	theory.Post("/intervals/classify", d.Theory.Classify)
	theory.Post("/intervals/create", d.Theory.CreateInterval)
	theory.Post("/intervals/from-name", d.Theory.FromName)
	theory.Post("/intervals/invert", d.Theory.Invert)
	theory.Post("/intervals/add", d.Theory.Add)
	theory.Post("/pitches/apply", d.Theory.Apply)
	theory.Post("/pitches/interval", d.Theory.Between)
	theory.Post("/pitches/transpose", d.Theory.Transpose)
	theory.Post("/scales/generate", d.Theory.GenerateScale)

	// Catalog routes
	scales := api.Group("/scales")
	scales.Get("/", d.Scales.List)
	scales.Get("/:id", d.Scales.Get)
	scales.Get("/:id/pitches", d.Scales.Pitches)
	scales.Post("/", authenticate, writeLimit, d.Scales.Create)
	scales.Put("/:id", authenticate, writeLimit, d.Scales.Update)
	scales.Delete("/:id", authenticate, writeLimit, d.Scales.Delete)

	if d.Jobs == nil {
		return
	}

	// Job routes
	scales.Post("/:id/pitch-table", authenticate, d.RateLimiter.JobsLimit(d.Config.RateLimit.JobsPerHour), d.Jobs.Start)

	jobs := api.Group("/jobs")
	jobs.Get("/:jobId", d.Jobs.Status)
	jobs.Get("/:jobId/result", d.Jobs.Result)
	jobs.Post("/:jobId/cancel", authenticate, d.Jobs.Cancel)

	if d.Hub == nil {
		return
	}

	// WebSocket routes
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/jobs/:jobId", websocket.New(func(c *websocket.Conn) {
		d.Hub.HandleConnection(c, c.Params("jobId"))
	}))
}
