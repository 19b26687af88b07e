package server

import (
	"context"
	"time"

	"bookshelf/internal/config"
	"bookshelf/internal/handlers"
	"bookshelf/internal/metrics"
	"bookshelf/internal/middleware"
	"bookshelf/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Deps are the collaborators the HTTP layer needs.
type Deps struct {
	Config   *config.Config
	Log      *zap.Logger
	Auth     *services.AuthService
	Books    *services.BookService
	Sessions *services.SessionManager
	// Google is nil when federated sign-in is disabled.
	Google   handlers.FederatedProvider
	Metrics  *metrics.Metrics
	Gatherer prometheus.Gatherer
	// Ping checks the store; nil means there is nothing to check.
	Ping func(ctx context.Context) error
	// AccessLog enables fiber's request logger.
	AccessLog bool
}

// New assembles the Fiber app with middleware and routes.
func New(d Deps) *fiber.App {
	cfg := d.Config
	app := fiber.New(fiber.Config{
		AppName:               "bookshelf",
		BodyLimit:             cfg.App.BodyLimit,
		ErrorHandler:          handlers.ErrorHandler(d.Log),
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(requestid.New())
	if d.AccessLog {
		app.Use(logger.New(logger.Config{
			Format: "${time} ${locals:requestid} ${status} - ${latency} ${method} ${path}\n",
		}))
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.App.CORSOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET,POST,DELETE,OPTIONS",
		AllowCredentials: cfg.App.CORSOrigins != "*",
	}))
	if d.Metrics != nil {
		app.Use(middleware.Metrics(d.Metrics))
	}
	app.Use(middleware.LoadSession(d.Sessions))

	app.Get("/health", healthHandler(d.Ping))
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	secure := cfg.App.Env != config.EnvDevelopment
	handlers.NewAuthHandler(d.Auth, d.Sessions, d.Metrics, d.Log, secure).RegisterRoutes(app)
	if d.Google != nil {
		handlers.NewGoogleHandler(d.Google, d.Auth, d.Sessions, cfg.Google.SuccessRedirect, d.Metrics, d.Log, secure).
			RegisterRoutes(app)
	}
	handlers.NewBookHandler(d.Books).RegisterRoutes(app)

	return app
}

func healthHandler(ping func(ctx context.Context) error) fiber.Handler {
	return func(c *fiber.Ctx) error {
		now := time.Now().Format(time.RFC3339)
		if ping != nil {
			if err := ping(c.UserContext()); err != nil {
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"status": "unhealthy",
					"time":   now,
				})
			}
		}
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   now,
		})
	}
}
