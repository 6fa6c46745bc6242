package api

import (
	"context"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/jackc/pgx/v5/pgxpool"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/identika/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/identika/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/identika/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/identika/internal/identify"
	"github.com/saturnino-fabrica-de-software/identika/internal/training"
)

type Dependencies struct {
	IdentifyService *identify.Service
	ConfigStore     *training.ConfigStore
	Controller      *training.Controller
	RetrainInterval time.Duration
	DB              *pgxpool.Pool
}

type Router struct {
	app          *fiber.App
	logger       *slog.Logger
	deps         *Dependencies
	cancelWorker context.CancelFunc
}

func NewRouter(logger *slog.Logger, deps *Dependencies) *Router {
	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "Identika API",
		BodyLimit:    12 * 1024 * 1024,
	})

	return &Router{
		app:    app,
		logger: logger,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	// Global middlewares
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Swagger documentation
	sw := docs.NewSwagger()
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	// Health check endpoints
	healthHandler := handler.NewHealthHandler(r.deps.pinger())
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	v1 := r.app.Group("/v1")

	if r.deps != nil {
		// Identification routes
		identifyHandler := handler.NewIdentifyHandler(r.deps.IdentifyService, r.logger)
		v1.Post("/identify", identifyHandler.Identify)
		v1.Post("/identify/batch", identifyHandler.IdentifyBatch)

		// Validation feedback routes
		validationHandler := handler.NewValidationHandler(r.deps.Controller, r.logger)
		v1.Post("/validations", validationHandler.Create)

		// Threshold routes
		thresholdHandler := handler.NewThresholdHandler(r.deps.ConfigStore, r.deps.Controller, r.logger)
		v1.Get("/thresholds/active", thresholdHandler.GetActive)
		v1.Post("/thresholds/retrain", thresholdHandler.Retrain)
		v1.Post("/thresholds/:id/activate", thresholdHandler.Activate)

		// Periodic retrain worker
		if r.deps.RetrainInterval > 0 {
			worker := training.NewWorker(r.deps.Controller, r.logger, r.deps.RetrainInterval)
			ctx, cancel := context.WithCancel(context.Background())
			r.cancelWorker = cancel
			go worker.Run(ctx)
		}
	}
}

// pinger adapts the pool for the readiness probe, tolerating a nil pool in tests
func (d *Dependencies) pinger() handler.Pinger {
	if d == nil || d.DB == nil {
		return noopPinger{}
	}
	return d.DB
}

type noopPinger struct{}

func (noopPinger) Ping(context.Context) error { return nil }

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	// Stop retrain worker
	if r.cancelWorker != nil {
		r.cancelWorker()
	}

	return r.app.Shutdown()
}
