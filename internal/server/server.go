// Package server contains the HTTP handlers for the quote request API.
package server

import (
	"context"
	"errors"
	"fmt"
	"time"

	_ "driverquote/docs" // swagger docs
	"driverquote/internal/bootstrap"
	"driverquote/internal/config"
	"driverquote/internal/database"
	"driverquote/internal/featureflags"
	"driverquote/internal/middleware"
	"driverquote/internal/models"
	"driverquote/internal/notifications"
	"driverquote/internal/repository"
	"driverquote/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const serviceName = "driverquote-api"

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	contactRepo    repository.ContactRepository
	notifier       *notifications.Notifier
	featureFlags   *featureflags.Manager
	contactService *service.ContactService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	// Redis is optional: cache, rate limit and events degrade to no-ops without it
	db, redisClient, err := bootstrap.InitRuntime(cfg, bootstrap.Options{SeedDemoContacts: true})
	if err != nil {
		return nil, fmt.Errorf("runtime init failed: %w", err)
	}

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if db == nil {
		return nil, errors.New("database is required")
	}
	return newServer(cfg, db, redisClient, repository.NewContactRepository(db)), nil
}

func newServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, contactRepo repository.ContactRepository) *Server {
	s := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics(serviceName),
		contactRepo:    contactRepo,
		featureFlags:   featureflags.NewManagerWithDefaults(featureflags.Defaults, cfg.FeatureFlags),
	}

	var events service.EventPublisher
	if redisClient != nil {
		s.notifier = notifications.NewNotifier(redisClient)
		events = s.notifier
	}
	s.contactService = service.NewContactService(contactRepo, events).WithFlags(s.featureFlags)
	return s
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "DriverQuote API",
		BodyLimit:    64 * 1024,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// errorHandler renders errors that escaped a handler with the standard envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		switch fiberErr.Code {
		case fiber.StatusNotFound, fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		default:
			if fiberErr.Code < fiber.StatusInternalServerError {
				return c.Status(fiberErr.Code).JSON(models.ErrorResponse{
					Success: false,
					Error:   fiberErr.Message,
				})
			}
		}
	}
	return s.respondError(c, err)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Tracing span, then propagate request and trace IDs to the user context
	app.Use(middleware.TracingMiddleware())
	app.Use(middleware.ContextMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins: origins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
		MaxAge:       86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return models.RespondWithError(c, models.NewRateLimitedError())
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", s.AdminRequired(), monitor.New(monitor.Config{
		Title: "DriverQuote API Metrics Dashboard",
	}))

	api.Get("/feature-flags", s.AdminRequired(), s.GetFeatureFlags)

	// Swagger documentation
	api.Get("/swagger/*", swagger.HandlerDefault)

	window := time.Duration(s.config.ContactRateWindowSeconds) * time.Second
	if window <= 0 {
		window = 10 * time.Minute
	}

	// The lead form posts anonymously; everything else is back-office.
	// Admin checks are attached per route so the group middleware never reaches POST.
	contacts := api.Group("/contacts")
	contacts.Post("/", middleware.RateLimit(
		s.redis, s.config.Env, s.config.ContactRateLimit, window, "contact_submit"), s.CreateContact)
	contacts.Get("/", s.AdminRequired(), s.GetContacts)
	contacts.Get("/:id", s.AdminRequired(), s.GetContact)
	contacts.Put("/:id", s.AdminRequired(), s.UpdateContactStatus)
	contacts.Delete("/:id", s.AdminRequired(), s.DeleteContact)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now().UTC(),
	})
}

// ReadinessCheck handles readiness probe requests. Only the database decides
// readiness; Redis is reported but optional.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := database.Ping(ctx, s.db); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	} else if redisStatus != "healthy" {
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"version": "1.0.0",
		"status":  overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now().UTC(),
	})
}

// Start builds the app and listens on the configured port. Blocks until the listener stops.
func (s *Server) Start() error {
	s.app = s.NewApp()
	middleware.Logger.Info("Server starting", "port", s.config.Port)
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err)
		}
	}

	if err := database.Close(s.db); err != nil {
		middleware.Logger.Error("error closing sql DB", "error", err)
	}

	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			middleware.Logger.Error("error closing redis", "error", err)
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
