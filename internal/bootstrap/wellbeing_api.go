package bootstrap

import (
	"context"
	"time"

	"wellbeing_server/adapter/in/http"
	"wellbeing_server/config"
	"wellbeing_server/infra/middleware"
	"wellbeing_server/pkg/apperr"
	"wellbeing_server/pkg/logger"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
)

// API is the HTTP server with the background work it owns.
type API struct {
	App  *fiber.App
	Deps *Dependencies

	rateLimiter *middleware.RateLimiter
}

// NewAPI connects dependencies and builds the HTTP server.
func NewAPI(ctx context.Context, cfg *config.Config) (*API, func(), error) {
	deps, cleanup, err := NewDependencies(ctx, cfg)
	if err != nil {
		logger.WithError(err).Error("Failed to initialize dependencies")
		return nil, nil, err
	}

	api := NewAPIWithDeps(deps)
	logger.Info("API server initialized successfully")
	return api, cleanup, nil
}

// NewAPIWithDeps builds the HTTP server on existing dependencies.
func NewAPIWithDeps(deps *Dependencies) *API {
	cfg := deps.Config

	app := fiber.New(fiber.Config{
		ErrorHandler:          middleware.ErrorHandler(),
		DisableStartupMessage: cfg.IsProduction(),
		AppName:               "wellbeing",

		// go-json: faster than encoding/json for the chat payloads
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,

		BodyLimit:    1 * 1024 * 1024, // 1MB
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.LLMTimeout() + 10*time.Second,
		ServerHeader: "",
	})

	// Global middleware stack (order matters)
	app.Use(middleware.Recover())                   // 1. Panic recovery
	app.Use(middleware.RequestID())                 // 2. Request ID
	app.Use(middleware.SecurityHeaders())           // 3. Security headers
	app.Use(middleware.RequestLogger(deps.Metrics)) // 4. Request logging + metrics
	app.Use(middleware.CORS(cfg.AllowedOrigins, cfg.IsProduction()))

	// Health check and metrics
	http.NewHealthHandler(healthChecks(deps)).Register(app)
	http.RegisterMetrics(app, deps.Metrics)

	v1 := app.Group("/api/v1")

	rateLimiter := middleware.NewRateLimiter(cfg.ChatRateLimit, time.Minute, deps.Redis)
	http.NewChatHandler(deps.AnalysisService).Register(v1, rateLimiter.Handler())
	http.NewEmployeeHandler(deps.EmployeeService).Register(v1)
	http.NewAdminHandler(deps.AdminService).Register(v1)

	app.Use(func(c *fiber.Ctx) error {
		return apperr.NotFound("route " + c.Method() + " " + c.Path())
	})

	return &API{App: app, Deps: deps, rateLimiter: rateLimiter}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (a *API) Run(ctx context.Context, addr string, shutdownTimeout time.Duration) error {
	go a.rateLimiter.RunCleanup(ctx)

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Starting API server on %s", addr)
		errCh <- a.App.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("Shutting down API server (timeout: %v)...", shutdownTimeout)
	if err := a.App.ShutdownWithTimeout(shutdownTimeout); err != nil {
		return err
	}
	logger.Info("API server shut down gracefully")
	return nil
}

func healthChecks(deps *Dependencies) map[string]http.PingFunc {
	checks := map[string]http.PingFunc{
		"database": deps.DB.PingContext,
		"redis":    nil,
		"mongodb":  nil,
		"llm":      nil,
	}
	if deps.LLMBreaker != nil {
		checks["llm"] = deps.LLMBreaker.Ready
	}
	if deps.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return deps.Redis.Ping(ctx).Err() }
	}
	if deps.MongoDB != nil {
		checks["mongodb"] = func(ctx context.Context) error { return deps.MongoDB.Ping(ctx, nil) }
	}
	return checks
}
