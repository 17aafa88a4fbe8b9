package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"wellbeing_server/config"
	"wellbeing_server/internal/bootstrap"
	"wellbeing_server/pkg/logger"

	"github.com/joho/godotenv"
)

const (
	shutdownTimeout = 30 * time.Second // Maximum time to wait for graceful shutdown
)

func main() {
	// Load .env file if exists (for local development)
	envErr := godotenv.Load()

	mode := flag.String("mode", "all", "Run mode: api, scheduler, all")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load config: %v", err)
	}

	logger.Init(logger.Config{
		Level:   logger.ParseLevel(cfg.LogLevel),
		Service: "wellbeing",
		Console: cfg.IsDevelopment(),
	})
	if envErr != nil {
		logger.Debug("No .env file found, using environment variables")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	switch *mode {
	case "api":
		runAPI(ctx, cfg, false)
	case "scheduler":
		runScheduler(ctx, cfg)
	case "all":
		runAPI(ctx, cfg, true)
	default:
		logger.Fatal("Unknown mode: %s", *mode)
	}
}

func runAPI(ctx context.Context, cfg *config.Config, withScheduler bool) {
	api, cleanup, err := bootstrap.NewAPI(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize API: %v", err)
	}
	defer cleanup()

	if withScheduler && cfg.ResetCron != "" {
		scheduler, err := bootstrap.NewScheduler(api.Deps.AdminService, cfg.ResetCron)
		if err != nil {
			logger.Fatal("Failed to initialize scheduler: %v", err)
		}
		go scheduler.Run(ctx)
	}

	if err := api.Run(ctx, ":"+cfg.Port, shutdownTimeout); err != nil {
		logger.Error("API server error: %v", err)
		cleanup()
		os.Exit(1)
	}
}

func runScheduler(ctx context.Context, cfg *config.Config) {
	if cfg.ResetCron == "" {
		logger.Fatal("RESET_CRON must be set in scheduler mode")
	}

	deps, cleanup, err := bootstrap.NewDependencies(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to initialize dependencies: %v", err)
	}
	defer cleanup()

	scheduler, err := bootstrap.NewScheduler(deps.AdminService, cfg.ResetCron)
	if err != nil {
		logger.Fatal("Failed to initialize scheduler: %v", err)
	}
	scheduler.Run(ctx)
}
