// Command resetstats clears every employee's violent word history and word counters.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"wellbeing_server/config"
	"wellbeing_server/internal/bootstrap"
	"wellbeing_server/pkg/logger"

	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}

	logger.Init(logger.Config{
		Level:   logger.LevelWarn,
		Service: "resetstats",
		Output:  os.Stderr,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	deps, cleanup, err := bootstrap.NewDependencies(ctx, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	affected, err := deps.AdminService.ResetStats(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "reset: %v\n", err)
		cleanup()
		os.Exit(1)
	}

	fmt.Printf("Statistics reset for %d employees.\n", affected)
}
