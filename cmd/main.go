package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	service "github.com/okian/tops/internal/app"
	"github.com/okian/tops/internal/config"
	"github.com/okian/tops/pkg/logger"
	"github.com/okian/tops/pkg/metrics"
)

func main() {
	os.Exit(run())
}

// run executes one pipeline pass and returns the process exit code.
func run() int {
	// Initialize logging
	if err := logger.Init(); err != nil {
		// Use fmt for initialization errors since logger isn't available yet
		_, _ = os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	defer func() {
		_ = logger.Sync()
	}()

	loggerInstance := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		_, _ = os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := service.New(
		service.WithLogger(loggerInstance),
		service.WithMetrics(metrics.Default()),
		service.WithConfig(cfg),
	)
	sum, err := svc.Run(ctx)
	if err != nil {
		loggerInstance.Error(ctx, "run failed", logger.String("run_id", sum.RunID), logger.Error(err))
		return 1
	}

	loggerInstance.Info(ctx, "done", logger.String("report", sum.ReportPath))
	return 0
}
