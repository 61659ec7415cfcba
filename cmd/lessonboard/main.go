package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/felixgeelhaar/lessonboard/adapter/cli"
	"github.com/felixgeelhaar/lessonboard/adapter/cli/board"
	"github.com/felixgeelhaar/lessonboard/adapter/cli/lesson"
	"github.com/felixgeelhaar/lessonboard/internal/app"
	"github.com/felixgeelhaar/lessonboard/pkg/config"
	"github.com/felixgeelhaar/lessonboard/pkg/observability"
)

func main() {
	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signals
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		cancel()
	}()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		// In development without .env, use defaults
		cfg = &config.Config{AppEnv: "development", LogLevel: "info"}
	}

	// Command output owns stdout
	logger := observability.LoggerTo(os.Stderr, "lessonboard", cfg.AppEnv, cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		logger.Warn("failed to load config, using development mode", "error", err)
	}
	cli.SetLogger(logger)

	// Try to initialize the full container
	var cliApp *cli.App
	container, err := app.NewContainer(ctx, cfg, logger)
	if err != nil {
		if cfg.IsDevelopment() {
			// In development, allow the CLI to run without a lesson store
			logger.Warn("failed to initialize container, running in limited mode", "error", err)
		} else {
			logger.Error("failed to initialize container", "error", err)
			os.Exit(1)
		}
	} else {
		defer container.Close()
		cliApp = cli.NewApp(container)
	}

	// Set the CLI app
	cli.SetApp(cliApp)

	// Register commands
	cli.AddCommand(board.Cmd)
	cli.AddCommand(lesson.Cmd)

	// Execute CLI
	cli.ExecuteContext(ctx)
}
