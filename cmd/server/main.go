package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/preston-bernstein/twin-reveal-service/internal/config"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/server"
)

const appVersion = "dev"

func main() {
	if os.Getenv("SKIP_SERVER_RUN") == "1" {
		return
	}
	os.Exit(run())
}

func run() int {
	dotenvErr := config.LoadDotEnv(".env")
	cfg := config.Load()
	version := cfg.Version
	if version == "" {
		version = appVersion
	}
	logger := logging.NewLogger(logging.Config{
		Level:   cfg.Log.Level,
		Format:  cfg.Log.Format,
		Service: "twin-reveal-service",
		Version: version,
	})
	if dotenvErr != nil {
		logging.Warn(logger, "ignoring unreadable .env", "error", dotenvErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, logger)
	if err != nil {
		logging.Error(logger, "server setup failed", err, slog.String(logging.FieldBackend, cfg.Storage.Backend))
		return 1
	}
	srv.Run(ctx, stop)
	return 0
}
