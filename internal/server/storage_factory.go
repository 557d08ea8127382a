package server

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/preston-bernstein/twin-reveal-service/internal/config"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
	"github.com/preston-bernstein/twin-reveal-service/internal/store/filestore"
	"github.com/preston-bernstein/twin-reveal-service/internal/store/pgstore"
	"github.com/preston-bernstein/twin-reveal-service/internal/store/redisstore"
)

// Overridable in tests.
var (
	openRedis    = func(ctx context.Context, url string) (store.Gateway, error) { return redisstore.Open(ctx, url) }
	openPostgres = func(ctx context.Context, dsn string, logger *slog.Logger) (store.Gateway, error) {
		return pgstore.Open(ctx, dsn, logger)
	}
)

// storageFactory opens the configured backend and wraps it with logging and metrics.
type storageFactory struct {
	logger  *slog.Logger
	metrics *metrics.Recorder
}

func newStorageFactory(logger *slog.Logger, recorder *metrics.Recorder) storageFactory {
	return storageFactory{logger: logger, metrics: recorder}
}

func (f storageFactory) build(ctx context.Context, cfg config.StorageConfig) (*store.Instrumented, error) {
	inner, err := f.open(ctx, cfg)
	if err != nil {
		return nil, err
	}
	logging.Info(f.logger, "storage ready", slog.String(logging.FieldBackend, cfg.Backend))
	return store.NewInstrumented(inner, cfg.Backend, f.logger, f.metrics), nil
}

func (f storageFactory) open(ctx context.Context, cfg config.StorageConfig) (store.Gateway, error) {
	switch cfg.Backend {
	case config.BackendMemory:
		return store.NewMemoryStore(), nil
	case config.BackendFile, "":
		path := cfg.DataFile
		if path == "" {
			path = filestore.DefaultPath
		}
		return filestore.New(path)
	case config.BackendRedis:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("storage backend %q requires REDIS_URL", cfg.Backend)
		}
		return openRedis(ctx, cfg.RedisURL)
	case config.BackendPostgres:
		if cfg.DatabaseURL == "" {
			return nil, fmt.Errorf("storage backend %q requires DATABASE_URL", cfg.Backend)
		}
		return openPostgres(ctx, cfg.DatabaseURL, f.logger)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
