package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
)

// Instrumented wraps a Gateway with per-operation metrics and failure logging.
// It never retries: a failed call is reported once and returned to the caller.
type Instrumented struct {
	inner   Gateway
	backend string
	logger  *slog.Logger
	metrics *metrics.Recorder
}

// NewInstrumented wraps inner, labelling metrics and logs with backend.
func NewInstrumented(inner Gateway, backend string, logger *slog.Logger, recorder *metrics.Recorder) *Instrumented {
	return &Instrumented{
		inner:   inner,
		backend: backend,
		logger:  logger,
		metrics: recorder,
	}
}

// Backend returns the wrapped backend name.
func (g *Instrumented) Backend() string {
	return g.backend
}

// Unwrap exposes the wrapped gateway.
func (g *Instrumented) Unwrap() Gateway {
	return g.inner
}

func (g *Instrumented) List(ctx context.Context) ([]guesses.Guess, error) {
	start := time.Now()
	list, err := g.inner.List(ctx)
	g.observe(ctx, OpList, start, err, slog.Int(logging.FieldCount, len(list)))
	return list, err
}

func (g *Instrumented) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	start := time.Now()
	created, err := g.inner.Create(ctx, in)
	g.observe(ctx, OpCreate, start, err, slog.String(logging.FieldGuessID, created.ID))
	return created, err
}

// CanSubscribe reports whether the wrapped gateway supports push updates.
func (g *Instrumented) CanSubscribe() bool {
	_, ok := SubscriberOf(g.inner)
	return ok
}

func (g *Instrumented) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	sub, ok := SubscriberOf(g.inner)
	if !ok {
		return ErrSubscribeUnsupported
	}
	logging.Info(g.logger, "storage subscription started", slog.String(logging.FieldBackend, g.backend))
	err := sub.Subscribe(ctx, onChange)
	if err != nil {
		logging.Error(g.logger, "storage subscription failed", err, slog.String(logging.FieldBackend, g.backend))
	}
	return err
}

// Close releases resources held by the wrapped gateway.
func (g *Instrumented) Close() error {
	return Close(g.inner)
}

func (g *Instrumented) observe(ctx context.Context, op string, start time.Time, err error, attrs ...any) {
	duration := time.Since(start)
	g.metrics.RecordStorageOp(g.backend, op, duration, err)

	logger := logging.FromContext(ctx, g.logger)
	args := append([]any{
		slog.String(logging.FieldBackend, g.backend),
		slog.String(logging.FieldOperation, op),
		slog.Int64(logging.FieldDurationMS, duration.Milliseconds()),
	}, attrs...)
	if err != nil {
		logging.Error(logger, "storage operation failed", err, args...)
		return
	}
	logging.Debug(logger, "storage operation complete", args...)
}
