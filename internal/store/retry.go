package store

import (
	"context"
	"log/slog"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

const (
	defaultRetryAttempts = 3
	defaultBackoff       = 200 * time.Millisecond
)

type backoffFunc func(attempt int) time.Duration

// Retrying retries List on connectivity failures with linear backoff. Create is
// passed through untouched since a retried write may land twice.
type Retrying struct {
	inner       Gateway
	logger      *slog.Logger
	maxAttempts int
	backoffFn   backoffFunc
}

// NewRetrying wraps inner. If maxAttempts/backoff are <= 0, defaults are used.
func NewRetrying(inner Gateway, logger *slog.Logger, maxAttempts int, backoff time.Duration) *Retrying {
	if maxAttempts <= 0 {
		maxAttempts = defaultRetryAttempts
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &Retrying{
		inner:       inner,
		logger:      logger,
		maxAttempts: maxAttempts,
		backoffFn: func(attempt int) time.Duration {
			return time.Duration(attempt) * backoff
		},
	}
}

func (r *Retrying) List(ctx context.Context) ([]guesses.Guess, error) {
	var lastErr error

	for attempt := 1; attempt <= r.maxAttempts; attempt++ {
		list, err := r.inner.List(ctx)
		if err == nil {
			return list, nil
		}
		lastErr = err
		if !retryable(err) || attempt == r.maxAttempts {
			break
		}

		logging.Warn(logging.FromContext(ctx, r.logger), "list retry", "attempt", attempt, "max_attempts", r.maxAttempts, "err", err)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(r.backoffFn(attempt)):
		}
	}
	return nil, lastErr
}

func (r *Retrying) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	return r.inner.Create(ctx, in)
}

// CanSubscribe mirrors the wrapped gateway.
func (r *Retrying) CanSubscribe() bool {
	_, ok := SubscriberOf(r.inner)
	return ok
}

func (r *Retrying) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	sub, ok := SubscriberOf(r.inner)
	if !ok {
		return ErrSubscribeUnsupported
	}
	return sub.Subscribe(ctx, onChange)
}

func (r *Retrying) Close() error {
	return Close(r.inner)
}

func retryable(err error) bool {
	se, ok := AsError(err)
	return ok && se.Kind == KindConnectivity
}
