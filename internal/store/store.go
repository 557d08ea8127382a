package store

import (
	"context"
	"io"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendMemory   = "memory"
	BackendFile     = "file"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendAPI      = "api"
)

// Gateway is the storage contract shared by every backend.
// List returns records in storage order; Create assigns the id.
type Gateway interface {
	List(ctx context.Context) ([]guesses.Guess, error)
	Create(ctx context.Context, in guesses.Input) (guesses.Guess, error)
}

// Subscriber pushes the full list once on start and again after every change.
// Subscribe blocks until ctx ends (returning nil) or the subscription fails.
type Subscriber interface {
	Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error
}

// SubscriberOf returns the push capability of a gateway when it has one.
func SubscriberOf(gw Gateway) (Subscriber, bool) {
	if gw == nil {
		return nil, false
	}
	if c, ok := gw.(interface{ CanSubscribe() bool }); ok && !c.CanSubscribe() {
		return nil, false
	}
	sub, ok := gw.(Subscriber)
	return sub, ok
}

// Close releases backend resources when the gateway holds any.
func Close(gw Gateway) error {
	if c, ok := gw.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
