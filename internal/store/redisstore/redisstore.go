package redisstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

const (
	// ListKey holds one JSON record per guess in insertion order.
	ListKey = "gender_guesses"
	// ChangedChannel receives the new guess id after every create.
	ChangedChannel = "gender_guesses:changed"
)

var errSubscriptionClosed = errors.New("redis subscription closed")

// Store keeps guesses in a Redis list and announces changes over pub/sub.
type Store struct {
	rdb   *redis.Client
	newID func() string
}

// New wraps an existing client.
func New(rdb *redis.Client) *Store {
	return &Store{rdb: rdb, newID: uuid.NewString}
}

// Open parses a redis:// URL and checks the connection.
func Open(ctx context.Context, rawURL string) (*Store, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return New(rdb), nil
}

func (s *Store) List(ctx context.Context) ([]guesses.Guess, error) {
	raw, err := s.rdb.LRange(ctx, ListKey, 0, -1).Result()
	if err != nil {
		return nil, store.LoadError(store.BackendRedis, store.KindPersistence, err)
	}
	list := make([]guesses.Guess, 0, len(raw))
	for _, item := range raw {
		var g guesses.Guess
		if err := json.Unmarshal([]byte(item), &g); err != nil {
			return nil, store.LoadError(store.BackendRedis, store.KindPersistence, fmt.Errorf("decode record: %w", err))
		}
		list = append(list, g)
	}
	return list, nil
}

func (s *Store) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	g := in.WithID(s.newID())
	raw, err := json.Marshal(g)
	if err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendRedis, store.KindPersistence, err)
	}
	_, err = s.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, ListKey, raw)
		pipe.Publish(ctx, ChangedChannel, g.ID)
		return nil
	})
	if err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendRedis, store.KindPersistence, err)
	}
	return g, nil
}

// Subscribe re-lists on every change message. The channel subscription is confirmed
// before the initial read so no create between the two is missed.
func (s *Store) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	pubsub := s.rdb.Subscribe(ctx, ChangedChannel)
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return &store.Error{Op: store.OpSubscribe, Backend: store.BackendRedis, Kind: store.KindPersistence, Err: err}
	}

	deliver := store.Monotonic(onChange)
	refresh := func() error {
		list, err := s.List(ctx)
		if err != nil {
			return err
		}
		deliver(list)
		return nil
	}
	if err := refresh(); err != nil {
		return err
	}

	messages := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-messages:
			if !ok {
				return &store.Error{Op: store.OpSubscribe, Backend: store.BackendRedis, Kind: store.KindPersistence, Err: errSubscriptionClosed}
			}
			if err := refresh(); err != nil {
				if ctx.Err() != nil {
					return nil
				}
				return err
			}
		}
	}
}

// Close releases the client.
func (s *Store) Close() error {
	return s.rdb.Close()
}
