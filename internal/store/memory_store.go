package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// MemoryStore keeps guesses in memory in insertion order.
type MemoryStore struct {
	mu       sync.RWMutex
	guesses  []guesses.Guess
	newID    func() string
	notifier *Notifier
}

// NewMemoryStore constructs a MemoryStore, optionally preloaded with records.
func NewMemoryStore(seed ...guesses.Guess) *MemoryStore {
	return &MemoryStore{
		guesses:  Clone(seed),
		newID:    uuid.NewString,
		notifier: NewNotifier(),
	}
}

// List returns a copy of the stored guesses.
func (s *MemoryStore) List(ctx context.Context) ([]guesses.Guess, error) {
	if err := ctx.Err(); err != nil {
		return nil, LoadError(BackendMemory, KindPersistence, err)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Clone(s.guesses), nil
}

// Create appends a guess with a fresh id.
func (s *MemoryStore) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	if err := ctx.Err(); err != nil {
		return guesses.Guess{}, SubmitError(BackendMemory, KindPersistence, err)
	}
	s.mu.Lock()
	g := in.WithID(s.newID())
	s.guesses = append(s.guesses, g)
	snapshot := Clone(s.guesses)
	s.mu.Unlock()

	s.notifier.Notify(snapshot)
	return g, nil
}

// Subscribe delivers the list now and after every Create.
func (s *MemoryStore) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	return SubscribeLocal(ctx, s.notifier, s.List, onChange)
}
