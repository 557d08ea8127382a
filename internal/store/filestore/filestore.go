package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

// DefaultPath is used when no data file is configured.
const DefaultPath = "data/leaderboard.json"

// Store persists guesses as a pretty-printed JSON array in a single file.
// Writes from this process are serialized; separate processes race last-writer-wins.
type Store struct {
	path     string
	now      func() time.Time
	notifier *store.Notifier

	mu     sync.Mutex
	lastID int64
}

// Option customizes a Store.
type Option func(*Store)

// WithClock overrides the id clock (tests).
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// New returns a Store backed by path and makes sure its directory exists.
func New(path string, opts ...Option) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	s := &Store{
		path:     path,
		now:      time.Now,
		notifier: store.NewNotifier(),
	}
	for _, opt := range opts {
		opt(s)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	return s, nil
}

// Path returns the data file location.
func (s *Store) Path() string {
	return s.path
}

// List reads the file. A missing file is an empty leaderboard.
func (s *Store) List(ctx context.Context) ([]guesses.Guess, error) {
	if err := ctx.Err(); err != nil {
		return nil, store.LoadError(store.BackendFile, store.KindPersistence, err)
	}
	list, err := s.read()
	if err != nil {
		return nil, store.LoadError(store.BackendFile, store.KindPersistence, err)
	}
	return list, nil
}

// Create appends one record and rewrites the file.
func (s *Store) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	if err := ctx.Err(); err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendFile, store.KindPersistence, err)
	}

	s.mu.Lock()
	list, err := s.read()
	if err != nil {
		s.mu.Unlock()
		return guesses.Guess{}, store.SubmitError(store.BackendFile, store.KindPersistence, err)
	}
	g := in.WithID(s.nextID())
	list = append(list, g)
	if err := s.write(list); err != nil {
		s.mu.Unlock()
		return guesses.Guess{}, store.SubmitError(store.BackendFile, store.KindPersistence, err)
	}
	s.mu.Unlock()

	s.notifier.Notify(list)
	return g, nil
}

// Subscribe delivers the list now and after every Create made through this Store.
func (s *Store) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	return store.SubscribeLocal(ctx, s.notifier, s.List, onChange)
}

// nextID must be called with mu held.
func (s *Store) nextID() string {
	id := s.now().UnixMilli()
	if id <= s.lastID {
		id = s.lastID + 1
	}
	s.lastID = id
	return strconv.FormatInt(id, 10)
}

func (s *Store) read() ([]guesses.Guess, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []guesses.Guess{}, nil
		}
		return nil, err
	}
	var list []guesses.Guess
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("decode %s: %w", s.path, err)
	}
	if list == nil {
		list = []guesses.Guess{}
	}
	return list, nil
}

func (s *Store) write(list []guesses.Guess) error {
	data, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return err
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
