package filestore

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
	"github.com/preston-bernstein/twin-reveal-service/internal/testutil"
)

func newStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "data", "leaderboard.json"), opts...)
	require.NoError(t, err)
	return s
}

func TestNewCreatesDataDir(t *testing.T) {
	s := newStore(t)
	info, err := os.Stat(filepath.Dir(s.Path()))
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestListMissingFileIsEmpty(t *testing.T) {
	s := newStore(t)
	list, err := s.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.NotNil(t, list)
}

func TestCreatePersistsPrettyJSON(t *testing.T) {
	at := time.UnixMilli(1_700_000_000_000)
	s := newStore(t, WithClock(testutil.NowAt(at)))

	g, err := s.Create(context.Background(), guesses.Input{Name: "Alice", Twin1: guesses.Girl, Twin2: guesses.Girl, Timestamp: 42})
	require.NoError(t, err)
	assert.Equal(t, "1700000000000", g.ID)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "[\n  {\n    \"id\": \"1700000000000\""))

	list, err := s.List(context.Background())
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, g, list[0])
}

func TestCreateBumpsCollidingIDs(t *testing.T) {
	at := time.UnixMilli(1000)
	s := newStore(t, WithClock(testutil.NowAt(at)))
	in := guesses.Input{Name: "A", Twin1: guesses.Boy, Twin2: guesses.Boy, Timestamp: 1}

	a, err := s.Create(context.Background(), in)
	require.NoError(t, err)
	b, err := s.Create(context.Background(), in)
	require.NoError(t, err)

	assert.Equal(t, "1000", a.ID)
	assert.Equal(t, "1001", b.ID)
}

func TestCorruptFileIsPersistenceError(t *testing.T) {
	s := newStore(t)
	require.NoError(t, os.WriteFile(s.Path(), []byte("{not json"), 0o644))

	_, err := s.List(context.Background())
	assert.ErrorIs(t, err, store.ErrLoadFailed)

	_, err = s.Create(context.Background(), guesses.Input{Name: "A", Twin1: guesses.Boy, Twin2: guesses.Boy, Timestamp: 1})
	assert.ErrorIs(t, err, store.ErrSubmitFailed)

	data, err := os.ReadFile(s.Path())
	require.NoError(t, err)
	assert.Equal(t, "{not json", string(data))
}

func TestSubscribeSeesCreates(t *testing.T) {
	s := newStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	got := make(chan int, 4)
	go func() {
		_ = s.Subscribe(ctx, func(list []guesses.Guess) { got <- len(list) })
	}()

	assert.Equal(t, 0, recv(t, got))
	_, err := s.Create(context.Background(), guesses.Input{Name: "A", Twin1: guesses.Boy, Twin2: guesses.Girl, Timestamp: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, recv(t, got))
}

func recv(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for delivery")
		return 0
	}
}
