package redisstore

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

func newTestStore(t *testing.T) (*Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis: %v", err)
	}
	t.Cleanup(mr.Close)
	s := New(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = s.Close() })
	return s, mr
}

func TestCreateAndListKeepInsertionOrder(t *testing.T) {
	s, mr := newTestStore(t)
	ctx := context.Background()

	a, err := s.Create(ctx, guesses.Input{Name: "Alice", Twin1: guesses.Girl, Twin2: guesses.Girl, Timestamp: 2})
	require.NoError(t, err)
	_, err = s.Create(ctx, guesses.Input{Name: "Bob", Twin1: guesses.Boy, Twin2: guesses.Girl, Timestamp: 1})
	require.NoError(t, err)

	list, err := s.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, a, list[0])
	assert.Equal(t, "Bob", list[1].Name)

	stored, err := mr.List(ListKey)
	require.NoError(t, err)
	assert.Len(t, stored, 2)
}

func TestListCorruptRecord(t *testing.T) {
	s, mr := newTestStore(t)
	_, err := mr.Push(ListKey, "not-json")
	require.NoError(t, err)

	_, err = s.List(context.Background())
	assert.ErrorIs(t, err, store.ErrLoadFailed)
}

func TestOpenPingsServer(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := Open(context.Background(), "redis://"+mr.Addr()+"/0")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	_, err = Open(context.Background(), "::not a url")
	assert.Error(t, err)
}

func TestSubscribeDeliversInitialAndAfterCreate(t *testing.T) {
	s, _ := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan int, 4)
	done := make(chan error, 1)
	go func() {
		done <- s.Subscribe(ctx, func(list []guesses.Guess) { got <- len(list) })
	}()

	assert.Equal(t, 0, recv(t, got))
	_, err := s.Create(context.Background(), guesses.Input{Name: "Alice", Twin1: guesses.Girl, Twin2: guesses.Girl, Timestamp: 1})
	require.NoError(t, err)
	assert.Equal(t, 1, recv(t, got))

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not stop")
	}
}

func recv(t *testing.T, ch <-chan int) int {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for delivery")
		return 0
	}
}
