package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

type flakeyGateway struct {
	failures int
	kind     Kind
	calls    int
	creates  int
}

func (f *flakeyGateway) List(ctx context.Context) ([]guesses.Guess, error) {
	_ = ctx
	f.calls++
	if f.calls <= f.failures {
		return nil, LoadError(BackendAPI, f.kind, errors.New("boom"))
	}
	return []guesses.Guess{{ID: "ok"}}, nil
}

func (f *flakeyGateway) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	_ = ctx
	f.creates++
	return guesses.Guess{}, SubmitError(BackendAPI, KindConnectivity, errors.New("boom"))
}

func TestRetryingRetriesAndSucceeds(t *testing.T) {
	fg := &flakeyGateway{failures: 2, kind: KindConnectivity}
	r := NewRetrying(fg, nil, 3, time.Millisecond)

	list, err := r.List(context.Background())
	if err != nil {
		t.Fatalf("expected success, got error %v", err)
	}
	if len(list) != 1 || list[0].ID != "ok" {
		t.Fatalf("unexpected list %+v", list)
	}
	if fg.calls != 3 {
		t.Fatalf("expected 3 attempts, got %d", fg.calls)
	}
}

func TestRetryingStopsAfterMaxAttempts(t *testing.T) {
	fg := &flakeyGateway{failures: 5, kind: KindConnectivity}
	r := NewRetrying(fg, nil, 2, time.Millisecond)

	if _, err := r.List(context.Background()); !errors.Is(err, ErrLoadFailed) {
		t.Fatalf("expected load failure after retries, got %v", err)
	}
	if fg.calls != 2 {
		t.Fatalf("expected 2 attempts, got %d", fg.calls)
	}
}

func TestRetryingSkipsPersistenceFailures(t *testing.T) {
	fg := &flakeyGateway{failures: 5, kind: KindPersistence}
	r := NewRetrying(fg, nil, 3, time.Millisecond)

	if _, err := r.List(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if fg.calls != 1 {
		t.Fatalf("expected a single attempt, got %d", fg.calls)
	}
}

func TestRetryingNeverRetriesCreate(t *testing.T) {
	fg := &flakeyGateway{}
	r := NewRetrying(fg, nil, 3, time.Millisecond)

	if _, err := r.Create(context.Background(), guesses.Input{Name: "A"}); err == nil {
		t.Fatal("expected error")
	}
	if fg.creates != 1 {
		t.Fatalf("expected one create, got %d", fg.creates)
	}
}

func TestRetryingRespectsContextCancel(t *testing.T) {
	fg := &flakeyGateway{failures: 5, kind: KindConnectivity}
	r := NewRetrying(fg, nil, 5, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	if _, err := r.List(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestRetryingMirrorsSubscribe(t *testing.T) {
	if NewRetrying(listOnly{}, nil, 0, 0).CanSubscribe() {
		t.Fatal("expected no subscribe for list-only gateway")
	}
	if err := NewRetrying(listOnly{}, nil, 0, 0).Subscribe(context.Background(), nil); !errors.Is(err, ErrSubscribeUnsupported) {
		t.Fatalf("expected unsupported, got %v", err)
	}

	mem := NewMemoryStore()
	r := NewRetrying(mem, nil, 0, 0)
	if !r.CanSubscribe() {
		t.Fatal("expected memory store to subscribe through wrapper")
	}
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan int, 1)
	go func() {
		_ = r.Subscribe(ctx, func(list []guesses.Guess) {
			select {
			case got <- len(list):
			default:
			}
		})
	}()
	select {
	case n := <-got:
		if n != 0 {
			t.Fatalf("expected empty initial list, got %d", n)
		}
	case <-time.After(time.Second):
		t.Fatal("no initial delivery")
	}
	cancel()
}
