package poller

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

type stubLister struct {
	mu    sync.Mutex
	list  []guesses.Guess
	err   error
	calls atomic.Int32
}

func (s *stubLister) List(ctx context.Context) ([]guesses.Guess, error) {
	_ = ctx
	s.calls.Add(1)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	out := make([]guesses.Guess, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *stubLister) set(list []guesses.Guess, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.list = list
	s.err = err
}

func TestPollerDeliversInitialListEvenWhenEmpty(t *testing.T) {
	lister := &stubLister{}
	got := make(chan []guesses.Guess, 4)
	p := New(lister, func(list []guesses.Guess) { got <- list }, nil, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)

	select {
	case list := <-got:
		if len(list) != 0 {
			t.Fatalf("expected empty initial list, got %d", len(list))
		}
	case <-time.After(500 * time.Millisecond):
		t.Fatal("timed out waiting for initial fetch")
	}
	if !p.Status().IsReady() {
		t.Fatalf("expected ready after initial success")
	}
	_ = p.Stop(context.Background())
}

func TestPollerDeliversOnlyOnChange(t *testing.T) {
	p := New(&stubLister{}, nil, nil, nil, time.Hour)
	var deliveries int
	p.sink = func([]guesses.Guess) { deliveries++ }
	lister := p.lister.(*stubLister)
	ctx := context.Background()

	p.fetchOnce(ctx)
	p.fetchOnce(ctx)
	lister.set([]guesses.Guess{{ID: "1", Timestamp: 1}}, nil)
	p.fetchOnce(ctx)
	p.fetchOnce(ctx)

	if deliveries != 2 {
		t.Fatalf("expected 2 deliveries, got %d", deliveries)
	}
}

func TestPollerFailuresAffectReadiness(t *testing.T) {
	lister := &stubLister{}
	p := New(lister, nil, nil, nil, time.Hour)
	ctx := context.Background()

	p.fetchOnce(ctx)
	lister.set(nil, errors.New("down"))
	for i := 0; i < 3; i++ {
		p.fetchOnce(ctx)
	}
	st := p.Status()
	if st.ConsecutiveFailures != 3 || st.LastError != "down" {
		t.Fatalf("unexpected status %+v", st)
	}
	if st.IsReady() {
		t.Fatalf("expected not ready after 3 failures")
	}

	lister.set(nil, nil)
	p.fetchOnce(ctx)
	if !p.Status().IsReady() {
		t.Fatalf("expected recovery after success")
	}
}

func TestPollerStopsOnContextCancel(t *testing.T) {
	lister := &stubLister{}
	p := New(lister, nil, nil, nil, 5*time.Millisecond)
	ctx, cancel := context.WithCancel(context.Background())
	p.Start(ctx)

	time.Sleep(20 * time.Millisecond)
	cancel()
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("stop returned error: %v", err)
	}

	callsAfterStop := lister.calls.Load()
	time.Sleep(20 * time.Millisecond)
	if lister.calls.Load() != callsAfterStop {
		t.Fatalf("expected no additional fetches after stop; before=%d after=%d", callsAfterStop, lister.calls.Load())
	}
}

func TestPollerStopIsIdempotent(t *testing.T) {
	p := New(&stubLister{}, nil, nil, nil, time.Hour)
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("first stop returned error: %v", err)
	}
	if err := p.Stop(context.Background()); err != nil {
		t.Fatalf("second stop returned error: %v", err)
	}
}

func TestPollerStartIsIdempotent(t *testing.T) {
	lister := &stubLister{}
	p := New(lister, nil, nil, nil, time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p.Start(ctx)
	p.Start(ctx)
	time.Sleep(20 * time.Millisecond)
	_ = p.Stop(context.Background())

	if got := lister.calls.Load(); got != 1 {
		t.Fatalf("expected a single initial fetch, got %d", got)
	}
}

func TestNewDefaultsInterval(t *testing.T) {
	p := New(&stubLister{}, nil, nil, nil, 0)
	if p.Interval() != DefaultInterval {
		t.Fatalf("expected default interval, got %v", p.Interval())
	}
}
