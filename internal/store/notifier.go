package store

import (
	"context"
	"sync"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// Notifier fans list snapshots out to in-process subscribers.
type Notifier struct {
	mu   sync.Mutex
	next int
	subs map[int]func([]guesses.Guess)
}

// NewNotifier constructs an empty Notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[int]func([]guesses.Guess))}
}

// Add registers fn and returns a function that removes it.
func (n *Notifier) Add(fn func([]guesses.Guess)) func() {
	n.mu.Lock()
	defer n.mu.Unlock()
	id := n.next
	n.next++
	n.subs[id] = fn
	return func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		delete(n.subs, id)
	}
}

// Len returns the number of registered subscribers.
func (n *Notifier) Len() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.subs)
}

// Notify delivers a copy of list to every subscriber.
func (n *Notifier) Notify(list []guesses.Guess) {
	n.mu.Lock()
	fns := make([]func([]guesses.Guess), 0, len(n.subs))
	for _, fn := range n.subs {
		fns = append(fns, fn)
	}
	n.mu.Unlock()

	for _, fn := range fns {
		fn(Clone(list))
	}
}

// Clone copies a guess slice so callers never share backing arrays.
func Clone(list []guesses.Guess) []guesses.Guess {
	out := make([]guesses.Guess, len(list))
	copy(out, list)
	return out
}

// Monotonic serializes deliveries and drops snapshots shorter than one already delivered.
// Guesses are never deleted, so a shorter list is always stale.
func Monotonic(fn func([]guesses.Guess)) func([]guesses.Guess) {
	var (
		mu      sync.Mutex
		started bool
		last    int
	)
	return func(list []guesses.Guess) {
		mu.Lock()
		defer mu.Unlock()
		if started && len(list) < last {
			return
		}
		started = true
		last = len(list)
		fn(list)
	}
}

// SubscribeLocal implements Subscriber for stores that announce changes through a Notifier.
func SubscribeLocal(ctx context.Context, n *Notifier, list func(context.Context) ([]guesses.Guess, error), onChange func([]guesses.Guess)) error {
	deliver := Monotonic(onChange)
	remove := n.Add(deliver)
	defer remove()

	initial, err := list(ctx)
	if err != nil {
		return err
	}
	deliver(initial)

	<-ctx.Done()
	return nil
}
