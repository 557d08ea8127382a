package store

import (
	"testing"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

func TestNotifierAddRemove(t *testing.T) {
	n := NewNotifier()
	calls := 0
	remove := n.Add(func([]guesses.Guess) { calls++ })
	if n.Len() != 1 {
		t.Fatalf("expected 1 subscriber, got %d", n.Len())
	}

	n.Notify([]guesses.Guess{{ID: "1"}})
	remove()
	n.Notify([]guesses.Guess{{ID: "1"}, {ID: "2"}})

	if calls != 1 {
		t.Fatalf("expected exactly one delivery, got %d", calls)
	}
	if n.Len() != 0 {
		t.Fatalf("expected no subscribers after remove")
	}
}

func TestNotifierDeliversCopies(t *testing.T) {
	n := NewNotifier()
	list := []guesses.Guess{{ID: "1", Name: "Alice"}}
	n.Add(func(got []guesses.Guess) { got[0].Name = "mutated" })
	n.Notify(list)
	if list[0].Name != "Alice" {
		t.Fatalf("expected subscriber to receive a copy")
	}
}

func TestMonotonicDropsStaleSnapshots(t *testing.T) {
	var lens []int
	deliver := Monotonic(func(list []guesses.Guess) { lens = append(lens, len(list)) })

	deliver(make([]guesses.Guess, 2))
	deliver(make([]guesses.Guess, 1))
	deliver(make([]guesses.Guess, 2))
	deliver(make([]guesses.Guess, 3))

	want := []int{2, 2, 3}
	if len(lens) != len(want) {
		t.Fatalf("expected %v, got %v", want, lens)
	}
	for i := range want {
		if lens[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, lens)
		}
	}
}

func TestSubscriberOf(t *testing.T) {
	if _, ok := SubscriberOf(nil); ok {
		t.Fatalf("expected nil gateway to have no subscriber")
	}
	if _, ok := SubscriberOf(NewMemoryStore()); !ok {
		t.Fatalf("expected memory store to subscribe")
	}
	wrapped := NewInstrumented(listOnly{}, "stub", nil, nil)
	if _, ok := SubscriberOf(wrapped); ok {
		t.Fatalf("expected wrapper over list-only gateway to report no subscriber")
	}
}
