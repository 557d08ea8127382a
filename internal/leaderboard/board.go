package leaderboard

import (
	"sync"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// DefaultMaxMisses is how many authoritative reads a pending entry may be absent from
// before it is treated as lost.
const DefaultMaxMisses = 3

type pendingEntry struct {
	guess  guesses.Guess
	misses int
}

// Board is a client-side leaderboard copy: the last authoritative list plus
// optimistic entries that storage has not confirmed yet.
type Board struct {
	mu        sync.Mutex
	confirmed []guesses.Guess
	pending   []pendingEntry
	maxMisses int
	onLost    func(guesses.Guess)
}

// NewBoard returns an empty Board. onLost, when set, receives pending entries that expire.
func NewBoard(onLost func(guesses.Guess)) *Board {
	return &Board{maxMisses: DefaultMaxMisses, onLost: onLost}
}

// AppendPending shows a local submission before storage confirms it.
func (b *Board) AppendPending(g guesses.Guess) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.pending = append(b.pending, pendingEntry{guess: g})
}

// Pending returns the number of unconfirmed entries.
func (b *Board) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.pending)
}

// Reconcile replaces the confirmed list. Pending entries found in it are dropped;
// the rest age by one read and expire once they reach the miss limit.
// Expired entries are returned and reported to onLost.
func (b *Board) Reconcile(authoritative []guesses.Guess) []guesses.Guess {
	b.mu.Lock()
	b.confirmed = append([]guesses.Guess(nil), authoritative...)

	used := make([]bool, len(authoritative))
	kept := b.pending[:0]
	var lost []guesses.Guess
	for _, p := range b.pending {
		if idx := findMatch(authoritative, used, p.guess); idx >= 0 {
			used[idx] = true
			continue
		}
		p.misses++
		if p.misses >= b.maxMisses {
			lost = append(lost, p.guess)
			continue
		}
		kept = append(kept, p)
	}
	b.pending = kept
	onLost := b.onLost
	b.mu.Unlock()

	if onLost != nil {
		for _, g := range lost {
			onLost(g)
		}
	}
	return lost
}

// Snapshot returns confirmed records followed by pending ones.
func (b *Board) Snapshot() []guesses.Guess {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]guesses.Guess, 0, len(b.confirmed)+len(b.pending))
	out = append(out, b.confirmed...)
	for _, p := range b.pending {
		out = append(out, p.guess)
	}
	return out
}

// Summary aggregates the current snapshot.
func (b *Board) Summary(target guesses.TargetPair) Summary {
	return Summarize(b.Snapshot(), target)
}

// findMatch prefers an id match and falls back to name, twins and timestamp.
func findMatch(list []guesses.Guess, used []bool, g guesses.Guess) int {
	if g.ID != "" {
		for i, candidate := range list {
			if !used[i] && candidate.ID == g.ID {
				return i
			}
		}
	}
	for i, candidate := range list {
		if !used[i] && sameContent(candidate, g) {
			return i
		}
	}
	return -1
}

func sameContent(a, b guesses.Guess) bool {
	return a.Name == b.Name && a.Twin1 == b.Twin1 && a.Twin2 == b.Twin2 && a.Timestamp == b.Timestamp
}
