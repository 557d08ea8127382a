package testutil

import (
	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// SampleGuess returns a stored guess fixture.
func SampleGuess(id, name string, twin1, twin2 guesses.Gender, timestamp int64) guesses.Guess {
	return guesses.Guess{
		ID:        id,
		Name:      name,
		Twin1:     twin1,
		Twin2:     twin2,
		Timestamp: timestamp,
	}
}

// SampleInput returns a valid submission for name.
func SampleInput(name string, twin1, twin2 guesses.Gender, timestamp int64) guesses.Input {
	return guesses.Input{Name: name, Twin1: twin1, Twin2: twin2, Timestamp: timestamp}
}

// SampleLeaderboard returns three guesses in storage order: one correct for girl/girl,
// one incorrect, one correct, with the newest last.
func SampleLeaderboard() []guesses.Guess {
	return []guesses.Guess{
		SampleGuess("1", "Alice", guesses.Girl, guesses.Girl, 1_700_000_000_000),
		SampleGuess("2", "Bob", guesses.Boy, guesses.Girl, 1_700_000_001_000),
		SampleGuess("3", "Cara", guesses.Girl, guesses.Girl, 1_700_000_002_000),
	}
}
