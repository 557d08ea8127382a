package leaderboard

import (
	"fmt"
	"sort"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// Summary is the aggregated leaderboard view.
type Summary struct {
	Total           int                `json:"total"`
	CorrectCount    int                `json:"correctCount"`
	Percentage      float64            `json:"percentage"`
	PercentageLabel string             `json:"percentageLabel"`
	Target          guesses.TargetPair `json:"target"`
	Correct         []guesses.Guess    `json:"correct"`
	Guesses         []guesses.Guess    `json:"guesses"`
}

// SortByNewest returns a copy of list ordered by timestamp descending.
// Equal timestamps keep their storage order.
func SortByNewest(list []guesses.Guess) []guesses.Guess {
	out := make([]guesses.Guess, len(list))
	copy(out, list)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp > out[j].Timestamp
	})
	return out
}

// Summarize computes the leaderboard for list against target.
func Summarize(list []guesses.Guess, target guesses.TargetPair) Summary {
	sorted := SortByNewest(list)
	correct := make([]guesses.Guess, 0, len(sorted))
	for _, g := range sorted {
		if target.Matches(g) {
			correct = append(correct, g)
		}
	}

	var pct float64
	if len(sorted) > 0 {
		pct = float64(len(correct)) * 100 / float64(len(sorted))
	}
	return Summary{
		Total:           len(sorted),
		CorrectCount:    len(correct),
		Percentage:      pct,
		PercentageLabel: fmt.Sprintf("%.1f", pct),
		Target:          target,
		Correct:         correct,
		Guesses:         sorted,
	}
}
