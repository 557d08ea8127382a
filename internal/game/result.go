package game

import (
	"fmt"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// Result is what the reveal screen shows.
type Result struct {
	Actual       guesses.TargetPair
	Guess        guesses.Guess
	Twin1Correct bool
	Twin2Correct bool
	Correct      bool
	Message      string
}

// Score compares a guess with the actual pair.
func Score(g guesses.Guess, actual guesses.TargetPair) Result {
	r := Result{
		Actual:       actual,
		Guess:        g,
		Twin1Correct: g.Twin1 == actual.Twin1,
		Twin2Correct: g.Twin2 == actual.Twin2,
	}
	r.Correct = r.Twin1Correct && r.Twin2Correct
	if r.Correct {
		r.Message = fmt.Sprintf("Congratulations, %s! You guessed both genders correctly!", g.Name)
	} else {
		r.Message = fmt.Sprintf("Hope you had fun, %s! Better luck next time with the guessing!", g.Name)
	}
	return r
}
