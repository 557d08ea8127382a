package pgstore

import (
	"time"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// GenderGuess is the table row for one guess.
type GenderGuess struct {
	ID        string    `gorm:"primaryKey;type:varchar(36)"`
	Name      string    `gorm:"not null"`
	Twin1     string    `gorm:"type:varchar(8);not null"`
	Twin2     string    `gorm:"type:varchar(8);not null"`
	Timestamp int64     `gorm:"not null"`
	CreatedAt time.Time `gorm:"index"`
}

func (GenderGuess) TableName() string {
	return "gender_guesses"
}

func rowFromGuess(g guesses.Guess) GenderGuess {
	return GenderGuess{
		ID:        g.ID,
		Name:      g.Name,
		Twin1:     string(g.Twin1),
		Twin2:     string(g.Twin2),
		Timestamp: g.Timestamp,
	}
}

// Guess maps the row back to the domain record.
func (r GenderGuess) Guess() guesses.Guess {
	return guesses.Guess{
		ID:        r.ID,
		Name:      r.Name,
		Twin1:     guesses.Gender(r.Twin1),
		Twin2:     guesses.Gender(r.Twin2),
		Timestamp: r.Timestamp,
	}
}

func guessesFromRows(rows []GenderGuess) []guesses.Guess {
	out := make([]guesses.Guess, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.Guess())
	}
	return out
}
