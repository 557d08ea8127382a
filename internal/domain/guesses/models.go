package guesses

import "strings"

// Gender is a single twin prediction.
type Gender string

const (
	Boy  Gender = "boy"
	Girl Gender = "girl"
)

// Valid reports whether g is one of the known genders.
func (g Gender) Valid() bool {
	return g == Boy || g == Girl
}

// Label renders the gender for people, e.g. "Girl".
func (g Gender) Label() string {
	switch g {
	case Boy:
		return "Boy"
	case Girl:
		return "Girl"
	default:
		return "?"
	}
}

// ParseGender normalizes raw input ("Girl", " boy ") into a Gender.
func ParseGender(raw string) (Gender, bool) {
	g := Gender(strings.ToLower(strings.TrimSpace(raw)))
	return g, g.Valid()
}

// Guess is a single participant's stored submission.
type Guess struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Twin1     Gender `json:"twin1"`
	Twin2     Gender `json:"twin2"`
	Timestamp int64  `json:"timestamp"`
}

// Input is a submission before storage assigns an id.
type Input struct {
	Name      string `json:"name" validate:"required"`
	Twin1     Gender `json:"twin1" validate:"required,oneof=boy girl"`
	Twin2     Gender `json:"twin2" validate:"required,oneof=boy girl"`
	Timestamp int64  `json:"timestamp" validate:"required"`
}

// WithID builds the stored record for an input.
func (in Input) WithID(id string) Guess {
	return Guess{
		ID:        id,
		Name:      in.Name,
		Twin1:     in.Twin1,
		Twin2:     in.Twin2,
		Timestamp: in.Timestamp,
	}
}

// Input strips the id from a stored guess.
func (g Guess) Input() Input {
	return Input{
		Name:      g.Name,
		Twin1:     g.Twin1,
		Twin2:     g.Twin2,
		Timestamp: g.Timestamp,
	}
}

// TargetPair holds the actual twin genders used to score guesses.
type TargetPair struct {
	Twin1 Gender `json:"twin1"`
	Twin2 Gender `json:"twin2"`
}

// DefaultTarget is used when no target is configured.
var DefaultTarget = TargetPair{Twin1: Girl, Twin2: Girl}

// Matches reports whether both twins of the guess equal the target.
func (t TargetPair) Matches(g Guess) bool {
	return g.Twin1 == t.Twin1 && g.Twin2 == t.Twin2
}

// Label renders the pair for people, e.g. "Girl / Boy".
func (t TargetPair) Label() string {
	return t.Twin1.Label() + " / " + t.Twin2.Label()
}

// FeedTypeGuesses tags a full-list push on the live leaderboard feed.
const FeedTypeGuesses = "guesses"

// FeedMessage is one frame of the live leaderboard feed.
type FeedMessage struct {
	Type    string  `json:"type"`
	Guesses []Guess `json:"guesses"`
}

// NewFeedMessage wraps a full list for the feed.
func NewFeedMessage(list []Guess) FeedMessage {
	if list == nil {
		list = []Guess{}
	}
	return FeedMessage{Type: FeedTypeGuesses, Guesses: list}
}
