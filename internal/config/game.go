package config

import (
	"os"
	"strings"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
)

// loadTarget reads the actual twin genders; unknown values keep the default for that twin.
func loadTarget() guesses.TargetPair {
	target := guesses.DefaultTarget
	if g, ok := guesses.ParseGender(os.Getenv(envTargetTwin1)); ok {
		target.Twin1 = g
	}
	if g, ok := guesses.ParseGender(os.Getenv(envTargetTwin2)); ok {
		target.Twin2 = g
	}
	return target
}

func loadSourceMode() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(envSource))) {
	case sourcePoll:
		return sourcePoll
	default:
		return sourceSubscribe
	}
}
