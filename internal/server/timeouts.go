package server

import "time"

// WriteTimeout stays zero: the leaderboard feed holds hijacked connections open, and
// every other response is small.
const (
	readHeaderTimeout = 5 * time.Second
	readTimeout       = 10 * time.Second
	idleTimeout       = 60 * time.Second
)

// shutdownTimeout remains a var for tests to override.
var shutdownTimeout = 10 * time.Second
