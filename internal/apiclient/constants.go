package apiclient

import "time"

const (
	defaultBaseURL     = "http://localhost:3000"
	defaultHTTPTimeout = 10 * time.Second
	dialTimeout        = 10 * time.Second
	maxErrorBody       = 512

	guessesPath   = "/api/guesses"
	subscribePath = "/api/guesses/subscribe"
)
