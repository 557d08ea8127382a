package http

import (
	"log/slog"
	nethttp "net/http"

	"github.com/preston-bernstein/twin-reveal-service/internal/http/handlers"
	"github.com/preston-bernstein/twin-reveal-service/internal/http/middleware"
	"github.com/preston-bernstein/twin-reveal-service/internal/metrics"
)

// NewRouter registers HTTP routes on a ServeMux. Unmatched paths, including unknown
// API routes and wrong methods, fall through to spa.
func NewRouter(handler *handlers.Handler, spa nethttp.Handler) nethttp.Handler {
	mux := nethttp.NewServeMux()
	mux.HandleFunc("GET /health", handler.Health)
	mux.HandleFunc("GET /ready", handler.Ready)
	mux.HandleFunc("GET /api/guesses", handler.ListGuesses)
	mux.HandleFunc("POST /api/guesses", handler.CreateGuess)
	mux.HandleFunc("GET /api/guesses/subscribe", handler.Subscribe)
	mux.HandleFunc("GET /api/leaderboard", handler.Leaderboard)
	mux.HandleFunc("GET /api/qr", handler.QR)
	if spa != nil {
		mux.Handle("/", spa)
	} else {
		mux.HandleFunc("/", handler.NotFound)
	}
	return mux
}

// Chain wraps the router with request logging, panic recovery and CORS, outermost first.
func Chain(router nethttp.Handler, logger *slog.Logger, recorder *metrics.Recorder, origins []string) nethttp.Handler {
	h := middleware.CORS(origins, router)
	h = middleware.Recover(logger, handlers.InternalErrorPage(), h)
	return middleware.LoggingMiddleware(logger, recorder, h)
}
