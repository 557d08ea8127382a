package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	appguesses "github.com/preston-bernstein/twin-reveal-service/internal/app/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

const maxBodyBytes = 4 << 10

// ReadyFunc reports whether the leaderboard has data and, if not, why.
type ReadyFunc func() (bool, string)

// Handler wires HTTP routes to the guess service.
type Handler struct {
	svc    *appguesses.Service
	logger *slog.Logger
	ready  ReadyFunc
	feed   http.Handler
	qrSize int
}

// NewHandler constructs a Handler. feed serves the websocket leaderboard stream and may be nil.
func NewHandler(svc *appguesses.Service, logger *slog.Logger, ready ReadyFunc, feed http.Handler) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger,
		ready:  ready,
		feed:   feed,
		qrSize: defaultQRSize,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := r.Context().Err(); err != nil {
		writeError(w, r, http.StatusServiceUnavailable, "shutting down", h.logger)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"}, h.logger)
}

// Ready reports readiness for traffic once the leaderboard source has delivered data.
func (h *Handler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.ready == nil {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	ok, reason := h.ready()
	if ok {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ready"}, h.logger)
		return
	}
	if reason == "" {
		reason = "not ready"
	}
	writeError(w, r, http.StatusServiceUnavailable, reason, h.logger)
}

// ListGuesses returns every stored guess in storage order.
func (h *Handler) ListGuesses(w http.ResponseWriter, r *http.Request) {
	list, err := h.svc.List(r.Context())
	if err != nil {
		logging.Error(loggerFromContext(r, h.logger), "list guesses failed", err)
		writeError(w, r, http.StatusInternalServerError, msgReadFailed, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, list, h.logger)
}

// CreateGuess validates and stores one submission.
func (h *Handler) CreateGuess(w http.ResponseWriter, r *http.Request) {
	var in guesses.Input
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&in); err != nil {
		if errors.Is(err, io.EOF) {
			writeError(w, r, http.StatusBadRequest, guesses.MessageMissingFields, h.logger)
			return
		}
		writeError(w, r, http.StatusBadRequest, msgInvalidJSON, h.logger)
		return
	}

	created, err := h.svc.Submit(r.Context(), in)
	if err != nil {
		var vErr *guesses.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, r, http.StatusBadRequest, vErr.Message, h.logger)
			return
		}
		logging.Error(loggerFromContext(r, h.logger), "create guess failed", err)
		writeError(w, r, http.StatusInternalServerError, msgSubmitFailed, h.logger)
		return
	}

	logging.Info(loggerFromContext(r, h.logger), "guess stored", slog.String(logging.FieldGuessID, created.ID))
	writeJSON(w, http.StatusCreated, created, h.logger)
}

// Leaderboard returns the aggregated view for the configured target pair.
func (h *Handler) Leaderboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Leaderboard(r.Context())
	if err != nil {
		logging.Error(loggerFromContext(r, h.logger), "leaderboard failed", err)
		writeError(w, r, http.StatusInternalServerError, msgReadFailed, h.logger)
		return
	}
	writeJSON(w, http.StatusOK, summary, h.logger)
}

// Subscribe hands the request to the live feed.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	if h.feed == nil {
		writeError(w, r, http.StatusServiceUnavailable, "live updates unavailable", h.logger)
		return
	}
	h.feed.ServeHTTP(w, r)
}

// NotFound answers unknown API routes with JSON.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusNotFound, msgNotFound, h.logger)
}
