package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

// Config controls how the client reaches the guess API.
type Config struct {
	BaseURL    string
	HTTPClient *http.Client
}

// Client is a storage gateway backed by the HTTP API.
type Client struct {
	baseURL    string
	httpClient httpDoer
}

// NewClient constructs a client; an empty BaseURL targets the local server.
func NewClient(cfg Config) *Client {
	return &Client{
		baseURL:    normalizeBaseURL(cfg.BaseURL),
		httpClient: resolveHTTPClient(cfg.HTTPClient),
	}
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type errorBody struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId,omitempty"`
}

// List fetches every stored guess.
func (c *Client) List(ctx context.Context) ([]guesses.Guess, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+guessesPath, nil)
	if err != nil {
		return nil, store.LoadError(store.BackendAPI, store.KindConnectivity, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, store.LoadError(store.BackendAPI, store.KindConnectivity, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, store.LoadError(store.BackendAPI, store.KindPersistence, statusError(resp))
	}
	var list []guesses.Guess
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, store.LoadError(store.BackendAPI, store.KindConnectivity, fmt.Errorf("decode guesses: %w", err))
	}
	if list == nil {
		list = []guesses.Guess{}
	}
	return list, nil
}

// Create submits one guess and returns the stored record.
func (c *Client) Create(ctx context.Context, in guesses.Input) (guesses.Guess, error) {
	body, err := json.Marshal(in)
	if err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendAPI, store.KindConnectivity, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+guessesPath, bytes.NewReader(body))
	if err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendAPI, store.KindConnectivity, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendAPI, store.KindConnectivity, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusBadRequest:
		msg := readErrorMessage(resp)
		return guesses.Guess{}, store.SubmitError(store.BackendAPI, store.KindPersistence, &guesses.ValidationError{Message: msg})
	case resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK:
		return guesses.Guess{}, store.SubmitError(store.BackendAPI, store.KindPersistence, statusError(resp))
	}

	var created guesses.Guess
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		return guesses.Guess{}, store.SubmitError(store.BackendAPI, store.KindConnectivity, fmt.Errorf("decode guess: %w", err))
	}
	return created, nil
}

// Subscribe reads the server's live feed until ctx ends or the connection drops.
func (c *Client) Subscribe(ctx context.Context, onChange func([]guesses.Guess)) error {
	wsURL, err := websocketURL(c.baseURL, subscribePath)
	if err != nil {
		return subscribeError(err)
	}
	dialCtx, cancel := context.WithTimeout(ctx, dialTimeout)
	conn, _, err := websocket.Dial(dialCtx, wsURL, nil)
	cancel()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return subscribeError(err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	deliver := store.Monotonic(onChange)
	for {
		var msg guesses.FeedMessage
		if err := wsjson.Read(ctx, conn, &msg); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return subscribeError(err)
		}
		if msg.Type != guesses.FeedTypeGuesses {
			continue
		}
		deliver(msg.Guesses)
	}
}

func subscribeError(err error) error {
	return &store.Error{Op: store.OpSubscribe, Backend: store.BackendAPI, Kind: store.KindConnectivity, Err: err}
}

func statusError(resp *http.Response) error {
	msg := readErrorMessage(resp)
	if msg == "" {
		return fmt.Errorf("unexpected status %d", resp.StatusCode)
	}
	return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, msg)
}

// readErrorMessage prefers the JSON error field and falls back to the raw body.
func readErrorMessage(resp *http.Response) string {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(raw, &body); err == nil && body.Error != "" {
		return body.Error
	}
	return strings.TrimSpace(string(raw))
}

// IsConnectivity reports whether err means the API could not be reached.
func IsConnectivity(err error) bool {
	sErr, ok := store.AsError(err)
	return ok && sErr.Kind == store.KindConnectivity
}

var (
	_ store.Gateway    = (*Client)(nil)
	_ store.Subscriber = (*Client)(nil)
)
