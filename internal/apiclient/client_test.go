package apiclient

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"

	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
)

func TestListDecodesGuesses(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != guessesPath {
			t.Fatalf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode([]guesses.Guess{{ID: "1", Name: "Alice", Twin1: guesses.Girl, Twin2: guesses.Girl, Timestamp: 1}})
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL + "/"})
	list, err := c.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(list) != 1 || list[0].Name != "Alice" {
		t.Fatalf("unexpected list %+v", list)
	}
}

func TestListServerErrorIsLoadFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to read leaderboard"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).List(context.Background())
	if !errors.Is(err, store.ErrLoadFailed) {
		t.Fatalf("expected load failure, got %v", err)
	}
	if IsConnectivity(err) {
		t.Fatalf("server error should not be a connectivity error")
	}
}

func TestListUnreachableIsConnectivity(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	_, err := NewClient(Config{BaseURL: url}).List(context.Background())
	if !errors.Is(err, store.ErrLoadFailed) || !IsConnectivity(err) {
		t.Fatalf("expected connectivity load failure, got %v", err)
	}
}

func TestCreatePostsInput(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Fatalf("expected POST, got %s", r.Method)
		}
		var in guesses.Input
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(in.WithID("new-id"))
	}))
	defer srv.Close()

	created, err := NewClient(Config{BaseURL: srv.URL}).Create(context.Background(), guesses.Input{Name: "Bob", Twin1: guesses.Boy, Twin2: guesses.Girl, Timestamp: 9})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.ID != "new-id" || created.Name != "Bob" || created.Timestamp != 9 {
		t.Fatalf("unexpected guess %+v", created)
	}
}

func TestCreateBadRequestIsValidation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"error":"Missing required fields","requestId":"abc"}`))
	}))
	defer srv.Close()

	_, err := NewClient(Config{BaseURL: srv.URL}).Create(context.Background(), guesses.Input{})
	if !errors.Is(err, store.ErrSubmitFailed) || !errors.Is(err, guesses.ErrValidation) {
		t.Fatalf("expected validation submit failure, got %v", err)
	}
	var vErr *guesses.ValidationError
	if !errors.As(err, &vErr) || vErr.Message != guesses.MessageMissingFields {
		t.Fatalf("expected server message, got %v", err)
	}
}

func TestSubscribeReadsFeed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != subscribePath {
			http.NotFound(w, r)
			return
		}
		conn, err := websocket.Accept(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "")
		ctx := r.Context()
		_ = wsjson.Write(ctx, conn, guesses.NewFeedMessage(nil))
		_ = wsjson.Write(ctx, conn, map[string]string{"type": "ping"})
		_ = wsjson.Write(ctx, conn, guesses.NewFeedMessage([]guesses.Guess{{ID: "1"}}))
		_, _, _ = conn.Read(ctx)
	}))
	defer srv.Close()

	c := NewClient(Config{BaseURL: srv.URL})
	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan int, 4)
	done := make(chan error, 1)
	go func() { done <- c.Subscribe(ctx, func(list []guesses.Guess) { got <- len(list) }) }()

	for _, want := range []int{0, 1} {
		select {
		case n := <-got:
			if n != want {
				t.Fatalf("expected %d guesses, got %d", want, n)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for feed")
		}
	}
	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected nil after cancel, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("subscribe did not stop")
	}
}

func TestWebsocketURL(t *testing.T) {
	cases := map[string]string{
		"http://localhost:3000": "ws://localhost:3000/api/guesses/subscribe",
		"https://party.example": "wss://party.example/api/guesses/subscribe",
	}
	for base, want := range cases {
		got, err := websocketURL(base, subscribePath)
		if err != nil || got != want {
			t.Fatalf("websocketURL(%q) = %q, %v; want %q", base, got, err, want)
		}
	}
	if normalizeBaseURL("") != defaultBaseURL {
		t.Fatalf("expected default base url")
	}
}
