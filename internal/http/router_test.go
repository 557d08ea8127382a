package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	appguesses "github.com/preston-bernstein/twin-reveal-service/internal/app/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/domain/guesses"
	"github.com/preston-bernstein/twin-reveal-service/internal/http/handlers"
	"github.com/preston-bernstein/twin-reveal-service/internal/hub"
	"github.com/preston-bernstein/twin-reveal-service/internal/store"
	"github.com/preston-bernstein/twin-reveal-service/internal/testutil"
)

func newTestRouter(t *testing.T, mem *store.MemoryStore, feed http.Handler) http.Handler {
	t.Helper()
	svc := appguesses.NewService(mem, guesses.DefaultTarget, nil)
	h := handlers.NewHandler(svc, nil, nil, feed)
	return NewRouter(h, handlers.NewSPA(t.TempDir(), nil))
}

func TestRouterRoutesKnownPaths(t *testing.T) {
	router := newTestRouter(t, store.NewMemoryStore(testutil.SampleLeaderboard()...), nil)

	cases := map[string]int{
		"/health":          http.StatusOK,
		"/ready":           http.StatusOK,
		"/api/guesses":     http.StatusOK,
		"/api/leaderboard": http.StatusOK,
		"/api/qr":          http.StatusOK,
		"/api/unknown":     http.StatusNotFound,
	}

	for path, expected := range cases {
		rr := testutil.Serve(router, http.MethodGet, path, nil)
		if rr.Code != expected {
			t.Fatalf("route %s expected status %d, got %d", path, expected, rr.Code)
		}
	}
}

func TestRouterMethodMismatch(t *testing.T) {
	router := newTestRouter(t, store.NewMemoryStore(), nil)
	rr := testutil.Serve(router, http.MethodDelete, "/api/guesses", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestRouterFallsThroughToSPA(t *testing.T) {
	router := newTestRouter(t, store.NewMemoryStore(), nil)
	rr := testutil.Serve(router, http.MethodGet, "/leaderboard", nil)
	// Empty dist dir: the SPA reports the missing build.
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(rr.Body.String(), "npm run build") {
		t.Fatalf("expected build hint, got %s", rr.Body.String())
	}
}

func TestChainAddsRequestIDAndCORS(t *testing.T) {
	logger, _ := testutil.NewBufferLogger()
	router := Chain(newTestRouter(t, store.NewMemoryStore(), nil), logger, nil, []string{"*"})

	req := httptest.NewRequest(http.MethodGet, "/api/guesses", nil)
	req.Header.Set("Origin", "http://phone.local")
	rr := testutil.ServeRequest(router, req)

	testutil.AssertStatus(t, rr, http.StatusOK)
	if rr.Header().Get("X-Request-ID") == "" {
		t.Fatalf("expected request id header")
	}
	if rr.Header().Get("Access-Control-Allow-Origin") == "" {
		t.Fatalf("expected CORS header")
	}
}

func TestCreateThenFeedDeliversList(t *testing.T) {
	mem := store.NewMemoryStore()
	feed := hub.New(nil, nil)
	t.Cleanup(feed.Close)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go func() { _ = mem.Subscribe(ctx, feed.Publish) }()

	srv := httptest.NewServer(Chain(newTestRouter(t, mem, feed), nil, nil, nil))
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/api/guesses/subscribe"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })

	body, _ := json.Marshal(testutil.SampleInput("Dana", guesses.Girl, guesses.Girl, 99))
	resp, err := http.Post(srv.URL+"/api/guesses", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("post: %v", err)
	}
	_ = resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.StatusCode)
	}

	deadline := time.Now().Add(3 * time.Second)
	for {
		_ = conn.SetReadDeadline(deadline)
		var msg guesses.FeedMessage
		if err := conn.ReadJSON(&msg); err != nil {
			t.Fatalf("read feed: %v", err)
		}
		if msg.Type != guesses.FeedTypeGuesses {
			t.Fatalf("unexpected message type %q", msg.Type)
		}
		if len(msg.Guesses) == 1 && msg.Guesses[0].Name == "Dana" {
			return
		}
	}
}
