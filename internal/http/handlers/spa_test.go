package handlers

import (
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/preston-bernstein/twin-reveal-service/internal/testutil"
)

func writeDist(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<html>app</html>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestSPAServesStaticFiles(t *testing.T) {
	spa := NewSPA(writeDist(t), nil)
	rr := testutil.Serve(spa, http.MethodGet, "/assets/app.js", nil)
	testutil.AssertStatus(t, rr, http.StatusOK)
	if !strings.Contains(rr.Body.String(), "console.log") {
		t.Fatalf("expected asset body, got %s", rr.Body.String())
	}
}

func TestSPAFallsBackToIndex(t *testing.T) {
	spa := NewSPA(writeDist(t), nil)
	for _, path := range []string{"/", "/leaderboard", "/nested/route"} {
		rr := testutil.Serve(spa, http.MethodGet, path, nil)
		testutil.AssertStatus(t, rr, http.StatusOK)
		if !strings.Contains(rr.Body.String(), "app") {
			t.Fatalf("%s: expected index.html, got %s", path, rr.Body.String())
		}
	}
}

func TestSPADoesNotEscapeDist(t *testing.T) {
	dir := writeDist(t)
	secret := filepath.Join(filepath.Dir(dir), "secret.txt")
	_ = os.WriteFile(secret, []byte("secret"), 0o644)
	t.Cleanup(func() { _ = os.Remove(secret) })

	spa := NewSPA(dir, nil)
	rr := testutil.Serve(spa, http.MethodGet, "/../secret.txt", nil)
	if strings.Contains(rr.Body.String(), "secret") {
		t.Fatalf("expected traversal blocked, got %s", rr.Body.String())
	}
}

func TestSPAMissingBuild(t *testing.T) {
	logger, buf := testutil.NewBufferLogger()
	spa := NewSPA(filepath.Join(t.TempDir(), "missing"), logger)
	rr := testutil.Serve(spa, http.MethodGet, "/", nil)
	testutil.AssertStatus(t, rr, http.StatusInternalServerError)
	if !strings.Contains(rr.Body.String(), msgFrontendMissing) {
		t.Fatalf("expected build hint, got %s", rr.Body.String())
	}
	if !strings.Contains(buf.String(), "frontend build missing") {
		t.Fatalf("expected warning logged, got %s", buf.String())
	}
}

func TestSPARejectsWrites(t *testing.T) {
	spa := NewSPA(writeDist(t), nil)
	rr := testutil.Serve(spa, http.MethodPost, "/", nil)
	testutil.AssertStatus(t, rr, http.StatusMethodNotAllowed)
}

func TestSPAUnknownAPIPathIsJSON404(t *testing.T) {
	spa := NewSPA(writeDist(t), nil)
	rr := testutil.Serve(spa, http.MethodGet, "/api/nope", nil)
	testutil.AssertStatus(t, rr, http.StatusNotFound)
	if got := rr.Header().Get("Content-Type"); got != "application/json" {
		t.Fatalf("expected json, got %s", got)
	}
}

func TestErrorPageEscapes(t *testing.T) {
	var sb strings.Builder
	if err := ErrorPage("<b>", "a & b").Render(t.Context(), &sb); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(sb.String(), "<b>") || !strings.Contains(sb.String(), "a &amp; b") {
		t.Fatalf("expected escaped output, got %s", sb.String())
	}
}
