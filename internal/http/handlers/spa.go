package handlers

import (
	"log/slog"
	"net/http"
	"os"
	"path"
	"path/filepath"

	"github.com/a-h/templ"

	"github.com/preston-bernstein/twin-reveal-service/internal/http/requestutil"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

// SPA serves the built single-page app from dir. Unknown paths get index.html so the
// client router can resolve them; a missing build yields a 500 page.
type SPA struct {
	dir    string
	logger *slog.Logger
}

// NewSPA constructs a SPA handler rooted at dir.
func NewSPA(dir string, logger *slog.Logger) *SPA {
	return &SPA{dir: dir, logger: logger}
}

func (s *SPA) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeError(w, r, http.StatusMethodNotAllowed, msgMethod, s.logger)
		return
	}
	if requestutil.IsAPIPath(r.URL.Path) {
		writeError(w, r, http.StatusNotFound, msgNotFound, s.logger)
		return
	}

	clean := path.Clean("/" + r.URL.Path)
	if clean != "/" {
		file := filepath.Join(s.dir, filepath.FromSlash(clean))
		if info, err := os.Stat(file); err == nil && !info.IsDir() {
			http.ServeFile(w, r, file)
			return
		}
	}

	index := filepath.Join(s.dir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logging.Warn(loggerFromContext(r, s.logger), "frontend build missing", slog.String("dist_dir", s.dir))
		templ.Handler(FrontendMissingPage(), templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(w, r)
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}
