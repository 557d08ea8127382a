package middleware

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/a-h/templ"

	"github.com/preston-bernstein/twin-reveal-service/internal/http/requestutil"
	"github.com/preston-bernstein/twin-reveal-service/internal/logging"
)

// Recover turns a panic into a 500 so one bad request never takes the process down.
// API callers get JSON; page requests get the fallback page.
func Recover(baseLogger *slog.Logger, fallback templ.Component, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			logging.ErrorContext(r.Context(), baseLogger, "panic recovered", fmt.Errorf("%v", rec),
				slog.String("stack", string(debug.Stack())),
			)

			if !requestutil.IsAPIPath(r.URL.Path) && fallback != nil {
				templ.Handler(fallback, templ.WithStatus(http.StatusInternalServerError)).ServeHTTP(w, r)
				return
			}
			body := map[string]string{"error": "Internal server error"}
			if reqID := RequestIDFromContext(r.Context()); reqID != "" {
				body["requestId"] = reqID
			}
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(body)
		}()
		next.ServeHTTP(w, r)
	})
}
