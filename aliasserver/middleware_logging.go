package aliasserver

import (
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

// AccessLog returns middleware that logs one line per request with method,
// path, status, duration, size, and request ID. Paths in skipPaths are not
// logged; use it for /healthz and /metrics, which are polled constantly.
func AccessLog(logger zerolog.Logger, skipPaths ...string) Middleware {
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if skip[r.URL.Path] {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			wrapped := wrapResponseWriter(w)

			next.ServeHTTP(wrapped, r)

			event := logger.Info()
			if wrapped.status >= 400 {
				event = logger.Warn()
			}
			if wrapped.status >= 500 {
				event = logger.Error()
			}

			event.
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", wrapped.status).
				Dur("duration", time.Since(start)).
				Int("bytes", wrapped.bytesWritten).
				Str("remote_addr", r.RemoteAddr)

			if id := RequestIDFromContext(r.Context()); id != "" {
				event.Str("request_id", id)
			}

			event.Msg("request completed")
		})
	}
}
