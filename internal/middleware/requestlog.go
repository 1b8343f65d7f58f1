package middleware

import (
	"log/slog"
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
)

// statusWriter captures the response status and body size for the access log.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// probePath reports the endpoints hit by load balancers and Prometheus, which
// would otherwise dominate the access log.
func probePath(p string) bool {
	return p == "/health" || p == "/ready" || p == "/metrics"
}

// RequestLog writes one structured line per request. Probe endpoints log at
// Debug, server errors at Error, everything else at Info. Mount after
// RequestID and RealIP so both fields are populated.
func RequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)

		level := slog.LevelInfo
		switch {
		case probePath(r.URL.Path):
			level = slog.LevelDebug
		case sw.status >= http.StatusInternalServerError:
			level = slog.LevelError
		}
		slog.Log(r.Context(), level, "request",
			"request_id", chimw.GetReqID(r.Context()),
			"remote", r.RemoteAddr,
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", sw.bytes)
	})
}
