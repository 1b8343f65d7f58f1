package middleware

import (
	"net/http"
	"strings"
)

// corsMethods covers every verb the API routes use, including PATCH for
// incident/maintenance status changes and notification read flags.
var corsMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}

// corsHeaders are the request headers browser clients send us: Authorization
// carries the bearer token, Content-Type the JSON bodies.
var corsHeaders = []string{"Accept", "Authorization", "Content-Type"}

// CORS allows browser clients from the configured origins and answers OPTIONS
// preflight. With no origins configured the middleware is a no-op, the right
// posture for CLI-only deployments.
func CORS(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Add("Vary", "Origin")
			if origin := r.Header.Get("Origin"); origin != "" && allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Access-Control-Allow-Methods", strings.Join(corsMethods, ", "))
				w.Header().Set("Access-Control-Allow-Headers", strings.Join(corsHeaders, ", "))
				w.Header().Set("Access-Control-Max-Age", "86400")
			}
			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
