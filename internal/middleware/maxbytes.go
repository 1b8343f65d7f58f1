package middleware

import "net/http"

// DefaultMaxBodyBytes caps request bodies at 1 MiB. The largest legitimate
// payload here is an incident description; nothing in this API justifies more.
const DefaultMaxBodyBytes = 1 << 20

// MaxBytes rejects oversized request bodies. Clients that declare an
// over-limit Content-Length get an immediate JSON 413; chunked bodies are
// capped by MaxBytesReader and fail inside the handler's decode.
func MaxBytes(maxBytes int64) func(http.Handler) http.Handler {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength > maxBytes {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusRequestEntityTooLarge)
				w.Write([]byte(`{"error":"request body too large"}`))
				return
			}
			if r.Body != nil {
				r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
			}
			next.ServeHTTP(w, r)
		})
	}
}
