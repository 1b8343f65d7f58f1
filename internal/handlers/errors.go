package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/campushq/labops/internal/apperr"
)

// ErrMessageInternal is the generic message for 500 responses. Do not expose internal details to clients.
const ErrMessageInternal = "internal server error"

// JSONError sends a JSON error response with a single "error" field.
func JSONError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// JSONValidationError sends a JSON error response with "error" and optional "fields" for field-level details.
func JSONValidationError(w http.ResponseWriter, message string, fields map[string]string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	out := map[string]interface{}{"error": message}
	if len(fields) > 0 {
		out["fields"] = fields
	}
	json.NewEncoder(w).Encode(out)
}

// WriteErr maps a typed error to its HTTP status. Unclassified errors are
// logged and returned as a generic 500.
func WriteErr(w http.ResponseWriter, err error) {
	var e *apperr.Error
	if errors.As(err, &e) {
		switch e.Kind {
		case apperr.KindValidation:
			JSONValidationError(w, e.Message, e.Fields, http.StatusBadRequest)
		case apperr.KindNotFound:
			JSONError(w, e.Message, http.StatusNotFound)
		case apperr.KindConflict:
			JSONError(w, e.Message, http.StatusConflict)
		case apperr.KindAuth:
			JSONError(w, e.Message, http.StatusUnauthorized)
		case apperr.KindForbidden:
			JSONError(w, e.Message, http.StatusForbidden)
		default:
			slog.Error("unclassified error", "err", err)
			JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		}
		return
	}
	slog.Error("unclassified error", "err", err)
	JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
}

// JSON writes v with the given status.
func JSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
