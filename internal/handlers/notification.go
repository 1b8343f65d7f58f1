package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/repo"
)

// NotificationHandler serves a user's own in-app notifications.
type NotificationHandler struct {
	Repo *repo.NotificationRepo
}

func (h *NotificationHandler) Mount(r chi.Router) {
	r.Get("/", h.List)
	r.Patch("/{id}/read", h.MarkRead)
}

// List returns the caller's notifications plus campus broadcasts, newest
// first. Query: limit (default 50, max 200), offset.
func (h *NotificationHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	limit := 50
	offset := 0
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 && n <= 200 {
			limit = n
		}
	}
	if o := r.URL.Query().Get("offset"); o != "" {
		if n, err := strconv.Atoi(o); err == nil && n >= 0 {
			offset = n
		}
	}

	list, err := h.Repo.ListForUser(r.Context(), p.UserID, p.CampusID, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, list)
}

// MarkRead flags one of the caller's notifications as read.
func (h *NotificationHandler) MarkRead(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		JSONError(w, "invalid id", http.StatusBadRequest)
		return
	}

	n, err := h.Repo.MarkRead(r.Context(), id, p.UserID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	if n == 0 {
		JSONError(w, "notification not found", http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
