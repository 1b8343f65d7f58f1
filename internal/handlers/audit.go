package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
	"github.com/campushq/labops/internal/repo"
)

// AuditHandler serves the read side of the audit log. Admin only; entries are
// never written through HTTP.
type AuditHandler struct {
	Repo *repo.AuditRepo
}

// List returns recent audit entries, newest first. Query: limit (default 50,
// max 200), offset, campus_id (SUPER_ADMIN only; others see their campus).
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	campusID := p.CampusID
	if p.Role == models.RoleSuperAdmin {
		campusID = 0
		if v := r.URL.Query().Get("campus_id"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				campusID = n
			}
		}
	}
	if !rbac.Allow(p.Role, p.CampusID, rbac.ResourceAudit, rbac.ActionRead, campusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
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

	entries, err := h.Repo.List(r.Context(), campusID, limit, offset)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, entries)
}

// EntityHistory returns one entity's full audit trail, oldest first.
func (h *AuditHandler) EntityHistory(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, rbac.ResourceAudit, rbac.ActionRead, p.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	entityType := chi.URLParam(r, "entityType")
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		JSONError(w, "invalid id", http.StatusBadRequest)
		return
	}

	entries, err := h.Repo.ListForEntity(r.Context(), entityType, id)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, entries)
}
