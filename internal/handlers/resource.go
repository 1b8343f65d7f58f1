package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/middleware"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
)

// resource bundles the pieces every lifecycle handler shares: the generic
// manager, the rbac resource name, and the record's campus scope. Per-resource
// handlers embed it and add Create/Update (and status) with their own input
// decoding.
type resource[T lifecycle.Record] struct {
	mgr   *lifecycle.Manager[T]
	name  string
	scope func(*T) int
}

func performer(r *http.Request) (lifecycle.Performer, bool) {
	return middleware.PerformerFrom(r.Context())
}

// pageParams parses page/limit. Present-but-malformed values are rejected so
// the manager's positivity check only sees numbers.
func pageParams(r *http.Request) (lifecycle.PageRequest, error) {
	p := lifecycle.PageRequest{Page: 1, Limit: 20}
	if v := r.URL.Query().Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apperr.Validation("page must be a positive integer")
		}
		p.Page = n
	}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return p, apperr.Validation("limit must be a positive integer")
		}
		p.Limit = n
	}
	return p, nil
}

func idParam(r *http.Request) (int, error) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil || id < 1 {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

// canSeeDeleted gates the include_deleted flag: only roles that can restore
// may look at soft-deleted rows.
func canSeeDeleted(p lifecycle.Performer, name string, targetCampus int) bool {
	return rbac.Allow(p.Role, p.CampusID, name, rbac.ActionRestore, targetCampus)
}

func (h *resource[T]) list(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	page, err := pageParams(r)
	if err != nil {
		WriteErr(w, err)
		return
	}

	f := lifecycle.Filter{Search: r.URL.Query().Get("search")}
	if v := r.URL.Query().Get("campus_id"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			WriteErr(w, apperr.Validation("campus_id must be an integer"))
			return
		}
		f.CampusID = n
	}
	// Non-global roles are fenced into their own campus regardless of the
	// requested filter.
	if p.Role != models.RoleSuperAdmin {
		f.CampusID = p.CampusID
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionRead, readTarget(p, f.CampusID)) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	if includeDeleted && !canSeeDeleted(p, h.name, readTarget(p, f.CampusID)) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	res, err := h.mgr.FindAll(r.Context(), f, page, includeDeleted)
	if err != nil {
		WriteErr(w, err)
		return
	}
	JSON(w, http.StatusOK, res)
}

// readTarget maps an all-campus listing (filter 0) to a concrete rbac target:
// SUPER_ADMIN keeps the global 0, everyone else is checked against their own
// campus.
func readTarget(p lifecycle.Performer, filterCampus int) int {
	if filterCampus != 0 {
		return filterCampus
	}
	if p.Role == models.RoleSuperAdmin {
		return 0
	}
	return p.CampusID
}

func (h *resource[T]) get(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, err)
		return
	}
	includeDeleted := r.URL.Query().Get("include_deleted") == "true"
	if includeDeleted && !canSeeDeleted(p, h.name, p.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	rec, err := h.mgr.FindByID(r.Context(), id, includeDeleted)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionRead, h.scope(rec)) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	JSON(w, http.StatusOK, rec)
}

func (h *resource[T]) softDelete(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, err)
		return
	}
	rec, err := h.mgr.FindByID(r.Context(), id, true)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionDelete, h.scope(rec)) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := h.mgr.SoftDelete(r.Context(), id, p); err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditDelete)
	w.WriteHeader(http.StatusNoContent)
}

func (h *resource[T]) restore(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, err)
		return
	}
	rec, err := h.mgr.FindByID(r.Context(), id, true)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionRestore, h.scope(rec)) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	restored, err := h.mgr.Restore(r.Context(), id, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditRestore)
	JSON(w, http.StatusOK, restored)
}

func (h *resource[T]) purge(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	id, err := idParam(r)
	if err != nil {
		WriteErr(w, err)
		return
	}
	rec, err := h.mgr.FindByID(r.Context(), id, true)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionPurge, h.scope(rec)) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}
	if err := h.mgr.HardDelete(r.Context(), id, p); err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditDelete)
	w.WriteHeader(http.StatusNoContent)
}

// mountLifecycle wires the shared routes; per-resource routes (create,
// update, status) are added by the caller.
func (h *resource[T]) mountLifecycle(r chi.Router) {
	r.Get("/", h.list)
	r.Get("/{id}", h.get)
	r.Delete("/{id}", h.softDelete)
	r.Post("/{id}/restore", h.restore)
	r.Delete("/{id}/purge", h.purge)
}
