package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
)

type LabHandler struct {
	resource[models.Lab]
}

func NewLabHandler(mgr *lifecycle.Manager[models.Lab]) *LabHandler {
	return &LabHandler{resource[models.Lab]{
		mgr:   mgr,
		name:  rbac.ResourceLab,
		scope: func(l *models.Lab) int { return l.CampusID },
	}}
}

func (h *LabHandler) Mount(r chi.Router) {
	h.mountLifecycle(r)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

func (h *LabHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		CampusID    int    `json:"campus_id" validate:"required,min=1"`
		Name        string `json:"name" validate:"required,min=2,max=255"`
		RoomNumber  string `json:"room_number" validate:"required,max=32"`
		Capacity    int    `json:"capacity" validate:"min=0"`
		Description string `json:"description" validate:"max=1000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionCreate, input.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	created, err := h.mgr.Create(r.Context(), &models.Lab{
		CampusID: input.CampusID, Name: input.Name, RoomNumber: input.RoomNumber,
		Capacity: input.Capacity, Description: input.Description,
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditCreate)
	JSON(w, http.StatusCreated, created)
}

func (h *LabHandler) update(w http.ResponseWriter, r *http.Request) {
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
	cur, err := h.mgr.FindByID(r.Context(), id, false)
	if err != nil {
		WriteErr(w, err)
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionUpdate, cur.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input struct {
		Name        *string `json:"name" validate:"omitempty,min=2,max=255"`
		RoomNumber  *string `json:"room_number" validate:"omitempty,max=32"`
		Capacity    *int    `json:"capacity" validate:"omitempty,min=0"`
		Description *string `json:"description" validate:"omitempty,max=1000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.mgr.Update(r.Context(), id, func(l *models.Lab) {
		if input.Name != nil {
			l.Name = *input.Name
		}
		if input.RoomNumber != nil {
			l.RoomNumber = *input.RoomNumber
		}
		if input.Capacity != nil {
			l.Capacity = *input.Capacity
		}
		if input.Description != nil {
			l.Description = *input.Description
		}
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditUpdate)
	JSON(w, http.StatusOK, updated)
}
