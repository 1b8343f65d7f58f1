package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
)

type EventHandler struct {
	resource[models.Event]
}

func NewEventHandler(mgr *lifecycle.Manager[models.Event]) *EventHandler {
	return &EventHandler{resource[models.Event]{
		mgr:   mgr,
		name:  rbac.ResourceEvent,
		scope: func(e *models.Event) int { return e.CampusID },
	}}
}

func (h *EventHandler) Mount(r chi.Router) {
	h.mountLifecycle(r)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

func (h *EventHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		CampusID    int       `json:"campus_id" validate:"required,min=1"`
		LabID       *int      `json:"lab_id" validate:"omitempty,min=1"`
		Title       string    `json:"title" validate:"required,min=2,max=255"`
		Description string    `json:"description" validate:"max=2000"`
		StartAt     time.Time `json:"start_at" validate:"required"`
		EndAt       time.Time `json:"end_at" validate:"required"`
		Organizer   string    `json:"organizer" validate:"required,max=255"`
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

	created, err := h.mgr.Create(r.Context(), &models.Event{
		CampusID: input.CampusID, LabID: input.LabID, Title: input.Title,
		Description: input.Description, StartAt: input.StartAt, EndAt: input.EndAt,
		Organizer: input.Organizer,
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditCreate)
	JSON(w, http.StatusCreated, created)
}

func (h *EventHandler) update(w http.ResponseWriter, r *http.Request) {
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
		LabID       *int       `json:"lab_id" validate:"omitempty,min=1"`
		Title       *string    `json:"title" validate:"omitempty,min=2,max=255"`
		Description *string    `json:"description" validate:"omitempty,max=2000"`
		StartAt     *time.Time `json:"start_at"`
		EndAt       *time.Time `json:"end_at"`
		Organizer   *string    `json:"organizer" validate:"omitempty,max=255"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.mgr.Update(r.Context(), id, func(e *models.Event) {
		if input.LabID != nil {
			e.LabID = input.LabID
		}
		if input.Title != nil {
			e.Title = *input.Title
		}
		if input.Description != nil {
			e.Description = *input.Description
		}
		if input.StartAt != nil {
			e.StartAt = *input.StartAt
		}
		if input.EndAt != nil {
			e.EndAt = *input.EndAt
		}
		if input.Organizer != nil {
			e.Organizer = *input.Organizer
		}
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditUpdate)
	JSON(w, http.StatusOK, updated)
}
