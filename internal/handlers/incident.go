package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/notify"
	"github.com/campushq/labops/internal/rbac"
	"github.com/campushq/labops/internal/status"
)

type IncidentHandler struct {
	resource[models.Incident]
	dispatcher *notify.Dispatcher
}

func NewIncidentHandler(mgr *lifecycle.Manager[models.Incident], d *notify.Dispatcher) *IncidentHandler {
	return &IncidentHandler{
		resource: resource[models.Incident]{
			mgr:   mgr,
			name:  rbac.ResourceIncident,
			scope: func(i *models.Incident) int { return i.CampusID },
		},
		dispatcher: d,
	}
}

func (h *IncidentHandler) Mount(r chi.Router) {
	h.mountLifecycle(r)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/status", h.updateStatus)
}

func (h *IncidentHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		CampusID    int    `json:"campus_id" validate:"required,min=1"`
		LabID       int    `json:"lab_id" validate:"required,min=1"`
		EquipmentID *int   `json:"equipment_id" validate:"omitempty,min=1"`
		Title       string `json:"title" validate:"required,min=2,max=255"`
		Description string `json:"description" validate:"required,max=2000"`
		Priority    string `json:"priority" validate:"required"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if !models.ValidPriority(input.Priority) {
		WriteErr(w, apperr.Validation("unknown priority: "+input.Priority))
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionCreate, input.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	created, err := h.mgr.Create(r.Context(), &models.Incident{
		CampusID: input.CampusID, LabID: input.LabID, EquipmentID: input.EquipmentID,
		Title: input.Title, Description: input.Description, Priority: input.Priority,
		Status: models.IncidentOpen, ReportedBy: p.UserID,
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditCreate)

	h.dispatcher.Dispatch(notify.Message{
		CampusID: created.CampusID,
		Kind:     "incident.created",
		Subject:  "New incident: " + created.Title,
		Body:     fmt.Sprintf("Incident #%d (%s priority) reported in lab %d.", created.ID, created.Priority, created.LabID),
	})
	JSON(w, http.StatusCreated, created)
}

func (h *IncidentHandler) update(w http.ResponseWriter, r *http.Request) {
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
		LabID       *int    `json:"lab_id" validate:"omitempty,min=1"`
		EquipmentID *int    `json:"equipment_id" validate:"omitempty,min=1"`
		Title       *string `json:"title" validate:"omitempty,min=2,max=255"`
		Description *string `json:"description" validate:"omitempty,max=2000"`
		Priority    *string `json:"priority"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.Priority != nil && !models.ValidPriority(*input.Priority) {
		WriteErr(w, apperr.Validation("unknown priority: "+*input.Priority))
		return
	}

	updated, err := h.mgr.Update(r.Context(), id, func(i *models.Incident) {
		if input.LabID != nil {
			i.LabID = *input.LabID
		}
		if input.EquipmentID != nil {
			i.EquipmentID = input.EquipmentID
		}
		if input.Title != nil {
			i.Title = *input.Title
		}
		if input.Description != nil {
			i.Description = *input.Description
		}
		if input.Priority != nil {
			i.Priority = *input.Priority
		}
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditUpdate)
	JSON(w, http.StatusOK, updated)
}

func (h *IncidentHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
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
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionStatus, cur.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input struct {
		Status     string `json:"status" validate:"required"`
		Resolution string `json:"resolution" validate:"max=2000"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	from := cur.Status
	updated, err := h.mgr.UpdateStatus(r.Context(), id, status.Incident,
		func(i *models.Incident) string { return i.Status },
		func(i *models.Incident, newStatus, notes string) {
			i.Status = newStatus
			if notes != "" {
				i.Resolution = notes
			}
		},
		input.Status, input.Resolution, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditStatusChange)

	h.dispatcher.Dispatch(notify.Message{
		CampusID: updated.CampusID,
		UserID:   updated.ReportedBy,
		Kind:     "incident.status_changed",
		Subject:  fmt.Sprintf("Incident #%d: %s", updated.ID, updated.Status),
		Body:     fmt.Sprintf("Incident %q moved %s -> %s.", updated.Title, from, updated.Status),
	})
	JSON(w, http.StatusOK, updated)
}
