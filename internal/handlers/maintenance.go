package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/notify"
	"github.com/campushq/labops/internal/rbac"
	"github.com/campushq/labops/internal/status"
)

type MaintenanceHandler struct {
	resource[models.Maintenance]
	dispatcher *notify.Dispatcher
}

func NewMaintenanceHandler(mgr *lifecycle.Manager[models.Maintenance], d *notify.Dispatcher) *MaintenanceHandler {
	return &MaintenanceHandler{
		resource: resource[models.Maintenance]{
			mgr:   mgr,
			name:  rbac.ResourceMaintenance,
			scope: func(m *models.Maintenance) int { return m.CampusID },
		},
		dispatcher: d,
	}
}

func (h *MaintenanceHandler) Mount(r chi.Router) {
	h.mountLifecycle(r)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
	r.Patch("/{id}/status", h.updateStatus)
}

func (h *MaintenanceHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		CampusID     int        `json:"campus_id" validate:"required,min=1"`
		EquipmentID  int        `json:"equipment_id" validate:"required,min=1"`
		Title        string     `json:"title" validate:"required,min=2,max=255"`
		Description  string     `json:"description" validate:"required,max=2000"`
		Cost         float64    `json:"cost" validate:"min=0"`
		ScheduledFor *time.Time `json:"scheduled_for"`
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

	created, err := h.mgr.Create(r.Context(), &models.Maintenance{
		CampusID: input.CampusID, EquipmentID: input.EquipmentID,
		Title: input.Title, Description: input.Description,
		Status: models.MaintenancePending, Cost: input.Cost,
		RequestedBy: p.UserID, ScheduledFor: input.ScheduledFor,
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditCreate)
	JSON(w, http.StatusCreated, created)
}

func (h *MaintenanceHandler) update(w http.ResponseWriter, r *http.Request) {
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
		EquipmentID  *int       `json:"equipment_id" validate:"omitempty,min=1"`
		Title        *string    `json:"title" validate:"omitempty,min=2,max=255"`
		Description  *string    `json:"description" validate:"omitempty,max=2000"`
		Cost         *float64   `json:"cost" validate:"omitempty,min=0"`
		Notes        *string    `json:"notes" validate:"omitempty,max=2000"`
		ScheduledFor *time.Time `json:"scheduled_for"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.mgr.Update(r.Context(), id, func(m *models.Maintenance) {
		if input.EquipmentID != nil {
			m.EquipmentID = *input.EquipmentID
		}
		if input.Title != nil {
			m.Title = *input.Title
		}
		if input.Description != nil {
			m.Description = *input.Description
		}
		if input.Cost != nil {
			m.Cost = *input.Cost
		}
		if input.Notes != nil {
			m.Notes = *input.Notes
		}
		if input.ScheduledFor != nil {
			m.ScheduledFor = input.ScheduledFor
		}
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditUpdate)
	JSON(w, http.StatusOK, updated)
}

func (h *MaintenanceHandler) updateStatus(w http.ResponseWriter, r *http.Request) {
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
		Status string `json:"status" validate:"required"`
		Notes  string `json:"notes" validate:"max=2000"`
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
	updated, err := h.mgr.UpdateStatus(r.Context(), id, status.Maintenance,
		func(m *models.Maintenance) string { return m.Status },
		func(m *models.Maintenance, newStatus, notes string) {
			m.Status = newStatus
			if notes != "" {
				m.Notes = notes
			}
		},
		input.Status, input.Notes, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditStatusChange)

	h.dispatcher.Dispatch(notify.Message{
		CampusID: updated.CampusID,
		UserID:   updated.RequestedBy,
		Kind:     "maintenance.status_changed",
		Subject:  fmt.Sprintf("Maintenance #%d: %s", updated.ID, updated.Status),
		Body:     fmt.Sprintf("Request %q moved %s -> %s.", updated.Title, from, updated.Status),
	})
	JSON(w, http.StatusOK, updated)
}
