package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
)

type EquipmentHandler struct {
	resource[models.Equipment]
}

func NewEquipmentHandler(mgr *lifecycle.Manager[models.Equipment]) *EquipmentHandler {
	return &EquipmentHandler{resource[models.Equipment]{
		mgr:   mgr,
		name:  rbac.ResourceEquipment,
		scope: func(e *models.Equipment) int { return e.CampusID },
	}}
}

func (h *EquipmentHandler) Mount(r chi.Router) {
	h.mountLifecycle(r)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

func (h *EquipmentHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	var input struct {
		CampusID     int        `json:"campus_id" validate:"required,min=1"`
		LabID        int        `json:"lab_id" validate:"required,min=1"`
		Name         string     `json:"name" validate:"required,min=2,max=255"`
		SerialNumber string     `json:"serial_number" validate:"required,max=64"`
		Category     string     `json:"category" validate:"required,max=64"`
		Status       string     `json:"status"`
		PurchaseCost float64    `json:"purchase_cost" validate:"min=0"`
		PurchasedAt  *time.Time `json:"purchased_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.Status == "" {
		input.Status = models.EquipmentAvailable
	}
	if !models.ValidEquipmentStatus(input.Status) {
		WriteErr(w, apperr.Validation("unknown equipment status: "+input.Status))
		return
	}
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionCreate, input.CampusID) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	created, err := h.mgr.Create(r.Context(), &models.Equipment{
		CampusID: input.CampusID, LabID: input.LabID, Name: input.Name,
		SerialNumber: input.SerialNumber, Category: input.Category, Status: input.Status,
		PurchaseCost: input.PurchaseCost, PurchasedAt: input.PurchasedAt,
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditCreate)
	JSON(w, http.StatusCreated, created)
}

func (h *EquipmentHandler) update(w http.ResponseWriter, r *http.Request) {
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
		LabID        *int       `json:"lab_id" validate:"omitempty,min=1"`
		Name         *string    `json:"name" validate:"omitempty,min=2,max=255"`
		SerialNumber *string    `json:"serial_number" validate:"omitempty,max=64"`
		Category     *string    `json:"category" validate:"omitempty,max=64"`
		Status       *string    `json:"status"`
		PurchaseCost *float64   `json:"purchase_cost" validate:"omitempty,min=0"`
		PurchasedAt  *time.Time `json:"purchased_at"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}
	if input.Status != nil && !models.ValidEquipmentStatus(*input.Status) {
		WriteErr(w, apperr.Validation("unknown equipment status: "+*input.Status))
		return
	}

	updated, err := h.mgr.Update(r.Context(), id, func(e *models.Equipment) {
		if input.LabID != nil {
			e.LabID = *input.LabID
		}
		if input.Name != nil {
			e.Name = *input.Name
		}
		if input.SerialNumber != nil {
			e.SerialNumber = *input.SerialNumber
		}
		if input.Category != nil {
			e.Category = *input.Category
		}
		if input.Status != nil {
			e.Status = *input.Status
		}
		if input.PurchaseCost != nil {
			e.PurchaseCost = *input.PurchaseCost
		}
		if input.PurchasedAt != nil {
			e.PurchasedAt = input.PurchasedAt
		}
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditUpdate)
	JSON(w, http.StatusOK, updated)
}
