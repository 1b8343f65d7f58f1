package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/metrics"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
)

var validate = validator.New()

type CampusHandler struct {
	resource[models.Campus]
}

func NewCampusHandler(mgr *lifecycle.Manager[models.Campus]) *CampusHandler {
	return &CampusHandler{resource[models.Campus]{
		mgr:  mgr,
		name: rbac.ResourceCampus,
		// A campus is scoped by its own id.
		scope: func(c *models.Campus) int { return c.ID },
	}}
}

func (h *CampusHandler) Mount(r chi.Router) {
	h.mountLifecycle(r)
	r.Post("/", h.create)
	r.Put("/{id}", h.update)
}

func (h *CampusHandler) create(w http.ResponseWriter, r *http.Request) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return
	}
	// Creating a campus is a global-scope operation.
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionCreate, 0) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input struct {
		Name    string `json:"name" validate:"required,min=2,max=255"`
		Code    string `json:"code" validate:"required,min=2,max=32"`
		Address string `json:"address" validate:"required,max=500"`
		City    string `json:"city" validate:"required,max=100"`
		Phone   string `json:"phone" validate:"max=32"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	created, err := h.mgr.Create(r.Context(), &models.Campus{
		Name: input.Name, Code: input.Code, Address: input.Address,
		City: input.City, Phone: input.Phone,
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditCreate)
	JSON(w, http.StatusCreated, created)
}

func (h *CampusHandler) update(w http.ResponseWriter, r *http.Request) {
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
	if !rbac.Allow(p.Role, p.CampusID, h.name, rbac.ActionUpdate, id) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return
	}

	var input struct {
		Name    *string `json:"name" validate:"omitempty,min=2,max=255"`
		Code    *string `json:"code" validate:"omitempty,min=2,max=32"`
		Address *string `json:"address" validate:"omitempty,max=500"`
		City    *string `json:"city" validate:"omitempty,max=100"`
		Phone   *string `json:"phone" validate:"omitempty,max=32"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if err := validate.Struct(input); err != nil {
		JSONError(w, err.Error(), http.StatusBadRequest)
		return
	}

	updated, err := h.mgr.Update(r.Context(), id, func(c *models.Campus) {
		if input.Name != nil {
			c.Name = *input.Name
		}
		if input.Code != nil {
			c.Code = *input.Code
		}
		if input.Address != nil {
			c.Address = *input.Address
		}
		if input.City != nil {
			c.City = *input.City
		}
		if input.Phone != nil {
			c.Phone = *input.Phone
		}
	}, p)
	if err != nil {
		WriteErr(w, err)
		return
	}
	metrics.IncLifecycleOp(h.name, models.AuditUpdate)
	JSON(w, http.StatusOK, updated)
}
