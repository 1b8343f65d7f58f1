package handlers

import (
	"net/http"
	"strconv"

	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/rbac"
	"github.com/campushq/labops/internal/repo"
)

// ReportsHandler serves the aggregate reporting endpoints.
type ReportsHandler struct {
	Incidents   *repo.IncidentRepo
	Equipment   *repo.EquipmentRepo
	Maintenance *repo.MaintenanceRepo
}

// reportScope resolves the campus the report covers: SUPER_ADMIN may pick any
// (or all with 0), everyone else gets their own.
func (h *ReportsHandler) reportScope(w http.ResponseWriter, r *http.Request) (int, bool) {
	p, ok := performer(r)
	if !ok {
		JSONError(w, "unauthorized", http.StatusUnauthorized)
		return 0, false
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
	target := campusID
	if p.Role != models.RoleSuperAdmin {
		target = p.CampusID
	}
	if !rbac.Allow(p.Role, p.CampusID, rbac.ResourceReport, rbac.ActionRead, target) {
		JSONError(w, "forbidden", http.StatusForbidden)
		return 0, false
	}
	return campusID, true
}

// IncidentsSummary returns active incident counts grouped by status.
func (h *ReportsHandler) IncidentsSummary(w http.ResponseWriter, r *http.Request) {
	campusID, ok := h.reportScope(w, r)
	if !ok {
		return
	}
	counts, err := h.Incidents.CountByStatus(r.Context(), campusID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	JSON(w, http.StatusOK, map[string]any{
		"campus_id": campusID,
		"by_status": counts,
		"total":     total,
	})
}

// EquipmentHealth returns active equipment counts grouped by status.
func (h *ReportsHandler) EquipmentHealth(w http.ResponseWriter, r *http.Request) {
	campusID, ok := h.reportScope(w, r)
	if !ok {
		return
	}
	counts, err := h.Equipment.CountByStatus(r.Context(), campusID)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	operational := total - counts[models.EquipmentMaintenance] - counts[models.EquipmentRetired]
	JSON(w, http.StatusOK, map[string]any{
		"campus_id":   campusID,
		"by_status":   counts,
		"total":       total,
		"operational": operational,
	})
}

// MaintenanceCost returns completed maintenance cost per month. Query:
// months (default 12, max 60).
func (h *ReportsHandler) MaintenanceCost(w http.ResponseWriter, r *http.Request) {
	campusID, ok := h.reportScope(w, r)
	if !ok {
		return
	}
	months := 12
	if v := r.URL.Query().Get("months"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 60 {
			months = n
		}
	}
	rows, err := h.Maintenance.CostByMonth(r.Context(), campusID, months)
	if err != nil {
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}
	JSON(w, http.StatusOK, map[string]any{
		"campus_id": campusID,
		"months":    rows,
	})
}
