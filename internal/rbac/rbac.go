// Package rbac is the capability check gating every lifecycle operation:
// a single predicate over {role, campus scope, resource, action} instead of
// inline conditionals scattered through handlers.
package rbac

import "github.com/campushq/labops/internal/models"

// Actions checked against the predicate.
const (
	ActionRead    = "read"
	ActionCreate  = "create"
	ActionUpdate  = "update"
	ActionDelete  = "delete"
	ActionRestore = "restore"
	ActionPurge   = "purge"
	ActionStatus  = "status"
)

// Resources. These match the audit entity_type tags.
const (
	ResourceCampus       = "campus"
	ResourceLab          = "lab"
	ResourceEquipment    = "equipment"
	ResourceIncident     = "incident"
	ResourceMaintenance  = "maintenance"
	ResourceEvent        = "event"
	ResourceAudit        = "audit"
	ResourceReport       = "report"
	ResourceUser         = "user"
	ResourceNotification = "notification"
)

// Allow reports whether role (scoped to userCampus) may perform action on
// resource records in targetCampus. targetCampus 0 means the request is not
// bound to one campus (e.g. an all-campus listing) and is reserved for
// SUPER_ADMIN.
func Allow(role string, userCampus int, resource, action string, targetCampus int) bool {
	if role == models.RoleSuperAdmin {
		return true
	}
	// Everyone else is fenced into their own campus. Campus records are
	// campus-scoped by their own id.
	if targetCampus == 0 || targetCampus != userCampus {
		return false
	}

	switch role {
	case models.RoleAdmin:
		// Full lifecycle within the campus except permanent removal, which
		// stays with SUPER_ADMIN.
		return action != ActionPurge
	case models.RoleTechnician:
		if action == ActionRead {
			return true
		}
		if action == ActionStatus {
			return resource == ResourceIncident || resource == ResourceMaintenance
		}
		if action == ActionUpdate {
			return resource == ResourceEquipment
		}
		return false
	case models.RoleStaff:
		if action == ActionRead {
			return resource != ResourceAudit && resource != ResourceReport
		}
		if action == ActionCreate {
			return resource == ResourceIncident || resource == ResourceMaintenance
		}
		return false
	}
	return false
}
