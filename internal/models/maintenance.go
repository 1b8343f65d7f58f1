package models

import "time"

// Maintenance request statuses.
const (
	MaintenancePending    = "PENDING"
	MaintenanceApproved   = "APPROVED"
	MaintenanceRejected   = "REJECTED"
	MaintenanceInProgress = "IN_PROGRESS"
	MaintenanceCompleted  = "COMPLETED"
	MaintenanceCancelled  = "CANCELLED"
)

type Maintenance struct {
	Lifecycle
	CampusID     int        `json:"campus_id"`
	EquipmentID  int        `json:"equipment_id"`
	Title        string     `json:"title"`
	Description  string     `json:"description"`
	Status       string     `json:"status"`
	Cost         float64    `json:"cost"`
	RequestedBy  int        `json:"requested_by"`
	Notes        string     `json:"notes,omitempty"`
	ScheduledFor *time.Time `json:"scheduled_for,omitempty"`
}
