package models

import "time"

// Equipment operational states. Status is a plain field changed through
// update, not a transition-checked state machine.
const (
	EquipmentAvailable   = "AVAILABLE"
	EquipmentInUse       = "IN_USE"
	EquipmentMaintenance = "MAINTENANCE"
	EquipmentRetired     = "RETIRED"
)

type Equipment struct {
	Lifecycle
	CampusID     int        `json:"campus_id"`
	LabID        int        `json:"lab_id"`
	Name         string     `json:"name"`
	SerialNumber string     `json:"serial_number"`
	Category     string     `json:"category"`
	Status       string     `json:"status"`
	PurchaseCost float64    `json:"purchase_cost"`
	PurchasedAt  *time.Time `json:"purchased_at,omitempty"`
}

// ValidEquipmentStatus reports whether s is one of the known states.
func ValidEquipmentStatus(s string) bool {
	switch s {
	case EquipmentAvailable, EquipmentInUse, EquipmentMaintenance, EquipmentRetired:
		return true
	}
	return false
}
