package models

// Incident statuses. Transitions are enforced by the status machine, not here.
const (
	IncidentOpen       = "OPEN"
	IncidentInProgress = "IN_PROGRESS"
	IncidentResolved   = "RESOLVED"
	IncidentClosed     = "CLOSED"
)

// Incident priorities.
const (
	PriorityLow      = "LOW"
	PriorityMedium   = "MEDIUM"
	PriorityHigh     = "HIGH"
	PriorityCritical = "CRITICAL"
)

type Incident struct {
	Lifecycle
	CampusID    int    `json:"campus_id"`
	LabID       int    `json:"lab_id"`
	EquipmentID *int   `json:"equipment_id,omitempty"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	ReportedBy  int    `json:"reported_by"`
	Resolution  string `json:"resolution,omitempty"`
}

func ValidPriority(p string) bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityCritical:
		return true
	}
	return false
}
