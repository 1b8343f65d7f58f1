// Package status holds the explicit transition allow-lists for resources
// with a domain state machine. Anything not listed here is an illegal
// transition.
package status

import "github.com/campushq/labops/internal/models"

// Machine maps each status to the set of statuses it may move to. A status
// with no entry (or an empty set) is terminal.
type Machine struct {
	name        string
	transitions map[string][]string
}

func New(name string, transitions map[string][]string) *Machine {
	return &Machine{name: name, transitions: transitions}
}

func (m *Machine) Name() string { return m.name }

// Known reports whether s is a status this machine recognises.
func (m *Machine) Known(s string) bool {
	if _, ok := m.transitions[s]; ok {
		return true
	}
	for _, targets := range m.transitions {
		for _, t := range targets {
			if t == s {
				return true
			}
		}
	}
	return false
}

// Allowed reports whether from -> to is in the allow-list.
func (m *Machine) Allowed(from, to string) bool {
	for _, t := range m.transitions[from] {
		if t == to {
			return true
		}
	}
	return false
}

// Incident lifecycle: forward through OPEN -> IN_PROGRESS -> RESOLVED ->
// CLOSED, with explicit reopen paths back to OPEN. CLOSED is terminal.
var Incident = New("incident", map[string][]string{
	models.IncidentOpen:       {models.IncidentInProgress, models.IncidentResolved},
	models.IncidentInProgress: {models.IncidentResolved, models.IncidentOpen},
	models.IncidentResolved:   {models.IncidentClosed, models.IncidentOpen},
	models.IncidentClosed:     {},
})

// Maintenance lifecycle: PENDING is triaged to APPROVED or REJECTED; approved
// work runs to COMPLETED or is CANCELLED. COMPLETED, REJECTED and CANCELLED
// are terminal.
var Maintenance = New("maintenance", map[string][]string{
	models.MaintenancePending:    {models.MaintenanceApproved, models.MaintenanceRejected},
	models.MaintenanceApproved:   {models.MaintenanceInProgress, models.MaintenanceCancelled},
	models.MaintenanceInProgress: {models.MaintenanceCompleted, models.MaintenanceCancelled},
	models.MaintenanceCompleted:  {},
	models.MaintenanceRejected:   {},
	models.MaintenanceCancelled:  {},
})
