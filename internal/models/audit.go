package models

import (
	"encoding/json"
	"time"
)

// Audit actions. One entry per mutating lifecycle or status operation.
const (
	AuditCreate       = "CREATE"
	AuditUpdate       = "UPDATE"
	AuditDelete       = "DELETE"
	AuditRestore      = "RESTORE"
	AuditStatusChange = "STATUS_CHANGE"
)

// AuditDetailsHard marks a DELETE entry as a permanent removal so history
// distinguishes hard from soft deletes.
const AuditDetailsHard = "hard"

// AuditEntry is one immutable audit log row. The application only ever
// inserts these; there is no update or delete path anywhere.
type AuditEntry struct {
	ID            int             `json:"id"`
	CampusID      int             `json:"campus_id"`
	EntityType    string          `json:"entity_type"`
	EntityID      int             `json:"entity_id"`
	Action        string          `json:"action"`
	OldValue      json.RawMessage `json:"old_value,omitempty"`
	NewValue      json.RawMessage `json:"new_value,omitempty"`
	Details       string          `json:"details,omitempty"`
	PerformedBy   int             `json:"performed_by"`
	PerformerRole string          `json:"performer_role"`
	CreatedAt     time.Time       `json:"created_at"`
}
