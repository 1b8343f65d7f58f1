package models

import "time"

// Lifecycle holds the columns every managed resource shares. A nil DeletedAt
// means the record is active; soft-deleted rows stay in storage and are
// excluded from default reads.
type Lifecycle struct {
	ID        int        `json:"id"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
	DeletedAt *time.Time `json:"deleted_at,omitempty"`
}

func (l Lifecycle) RecordID() int { return l.ID }

func (l Lifecycle) Deleted() bool { return l.DeletedAt != nil }

// SetDeletedAt rewrites the soft-delete marker on an in-memory copy, used to
// build audit snapshots that reflect the state a mutation is about to commit.
func (l *Lifecycle) SetDeletedAt(t *time.Time) { l.DeletedAt = t }
