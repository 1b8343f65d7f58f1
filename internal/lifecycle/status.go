package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/models"
	"github.com/campushq/labops/internal/status"
)

// statusSnapshot is the restricted audit payload for STATUS_CHANGE entries.
type statusSnapshot struct {
	Status string `json:"status"`
	Notes  string `json:"notes,omitempty"`
}

// UpdateStatus moves an active record through its status machine. current
// reads the record's status field and set writes the new status plus the
// free-text notes/resolution payload. An illegal transition fails validation
// before anything is written, so no audit entry is produced.
func (m *Manager[T]) UpdateStatus(ctx context.Context, id int, machine *status.Machine, current func(*T) string, set func(rec *T, newStatus, notes string), newStatus, notes string, p Performer) (*T, error) {
	if !machine.Known(newStatus) {
		return nil, apperr.Validation("unknown " + machine.Name() + " status: " + newStatus)
	}
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	cur, err := m.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	from := current(cur)
	if !machine.Allowed(from, newStatus) {
		return nil, apperr.Validation("illegal " + machine.Name() + " transition " + from + " -> " + newStatus)
	}

	next := *cur
	set(&next, newStatus, notes)

	oldVal, _ := json.Marshal(statusSnapshot{Status: from})
	newVal, _ := json.Marshal(statusSnapshot{Status: newStatus, Notes: notes})

	var updated *T
	err = m.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		updated, err = m.store.Update(ctx, tx, &next)
		if err != nil {
			return err
		}
		return m.audit.Record(ctx, tx, models.AuditEntry{
			CampusID:      m.desc.CampusID(updated),
			EntityType:    m.desc.EntityType,
			EntityID:      id,
			Action:        models.AuditStatusChange,
			OldValue:      oldVal,
			NewValue:      newVal,
			PerformedBy:   p.UserID,
			PerformerRole: p.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
