package repo

import (
	"context"
	"database/sql"

	"github.com/campushq/labops/internal/models"
)

// execer lets audit writes run on the pool or inside a caller's transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// AuditRepo persists audit log entries. The table is insert-only: nothing in
// the application updates or deletes rows.
type AuditRepo struct {
	db *sql.DB
}

func NewAuditRepo(db *sql.DB) *AuditRepo {
	return &AuditRepo{db: db}
}

const auditInsert = `INSERT INTO audit_log
	(campus_id, entity_type, entity_id, action, old_value, new_value, details, performed_by, performer_role)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

// Record appends one entry. When tx is non-nil the insert joins the caller's
// transaction so the triggering mutation and its audit entry commit or roll
// back together.
func (r *AuditRepo) Record(ctx context.Context, tx *sql.Tx, e models.AuditEntry) error {
	var ex execer = r.db
	if tx != nil {
		ex = tx
	}
	_, err := ex.ExecContext(ctx, auditInsert,
		e.CampusID, e.EntityType, e.EntityID, e.Action,
		nullJSON(e.OldValue), nullJSON(e.NewValue), e.Details,
		e.PerformedBy, e.PerformerRole,
	)
	return err
}

const auditColumns = `id, campus_id, entity_type, entity_id, action,
	COALESCE(old_value::text, 'null'), COALESCE(new_value::text, 'null'), COALESCE(details, ''),
	performed_by, performer_role, created_at`

// List returns recent entries, newest first. campusID 0 means all campuses.
func (r *AuditRepo) List(ctx context.Context, campusID, limit, offset int) ([]models.AuditEntry, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if campusID != 0 {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+auditColumns+` FROM audit_log WHERE campus_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`,
			campusID, limit, offset)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT `+auditColumns+` FROM audit_log ORDER BY created_at DESC, id DESC LIMIT $1 OFFSET $2`,
			limit, offset)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

// ListForEntity returns the full history of one entity, oldest first, so
// callers see the lifecycle in order.
func (r *AuditRepo) ListForEntity(ctx context.Context, entityType string, entityID int) ([]models.AuditEntry, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+auditColumns+` FROM audit_log WHERE entity_type = $1 AND entity_id = $2 ORDER BY created_at ASC, id ASC`,
		entityType, entityID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanAuditRows(rows)
}

func scanAuditRows(rows *sql.Rows) ([]models.AuditEntry, error) {
	var entries []models.AuditEntry
	for rows.Next() {
		var e models.AuditEntry
		var oldVal, newVal []byte
		if err := rows.Scan(&e.ID, &e.CampusID, &e.EntityType, &e.EntityID, &e.Action,
			&oldVal, &newVal, &e.Details, &e.PerformedBy, &e.PerformerRole, &e.CreatedAt); err != nil {
			return nil, err
		}
		if string(oldVal) != "null" {
			e.OldValue = oldVal
		}
		if string(newVal) != "null" {
			e.NewValue = newVal
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// nullJSON maps an empty snapshot to SQL NULL instead of an empty string,
// which jsonb would reject.
func nullJSON(b []byte) any {
	if len(b) == 0 {
		return nil
	}
	return string(b)
}
