// Package lifecycle implements the shared create/update/soft-delete/restore/
// hard-delete state machine every managed resource follows. Each record is a
// two-state machine (active <-> deleted) with hard delete as an exit from the
// deleted state only, and every mutation commits atomically with its audit
// entry in one transaction.
package lifecycle

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/campushq/labops/internal/apperr"
	"github.com/campushq/labops/internal/models"
)

// DefaultTimeout bounds a single lifecycle operation, store I/O included.
const DefaultTimeout = 5 * time.Second

// Record is the minimal surface a managed model exposes, satisfied by
// embedding models.Lifecycle.
type Record interface {
	RecordID() int
	Deleted() bool
}

// Performer identifies who is executing an operation, taken from the verified
// JWT claims.
type Performer struct {
	UserID   int
	Username string
	Role     string
	CampusID int
}

// Filter narrows listings. CampusID 0 means all campuses (subject to the
// caller's scope); Search is an optional name match.
type Filter struct {
	CampusID int
	Search   string
}

// PageRequest is 1-based. Limit is capped by the manager at 100.
type PageRequest struct {
	Page  int
	Limit int
}

// Result wraps one page of records. TotalPages = ceil(Total/Limit).
type Result[T Record] struct {
	Data       []T `json:"data"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

// Store is the per-resource persistence contract. Mutations take the shared
// transaction so the audit write commits or rolls back with them.
type Store[T Record] interface {
	List(ctx context.Context, f Filter, limit, offset int, includeDeleted bool) ([]T, int, error)
	GetByID(ctx context.Context, id int, includeDeleted bool) (*T, error)
	Insert(ctx context.Context, tx *sql.Tx, rec *T) (*T, error)
	Update(ctx context.Context, tx *sql.Tx, rec *T) (*T, error)
	// SetDeleted flips deleted_at and guards the expected current state in
	// SQL; it returns the number of rows changed so races surface as conflicts.
	SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error)
	HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error)
}

// Recorder appends an audit entry inside the supplied transaction.
type Recorder interface {
	Record(ctx context.Context, tx *sql.Tx, e models.AuditEntry) error
}

// Descriptor carries the per-resource bits: the audit entity type tag, field
// validation, and campus-scope extraction. Everything else is shared.
type Descriptor[T Record] struct {
	EntityType string
	// Validate checks required fields and internal consistency on create and
	// after applying an update patch.
	Validate func(*T) error
	// CampusID returns the record's campus scope. Campus itself returns its
	// own id so even global entities carry a scope in the audit log.
	CampusID func(*T) int
}

// Manager runs the lifecycle state machine for one resource type. It holds no
// state between calls; every operation is a standalone transaction.
type Manager[T Record] struct {
	db      *sql.DB
	store   Store[T]
	audit   Recorder
	desc    Descriptor[T]
	timeout time.Duration
}

func NewManager[T Record](db *sql.DB, store Store[T], audit Recorder, desc Descriptor[T]) *Manager[T] {
	return &Manager[T]{db: db, store: store, audit: audit, desc: desc, timeout: DefaultTimeout}
}

// WithTimeout overrides the per-operation timeout.
func (m *Manager[T]) WithTimeout(d time.Duration) *Manager[T] {
	if d > 0 {
		m.timeout = d
	}
	return m
}

func (m *Manager[T]) opCtx(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, m.timeout)
}

// FindAll returns one page of records, excluding soft-deleted rows unless
// includeDeleted is set.
func (m *Manager[T]) FindAll(ctx context.Context, f Filter, p PageRequest, includeDeleted bool) (*Result[T], error) {
	if p.Page < 1 || p.Limit < 1 {
		return nil, apperr.Validation("page and limit must be positive")
	}
	if p.Limit > 100 {
		p.Limit = 100
	}
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	offset := (p.Page - 1) * p.Limit
	data, total, err := m.store.List(ctx, f, p.Limit, offset, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", m.desc.EntityType, err)
	}
	totalPages := (total + p.Limit - 1) / p.Limit
	return &Result[T]{Data: data, Page: p.Page, Limit: p.Limit, Total: total, TotalPages: totalPages}, nil
}

// FindByID returns one record. Soft-deleted rows count as not found unless
// includeDeleted is set.
func (m *Manager[T]) FindByID(ctx context.Context, id int, includeDeleted bool) (*T, error) {
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	rec, err := m.store.GetByID(ctx, id, includeDeleted)
	if err != nil {
		return nil, fmt.Errorf("get %s %d: %w", m.desc.EntityType, id, err)
	}
	if rec == nil {
		return nil, apperr.NotFound(m.desc.EntityType + " not found")
	}
	return rec, nil
}

// Create validates, persists the record, and writes the CREATE audit entry in
// the same transaction.
func (m *Manager[T]) Create(ctx context.Context, rec *T, p Performer) (*T, error) {
	if m.desc.Validate != nil {
		if err := m.desc.Validate(rec); err != nil {
			return nil, err
		}
	}
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	var created *T
	err := m.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		created, err = m.store.Insert(ctx, tx, rec)
		if err != nil {
			return err
		}
		return m.audit.Record(ctx, tx, models.AuditEntry{
			CampusID:      m.desc.CampusID(created),
			EntityType:    m.desc.EntityType,
			EntityID:      (*created).RecordID(),
			Action:        models.AuditCreate,
			NewValue:      snapshot(created),
			PerformedBy:   p.UserID,
			PerformerRole: p.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Update loads the active record, applies the partial patch, validates, and
// persists with an UPDATE audit entry carrying full old/new snapshots.
func (m *Manager[T]) Update(ctx context.Context, id int, apply func(*T), p Performer) (*T, error) {
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	cur, err := m.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	oldSnap := snapshot(cur)

	next := *cur
	apply(&next)
	if m.desc.Validate != nil {
		if err := m.desc.Validate(&next); err != nil {
			return nil, err
		}
	}

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
			Action:        models.AuditUpdate,
			OldValue:      oldSnap,
			NewValue:      snapshot(updated),
			PerformedBy:   p.UserID,
			PerformerRole: p.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// SoftDelete marks an active record deleted. Deleting an already-deleted
// record is a conflict, mirroring Restore.
func (m *Manager[T]) SoftDelete(ctx context.Context, id int, p Performer) error {
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	cur, err := m.FindByID(ctx, id, true)
	if err != nil {
		return err
	}
	if (*cur).Deleted() {
		return apperr.Conflict(m.desc.EntityType + " already deleted")
	}
	return m.inTx(ctx, func(tx *sql.Tx) error {
		n, err := m.store.SetDeleted(ctx, tx, id, true)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.Conflict(m.desc.EntityType + " already deleted")
		}
		return m.audit.Record(ctx, tx, models.AuditEntry{
			CampusID:      m.desc.CampusID(cur),
			EntityType:    m.desc.EntityType,
			EntityID:      id,
			Action:        models.AuditDelete,
			OldValue:      snapshot(cur),
			PerformedBy:   p.UserID,
			PerformerRole: p.Role,
		})
	})
}

// Restore clears deleted_at on a soft-deleted record. Restoring an active
// record is a conflict.
func (m *Manager[T]) Restore(ctx context.Context, id int, p Performer) (*T, error) {
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	cur, err := m.FindByID(ctx, id, true)
	if err != nil {
		return nil, err
	}
	if !(*cur).Deleted() {
		return nil, apperr.Conflict(m.desc.EntityType + " is not deleted")
	}
	err = m.inTx(ctx, func(tx *sql.Tx) error {
		n, err := m.store.SetDeleted(ctx, tx, id, false)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.Conflict(m.desc.EntityType + " is not deleted")
		}
		return m.audit.Record(ctx, tx, models.AuditEntry{
			CampusID:      m.desc.CampusID(cur),
			EntityType:    m.desc.EntityType,
			EntityID:      id,
			Action:        models.AuditRestore,
			NewValue:      restoredSnapshot(cur),
			PerformedBy:   p.UserID,
			PerformerRole: p.Role,
		})
	})
	if err != nil {
		return nil, err
	}
	return m.FindByID(ctx, id, false)
}

// HardDelete permanently removes a soft-deleted record. A record must be
// soft-deleted first so history always shows the intent before removal.
func (m *Manager[T]) HardDelete(ctx context.Context, id int, p Performer) error {
	ctx, cancel := m.opCtx(ctx)
	defer cancel()

	cur, err := m.FindByID(ctx, id, true)
	if err != nil {
		return err
	}
	if !(*cur).Deleted() {
		return apperr.Conflict(m.desc.EntityType + " must be soft-deleted before permanent removal")
	}
	return m.inTx(ctx, func(tx *sql.Tx) error {
		n, err := m.store.HardDelete(ctx, tx, id)
		if err != nil {
			return err
		}
		if n == 0 {
			return apperr.NotFound(m.desc.EntityType + " not found")
		}
		return m.audit.Record(ctx, tx, models.AuditEntry{
			CampusID:      m.desc.CampusID(cur),
			EntityType:    m.desc.EntityType,
			EntityID:      id,
			Action:        models.AuditDelete,
			OldValue:      snapshot(cur),
			Details:       models.AuditDetailsHard,
			PerformedBy:   p.UserID,
			PerformerRole: p.Role,
		})
	})
}

func (m *Manager[T]) inTx(ctx context.Context, fn func(*sql.Tx) error) error {
	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

func snapshot[T any](rec *T) json.RawMessage {
	b, err := json.Marshal(rec)
	if err != nil {
		return nil
	}
	return b
}

// restoredSnapshot captures the state a restore is about to commit: the
// record with its soft-delete marker cleared on an in-memory copy, so the
// audit entry's after-value does not show the record as still deleted.
func restoredSnapshot[T any](cur *T) json.RawMessage {
	rec := *cur
	if l, ok := any(&rec).(interface{ SetDeletedAt(*time.Time) }); ok {
		l.SetDeletedAt(nil)
	}
	return snapshot(&rec)
}
