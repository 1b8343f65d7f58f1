package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type EventRepo struct {
	db *sql.DB
}

func NewEventRepo(db *sql.DB) *EventRepo {
	return &EventRepo{db: db}
}

const eventColumns = `id, campus_id, lab_id, title, COALESCE(description, ''), start_at, end_at, organizer,
	created_at, updated_at, deleted_at`

func scanEvent(row interface{ Scan(...any) error }) (*models.Event, error) {
	var e models.Event
	err := row.Scan(&e.ID, &e.CampusID, &e.LabID, &e.Title, &e.Description, &e.StartAt, &e.EndAt,
		&e.Organizer, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EventRepo) List(ctx context.Context, f lifecycle.Filter, limit, offset int, includeDeleted bool) ([]models.Event, int, error) {
	var c conds
	if !includeDeleted {
		c.addExpr("deleted_at IS NULL")
	}
	if f.CampusID != 0 {
		c.add("campus_id = $%d", f.CampusID)
	}
	if f.Search != "" {
		c.add("title ILIKE $%d", "%"+f.Search+"%")
	}
	where := c.clause()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM events"+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM events%s ORDER BY start_at LIMIT $%d OFFSET $%d",
		eventColumns, where, c.next(limit), c.next(offset))
	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}

func (r *EventRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Event, error) {
	query := "SELECT " + eventColumns + " FROM events WHERE id = $1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	rec, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *EventRepo) Insert(ctx context.Context, tx *sql.Tx, in *models.Event) (*models.Event, error) {
	return scanEvent(tx.QueryRowContext(ctx,
		`INSERT INTO events (campus_id, lab_id, title, description, start_at, end_at, organizer)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+eventColumns,
		in.CampusID, in.LabID, in.Title, in.Description, in.StartAt, in.EndAt, in.Organizer))
}

func (r *EventRepo) Update(ctx context.Context, tx *sql.Tx, in *models.Event) (*models.Event, error) {
	return scanEvent(tx.QueryRowContext(ctx,
		`UPDATE events SET lab_id = $1, title = $2, description = $3, start_at = $4, end_at = $5,
			organizer = $6, updated_at = NOW()
		 WHERE id = $7 AND deleted_at IS NULL
		 RETURNING `+eventColumns,
		in.LabID, in.Title, in.Description, in.StartAt, in.EndAt, in.Organizer, in.ID))
}

func (r *EventRepo) SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error) {
	return setDeleted(ctx, tx, "events", id, deleted)
}

func (r *EventRepo) HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	return hardDelete(ctx, tx, "events", id)
}

// ListStartingBetween returns active events starting inside [from, to), used
// by the reminder scheduler.
func (r *EventRepo) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM events
		 WHERE deleted_at IS NULL AND start_at >= $1 AND start_at < $2
		 ORDER BY start_at`,
		from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Event
	for rows.Next() {
		rec, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}
