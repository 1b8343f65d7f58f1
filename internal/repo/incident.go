package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type IncidentRepo struct {
	db *sql.DB
}

func NewIncidentRepo(db *sql.DB) *IncidentRepo {
	return &IncidentRepo{db: db}
}

const incidentColumns = `id, campus_id, lab_id, equipment_id, title, description, priority, status,
	reported_by, COALESCE(resolution, ''), created_at, updated_at, deleted_at`

func scanIncident(row interface{ Scan(...any) error }) (*models.Incident, error) {
	var i models.Incident
	err := row.Scan(&i.ID, &i.CampusID, &i.LabID, &i.EquipmentID, &i.Title, &i.Description,
		&i.Priority, &i.Status, &i.ReportedBy, &i.Resolution,
		&i.CreatedAt, &i.UpdatedAt, &i.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *IncidentRepo) List(ctx context.Context, f lifecycle.Filter, limit, offset int, includeDeleted bool) ([]models.Incident, int, error) {
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
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM incidents"+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM incidents%s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		incidentColumns, where, c.next(limit), c.next(offset))
	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Incident
	for rows.Next() {
		rec, err := scanIncident(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}

func (r *IncidentRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Incident, error) {
	query := "SELECT " + incidentColumns + " FROM incidents WHERE id = $1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	rec, err := scanIncident(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *IncidentRepo) Insert(ctx context.Context, tx *sql.Tx, in *models.Incident) (*models.Incident, error) {
	return scanIncident(tx.QueryRowContext(ctx,
		`INSERT INTO incidents (campus_id, lab_id, equipment_id, title, description, priority, status, reported_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+incidentColumns,
		in.CampusID, in.LabID, in.EquipmentID, in.Title, in.Description, in.Priority, in.Status, in.ReportedBy))
}

func (r *IncidentRepo) Update(ctx context.Context, tx *sql.Tx, in *models.Incident) (*models.Incident, error) {
	return scanIncident(tx.QueryRowContext(ctx,
		`UPDATE incidents SET lab_id = $1, equipment_id = $2, title = $3, description = $4,
			priority = $5, status = $6, resolution = $7, updated_at = NOW()
		 WHERE id = $8 AND deleted_at IS NULL
		 RETURNING `+incidentColumns,
		in.LabID, in.EquipmentID, in.Title, in.Description, in.Priority, in.Status, in.Resolution, in.ID))
}

func (r *IncidentRepo) SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error) {
	return setDeleted(ctx, tx, "incidents", id, deleted)
}

func (r *IncidentRepo) HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	return hardDelete(ctx, tx, "incidents", id)
}

// CountByStatus powers the incidents-summary report. campusID 0 means all.
func (r *IncidentRepo) CountByStatus(ctx context.Context, campusID int) (map[string]int, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if campusID != 0 {
		rows, err = r.db.QueryContext(ctx,
			`SELECT status, COUNT(*) FROM incidents WHERE deleted_at IS NULL AND campus_id = $1 GROUP BY status`, campusID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT status, COUNT(*) FROM incidents WHERE deleted_at IS NULL GROUP BY status`)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[string]int)
	for rows.Next() {
		var s string
		var n int
		if err := rows.Scan(&s, &n); err != nil {
			return nil, err
		}
		out[s] = n
	}
	return out, rows.Err()
}
