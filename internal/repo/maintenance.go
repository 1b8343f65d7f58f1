package repo

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type MaintenanceRepo struct {
	db *sql.DB
}

func NewMaintenanceRepo(db *sql.DB) *MaintenanceRepo {
	return &MaintenanceRepo{db: db}
}

const maintenanceColumns = `id, campus_id, equipment_id, title, description, status, cost,
	requested_by, COALESCE(notes, ''), scheduled_for, created_at, updated_at, deleted_at`

func scanMaintenance(row interface{ Scan(...any) error }) (*models.Maintenance, error) {
	var m models.Maintenance
	err := row.Scan(&m.ID, &m.CampusID, &m.EquipmentID, &m.Title, &m.Description, &m.Status,
		&m.Cost, &m.RequestedBy, &m.Notes, &m.ScheduledFor,
		&m.CreatedAt, &m.UpdatedAt, &m.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *MaintenanceRepo) List(ctx context.Context, f lifecycle.Filter, limit, offset int, includeDeleted bool) ([]models.Maintenance, int, error) {
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
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM maintenance_requests"+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM maintenance_requests%s ORDER BY id DESC LIMIT $%d OFFSET $%d",
		maintenanceColumns, where, c.next(limit), c.next(offset))
	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Maintenance
	for rows.Next() {
		rec, err := scanMaintenance(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}

func (r *MaintenanceRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Maintenance, error) {
	query := "SELECT " + maintenanceColumns + " FROM maintenance_requests WHERE id = $1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	rec, err := scanMaintenance(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *MaintenanceRepo) Insert(ctx context.Context, tx *sql.Tx, in *models.Maintenance) (*models.Maintenance, error) {
	return scanMaintenance(tx.QueryRowContext(ctx,
		`INSERT INTO maintenance_requests (campus_id, equipment_id, title, description, status, cost, requested_by, scheduled_for)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+maintenanceColumns,
		in.CampusID, in.EquipmentID, in.Title, in.Description, in.Status, in.Cost, in.RequestedBy, in.ScheduledFor))
}

func (r *MaintenanceRepo) Update(ctx context.Context, tx *sql.Tx, in *models.Maintenance) (*models.Maintenance, error) {
	return scanMaintenance(tx.QueryRowContext(ctx,
		`UPDATE maintenance_requests SET equipment_id = $1, title = $2, description = $3, status = $4,
			cost = $5, notes = $6, scheduled_for = $7, updated_at = NOW()
		 WHERE id = $8 AND deleted_at IS NULL
		 RETURNING `+maintenanceColumns,
		in.EquipmentID, in.Title, in.Description, in.Status, in.Cost, in.Notes, in.ScheduledFor, in.ID))
}

func (r *MaintenanceRepo) SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error) {
	return setDeleted(ctx, tx, "maintenance_requests", id, deleted)
}

func (r *MaintenanceRepo) HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	return hardDelete(ctx, tx, "maintenance_requests", id)
}

// ListScheduledBetween returns active requests scheduled inside [from, to),
// used by the reminder scheduler.
func (r *MaintenanceRepo) ListScheduledBetween(ctx context.Context, from, to time.Time) ([]models.Maintenance, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+maintenanceColumns+` FROM maintenance_requests
		 WHERE deleted_at IS NULL AND scheduled_for >= $1 AND scheduled_for < $2
		   AND status IN ($3, $4)
		 ORDER BY scheduled_for`,
		from, to, models.MaintenanceApproved, models.MaintenanceInProgress)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Maintenance
	for rows.Next() {
		rec, err := scanMaintenance(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *rec)
	}
	return list, rows.Err()
}

// CostByMonth powers the maintenance-cost report: total completed cost per
// calendar month, newest first.
func (r *MaintenanceRepo) CostByMonth(ctx context.Context, campusID, months int) ([]MonthCost, error) {
	var (
		rows *sql.Rows
		err  error
	)
	base := `SELECT to_char(date_trunc('month', updated_at), 'YYYY-MM') AS month, COALESCE(SUM(cost), 0)
		 FROM maintenance_requests
		 WHERE deleted_at IS NULL AND status = $1`
	if campusID != 0 {
		rows, err = r.db.QueryContext(ctx,
			base+` AND campus_id = $2 GROUP BY month ORDER BY month DESC LIMIT $3`,
			models.MaintenanceCompleted, campusID, months)
	} else {
		rows, err = r.db.QueryContext(ctx,
			base+` GROUP BY month ORDER BY month DESC LIMIT $2`,
			models.MaintenanceCompleted, months)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []MonthCost
	for rows.Next() {
		var mc MonthCost
		if err := rows.Scan(&mc.Month, &mc.Total); err != nil {
			return nil, err
		}
		out = append(out, mc)
	}
	return out, rows.Err()
}

// MonthCost is one row of the maintenance-cost report.
type MonthCost struct {
	Month string  `json:"month"`
	Total float64 `json:"total"`
}
