package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type EquipmentRepo struct {
	db *sql.DB
}

func NewEquipmentRepo(db *sql.DB) *EquipmentRepo {
	return &EquipmentRepo{db: db}
}

const equipmentColumns = `id, campus_id, lab_id, name, serial_number, category, status,
	purchase_cost, purchased_at, created_at, updated_at, deleted_at`

func scanEquipment(row interface{ Scan(...any) error }) (*models.Equipment, error) {
	var e models.Equipment
	err := row.Scan(&e.ID, &e.CampusID, &e.LabID, &e.Name, &e.SerialNumber, &e.Category, &e.Status,
		&e.PurchaseCost, &e.PurchasedAt, &e.CreatedAt, &e.UpdatedAt, &e.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *EquipmentRepo) List(ctx context.Context, f lifecycle.Filter, limit, offset int, includeDeleted bool) ([]models.Equipment, int, error) {
	var c conds
	if !includeDeleted {
		c.addExpr("deleted_at IS NULL")
	}
	if f.CampusID != 0 {
		c.add("campus_id = $%d", f.CampusID)
	}
	if f.Search != "" {
		c.add("(name ILIKE $%[1]d OR serial_number ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	where := c.clause()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM equipment"+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM equipment%s ORDER BY id LIMIT $%d OFFSET $%d",
		equipmentColumns, where, c.next(limit), c.next(offset))
	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Equipment
	for rows.Next() {
		rec, err := scanEquipment(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}

func (r *EquipmentRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Equipment, error) {
	query := "SELECT " + equipmentColumns + " FROM equipment WHERE id = $1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	rec, err := scanEquipment(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *EquipmentRepo) Insert(ctx context.Context, tx *sql.Tx, in *models.Equipment) (*models.Equipment, error) {
	return scanEquipment(tx.QueryRowContext(ctx,
		`INSERT INTO equipment (campus_id, lab_id, name, serial_number, category, status, purchase_cost, purchased_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING `+equipmentColumns,
		in.CampusID, in.LabID, in.Name, in.SerialNumber, in.Category, in.Status, in.PurchaseCost, in.PurchasedAt))
}

func (r *EquipmentRepo) Update(ctx context.Context, tx *sql.Tx, in *models.Equipment) (*models.Equipment, error) {
	return scanEquipment(tx.QueryRowContext(ctx,
		`UPDATE equipment SET lab_id = $1, name = $2, serial_number = $3, category = $4, status = $5,
			purchase_cost = $6, purchased_at = $7, updated_at = NOW()
		 WHERE id = $8 AND deleted_at IS NULL
		 RETURNING `+equipmentColumns,
		in.LabID, in.Name, in.SerialNumber, in.Category, in.Status, in.PurchaseCost, in.PurchasedAt, in.ID))
}

func (r *EquipmentRepo) SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error) {
	return setDeleted(ctx, tx, "equipment", id, deleted)
}

func (r *EquipmentRepo) HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	return hardDelete(ctx, tx, "equipment", id)
}

// CountByStatus powers the equipment-health report. campusID 0 means all.
func (r *EquipmentRepo) CountByStatus(ctx context.Context, campusID int) (map[string]int, error) {
	var (
		rows *sql.Rows
		err  error
	)
	if campusID != 0 {
		rows, err = r.db.QueryContext(ctx,
			`SELECT status, COUNT(*) FROM equipment WHERE deleted_at IS NULL AND campus_id = $1 GROUP BY status`, campusID)
	} else {
		rows, err = r.db.QueryContext(ctx,
			`SELECT status, COUNT(*) FROM equipment WHERE deleted_at IS NULL GROUP BY status`)
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
