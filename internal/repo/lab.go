package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type LabRepo struct {
	db *sql.DB
}

func NewLabRepo(db *sql.DB) *LabRepo {
	return &LabRepo{db: db}
}

const labColumns = `id, campus_id, name, room_number, capacity, COALESCE(description, ''), created_at, updated_at, deleted_at`

func scanLab(row interface{ Scan(...any) error }) (*models.Lab, error) {
	var l models.Lab
	err := row.Scan(&l.ID, &l.CampusID, &l.Name, &l.RoomNumber, &l.Capacity, &l.Description,
		&l.CreatedAt, &l.UpdatedAt, &l.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LabRepo) List(ctx context.Context, f lifecycle.Filter, limit, offset int, includeDeleted bool) ([]models.Lab, int, error) {
	var c conds
	if !includeDeleted {
		c.addExpr("deleted_at IS NULL")
	}
	if f.CampusID != 0 {
		c.add("campus_id = $%d", f.CampusID)
	}
	if f.Search != "" {
		c.add("(name ILIKE $%[1]d OR room_number ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	where := c.clause()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM labs"+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM labs%s ORDER BY id LIMIT $%d OFFSET $%d",
		labColumns, where, c.next(limit), c.next(offset))
	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Lab
	for rows.Next() {
		rec, err := scanLab(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}

func (r *LabRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Lab, error) {
	query := "SELECT " + labColumns + " FROM labs WHERE id = $1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	rec, err := scanLab(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *LabRepo) Insert(ctx context.Context, tx *sql.Tx, in *models.Lab) (*models.Lab, error) {
	return scanLab(tx.QueryRowContext(ctx,
		`INSERT INTO labs (campus_id, name, room_number, capacity, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+labColumns,
		in.CampusID, in.Name, in.RoomNumber, in.Capacity, in.Description))
}

func (r *LabRepo) Update(ctx context.Context, tx *sql.Tx, in *models.Lab) (*models.Lab, error) {
	return scanLab(tx.QueryRowContext(ctx,
		`UPDATE labs SET name = $1, room_number = $2, capacity = $3, description = $4, updated_at = NOW()
		 WHERE id = $5 AND deleted_at IS NULL
		 RETURNING `+labColumns,
		in.Name, in.RoomNumber, in.Capacity, in.Description, in.ID))
}

func (r *LabRepo) SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error) {
	return setDeleted(ctx, tx, "labs", id, deleted)
}

func (r *LabRepo) HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	return hardDelete(ctx, tx, "labs", id)
}
