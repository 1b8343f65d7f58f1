package repo

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/campushq/labops/internal/lifecycle"
	"github.com/campushq/labops/internal/models"
)

type CampusRepo struct {
	db *sql.DB
}

func NewCampusRepo(db *sql.DB) *CampusRepo {
	return &CampusRepo{db: db}
}

const campusColumns = `id, name, code, address, city, COALESCE(phone, ''), created_at, updated_at, deleted_at`

func scanCampus(row interface{ Scan(...any) error }) (*models.Campus, error) {
	var c models.Campus
	err := row.Scan(&c.ID, &c.Name, &c.Code, &c.Address, &c.City, &c.Phone,
		&c.CreatedAt, &c.UpdatedAt, &c.DeletedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CampusRepo) List(ctx context.Context, f lifecycle.Filter, limit, offset int, includeDeleted bool) ([]models.Campus, int, error) {
	var c conds
	if !includeDeleted {
		c.addExpr("deleted_at IS NULL")
	}
	if f.CampusID != 0 {
		c.add("id = $%d", f.CampusID)
	}
	if f.Search != "" {
		c.add("(name ILIKE $%[1]d OR code ILIKE $%[1]d)", "%"+f.Search+"%")
	}
	where := c.clause()

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM campuses"+where, c.args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := fmt.Sprintf("SELECT %s FROM campuses%s ORDER BY id LIMIT $%d OFFSET $%d",
		campusColumns, where, c.next(limit), c.next(offset))
	rows, err := r.db.QueryContext(ctx, query, c.args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var list []models.Campus
	for rows.Next() {
		rec, err := scanCampus(rows)
		if err != nil {
			return nil, 0, err
		}
		list = append(list, *rec)
	}
	return list, total, rows.Err()
}

func (r *CampusRepo) GetByID(ctx context.Context, id int, includeDeleted bool) (*models.Campus, error) {
	query := "SELECT " + campusColumns + " FROM campuses WHERE id = $1"
	if !includeDeleted {
		query += " AND deleted_at IS NULL"
	}
	rec, err := scanCampus(r.db.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return rec, err
}

func (r *CampusRepo) Insert(ctx context.Context, tx *sql.Tx, in *models.Campus) (*models.Campus, error) {
	return scanCampus(tx.QueryRowContext(ctx,
		`INSERT INTO campuses (name, code, address, city, phone)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+campusColumns,
		in.Name, in.Code, in.Address, in.City, in.Phone))
}

func (r *CampusRepo) Update(ctx context.Context, tx *sql.Tx, in *models.Campus) (*models.Campus, error) {
	return scanCampus(tx.QueryRowContext(ctx,
		`UPDATE campuses SET name = $1, code = $2, address = $3, city = $4, phone = $5, updated_at = NOW()
		 WHERE id = $6 AND deleted_at IS NULL
		 RETURNING `+campusColumns,
		in.Name, in.Code, in.Address, in.City, in.Phone, in.ID))
}

func (r *CampusRepo) SetDeleted(ctx context.Context, tx *sql.Tx, id int, deleted bool) (int64, error) {
	return setDeleted(ctx, tx, "campuses", id, deleted)
}

func (r *CampusRepo) HardDelete(ctx context.Context, tx *sql.Tx, id int) (int64, error) {
	return hardDelete(ctx, tx, "campuses", id)
}
