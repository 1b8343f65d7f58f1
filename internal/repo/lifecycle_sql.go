package repo

import (
	"context"
	"database/sql"
)

// setDeleted flips the soft-delete marker. The WHERE clause guards the
// expected current state so a concurrent double delete or double restore
// shows up as zero affected rows.
func setDeleted(ctx context.Context, tx *sql.Tx, table string, id int, deleted bool) (int64, error) {
	var (
		res sql.Result
		err error
	)
	if deleted {
		res, err = tx.ExecContext(ctx,
			`UPDATE `+table+` SET deleted_at = NOW(), updated_at = NOW() WHERE id = $1 AND deleted_at IS NULL`, id)
	} else {
		res, err = tx.ExecContext(ctx,
			`UPDATE `+table+` SET deleted_at = NULL, updated_at = NOW() WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	}
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// hardDelete permanently removes a row. Only soft-deleted rows qualify; the
// lifecycle manager enforces the ordering, the WHERE clause backs it up.
func hardDelete(ctx context.Context, tx *sql.Tx, table string, id int) (int64, error) {
	res, err := tx.ExecContext(ctx,
		`DELETE FROM `+table+` WHERE id = $1 AND deleted_at IS NOT NULL`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
