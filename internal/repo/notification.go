package repo

import (
	"context"
	"database/sql"

	"github.com/campushq/labops/internal/models"
)

type NotificationRepo struct {
	db *sql.DB
}

func NewNotificationRepo(db *sql.DB) *NotificationRepo {
	return &NotificationRepo{db: db}
}

const notificationColumns = `id, uuid, campus_id, user_id, channel, subject, body, read, created_at`

// Insert stores one delivered notification. Called by the dispatcher's store
// sink, never by request handlers.
func (r *NotificationRepo) Insert(ctx context.Context, n models.Notification) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (uuid, campus_id, user_id, channel, subject, body)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		n.UUID, n.CampusID, n.UserID, n.Channel, n.Subject, n.Body)
	return err
}

// ListForUser returns a user's notifications plus their campus broadcasts,
// newest first.
func (r *NotificationRepo) ListForUser(ctx context.Context, userID, campusID, limit, offset int) ([]models.Notification, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE user_id = $1 OR (user_id = 0 AND campus_id = $2)
		 ORDER BY created_at DESC, id DESC LIMIT $3 OFFSET $4`,
		userID, campusID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UUID, &n.CampusID, &n.UserID, &n.Channel,
			&n.Subject, &n.Body, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		list = append(list, n)
	}
	return list, rows.Err()
}

// MarkRead flags one of the user's notifications as read. Returns the number
// of rows changed so handlers can 404 on someone else's notification.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID int) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET read = TRUE WHERE id = $1 AND user_id = $2`,
		id, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
