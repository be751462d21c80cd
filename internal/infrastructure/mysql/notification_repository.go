package mysql

import (
	"context"
	"database/sql"

	"vehicle-auctions/internal/domain"
)

type MySQLNotificationRepository struct {
	db *sql.DB
}

func NewMySQLNotificationRepository(db *sql.DB) *MySQLNotificationRepository {
	return &MySQLNotificationRepository{db: db}
}

// ListRecent returns the user's newest notifications, read and unread unless
// unreadOnly is set. The result is the dedup lookback window, so ordering by
// recency matters more than completeness.
func (r *MySQLNotificationRepository) ListRecent(ctx context.Context, userID int64, unreadOnly bool, limit int) ([]*domain.Notification, error) {
	query := `
        SELECT id, user_id, type, title, message, is_read, auction_id, lot_id, created_by, created_at
        FROM notifications
        WHERE user_id = ?
    `
	args := []interface{}{userID}

	if unreadOnly {
		query += ` AND is_read = 0`
	}
	query += ` ORDER BY created_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message,
			&n.IsRead, &n.AuctionID, &n.LotID, &n.CreatedBy, &n.CreatedAt)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, &n)
	}

	return notifications, rows.Err()
}

func (r *MySQLNotificationRepository) Create(ctx context.Context, n *domain.Notification) (int64, error) {
	query := `
        INSERT INTO notifications (user_id, type, title, message, is_read, auction_id, lot_id, created_by, created_at)
        VALUES (?, ?, ?, ?, 0, ?, ?, ?, ?)
    `
	res, err := r.db.ExecContext(ctx, query,
		n.UserID, n.Type, n.Title, n.Message, n.AuctionID, n.LotID, n.CreatedBy, n.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *MySQLNotificationRepository) CreateAdmin(ctx context.Context, n *domain.AdminNotification) (int64, error) {
	query := `
        INSERT INTO admin_notifications (affected_user_id, type, title, message, is_read, auction_id, lot_id, created_at)
        VALUES (?, ?, ?, ?, 0, ?, ?, ?)
    `
	res, err := r.db.ExecContext(ctx, query,
		n.AffectedUserID, n.Type, n.Title, n.Message, n.AuctionID, n.LotID, n.CreatedAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

func (r *MySQLNotificationRepository) MarkRead(ctx context.Context, userID, notificationID int64) error {
	query := `UPDATE notifications SET is_read = 1 WHERE id = ? AND user_id = ?`
	_, err := r.db.ExecContext(ctx, query, notificationID, userID)
	return err
}

func (r *MySQLNotificationRepository) MarkAllRead(ctx context.Context, userID int64) error {
	query := `UPDATE notifications SET is_read = 1 WHERE user_id = ? AND is_read = 0`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}

func (r *MySQLNotificationRepository) Clear(ctx context.Context, userID int64) error {
	query := `DELETE FROM notifications WHERE user_id = ?`
	_, err := r.db.ExecContext(ctx, query, userID)
	return err
}
