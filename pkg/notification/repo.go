package notification

import (
	"database/sql"
	"fmt"
)

type MySQLRepo struct {
	DB *sql.DB
}

func NewMySQLRepo(db *sql.DB) *MySQLRepo {
	return &MySQLRepo{DB: db}
}

func (r *MySQLRepo) Create(n *Notification) error {
	res, err := r.DB.Exec(`
		INSERT INTO notifications (user_id, type, title, content, ref_id, ref_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, n.UserID, n.Type, n.Title, n.Content, n.RefID, n.RefType, n.Status, n.Created)
	if err != nil {
		return fmt.Errorf("failed to insert notification: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read notification id: %w", err)
	}
	n.ID = id
	return nil
}

// MarkAsRead reports false when the notification does not exist, does
// not belong to the user, or was already read.
func (r *MySQLRepo) MarkAsRead(userID, notificationID int64) (bool, error) {
	res, err := r.DB.Exec(`
		UPDATE notifications SET status = ?
		WHERE id = ? AND user_id = ? AND status = ?
	`, StatusRead, notificationID, userID, StatusUnread)
	if err != nil {
		return false, fmt.Errorf("failed to mark notification read: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *MySQLRepo) MarkAllAsRead(userID int64) (int64, error) {
	res, err := r.DB.Exec(`
		UPDATE notifications SET status = ?
		WHERE user_id = ? AND status = ?
	`, StatusRead, userID, StatusUnread)
	if err != nil {
		return 0, fmt.Errorf("failed to mark notifications read: %w", err)
	}
	return res.RowsAffected()
}

func (r *MySQLRepo) CountUnread(userID int64) (int64, error) {
	var count int64
	err := r.DB.QueryRow(`
		SELECT COUNT(*) FROM notifications WHERE user_id = ? AND status = ?
	`, userID, StatusUnread).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count unread: %w", err)
	}
	return count, nil
}

func (r *MySQLRepo) GetByUser(userID int64, limit int) ([]*Notification, error) {
	rows, err := r.DB.Query(`
		SELECT id, user_id, type, title, content, ref_id, ref_type, status, created_at
		FROM notifications
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []*Notification
	for rows.Next() {
		var n Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Content,
			&n.RefID, &n.RefType, &n.Status, &n.Created); err != nil {
			return nil, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}
