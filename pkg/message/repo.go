package message

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

func (r *MySQLRepo) Create(msg *Message) error {
	res, err := r.DB.Exec(`
		INSERT INTO messages (from_id, to_id, content, message_type, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, msg.FromID, msg.ToID, msg.Content, msg.MessageType, msg.Status, msg.Created)
	if err != nil {
		return fmt.Errorf("failed to insert message: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read message id: %w", err)
	}
	msg.ID = id
	return nil
}

func (r *MySQLRepo) GetDialog(userID, peerID int64, limit int) ([]*Message, error) {
	rows, err := r.DB.Query(`
		SELECT id, from_id, to_id, content, message_type, status, created_at
		FROM messages
		WHERE (from_id = ? AND to_id = ?) OR (from_id = ? AND to_id = ?)
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, peerID, peerID, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query dialog: %w", err)
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.FromID, &m.ToID, &m.Content, &m.MessageType, &m.Status, &m.Created); err != nil {
			return nil, fmt.Errorf("failed to scan message: %w", err)
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
