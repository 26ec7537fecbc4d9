package message

import "time"

const (
	StatusUnread = "UNREAD"
	StatusRead   = "READ"
)

type Message struct {
	ID          int64     `json:"id"`
	FromID      int64     `json:"from_id"`
	ToID        int64     `json:"to_id"`
	Content     string    `json:"content"`
	MessageType string    `json:"message_type"`
	Status      string    `json:"status"`
	Created     time.Time `json:"created_at"`
}

type Repository interface {
	Create(msg *Message) error
	GetDialog(userID, peerID int64, limit int) ([]*Message, error)
}
