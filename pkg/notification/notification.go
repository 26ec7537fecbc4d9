package notification

import (
	"context"
	"time"
)

const (
	TypeComment = "COMMENT"
	TypeLike    = "LIKE"
	TypeSystem  = "SYSTEM"

	RefTypePost    = "POST"
	RefTypeComment = "COMMENT"

	StatusUnread = "UNREAD"
	StatusRead   = "READ"
)

type Notification struct {
	ID      int64
	UserID  int64
	Type    string
	Title   string
	Content string
	RefID   string
	RefType string
	Status  string
	Created time.Time
}

// Display is the payload shape pushed to clients; the recipient is
// implied by the connection, so UserID stays server-side.
type Display struct {
	ID      int64     `json:"id"`
	Type    string    `json:"type"`
	Title   string    `json:"title"`
	Content string    `json:"content"`
	RefID   string    `json:"ref_id"`
	RefType string    `json:"ref_type"`
	Status  string    `json:"status"`
	Created time.Time `json:"created_at"`
}

func (n *Notification) Display() Display {
	return Display{
		ID:      n.ID,
		Type:    n.Type,
		Title:   n.Title,
		Content: n.Content,
		RefID:   n.RefID,
		RefType: n.RefType,
		Status:  n.Status,
		Created: n.Created,
	}
}

type Repository interface {
	Create(n *Notification) error
	MarkAsRead(userID, notificationID int64) (bool, error)
	MarkAllAsRead(userID int64) (int64, error)
	CountUnread(userID int64) (int64, error)
	GetByUser(userID int64, limit int) ([]*Notification, error)
}

// Cache keeps hot unread counters out of MySQL.
type Cache interface {
	GetUnread(ctx context.Context, userID int64) (int64, bool, error)
	SetUnread(ctx context.Context, userID, count int64) error
	Invalidate(ctx context.Context, userID int64) error
}
