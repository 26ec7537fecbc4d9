package session

import "time"

type Session struct {
	ID        string
	UserID    int64
	CreatedAt time.Time
	ExpiresAt time.Time
}

type Repository interface {
	Create(userID int64, sessionID string) (string, error)
	IsValid(userID int64) (bool, error)
	Invalidate(userID int64) error
}
