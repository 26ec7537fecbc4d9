package message

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"xiaoyuclone/pkg/friend"
	"xiaoyuclone/pkg/realtime"
)

const dialogLimit = 100

var (
	ErrEmptyContent = errors.New("message content is empty")
	ErrSelfMessage  = errors.New("cannot send a message to yourself")
	ErrNotFriends   = errors.New("users are not friends")
	ErrBlocked      = errors.New("messaging is blocked between these users")
)

// Deliverer pushes an event to a connected recipient.
type Deliverer interface {
	DeliverToUser(userID int64, event any) bool
}

type Service struct {
	Repo    Repository
	Friends friend.Repository
	Router  Deliverer
	Logger  *slog.Logger
}

func NewService(repo Repository, friends friend.Repository, router Deliverer, logger *slog.Logger) *Service {
	return &Service{Repo: repo, Friends: friends, Router: router, Logger: logger}
}

// Send validates the relationship, persists the message, then pushes
// it to the recipient when online. The push is a side effect: the
// message is stored either way and stays fetchable through History.
func (s *Service) Send(ctx context.Context, fromID, toID int64, content, messageType string) (any, error) {
	if content == "" {
		return nil, ErrEmptyContent
	}
	if toID == fromID {
		return nil, ErrSelfMessage
	}

	rel, err := s.Friends.Relation(toID, fromID)
	if err != nil {
		return nil, fmt.Errorf("failed to check relation: %w", err)
	}
	if rel == friend.StatusBlocked {
		return nil, ErrBlocked
	}
	if rel != friend.StatusAccepted {
		return nil, ErrNotFriends
	}

	// The edge is directed, so a block by the sender must be checked
	// separately from the recipient's edge.
	reverse, err := s.Friends.Relation(fromID, toID)
	if err != nil {
		return nil, fmt.Errorf("failed to check relation: %w", err)
	}
	if reverse == friend.StatusBlocked {
		return nil, ErrBlocked
	}

	msg := &Message{
		FromID:      fromID,
		ToID:        toID,
		Content:     content,
		MessageType: messageType,
		Status:      StatusUnread,
		Created:     time.Now(),
	}
	if err := s.Repo.Create(msg); err != nil {
		return nil, err
	}

	if s.Router.DeliverToUser(toID, realtime.NewChatMessage(msg)) {
		s.Logger.Info("message pushed", "to", toID, "message", msg.ID)
	} else {
		s.Logger.Info("recipient offline, message stored", "to", toID, "message", msg.ID)
	}

	return msg, nil
}

func (s *Service) History(userID, peerID int64) ([]*Message, error) {
	return s.Repo.GetDialog(userID, peerID, dialogLimit)
}
