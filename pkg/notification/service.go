package notification

import (
	"context"
	"log/slog"
	"time"

	"xiaoyuclone/pkg/realtime"
)

const listLimit = 50

// Deliverer pushes events to connected recipients.
type Deliverer interface {
	DeliverToUser(userID int64, event any) bool
	Broadcast(event any)
}

type Service struct {
	Repo   Repository
	Cache  Cache
	Router Deliverer
	Logger *slog.Logger
}

func NewService(repo Repository, cache Cache, router Deliverer, logger *slog.Logger) *Service {
	return &Service{Repo: repo, Cache: cache, Router: router, Logger: logger}
}

// Notify persists the notification, then pushes it and a fresh unread
// counter to the recipient. Persistence failure is the only error; a
// recipient being offline is normal and the notification stays
// fetchable through List.
func (s *Service) Notify(ctx context.Context, n *Notification) error {
	n.Status = StatusUnread
	if n.Created.IsZero() {
		n.Created = time.Now()
	}
	if err := s.Repo.Create(n); err != nil {
		return err
	}
	s.invalidate(ctx, n.UserID)

	if s.Router.DeliverToUser(n.UserID, realtime.NewNotification(n.Display())) {
		s.Logger.Info("notification pushed", "user", n.UserID, "notification", n.ID)
	} else {
		s.Logger.Info("recipient offline, notification stored", "user", n.UserID, "notification", n.ID)
	}
	s.pushUnread(ctx, n.UserID)

	return nil
}

// BroadcastSystem pushes a system notice to every connected user.
func (s *Service) BroadcastSystem(title, content string) {
	d := Display{
		Type:    TypeSystem,
		Title:   title,
		Content: content,
		Created: time.Now(),
	}
	s.Router.Broadcast(realtime.NewSystemNotification(d))
	s.Logger.Info("system notification broadcast", "title", title)
}

func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID int64) (bool, error) {
	ok, err := s.Repo.MarkAsRead(userID, notificationID)
	if err != nil {
		return false, err
	}
	if ok {
		s.invalidate(ctx, userID)
		s.Router.DeliverToUser(userID, realtime.NewNotificationReadUpdate(notificationID))
		s.pushUnread(ctx, userID)
	}
	return ok, nil
}

func (s *Service) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	updated, err := s.Repo.MarkAllAsRead(userID)
	if err != nil {
		return 0, err
	}
	if updated > 0 {
		s.invalidate(ctx, userID)
		s.Router.DeliverToUser(userID, realtime.NewAllNotificationsReadUpdate())
		s.pushUnread(ctx, userID)
	}
	return updated, nil
}

func (s *Service) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	if count, ok, err := s.Cache.GetUnread(ctx, userID); err == nil && ok {
		return count, nil
	}

	count, err := s.Repo.CountUnread(userID)
	if err != nil {
		return 0, err
	}
	if err := s.Cache.SetUnread(ctx, userID, count); err != nil {
		s.Logger.Warn("unread cache set", "error", err, "user", userID)
	}
	return count, nil
}

func (s *Service) List(ctx context.Context, userID int64) ([]*Notification, error) {
	return s.Repo.GetByUser(userID, listLimit)
}

func (s *Service) invalidate(ctx context.Context, userID int64) {
	if err := s.Cache.Invalidate(ctx, userID); err != nil {
		s.Logger.Warn("unread cache invalidate", "error", err, "user", userID)
	}
}

func (s *Service) pushUnread(ctx context.Context, userID int64) {
	count, err := s.UnreadCount(ctx, userID)
	if err != nil {
		s.Logger.Warn("unread count", "error", err, "user", userID)
		return
	}
	s.Router.DeliverToUser(userID, realtime.NewUnreadCountUpdate(count))
}
