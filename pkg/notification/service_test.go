package notification_test

import (
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"xiaoyuclone/pkg/notification"
	"xiaoyuclone/pkg/realtime"
)

type mockRepo struct {
	mock.Mock
}

func (m *mockRepo) Create(n *notification.Notification) error {
	return m.Called(n).Error(0)
}

func (m *mockRepo) MarkAsRead(userID, notificationID int64) (bool, error) {
	args := m.Called(userID, notificationID)
	return args.Bool(0), args.Error(1)
}

func (m *mockRepo) MarkAllAsRead(userID int64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) CountUnread(userID int64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockRepo) GetByUser(userID int64, limit int) ([]*notification.Notification, error) {
	args := m.Called(userID, limit)
	if n := args.Get(0); n != nil {
		return n.([]*notification.Notification), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockCache struct {
	mock.Mock
}

func (m *mockCache) GetUnread(ctx context.Context, userID int64) (int64, bool, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Bool(1), args.Error(2)
}

func (m *mockCache) SetUnread(ctx context.Context, userID, count int64) error {
	return m.Called(userID, count).Error(0)
}

func (m *mockCache) Invalidate(ctx context.Context, userID int64) error {
	return m.Called(userID).Error(0)
}

type mockDeliverer struct {
	mock.Mock
}

func (m *mockDeliverer) DeliverToUser(userID int64, event any) bool {
	return m.Called(userID, event).Bool(0)
}

func (m *mockDeliverer) Broadcast(event any) {
	m.Called(event)
}

type fixture struct {
	repo   *mockRepo
	cache  *mockCache
	router *mockDeliverer
	svc    *notification.Service
}

func newFixture() *fixture {
	f := &fixture{
		repo:   new(mockRepo),
		cache:  new(mockCache),
		router: new(mockDeliverer),
	}
	f.svc = notification.NewService(f.repo, f.cache, f.router, slog.Default())
	return f
}

func isEvent[T any](event any) bool {
	_, ok := event.(T)
	return ok
}

func TestService_Notify(t *testing.T) {
	ctx := context.Background()

	t.Run("persist then push", func(t *testing.T) {
		f := newFixture()

		f.repo.On("Create", mock.AnythingOfType("*notification.Notification")).Return(nil)
		f.cache.On("Invalidate", int64(5)).Return(nil)
		f.cache.On("GetUnread", int64(5)).Return(int64(3), true, nil)
		f.router.On("DeliverToUser", int64(5), mock.MatchedBy(isEvent[realtime.NotificationEvent])).Return(true)
		f.router.On("DeliverToUser", int64(5), mock.MatchedBy(isEvent[realtime.UnreadCountEvent])).Return(true)

		err := f.svc.Notify(ctx, &notification.Notification{
			UserID:  5,
			Type:    notification.TypeComment,
			Title:   "New comment",
			Content: "somebody commented on your post",
		})

		assert.NoError(t, err)
		f.repo.AssertCalled(t, "Create", mock.Anything)
		f.router.AssertNumberOfCalls(t, "DeliverToUser", 2)
	})

	t.Run("persist failure stops delivery", func(t *testing.T) {
		f := newFixture()

		f.repo.On("Create", mock.Anything).Return(errors.New("db down"))

		err := f.svc.Notify(ctx, &notification.Notification{UserID: 5})

		assert.Error(t, err)
		f.router.AssertNotCalled(t, "DeliverToUser", mock.Anything, mock.Anything)
	})

	t.Run("offline recipient is not an error", func(t *testing.T) {
		f := newFixture()

		f.repo.On("Create", mock.Anything).Return(nil)
		f.cache.On("Invalidate", int64(5)).Return(nil)
		f.cache.On("GetUnread", int64(5)).Return(int64(1), true, nil)
		f.router.On("DeliverToUser", int64(5), mock.Anything).Return(false)

		err := f.svc.Notify(ctx, &notification.Notification{UserID: 5})

		assert.NoError(t, err)
	})
}

func TestService_MarkAsRead(t *testing.T) {
	ctx := context.Background()

	t.Run("updated pushes read update and counter", func(t *testing.T) {
		f := newFixture()

		f.repo.On("MarkAsRead", int64(5), int64(10)).Return(true, nil)
		f.cache.On("Invalidate", int64(5)).Return(nil)
		f.cache.On("GetUnread", int64(5)).Return(int64(0), true, nil)
		f.router.On("DeliverToUser", int64(5), mock.MatchedBy(isEvent[realtime.NotificationReadEvent])).Return(true)
		f.router.On("DeliverToUser", int64(5), mock.MatchedBy(isEvent[realtime.UnreadCountEvent])).Return(true)

		ok, err := f.svc.MarkAsRead(ctx, 5, 10)

		assert.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("already read pushes nothing", func(t *testing.T) {
		f := newFixture()

		f.repo.On("MarkAsRead", int64(5), int64(10)).Return(false, nil)

		ok, err := f.svc.MarkAsRead(ctx, 5, 10)

		assert.NoError(t, err)
		assert.False(t, ok)
		f.router.AssertNotCalled(t, "DeliverToUser", mock.Anything, mock.Anything)
		f.cache.AssertNotCalled(t, "Invalidate", mock.Anything)
	})
}

func TestService_MarkAllAsRead(t *testing.T) {
	ctx := context.Background()

	t.Run("updated", func(t *testing.T) {
		f := newFixture()

		f.repo.On("MarkAllAsRead", int64(5)).Return(int64(4), nil)
		f.cache.On("Invalidate", int64(5)).Return(nil)
		f.cache.On("GetUnread", int64(5)).Return(int64(0), true, nil)
		f.router.On("DeliverToUser", int64(5), mock.Anything).Return(true)

		updated, err := f.svc.MarkAllAsRead(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(4), updated)
	})

	t.Run("nothing unread pushes nothing", func(t *testing.T) {
		f := newFixture()

		f.repo.On("MarkAllAsRead", int64(5)).Return(int64(0), nil)

		updated, err := f.svc.MarkAllAsRead(ctx, 5)

		assert.NoError(t, err)
		assert.Zero(t, updated)
		f.router.AssertNotCalled(t, "DeliverToUser", mock.Anything, mock.Anything)
	})
}

func TestService_UnreadCount(t *testing.T) {
	ctx := context.Background()

	t.Run("cache hit", func(t *testing.T) {
		f := newFixture()

		f.cache.On("GetUnread", int64(5)).Return(int64(7), true, nil)

		count, err := f.svc.UnreadCount(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(7), count)
		f.repo.AssertNotCalled(t, "CountUnread", mock.Anything)
	})

	t.Run("cache miss falls back to repo", func(t *testing.T) {
		f := newFixture()

		f.cache.On("GetUnread", int64(5)).Return(int64(0), false, nil)
		f.repo.On("CountUnread", int64(5)).Return(int64(2), nil)
		f.cache.On("SetUnread", int64(5), int64(2)).Return(nil)

		count, err := f.svc.UnreadCount(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(2), count)
		f.cache.AssertCalled(t, "SetUnread", int64(5), int64(2))
	})

	t.Run("cache error falls back to repo", func(t *testing.T) {
		f := newFixture()

		f.cache.On("GetUnread", int64(5)).Return(int64(0), false, errors.New("redis down"))
		f.repo.On("CountUnread", int64(5)).Return(int64(9), nil)
		f.cache.On("SetUnread", int64(5), int64(9)).Return(nil)

		count, err := f.svc.UnreadCount(ctx, 5)

		assert.NoError(t, err)
		assert.Equal(t, int64(9), count)
	})
}

func TestService_BroadcastSystem(t *testing.T) {
	f := newFixture()

	f.router.On("Broadcast", mock.MatchedBy(func(event any) bool {
		e, ok := event.(realtime.NotificationEvent)
		return ok && e.Type == realtime.KindSystemNotification
	})).Return()

	f.svc.BroadcastSystem("maintenance", "back at noon")

	f.router.AssertNumberOfCalls(t, "Broadcast", 1)
}
