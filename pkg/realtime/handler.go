package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"xiaoyuclone/internal/metrics"
	"xiaoyuclone/pkg/claims"
)

const defaultMessageType = "TEXT"

// inboundKinds bounds the frames_received label set. Anything a client
// invents collapses to a single shared label value.
var inboundKinds = map[Kind]bool{
	KindPing:           true,
	KindHeartbeat:      true,
	KindSendMessage:    true,
	KindMarkRead:       true,
	KindGetUnreadCount: true,
	KindMarkAllRead:    true,
}

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// MessageSender is the producer behind send_message frames.
type MessageSender interface {
	Send(ctx context.Context, fromID, toID int64, content, messageType string) (any, error)
}

// NotificationReader covers the read-state operations reachable from
// inbound frames.
type NotificationReader interface {
	MarkAsRead(ctx context.Context, userID, notificationID int64) (bool, error)
	MarkAllAsRead(ctx context.Context, userID int64) (int64, error)
	UnreadCount(ctx context.Context, userID int64) (int64, error)
}

// Handler runs the per-connection lifecycle: upgrade, registration,
// inbound frame dispatch, teardown.
type Handler struct {
	Registry      *Registry
	Router        *Router
	Messages      MessageSender
	Notifications NotificationReader
	Logger        *slog.Logger
}

func NewHandler(registry *Registry, router *Router, messages MessageSender, notifications NotificationReader, logger *slog.Logger) *Handler {
	return &Handler{
		Registry:      registry,
		Router:        router,
		Messages:      messages,
		Notifications: notifications,
		Logger:        logger,
	}
}

// ServeWS upgrades the request and runs the connection until the
// transport closes. Identity must already be in the request context;
// without it the session is refused before any registry mutation.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	val, ok := r.Context().Value(claims.TokenContextKey).(*claims.Claims)
	if !ok || val == nil || val.User.ID == 0 {
		http.Error(w, `{"message":"unauthorized"}`, http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.Logger.Error("ws upgrade", "error", err)
		return
	}

	c := newConn(val.User.ID, ws)
	if evicted := h.Registry.Register(c); evicted != nil {
		evicted.Close()
		h.Logger.Info("ws session evicted", "user", c.UserID, "conn", evicted.ID)
	}
	metrics.ActiveConnections.Inc()
	metrics.TotalConnections.Inc()
	h.Logger.Info("ws connected", "user", c.UserID, "conn", c.ID)

	h.greet(r.Context(), c)
	h.readLoop(r.Context(), c, ws)
}

// greet sends the connection ack and the initial unread count. Both go
// straight to this connection rather than through the Router, so a
// concurrent re-register by the same user cannot steal them.
func (h *Handler) greet(ctx context.Context, c *Conn) {
	h.send(c, NewConnectionAck())
	count, err := h.Notifications.UnreadCount(ctx, c.UserID)
	if err != nil {
		h.Logger.Error("initial unread count", "error", err, "user", c.UserID)
		return
	}
	h.send(c, NewUnreadCount(count))
}

// readLoop processes inbound frames in arrival order. It returns on
// transport close or error, unregistering the connection exactly once.
func (h *Handler) readLoop(ctx context.Context, c *Conn, ws *websocket.Conn) {
	defer func() {
		h.Registry.Unregister(c)
		c.Close()
		metrics.ActiveConnections.Dec()
		h.Logger.Info("ws disconnected", "user", c.UserID, "conn", c.ID)
	}()
	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			return
		}
		c.touch()
		h.dispatch(ctx, c, data)
	}
}

// dispatch handles one inbound frame. A failing frame answers with an
// error event and leaves the connection open.
func (h *Handler) dispatch(ctx context.Context, c *Conn, data []byte) {
	defer func() {
		if err := recover(); err != nil {
			h.Logger.Error("frame panic", "error", err, "user", c.UserID)
			h.send(c, NewError("frame handling failed"))
		}
	}()

	if c.Closed() {
		return
	}

	var frame Frame
	if err := json.Unmarshal(data, &frame); err != nil {
		h.send(c, NewError("malformed frame"))
		return
	}
	label := string(frame.Type)
	if !inboundKinds[frame.Type] {
		label = "unknown"
	}
	metrics.FramesReceived.WithLabelValues(label).Inc()

	switch frame.Type {
	case KindPing:
		h.send(c, NewPong())
	case KindHeartbeat:
		h.send(c, NewHeartbeatAck())
	case KindSendMessage:
		h.handleSendMessage(ctx, c, frame)
	case KindMarkRead:
		h.handleMarkRead(ctx, c, frame)
	case KindGetUnreadCount:
		count, err := h.Notifications.UnreadCount(ctx, c.UserID)
		if err != nil {
			h.Logger.Error("get unread count", "error", err, "user", c.UserID)
			h.send(c, NewError("failed to get unread count"))
			return
		}
		h.send(c, NewUnreadCount(count))
	case KindMarkAllRead:
		updated, err := h.Notifications.MarkAllAsRead(ctx, c.UserID)
		if err != nil {
			h.Logger.Error("mark all read", "error", err, "user", c.UserID)
			h.send(c, NewError("failed to mark all read"))
			return
		}
		h.send(c, NewMarkAllReadConfirm(updated))
	default:
		h.send(c, NewError(fmt.Sprintf("unsupported frame type: %s", frame.Type)))
	}
}

// handleSendMessage invokes the message producer and acks the sender
// through the Router. A producer failure never closes the connection.
func (h *Handler) handleSendMessage(ctx context.Context, c *Conn, frame Frame) {
	tempID := frame.TempID
	if tempID == "" {
		tempID = fmt.Sprintf("temp_%d", time.Now().UnixMilli())
	}
	h.Router.DeliverToUser(c.UserID, NewMessageSending(tempID))

	messageType := frame.MessageType
	if messageType == "" {
		messageType = defaultMessageType
	}

	msg, err := h.Messages.Send(ctx, c.UserID, frame.ToID, frame.Content, messageType)
	if err != nil {
		h.Logger.Error("send message", "error", err, "from", c.UserID, "to", frame.ToID)
		h.Router.DeliverToUser(c.UserID, NewMessageError(tempID, err.Error()))
		return
	}

	h.Router.DeliverToUser(c.UserID, NewMessageSent(tempID, msg))
	h.Logger.Info("ws message sent", "from", c.UserID, "to", frame.ToID)
}

func (h *Handler) handleMarkRead(ctx context.Context, c *Conn, frame Frame) {
	if frame.NotificationID == nil {
		h.send(c, NewError("missing notification_id"))
		return
	}
	ok, err := h.Notifications.MarkAsRead(ctx, c.UserID, *frame.NotificationID)
	if err != nil {
		h.Logger.Error("mark read", "error", err, "user", c.UserID)
		h.send(c, NewError("failed to mark read"))
		return
	}
	h.send(c, NewMarkReadConfirm(*frame.NotificationID, ok))
}

// send queues an event for this connection directly, bypassing the
// registry lookup. Used for frame replies.
func (h *Handler) send(c *Conn, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		h.Logger.Error("event marshal", "error", err, "user", c.UserID)
		return
	}
	if !c.enqueue(data) {
		// Same teardown as Router.deliver: a closed or wedged queue
		// means the next lookup must see the user as offline.
		h.Registry.Unregister(c)
		c.Close()
		metrics.EventsDropped.Inc()
		h.Logger.Warn("event dropped", "user", c.UserID, "conn", c.ID)
		return
	}
	metrics.EventsDelivered.Inc()
}
