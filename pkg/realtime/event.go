package realtime

import "time"

// Kind discriminates frames on the wire, both directions.
type Kind string

/* inbound frame kinds */
const (
	KindPing           Kind = "ping"
	KindHeartbeat      Kind = "heartbeat"
	KindSendMessage    Kind = "send_message"
	KindMarkRead       Kind = "mark_read"
	KindGetUnreadCount Kind = "get_unread_count"
	KindMarkAllRead    Kind = "mark_all_read"
)

/* outbound event kinds */
const (
	KindConnection           Kind = "connection"
	KindPong                 Kind = "pong"
	KindHeartbeatAck         Kind = "heartbeat_ack"
	KindMessageSending       Kind = "message_sending"
	KindMessageSent          Kind = "message_sent"
	KindMessageError         Kind = "message_error"
	KindChatMessage          Kind = "chat_message"
	KindNotification         Kind = "notification"
	KindSystemNotification   Kind = "system_notification"
	KindUnreadCount          Kind = "unread_count"
	KindUnreadCountUpdate    Kind = "unread_count_update"
	KindMarkReadConfirm      Kind = "mark_read_confirm"
	KindMarkAllReadConfirm   Kind = "mark_all_read_confirm"
	KindNotificationRead     Kind = "notification_read_update"
	KindAllNotificationsRead Kind = "all_notifications_read_update"
	KindError                Kind = "error"
)

const (
	statusConnected  = "connected"
	statusProcessing = "processing"
	statusSuccess    = "success"
	statusFailed     = "failed"
)

// Frame is an inbound client frame. Fields beyond Type are only
// meaningful for the kinds that require them.
type Frame struct {
	Type           Kind   `json:"type"`
	ToID           int64  `json:"to_id,omitempty"`
	Content        string `json:"content,omitempty"`
	MessageType    string `json:"message_type,omitempty"`
	TempID         string `json:"temp_id,omitempty"`
	NotificationID *int64 `json:"notification_id,omitempty"`
}

func now() int64 {
	return time.Now().UnixMilli()
}

// Outbound events are immutable once constructed; each constructor
// stamps the generation timestamp.

type ConnectionEvent struct {
	Type      Kind   `json:"type"`
	Status    string `json:"status"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func NewConnectionAck() ConnectionEvent {
	return ConnectionEvent{
		Type:      KindConnection,
		Status:    statusConnected,
		Message:   "connection established",
		Timestamp: now(),
	}
}

type PongEvent struct {
	Type      Kind  `json:"type"`
	Timestamp int64 `json:"timestamp"`
}

func NewPong() PongEvent {
	return PongEvent{Type: KindPong, Timestamp: now()}
}

type HeartbeatAckEvent struct {
	Type      Kind  `json:"type"`
	Timestamp int64 `json:"timestamp"`
}

func NewHeartbeatAck() HeartbeatAckEvent {
	return HeartbeatAckEvent{Type: KindHeartbeatAck, Timestamp: now()}
}

type MessageSendingEvent struct {
	Type      Kind   `json:"type"`
	TempID    string `json:"temp_id"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

func NewMessageSending(tempID string) MessageSendingEvent {
	return MessageSendingEvent{
		Type:      KindMessageSending,
		TempID:    tempID,
		Status:    statusProcessing,
		Timestamp: now(),
	}
}

type MessageSentEvent struct {
	Type      Kind   `json:"type"`
	TempID    string `json:"temp_id"`
	Message   any    `json:"message"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

func NewMessageSent(tempID string, message any) MessageSentEvent {
	return MessageSentEvent{
		Type:      KindMessageSent,
		TempID:    tempID,
		Message:   message,
		Status:    statusSuccess,
		Timestamp: now(),
	}
}

type MessageErrorEvent struct {
	Type      Kind   `json:"type"`
	TempID    string `json:"temp_id"`
	Error     string `json:"error"`
	Status    string `json:"status"`
	Timestamp int64  `json:"timestamp"`
}

func NewMessageError(tempID, reason string) MessageErrorEvent {
	return MessageErrorEvent{
		Type:      KindMessageError,
		TempID:    tempID,
		Error:     reason,
		Status:    statusFailed,
		Timestamp: now(),
	}
}

type ChatMessageEvent struct {
	Type      Kind  `json:"type"`
	Data      any   `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

func NewChatMessage(message any) ChatMessageEvent {
	return ChatMessageEvent{Type: KindChatMessage, Data: message, Timestamp: now()}
}

type NotificationEvent struct {
	Type      Kind  `json:"type"`
	Data      any   `json:"data"`
	Timestamp int64 `json:"timestamp"`
}

func NewNotification(data any) NotificationEvent {
	return NotificationEvent{Type: KindNotification, Data: data, Timestamp: now()}
}

func NewSystemNotification(data any) NotificationEvent {
	return NotificationEvent{Type: KindSystemNotification, Data: data, Timestamp: now()}
}

type UnreadCountEvent struct {
	Type      Kind  `json:"type"`
	Count     int64 `json:"count"`
	Timestamp int64 `json:"timestamp"`
}

func NewUnreadCount(count int64) UnreadCountEvent {
	return UnreadCountEvent{Type: KindUnreadCount, Count: count, Timestamp: now()}
}

func NewUnreadCountUpdate(count int64) UnreadCountEvent {
	return UnreadCountEvent{Type: KindUnreadCountUpdate, Count: count, Timestamp: now()}
}

type MarkReadConfirmEvent struct {
	Type           Kind   `json:"type"`
	NotificationID int64  `json:"notification_id"`
	Status         string `json:"status"`
	Timestamp      int64  `json:"timestamp"`
}

func NewMarkReadConfirm(notificationID int64, ok bool) MarkReadConfirmEvent {
	status := statusSuccess
	if !ok {
		status = statusFailed
	}
	return MarkReadConfirmEvent{
		Type:           KindMarkReadConfirm,
		NotificationID: notificationID,
		Status:         status,
		Timestamp:      now(),
	}
}

type MarkAllReadConfirmEvent struct {
	Type         Kind   `json:"type"`
	UpdatedCount int64  `json:"updated_count"`
	Status       string `json:"status"`
	Timestamp    int64  `json:"timestamp"`
}

func NewMarkAllReadConfirm(updated int64) MarkAllReadConfirmEvent {
	return MarkAllReadConfirmEvent{
		Type:         KindMarkAllReadConfirm,
		UpdatedCount: updated,
		Status:       statusSuccess,
		Timestamp:    now(),
	}
}

type NotificationReadEvent struct {
	Type           Kind  `json:"type"`
	NotificationID int64 `json:"notification_id"`
	Timestamp      int64 `json:"timestamp"`
}

func NewNotificationReadUpdate(notificationID int64) NotificationReadEvent {
	return NotificationReadEvent{
		Type:           KindNotificationRead,
		NotificationID: notificationID,
		Timestamp:      now(),
	}
}

type AllNotificationsReadEvent struct {
	Type      Kind  `json:"type"`
	Timestamp int64 `json:"timestamp"`
}

func NewAllNotificationsReadUpdate() AllNotificationsReadEvent {
	return AllNotificationsReadEvent{Type: KindAllNotificationsRead, Timestamp: now()}
}

type ErrorEvent struct {
	Type      Kind   `json:"type"`
	Message   string `json:"message"`
	Timestamp int64  `json:"timestamp"`
}

func NewError(message string) ErrorEvent {
	return ErrorEvent{Type: KindError, Message: message, Timestamp: now()}
}
