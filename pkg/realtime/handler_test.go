package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"xiaoyuclone/internal/metrics"
)

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, fromID, toID int64, content, messageType string) (any, error) {
	args := m.Called(fromID, toID, content, messageType)
	return args.Get(0), args.Error(1)
}

type mockReader struct {
	mock.Mock
}

func (m *mockReader) MarkAsRead(ctx context.Context, userID, notificationID int64) (bool, error) {
	args := m.Called(userID, notificationID)
	return args.Bool(0), args.Error(1)
}

func (m *mockReader) MarkAllAsRead(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockReader) UnreadCount(ctx context.Context, userID int64) (int64, error) {
	args := m.Called(userID)
	return args.Get(0).(int64), args.Error(1)
}

type handlerFixture struct {
	handler *Handler
	sender  *mockSender
	reader  *mockReader
	conn    *Conn
	wire    *fakeWire
}

func newHandlerFixture(userID int64) *handlerFixture {
	registry := NewRegistry()
	router := NewRouter(registry, slog.Default())
	sender := new(mockSender)
	reader := new(mockReader)

	fw := newFakeWire()
	c := newConn(userID, fw)
	registry.Register(c)

	return &handlerFixture{
		handler: NewHandler(registry, router, sender, reader, slog.Default()),
		sender:  sender,
		reader:  reader,
		conn:    c,
		wire:    fw,
	}
}

func decodeFrame(t *testing.T, data []byte) map[string]any {
	t.Helper()
	var out map[string]any
	assert.NoError(t, json.Unmarshal(data, &out))
	return out
}

func TestDispatch_PingYieldsPong(t *testing.T) {
	f := newHandlerFixture(1)
	before := time.Now().UnixMilli()

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"ping"}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "pong", frame["type"])
	assert.GreaterOrEqual(t, int64(frame["timestamp"].(float64)), before)
}

func TestDispatch_Heartbeat(t *testing.T) {
	f := newHandlerFixture(1)

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"heartbeat"}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "heartbeat_ack", frame["type"])
}

func TestDispatch_SendMessageSuccess(t *testing.T) {
	f := newHandlerFixture(1)
	created := map[string]any{"id": int64(55), "content": "hi there"}
	f.sender.On("Send", int64(1), int64(2), "hi there", "TEXT").Return(created, nil)

	f.handler.dispatch(context.Background(), f.conn,
		[]byte(`{"type":"send_message","to_id":2,"content":"hi there","temp_id":"tmp-9"}`))

	writes := f.wire.waitWrites(t, 2)
	sending := decodeFrame(t, writes[0])
	assert.Equal(t, "message_sending", sending["type"])
	assert.Equal(t, "tmp-9", sending["temp_id"])

	sent := decodeFrame(t, writes[1])
	assert.Equal(t, "message_sent", sent["type"])
	assert.Equal(t, "tmp-9", sent["temp_id"])
	assert.Equal(t, "success", sent["status"])
	assert.Equal(t, "hi there", sent["message"].(map[string]any)["content"])

	f.sender.AssertExpectations(t)
}

func TestDispatch_SendMessageProducerFailure(t *testing.T) {
	f := newHandlerFixture(1)
	f.sender.On("Send", int64(1), int64(2), "hi", "TEXT").
		Return(nil, errors.New("users are not friends"))

	f.handler.dispatch(context.Background(), f.conn,
		[]byte(`{"type":"send_message","to_id":2,"content":"hi","temp_id":"tmp-1"}`))

	writes := f.wire.waitWrites(t, 2)
	failed := decodeFrame(t, writes[1])
	assert.Equal(t, "message_error", failed["type"])
	assert.Equal(t, "tmp-1", failed["temp_id"])
	assert.Equal(t, "users are not friends", failed["error"])

	// The producer failure must not close the connection.
	assert.False(t, f.conn.Closed())
}

func TestDispatch_MarkReadRequiresNotificationID(t *testing.T) {
	f := newHandlerFixture(1)

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"mark_read"}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "error", frame["type"])
	assert.Contains(t, frame["message"], "notification_id")
	f.reader.AssertNotCalled(t, "MarkAsRead", mock.Anything, mock.Anything)
}

func TestDispatch_MarkRead(t *testing.T) {
	f := newHandlerFixture(1)
	f.reader.On("MarkAsRead", int64(1), int64(77)).Return(true, nil)

	f.handler.dispatch(context.Background(), f.conn,
		[]byte(`{"type":"mark_read","notification_id":77}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "mark_read_confirm", frame["type"])
	assert.Equal(t, float64(77), frame["notification_id"])
	assert.Equal(t, "success", frame["status"])
}

func TestDispatch_GetUnreadCount(t *testing.T) {
	f := newHandlerFixture(1)
	f.reader.On("UnreadCount", int64(1)).Return(int64(0), nil)

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"get_unread_count"}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "unread_count", frame["type"])
	assert.Equal(t, float64(0), frame["count"])
}

func TestDispatch_MarkAllRead(t *testing.T) {
	f := newHandlerFixture(1)
	f.reader.On("MarkAllAsRead", int64(1)).Return(int64(3), nil)

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"mark_all_read"}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "mark_all_read_confirm", frame["type"])
	assert.Equal(t, float64(3), frame["updated_count"])
}

func TestDispatch_UnknownKindKeepsConnectionOpen(t *testing.T) {
	f := newHandlerFixture(1)

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"dance"}`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "error", frame["type"])
	assert.Contains(t, frame["message"], "dance")

	// The connection stays usable after an unknown frame.
	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":"ping"}`))
	frames := f.wire.waitWrites(t, 2)
	assert.Equal(t, "pong", decodeFrame(t, frames[1])["type"])
}

func TestDispatch_UnknownKindsShareOneMetricSeries(t *testing.T) {
	f := newHandlerFixture(1)
	before := testutil.CollectAndCount(metrics.FramesReceived)

	for i := 0; i < 50; i++ {
		f.handler.dispatch(context.Background(), f.conn,
			[]byte(fmt.Sprintf(`{"type":"junk_%d"}`, i)))
	}

	// Client-invented frame types must not mint new label values.
	after := testutil.CollectAndCount(metrics.FramesReceived)
	assert.LessOrEqual(t, after, before+1)
}

// stalledWire blocks every write until released, letting a test fill
// the outbound queue.
type stalledWire struct{ release chan struct{} }

func (w *stalledWire) WriteMessage(int, []byte) error { <-w.release; return nil }
func (w *stalledWire) Close() error                   { return nil }

func TestSend_BackpressureTearsDownConnection(t *testing.T) {
	f := newHandlerFixture(1)
	w := &stalledWire{release: make(chan struct{})}
	defer close(w.release)

	c := newConn(2, w)
	f.handler.Registry.Register(c)
	for i := 0; i < sendQueueSize*2; i++ {
		c.enqueue([]byte(`{}`))
	}

	f.handler.send(c, NewPong())

	assert.True(t, c.Closed())
	assert.False(t, f.handler.Registry.IsOnline(2))
}

func TestGreet_LandsOnOwnConnection(t *testing.T) {
	f := newHandlerFixture(1)
	f.reader.On("UnreadCount", int64(1)).Return(int64(4), nil)

	// A newer connection for the same user takes the registry slot
	// before the first one is greeted.
	fw2 := newFakeWire()
	c2 := newConn(1, fw2)
	f.handler.Registry.Register(c2)

	f.handler.greet(context.Background(), f.conn)

	writes := f.wire.waitWrites(t, 2)
	assert.Equal(t, "connection", decodeFrame(t, writes[0])["type"])
	count := decodeFrame(t, writes[1])
	assert.Equal(t, "unread_count", count["type"])
	assert.Equal(t, float64(4), count["count"])
	assert.Empty(t, fw2.written())
}

func TestGreet_UnreadCountFailureStillAcks(t *testing.T) {
	f := newHandlerFixture(1)
	f.reader.On("UnreadCount", int64(1)).Return(int64(0), errors.New("cache down"))

	f.handler.greet(context.Background(), f.conn)

	writes := f.wire.waitWrites(t, 1)
	assert.Equal(t, "connection", decodeFrame(t, writes[0])["type"])
	assert.False(t, f.conn.Closed())
}

func TestDispatch_MalformedJSON(t *testing.T) {
	f := newHandlerFixture(1)

	f.handler.dispatch(context.Background(), f.conn, []byte(`{"type":`))

	frame := decodeFrame(t, f.wire.waitWrites(t, 1)[0])
	assert.Equal(t, "error", frame["type"])
	assert.False(t, f.conn.Closed())
}
