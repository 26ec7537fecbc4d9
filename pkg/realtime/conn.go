package realtime

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const sendQueueSize = 64

// wire is the outbound half of the underlying duplex connection.
// *websocket.Conn satisfies it.
type wire interface {
	WriteMessage(messageType int, data []byte) error
	Close() error
}

// Conn binds one authenticated user to one open connection. The
// transport handle is owned exclusively by the Conn: closing the Conn
// closes the handle.
type Conn struct {
	ID        string
	UserID    int64
	CreatedAt time.Time

	ws         wire
	send       chan []byte
	done       chan struct{}
	closeOnce  sync.Once
	lastActive atomic.Int64
}

func newConn(userID int64, ws wire) *Conn {
	c := &Conn{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: time.Now(),
		ws:        ws,
		send:      make(chan []byte, sendQueueSize),
		done:      make(chan struct{}),
	}
	c.touch()
	go c.writePump()
	return c
}

// enqueue hands data to the write pump without blocking. It returns
// false when the connection is closed or its queue is full; the caller
// treats both as a failed delivery.
func (c *Conn) enqueue(data []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- data:
		return true
	case <-c.done:
		return false
	default:
		return false
	}
}

// writePump is the single writer for the transport; a write error
// closes the connection.
func (c *Conn) writePump() {
	for {
		select {
		case data := <-c.send:
			if err := c.ws.WriteMessage(websocket.TextMessage, data); err != nil {
				c.Close()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Close shuts the transport down. Safe to call from any goroutine, any
// number of times.
func (c *Conn) Close() {
	c.closeOnce.Do(func() {
		close(c.done)
		c.ws.Close()
	})
}

func (c *Conn) Closed() bool {
	select {
	case <-c.done:
		return true
	default:
		return false
	}
}

func (c *Conn) touch() {
	c.lastActive.Store(time.Now().Unix())
}

func (c *Conn) LastActive() time.Time {
	return time.Unix(c.lastActive.Load(), 0)
}
