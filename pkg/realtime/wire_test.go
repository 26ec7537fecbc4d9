package realtime

import (
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeWire records everything the write pump puts on the transport.
type fakeWire struct {
	mu      sync.Mutex
	writes  [][]byte
	failing bool
	closed  bool
	wrote   chan struct{}
}

func newFakeWire() *fakeWire {
	return &fakeWire{wrote: make(chan struct{}, sendQueueSize)}
}

func (f *fakeWire) WriteMessage(_ int, data []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failing {
		return errors.New("write failed")
	}
	f.writes = append(f.writes, append([]byte(nil), data...))
	select {
	case f.wrote <- struct{}{}:
	default:
	}
	return nil
}

func (f *fakeWire) Close() error {
	f.mu.Lock()
	f.closed = true
	f.mu.Unlock()
	return nil
}

func (f *fakeWire) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func (f *fakeWire) written() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.writes))
	copy(out, f.writes)
	return out
}

// deadlineWait polls cond until it holds or the test times out.
func deadlineWait(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// waitWrites blocks until the pump has flushed n frames to the wire.
func (f *fakeWire) waitWrites(t *testing.T, n int) [][]byte {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if w := f.written(); len(w) >= n {
			return w
		}
		select {
		case <-f.wrote:
		case <-deadline:
			t.Fatalf("timed out waiting for %d writes, got %d", n, len(f.written()))
		}
	}
}
