package realtime

import (
	"encoding/json"
	"log/slog"

	"xiaoyuclone/internal/metrics"
)

// Router resolves a recipient to a live connection and hands events to
// its outbound queue. Delivery is fire-and-forget: DeliverToUser
// returns once the event is queued, not once the client has seen it.
// An offline recipient is a normal false, never an error.
type Router struct {
	Registry *Registry
	Logger   *slog.Logger
}

func NewRouter(registry *Registry, logger *slog.Logger) *Router {
	return &Router{Registry: registry, Logger: logger}
}

func (rt *Router) DeliverToUser(userID int64, event any) bool {
	data, err := json.Marshal(event)
	if err != nil {
		rt.Logger.Error("event marshal", "error", err, "user", userID)
		return false
	}
	return rt.deliver(userID, data)
}

func (rt *Router) deliver(userID int64, data []byte) bool {
	c, ok := rt.Registry.Lookup(userID)
	if !ok {
		metrics.EventsOffline.Inc()
		return false
	}
	if !c.enqueue(data) {
		// Closed or wedged under backpressure; tear the connection
		// down so the next lookup sees the user as offline.
		rt.Registry.Unregister(c)
		c.Close()
		metrics.EventsDropped.Inc()
		rt.Logger.Warn("event dropped", "user", userID, "conn", c.ID)
		return false
	}
	metrics.EventsDelivered.Inc()
	return true
}

// Broadcast delivers event to every currently connected user. A
// failure on one connection does not affect the others.
func (rt *Router) Broadcast(event any) {
	data, err := json.Marshal(event)
	if err != nil {
		rt.Logger.Error("broadcast marshal", "error", err)
		return
	}
	for _, userID := range rt.Registry.Snapshot() {
		rt.deliver(userID, data)
	}
}

func (rt *Router) IsOnline(userID int64) bool {
	return rt.Registry.IsOnline(userID)
}
