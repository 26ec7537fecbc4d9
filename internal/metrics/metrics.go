package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	ActiveConnections = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ws_connections_active",
		Help: "The current number of active WebSocket connections.",
	})
	TotalConnections = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_connections_total",
		Help: "The total number of WebSocket connections accepted.",
	})
	FramesReceived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ws_frames_received_total",
		Help: "The total number of inbound frames received from clients.",
	}, []string{"kind"})
	EventsDelivered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_events_delivered_total",
		Help: "The total number of events handed to a live connection.",
	})
	EventsOffline = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_events_offline_total",
		Help: "The total number of events addressed to a user with no live connection.",
	})
	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ws_events_dropped_total",
		Help: "The total number of events dropped because a connection could not keep up.",
	})
)

// Handler returns the scrape endpoint for the main router.
func Handler() http.Handler {
	return promhttp.Handler()
}
