package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "taxitrack", Name: "ws_connections_active",
		Help: "Currently registered WebSocket connections",
	})

	EventsPublished = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "taxitrack", Name: "events_published_total",
		Help: "Ride events published to connection groups",
	}, []string{"event"})

	EventsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taxitrack", Name: "events_dropped_total",
		Help: "Events dropped because a recipient queue was full or closed",
	})

	RidesRequested = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taxitrack", Name: "rides_requested_total",
		Help: "Rides created through the lifecycle engine",
	})

	AcceptConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "taxitrack", Name: "accept_conflicts_total",
		Help: "AcceptRide calls that lost the compare-and-swap race",
	})
)
