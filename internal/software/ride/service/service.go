package service

import (
	"log/slog"

	"taxitrack/internal/ports"
)

// rideService is the ride lifecycle engine. It is the only component that
// writes ride status, always through the store's compare-and-swap, and it
// hands every successful transition to the event publisher.
type rideService struct {
	logger    *slog.Logger
	rides     ports.RideStore
	directory ports.Directory
	events    ports.EventPublisher
}

// NewRideService wires the ride lifecycle engine.
func NewRideService(
	log *slog.Logger,
	rides ports.RideStore,
	directory ports.Directory,
	events ports.EventPublisher,
) ports.RideService {
	return &rideService{
		logger:    log,
		rides:     rides,
		directory: directory,
		events:    events,
	}
}
