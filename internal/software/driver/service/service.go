package service

import (
	"log/slog"

	"taxitrack/internal/ports"
)

type driverService struct {
	logger   *slog.Logger
	rides    ports.RideStore
	presence ports.PresenceStore
	dir      ports.Directory
	index    ports.LocationIndex
	events   ports.EventPublisher
}

// NewDriverService builds the driver presence service. index may be nil when
// no geo index is configured; distance enrichment is skipped in that case.
func NewDriverService(
	logger *slog.Logger,
	rides ports.RideStore,
	presence ports.PresenceStore,
	dir ports.Directory,
	index ports.LocationIndex,
	events ports.EventPublisher,
) ports.DriverService {
	return &driverService{
		logger:   logger,
		rides:    rides,
		presence: presence,
		dir:      dir,
		index:    index,
		events:   events,
	}
}
