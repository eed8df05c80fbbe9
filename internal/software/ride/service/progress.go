package service

import (
	"context"
	"time"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/ports"
)

// UpdateRideStatus advances an assigned ride along accepted -> arrived ->
// in_progress -> completed. Only the assigned driver may move the ride, and
// only one step forward at a time.
func (service *rideService) UpdateRideStatus(ctx context.Context, driverID, rideID string, next ride.Status) (*ride.Ride, error) {
	ctx = contextx.WithRideID(contextx.WithRequestID(ctx, generateCorrelationID()), rideID)

	switch next {
	case ride.StatusArrived, ride.StatusInProgress, ride.StatusCompleted:
	default:
		return nil, ride.ErrInvalidTransition
	}

	r, err := service.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.DriverID == nil || *r.DriverID != driverID {
		return nil, ride.ErrNotAssignedDriver
	}
	if !r.Status.CanTransitionTo(next) {
		return nil, ride.ErrInvalidTransition
	}

	change := ports.StatusChange{NewStatus: next}
	if next == ride.StatusCompleted {
		now := time.Now().UTC()
		change.CompletedAt = &now
	}

	applied, err := service.rides.CompareAndSetStatus(ctx, rideID, r.Status, change)
	if err != nil {
		logger.Error(ctx, service.logger, "ride_status_update_failed", "Failed to apply status transition", err,
			"driver_id", driverID, "next_status", next.String())
		return nil, err
	}
	if !applied {
		return nil, ride.ErrInvalidTransition
	}

	r, err = service.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	service.events.Publish(ctx, ws.UserGroup(r.ClientID), contracts.StatusChanged{
		Type:      contracts.EventStatusChanged,
		RideID:    r.ID,
		Status:    r.Status.String(),
		Message:   statusMessage(r.Status),
		UpdatedAt: r.UpdatedAt,
	})

	logger.Info(ctx, service.logger, "ride_status_changed", "Ride status updated",
		"driver_id", driverID, "status", r.Status.String())

	return r, nil
}
