package service

import (
	"context"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/ports"
)

// CancelRide lets the requesting client abandon a ride before the trip
// starts. Rides past accepted can no longer be cancelled.
func (service *rideService) CancelRide(ctx context.Context, clientID, rideID string) (*ride.Ride, error) {
	ctx = contextx.WithRideID(contextx.WithRequestID(ctx, generateCorrelationID()), rideID)

	r, err := service.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.ClientID != clientID {
		// do not leak other clients' rides
		return nil, ride.ErrRideNotFound
	}
	if !r.Status.Cancellable() {
		return nil, ride.ErrCannotCancel
	}

	applied, err := service.rides.CompareAndSetStatus(ctx, rideID, r.Status, ports.StatusChange{
		NewStatus: ride.StatusCancelled,
	})
	if err != nil {
		logger.Error(ctx, service.logger, "ride_cancel_failed", "Failed to cancel ride", err,
			"client_id", clientID)
		return nil, err
	}
	if !applied {
		// the ride moved forward while the client was cancelling
		return nil, ride.ErrCannotCancel
	}

	r, err = service.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}

	// only the assigned driver, if any, hears about the cancellation
	if r.DriverID != nil {
		service.events.Publish(ctx, ws.UserGroup(*r.DriverID), contracts.StatusChanged{
			Type:      contracts.EventStatusChanged,
			RideID:    r.ID,
			Status:    r.Status.String(),
			Message:   statusMessage(ride.StatusCancelled),
			UpdatedAt: r.UpdatedAt,
		})
	}

	logger.Info(ctx, service.logger, "ride_cancelled", "Client cancelled ride",
		"client_id", clientID)

	return r, nil
}
