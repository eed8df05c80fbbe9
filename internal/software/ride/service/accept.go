package service

import (
	"context"
	"time"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/general/metrics"
	"taxitrack/internal/ports"
)

// AcceptRide moves a pending ride to accepted and assigns the driver. When
// several drivers race for the same ride, the store's compare-and-swap lets
// exactly one through; the rest get ride.ErrRideNoLongerAvailable.
func (service *rideService) AcceptRide(ctx context.Context, driverID, rideID string) (*ride.Ride, error) {
	ctx = contextx.WithRideID(contextx.WithRequestID(ctx, generateCorrelationID()), rideID)

	r, err := service.rides.GetByID(ctx, rideID)
	if err != nil {
		return nil, err
	}
	if r.Status != ride.StatusPending {
		return nil, ride.ErrRideNoLongerAvailable
	}

	applied, err := service.rides.CompareAndSetStatus(ctx, rideID, ride.StatusPending, ports.StatusChange{
		NewStatus: ride.StatusAccepted,
		DriverID:  &driverID,
	})
	if err != nil {
		logger.Error(ctx, service.logger, "ride_accept_failed", "Failed to apply accept transition", err,
			"driver_id", driverID)
		return nil, err
	}
	if !applied {
		// another driver won the race between our read and the swap
		metrics.AcceptConflicts.Inc()
		return nil, ride.ErrRideNoLongerAvailable
	}

	// build the result from the pre-swap read plus the transition we just
	// applied; a re-read here could observe a later cancellation and leak
	// it through a success response
	r.Status = ride.StatusAccepted
	r.DriverID = &driverID
	r.UpdatedAt = time.Now().UTC()

	event := contracts.RideAccepted{
		Type:    contracts.EventRideAccepted,
		RideID:  r.ID,
		Message: statusMessage(ride.StatusAccepted),
	}
	if profile, err := service.directory.DriverProfile(ctx, driverID); err == nil {
		event.Driver = contracts.DriverInfo{
			Name:  profile.Name,
			Phone: profile.Phone,
			Car:   contracts.CarInfo{Model: profile.CarModel, Plate: profile.CarPlate},
		}
	} else {
		logger.Warn(ctx, service.logger, "driver_profile_missing",
			"Accept event sent without driver details", "driver_id", driverID)
		event.Driver = contracts.DriverInfo{Name: "Your driver"}
	}
	service.events.Publish(ctx, ws.UserGroup(r.ClientID), event)

	logger.Info(ctx, service.logger, "ride_accepted", "Driver accepted ride",
		"driver_id", driverID, "client_id", r.ClientID)

	return r, nil
}
