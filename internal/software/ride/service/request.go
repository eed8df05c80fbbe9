package service

import (
	"context"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contextx"
	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/general/metrics"
	"taxitrack/internal/ports"
)

// RequestRide creates a new pending ride for the client and announces it to
// every connected driver. A client with an active ride gets
// ride.ErrConflictActiveRide; the store's conditional insert guarantees the
// one-active-ride invariant even under concurrent requests.
func (service *rideService) RequestRide(ctx context.Context, in ports.RequestRideInput) (ports.RequestRideResult, error) {
	ctx = contextx.WithRequestID(ctx, generateCorrelationID())

	// fast-path check; the store re-checks atomically on insert
	if active, err := service.rides.FindActiveByClient(ctx, in.ClientID); err != nil {
		logger.Error(ctx, service.logger, "ride_request_failed", "Failed to look up active ride", err,
			"client_id", in.ClientID)
		return ports.RequestRideResult{}, err
	} else if active != nil {
		return ports.RequestRideResult{}, ride.ErrConflictActiveRide
	}

	r, err := ride.NewRide(in.ClientID, in.Pickup, in.Destination)
	if err != nil {
		return ports.RequestRideResult{}, err
	}

	if err := service.rides.Create(ctx, r); err != nil {
		logger.Error(ctx, service.logger, "ride_request_failed", "Failed to create ride", err,
			"client_id", in.ClientID)
		return ports.RequestRideResult{}, err
	}
	ctx = contextx.WithRideID(ctx, r.ID)
	metrics.RidesRequested.Inc()

	// name lookup is cosmetic; the announcement goes out either way
	clientName := "Client"
	if name, _, err := service.directory.ClientContact(ctx, in.ClientID); err == nil && name != "" {
		clientName = name
	}

	service.events.Publish(ctx, ws.GroupDrivers, contracts.NewRideRequest{
		Type:       contracts.EventNewRideRequest,
		RideID:     r.ID,
		ClientName: clientName,
		Pickup: contracts.GeoPoint{
			Address: r.Pickup.Address, Lat: r.Pickup.Lat, Long: r.Pickup.Long,
		},
		Destination: contracts.GeoPoint{
			Address: r.Destination.Address, Lat: r.Destination.Lat, Long: r.Destination.Long,
		},
		Price:     r.Price,
		CreatedAt: r.CreatedAt,
	})

	logger.Info(ctx, service.logger, "ride_requested", "Ride created and announced to drivers",
		"client_id", in.ClientID, "price", r.Price)

	return ports.RequestRideResult{Ride: r, DistanceKM: r.DistanceKM()}, nil
}

// ActiveRide returns the client's active ride with driver details once a
// driver is assigned, or nil when there is none.
func (service *rideService) ActiveRide(ctx context.Context, clientID string) (*ports.ActiveRideView, error) {
	r, err := service.rides.FindActiveByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, nil
	}

	view := &ports.ActiveRideView{Ride: r}
	if r.DriverID != nil {
		if profile, err := service.directory.DriverProfile(ctx, *r.DriverID); err == nil {
			view.Driver = profile
		}
	}
	return view, nil
}
