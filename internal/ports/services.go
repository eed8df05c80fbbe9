package ports

import (
	"context"
	"time"

	"taxitrack/internal/domain/driver"
	"taxitrack/internal/domain/ride"
	"taxitrack/internal/general/contracts"
)

// EventPublisher delivers a ride event to every connection in a group.
// Delivery is best-effort, at-most-once; Publish never blocks on a slow
// recipient and never returns an error to the lifecycle engine.
type EventPublisher interface {
	Publish(ctx context.Context, group string, event contracts.Event)
}

// ----- DTOs for the Ride Lifecycle Engine -----

// RequestRideInput is the validated input required to request a ride.
type RequestRideInput struct {
	ClientID    string
	Pickup      ride.Location
	Destination ride.Location
}

// RequestRideResult is returned by RideService.RequestRide.
type RequestRideResult struct {
	Ride       *ride.Ride
	DistanceKM float64
}

// ActiveRideView is the client's active ride plus driver details once assigned.
type ActiveRideView struct {
	Ride   *ride.Ride
	Driver *driver.Profile // nil while the ride is still pending
}

// RideService is the ride lifecycle engine: the sole authority for status
// transitions. Every precondition violation returns a typed error from the
// ride package.
type RideService interface {
	RequestRide(ctx context.Context, in RequestRideInput) (RequestRideResult, error)
	AcceptRide(ctx context.Context, driverID, rideID string) (*ride.Ride, error)
	UpdateRideStatus(ctx context.Context, driverID, rideID string, next ride.Status) (*ride.Ride, error)
	CancelRide(ctx context.Context, clientID, rideID string) (*ride.Ride, error)
	RateRide(ctx context.Context, clientID, rideID string, rating int, comment string) error
	ActiveRide(ctx context.Context, clientID string) (*ActiveRideView, error)
}

// ----- DTOs for the Driver Presence service -----

// AvailableRide is one pending ride as listed to a driver.
type AvailableRide struct {
	RideID      string
	ClientName  string
	ClientPhone string
	Pickup      ride.Location
	Destination ride.Location
	Price       float64
	CreatedAt   time.Time
	DistanceKM  *float64 // distance from the driver's last position; nil if unknown
}

// DriverService mutates driver presence and serves the driver-facing ride list.
type DriverService interface {
	SetOnline(ctx context.Context, driverID string, online bool) error
	ReportLocation(ctx context.Context, driverID string, lat, long float64) error
	AvailableRides(ctx context.Context, driverID string) ([]AvailableRide, error)
}
