package ports

import (
	"context"
	"time"

	"taxitrack/internal/domain/driver"
	"taxitrack/internal/domain/ride"
)

// StatusChange is the set of fields a conditional status update may apply.
// DriverID and CompletedAt are applied only when non-nil.
type StatusChange struct {
	NewStatus   ride.Status
	DriverID    *string
	CompletedAt *time.Time
}

// RideStore is the durable record store for rides. It is the single source of
// truth for ride state; all status writes go through CompareAndSetStatus.
type RideStore interface {
	// Create inserts a pending ride. The insert is conditional: it fails with
	// ride.ErrConflictActiveRide when the client already has an active ride,
	// atomically with respect to concurrent creates for the same client.
	Create(ctx context.Context, r *ride.Ride) error

	// GetByID returns ride.ErrRideNotFound when no row exists.
	GetByID(ctx context.Context, id string) (*ride.Ride, error)

	// FindActiveByClient returns (nil, nil) when the client has no active ride.
	FindActiveByClient(ctx context.Context, clientID string) (*ride.Ride, error)

	// FindActiveByDriver returns (nil, nil) when the driver has no active ride.
	FindActiveByDriver(ctx context.Context, driverID string) (*ride.Ride, error)

	// ListPending returns up to limit pending rides, newest first.
	ListPending(ctx context.Context, limit int) ([]*ride.Ride, error)

	// CompareAndSetStatus applies change only if the ride's current status
	// equals expected. Returns (false, nil) when the guard fails; the guard is
	// atomic across concurrent callers.
	CompareAndSetStatus(ctx context.Context, id string, expected ride.Status, change StatusChange) (bool, error)

	// SetFeedback stores rating/comment on a completed ride. Overwrites any
	// previous feedback. Returns (false, nil) when the ride is not completed.
	SetFeedback(ctx context.Context, id string, rating int, comment string) (bool, error)
}

// PresenceStore persists per-driver availability and last known location.
type PresenceStore interface {
	SetOnline(ctx context.Context, driverID string, online bool) error
	UpdateLocation(ctx context.Context, driverID string, lat, long float64, at time.Time) error
	Get(ctx context.Context, driverID string) (*driver.Presence, error)
}

// Directory resolves profile details needed to enrich outbound events.
type Directory interface {
	ClientContact(ctx context.Context, clientID string) (name, phone string, err error)
	DriverProfile(ctx context.Context, driverID string) (*driver.Profile, error)
}

// LocationIndex is the geo index of recent driver positions (Redis-backed in
// production). Best-effort: callers tolerate errors and stale entries.
type LocationIndex interface {
	Update(ctx context.Context, driverID string, lat, long float64) error
	// Position returns ok=false when the driver has no indexed position.
	Position(ctx context.Context, driverID string) (lat, long float64, ok bool, err error)
	Remove(ctx context.Context, driverID string) error
}
