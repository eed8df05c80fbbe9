package ride

import (
	"errors"
	"math"
	"strings"
	"time"
)

// Location is one endpoint of a ride: free-text address plus GPS coordinates.
type Location struct {
	Address string
	Lat     float64
	Long    float64
}

// Ride is the domain entity corresponding to the `rides` table.
type Ride struct {
	// Identity & audit
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	// Parties
	ClientID string
	DriverID *string // nil until a driver accepts

	// Geography (immutable after creation)
	Pickup      Location
	Destination Location

	// Commercial
	Price float64

	// Core state
	Status Status

	// Feedback (set only on completed rides)
	Rating  *int
	Comment *string

	// Set exactly once, on the transition into completed.
	CompletedAt *time.Time
}

var (
	ErrClientRequired   = errors.New("client id is required")
	ErrAddressRequired  = errors.New("pickup and destination addresses are required")
	ErrInvalidLatitude  = errors.New("latitude must be between -90 and 90")
	ErrInvalidLongitude = errors.New("longitude must be between -180 and 180")
)

// NewRide creates a new ride in pending state with an estimated price.
func NewRide(clientID string, pickup, destination Location) (*Ride, error) {
	if clientID = strings.TrimSpace(clientID); clientID == "" {
		return nil, ErrClientRequired
	}
	if err := validateLocation(pickup); err != nil {
		return nil, err
	}
	if err := validateLocation(destination); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	return &Ride{
		CreatedAt:   now,
		UpdatedAt:   now,
		ClientID:    clientID,
		Pickup:      pickup,
		Destination: destination,
		Price:       EstimatePrice(pickup, destination),
		Status:      StatusPending,
	}, nil
}

func validateLocation(loc Location) error {
	if strings.TrimSpace(loc.Address) == "" {
		return ErrAddressRequired
	}
	if loc.Lat < -90 || loc.Lat > 90 {
		return ErrInvalidLatitude
	}
	if loc.Long < -180 || loc.Long > 180 {
		return ErrInvalidLongitude
	}
	return nil
}

// DistanceKM returns the haversine distance between pickup and destination.
func (r *Ride) DistanceKM() float64 {
	return HaversineKM(r.Pickup.Lat, r.Pickup.Long, r.Destination.Lat, r.Destination.Long)
}

// HaversineKM computes the great-circle distance between two points in kilometers.
func HaversineKM(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0 // Earth radius in km
	a1 := lat1 * math.Pi / 180
	a2 := lat2 * math.Pi / 180
	da := (lat2 - lat1) * math.Pi / 180
	db := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(da/2)*math.Sin(da/2) +
		math.Cos(a1)*math.Cos(a2)*math.Sin(db/2)*math.Sin(db/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return R * c
}

// EstimatePrice returns base fare plus a per-kilometer rate over the trip distance.
func EstimatePrice(pickup, destination Location) float64 {
	const (
		baseFare  = 500.0
		ratePerKM = 200.0
	)
	dist := HaversineKM(pickup.Lat, pickup.Long, destination.Lat, destination.Long)
	return baseFare + dist*ratePerKM
}
