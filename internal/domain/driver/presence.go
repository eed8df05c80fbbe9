package driver

import "time"

// Presence is the durable per-driver availability record from `driver_profiles`.
// It exists for the whole lifetime of the driver account; only the online flag
// and the last reported location mutate.
type Presence struct {
	DriverID           string
	IsOnline           bool
	CurrentLat         *float64
	CurrentLong        *float64
	LastLocationUpdate *time.Time
	UpdatedAt          time.Time
}

// HasLocation reports whether the driver ever reported a position.
func (p *Presence) HasLocation() bool {
	return p != nil && p.CurrentLat != nil && p.CurrentLong != nil
}

// Profile carries the driver details shown to a client once a ride is accepted.
type Profile struct {
	DriverID string
	Name     string
	Phone    string
	CarModel string
	CarPlate string
}
