package contracts

import "time"

// Event is any message the dispatcher can fan out to a connection group.
type Event interface {
	EventType() string
}

// GeoPoint mirrors the {address, lat, long} triple on the wire.
type GeoPoint struct {
	Address string  `json:"address,omitempty"`
	Lat     float64 `json:"lat"`
	Long    float64 `json:"long"`
}

// CarInfo describes the vehicle shown to a client after acceptance.
type CarInfo struct {
	Model string `json:"model"`
	Plate string `json:"plate"`
}

// DriverInfo is the driver block of a ride_accepted event.
type DriverInfo struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Car   CarInfo `json:"car"`
}

// NewRideRequest is broadcast to the `drivers` group when a client requests a ride.
type NewRideRequest struct {
	Type        string    `json:"type"`
	RideID      string    `json:"ride_id"`
	ClientName  string    `json:"client_name"`
	Pickup      GeoPoint  `json:"pickup"`
	Destination GeoPoint  `json:"destination"`
	Price       float64   `json:"price"`
	CreatedAt   time.Time `json:"created_at"`
}

func (NewRideRequest) EventType() string { return EventNewRideRequest }

// RideAccepted is sent to the requesting client once a driver wins the accept race.
type RideAccepted struct {
	Type    string     `json:"type"`
	RideID  string     `json:"ride_id"`
	Driver  DriverInfo `json:"driver"`
	Message string     `json:"message"`
}

func (RideAccepted) EventType() string { return EventRideAccepted }

// StatusChanged is sent to a ride party on every later lifecycle transition.
type StatusChanged struct {
	Type      string    `json:"type"`
	RideID    string    `json:"ride_id"`
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StatusChanged) EventType() string { return EventStatusChanged }

// DriverPosition is the high-frequency location stream relayed to the client
// of the driver's active ride. Not part of the lifecycle state machine.
type DriverPosition struct {
	Type      string    `json:"type"`
	Lat       float64   `json:"lat"`
	Long      float64   `json:"long"`
	Timestamp time.Time `json:"timestamp"`
}

func (DriverPosition) EventType() string { return EventDriverPosition }
