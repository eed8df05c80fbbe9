package contracts

// Event kinds pushed over WebSocket connections.
const (
	EventNewRideRequest = "new_ride_request"
	EventRideAccepted   = "ride_accepted"
	EventStatusChanged  = "status_changed"
	EventDriverPosition = "driver_position"
)

// RabbitMQ topology for the lifecycle event bridge.
const (
	ExchangeRideTopic = "ride_topic"

	RouteRideEventPrefix = "ride.event." // {event_kind}
)
