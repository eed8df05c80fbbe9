package ws

import (
	"context"
	"encoding/json"
	"log/slog"

	"taxitrack/internal/general/contracts"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/general/metrics"
	"taxitrack/internal/general/rabbitmq"
)

// Dispatcher pushes ride events to every connection currently in a target
// group. Delivery is at-most-once and best-effort: a slow or dead recipient
// loses the event, nobody else waits for it.
type Dispatcher struct {
	registry *Registry
	logger   *slog.Logger
	bridge   *rabbitmq.MQPublisher // optional; mirrors events to the ride_topic exchange
}

// NewDispatcher wires a dispatcher over the registry. bridge may be nil.
func NewDispatcher(registry *Registry, log *slog.Logger, bridge *rabbitmq.MQPublisher) *Dispatcher {
	return &Dispatcher{registry: registry, logger: log, bridge: bridge}
}

// Publish fans event out to group. Send failures are logged and dropped;
// nothing is persisted or retried.
func (d *Dispatcher) Publish(ctx context.Context, group string, event contracts.Event) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error(ctx, d.logger, "event_marshal_failed", "Failed to encode event", err,
			"event", event.EventType(), "group", group)
		return
	}

	for _, member := range d.registry.MembersOf(group) {
		if !member.Enqueue(payload) {
			metrics.EventsDropped.Inc()
			logger.Warn(ctx, d.logger, "event_dropped", "Recipient queue full, event dropped",
				"event", event.EventType(), "user_id", member.UserID)
		}
	}
	metrics.EventsPublished.WithLabelValues(event.EventType()).Inc()

	if d.bridge != nil {
		// The broker publish waits for confirms; keep it off the caller's path.
		go func() {
			routingKey := contracts.RouteRideEventPrefix + event.EventType()
			if err := d.bridge.Publish(contracts.ExchangeRideTopic, routingKey, payload); err != nil {
				logger.Warn(context.WithoutCancel(ctx), d.logger, "event_bridge_failed",
					"Failed to mirror event to RabbitMQ", "event", event.EventType())
			}
		}()
	}
}
