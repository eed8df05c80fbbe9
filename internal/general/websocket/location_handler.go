package websocket

import (
	"context"
	"encoding/json"
	"time"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/general/logger"
)

// handleLocationUpdate records a driver position frame. Updates arriving
// faster than the throttle window are discarded without a reply.
func (h *WebSocket) handleLocationUpdate(ctx context.Context, client *ws.Client, driverID string, raw json.RawMessage, lastLocAt *time.Time) {
	var in struct {
		Lat  float64 `json:"lat"`
		Long float64 `json:"long"`
	}
	if err := json.Unmarshal(raw, &in); err != nil {
		client.Enqueue([]byte(`{"type":"error","error":"bad location payload"}`))
		return
	}

	now := time.Now()
	if !lastLocAt.IsZero() && now.Sub(*lastLocAt) < locationThrottle {
		return
	}
	*lastLocAt = now

	if err := h.drivers.ReportLocation(ctx, driverID, in.Lat, in.Long); err != nil {
		logger.Warn(ctx, h.logger, "ws_location_update_failed", "Failed to apply location update",
			"driver_id", driverID)
		client.Enqueue([]byte(`{"type":"error","error":"failed to update location"}`))
		return
	}

	client.Enqueue([]byte(`{"type":"location_ack","status":"ok"}`))
}

// handleStatusUpdate flips the driver's availability from a WS frame.
func (h *WebSocket) handleStatusUpdate(ctx context.Context, client *ws.Client, driverID string, raw json.RawMessage) {
	var in struct {
		IsOnline *bool `json:"is_online"`
	}
	if err := json.Unmarshal(raw, &in); err != nil || in.IsOnline == nil {
		client.Enqueue([]byte(`{"type":"error","error":"bad status payload"}`))
		return
	}

	if err := h.drivers.SetOnline(ctx, driverID, *in.IsOnline); err != nil {
		logger.Warn(ctx, h.logger, "ws_status_update_failed", "Failed to apply status update",
			"driver_id", driverID)
		client.Enqueue([]byte(`{"type":"error","error":"failed to update status"}`))
		return
	}

	client.Enqueue([]byte(`{"type":"status_ack","status":"ok"}`))
}
