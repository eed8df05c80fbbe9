package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"taxitrack/internal/domain/user"
	"taxitrack/internal/general/jwt"
	"taxitrack/internal/general/logger"
)

// locationThrottle bounds how often a single driver's position updates are
// accepted; anything faster is silently discarded.
const locationThrottle = 2 * time.Second

// ConnectDriver handles WebSocket connections from drivers with JWT auth.
func (h *WebSocket) ConnectDriver(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(r.Context(), h.logger, "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err)
		return
	}
	defer conn.Close()

	res, ok := h.authenticate(r.Context(), conn, user.RoleDriver)
	if !ok {
		return
	}
	driverID := res.Claims.Subject

	logger.Info(r.Context(), h.logger, "ws_connected", "Driver WebSocket connected",
		"driver_id", driverID)

	client := h.registry.Register(&gorillaConn{conn: conn}, driverID, user.RoleDriver)
	defer h.registry.Unregister(client)

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	var lastLocAt time.Time

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		_, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error(r.Context(), h.logger, "ws_unexpected_close", "Driver connection closed unexpectedly", err,
					"driver_id", driverID)
			} else {
				logger.Info(r.Context(), h.logger, "ws_connection_closed", "Driver connection closed",
					"driver_id", driverID)
				wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			return
		}

		var msg struct {
			Type string          `json:"type"`
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(payload, &msg); err != nil {
			client.Enqueue([]byte(`{"type":"error","error":"bad json"}`))
			continue
		}

		switch msg.Type {
		case "location_update":
			h.handleLocationUpdate(r.Context(), client, driverID, msg.Data, &lastLocAt)

		case "status_update":
			h.handleStatusUpdate(r.Context(), client, driverID, msg.Data)

		default:
			client.Enqueue([]byte(`{"type":"error","error":"unknown message type"}`))
		}
	}
}

// authenticate runs the first-frame auth exchange. It reports the validated
// claims, or replies with an auth_error frame and returns ok=false.
func (h *WebSocket) authenticate(ctx context.Context, conn *websocket.Conn, role user.Role) (*jwt.Result, bool) {
	conn.SetReadLimit(1 << 20) // 1 MiB
	if err := conn.SetReadDeadline(time.Now().Add(authDeadline)); err != nil {
		logger.Error(ctx, h.logger, "ws_set_deadline_failed", "Failed to set initial read deadline", err)
		_ = h.sendAuthError(conn, "internal server error")
		return nil, false
	}

	msgType, firstFrame, err := conn.ReadMessage()
	if err != nil {
		logger.Error(ctx, h.logger, "ws_auth_read_failed", "Failed to read auth message", err)
		_ = h.sendAuthError(conn, authReadErrorMessage(err))
		return nil, false
	}
	if msgType != websocket.TextMessage {
		logger.Error(ctx, h.logger, "ws_auth_invalid_format", "Auth message must be text format", nil)
		_ = h.sendAuthError(conn, "auth message must be in text format")
		return nil, false
	}

	res, err := jwt.ValidateWSAuth(firstFrame, h.jwtMgr, role)
	if err != nil {
		logger.Error(ctx, h.logger, "ws_auth_failed", "Invalid auth message or token", err)
		_ = h.sendAuthError(conn, "authentication failed: invalid token")
		return nil, false
	}

	if err := h.sendAuthSuccess(conn, res.Claims.Subject); err != nil {
		logger.Error(ctx, h.logger, "ws_auth_success_failed", "Failed to send auth success message", err)
		return nil, false
	}

	// deadline resets per read from here on; pongs refresh it too
	_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
	conn.SetPongHandler(func(_ string) error {
		return conn.SetReadDeadline(time.Now().Add(readDeadline))
	})

	return res, true
}
