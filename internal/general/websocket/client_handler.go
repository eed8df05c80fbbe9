package websocket

import (
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"taxitrack/internal/domain/user"
	"taxitrack/internal/general/logger"
)

// ConnectClient handles WebSocket connections from clients. The client side is
// receive-only: ride events arrive through the registry, and inbound frames
// are ignored apart from keeping the connection alive.
func (h *WebSocket) ConnectClient(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error(r.Context(), h.logger, "websocket_upgrade_failed", "Failed to upgrade to WebSocket", err)
		return
	}
	defer conn.Close()

	res, ok := h.authenticate(r.Context(), conn, user.RoleClient)
	if !ok {
		return
	}
	clientID := res.Claims.Subject

	logger.Info(r.Context(), h.logger, "ws_connected", "Client WebSocket connected",
		"client_id", clientID)

	client := h.registry.Register(&gorillaConn{conn: conn}, clientID, user.RoleClient)
	defer h.registry.Unregister(client)

	done := make(chan struct{})
	defer close(done)
	go h.pingLoop(conn, done)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(readDeadline))
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				logger.Error(r.Context(), h.logger, "ws_unexpected_close", "Client connection closed unexpectedly", err,
					"client_id", clientID)
			} else {
				logger.Info(r.Context(), h.logger, "ws_connection_closed", "Client connection closed",
					"client_id", clientID)
				wsWriteClose(conn, websocket.CloseNormalClosure, "bye")
			}
			return
		}
	}
}
