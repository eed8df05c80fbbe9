package websocket

import (
	"encoding/json"
	"errors"
	"net"
	"time"

	"github.com/gorilla/websocket"
)

// authReadErrorMessage picks the auth_error text for a failed first-frame
// read. Only a genuine deadline expiry reads as a timeout; disconnects and
// malformed frames get a neutral message.
func authReadErrorMessage(err error) string {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return "authentication timeout: please send auth message within 10 seconds"
	}
	return "authentication failed: could not read auth message"
}

// sendAuthError writes an auth failure frame directly; the connection is not
// registered yet so there is no writer goroutine to race with.
func (h *WebSocket) sendAuthError(conn *websocket.Conn, message string) error {
	errorMsg := map[string]any{
		"type":    "auth_error",
		"error":   message,
		"success": false,
	}
	msgBytes, err := json.Marshal(errorMsg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, msgBytes)
}

// sendAuthSuccess confirms authentication. Called before registration, same
// single-writer situation as sendAuthError.
func (h *WebSocket) sendAuthSuccess(conn *websocket.Conn, userID string) error {
	successMsg := map[string]any{
		"type":      "auth_success",
		"message":   "Authentication successful",
		"success":   true,
		"user_id":   userID,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}
	msgBytes, err := json.Marshal(successMsg)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, msgBytes)
}

// wsWriteClose sends a close frame; errors are ignored since the peer may
// already be gone.
func wsWriteClose(conn *websocket.Conn, code int, reason string) {
	msg := websocket.FormatCloseMessage(code, reason)
	_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(ctrlTimeout))
}

// pingLoop keeps the connection alive until the done channel closes. Control
// frames may be written concurrently with the registry's data writer.
func (h *WebSocket) pingLoop(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(ctrlTimeout)); err != nil {
				// close the socket to unblock the reader
				_ = conn.Close()
				return
			}
		}
	}
}
