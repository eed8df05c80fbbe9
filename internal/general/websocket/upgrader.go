package websocket

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"taxitrack/internal/common/ws"
	"taxitrack/internal/general/jwt"
	"taxitrack/internal/ports"
)

const (
	wsWriteTimeout = 5 * time.Second
	ctrlTimeout    = 5 * time.Second
	readDeadline   = 60 * time.Second
	pingInterval   = 30 * time.Second
	authDeadline   = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(*http.Request) bool { return true },
}

// WebSocket handles WebSocket connections with first-frame JWT auth. Outbound
// events flow through the registry; this package only runs the read side.
type WebSocket struct {
	logger   *slog.Logger
	jwtMgr   *jwt.Manager
	registry *ws.Registry
	drivers  ports.DriverService
}

// NewWebSocket creates a WebSocket handler with JWT auth.
func NewWebSocket(log *slog.Logger, jwtMgr *jwt.Manager, registry *ws.Registry, drivers ports.DriverService) *WebSocket {
	return &WebSocket{logger: log, jwtMgr: jwtMgr, registry: registry, drivers: drivers}
}

// RegisterRoutes mounts the WebSocket endpoints. Auth happens on the first
// frame, not in middleware.
func (h *WebSocket) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /ws/driver", h.ConnectDriver)
	mux.HandleFunc("GET /ws/client", h.ConnectClient)
}

// gorillaConn adapts a gorilla connection to the registry's transport
// interface. WritePayload is only ever called from the registry's writer
// goroutine; ping frames go through WriteControl, which gorilla allows
// concurrently with data writes.
type gorillaConn struct {
	conn *websocket.Conn
}

func (g *gorillaConn) WritePayload(payload []byte) error {
	_ = g.conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return g.conn.WriteMessage(websocket.TextMessage, payload)
}

func (g *gorillaConn) Close() error {
	return g.conn.Close()
}
