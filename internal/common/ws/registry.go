package ws

import (
	"context"
	"log/slog"
	"sync"

	"taxitrack/internal/domain/user"
	"taxitrack/internal/general/logger"
	"taxitrack/internal/general/metrics"
)

// Group names. Every connection joins its own user group; drivers and clients
// additionally join a role-wide group.
const (
	GroupDrivers = "drivers"
	GroupClients = "clients"
)

// UserGroup returns the per-user group name for direct delivery.
func UserGroup(userID string) string { return "user:" + userID }

// outboundQueueSize bounds the per-connection event backlog. A recipient that
// falls further behind starts losing events rather than slowing anyone else.
const outboundQueueSize = 32

// Conn is the transport half of a registered connection. The registry owns all
// application writes to it through the outbound queue.
type Conn interface {
	WritePayload(payload []byte) error
	Close() error
}

// Client is one registered connection: an authenticated identity plus its
// outbound queue. The writer goroutine started at registration is the only
// place WritePayload is called.
type Client struct {
	UserID string
	Role   user.Role

	conn Conn
	out  chan []byte
	done chan struct{}
	once sync.Once
}

// Enqueue hands a payload to the connection's writer. It never blocks: a full
// queue or a stopped connection drops the payload and returns false.
func (c *Client) Enqueue(payload []byte) bool {
	select {
	case <-c.done:
		return false
	default:
	}

	select {
	case c.out <- payload:
		return true
	default:
		return false
	}
}

// stop terminates the writer and closes the transport. Idempotent.
func (c *Client) stop() {
	c.once.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func (c *Client) writeLoop(log *slog.Logger) {
	for {
		select {
		case payload := <-c.out:
			if err := c.conn.WritePayload(payload); err != nil {
				logger.Warn(context.Background(), log, "ws_write_failed",
					"Dropping connection after failed write",
					"user_id", c.UserID)
				c.stop()
				return
			}
		case <-c.done:
			return
		}
	}
}

// Registry tracks which connections belong to which logical groups, purely in
// memory. A restart drops all memberships; reconnecting clients re-register.
type Registry struct {
	mu      sync.RWMutex
	groups  map[string]map[*Client]struct{}
	members map[*Client][]string
	logger  *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{
		groups:  make(map[string]map[*Client]struct{}),
		members: make(map[*Client][]string),
		logger:  log,
	}
}

// Register adds a connection under its user group plus the role-wide group,
// and starts its writer goroutine. Called once per authenticated connection.
func (r *Registry) Register(conn Conn, userID string, role user.Role) *Client {
	c := &Client{
		UserID: userID,
		Role:   role,
		conn:   conn,
		out:    make(chan []byte, outboundQueueSize),
		done:   make(chan struct{}),
	}

	groups := []string{UserGroup(userID)}
	switch {
	case role.IsDriver():
		groups = append(groups, GroupDrivers)
	case role.IsClient():
		groups = append(groups, GroupClients)
	}

	r.mu.Lock()
	for _, g := range groups {
		set, ok := r.groups[g]
		if !ok {
			set = make(map[*Client]struct{})
			r.groups[g] = set
		}
		set[c] = struct{}{}
	}
	r.members[c] = groups
	r.mu.Unlock()

	go c.writeLoop(r.logger)

	metrics.ConnectionsActive.Inc()
	logger.Info(context.Background(), r.logger, "ws_registered", "Connection registered",
		"user_id", userID, "role", role.String())
	return c
}

// Unregister removes a connection from all groups and stops its writer. Safe
// to call with nil or with a client that was already removed (no-op).
func (r *Registry) Unregister(c *Client) {
	if c == nil {
		return
	}

	r.mu.Lock()
	groups, registered := r.members[c]
	if registered {
		delete(r.members, c)
		for _, g := range groups {
			if set, ok := r.groups[g]; ok {
				delete(set, c)
				if len(set) == 0 {
					delete(r.groups, g)
				}
			}
		}
	}
	r.mu.Unlock()

	c.stop()

	if registered {
		metrics.ConnectionsActive.Dec()
		logger.Info(context.Background(), r.logger, "ws_removed", "Connection removed",
			"user_id", c.UserID)
	}
}

// MembersOf returns the current members of a group. An unknown group yields an
// empty slice, never an error.
func (r *Registry) MembersOf(group string) []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	set := r.groups[group]
	out := make([]*Client, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	return out
}
