package ws

import (
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"taxitrack/internal/domain/user"
)

// fakeConn collects everything the writer goroutine delivers.
type fakeConn struct {
	mu       sync.Mutex
	payloads [][]byte
	closed   bool
	block    chan struct{} // non-nil makes WritePayload block until closed
	stuck    chan struct{} // receives once per write that is about to block
}

func (c *fakeConn) WritePayload(payload []byte) error {
	if c.block != nil {
		if c.stuck != nil {
			select {
			case c.stuck <- struct{}{}:
			default:
			}
		}
		<-c.block
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.payloads = append(c.payloads, payload)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) received() [][]byte {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([][]byte, len(c.payloads))
	copy(out, c.payloads)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func testRegistry() *Registry {
	return NewRegistry(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatal("condition not met in time")
		case <-time.After(5 * time.Millisecond):
		}
	}
}

func TestRegisterJoinsUserAndRoleGroups(t *testing.T) {
	r := testRegistry()

	conn := &fakeConn{}
	c := r.Register(conn, "d1", user.RoleDriver)
	defer r.Unregister(c)

	if got := r.MembersOf(UserGroup("d1")); len(got) != 1 || got[0] != c {
		t.Fatalf("user group members = %v", got)
	}
	if got := r.MembersOf(GroupDrivers); len(got) != 1 || got[0] != c {
		t.Fatalf("drivers group members = %v", got)
	}
	if got := r.MembersOf(GroupClients); len(got) != 0 {
		t.Fatalf("clients group must be empty, got %v", got)
	}
}

func TestUnregisterRemovesEverywhereAndCloses(t *testing.T) {
	r := testRegistry()

	conn := &fakeConn{}
	c := r.Register(conn, "c1", user.RoleClient)

	r.Unregister(c)

	if got := r.MembersOf(UserGroup("c1")); len(got) != 0 {
		t.Fatalf("user group still has members: %v", got)
	}
	if got := r.MembersOf(GroupClients); len(got) != 0 {
		t.Fatalf("clients group still has members: %v", got)
	}
	if !conn.isClosed() {
		t.Error("transport must be closed on unregister")
	}

	// idempotent, and nil-safe
	r.Unregister(c)
	r.Unregister(nil)

	if c.Enqueue([]byte("late")) {
		t.Error("enqueue after unregister must report false")
	}
}

func TestEnqueueDeliversThroughWriter(t *testing.T) {
	r := testRegistry()

	conn := &fakeConn{}
	c := r.Register(conn, "d1", user.RoleDriver)
	defer r.Unregister(c)

	if !c.Enqueue([]byte("one")) {
		t.Fatal("enqueue failed on an open connection")
	}
	if !c.Enqueue([]byte("two")) {
		t.Fatal("enqueue failed on an open connection")
	}

	waitFor(t, func() bool { return len(conn.received()) == 2 })

	got := conn.received()
	if string(got[0]) != "one" || string(got[1]) != "two" {
		t.Fatalf("delivery order broken: %q", got)
	}
}

func TestEnqueueNeverBlocksOnSlowConsumer(t *testing.T) {
	r := testRegistry()

	block := make(chan struct{})
	conn := &fakeConn{block: block, stuck: make(chan struct{}, 1)}
	c := r.Register(conn, "slow", user.RoleClient)
	defer r.Unregister(c)

	// wait until the writer is stuck on the first payload, then fill the
	// queue behind it
	c.Enqueue([]byte("stuck"))
	<-conn.stuck
	for i := 0; i < outboundQueueSize; i++ {
		if !c.Enqueue([]byte("fill")) {
			t.Fatalf("fill %d rejected with a stalled writer", i)
		}
	}

	done := make(chan bool, 1)
	go func() { done <- c.Enqueue([]byte("overflow")) }()

	select {
	case ok := <-done:
		if ok {
			t.Error("enqueue into a full queue must drop, not succeed")
		}
	case <-time.After(time.Second):
		t.Fatal("enqueue blocked on a slow consumer")
	}

	close(block)
}
