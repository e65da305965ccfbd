package utils_test

import (
	"errors"
	"testing"

	"taskhive/utils"
)

type fakeConn struct {
	writes  []interface{}
	failure error
	closed  bool
}

func (c *fakeConn) WriteJSON(v interface{}) error {
	if c.failure != nil {
		return c.failure
	}
	c.writes = append(c.writes, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.closed = true
	return nil
}

func TestHubPushReachesEveryConnection(t *testing.T) {
	hub := utils.NewHub()
	first := &fakeConn{}
	second := &fakeConn{}

	hub.Register(1, first)
	hub.Register(1, second)

	payload := utils.PushPayload{Message: "task updated", Type: "task", Tab: "Tasks"}
	hub.Push(1, payload)

	for i, conn := range []*fakeConn{first, second} {
		if len(conn.writes) != 1 {
			t.Fatalf("conn %d: got %d writes, want 1", i, len(conn.writes))
		}
		if got := conn.writes[0].(utils.PushPayload); got != payload {
			t.Errorf("conn %d: payload = %+v, want %+v", i, got, payload)
		}
	}
}

func TestHubPushToUnknownUserIsNoOp(t *testing.T) {
	hub := utils.NewHub()
	conn := &fakeConn{}
	hub.Register(1, conn)

	hub.Push(2, utils.PushPayload{Message: "wrong channel"})

	if len(conn.writes) != 0 {
		t.Fatalf("connection for user 1 received a push addressed to user 2")
	}
}

func TestHubUnregisterStopsDelivery(t *testing.T) {
	hub := utils.NewHub()
	conn := &fakeConn{}

	hub.Register(1, conn)
	hub.Unregister(1, conn)
	hub.Push(1, utils.PushPayload{Message: "gone"})

	if len(conn.writes) != 0 {
		t.Fatalf("unregistered connection still received a push")
	}
	if hub.Connections(1) != 0 {
		t.Fatalf("Connections(1) = %d after unregister, want 0", hub.Connections(1))
	}
}

func TestHubDropsFailingConnection(t *testing.T) {
	hub := utils.NewHub()
	healthy := &fakeConn{}
	broken := &fakeConn{failure: errors.New("write: broken pipe")}

	hub.Register(1, healthy)
	hub.Register(1, broken)

	hub.Push(1, utils.PushPayload{Message: "first"})

	if !broken.closed {
		t.Fatalf("failing connection was not closed")
	}
	if hub.Connections(1) != 1 {
		t.Fatalf("Connections(1) = %d after drop, want 1", hub.Connections(1))
	}

	// The healthy connection keeps receiving.
	hub.Push(1, utils.PushPayload{Message: "second"})
	if len(healthy.writes) != 2 {
		t.Fatalf("healthy connection got %d writes, want 2", len(healthy.writes))
	}
}

func TestHubUnregisterUnknownUser(t *testing.T) {
	hub := utils.NewHub()
	// Must not panic for a user that never registered.
	hub.Unregister(99, &fakeConn{})
}
