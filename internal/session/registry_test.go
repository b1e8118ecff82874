package session

import (
	"testing"
	"time"

	"go.uber.org/zap"
)

func newTestRegistry(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry(zap.NewNop())
	go r.Run()
	return r
}

func TestConnectClientAssignsIncreasingSlots(t *testing.T) {
	r := newTestRegistry(t)

	a := make(ClientActionChan, 4)
	b := make(ClientActionChan, 4)

	r.Actions() <- ConnectClient{Name: "alice", Action: a}
	r.Actions() <- ConnectClient{Name: "bob", Action: b}

	first := recvClientAction(t, a)
	second := recvClientAction(t, b)

	idA, ok := first.(SetClientID)
	if !ok {
		t.Fatalf("expected SetClientID, got %T", first)
	}
	idB, ok := second.(SetClientID)
	if !ok {
		t.Fatalf("expected SetClientID, got %T", second)
	}
	if idA.Slot == idB.Slot {
		t.Fatalf("expected distinct slots, got %d and %d", idA.Slot, idB.Slot)
	}
}

func TestBroadcastFansOutToEveryRegisteredClient(t *testing.T) {
	r := newTestRegistry(t)

	a := make(ClientActionChan, 4)
	b := make(ClientActionChan, 4)
	r.Actions() <- ConnectClient{Name: "alice", Action: a}
	r.Actions() <- ConnectClient{Name: "bob", Action: b}
	recvClientAction(t, a)
	recvClientAction(t, b)

	r.Actions() <- Broadcast{Packet: "hello"}

	for _, ch := range []ClientActionChan{a, b} {
		action := recvClientAction(t, ch)
		sp, ok := action.(SendPacket)
		if !ok {
			t.Fatalf("expected SendPacket, got %T", action)
		}
		if sp.Packet != "hello" {
			t.Fatalf("expected payload 'hello', got %v", sp.Packet)
		}
	}
}

func TestBroadcastDropsOnFullChannelWithoutBlocking(t *testing.T) {
	r := newTestRegistry(t)

	full := make(ClientActionChan) // unbuffered and never drained: any send blocks
	r.Actions() <- ConnectClient{Name: "stuck", Action: full}

	done := make(chan struct{})
	go func() {
		r.Actions() <- Broadcast{Packet: "ping"}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("broadcast blocked on an unresponsive client instead of dropping")
	}
}

func TestDisconnectClientRemovesFromBothMaps(t *testing.T) {
	r := newTestRegistry(t)

	a := make(ClientActionChan, 4)
	r.Actions() <- ConnectClient{Name: "alice", Action: a}
	recvClientAction(t, a)

	r.Actions() <- DisconnectClient{Name: "alice"}
	r.Actions() <- Broadcast{Packet: "after-disconnect"}

	select {
	case action := <-a:
		t.Fatalf("expected no further delivery to a disconnected client, got %v", action)
	case <-time.After(100 * time.Millisecond):
	}
}

func recvClientAction(t *testing.T, ch ClientActionChan) ClientAction {
	t.Helper()
	select {
	case a := <-ch:
		return a
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for client action")
		return nil
	}
}
