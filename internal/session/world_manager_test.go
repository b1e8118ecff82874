package session

import (
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/duskvault/terrasrv/internal/chunkmgr"
	"github.com/duskvault/terrasrv/internal/protocol"
	"github.com/duskvault/terrasrv/internal/world"
)

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	return &world.World{
		Name:       "test",
		Left:       0,
		Right:      400,
		Top:        0,
		Bottom:     400,
		TileWidth:  400,
		TileHeight: 400,
	}
}

func TestRequestWorldInfoRepliesWithCurrentSnapshot(t *testing.T) {
	w := newTestWorld(t)
	mgr := NewWorldManager(w, zap.NewNop())
	go mgr.Run()

	reply := make(ClientActionChan, 1)
	mgr.Actions() <- RequestWorldInfoAction{Reply: reply}

	action := recvClientAction(t, reply)
	sp, ok := action.(SendPacket)
	if !ok {
		t.Fatalf("expected SendPacket, got %T", action)
	}
	info, ok := sp.Packet.(protocol.WorldInfo)
	if !ok {
		t.Fatalf("expected WorldInfo packet, got %T", sp.Packet)
	}
	if len(info.Payload) == 0 {
		t.Fatal("expected a non-empty world-info payload")
	}
}

func TestSpawnClientRepliesWithChunkHandler(t *testing.T) {
	w := newTestWorld(t)
	mgr := NewWorldManager(w, zap.NewNop())
	go mgr.Run()

	reply := make(chan chunkmgr.ChunkActionSender, 1)
	mgr.Actions() <- SpawnClientAction{TileX: 10, TileY: 10, Reply: reply}

	select {
	case handler := <-reply:
		if handler == nil {
			t.Fatal("expected a non-nil chunk action sender")
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for chunk handler")
	}
}

func TestSpawnClientSameChunkReturnsSameHandler(t *testing.T) {
	w := newTestWorld(t)
	mgr := NewWorldManager(w, zap.NewNop())
	go mgr.Run()

	reply1 := make(chan chunkmgr.ChunkActionSender, 1)
	reply2 := make(chan chunkmgr.ChunkActionSender, 1)
	mgr.Actions() <- SpawnClientAction{TileX: 10, TileY: 10, Reply: reply1}
	mgr.Actions() <- SpawnClientAction{TileX: 15, TileY: 15, Reply: reply2}

	h1 := <-reply1
	h2 := <-reply2
	if h1 != h2 {
		t.Fatal("expected tiles in the same chunk to resolve to the same handler")
	}
}
