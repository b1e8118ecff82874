package session

import (
	"go.uber.org/zap"

	"github.com/duskvault/terrasrv/internal/chunkmgr"
	"github.com/duskvault/terrasrv/internal/protocol"
	"github.com/duskvault/terrasrv/internal/world"
)

// WorldAction is the message type the world manager task consumes.
type WorldAction interface {
	isWorldAction()
}

// WorldActionChan is the channel type backing the world manager's inbound
// queue.
type WorldActionChan = chan WorldAction

// WorldActionSender is the send-only handle other tasks use to reach the
// world manager.
type WorldActionSender = chan<- WorldAction

// RequestWorldInfoAction asks for the current world-info buffer snapshot.
// The reply is delivered as SendPacket(WorldInfo{...}) sent to Reply,
// which is ordinarily the requesting client's own action channel.
type RequestWorldInfoAction struct {
	Reply ClientActionSender
}

func (RequestWorldInfoAction) isWorldAction() {}

// SpawnClientAction resolves the chunk owning (TileX, TileY) and returns
// its action channel on Reply.
type SpawnClientAction struct {
	TileX, TileY int32
	Reply        chan<- chunkmgr.ChunkActionSender
}

func (SpawnClientAction) isWorldAction() {}

// WorldManager owns the world's metadata, its world-info cache, and the
// chunk table. Every other task reaches world state only through these
// request/reply actions.
type WorldManager struct {
	actions WorldActionChan
	logger  *zap.Logger

	world  *world.World
	cache  *world.InfoCache
	chunks *chunkmgr.Manager
}

// NewWorldManager returns a WorldManager over w, with its world-info cache
// primed and its chunk table ready for first reference.
func NewWorldManager(w *world.World, logger *zap.Logger) *WorldManager {
	cache := world.NewInfoCache(w)
	return &WorldManager{
		actions: make(WorldActionChan, 100),
		logger:  logger,
		world:   w,
		cache:   cache,
		chunks:  chunkmgr.NewManager(w),
	}
}

// Actions returns the send-only handle other tasks use to reach this
// world manager.
func (m *WorldManager) Actions() WorldActionSender { return m.actions }

// Run processes world-manager actions until its channel is closed.
func (m *WorldManager) Run() {
	for action := range m.actions {
		switch a := action.(type) {
		case RequestWorldInfoAction:
			a.Reply <- SendPacket{Packet: protocol.WorldInfo{Payload: m.cache.Payload()}}

		case SpawnClientAction:
			a.Reply <- m.chunks.ResolveSpawnChunk(a.TileX, a.TileY)

		default:
			m.logger.Warn("unhandled world action")
		}
	}
}
