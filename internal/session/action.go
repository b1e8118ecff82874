// Package session implements the long-lived task graph that turns
// accepted TCP connections into running clients: the listener, the server
// registry, the world manager, and each client's reader/writer pair.
package session

import (
	"github.com/duskvault/terrasrv/internal/chunkmgr"
	"github.com/duskvault/terrasrv/internal/protocol"
)

// ClientAction is the message type a client's writer task consumes from
// its inbound channel. The reader emits these; it never mutates player
// state itself.
type ClientAction interface {
	isClientAction()
}

// ClientActionChan is the channel type backing one client's action queue.
type ClientActionChan = chan ClientAction

// ClientActionSender is the send-only handle handed to other tasks so they
// can address a specific client.
type ClientActionSender = chan<- ClientAction

// SetClientID assigns the slot id the registry handed out for this client.
type SetClientID struct{ Slot uint8 }

func (SetClientID) isClientAction() {}

// SetPlayerName performs the one-write name assignment.
type SetPlayerName struct{ Name string }

func (SetPlayerName) isClientAction() {}

// SetPlayerAppearance performs the one-write appearance assignment.
type SetPlayerAppearance struct{ Appearance protocol.PlayerAppearance }

func (SetPlayerAppearance) isClientAction() {}

// SetPlayerUUID stores the uuid, settable only until first set.
type SetPlayerUUID struct{ UUID string }

func (SetPlayerUUID) isClientAction() {}

// SetPlayerStat carries a PlayerHp, PlayerMana, or PlayerBuff packet to be
// applied to the player's status.
type SetPlayerStat struct{ Packet any }

func (SetPlayerStat) isClientAction() {}

// UpdateInventorySlot carries a PlayerInventorySlot packet to be routed to
// the player's inventory partition table.
type UpdateInventorySlot struct{ Packet protocol.PlayerInventorySlot }

func (UpdateInventorySlot) isClientAction() {}

// RequestWorldInfo asks the world manager for the current world-info
// buffer snapshot. The reply arrives as a SendPacket(WorldInfo) routed
// back through this same client's action channel.
type RequestWorldInfo struct{}

func (RequestWorldInfo) isClientAction() {}

// RequestEssentialTiles asks the client's current chunk handler to emit
// its cached tile sections.
type RequestEssentialTiles struct {
	Tile protocol.EssentialTilesRequest
}

func (RequestEssentialTiles) isClientAction() {}

// SendPacket asks the writer to encode and flush an outbound packet.
type SendPacket struct{ Packet any }

func (SendPacket) isClientAction() {}

// SetChunkHandler replaces the writer's cached chunk-action channel.
type SetChunkHandler struct{ Handler chunkmgr.ChunkActionSender }

func (SetChunkHandler) isClientAction() {}
