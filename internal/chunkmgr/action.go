package chunkmgr

import "github.com/duskvault/terrasrv/internal/world"

// ChunkAction is the message type accepted by a chunk task's inbound
// channel. Every concrete action below implements it.
type ChunkAction interface {
	isChunkAction()
}

// ActionChan is the channel type a chunk task listens on; ChunkActionSender
// is the send-only view handed out to callers, matching the "cloneable
// channel handle" discipline used across the session core.
type ActionChan = chan ChunkAction
type ChunkActionSender = chan<- ChunkAction

// AssignChunk transfers ownership of an additional chunk into the
// receiving task, which merges it into its working set. The chunk handle
// is moved, never duplicated: the sender must not retain c after sending.
type AssignChunk struct {
	Chunk *Chunk
}

func (AssignChunk) isChunkAction() {}

// SectionPayload is one chunk's encoded tile-run bytes, as delivered in
// reply to RequestSections.
type SectionPayload struct {
	Coord ChunkCoord
	Data  []byte
}

// RequestSections asks the task to emit the cached encoded tile runs for
// every chunk it owns. One SectionPayload is sent per owned chunk; Reply
// is not closed by the task, since it may be shared across requests.
type RequestSections struct {
	Reply chan<- SectionPayload
}

func (RequestSections) isChunkAction() {}

// BlockEdit describes a single-tile change.
type BlockEdit struct {
	Tile world.TileCoord
	New  world.Tile
}

// ModifyBlock applies a single-tile edit within one of the task's owned
// chunks. Result receives the applied change once the edit is committed to
// the task's working set, or a send on Err if the coordinate falls outside
// any chunk the task owns.
type ModifyBlock struct {
	Edit   BlockEdit
	Result chan<- BlockEdit
	Err    chan<- error
}

func (ModifyBlock) isChunkAction() {}

// ForceClose terminates the task. No further actions are processed after
// this is received.
type ForceClose struct{}

func (ForceClose) isChunkAction() {}
