package chunkmgr

import (
	"errors"
	"fmt"
)

// ErrTileNotOwned is returned from a ModifyBlock request whose tile
// coordinate falls outside every chunk the handling task owns.
var ErrTileNotOwned = errors.New("chunkmgr: tile coordinate not owned by this chunk task")

// Task holds exclusive ownership of one or more chunks and serializes all
// edits to them through its inbound action channel. Modifications within
// one chunk are totally ordered by this queue; a task never shares a chunk
// with another task.
type Task struct {
	actions        ActionChan
	chunks         map[ChunkCoord]*Chunk
	frameImportant []bool
	done           chan struct{}
}

// newTask starts a task owning the given initial chunk and returns its
// action channel. The task runs until it receives ForceClose.
func newTask(initial *Chunk, frameImportant []bool) *Task {
	t := &Task{
		actions:        make(ActionChan, 100),
		chunks:         map[ChunkCoord]*Chunk{initial.Coord: initial},
		frameImportant: frameImportant,
		done:           make(chan struct{}),
	}
	go t.run()
	return t
}

func (t *Task) run() {
	defer close(t.done)
	for action := range t.actions {
		switch a := action.(type) {
		case AssignChunk:
			t.chunks[a.Chunk.Coord] = a.Chunk

		case RequestSections:
			for _, c := range t.chunks {
				a.Reply <- SectionPayload{Coord: c.Coord, Data: c.encoded}
			}

		case ModifyBlock:
			t.applyModify(a)

		case ForceClose:
			return

		default:
			panic(fmt.Sprintf("chunkmgr: unhandled action %T", action))
		}
	}
}

func (t *Task) applyModify(a ModifyBlock) {
	coord := ChunkCoordForTile(int32(a.Edit.Tile.X), int32(a.Edit.Tile.Y))
	c, ok := t.chunks[coord]
	if !ok {
		if a.Err != nil {
			a.Err <- fmt.Errorf("%w: tile (%d,%d)", ErrTileNotOwned, a.Edit.Tile.X, a.Edit.Tile.Y)
		}
		return
	}

	origin := coord.Origin()
	localX := int32(a.Edit.Tile.X) - int32(origin.X)
	localY := int32(a.Edit.Tile.Y) - int32(origin.Y)
	if !c.Tiles.InBounds(localX, localY) {
		if a.Err != nil {
			a.Err <- fmt.Errorf("%w: tile (%d,%d)", ErrTileNotOwned, a.Edit.Tile.X, a.Edit.Tile.Y)
		}
		return
	}

	c.Tiles.Set(localX, localY, a.Edit.New)
	c.refreshEncoded(t.frameImportant)
	if a.Result != nil {
		a.Result <- a.Edit
	}
}
