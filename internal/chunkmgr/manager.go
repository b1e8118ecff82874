package chunkmgr

import (
	"sync"

	"github.com/duskvault/terrasrv/internal/world"
)

// loadedChunk records, for one chunk coordinate, the task that currently
// owns it. A chunk is materialized from the world grid at most once: the
// first caller to reference it spawns the owning task, and every
// subsequent caller is handed the same action channel.
type loadedChunk struct {
	once   sync.Once
	task   *Task
	sender ChunkActionSender
}

// Manager owns the world's chunk table: the mapping from chunk coordinate
// to the task currently holding exclusive ownership of that chunk's tiles.
type Manager struct {
	mu             sync.Mutex
	world          *world.World
	frameImportant []bool
	loaded         map[ChunkCoord]*loadedChunk
}

// NewManager returns a Manager backed by w. w is read to materialize
// chunks on first reference; the manager does not take ownership of w's
// tile grid outside of the chunk-extraction snapshot it takes per chunk.
func NewManager(w *world.World) *Manager {
	var frameImportant []bool
	if w.Tiles != nil {
		frameImportant = world.DeriveFrameImportant(w.Tiles)
	}
	return &Manager{
		world:          w,
		frameImportant: frameImportant,
		loaded:         make(map[ChunkCoord]*loadedChunk),
	}
}

// AcquireChunk returns the action channel for the chunk task owning coord,
// spawning that task on first reference. Subsequent callers for the same
// coord are handed the same channel.
func (m *Manager) AcquireChunk(coord ChunkCoord) ChunkActionSender {
	entry := m.entryFor(coord)
	entry.once.Do(func() {
		chunk := extractChunk(m.world, coord, m.frameImportant)
		entry.task = newTask(chunk, m.frameImportant)
		entry.sender = entry.task.actions
	})
	return entry.sender
}

func (m *Manager) entryFor(coord ChunkCoord) *loadedChunk {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.loaded[coord]
	if !ok {
		entry = &loadedChunk{}
		m.loaded[coord] = entry
	}
	return entry
}

// ResolveSpawnChunk returns the action channel for the chunk containing
// tile coordinate (tx, ty), acquiring it if necessary. This is the
// operation the world manager performs to answer a client's SpawnClient
// request.
func (m *Manager) ResolveSpawnChunk(tx, ty int32) ChunkActionSender {
	return m.AcquireChunk(ChunkCoordForTile(tx, ty))
}

// taskFor returns the task currently owning coord, or nil if none has been
// spawned yet. It does not spawn one.
func (m *Manager) taskFor(coord ChunkCoord) *Task {
	m.mu.Lock()
	entry, ok := m.loaded[coord]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return entry.task
}
