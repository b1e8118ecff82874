// Package chunkmgr implements the chunk ownership table and per-chunk
// worker task described for the tile-edit subsystem: chunk coordinates are
// derived from tile coordinates, a chunk's tiles belong to at most one
// running task at a time, and edits within a chunk are serialized by that
// task's inbound action queue.
package chunkmgr

import (
	"github.com/duskvault/terrasrv/internal/binutil"
	"github.com/duskvault/terrasrv/internal/world"
)

// ChunkSize is the tile-grid edge length of one chunk. Chosen to match the
// "essential tiles" radius vanilla clients request around a spawning player.
const ChunkSize = 200

// ChunkCoord identifies a chunk by its chunk-grid coordinates, not tile
// coordinates.
type ChunkCoord struct {
	X, Y int32
}

// ChunkCoordForTile derives the chunk coordinate owning tile (tx, ty).
func ChunkCoordForTile(tx, ty int32) ChunkCoord {
	return ChunkCoord{X: floorDiv(tx, ChunkSize), Y: floorDiv(ty, ChunkSize)}
}

func floorDiv(a, b int32) int32 {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// Origin returns the tile coordinate of this chunk's top-left tile.
func (c ChunkCoord) Origin() world.TileCoord {
	return world.TileCoord{X: uint16(c.X * ChunkSize), Y: uint16(c.Y * ChunkSize)}
}

// Chunk is a loaded chunk_size x chunk_size tile region plus the chests and
// signs whose coordinates fall within it.
type Chunk struct {
	Coord  ChunkCoord
	Tiles  *world.TileGrid
	Chests []world.Chest
	Signs  []world.Sign

	encoded []byte // cached RequestSections payload, rebuilt on edit
}

// extractChunk materializes the chunk at coord from the world's tile grid,
// clamping at the world edge for the last row/column of chunks.
func extractChunk(w *world.World, coord ChunkCoord, frameImportant []bool) *Chunk {
	originX, originY := coord.X*ChunkSize, coord.Y*ChunkSize
	width := clampExtent(originX, w.TileWidth)
	height := clampExtent(originY, w.TileHeight)

	grid := world.NewTileGrid(width, height)
	if w.Tiles != nil {
		for x := int32(0); x < width; x++ {
			for y := int32(0); y < height; y++ {
				wx, wy := originX+x, originY+y
				if w.Tiles.InBounds(wx, wy) {
					grid.Set(x, y, w.Tiles.At(wx, wy))
				}
			}
		}
	}

	c := &Chunk{Coord: coord, Tiles: grid}
	for _, chest := range w.Chests {
		if chest.X >= originX && chest.X < originX+width && chest.Y >= originY && chest.Y < originY+height {
			c.Chests = append(c.Chests, chest)
		}
	}
	for _, sign := range w.Signs {
		if sign.X >= originX && sign.X < originX+width && sign.Y >= originY && sign.Y < originY+height {
			c.Signs = append(c.Signs, sign)
		}
	}
	c.refreshEncoded(frameImportant)
	return c
}

func clampExtent(origin, worldExtent int32) int32 {
	remaining := worldExtent - origin
	if remaining <= 0 {
		return 0
	}
	if remaining < ChunkSize {
		return remaining
	}
	return ChunkSize
}

// refreshEncoded rebuilds the cached RequestSections wire payload for this
// chunk's current tile contents.
func (c *Chunk) refreshEncoded(frameImportant []bool) {
	w := binutil.NewWriter()
	w.I32(int32(c.Coord.X))
	w.I32(int32(c.Coord.Y))
	w.I32(c.Tiles.Width)
	w.I32(c.Tiles.Height)
	world.EncodeTileGrid(w, c.Tiles, frameImportant)
	c.encoded = w.Bytes()
}
