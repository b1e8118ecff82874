package worldfile

import "github.com/duskvault/terrasrv/internal/world"

// deriveFrameImportant scans grid and reports, per block id, whether any
// tile of that id carries frame-width/frame-height data. The internal
// format has no separately-maintained frame-important table like the
// vanilla file's header, so it is rebuilt from the grid's own contents on
// every encode.
func deriveFrameImportant(grid *world.TileGrid) []bool {
	return world.DeriveFrameImportant(grid)
}
