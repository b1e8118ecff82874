package world

// LiquidKind identifies which liquid (if any) fills a tile.
type LiquidKind uint8

const (
	LiquidNone LiquidKind = iota
	LiquidWater
	LiquidLava
	LiquidHoney
)

// Block is a tile's foreground content.
type Block struct {
	ID          uint16
	Color       uint8
	HasColor    bool
	FrameWidth  uint16
	FrameHeight uint16
	HasFrame    bool
	Slope       uint8
	IsInactive  bool
}

// Wall is a tile's background content.
type Wall struct {
	ID       uint16
	Color    uint8
	HasColor bool
}

// Liquid is a tile's liquid fill.
type Liquid struct {
	Kind   LiquidKind
	Amount uint8
}

// Tile is one cell of the world's tile grid.
type Tile struct {
	Block  *Block
	Wall   *Wall
	Liquid *Liquid

	WireRed, WireBlue, WireGreen, WireYellow bool
	HasActuator                              bool
}

// HasLiquid reports whether the tile carries a liquid. Liquid is nil iff
// the liquid id is 0.
func (t Tile) HasLiquid() bool { return t.Liquid != nil && t.Liquid.Kind != LiquidNone }

// TileGrid is a TileWidth x TileHeight column-major grid of tiles.
type TileGrid struct {
	Width, Height int32
	tiles         []Tile
}

// NewTileGrid allocates a grid of the given dimensions, all tiles zeroed
// (no block, wall, or liquid).
func NewTileGrid(width, height int32) *TileGrid {
	return &TileGrid{Width: width, Height: height, tiles: make([]Tile, int64(width)*int64(height))}
}

func (g *TileGrid) index(x, y int32) int64 {
	return int64(x)*int64(g.Height) + int64(y)
}

// At returns the tile at (x, y). Callers must keep x, y within bounds.
func (g *TileGrid) At(x, y int32) Tile {
	return g.tiles[g.index(x, y)]
}

// Set stores the tile at (x, y).
func (g *TileGrid) Set(x, y int32, t Tile) {
	g.tiles[g.index(x, y)] = t
}

// InBounds reports whether (x, y) lies within the grid.
func (g *TileGrid) InBounds(x, y int32) bool {
	return x >= 0 && x < g.Width && y >= 0 && y < g.Height
}

// Chest is a placed storage container with a fixed-capacity inventory.
type Chest struct {
	X, Y  int32
	Name  string
	Items [ChestSlotCount]ChestItem
}

// ChestSlotCount is the fixed number of item slots a chest carries.
const ChestSlotCount = 40

// ChestItem is one item stack stored in a chest slot.
type ChestItem struct {
	Stack  int16
	ID     int32
	Prefix uint8
}

// Sign is a placed sign with a UTF-8 text body.
type Sign struct {
	X, Y int32
	Text string
}
