package world

import (
	"fmt"

	"github.com/duskvault/terrasrv/internal/binutil"
)

// Tile grid flags1 bit masks.
const (
	flag1HasFlags2   = 0x01
	flag1HasBlock    = 0x02
	flag1HasWall     = 0x04
	flag1LiquidMask  = 0x18
	flag1LiquidShift = 3
	flag1BlockIDWide = 0x20
	flag1RunLength8  = 0x40
	flag1RunLength16 = 0x80
)

// Tile grid flags2 bit masks.
const (
	flag2HasFlags3  = 0x01
	flag2WireRed    = 0x02
	flag2WireBlue   = 0x04
	flag2WireGreen  = 0x08
	flag2SlopeShift = 4
	flag2SlopeMask  = 0x7
)

// Tile grid flags3 bit masks.
const (
	flag3Actuator      = 0x02
	flag3BlockInactive = 0x04
	flag3BlockColored  = 0x08
	flag3WallColored   = 0x10
	flag3WireYellow    = 0x20
	flag3WallIDWide    = 0x40
)

// DecodeTileGrid decodes a column-major, run-length compressed tile grid of
// the given dimensions. frameImportant is indexed by block id and reports
// whether tiles of that id carry explicit frame-width/height fields.
func DecodeTileGrid(r *binutil.Reader, width, height int32, frameImportant []bool) (*TileGrid, error) {
	grid := NewTileGrid(width, height)

	for x := int32(0); x < width; x++ {
		for y := int32(0); y < height; {
			tile, runLength, err := decodeTile(r, frameImportant)
			if err != nil {
				return nil, fmt.Errorf("decode tile column %d row %d: %w", x, y, err)
			}
			if int64(y)+int64(runLength)+1 > int64(height) {
				return nil, fmt.Errorf("%w: run length %d overruns column at row %d", ErrInvalidField, runLength, y)
			}
			for i := int32(0); i <= runLength; i++ {
				grid.Set(x, y+i, tile)
			}
			y += runLength + 1
		}
	}
	return grid, nil
}

func decodeTile(r *binutil.Reader, frameImportant []bool) (Tile, int32, error) {
	var tile Tile

	flags1, err := r.U8()
	if err != nil {
		return tile, 0, fmt.Errorf("read flags1: %w", err)
	}

	var flags2, flags3 uint8
	if flags1&flag1HasFlags2 != 0 {
		flags2, err = r.U8()
		if err != nil {
			return tile, 0, fmt.Errorf("read flags2: %w", err)
		}
		tile.WireRed = flags2&flag2WireRed != 0
		tile.WireBlue = flags2&flag2WireBlue != 0
		tile.WireGreen = flags2&flag2WireGreen != 0
		if flags2&flag2HasFlags3 != 0 {
			flags3, err = r.U8()
			if err != nil {
				return tile, 0, fmt.Errorf("read flags3: %w", err)
			}
			tile.HasActuator = flags3&flag3Actuator != 0
			tile.WireYellow = flags3&flag3WireYellow != 0
		}
	}

	if flags1&flag1HasBlock != 0 {
		block := &Block{}
		var id uint16
		if flags1&flag1BlockIDWide != 0 {
			wide, err := r.U16()
			if err != nil {
				return tile, 0, fmt.Errorf("read wide block id: %w", err)
			}
			id = wide
		} else {
			narrow, err := r.U8()
			if err != nil {
				return tile, 0, fmt.Errorf("read narrow block id: %w", err)
			}
			id = uint16(narrow)
		}
		block.ID = id
		block.Slope = (flags2 >> flag2SlopeShift) & flag2SlopeMask
		block.IsInactive = flags3&flag3BlockInactive != 0

		if int(id) < len(frameImportant) && frameImportant[id] {
			block.HasFrame = true
			if block.FrameWidth, err = r.U16(); err != nil {
				return tile, 0, fmt.Errorf("read frame width: %w", err)
			}
			if block.FrameHeight, err = r.U16(); err != nil {
				return tile, 0, fmt.Errorf("read frame height: %w", err)
			}
		}
		if flags3&flag3BlockColored != 0 {
			block.HasColor = true
			if block.Color, err = r.U8(); err != nil {
				return tile, 0, fmt.Errorf("read block color: %w", err)
			}
		}
		tile.Block = block
	}

	var wallIDLow uint8
	wallPresent := flags1&flag1HasWall != 0
	if wallPresent {
		wall := &Wall{}
		if wallIDLow, err = r.U8(); err != nil {
			return tile, 0, fmt.Errorf("read wall id: %w", err)
		}
		if flags3&flag3WallColored != 0 {
			wall.HasColor = true
			if wall.Color, err = r.U8(); err != nil {
				return tile, 0, fmt.Errorf("read wall color: %w", err)
			}
		}
		tile.Wall = wall
	}

	liquidID := (flags1 & flag1LiquidMask) >> flag1LiquidShift
	if liquidID != 0 {
		if liquidID > 3 {
			return tile, 0, fmt.Errorf("%w: liquid id %d out of range", ErrInvalidField, liquidID)
		}
		amount, err := r.U8()
		if err != nil {
			return tile, 0, fmt.Errorf("read liquid amount: %w", err)
		}
		tile.Liquid = &Liquid{Kind: LiquidKind(liquidID), Amount: amount}
	}

	if wallPresent && flags3&flag3WallIDWide != 0 {
		high, err := r.U8()
		if err != nil {
			return tile, 0, fmt.Errorf("read wall id high byte: %w", err)
		}
		tile.Wall.ID = uint16(wallIDLow) | uint16(high)<<8
	} else if wallPresent {
		tile.Wall.ID = uint16(wallIDLow)
	}

	var runLength int32
	switch {
	case flags1&flag1RunLength16 != 0:
		v, err := r.U16()
		if err != nil {
			return tile, 0, fmt.Errorf("read u16 run length: %w", err)
		}
		runLength = int32(v)
	case flags1&flag1RunLength8 != 0:
		v, err := r.U8()
		if err != nil {
			return tile, 0, fmt.Errorf("read u8 run length: %w", err)
		}
		runLength = int32(v)
	default:
		runLength = 0
	}

	return tile, runLength, nil
}

// EncodeTileGrid encodes grid column-major with run-length compression,
// coalescing each column's consecutive identical tiles into the longest
// run representable by the available width.
func EncodeTileGrid(w *binutil.Writer, grid *TileGrid, frameImportant []bool) {
	for x := int32(0); x < grid.Width; x++ {
		y := int32(0)
		for y < grid.Height {
			tile := grid.At(x, y)
			run := int32(0)
			for y+run+1 < grid.Height && tilesEqual(grid.At(x, y+run+1), tile) && run+1 < 0xFFFF {
				run++
			}
			encodeTile(w, tile, run, frameImportant)
			y += run + 1
		}
	}
}

// DeriveFrameImportant scans grid and reports, per block id, whether any
// tile of that id carries frame-width/frame-height data. Used by consumers
// that need a frameImportant vector but have no separately-stored header
// table to read it from (the internal format, and per-chunk re-encoding).
func DeriveFrameImportant(grid *TileGrid) []bool {
	maxID := uint16(0)
	for x := int32(0); x < grid.Width; x++ {
		for y := int32(0); y < grid.Height; y++ {
			if b := grid.At(x, y).Block; b != nil && b.ID > maxID {
				maxID = b.ID
			}
		}
	}
	frameImportant := make([]bool, int(maxID)+1)
	for x := int32(0); x < grid.Width; x++ {
		for y := int32(0); y < grid.Height; y++ {
			if b := grid.At(x, y).Block; b != nil && b.HasFrame {
				frameImportant[b.ID] = true
			}
		}
	}
	return frameImportant
}

func tilesEqual(a, b Tile) bool {
	if (a.Block == nil) != (b.Block == nil) || (a.Wall == nil) != (b.Wall == nil) || (a.Liquid == nil) != (b.Liquid == nil) {
		return false
	}
	if a.Block != nil && *a.Block != *b.Block {
		return false
	}
	if a.Wall != nil && *a.Wall != *b.Wall {
		return false
	}
	if a.Liquid != nil && *a.Liquid != *b.Liquid {
		return false
	}
	return a.WireRed == b.WireRed && a.WireBlue == b.WireBlue &&
		a.WireGreen == b.WireGreen && a.WireYellow == b.WireYellow &&
		a.HasActuator == b.HasActuator
}

func encodeTile(w *binutil.Writer, tile Tile, run int32, frameImportant []bool) {
	var flags1, flags2, flags3 uint8

	if tile.Block != nil {
		flags1 |= flag1HasBlock
		if tile.Block.ID > 0xFF {
			flags1 |= flag1BlockIDWide
		}
	}
	if tile.Wall != nil {
		flags1 |= flag1HasWall
	}
	if tile.HasLiquid() {
		flags1 |= uint8(tile.Liquid.Kind) << flag1LiquidShift
	}

	needsFlags2 := tile.WireRed || tile.WireBlue || tile.WireGreen ||
		(tile.Block != nil && tile.Block.Slope != 0)
	needsFlags3 := tile.HasActuator || tile.WireYellow ||
		(tile.Block != nil && (tile.Block.IsInactive || tile.Block.HasColor)) ||
		(tile.Wall != nil && (tile.Wall.HasColor || tile.Wall.ID > 0xFF))

	if needsFlags3 {
		needsFlags2 = true
	}
	if needsFlags2 {
		flags1 |= flag1HasFlags2
		if tile.WireRed {
			flags2 |= flag2WireRed
		}
		if tile.WireBlue {
			flags2 |= flag2WireBlue
		}
		if tile.WireGreen {
			flags2 |= flag2WireGreen
		}
		if tile.Block != nil {
			flags2 |= (tile.Block.Slope & flag2SlopeMask) << flag2SlopeShift
		}
		if needsFlags3 {
			flags2 |= flag2HasFlags3
			if tile.HasActuator {
				flags3 |= flag3Actuator
			}
			if tile.WireYellow {
				flags3 |= flag3WireYellow
			}
			if tile.Block != nil {
				if tile.Block.IsInactive {
					flags3 |= flag3BlockInactive
				}
				if tile.Block.HasColor {
					flags3 |= flag3BlockColored
				}
			}
			if tile.Wall != nil {
				if tile.Wall.HasColor {
					flags3 |= flag3WallColored
				}
				if tile.Wall.ID > 0xFF {
					flags3 |= flag3WallIDWide
				}
			}
		}
	}

	switch {
	case run+1 > 0xFF:
		flags1 |= flag1RunLength16
	case run > 0:
		flags1 |= flag1RunLength8
	}

	w.U8(flags1)
	if flags1&flag1HasFlags2 != 0 {
		w.U8(flags2)
		if flags2&flag2HasFlags3 != 0 {
			w.U8(flags3)
		}
	}

	if tile.Block != nil {
		if tile.Block.ID > 0xFF {
			w.U16(tile.Block.ID)
		} else {
			w.U8(uint8(tile.Block.ID))
		}
		if int(tile.Block.ID) < len(frameImportant) && frameImportant[tile.Block.ID] {
			w.U16(tile.Block.FrameWidth)
			w.U16(tile.Block.FrameHeight)
		}
		if tile.Block.HasColor {
			w.U8(tile.Block.Color)
		}
	}

	if tile.Wall != nil {
		w.U8(uint8(tile.Wall.ID))
		if tile.Wall.HasColor {
			w.U8(tile.Wall.Color)
		}
	}

	if tile.HasLiquid() {
		w.U8(tile.Liquid.Amount)
	}

	if tile.Wall != nil && tile.Wall.ID > 0xFF {
		w.U8(uint8(tile.Wall.ID >> 8))
	}

	switch {
	case flags1&flag1RunLength16 != 0:
		w.U16(uint16(run))
	case flags1&flag1RunLength8 != 0:
		w.U8(uint8(run))
	}
}
