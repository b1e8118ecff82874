package worldfile

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/duskvault/terrasrv/internal/world"
)

func sampleWorld() *world.World {
	w := &world.World{
		Name:       "persisted world",
		SeedText:   "9988776655",
		ID:         42,
		Left:       -4200,
		Right:      4200,
		Top:        0,
		Bottom:     1200,
		TileWidth:  2,
		TileHeight: 2,
		Mode:       world.ModeJourney,
		IsDay:      true,
		Time:       13500,
	}
	w.OreTiers.Copper, _ = world.NewOreTier(7, 7, 166)
	w.OreTiers.Iron, _ = world.NewOreTier(167, 6, 167)
	w.OreTiers.Silver, _ = world.NewOreTier(9, 9, 168)
	w.OreTiers.Gold, _ = world.NewOreTier(169, 8, 169)
	w.OreTiers.Cobalt, _ = world.NewOreTier(107, 107, 221)
	w.OreTiers.Mythril, _ = world.NewOreTier(222, 108, 222)
	w.OreTiers.Adamantite, _ = world.NewOreTier(111, 111, 223)

	grid := world.NewTileGrid(2, 2)
	grid.Set(0, 0, world.Tile{Block: &world.Block{ID: 1}})
	grid.Set(0, 1, world.Tile{Block: &world.Block{ID: 1}, Liquid: &world.Liquid{Kind: world.LiquidWater, Amount: 200}})
	grid.Set(1, 0, world.Tile{Wall: &world.Wall{ID: 63}})
	grid.Set(1, 1, world.Tile{})
	w.Tiles = grid

	w.Chests = []world.Chest{{X: 10, Y: 20, Name: "storage"}}
	w.Chests[0].Items[0] = world.ChestItem{Stack: 99, ID: 71, Prefix: 0}
	w.Signs = []world.Sign{{X: 5, Y: 6, Text: "hello"}}
	w.TrailingSectionData = []byte{0xDE, 0xAD, 0xBE, 0xEF}

	return w
}

func TestWriteReadRoundTrip(t *testing.T) {
	w := sampleWorld()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, w))

	got, err := Read(&buf)
	require.NoError(t, err)

	if got.Name != w.Name || got.SeedText != w.SeedText || got.ID != w.ID {
		t.Fatalf("identity fields mismatch: got %+v", got)
	}
	if got.TileWidth != 2 || got.TileHeight != 2 {
		t.Fatalf("tile dims mismatch: %dx%d", got.TileWidth, got.TileHeight)
	}
	if got.Tiles.At(0, 1).Liquid == nil || got.Tiles.At(0, 1).Liquid.Kind != world.LiquidWater {
		t.Fatalf("expected water liquid preserved at (0,1): %+v", got.Tiles.At(0, 1))
	}
	if got.Tiles.At(1, 0).Wall == nil || got.Tiles.At(1, 0).Wall.ID != 63 {
		t.Fatalf("expected wall 63 preserved at (1,0): %+v", got.Tiles.At(1, 0))
	}
	if len(got.Chests) != 1 || got.Chests[0].Name != "storage" || got.Chests[0].Items[0].ID != 71 {
		t.Fatalf("chest mismatch: %+v", got.Chests)
	}
	if len(got.Signs) != 1 || got.Signs[0].Text != "hello" {
		t.Fatalf("sign mismatch: %+v", got.Signs)
	}
	if !bytes.Equal(got.TrailingSectionData, w.TrailingSectionData) {
		t.Fatalf("trailing data mismatch: got %x want %x", got.TrailingSectionData, w.TrailingSectionData)
	}
	if got.OreTiers.Iron.ItemID() != 167 {
		t.Fatalf("iron tier mismatch: got %d", got.OreTiers.Iron.ItemID())
	}
}

func TestReadRejectsBadMagic(t *testing.T) {
	buf := bytes.NewBuffer([]byte{0, 0, 0, 0, 0, 1, 0})
	_, err := Read(buf)
	if err == nil {
		t.Fatal("expected error for bad magic number")
	}
}

func TestReadRejectsFutureVersion(t *testing.T) {
	w := sampleWorld()
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, w))
	data := buf.Bytes()
	// Version is the int16 immediately after the 4-byte magic, big-endian.
	data[5] = byte(CurrentVersion + 1)
	_, err := Read(bytes.NewReader(data))
	if err == nil {
		t.Fatal("expected error for unsupported future version")
	}
}
