package world

import (
	"sync/atomic"

	"github.com/duskvault/terrasrv/internal/binutil"
)

// dayAndMoonInfo packs the blood-moon/eclipse/day-night byte sent in the
// world-info packet: 2 if a blood moon is active, else 4 if an eclipse is
// active, else 1 if it's day, else 0.
func dayAndMoonInfo(bloodMoon, eclipse, isDay bool) uint8 {
	switch {
	case bloodMoon:
		return 2
	case eclipse:
		return 4
	case isDay:
		return 1
	default:
		return 0
	}
}

// worldInfoGeneratorVersion is the fixed placeholder written into every
// world-info packet. Vanilla clients accept it regardless of the header's
// real generator version.
const worldInfoGeneratorVersion uint64 = 1

// worldInfoLobbyID is a fixed placeholder; no lobby/cross-play identity is
// modeled by this server.
const worldInfoLobbyID uint64 = 0

// encodeWorldInfo serializes w into the wire payload a WorldInfo packet
// carries, in the fixed field order the protocol expects.
func encodeWorldInfo(w *World) []byte {
	buf := binutil.NewWriter()

	buf.I32(int32(w.Time))
	buf.U8(dayAndMoonInfo(w.Events.BloodMoon, w.Events.Eclipse, w.IsDay))
	buf.U8(uint8(w.MoonPhase))
	buf.I16(int16(w.TileWidth))
	buf.I16(int16(w.TileHeight))
	buf.I16(int16(w.SpawnTile.X))
	buf.I16(int16(w.SpawnTile.Y))
	buf.I16(int16(w.SurfaceY))
	buf.I16(int16(w.RockLayerY))
	buf.I32(w.ID)
	buf.VarString(w.Name)
	buf.U8(uint8(w.Mode))
	buf.U128([16]byte(w.UUID))
	buf.U64(worldInfoGeneratorVersion)
	buf.U8(w.Style.MoonStyle)

	for i := 0; i < 10; i++ {
		buf.U8(w.Style.BiomeBackgrounds[i])
	}
	for i := 0; i < 3; i++ {
		buf.U8(w.Style.ForestBGTrailing[i])
	}
	buf.U8(uint8(w.Style.SnowBGStyle))
	buf.U8(uint8(w.Style.JungleBGStyle))
	buf.U8(uint8(w.Style.UnderworldBGStyle))

	buf.F32(w.Weather.WindSpeed)
	buf.U8(uint8(w.Weather.NumClouds))

	for i := 0; i < 3; i++ {
		buf.I32(w.Style.ForestBGCutpoints[i])
	}
	for i := 0; i < 4; i++ {
		buf.U8(uint8(w.Style.ForestBGStyles[i]))
	}
	for i := 0; i < 3; i++ {
		buf.I32(w.Style.CaveBGCutpoints[i])
	}
	for i := 0; i < 4; i++ {
		buf.U8(uint8(w.Style.CaveBGStyles[i]))
	}

	treeTops := w.Style.TreeTopStyles
	for i := 0; i < 13; i++ {
		var v uint8
		if i < len(treeTops) {
			v = uint8(treeTops[i])
		}
		buf.U8(v)
	}

	buf.F32(w.Weather.RainAmount)

	for i := 0; i < 7; i++ {
		buf.U8(0)
	}

	oreTiers := [7]OreTier{
		w.OreTiers.Copper, w.OreTiers.Iron, w.OreTiers.Silver, w.OreTiers.Gold,
		w.OreTiers.Cobalt, w.OreTiers.Mythril, w.OreTiers.Adamantite,
	}
	for _, tier := range oreTiers {
		buf.I16(int16(tier.ItemID()))
	}

	buf.I8(int8(w.Events.Invasion.Type))
	buf.U64(worldInfoLobbyID)
	buf.F32(w.Events.Sandstorm.Severity)

	return buf.Bytes()
}

// InfoCache holds the serialized WorldInfo payload for a loaded world,
// refreshed on every mutation that affects it and read lock-free by every
// client writer task via an atomic pointer swap.
type InfoCache struct {
	payload atomic.Pointer[[]byte]
}

// NewInfoCache builds a cache already populated from w's current state.
func NewInfoCache(w *World) *InfoCache {
	c := &InfoCache{}
	c.Refresh(w)
	return c
}

// Refresh re-encodes the full WorldInfo payload from w and swaps it in.
// There is no incremental patch path: every refresh re-runs the entire
// serialization routine.
func (c *InfoCache) Refresh(w *World) {
	encoded := encodeWorldInfo(w)
	c.payload.Store(&encoded)
}

// Payload returns the most recently refreshed WorldInfo payload.
func (c *InfoCache) Payload() []byte {
	p := c.payload.Load()
	if p == nil {
		return nil
	}
	return *p
}
