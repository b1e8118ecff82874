package worldfile

import (
	"github.com/duskvault/terrasrv/internal/binutil"
	"github.com/duskvault/terrasrv/internal/world"
)

// EncodeWorld serializes w into buf using the internal format's compact
// structured encoding. It is the inverse of DecodeWorld.
func EncodeWorld(buf *binutil.Writer, w *world.World) {
	buf.VarString(w.Name)
	buf.VarString(w.SeedText)
	buf.U64(w.GeneratorVersion)
	buf.U128([16]byte(w.UUID))
	buf.I32(w.ID)
	buf.I32(w.Left)
	buf.I32(w.Right)
	buf.I32(w.Top)
	buf.I32(w.Bottom)
	buf.I32(w.TileWidth)
	buf.I32(w.TileHeight)
	buf.I32(int32(w.Mode))

	buf.I32(int32(w.CorruptionVariant))
	buf.F64(w.SurfaceY)
	buf.F64(w.RockLayerY)
	encodeOreTiers(buf, w.OreTiers)

	encodeProgress(buf, w.Progress)
	buf.U8(w.ShadowOrbsBroken)
	buf.I32(w.AltarsBroken)
	buf.VarUint(uint64(len(w.EntityKillCounts)))
	for _, v := range w.EntityKillCounts {
		buf.I32(v)
	}

	buf.Bool(w.IsDay)
	buf.F64(w.Time)
	buf.I32(w.MoonPhase)
	buf.Bool(w.FastForwarding)
	buf.U8(w.SundialCooldown)
	buf.Bool(w.IsHardmode)

	encodeWeather(buf, w.Weather)
	encodeEvents(buf, w.Events)
	encodeAngler(buf, w.Angler)
	encodeStyle(buf, w.Style)

	coord := func(c world.TileCoord) {
		buf.U16(c.X)
		buf.U16(c.Y)
	}
	coord(w.SpawnTile)
	coord(w.DungeonTile)

	encodeTiles(buf, w.Tiles)
	encodeChests(buf, w.Chests)
	encodeSigns(buf, w.Signs)

	buf.VarUint(uint64(len(w.TrailingSectionData)))
	buf.Raw(w.TrailingSectionData)
}

func encodeOreTiers(buf *binutil.Writer, t world.OreTiers) {
	for _, tier := range []world.OreTier{t.Copper, t.Iron, t.Silver, t.Gold, t.Cobalt, t.Mythril, t.Adamantite} {
		buf.I32(tier.ItemID())
	}
}

func encodeProgress(buf *binutil.Writer, p world.ProgressFlags) {
	for _, v := range p.BossDefeats1 {
		buf.Bool(v)
	}
	buf.Bool(p.AnyOrbBrokenLegacy)
	buf.Bool(p.SavedAngler)
	buf.Bool(p.SavedStylist)
	buf.Bool(p.SavedTaxCollector)
	buf.Bool(p.SavedGolfer)
	for _, v := range p.BossDefeats2 {
		buf.Bool(v)
	}
	for _, v := range p.PillarsAndDoom {
		buf.Bool(v)
	}
	buf.Bool(p.SavedBartender)
	for _, v := range p.OldOnesArmyTiers {
		buf.Bool(v)
	}
	for _, v := range p.TownPets {
		buf.Bool(v)
	}
	buf.Bool(p.CombatBookUsed)
	buf.Bool(p.ForcedHalloween)
	buf.Bool(p.ForcedChristmas)
	buf.Bool(p.DefeatedEmpressOfLight)
	buf.Bool(p.DefeatedQueenSlime)
}

func encodeWeather(buf *binutil.Writer, w world.Weather) {
	buf.F32(w.WindSpeed)
	buf.I32(w.CloudBGID)
	buf.I16(w.NumClouds)
	buf.Bool(w.Raining)
	buf.I32(w.RainTime)
	buf.F32(w.RainAmount)
}

func encodeEvents(buf *binutil.Writer, e world.Events) {
	buf.Bool(e.BloodMoon)
	buf.Bool(e.Eclipse)
	buf.Bool(e.MeteorQueued)
	buf.Bool(e.PillarSolar)
	buf.Bool(e.PillarVortex)
	buf.Bool(e.PillarNebula)
	buf.Bool(e.PillarStardust)
	buf.Bool(e.PillarsPresent)
	buf.I32(e.CultistRemaining)
	buf.F64(e.SlimeRainRemaining)

	buf.I32(e.Invasion.Delay)
	buf.I32(e.Invasion.Size)
	buf.I32(e.Invasion.StartSize)
	buf.I32(e.Invasion.Type)
	buf.F64(e.Invasion.X)

	buf.Bool(e.Party.Manual)
	buf.Bool(e.Party.Genuine)
	buf.I32(e.Party.CooldownTicks)
	buf.VarUint(uint64(len(e.Party.PartyingNPCs)))
	for _, v := range e.Party.PartyingNPCs {
		buf.I32(v)
	}

	buf.Bool(e.Sandstorm.Active)
	buf.I32(e.Sandstorm.Remaining)
	buf.F32(e.Sandstorm.Severity)
	buf.F32(e.Sandstorm.IntendedSeverity)

	buf.I32(e.LanternNight.CooldownTicks)
	buf.Bool(e.LanternNight.Genuine)
	buf.Bool(e.LanternNight.Manual)
	buf.Bool(e.LanternNight.Queued)
}

func encodeAngler(buf *binutil.Writer, a world.Angler) {
	buf.VarUint(uint64(len(a.CompletedQuests)))
	for _, q := range a.CompletedQuests {
		buf.VarString(q)
	}
	buf.I32(a.CurrentQuestID)
}

func encodeStyle(buf *binutil.Writer, s world.Style) {
	buf.U8(s.MoonStyle)
	for _, v := range s.ForestBGCutpoints {
		buf.I32(v)
	}
	for _, v := range s.ForestBGStyles {
		buf.I32(v)
	}
	for _, v := range s.CaveBGCutpoints {
		buf.I32(v)
	}
	for _, v := range s.CaveBGStyles {
		buf.I32(v)
	}
	buf.I32(s.SnowBGStyle)
	buf.I32(s.JungleBGStyle)
	buf.I32(s.UnderworldBGStyle)
	for _, v := range s.BiomeBackgrounds {
		buf.U8(v)
	}
	for _, v := range s.ForestBGTrailing {
		buf.U8(v)
	}
	buf.VarUint(uint64(len(s.TreeTopStyles)))
	for _, v := range s.TreeTopStyles {
		buf.I32(v)
	}
}

func encodeTiles(buf *binutil.Writer, grid *world.TileGrid) {
	if grid == nil {
		buf.I32(0)
		buf.I32(0)
		return
	}
	buf.I32(grid.Width)
	buf.I32(grid.Height)

	frameImportant := deriveFrameImportant(grid)
	buf.VarUint(uint64(len(frameImportant)))
	for i := 0; i < len(frameImportant); i += 8 {
		var b uint8
		for bit := 0; bit < 8 && i+bit < len(frameImportant); bit++ {
			if frameImportant[i+bit] {
				b |= 1 << uint(bit)
			}
		}
		buf.U8(b)
	}

	world.EncodeTileGrid(buf, grid, frameImportant)
}

func encodeChests(buf *binutil.Writer, chests []world.Chest) {
	buf.VarUint(uint64(len(chests)))
	for _, c := range chests {
		buf.I32(c.X)
		buf.I32(c.Y)
		buf.VarString(c.Name)
		for _, item := range c.Items {
			buf.I16(item.Stack)
			if item.Stack == 0 {
				continue
			}
			buf.I32(item.ID)
			buf.U8(item.Prefix)
		}
	}
}

func encodeSigns(buf *binutil.Writer, signs []world.Sign) {
	buf.VarUint(uint64(len(signs)))
	for _, s := range signs {
		buf.VarString(s.Text)
		buf.I32(s.X)
		buf.I32(s.Y)
	}
}
