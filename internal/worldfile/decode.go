package worldfile

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/duskvault/terrasrv/internal/binutil"
	"github.com/duskvault/terrasrv/internal/world"
)

// DecodeWorld deserializes a World from r, the inverse of EncodeWorld.
func DecodeWorld(r *binutil.Reader) (*world.World, error) {
	w := &world.World{}
	var err error

	if w.Name, err = r.VarString(); err != nil {
		return nil, fmt.Errorf("read name: %w", err)
	}
	if w.SeedText, err = r.VarString(); err != nil {
		return nil, fmt.Errorf("read seed text: %w", err)
	}
	w.Seed = world.HashSeed(w.SeedText)
	if w.GeneratorVersion, err = r.U64(); err != nil {
		return nil, fmt.Errorf("read generator version: %w", err)
	}
	rawUUID, err := r.U128()
	if err != nil {
		return nil, fmt.Errorf("read uuid: %w", err)
	}
	w.UUID = uuid.UUID(rawUUID)
	if w.ID, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read id: %w", err)
	}
	if w.Left, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read left: %w", err)
	}
	if w.Right, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read right: %w", err)
	}
	if w.Top, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read top: %w", err)
	}
	if w.Bottom, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read bottom: %w", err)
	}
	if w.TileWidth, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read tile width: %w", err)
	}
	if w.TileHeight, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read tile height: %w", err)
	}
	mode, err := r.I32()
	if err != nil {
		return nil, fmt.Errorf("read mode: %w", err)
	}
	w.Mode = world.WorldMode(mode)

	corruption, err := r.I32()
	if err != nil {
		return nil, fmt.Errorf("read corruption variant: %w", err)
	}
	w.CorruptionVariant = world.CorruptionVariant(corruption)
	if w.SurfaceY, err = r.F64(); err != nil {
		return nil, fmt.Errorf("read surface y: %w", err)
	}
	if w.RockLayerY, err = r.F64(); err != nil {
		return nil, fmt.Errorf("read rock layer y: %w", err)
	}
	if w.OreTiers, err = decodeOreTiers(r); err != nil {
		return nil, fmt.Errorf("read ore tiers: %w", err)
	}

	if w.Progress, err = decodeProgress(r); err != nil {
		return nil, fmt.Errorf("read progress flags: %w", err)
	}
	if w.ShadowOrbsBroken, err = r.U8(); err != nil {
		return nil, fmt.Errorf("read shadow orbs broken: %w", err)
	}
	if w.AltarsBroken, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read altars broken: %w", err)
	}
	killCount, err := r.VarUint()
	if err != nil {
		return nil, fmt.Errorf("read entity kill count: %w", err)
	}
	w.EntityKillCounts = make([]int32, killCount)
	for i := range w.EntityKillCounts {
		if w.EntityKillCounts[i], err = r.I32(); err != nil {
			return nil, fmt.Errorf("read entity kill count %d: %w", i, err)
		}
	}

	if w.IsDay, err = r.Bool(); err != nil {
		return nil, fmt.Errorf("read is_day: %w", err)
	}
	if w.Time, err = r.F64(); err != nil {
		return nil, fmt.Errorf("read time: %w", err)
	}
	if w.MoonPhase, err = r.I32(); err != nil {
		return nil, fmt.Errorf("read moon phase: %w", err)
	}
	if w.FastForwarding, err = r.Bool(); err != nil {
		return nil, fmt.Errorf("read fast-forwarding: %w", err)
	}
	if w.SundialCooldown, err = r.U8(); err != nil {
		return nil, fmt.Errorf("read sundial cooldown: %w", err)
	}
	if w.IsHardmode, err = r.Bool(); err != nil {
		return nil, fmt.Errorf("read is_hardmode: %w", err)
	}

	if w.Weather, err = decodeWeather(r); err != nil {
		return nil, fmt.Errorf("read weather: %w", err)
	}
	if w.Events, err = decodeEvents(r); err != nil {
		return nil, fmt.Errorf("read events: %w", err)
	}
	if w.Angler, err = decodeAngler(r); err != nil {
		return nil, fmt.Errorf("read angler: %w", err)
	}
	if w.Style, err = decodeStyle(r); err != nil {
		return nil, fmt.Errorf("read style: %w", err)
	}

	if w.SpawnTile, err = decodeTileCoord(r); err != nil {
		return nil, fmt.Errorf("read spawn tile: %w", err)
	}
	if w.DungeonTile, err = decodeTileCoord(r); err != nil {
		return nil, fmt.Errorf("read dungeon tile: %w", err)
	}

	if w.Tiles, err = decodeTiles(r); err != nil {
		return nil, fmt.Errorf("read tiles: %w", err)
	}
	if w.Chests, err = decodeChests(r); err != nil {
		return nil, fmt.Errorf("read chests: %w", err)
	}
	if w.Signs, err = decodeSigns(r); err != nil {
		return nil, fmt.Errorf("read signs: %w", err)
	}

	trailingLen, err := r.VarUint()
	if err != nil {
		return nil, fmt.Errorf("read trailing section length: %w", err)
	}
	if w.TrailingSectionData, err = r.N(int(trailingLen)); err != nil {
		return nil, fmt.Errorf("read trailing section data: %w", err)
	}

	return w, nil
}

func decodeTileCoord(r *binutil.Reader) (world.TileCoord, error) {
	x, err := r.U16()
	if err != nil {
		return world.TileCoord{}, err
	}
	y, err := r.U16()
	if err != nil {
		return world.TileCoord{}, err
	}
	return world.TileCoord{X: x, Y: y}, nil
}

func decodeOreTiers(r *binutil.Reader) (world.OreTiers, error) {
	var t world.OreTiers
	pairs := []struct {
		dst           *world.OreTier
		first, second int32
	}{
		{&t.Copper, 7, 166},
		{&t.Iron, 6, 167},
		{&t.Silver, 9, 168},
		{&t.Gold, 8, 169},
		{&t.Cobalt, 107, 221},
		{&t.Mythril, 108, 222},
		{&t.Adamantite, 111, 223},
	}
	for _, p := range pairs {
		raw, err := r.I32()
		if err != nil {
			return t, err
		}
		tier, err := world.NewOreTier(raw, p.first, p.second)
		if err != nil {
			return t, err
		}
		*p.dst = tier
	}
	return t, nil
}

func decodeProgress(r *binutil.Reader) (world.ProgressFlags, error) {
	var p world.ProgressFlags
	var err error
	for i := range p.BossDefeats1 {
		if p.BossDefeats1[i], err = r.Bool(); err != nil {
			return p, err
		}
	}
	if p.AnyOrbBrokenLegacy, err = r.Bool(); err != nil {
		return p, err
	}
	if p.SavedAngler, err = r.Bool(); err != nil {
		return p, err
	}
	if p.SavedStylist, err = r.Bool(); err != nil {
		return p, err
	}
	if p.SavedTaxCollector, err = r.Bool(); err != nil {
		return p, err
	}
	if p.SavedGolfer, err = r.Bool(); err != nil {
		return p, err
	}
	for i := range p.BossDefeats2 {
		if p.BossDefeats2[i], err = r.Bool(); err != nil {
			return p, err
		}
	}
	for i := range p.PillarsAndDoom {
		if p.PillarsAndDoom[i], err = r.Bool(); err != nil {
			return p, err
		}
	}
	if p.SavedBartender, err = r.Bool(); err != nil {
		return p, err
	}
	for i := range p.OldOnesArmyTiers {
		if p.OldOnesArmyTiers[i], err = r.Bool(); err != nil {
			return p, err
		}
	}
	for i := range p.TownPets {
		if p.TownPets[i], err = r.Bool(); err != nil {
			return p, err
		}
	}
	if p.CombatBookUsed, err = r.Bool(); err != nil {
		return p, err
	}
	if p.ForcedHalloween, err = r.Bool(); err != nil {
		return p, err
	}
	if p.ForcedChristmas, err = r.Bool(); err != nil {
		return p, err
	}
	if p.DefeatedEmpressOfLight, err = r.Bool(); err != nil {
		return p, err
	}
	if p.DefeatedQueenSlime, err = r.Bool(); err != nil {
		return p, err
	}
	return p, nil
}

func decodeWeather(r *binutil.Reader) (world.Weather, error) {
	var w world.Weather
	var err error
	if w.WindSpeed, err = r.F32(); err != nil {
		return w, err
	}
	if w.CloudBGID, err = r.I32(); err != nil {
		return w, err
	}
	if w.NumClouds, err = r.I16(); err != nil {
		return w, err
	}
	if w.Raining, err = r.Bool(); err != nil {
		return w, err
	}
	if w.RainTime, err = r.I32(); err != nil {
		return w, err
	}
	if w.RainAmount, err = r.F32(); err != nil {
		return w, err
	}
	return w, nil
}

func decodeEvents(r *binutil.Reader) (world.Events, error) {
	var e world.Events
	var err error
	if e.BloodMoon, err = r.Bool(); err != nil {
		return e, err
	}
	if e.Eclipse, err = r.Bool(); err != nil {
		return e, err
	}
	if e.MeteorQueued, err = r.Bool(); err != nil {
		return e, err
	}
	if e.PillarSolar, err = r.Bool(); err != nil {
		return e, err
	}
	if e.PillarVortex, err = r.Bool(); err != nil {
		return e, err
	}
	if e.PillarNebula, err = r.Bool(); err != nil {
		return e, err
	}
	if e.PillarStardust, err = r.Bool(); err != nil {
		return e, err
	}
	if e.PillarsPresent, err = r.Bool(); err != nil {
		return e, err
	}
	if e.CultistRemaining, err = r.I32(); err != nil {
		return e, err
	}
	if e.SlimeRainRemaining, err = r.F64(); err != nil {
		return e, err
	}

	if e.Invasion.Delay, err = r.I32(); err != nil {
		return e, err
	}
	if e.Invasion.Size, err = r.I32(); err != nil {
		return e, err
	}
	if e.Invasion.StartSize, err = r.I32(); err != nil {
		return e, err
	}
	if e.Invasion.Type, err = r.I32(); err != nil {
		return e, err
	}
	if e.Invasion.X, err = r.F64(); err != nil {
		return e, err
	}

	if e.Party.Manual, err = r.Bool(); err != nil {
		return e, err
	}
	if e.Party.Genuine, err = r.Bool(); err != nil {
		return e, err
	}
	if e.Party.CooldownTicks, err = r.I32(); err != nil {
		return e, err
	}
	npcCount, err := r.VarUint()
	if err != nil {
		return e, err
	}
	e.Party.PartyingNPCs = make([]int32, npcCount)
	for i := range e.Party.PartyingNPCs {
		if e.Party.PartyingNPCs[i], err = r.I32(); err != nil {
			return e, err
		}
	}

	if e.Sandstorm.Active, err = r.Bool(); err != nil {
		return e, err
	}
	if e.Sandstorm.Remaining, err = r.I32(); err != nil {
		return e, err
	}
	if e.Sandstorm.Severity, err = r.F32(); err != nil {
		return e, err
	}
	if e.Sandstorm.IntendedSeverity, err = r.F32(); err != nil {
		return e, err
	}

	if e.LanternNight.CooldownTicks, err = r.I32(); err != nil {
		return e, err
	}
	if e.LanternNight.Genuine, err = r.Bool(); err != nil {
		return e, err
	}
	if e.LanternNight.Manual, err = r.Bool(); err != nil {
		return e, err
	}
	if e.LanternNight.Queued, err = r.Bool(); err != nil {
		return e, err
	}

	return e, nil
}

func decodeAngler(r *binutil.Reader) (world.Angler, error) {
	var a world.Angler
	count, err := r.VarUint()
	if err != nil {
		return a, err
	}
	a.CompletedQuests = make([]string, count)
	for i := range a.CompletedQuests {
		if a.CompletedQuests[i], err = r.VarString(); err != nil {
			return a, err
		}
	}
	if a.CurrentQuestID, err = r.I32(); err != nil {
		return a, err
	}
	return a, nil
}

func decodeStyle(r *binutil.Reader) (world.Style, error) {
	var s world.Style
	var err error
	if s.MoonStyle, err = r.U8(); err != nil {
		return s, err
	}
	for i := range s.ForestBGCutpoints {
		if s.ForestBGCutpoints[i], err = r.I32(); err != nil {
			return s, err
		}
	}
	for i := range s.ForestBGStyles {
		if s.ForestBGStyles[i], err = r.I32(); err != nil {
			return s, err
		}
	}
	for i := range s.CaveBGCutpoints {
		if s.CaveBGCutpoints[i], err = r.I32(); err != nil {
			return s, err
		}
	}
	for i := range s.CaveBGStyles {
		if s.CaveBGStyles[i], err = r.I32(); err != nil {
			return s, err
		}
	}
	if s.SnowBGStyle, err = r.I32(); err != nil {
		return s, err
	}
	if s.JungleBGStyle, err = r.I32(); err != nil {
		return s, err
	}
	if s.UnderworldBGStyle, err = r.I32(); err != nil {
		return s, err
	}
	for i := range s.BiomeBackgrounds {
		if s.BiomeBackgrounds[i], err = r.U8(); err != nil {
			return s, err
		}
	}
	for i := range s.ForestBGTrailing {
		if s.ForestBGTrailing[i], err = r.U8(); err != nil {
			return s, err
		}
	}
	treeCount, err := r.VarUint()
	if err != nil {
		return s, err
	}
	s.TreeTopStyles = make([]int32, treeCount)
	for i := range s.TreeTopStyles {
		if s.TreeTopStyles[i], err = r.I32(); err != nil {
			return s, err
		}
	}
	return s, nil
}

func decodeTiles(r *binutil.Reader) (*world.TileGrid, error) {
	width, err := r.I32()
	if err != nil {
		return nil, err
	}
	height, err := r.I32()
	if err != nil {
		return nil, err
	}
	if width == 0 && height == 0 {
		return nil, nil
	}

	frameCount, err := r.VarUint()
	if err != nil {
		return nil, fmt.Errorf("read frame-important count: %w", err)
	}
	frameImportant := make([]bool, frameCount)
	byteCount := (int(frameCount) + 7) / 8
	bits, err := r.N(byteCount)
	if err != nil {
		return nil, fmt.Errorf("read frame-important bits: %w", err)
	}
	for i := 0; i < int(frameCount); i++ {
		if bits[i/8]&(1<<uint(i%8)) != 0 {
			frameImportant[i] = true
		}
	}

	return world.DecodeTileGrid(r, width, height, frameImportant)
}

func decodeChests(r *binutil.Reader) ([]world.Chest, error) {
	count, err := r.VarUint()
	if err != nil {
		return nil, err
	}
	chests := make([]world.Chest, count)
	for i := range chests {
		if chests[i].X, err = r.I32(); err != nil {
			return nil, err
		}
		if chests[i].Y, err = r.I32(); err != nil {
			return nil, err
		}
		if chests[i].Name, err = r.VarString(); err != nil {
			return nil, err
		}
		for slot := range chests[i].Items {
			stack, err := r.I16()
			if err != nil {
				return nil, err
			}
			if stack == 0 {
				continue
			}
			id, err := r.I32()
			if err != nil {
				return nil, err
			}
			prefix, err := r.U8()
			if err != nil {
				return nil, err
			}
			chests[i].Items[slot] = world.ChestItem{Stack: stack, ID: id, Prefix: prefix}
		}
	}
	return chests, nil
}

func decodeSigns(r *binutil.Reader) ([]world.Sign, error) {
	count, err := r.VarUint()
	if err != nil {
		return nil, err
	}
	signs := make([]world.Sign, count)
	for i := range signs {
		if signs[i].Text, err = r.VarString(); err != nil {
			return nil, err
		}
		if signs[i].X, err = r.I32(); err != nil {
			return nil, err
		}
		if signs[i].Y, err = r.I32(); err != nil {
			return nil, err
		}
	}
	return signs, nil
}
