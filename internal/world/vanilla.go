package world

import (
	"fmt"
	"io"

	"github.com/google/uuid"

	"github.com/duskvault/terrasrv/internal/binutil"
)

// VanillaVersion is the only world-file version this codec accepts.
const VanillaVersion = 230

// fileHeader is the vanilla format's first region: version, magic/filetype,
// section offset table, and the frame-important bit vector.
type fileHeader struct {
	Version        int32
	MagicFiletype  [8]byte
	Revision       uint32
	IsFavorite     uint64
	SectionOffsets []int32
	FrameImportant []bool
}

func readFileHeader(r *binutil.Reader) (*fileHeader, error) {
	h := &fileHeader{}

	version, err := r.I32()
	if err != nil {
		return nil, fmt.Errorf("read version: %w", err)
	}
	if version != VanillaVersion {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, version, VanillaVersion)
	}
	h.Version = version

	magic, err := r.N(8)
	if err != nil {
		return nil, fmt.Errorf("read magic+filetype: %w", err)
	}
	copy(h.MagicFiletype[:], magic)

	if h.Revision, err = r.U32(); err != nil {
		return nil, fmt.Errorf("read revision: %w", err)
	}
	if h.IsFavorite, err = r.U64(); err != nil {
		return nil, fmt.Errorf("read is_favorite: %w", err)
	}

	sectionCount, err := r.I16()
	if err != nil {
		return nil, fmt.Errorf("read section count: %w", err)
	}
	h.SectionOffsets = make([]int32, sectionCount)
	for i := range h.SectionOffsets {
		if h.SectionOffsets[i], err = r.I32(); err != nil {
			return nil, fmt.Errorf("read section offset %d: %w", i, err)
		}
	}

	frameImportantCount, err := r.I16()
	if err != nil {
		return nil, fmt.Errorf("read frame-important count: %w", err)
	}
	h.FrameImportant = make([]bool, frameImportantCount)
	byteCount := (int(frameImportantCount) + 7) / 8
	bits, err := r.N(byteCount)
	if err != nil {
		return nil, fmt.Errorf("read frame-important bit vector: %w", err)
	}
	for i := 0; i < int(frameImportantCount); i++ {
		if bits[i/8]&(1<<uint(i%8)) != 0 {
			h.FrameImportant[i] = true
		}
	}

	return h, nil
}

// ReadVanillaWorld decodes a vanilla (version 230) world file: the
// file-format header, world header, tile grid, chests, and signs. Trailing
// sections (tile entities, pressure plates, town manager, bestiary,
// creative powers, footer) are preserved opaquely in TrailingSectionData.
func ReadVanillaWorld(src io.Reader) (*World, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("read world file: %w", err)
	}

	br := newCountingReader(data)
	r := binutil.NewReader(br)

	fh, err := readFileHeader(r)
	if err != nil {
		return nil, fmt.Errorf("read file header: %w", err)
	}

	w := &World{}
	if err := readWorldHeader(r, w); err != nil {
		return nil, fmt.Errorf("read world header: %w", err)
	}

	grid, err := DecodeTileGrid(r, w.TileWidth, w.TileHeight, fh.FrameImportant)
	if err != nil {
		return nil, fmt.Errorf("decode tile grid: %w", err)
	}
	w.Tiles = grid

	chests, err := readChests(r)
	if err != nil {
		return nil, fmt.Errorf("read chests: %w", err)
	}
	w.Chests = chests

	signs, err := readSigns(r)
	if err != nil {
		return nil, fmt.Errorf("read signs: %w", err)
	}
	w.Signs = signs

	// Everything from here to EOF is tolerated but not interpreted.
	w.TrailingSectionData = data[br.pos:]

	return w, nil
}

// countingReader is an io.Reader over an in-memory buffer that tracks its
// read offset, letting ReadVanillaWorld slice off the unconsumed suffix as
// an opaque trailing blob once the consumed regions are decoded.
type countingReader struct {
	data []byte
	pos  int
}

func newCountingReader(data []byte) *countingReader { return &countingReader{data: data} }

func (c *countingReader) Read(p []byte) (int, error) {
	if c.pos >= len(c.data) {
		return 0, io.EOF
	}
	n := copy(p, c.data[c.pos:])
	c.pos += n
	return n, nil
}

func readWorldHeader(r *binutil.Reader, w *World) error {
	var err error

	if w.Name, err = r.VarString(); err != nil {
		return fmt.Errorf("read name: %w", err)
	}
	if w.SeedText, err = r.VarString(); err != nil {
		return fmt.Errorf("read seed text: %w", err)
	}
	w.Seed = HashSeed(w.SeedText)
	if w.GeneratorVersion, err = r.U64(); err != nil {
		return fmt.Errorf("read generator version: %w", err)
	}
	rawUUID, err := r.U128()
	if err != nil {
		return fmt.Errorf("read uuid: %w", err)
	}
	w.UUID = uuid.UUID(rawUUID)
	if w.ID, err = r.I32(); err != nil {
		return fmt.Errorf("read id: %w", err)
	}
	if w.Left, err = r.I32(); err != nil {
		return fmt.Errorf("read left: %w", err)
	}
	if w.Right, err = r.I32(); err != nil {
		return fmt.Errorf("read right: %w", err)
	}
	if w.Top, err = r.I32(); err != nil {
		return fmt.Errorf("read top: %w", err)
	}
	if w.Bottom, err = r.I32(); err != nil {
		return fmt.Errorf("read bottom: %w", err)
	}
	if w.TileHeight, err = r.I32(); err != nil {
		return fmt.Errorf("read tile height: %w", err)
	}
	if w.TileWidth, err = r.I32(); err != nil {
		return fmt.Errorf("read tile width: %w", err)
	}
	if w.TileWidth <= 0 || w.TileHeight <= 0 {
		return fmt.Errorf("%w: non-positive tile dimensions %dx%d", ErrInvalidField, w.TileWidth, w.TileHeight)
	}

	mode, err := r.I32()
	if err != nil {
		return fmt.Errorf("read worldmode: %w", err)
	}
	w.Mode = WorldMode(mode)

	if _, err = r.U8(); err != nil { // seed-variant flag 1
		return fmt.Errorf("read seed variant flag 1: %w", err)
	}
	if _, err = r.U8(); err != nil { // seed-variant flag 2
		return fmt.Errorf("read seed variant flag 2: %w", err)
	}
	if _, err = r.U64(); err != nil { // creation time
		return fmt.Errorf("read creation time: %w", err)
	}

	moonStyle, err := r.U8()
	if err != nil {
		return fmt.Errorf("read moon style: %w", err)
	}
	w.Style.MoonStyle = moonStyle

	if err := readInt32Array(r, w.Style.ForestBGCutpoints[:]); err != nil {
		return fmt.Errorf("read forest bg cutpoints: %w", err)
	}
	if err := readInt32Array(r, w.Style.ForestBGStyles[:]); err != nil {
		return fmt.Errorf("read forest bg styles: %w", err)
	}
	if err := readInt32Array(r, w.Style.CaveBGCutpoints[:]); err != nil {
		return fmt.Errorf("read cave bg cutpoints: %w", err)
	}
	if err := readInt32Array(r, w.Style.CaveBGStyles[:]); err != nil {
		return fmt.Errorf("read cave bg styles: %w", err)
	}

	snowStyle, err := r.I32()
	if err != nil {
		return fmt.Errorf("read snow bg style: %w", err)
	}
	w.Style.SnowBGStyle = snowStyle
	jungleStyle, err := r.I32()
	if err != nil {
		return fmt.Errorf("read jungle bg style: %w", err)
	}
	w.Style.JungleBGStyle = jungleStyle
	underworldStyle, err := r.I32()
	if err != nil {
		return fmt.Errorf("read underworld bg style: %w", err)
	}
	w.Style.UnderworldBGStyle = underworldStyle

	spawnX, err := r.I32()
	if err != nil {
		return fmt.Errorf("read spawn x: %w", err)
	}
	spawnY, err := r.I32()
	if err != nil {
		return fmt.Errorf("read spawn y: %w", err)
	}
	w.SpawnTile = TileCoord{X: uint16(spawnX), Y: uint16(spawnY)}

	if w.SurfaceY, err = r.F64(); err != nil {
		return fmt.Errorf("read surface y: %w", err)
	}
	if w.RockLayerY, err = r.F64(); err != nil {
		return fmt.Errorf("read rock layer y: %w", err)
	}
	if w.Time, err = r.F64(); err != nil {
		return fmt.Errorf("read time: %w", err)
	}

	isDay, err := r.U8()
	if err != nil {
		return fmt.Errorf("read is_day: %w", err)
	}
	w.IsDay = isDay != 0

	if w.MoonPhase, err = r.I32(); err != nil {
		return fmt.Errorf("read moon phase: %w", err)
	}

	if w.Events.BloodMoon, err = r.Bool(); err != nil {
		return fmt.Errorf("read blood moon flag: %w", err)
	}
	if w.Events.Eclipse, err = r.Bool(); err != nil {
		return fmt.Errorf("read eclipse flag: %w", err)
	}

	dungeonX, err := r.I32()
	if err != nil {
		return fmt.Errorf("read dungeon x: %w", err)
	}
	dungeonY, err := r.I32()
	if err != nil {
		return fmt.Errorf("read dungeon y: %w", err)
	}
	w.DungeonTile = TileCoord{X: uint16(dungeonX), Y: uint16(dungeonY)}

	corruptionByte, err := r.U8()
	if err != nil {
		return fmt.Errorf("read corruption type flag: %w", err)
	}
	if corruptionByte == 0 {
		w.CorruptionVariant = VariantCorruption
	} else {
		w.CorruptionVariant = VariantCrimson
	}

	for i := range w.Progress.BossDefeats1 {
		if w.Progress.BossDefeats1[i], err = r.Bool(); err != nil {
			return fmt.Errorf("read boss defeat flag %d: %w", i, err)
		}
	}

	if w.Progress.AnyOrbBrokenLegacy, err = r.Bool(); err != nil {
		return fmt.Errorf("read legacy any-orb-broken flag: %w", err)
	}
	if w.Events.MeteorQueued, err = r.Bool(); err != nil {
		return fmt.Errorf("read meteor queued flag: %w", err)
	}

	shadowOrbsBroken, err := r.U8()
	if err != nil {
		return fmt.Errorf("read shadow orbs broken: %w", err)
	}
	w.ShadowOrbsBroken = promoteLegacyOrbFlag(w.Progress.AnyOrbBrokenLegacy, shadowOrbsBroken)
	if w.ShadowOrbsBroken > 3 {
		return fmt.Errorf("%w: shadow orbs broken %d out of range", ErrInvalidField, w.ShadowOrbsBroken)
	}

	if w.AltarsBroken, err = r.I32(); err != nil {
		return fmt.Errorf("read altars broken: %w", err)
	}
	if w.IsHardmode, err = r.Bool(); err != nil {
		return fmt.Errorf("read is_hardmode: %w", err)
	}

	if w.Events.Invasion.Delay, err = r.I32(); err != nil {
		return fmt.Errorf("read invasion delay: %w", err)
	}
	if w.Events.Invasion.Size, err = r.I32(); err != nil {
		return fmt.Errorf("read invasion size: %w", err)
	}
	if w.Events.Invasion.Type, err = r.I32(); err != nil {
		return fmt.Errorf("read invasion type: %w", err)
	}
	if w.Events.Invasion.X, err = r.F64(); err != nil {
		return fmt.Errorf("read invasion x: %w", err)
	}

	if w.Events.SlimeRainRemaining, err = r.F64(); err != nil {
		return fmt.Errorf("read slime rain remaining: %w", err)
	}
	if w.SundialCooldown, err = r.U8(); err != nil {
		return fmt.Errorf("read sundial cooldown: %w", err)
	}

	if w.Weather.Raining, err = r.Bool(); err != nil {
		return fmt.Errorf("read is_raining: %w", err)
	}
	if w.Weather.RainTime, err = r.I32(); err != nil {
		return fmt.Errorf("read rain time: %w", err)
	}
	if w.Weather.RainAmount, err = r.F32(); err != nil {
		return fmt.Errorf("read rain amount: %w", err)
	}

	cobaltRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read cobalt tier: %w", err)
	}
	if w.OreTiers.Cobalt, err = newOreTier(cobaltRaw, itemCobalt, itemPalladium); err != nil {
		return err
	}
	mythrilRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read mythril tier: %w", err)
	}
	if w.OreTiers.Mythril, err = newOreTier(mythrilRaw, itemMythril, itemOrichalcum); err != nil {
		return err
	}
	adamantiteRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read adamantite tier: %w", err)
	}
	if w.OreTiers.Adamantite, err = newOreTier(adamantiteRaw, itemAdamantite, itemTitanium); err != nil {
		return err
	}

	for i := 0; i < 8; i++ {
		if w.Style.BiomeBackgrounds[i], err = r.U8(); err != nil {
			return fmt.Errorf("read biome bg byte %d: %w", i, err)
		}
	}

	if w.Weather.CloudBGID, err = r.I32(); err != nil {
		return fmt.Errorf("read active cloud bg: %w", err)
	}
	if w.Weather.NumClouds, err = r.I16(); err != nil {
		return fmt.Errorf("read num clouds: %w", err)
	}
	if w.Weather.WindSpeed, err = r.F32(); err != nil {
		return fmt.Errorf("read wind speed: %w", err)
	}

	questCount, err := r.I32()
	if err != nil {
		return fmt.Errorf("read completed quest count: %w", err)
	}
	w.Angler.CompletedQuests = make([]string, questCount)
	for i := range w.Angler.CompletedQuests {
		if w.Angler.CompletedQuests[i], err = r.VarString(); err != nil {
			return fmt.Errorf("read completed quest %d: %w", i, err)
		}
	}

	if w.Progress.SavedAngler, err = r.Bool(); err != nil {
		return fmt.Errorf("read saved angler flag: %w", err)
	}

	if w.Angler.CurrentQuestID, err = r.I32(); err != nil {
		return fmt.Errorf("read angler quest id: %w", err)
	}

	if w.Progress.SavedStylist, err = r.Bool(); err != nil {
		return fmt.Errorf("read saved stylist flag: %w", err)
	}
	if w.Progress.SavedTaxCollector, err = r.Bool(); err != nil {
		return fmt.Errorf("read saved tax collector flag: %w", err)
	}
	if w.Progress.SavedGolfer, err = r.Bool(); err != nil {
		return fmt.Errorf("read saved golfer flag: %w", err)
	}

	if w.Events.Invasion.StartSize, err = r.I32(); err != nil {
		return fmt.Errorf("read invasion start size: %w", err)
	}
	if w.Events.CultistRemaining, err = r.I32(); err != nil {
		return fmt.Errorf("read cultist remaining: %w", err)
	}

	killCount, err := r.I16()
	if err != nil {
		return fmt.Errorf("read entity kill count: %w", err)
	}
	w.EntityKillCounts = make([]int32, killCount)
	for i := range w.EntityKillCounts {
		if w.EntityKillCounts[i], err = r.I32(); err != nil {
			return fmt.Errorf("read entity kill count %d: %w", i, err)
		}
	}

	if w.FastForwarding, err = r.Bool(); err != nil {
		return fmt.Errorf("read fast-forwarding flag: %w", err)
	}

	for i := range w.Progress.BossDefeats2 {
		if w.Progress.BossDefeats2[i], err = r.Bool(); err != nil {
			return fmt.Errorf("read boss defeat flag 2.%d: %w", i, err)
		}
	}

	for i := range w.Progress.PillarsAndDoom {
		if w.Progress.PillarsAndDoom[i], err = r.Bool(); err != nil {
			return fmt.Errorf("read pillar/doom flag %d: %w", i, err)
		}
	}
	w.Events.PillarSolar = w.Progress.PillarsAndDoom[0]
	w.Events.PillarVortex = w.Progress.PillarsAndDoom[1]
	w.Events.PillarNebula = w.Progress.PillarsAndDoom[2]
	w.Events.PillarStardust = w.Progress.PillarsAndDoom[3]
	w.Events.PillarsPresent = w.Progress.PillarsAndDoom[4]

	if w.Events.Party.Manual, err = r.Bool(); err != nil {
		return fmt.Errorf("read party manual flag: %w", err)
	}
	if w.Events.Party.Genuine, err = r.Bool(); err != nil {
		return fmt.Errorf("read party genuine flag: %w", err)
	}
	if w.Events.Party.CooldownTicks, err = r.I32(); err != nil {
		return fmt.Errorf("read party cooldown: %w", err)
	}
	partyNPCCount, err := r.I32()
	if err != nil {
		return fmt.Errorf("read partying npc count: %w", err)
	}
	w.Events.Party.PartyingNPCs = make([]int32, partyNPCCount)
	for i := range w.Events.Party.PartyingNPCs {
		if w.Events.Party.PartyingNPCs[i], err = r.I32(); err != nil {
			return fmt.Errorf("read partying npc %d: %w", i, err)
		}
	}

	if w.Events.Sandstorm.Active, err = r.Bool(); err != nil {
		return fmt.Errorf("read sandstorm active flag: %w", err)
	}
	if w.Events.Sandstorm.Remaining, err = r.I32(); err != nil {
		return fmt.Errorf("read sandstorm remaining: %w", err)
	}
	if w.Events.Sandstorm.Severity, err = r.F32(); err != nil {
		return fmt.Errorf("read sandstorm severity: %w", err)
	}
	if w.Events.Sandstorm.IntendedSeverity, err = r.F32(); err != nil {
		return fmt.Errorf("read sandstorm intended severity: %w", err)
	}

	if w.Progress.SavedBartender, err = r.Bool(); err != nil {
		return fmt.Errorf("read saved bartender flag: %w", err)
	}

	for i := range w.Progress.OldOnesArmyTiers {
		if w.Progress.OldOnesArmyTiers[i], err = r.Bool(); err != nil {
			return fmt.Errorf("read old ones army tier %d: %w", i, err)
		}
	}

	mushroomBG, err := r.U8()
	if err != nil {
		return fmt.Errorf("read mushroom bg: %w", err)
	}
	underworldBG, err := r.U8()
	if err != nil {
		return fmt.Errorf("read underworld bg: %w", err)
	}
	w.Style.BiomeBackgrounds[8] = mushroomBG
	w.Style.BiomeBackgrounds[9] = underworldBG
	if err := readUint8Array(r, w.Style.ForestBGTrailing[:]); err != nil {
		return fmt.Errorf("read forest bg[1..3]: %w", err)
	}

	if w.Progress.CombatBookUsed, err = r.Bool(); err != nil {
		return fmt.Errorf("read combat book used flag: %w", err)
	}

	if w.Events.LanternNight.CooldownTicks, err = r.I32(); err != nil {
		return fmt.Errorf("read lantern night cooldown: %w", err)
	}
	if w.Events.LanternNight.Genuine, err = r.Bool(); err != nil {
		return fmt.Errorf("read lantern night genuine flag: %w", err)
	}
	if w.Events.LanternNight.Manual, err = r.Bool(); err != nil {
		return fmt.Errorf("read lantern night manual flag: %w", err)
	}
	if w.Events.LanternNight.Queued, err = r.Bool(); err != nil {
		return fmt.Errorf("read lantern night queued flag: %w", err)
	}

	treeTopCount, err := r.I32()
	if err != nil {
		return fmt.Errorf("read tree top count: %w", err)
	}
	w.Style.TreeTopStyles = make([]int32, treeTopCount)
	for i := range w.Style.TreeTopStyles {
		if w.Style.TreeTopStyles[i], err = r.I32(); err != nil {
			return fmt.Errorf("read tree top style %d: %w", i, err)
		}
	}

	if w.Progress.ForcedHalloween, err = r.Bool(); err != nil {
		return fmt.Errorf("read forced halloween flag: %w", err)
	}
	if w.Progress.ForcedChristmas, err = r.Bool(); err != nil {
		return fmt.Errorf("read forced christmas flag: %w", err)
	}

	copperRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read copper tier: %w", err)
	}
	if w.OreTiers.Copper, err = newOreTier(copperRaw, itemCopper, itemTin); err != nil {
		return err
	}
	ironRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read iron tier: %w", err)
	}
	if w.OreTiers.Iron, err = newOreTier(ironRaw, itemIron, itemLead); err != nil {
		return err
	}
	silverRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read silver tier: %w", err)
	}
	if w.OreTiers.Silver, err = newOreTier(silverRaw, itemSilver, itemTungsten); err != nil {
		return err
	}
	goldRaw, err := r.I32()
	if err != nil {
		return fmt.Errorf("read gold tier: %w", err)
	}
	if w.OreTiers.Gold, err = newOreTier(goldRaw, itemGold, itemPlatinum); err != nil {
		return err
	}

	for i := range w.Progress.TownPets {
		if w.Progress.TownPets[i], err = r.Bool(); err != nil {
			return fmt.Errorf("read town pet flag %d: %w", i, err)
		}
	}

	if w.Progress.DefeatedEmpressOfLight, err = r.Bool(); err != nil {
		return fmt.Errorf("read empress of light defeat flag: %w", err)
	}
	if w.Progress.DefeatedQueenSlime, err = r.Bool(); err != nil {
		return fmt.Errorf("read queen slime defeat flag: %w", err)
	}

	return nil
}

func readInt32Array(r *binutil.Reader, out []int32) error {
	for i := range out {
		v, err := r.I32()
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return nil
}

func readUint8Array(r *binutil.Reader, out []uint8) error {
	for i := range out {
		v, err := r.U8()
		if err != nil {
			return fmt.Errorf("element %d: %w", i, err)
		}
		out[i] = v
	}
	return nil
}

func readChests(r *binutil.Reader) ([]Chest, error) {
	count, err := r.I16()
	if err != nil {
		return nil, fmt.Errorf("read chest count: %w", err)
	}
	chests := make([]Chest, count)
	for i := range chests {
		x, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("chest %d x: %w", i, err)
		}
		y, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("chest %d y: %w", i, err)
		}
		name, err := r.VarString()
		if err != nil {
			return nil, fmt.Errorf("chest %d name: %w", i, err)
		}
		chests[i].X, chests[i].Y, chests[i].Name = x, y, name

		for slot := 0; slot < ChestSlotCount; slot++ {
			stack, err := r.I16()
			if err != nil {
				return nil, fmt.Errorf("chest %d slot %d stack: %w", i, slot, err)
			}
			if stack == 0 {
				continue
			}
			id, err := r.I32()
			if err != nil {
				return nil, fmt.Errorf("chest %d slot %d id: %w", i, slot, err)
			}
			prefix, err := r.U8()
			if err != nil {
				return nil, fmt.Errorf("chest %d slot %d prefix: %w", i, slot, err)
			}
			chests[i].Items[slot] = ChestItem{Stack: stack, ID: id, Prefix: prefix}
		}
	}
	return chests, nil
}

func readSigns(r *binutil.Reader) ([]Sign, error) {
	count, err := r.I16()
	if err != nil {
		return nil, fmt.Errorf("read sign count: %w", err)
	}
	signs := make([]Sign, count)
	for i := range signs {
		text, err := r.VarString()
		if err != nil {
			return nil, fmt.Errorf("sign %d text: %w", i, err)
		}
		x, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("sign %d x: %w", i, err)
		}
		y, err := r.I32()
		if err != nil {
			return nil, fmt.Errorf("sign %d y: %w", i, err)
		}
		signs[i] = Sign{X: x, Y: y, Text: text}
	}
	return signs, nil
}
