// Package world implements the data model, vanilla file codec, tile grid
// codec, and world-info cache for a loaded Terraria world.
package world

import (
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
)

// WorldMode selects the difficulty a world was created under.
type WorldMode int32

const (
	ModeNormal WorldMode = iota
	ModeExpert
	ModeMaster
	ModeJourney
)

// CorruptionVariant selects which evil biome a world generated with.
type CorruptionVariant int32

const (
	VariantCorruption CorruptionVariant = iota
	VariantCrimson
)

// OreVariant identifies which of a tier's two item ids was selected.
type OreVariant uint8

const (
	OreFirst OreVariant = iota
	OreSecond
)

// OreTier is one of the seven ore-generation slots, each resolving to one
// of two item ids on world creation.
type OreTier struct {
	Variant OreVariant
	first   int32
	second  int32
}

// ItemID returns the underlying item id this tier resolved to.
func (t OreTier) ItemID() int32 {
	if t.Variant == OreSecond {
		return t.second
	}
	return t.first
}

// NewOreTier builds an OreTier by matching raw against the tier's two known
// item ids; any other value is rejected as InvalidOreTier. Exported for use
// by internal/worldfile, which re-derives ore tiers from a raw item id on
// decode just as the vanilla codec does.
func NewOreTier(raw, first, second int32) (OreTier, error) {
	return newOreTier(raw, first, second)
}

// newOreTier builds an OreTier by matching raw against the tier's two
// known values; any other value is rejected as InvalidOreTier.
func newOreTier(raw, first, second int32) (OreTier, error) {
	switch raw {
	case first:
		return OreTier{Variant: OreFirst, first: first, second: second}, nil
	case second:
		return OreTier{Variant: OreSecond, first: first, second: second}, nil
	default:
		return OreTier{}, fmt.Errorf("%w: %d not in {%d, %d}", ErrInvalidOreTier, raw, first, second)
	}
}

// The seven ore-tier item id pairs, in world-header order.
const (
	itemCopper, itemTin          = 7, 166
	itemIron, itemLead           = 6, 167
	itemSilver, itemTungsten     = 9, 168
	itemGold, itemPlatinum       = 8, 169
	itemCobalt, itemPalladium    = 107, 221
	itemMythril, itemOrichalcum  = 108, 222
	itemAdamantite, itemTitanium = 111, 223
)

// TileCoord is a pair of 16-bit tile coordinates.
type TileCoord struct {
	X, Y uint16
}

// OreTiers holds the world's seven ore-generation selections.
type OreTiers struct {
	Copper, Iron, Silver, Gold  OreTier
	Cobalt, Mythril, Adamantite OreTier
}

// ProgressFlags holds the boss-defeat, invasion, and saved-NPC booleans
// read from the vanilla world header. Groups whose individual members the
// source format never names are kept as fixed-length slices in header
// order rather than invented field names, so a decode/encode round trip
// never silently drops or reorders a bit.
type ProgressFlags struct {
	// BossDefeats1 is the 18 boss-defeat/saved-NPC Booleans between the
	// corruption-type byte and the legacy any-orb flag, in header order:
	// Eye of Cthulhu, Eater/Brain, Skeletron, Queen Bee, Destroyer, Twins,
	// Skeletron Prime, any-mech-boss, Plantera, Golem, King Slime, saved
	// Goblin Tinkerer/Wizard/Mechanic, goblin army, clown, frost legion,
	// pirates.
	BossDefeats1 [18]bool

	// AnyOrbBrokenLegacy is the legacy "any shadow orb/heart broken" flag;
	// see promoteLegacyOrbFlag.
	AnyOrbBrokenLegacy bool

	// SavedAngler is read just before the angler quest id.
	SavedAngler bool

	// SavedStylist, SavedTaxCollector and SavedGolfer are read just after
	// the angler quest id.
	SavedStylist      bool
	SavedTaxCollector bool
	SavedGolfer       bool

	// BossDefeats2 is the further ~13 boss/event Booleans read after the
	// entity kill counts and fast-forwarding flag (ancient cultist, Moon
	// Lord, the Halloween/Christmas mini bosses, and related defeats).
	BossDefeats2 [13]bool

	// PillarsAndDoom is the five lunar-pillar-alive/impending-doom flags.
	PillarsAndDoom [5]bool

	// SavedBartender is read after the sandstorm state, before the
	// old-ones-army tier flags.
	SavedBartender bool

	OldOnesArmyTiers [3]bool
	TownPets         [3]bool

	CombatBookUsed bool

	ForcedHalloween bool
	ForcedChristmas bool

	DefeatedEmpressOfLight bool
	DefeatedQueenSlime     bool
}

// Invasion describes the world's current or pending invasion event.
type Invasion struct {
	Delay     int32
	Size      int32
	StartSize int32
	Type      int32
	X         float64
}

// Sandstorm describes the world's active or pending sandstorm.
type Sandstorm struct {
	Active           bool
	Remaining        int32
	Severity         float32
	IntendedSeverity float32
}

// Party describes the world's ongoing party event. Manual and Genuine are
// the two flag bytes stored ahead of the cooldown: player-thrown versus
// NPC-thrown parties.
type Party struct {
	Manual        bool
	Genuine       bool
	CooldownTicks int32
	PartyingNPCs  []int32
}

// LanternNight describes the pending/active lantern night event.
type LanternNight struct {
	CooldownTicks int32
	Genuine       bool
	Manual        bool
	Queued        bool
}

// Events groups the world's timed and flag-based events.
type Events struct {
	BloodMoon          bool
	Eclipse            bool
	Halloween          bool
	Christmas          bool
	MeteorQueued       bool
	Invasion           Invasion
	InvasionActive     bool
	PillarSolar        bool
	PillarVortex       bool
	PillarNebula       bool
	PillarStardust     bool
	PillarsPresent     bool
	Party              Party
	Sandstorm          Sandstorm
	CultistRemaining   int32
	SlimeRainRemaining float64
	LanternNight       LanternNight
}

// Angler holds the fishing quest-giver's state.
type Angler struct {
	CompletedQuests []string
	CurrentQuestID  int32
}

// Style groups the world's cosmetic background and tree selections.
type Style struct {
	MoonStyle uint8

	ForestBGCutpoints [3]int32
	ForestBGStyles    [4]int32
	CaveBGCutpoints   [3]int32
	CaveBGStyles      [4]int32

	SnowBGStyle       int32
	JungleBGStyle     int32
	UnderworldBGStyle int32

	// Biome background ids, written in worldinfo/vanilla order: forest[0],
	// corruption, jungle, snow, hallow, crimson, desert, ocean, mushroom,
	// underworld.
	BiomeBackgrounds [10]uint8
	// ForestBGTrailing preserves forest_bg[1..3], whose relationship to
	// forest_bg[0] is undocumented; they are carried for round-trip only.
	ForestBGTrailing [3]uint8

	TreeTopStyles []int32
}

// Weather groups the world's wind, rain, and cloud state.
type Weather struct {
	WindSpeed  float32
	CloudBGID  int32
	NumClouds  int16
	Raining    bool
	RainTime   int32
	RainAmount float32
}

// World is the in-memory model of a loaded Terraria world.
type World struct {
	Name     string
	SeedText string
	Seed     uint64
	ID       int32
	UUID     uuid.UUID

	Left, Right, Top, Bottom int32
	TileWidth, TileHeight    int32

	Mode WorldMode

	SpawnTile   TileCoord
	DungeonTile TileCoord

	CorruptionVariant CorruptionVariant
	SurfaceY          float64
	RockLayerY        float64
	OreTiers          OreTiers

	Progress         ProgressFlags
	ShadowOrbsBroken uint8
	AltarsBroken     int32
	EntityKillCounts []int32

	IsDay           bool
	Time            float64
	MoonPhase       int32
	FastForwarding  bool
	SundialCooldown uint8
	IsHardmode      bool

	Weather Weather
	Events  Events
	Angler  Angler
	Style   Style

	Tiles  *TileGrid
	Chests []Chest
	Signs  []Sign

	// TrailingSectionData preserves the vanilla file's trailing sections
	// (tile entities, pressure plates, town manager, bestiary, creative
	// powers, footer) as an opaque blob. They are never interpreted.
	TrailingSectionData []byte

	// GeneratorVersion is read from the vanilla header but is not the
	// value written into the world-info packet; see worldinfo.go.
	GeneratorVersion uint64
}

// HashSeed derives the world's 64-bit seed hash from its textual seed, the
// same value stored in World.Seed and used wherever the numeric seed (not
// the display text) is needed.
func HashSeed(seedText string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(seedText))
	return h.Sum64()
}

// promoteLegacyOrbFlag applies the shadow-orbs-broken legacy-promotion
// rule: if the old any-orb-broken Boolean was set and the counter read as
// zero, the counter is promoted to 3 (all orbs/hearts broken).
func promoteLegacyOrbFlag(anyOrbBroken bool, shadowOrbsBroken uint8) uint8 {
	if anyOrbBroken && shadowOrbsBroken == 0 {
		return 3
	}
	return shadowOrbsBroken
}
