package player

import (
	"errors"
	"fmt"

	"github.com/duskvault/terrasrv/internal/protocol"
)

// ErrWrongField is returned when a one-write field is written a second
// time. The first well-formed write wins; every later write fails.
var ErrWrongField = errors.New("player: field already set")

// ErrInvalidField is returned when a one-write field's value is rejected
// outright, independent of whether it has already been set (an empty
// player name, for instance).
var ErrInvalidField = errors.New("player: invalid field value")

// Status is a player's hp/mana/buff state.
type Status struct {
	Hp, MaxHp     uint16
	Mana, MaxMana uint16
	Buffs         [protocol.BuffSlotCount]uint16
}

// Player is one connection's server-side state. name, appearance, max_hp,
// max_mana, and buffs are one-write fields: set once, then immutable.
// hp, mana, inventory contents, uuid (until first set), and the
// difficulty/torch flags remain mutable for the life of the connection.
type Player struct {
	Slot uint8

	name          string
	nameSet       bool
	appearance    Appearance
	appearanceSet bool

	uuid    string
	uuidSet bool

	maxHpSet   bool
	maxManaSet bool
	buffsSet   bool
	status     Status

	difficulty Difficulty
	torches    TorchFlags

	Inventory *Inventory
}

// New returns a Player ready to receive its one-write identity fields.
func New(slot uint8) *Player {
	return &Player{Slot: slot, Inventory: NewInventory()}
}

// Name returns the player's name, if set.
func (p *Player) Name() (string, bool) { return p.name, p.nameSet }

// SetName performs the one-write name assignment. An empty name is
// rejected outright rather than accepted and later immutable.
func (p *Player) SetName(name string) error {
	if name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidField)
	}
	if p.nameSet {
		return fmt.Errorf("%w: name", ErrWrongField)
	}
	p.name = name
	p.nameSet = true
	return nil
}

// Appearance returns the player's appearance, if set.
func (p *Player) Appearance() (Appearance, bool) { return p.appearance, p.appearanceSet }

// SetAppearance performs the one-write appearance assignment from the
// wire packet.
func (p *Player) SetAppearance(pkt protocol.PlayerAppearance) error {
	if p.appearanceSet {
		return fmt.Errorf("%w: appearance", ErrWrongField)
	}
	p.appearance = appearanceFromPacket(pkt)
	p.appearanceSet = true
	return nil
}

// UUID returns the player's uuid, if set.
func (p *Player) UUID() (string, bool) { return p.uuid, p.uuidSet }

// SetUUID is mutable-until-first-set: once a uuid has been recorded, later
// writes fail.
func (p *Player) SetUUID(uuid string) error {
	if p.uuidSet {
		return fmt.Errorf("%w: uuid", ErrWrongField)
	}
	p.uuid = uuid
	p.uuidSet = true
	return nil
}

// SetMaxHp performs the one-write max_hp assignment and sets the matching
// current hp to the same value.
func (p *Player) SetMaxHp(maxHp uint16) error {
	if p.maxHpSet {
		return fmt.Errorf("%w: max_hp", ErrWrongField)
	}
	p.status.MaxHp = maxHp
	p.status.Hp = maxHp
	p.maxHpSet = true
	return nil
}

// SetMaxMana performs the one-write max_mana assignment.
func (p *Player) SetMaxMana(maxMana uint16) error {
	if p.maxManaSet {
		return fmt.Errorf("%w: max_mana", ErrWrongField)
	}
	p.status.MaxMana = maxMana
	p.status.Mana = maxMana
	p.maxManaSet = true
	return nil
}

// SetBuffs performs the one-write buff-table assignment.
func (p *Player) SetBuffs(buffs [protocol.BuffSlotCount]uint16) error {
	if p.buffsSet {
		return fmt.Errorf("%w: buffs", ErrWrongField)
	}
	p.status.Buffs = buffs
	p.buffsSet = true
	return nil
}

// SetHp updates current hp. hp is mutable so long as max_hp has already
// been established by a one-write PlayerHp packet.
func (p *Player) SetHp(hp uint16) error {
	if !p.maxHpSet {
		return fmt.Errorf("player: hp written before max_hp established")
	}
	p.status.Hp = hp
	return nil
}

// SetMana updates current mana, mirroring SetHp.
func (p *Player) SetMana(mana uint16) error {
	if !p.maxManaSet {
		return fmt.Errorf("player: mana written before max_mana established")
	}
	p.status.Mana = mana
	return nil
}

// Status returns the player's current status snapshot.
func (p *Player) Status() Status { return p.status }

// SetDifficulty updates the mutable difficulty bitset.
func (p *Player) SetDifficulty(d Difficulty) { p.difficulty = d }

// Difficulty returns the current difficulty bitset.
func (p *Player) Difficulty() Difficulty { return p.difficulty }

// SetTorchFlags updates the mutable torch-related bitset.
func (p *Player) SetTorchFlags(f TorchFlags) { p.torches = f }

// TorchFlags returns the current torch-related bitset.
func (p *Player) TorchFlags() TorchFlags { return p.torches }

// ApplyInventorySlot validates and stores an inventory write from the wire
// protocol's PlayerInventorySlot packet.
func (p *Player) ApplyInventorySlot(pkt protocol.PlayerInventorySlot) (Partition, error) {
	return p.Inventory.SetSlot(pkt.Index, pkt.Amount, pkt.Prefix, pkt.NetID)
}
