package player

import (
	"errors"
	"fmt"
)

// ErrSlotOutOfRange is returned when an inventory index falls outside
// every partition in the table.
var ErrSlotOutOfRange = errors.New("player: inventory index out of range")

// Partition names the region of the flat inventory index space a slot
// write falls into.
type Partition uint8

const (
	PartitionMain Partition = iota
	PartitionArmorVanity
	PartitionDye
	PartitionMiscEquips
	PartitionMiscDyes
	PartitionPiggyBank
	PartitionSafe
	PartitionTrash
	PartitionDefendersForge
	PartitionVoidVault
)

func (p Partition) String() string {
	switch p {
	case PartitionMain:
		return "main"
	case PartitionArmorVanity:
		return "armor_vanity"
	case PartitionDye:
		return "dye"
	case PartitionMiscEquips:
		return "misc_equips"
	case PartitionMiscDyes:
		return "misc_dyes"
	case PartitionPiggyBank:
		return "piggy_bank"
	case PartitionSafe:
		return "safe"
	case PartitionTrash:
		return "trash"
	case PartitionDefendersForge:
		return "defenders_forge"
	case PartitionVoidVault:
		return "void_vault"
	default:
		return "unknown"
	}
}

// partitionRange is one contiguous span of the flat inventory index space.
type partitionRange struct {
	partition Partition
	start, n  uint16
}

// partitionTable lists every partition in index order. Boundaries are part
// of the wire protocol and must match exactly.
var partitionTable = buildPartitionTable([]struct {
	partition Partition
	size      uint16
}{
	{PartitionMain, 59},
	{PartitionArmorVanity, 20},
	{PartitionDye, 10},
	{PartitionMiscEquips, 5},
	{PartitionMiscDyes, 5},
	{PartitionPiggyBank, 40},
	{PartitionSafe, 40},
	{PartitionTrash, 1},
	{PartitionDefendersForge, 40},
	{PartitionVoidVault, 40},
})

// InventorySlotCount is the total number of addressable inventory indices
// across every partition.
var InventorySlotCount = func() uint16 {
	var n uint16
	for _, r := range partitionTable {
		n += r.n
	}
	return n
}()

func buildPartitionTable(spans []struct {
	partition Partition
	size      uint16
}) []partitionRange {
	table := make([]partitionRange, 0, len(spans))
	var cursor uint16
	for _, s := range spans {
		table = append(table, partitionRange{partition: s.partition, start: cursor, n: s.size})
		cursor += s.size
	}
	return table
}

// resolvePartition maps a flat inventory index to its partition and the
// offset within that partition, failing if index lies outside every span.
func resolvePartition(index uint16) (Partition, uint16, error) {
	for _, r := range partitionTable {
		if index >= r.start && index < r.start+r.n {
			return r.partition, index - r.start, nil
		}
	}
	return 0, 0, fmt.Errorf("%w: index %d (max %d)", ErrSlotOutOfRange, index, InventorySlotCount-1)
}

// InventorySlot is one item stack held at a resolved inventory index.
type InventorySlot struct {
	Partition Partition
	Offset    uint16
	Amount    uint16
	Prefix    uint8
	NetID     uint16
}

// Inventory is the player's full flat-indexed item container.
type Inventory struct {
	slots map[uint16]InventorySlot
}

// NewInventory returns an empty inventory.
func NewInventory() *Inventory {
	return &Inventory{slots: make(map[uint16]InventorySlot)}
}

// SetSlot validates index against the partition table and stores the slot
// contents, returning the resolved partition.
func (inv *Inventory) SetSlot(index, amount uint16, prefix uint8, netID uint16) (Partition, error) {
	partition, offset, err := resolvePartition(index)
	if err != nil {
		return 0, err
	}
	inv.slots[index] = InventorySlot{
		Partition: partition,
		Offset:    offset,
		Amount:    amount,
		Prefix:    prefix,
		NetID:     netID,
	}
	return partition, nil
}

// Slot returns the contents stored at index, if any.
func (inv *Inventory) Slot(index uint16) (InventorySlot, bool) {
	s, ok := inv.slots[index]
	return s, ok
}
