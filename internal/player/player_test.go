package player

import (
	"errors"
	"testing"

	"github.com/duskvault/terrasrv/internal/protocol"
)

func TestOneWriteNameThenRejectsSecondWrite(t *testing.T) {
	p := New(3)
	if err := p.SetName("Red"); err != nil {
		t.Fatalf("first SetName: %v", err)
	}
	if err := p.SetName("Blue"); !errors.Is(err, ErrWrongField) {
		t.Fatalf("second SetName: got %v, want ErrWrongField", err)
	}
	name, ok := p.Name()
	if !ok || name != "Red" {
		t.Fatalf("name = %q, %v; want Red, true (first write should stick)", name, ok)
	}
}

func TestSetNameRejectsEmptyName(t *testing.T) {
	p := New(0)
	if err := p.SetName(""); !errors.Is(err, ErrInvalidField) {
		t.Fatalf("SetName(\"\"): got %v, want ErrInvalidField", err)
	}
	if _, ok := p.Name(); ok {
		t.Fatal("name should remain unset after a rejected empty write")
	}
}

func TestOneWriteAppearance(t *testing.T) {
	p := New(0)
	pkt := protocol.PlayerAppearance{Skin: 1, Hair: 2, Name: "Red"}
	if err := p.SetAppearance(pkt); err != nil {
		t.Fatalf("first SetAppearance: %v", err)
	}
	if err := p.SetAppearance(pkt); !errors.Is(err, ErrWrongField) {
		t.Fatalf("second SetAppearance: got %v, want ErrWrongField", err)
	}
}

func TestOneWriteMaxHpAndMutableHp(t *testing.T) {
	p := New(0)
	if err := p.SetHp(50); err == nil {
		t.Fatal("expected error writing hp before max_hp is set")
	}
	if err := p.SetMaxHp(400); err != nil {
		t.Fatalf("SetMaxHp: %v", err)
	}
	if err := p.SetMaxHp(500); !errors.Is(err, ErrWrongField) {
		t.Fatalf("second SetMaxHp: got %v, want ErrWrongField", err)
	}
	if err := p.SetHp(200); err != nil {
		t.Fatalf("SetHp after max_hp established: %v", err)
	}
	if got := p.Status().Hp; got != 200 {
		t.Fatalf("hp = %d, want 200", got)
	}
}

func TestUUIDSettableOnceThenImmutable(t *testing.T) {
	p := New(0)
	if err := p.SetUUID("abc-123"); err != nil {
		t.Fatalf("first SetUUID: %v", err)
	}
	if err := p.SetUUID("def-456"); !errors.Is(err, ErrWrongField) {
		t.Fatalf("second SetUUID: got %v, want ErrWrongField", err)
	}
}

func TestDifficultyAndTorchFlagsAreMutable(t *testing.T) {
	p := New(0)
	p.SetDifficulty(DifficultyHardcore | DifficultyExtraAccessory)
	if p.Difficulty() != DifficultyHardcore|DifficultyExtraAccessory {
		t.Fatalf("unexpected difficulty: %v", p.Difficulty())
	}
	p.SetDifficulty(DifficultySoftcore)
	if p.Difficulty() != DifficultySoftcore {
		t.Fatal("expected difficulty to remain mutable across writes")
	}

	p.SetTorchFlags(TorchUsingBiomeTorches)
	if p.TorchFlags() != TorchUsingBiomeTorches {
		t.Fatalf("unexpected torch flags: %v", p.TorchFlags())
	}
}

func TestInventoryPartitionBoundaries(t *testing.T) {
	cases := []struct {
		index     uint16
		partition Partition
		offset    uint16
	}{
		{0, PartitionMain, 0},
		{58, PartitionMain, 58},
		{59, PartitionArmorVanity, 0},
		{78, PartitionArmorVanity, 19},
		{79, PartitionDye, 0},
		{88, PartitionDye, 9},
		{89, PartitionMiscEquips, 0},
		{93, PartitionMiscEquips, 4},
		{94, PartitionMiscDyes, 0},
		{98, PartitionMiscDyes, 4},
		{99, PartitionPiggyBank, 0},
		{138, PartitionPiggyBank, 39},
		{139, PartitionSafe, 0},
		{178, PartitionSafe, 39},
		{179, PartitionTrash, 0},
		{180, PartitionDefendersForge, 0},
		{219, PartitionDefendersForge, 39},
		{220, PartitionVoidVault, 0},
		{259, PartitionVoidVault, 39},
	}
	for _, c := range cases {
		partition, offset, err := resolvePartition(c.index)
		if err != nil {
			t.Fatalf("resolvePartition(%d): %v", c.index, err)
		}
		if partition != c.partition || offset != c.offset {
			t.Fatalf("resolvePartition(%d) = %v,%d want %v,%d", c.index, partition, offset, c.partition, c.offset)
		}
	}

	if _, _, err := resolvePartition(InventorySlotCount); !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("resolvePartition(%d): got %v, want ErrSlotOutOfRange", InventorySlotCount, err)
	}
}

func TestApplyInventorySlotRejectsOutOfRange(t *testing.T) {
	p := New(0)
	_, err := p.ApplyInventorySlot(protocol.PlayerInventorySlot{Index: InventorySlotCount + 1})
	if !errors.Is(err, ErrSlotOutOfRange) {
		t.Fatalf("got %v, want ErrSlotOutOfRange", err)
	}
}

func TestApplyInventorySlotWithinRange(t *testing.T) {
	p := New(0)
	partition, err := p.ApplyInventorySlot(protocol.PlayerInventorySlot{Slot: 0, Index: 99, Amount: 5, Prefix: 1, NetID: 42})
	if err != nil {
		t.Fatalf("ApplyInventorySlot: %v", err)
	}
	if partition != PartitionPiggyBank {
		t.Fatalf("got partition %v, want PartitionPiggyBank", partition)
	}
	slot, ok := p.Inventory.Slot(99)
	if !ok || slot.NetID != 42 || slot.Amount != 5 {
		t.Fatalf("unexpected slot contents: %+v, ok=%v", slot, ok)
	}
}
