// Package player implements per-connection player state: the one-write
// identity/status fields, the inventory partition table, and the
// difficulty/torch bitflags carried as single bytes.
package player

import "github.com/duskvault/terrasrv/internal/protocol"

// Difficulty is a single-byte bitset, read and written as one wire byte.
type Difficulty uint8

const (
	DifficultySoftcore       Difficulty = 0
	DifficultyMediumcore     Difficulty = 1 << 0
	DifficultyHardcore       Difficulty = 1 << 1
	DifficultyExtraAccessory Difficulty = 1 << 2
	DifficultyCreative       Difficulty = 1 << 3
)

// TorchFlags is a single-byte bitset for the torch-god-related toggles.
type TorchFlags uint8

const (
	TorchUsingBiomeTorches TorchFlags = 1 << 0
	TorchHappyFunTorchTime TorchFlags = 1 << 1
)

// Appearance is a player's one-write visual identity.
type Appearance struct {
	Skin   uint8
	Hair   uint8
	Name   string
	Flags  [4]uint8
	Colors [7]protocol.RGB
	Traits [2]uint8
}

// appearanceFromPacket builds an Appearance from the wire payload.
func appearanceFromPacket(p protocol.PlayerAppearance) Appearance {
	return Appearance{
		Skin:   p.Skin,
		Hair:   p.Hair,
		Name:   p.Name,
		Flags:  p.Flags,
		Colors: p.Colors,
		Traits: p.Traits,
	}
}
