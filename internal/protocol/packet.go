// Package protocol implements the framed wire protocol spoken between a
// client and the session core: message framing, the inbound/outbound
// packet catalog, and the recursive LocalizedText substitution structure.
package protocol

import "errors"

// Message type bytes, per the protocol's message catalog.
const (
	TypeConnectRequest        uint8 = 1
	TypeDisconnect            uint8 = 2
	TypeSetUserSlot           uint8 = 3
	TypePlayerAppearance      uint8 = 4
	TypePlayerInventorySlot   uint8 = 5
	TypeWorldDataRequest      uint8 = 6
	TypeWorldInfo             uint8 = 7
	TypeEssentialTilesRequest uint8 = 8
	TypeStatus                uint8 = 9
	TypePlayerHp              uint8 = 16
	TypePlayerMana            uint8 = 42
	TypePlayerBuff            uint8 = 50
	TypePlayerUUID            uint8 = 68
)

// BuffSlotCount is the fixed number of buff ids a PlayerBuff packet carries.
const BuffSlotCount = 22

// RGB is a single RGB color triple.
type RGB struct {
	R, G, B uint8
}

// Decoder failure modes.
var (
	ErrInvalidSize    = errors.New("frame declares a size outside the valid frame range")
	ErrUnknownType    = errors.New("unknown message type")
	ErrMalformedField = errors.New("malformed field in packet payload")
)

// LocalizedTextMode selects how a LocalizedText's text field is interpreted.
type LocalizedTextMode uint8

const (
	TextLiteral LocalizedTextMode = iota
	TextFormattable
	TextLocalizationKey
)

// LocalizedText is a recursively-substitutable text value: Formattable and
// LocalizationKey modes carry further LocalizedText values as substitution
// arguments.
type LocalizedText struct {
	Mode          LocalizedTextMode
	Text          string
	Substitutions []LocalizedText
}

// ConnectRequest is inbound message type 1.
type ConnectRequest struct {
	ProtocolTag string
}

// PlayerAppearance is inbound message type 4.
type PlayerAppearance struct {
	Slot   uint8
	Skin   uint8
	Hair   uint8
	Name   string
	Flags  [4]uint8
	Colors [7]RGB
	Traits [2]uint8
}

// PlayerInventorySlot is inbound message type 5.
type PlayerInventorySlot struct {
	Slot   uint8
	Index  uint16
	Amount uint16
	Prefix uint8
	NetID  uint16
}

// WorldDataRequest is inbound message type 6; it carries no payload.
type WorldDataRequest struct{}

// EssentialTilesRequest is inbound message type 8.
type EssentialTilesRequest struct {
	X, Y int32
}

// PlayerHp is inbound message type 16.
type PlayerHp struct {
	Slot  uint8
	Hp    uint16
	MaxHp uint16
}

// PlayerMana is inbound message type 42.
type PlayerMana struct {
	Slot    uint8
	Mana    uint16
	MaxMana uint16
}

// PlayerBuff is inbound message type 50.
type PlayerBuff struct {
	Slot    uint8
	BuffIDs [BuffSlotCount]uint16
}

// PlayerUUID is inbound message type 68.
type PlayerUUID struct {
	UUID string
}

// Disconnect is outbound message type 2.
type Disconnect struct {
	Reason LocalizedText
}

// SetUserSlot is outbound message type 3.
type SetUserSlot struct {
	Slot uint8
}

// WorldInfo is outbound message type 7; Payload is the pre-serialized blob
// produced by internal/world.InfoCache.
type WorldInfo struct {
	Payload []byte
}

// Status is outbound message type 9.
type Status struct {
	Max   int32
	Text  LocalizedText
	Flags uint8
}
