package protocol

import (
	"bytes"
	"fmt"

	"github.com/duskvault/terrasrv/internal/binutil"
)

// FrameHeaderSize is the number of bytes of fixed header every frame
// carries before its payload: u16 total_length + u8 message_type.
const FrameHeaderSize = 3

// MaxFrameSize bounds total_length against a maliciously large declared
// size before any allocation is attempted.
const MaxFrameSize = 1 << 16

// Frame is one decoded wire frame: its message type and raw payload bytes,
// not yet interpreted as a specific packet.
type Frame struct {
	Type    uint8
	Payload []byte
}

// ErrNeedMore signals the pending buffer does not yet hold a complete frame.
var ErrNeedMore = fmt.Errorf("need more bytes to complete frame")

// DecodeFrame attempts to consume one complete frame from the front of buf.
// It returns the frame, the number of bytes consumed, and an error. If buf
// holds fewer bytes than the declared total_length, it returns ErrNeedMore
// and 0 consumed; the caller should wait for more data and retry. A frame
// is never partially consumed: either the whole frame is taken atomically
// or nothing is.
func DecodeFrame(buf []byte) (Frame, int, error) {
	if len(buf) < 2 {
		return Frame{}, 0, ErrNeedMore
	}
	totalLength := int(buf[0]) | int(buf[1])<<8
	if totalLength < FrameHeaderSize || totalLength > MaxFrameSize {
		return Frame{}, 0, fmt.Errorf("%w: declared %d", ErrInvalidSize, totalLength)
	}
	if len(buf) < totalLength {
		return Frame{}, 0, ErrNeedMore
	}

	msgType := buf[2]
	payload := buf[FrameHeaderSize:totalLength]
	return Frame{Type: msgType, Payload: payload}, totalLength, nil
}

// EncodeFrame serializes a frame with the given type and payload, prefixed
// with the u16 total_length and message_type byte.
func EncodeFrame(msgType uint8, payload []byte) []byte {
	totalLength := FrameHeaderSize + len(payload)
	out := make([]byte, 0, totalLength)
	out = append(out, byte(totalLength), byte(totalLength>>8), msgType)
	out = append(out, payload...)
	return out
}

func newPayloadReader(payload []byte) *binutil.Reader {
	return binutil.NewReader(bytes.NewReader(payload))
}

// DecodeInbound dispatches on frame.Type and parses its payload into one of
// the inbound packet structs, returned as `any`. ErrUnknownType is returned
// for a type byte with no handler; ErrMalformedField wraps any field-level
// parse failure.
func DecodeInbound(frame Frame) (any, error) {
	r := newPayloadReader(frame.Payload)

	switch frame.Type {
	case TypeConnectRequest:
		tag, err := r.VarString()
		if err != nil {
			return nil, fmt.Errorf("%w: connect request protocol tag: %v", ErrMalformedField, err)
		}
		return ConnectRequest{ProtocolTag: tag}, nil

	case TypePlayerAppearance:
		var p PlayerAppearance
		var err error
		if p.Slot, err = r.U8(); err != nil {
			return nil, malformed("appearance slot", err)
		}
		if p.Skin, err = r.U8(); err != nil {
			return nil, malformed("appearance skin", err)
		}
		if p.Hair, err = r.U8(); err != nil {
			return nil, malformed("appearance hair", err)
		}
		if p.Name, err = r.VarString(); err != nil {
			return nil, malformed("appearance name", err)
		}
		for i := range p.Flags {
			if p.Flags[i], err = r.U8(); err != nil {
				return nil, malformed("appearance flags", err)
			}
		}
		for i := range p.Colors {
			if p.Colors[i].R, err = r.U8(); err != nil {
				return nil, malformed("appearance color r", err)
			}
			if p.Colors[i].G, err = r.U8(); err != nil {
				return nil, malformed("appearance color g", err)
			}
			if p.Colors[i].B, err = r.U8(); err != nil {
				return nil, malformed("appearance color b", err)
			}
		}
		for i := range p.Traits {
			if p.Traits[i], err = r.U8(); err != nil {
				return nil, malformed("appearance traits", err)
			}
		}
		return p, nil

	case TypePlayerInventorySlot:
		var p PlayerInventorySlot
		var err error
		if p.Slot, err = r.U8(); err != nil {
			return nil, malformed("inventory slot", err)
		}
		if p.Index, err = r.U16(); err != nil {
			return nil, malformed("inventory index", err)
		}
		if p.Amount, err = r.U16(); err != nil {
			return nil, malformed("inventory amount", err)
		}
		if p.Prefix, err = r.U8(); err != nil {
			return nil, malformed("inventory prefix", err)
		}
		if p.NetID, err = r.U16(); err != nil {
			return nil, malformed("inventory net id", err)
		}
		return p, nil

	case TypeWorldDataRequest:
		return WorldDataRequest{}, nil

	case TypeEssentialTilesRequest:
		var p EssentialTilesRequest
		var err error
		if p.X, err = r.I32(); err != nil {
			return nil, malformed("essential tiles x", err)
		}
		if p.Y, err = r.I32(); err != nil {
			return nil, malformed("essential tiles y", err)
		}
		return p, nil

	case TypePlayerHp:
		var p PlayerHp
		var err error
		if p.Slot, err = r.U8(); err != nil {
			return nil, malformed("hp slot", err)
		}
		if p.Hp, err = r.U16(); err != nil {
			return nil, malformed("hp", err)
		}
		if p.MaxHp, err = r.U16(); err != nil {
			return nil, malformed("max hp", err)
		}
		return p, nil

	case TypePlayerMana:
		var p PlayerMana
		var err error
		if p.Slot, err = r.U8(); err != nil {
			return nil, malformed("mana slot", err)
		}
		if p.Mana, err = r.U16(); err != nil {
			return nil, malformed("mana", err)
		}
		if p.MaxMana, err = r.U16(); err != nil {
			return nil, malformed("max mana", err)
		}
		return p, nil

	case TypePlayerBuff:
		var p PlayerBuff
		var err error
		if p.Slot, err = r.U8(); err != nil {
			return nil, malformed("buff slot", err)
		}
		for i := range p.BuffIDs {
			if p.BuffIDs[i], err = r.U16(); err != nil {
				return nil, malformed("buff id", err)
			}
		}
		return p, nil

	case TypePlayerUUID:
		uuid, err := r.VarString()
		if err != nil {
			return nil, malformed("player uuid", err)
		}
		return PlayerUUID{UUID: uuid}, nil

	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownType, frame.Type)
	}
}

func malformed(field string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedField, field, err)
}

// EncodeLocalizedText writes a LocalizedText value, recursively encoding
// its substitutions when present.
func EncodeLocalizedText(w *binutil.Writer, t LocalizedText) {
	w.U8(uint8(t.Mode))
	w.VarString(t.Text)
	if t.Mode == TextLiteral {
		return
	}
	w.U8(uint8(len(t.Substitutions)))
	for _, sub := range t.Substitutions {
		EncodeLocalizedText(w, sub)
	}
}

// DecodeLocalizedText reads a LocalizedText value, recursively decoding its
// substitutions when present.
func DecodeLocalizedText(r *binutil.Reader) (LocalizedText, error) {
	mode, err := r.U8()
	if err != nil {
		return LocalizedText{}, fmt.Errorf("read mode: %w", err)
	}
	text, err := r.VarString()
	if err != nil {
		return LocalizedText{}, fmt.Errorf("read text: %w", err)
	}
	t := LocalizedText{Mode: LocalizedTextMode(mode), Text: text}
	if t.Mode == TextLiteral {
		return t, nil
	}

	count, err := r.U8()
	if err != nil {
		return LocalizedText{}, fmt.Errorf("read substitution count: %w", err)
	}
	t.Substitutions = make([]LocalizedText, count)
	for i := range t.Substitutions {
		if t.Substitutions[i], err = DecodeLocalizedText(r); err != nil {
			return LocalizedText{}, fmt.Errorf("read substitution %d: %w", i, err)
		}
	}
	return t, nil
}

// EncodeOutbound serializes one of the outbound packet structs into a full
// wire frame, dispatching on its concrete type.
func EncodeOutbound(p any) ([]byte, error) {
	buf := binutil.NewWriter()

	switch v := p.(type) {
	case Disconnect:
		EncodeLocalizedText(buf, v.Reason)
		return EncodeFrame(TypeDisconnect, buf.Bytes()), nil

	case SetUserSlot:
		buf.U8(v.Slot)
		return EncodeFrame(TypeSetUserSlot, buf.Bytes()), nil

	case WorldInfo:
		return EncodeFrame(TypeWorldInfo, v.Payload), nil

	case Status:
		buf.I32(v.Max)
		EncodeLocalizedText(buf, v.Text)
		buf.U8(v.Flags)
		return EncodeFrame(TypeStatus, buf.Bytes()), nil

	default:
		return nil, fmt.Errorf("protocol: unsupported outbound packet type %T", p)
	}
}
