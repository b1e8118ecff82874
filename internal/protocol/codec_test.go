package protocol

import (
	"bytes"
	"errors"
	"testing"

	"github.com/duskvault/terrasrv/internal/binutil"
)

func TestFrameRoundTripConnectRequest(t *testing.T) {
	w := binutil.NewWriter()
	w.VarString("terraria230")
	frame := EncodeFrame(TypeConnectRequest, w.Bytes())

	f, n, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if n != len(frame) {
		t.Fatalf("consumed %d, want %d", n, len(frame))
	}

	got, err := DecodeInbound(f)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	req, ok := got.(ConnectRequest)
	if !ok {
		t.Fatalf("got %T, want ConnectRequest", got)
	}
	if req.ProtocolTag != "terraria230" {
		t.Fatalf("got tag %q", req.ProtocolTag)
	}
}

func TestFrameNeedMoreOnPartialData(t *testing.T) {
	w := binutil.NewWriter()
	w.VarString("x")
	full := EncodeFrame(TypeConnectRequest, w.Bytes())

	for i := 0; i < len(full); i++ {
		_, _, err := DecodeFrame(full[:i])
		if !errors.Is(err, ErrNeedMore) {
			t.Fatalf("prefix len %d: got err %v, want ErrNeedMore", i, err)
		}
	}

	_, n, err := DecodeFrame(full)
	if err != nil {
		t.Fatalf("full frame: unexpected error %v", err)
	}
	if n != len(full) {
		t.Fatalf("consumed %d, want %d", n, len(full))
	}
}

func TestFrameWorldDataRequestEmptyPayload(t *testing.T) {
	frame := EncodeFrame(TypeWorldDataRequest, nil)
	if len(frame) != FrameHeaderSize {
		t.Fatalf("expected 3-byte frame, got %d", len(frame))
	}

	f, n, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if n != FrameHeaderSize {
		t.Fatalf("consumed %d, want %d", n, FrameHeaderSize)
	}

	got, err := DecodeInbound(f)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	if _, ok := got.(WorldDataRequest); !ok {
		t.Fatalf("got %T, want WorldDataRequest", got)
	}
}

func TestFrameRejectsUnknownType(t *testing.T) {
	frame := EncodeFrame(200, []byte{1, 2, 3})
	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	_, err = DecodeInbound(f)
	if !errors.Is(err, ErrUnknownType) {
		t.Fatalf("got %v, want ErrUnknownType", err)
	}
}

func TestFrameLargeDeclaredLengthWaitsAndUndersizedIsRejected(t *testing.T) {
	buf := []byte{0xFF, 0xFF, byte(TypeConnectRequest)}
	_, _, err := DecodeFrame(buf)
	if !errors.Is(err, ErrNeedMore) {
		t.Fatalf("declared length within MaxFrameSize should wait for more data, got %v", err)
	}

	buf2 := []byte{0x01, 0x00, byte(TypeConnectRequest)}
	_, _, err = DecodeFrame(buf2)
	if !errors.Is(err, ErrInvalidSize) {
		t.Fatalf("got %v, want ErrInvalidSize for declared length below header size", err)
	}
}

func TestFrameRejectsMalformedField(t *testing.T) {
	// Declares a varstring length far longer than the remaining payload.
	frame := EncodeFrame(TypeConnectRequest, []byte{0x7F})
	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	_, err = DecodeInbound(f)
	if !errors.Is(err, ErrMalformedField) {
		t.Fatalf("got %v, want ErrMalformedField", err)
	}
}

func TestPlayerAppearanceRoundTrip(t *testing.T) {
	w := binutil.NewWriter()
	w.U8(3)
	w.U8(10)
	w.U8(20)
	w.VarString("Red")
	for i := 0; i < 4; i++ {
		w.U8(uint8(i))
	}
	for i := 0; i < 7; i++ {
		w.U8(uint8(i))
		w.U8(uint8(i + 1))
		w.U8(uint8(i + 2))
	}
	w.U8(1)
	w.U8(2)
	frame := EncodeFrame(TypePlayerAppearance, w.Bytes())

	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	got, err := DecodeInbound(f)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	p, ok := got.(PlayerAppearance)
	if !ok {
		t.Fatalf("got %T, want PlayerAppearance", got)
	}
	if p.Name != "Red" || p.Slot != 3 || p.Skin != 10 || p.Hair != 20 {
		t.Fatalf("unexpected appearance: %+v", p)
	}
	if p.Colors[6] != (RGB{R: 6, G: 7, B: 8}) {
		t.Fatalf("unexpected last color: %+v", p.Colors[6])
	}
	if p.Traits != [2]uint8{1, 2} {
		t.Fatalf("unexpected traits: %+v", p.Traits)
	}
}

func TestPlayerBuffRoundTrip(t *testing.T) {
	w := binutil.NewWriter()
	w.U8(1)
	for i := 0; i < BuffSlotCount; i++ {
		w.U16(uint16(100 + i))
	}
	frame := EncodeFrame(TypePlayerBuff, w.Bytes())

	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	got, err := DecodeInbound(f)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	p, ok := got.(PlayerBuff)
	if !ok {
		t.Fatalf("got %T, want PlayerBuff", got)
	}
	if p.BuffIDs[0] != 100 || p.BuffIDs[BuffSlotCount-1] != 100+BuffSlotCount-1 {
		t.Fatalf("unexpected buff ids: %+v", p.BuffIDs)
	}
}

func TestEssentialTilesRequestRoundTrip(t *testing.T) {
	w := binutil.NewWriter()
	w.I32(-100)
	w.I32(250)
	frame := EncodeFrame(TypeEssentialTilesRequest, w.Bytes())

	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	got, err := DecodeInbound(f)
	if err != nil {
		t.Fatalf("DecodeInbound: %v", err)
	}
	p, ok := got.(EssentialTilesRequest)
	if !ok {
		t.Fatalf("got %T, want EssentialTilesRequest", got)
	}
	if p.X != -100 || p.Y != 250 {
		t.Fatalf("unexpected coords: %+v", p)
	}
}

func TestLocalizedTextRoundTripLiteral(t *testing.T) {
	in := LocalizedText{Mode: TextLiteral, Text: "You died."}
	w := binutil.NewWriter()
	EncodeLocalizedText(w, in)

	r := binutil.NewReader(bytes.NewReader(w.Bytes()))
	got, err := DecodeLocalizedText(r)
	if err != nil {
		t.Fatalf("DecodeLocalizedText: %v", err)
	}
	if got.Mode != TextLiteral || got.Text != "You died." || len(got.Substitutions) != 0 {
		t.Fatalf("unexpected literal text: %+v", got)
	}
}

func TestLocalizedTextRoundTripWithSubstitutions(t *testing.T) {
	in := LocalizedText{
		Mode: TextFormattable,
		Text: "{0} was slain by {1}",
		Substitutions: []LocalizedText{
			{Mode: TextLiteral, Text: "Bob"},
			{
				Mode: TextLocalizationKey,
				Text: "Mobs.Zombie.DisplayName",
				Substitutions: []LocalizedText{
					{Mode: TextLiteral, Text: "nested"},
				},
			},
		},
	}
	w := binutil.NewWriter()
	EncodeLocalizedText(w, in)

	r := binutil.NewReader(bytes.NewReader(w.Bytes()))
	got, err := DecodeLocalizedText(r)
	if err != nil {
		t.Fatalf("DecodeLocalizedText: %v", err)
	}
	if got.Mode != TextFormattable || len(got.Substitutions) != 2 {
		t.Fatalf("unexpected top level: %+v", got)
	}
	if got.Substitutions[0].Text != "Bob" {
		t.Fatalf("unexpected first substitution: %+v", got.Substitutions[0])
	}
	nested := got.Substitutions[1]
	if nested.Mode != TextLocalizationKey || len(nested.Substitutions) != 1 || nested.Substitutions[0].Text != "nested" {
		t.Fatalf("unexpected nested substitution: %+v", nested)
	}
}

func TestEncodeOutboundDisconnect(t *testing.T) {
	p := Disconnect{Reason: LocalizedText{Mode: TextLiteral, Text: "kicked"}}
	frame, err := EncodeOutbound(p)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}

	f, n, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if n != len(frame) {
		t.Fatalf("consumed %d, want %d", n, len(frame))
	}
	if f.Type != TypeDisconnect {
		t.Fatalf("got type %d, want %d", f.Type, TypeDisconnect)
	}

	r := binutil.NewReader(bytes.NewReader(f.Payload))
	reason, err := DecodeLocalizedText(r)
	if err != nil {
		t.Fatalf("DecodeLocalizedText: %v", err)
	}
	if reason.Text != "kicked" {
		t.Fatalf("unexpected reason: %+v", reason)
	}
}

func TestEncodeOutboundWorldInfo(t *testing.T) {
	payload := []byte{1, 2, 3, 4, 5}
	frame, err := EncodeOutbound(WorldInfo{Payload: payload})
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if f.Type != TypeWorldInfo {
		t.Fatalf("got type %d, want %d", f.Type, TypeWorldInfo)
	}
	if !bytes.Equal(f.Payload, payload) {
		t.Fatalf("payload mismatch: got %x want %x", f.Payload, payload)
	}
}

func TestEncodeOutboundStatus(t *testing.T) {
	p := Status{Max: 100, Text: LocalizedText{Mode: TextLiteral, Text: "Loading world..."}, Flags: 0x01}
	frame, err := EncodeOutbound(p)
	if err != nil {
		t.Fatalf("EncodeOutbound: %v", err)
	}
	f, _, err := DecodeFrame(frame)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	r := binutil.NewReader(bytes.NewReader(f.Payload))
	max, err := r.I32()
	if err != nil || max != 100 {
		t.Fatalf("unexpected max: %d, err %v", max, err)
	}
	text, err := DecodeLocalizedText(r)
	if err != nil || text.Text != "Loading world..." {
		t.Fatalf("unexpected text: %+v, err %v", text, err)
	}
	flags, err := r.U8()
	if err != nil || flags != 0x01 {
		t.Fatalf("unexpected flags: %d, err %v", flags, err)
	}
}

func TestEncodeOutboundUnsupportedType(t *testing.T) {
	_, err := EncodeOutbound(ConnectRequest{})
	if err == nil {
		t.Fatal("expected error for unsupported outbound type")
	}
}
