package session

import (
	"net"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/duskvault/terrasrv/internal/binutil"
	"github.com/duskvault/terrasrv/internal/protocol"
)

func encodeConnectRequest(t *testing.T, tag string) []byte {
	t.Helper()
	buf := binutil.NewWriter()
	buf.VarString(tag)
	return protocol.EncodeFrame(protocol.TypeConnectRequest, buf.Bytes())
}

func readFrame(t *testing.T, conn net.Conn) protocol.Frame {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	header := make([]byte, 2)
	if _, err := readExact(conn, header); err != nil {
		t.Fatalf("read length header: %v", err)
	}
	totalLength := int(header[0]) | int(header[1])<<8

	rest := make([]byte, totalLength-2)
	if _, err := readExact(conn, rest); err != nil {
		t.Fatalf("read frame body: %v", err)
	}

	full := append(header, rest...)
	frame, _, err := protocol.DecodeFrame(full)
	if err != nil {
		t.Fatalf("decode frame: %v", err)
	}
	return frame
}

func readExact(conn net.Conn, buf []byte) (int, error) {
	total := 0
	for total < len(buf) {
		n, err := conn.Read(buf[total:])
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

func TestClientHandshakeAcceptsMatchingProtocolTag(t *testing.T) {
	server, conn := net.Pipe()
	defer conn.Close()

	reg := NewRegistry(zap.NewNop())
	go reg.Run()
	w := NewWorldManager(newTestWorld(t), zap.NewNop())
	go w.Run()

	client := NewClient(reg.Actions(), w.Actions(), zap.NewNop())
	go client.Serve(server)

	if _, err := conn.Write(encodeConnectRequest(t, protocolTag)); err != nil {
		t.Fatalf("write connect request: %v", err)
	}

	frame := readFrame(t, conn)
	if frame.Type != protocol.TypeSetUserSlot {
		t.Fatalf("expected SetUserSlot, got type %d", frame.Type)
	}
}

func TestClientHandshakeRejectsWrongProtocolTag(t *testing.T) {
	server, conn := net.Pipe()
	defer conn.Close()

	reg := NewRegistry(zap.NewNop())
	go reg.Run()
	w := NewWorldManager(newTestWorld(t), zap.NewNop())
	go w.Run()

	client := NewClient(reg.Actions(), w.Actions(), zap.NewNop())
	go client.Serve(server)

	if _, err := conn.Write(encodeConnectRequest(t, "WrongTag")); err != nil {
		t.Fatalf("write connect request: %v", err)
	}

	frame := readFrame(t, conn)
	if frame.Type != protocol.TypeDisconnect {
		t.Fatalf("expected Disconnect, got type %d", frame.Type)
	}
}

func TestClientAppearanceConnectsToRegistry(t *testing.T) {
	server, conn := net.Pipe()
	defer conn.Close()

	reg := NewRegistry(zap.NewNop())
	go reg.Run()
	w := NewWorldManager(newTestWorld(t), zap.NewNop())
	go w.Run()

	client := NewClient(reg.Actions(), w.Actions(), zap.NewNop())
	go client.Serve(server)

	if _, err := conn.Write(encodeConnectRequest(t, protocolTag)); err != nil {
		t.Fatalf("write connect request: %v", err)
	}
	readFrame(t, conn) // SetUserSlot

	appearance := binutil.NewWriter()
	appearance.U8(0) // slot
	appearance.U8(0) // skin
	appearance.U8(0) // hair
	appearance.VarString("tester")
	for i := 0; i < 4; i++ {
		appearance.U8(0)
	}
	for i := 0; i < 7; i++ {
		appearance.U8(0)
		appearance.U8(0)
		appearance.U8(0)
	}
	for i := 0; i < 2; i++ {
		appearance.U8(0)
	}
	if _, err := conn.Write(protocol.EncodeFrame(protocol.TypePlayerAppearance, appearance.Bytes())); err != nil {
		t.Fatalf("write appearance: %v", err)
	}

	// Give the writer goroutine a moment to apply the appearance and
	// register the client before the test tears everything down.
	time.Sleep(100 * time.Millisecond)

	reg.Actions() <- Broadcast{Packet: protocol.Status{Text: protocol.LocalizedText{Mode: protocol.TextLiteral, Text: "ping"}}}

	frame := readFrame(t, conn)
	if frame.Type != protocol.TypeStatus {
		t.Fatalf("expected the newly connected client to receive the broadcast over the wire, got type %d", frame.Type)
	}
}

func encodePlayerHp(t *testing.T, slot uint8, hp, maxHp uint16) []byte {
	t.Helper()
	buf := binutil.NewWriter()
	buf.U8(slot)
	buf.U16(hp)
	buf.U16(maxHp)
	return protocol.EncodeFrame(protocol.TypePlayerHp, buf.Bytes())
}

func TestSecondPlayerHpClosesTheSocket(t *testing.T) {
	server, conn := net.Pipe()
	defer conn.Close()

	reg := NewRegistry(zap.NewNop())
	go reg.Run()
	w := NewWorldManager(newTestWorld(t), zap.NewNop())
	go w.Run()

	client := NewClient(reg.Actions(), w.Actions(), zap.NewNop())
	go client.Serve(server)

	if _, err := conn.Write(encodeConnectRequest(t, protocolTag)); err != nil {
		t.Fatalf("write connect request: %v", err)
	}
	readFrame(t, conn) // SetUserSlot

	if _, err := conn.Write(encodePlayerHp(t, 0, 100, 500)); err != nil {
		t.Fatalf("write first PlayerHp: %v", err)
	}
	if _, err := conn.Write(encodePlayerHp(t, 0, 400, 500)); err != nil {
		t.Fatalf("write second PlayerHp: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	if _, err := conn.Read(buf); err == nil {
		t.Fatal("expected the socket to be closed after a second PlayerHp write, got data instead")
	}
}
