package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"net"
	"time"

	"go.uber.org/zap"

	"github.com/duskvault/terrasrv/internal/chunkmgr"
	"github.com/duskvault/terrasrv/internal/player"
	"github.com/duskvault/terrasrv/internal/protocol"
)

// protocolTag is the connect handshake string a compatible client presents.
// Anything else gets the "wrong version" disconnect reason.
const protocolTag = "Terraria230"

// connectTimeout bounds how long a freshly accepted socket has to present a
// ConnectRequest before the connection is dropped.
const connectTimeout = 10 * time.Second

// Client is one connection's server-side state: the assigned slot, the
// player record the writer owns exclusively, this client's own action
// channel (used both as its inbound queue and as the "reply to me" address
// handed to the registry and world manager), and the currently cached
// chunk handler.
type Client struct {
	player *player.Player
	action ClientActionChan

	server ServerActionSender
	world  WorldActionSender
	logger *zap.Logger

	chunkAction chunkmgr.ChunkActionSender
	connected   bool
}

// NewClient returns a Client with its action channel ready. Call Serve to
// run its reader and writer over an accepted connection.
func NewClient(server ServerActionSender, world WorldActionSender, logger *zap.Logger) *Client {
	return &Client{
		player: player.New(0),
		action: make(ClientActionChan, 100),
		server: server,
		world:  world,
		logger: logger,
	}
}

// Serve runs conn's reader and writer to completion, blocking until the
// connection closes or an unrecoverable error occurs. It always notifies
// the registry of disconnection before returning, if the client ever
// connected.
func (c *Client) Serve(conn net.Conn) {
	defer conn.Close()

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		if err := c.readLoop(conn); err != nil && !errors.Is(err, io.EOF) {
			c.logger.Debug("client read loop ended", zap.Error(err))
		}
	}()

	c.writeLoop(conn, readerDone)
	<-readerDone

	if c.connected {
		name, _ := c.player.Name()
		c.server <- DisconnectClient{Name: name}
	}
}

// readLoop decodes frames off conn and turns them into ClientActions on
// c.action. It never mutates player state directly; the writer goroutine
// owns that.
func (c *Client) readLoop(conn net.Conn) error {
	br := bufio.NewReader(conn)
	pending := make([]byte, 0, 4096)

	if err := conn.SetReadDeadline(time.Now().Add(connectTimeout)); err != nil {
		return fmt.Errorf("set connect deadline: %w", err)
	}
	if err := c.awaitConnectRequest(br, &pending); err != nil {
		return err
	}
	if err := conn.SetReadDeadline(time.Time{}); err != nil {
		return fmt.Errorf("clear connect deadline: %w", err)
	}

	for {
		frame, err := c.nextFrame(br, &pending)
		if err != nil {
			return err
		}

		pkt, err := protocol.DecodeInbound(frame)
		if err != nil {
			if errors.Is(err, protocol.ErrUnknownType) {
				c.logger.Warn("unknown packet type", zap.Uint8("type", frame.Type))
				return err
			}
			c.logger.Warn("malformed packet", zap.Error(err))
			return err
		}

		c.dispatch(pkt)
	}
}

// awaitConnectRequest reads frames until the first ConnectRequest arrives,
// replying with SetUserSlot on a matching protocol tag or a wrong-version
// Disconnect otherwise.
func (c *Client) awaitConnectRequest(br *bufio.Reader, pending *[]byte) error {
	frame, err := c.nextFrame(br, pending)
	if err != nil {
		return fmt.Errorf("await connect request: %w", err)
	}

	pkt, err := protocol.DecodeInbound(frame)
	if err != nil {
		return fmt.Errorf("decode connect request: %w", err)
	}

	req, ok := pkt.(protocol.ConnectRequest)
	if !ok {
		return fmt.Errorf("session: expected ConnectRequest, got %T", pkt)
	}

	if req.ProtocolTag != protocolTag {
		c.action <- SendPacket{Packet: protocol.Disconnect{
			Reason: protocol.LocalizedText{Mode: protocol.TextLocalizationKey, Text: "LegacyMultiplayer.4"},
		}}
		return fmt.Errorf("session: wrong protocol tag %q", req.ProtocolTag)
	}

	c.action <- SendPacket{Packet: protocol.SetUserSlot{Slot: 0}}
	return nil
}

// nextFrame reads and consumes exactly one frame from br, buffering partial
// reads in pending across calls.
func (c *Client) nextFrame(br *bufio.Reader, pending *[]byte) (protocol.Frame, error) {
	for {
		frame, n, err := protocol.DecodeFrame(*pending)
		if err == nil {
			*pending = (*pending)[n:]
			return frame, nil
		}
		if !errors.Is(err, protocol.ErrNeedMore) {
			return protocol.Frame{}, err
		}

		chunk := make([]byte, 4096)
		n, err = br.Read(chunk)
		if n > 0 {
			*pending = append(*pending, chunk[:n]...)
		}
		if err != nil {
			return protocol.Frame{}, err
		}
	}
}

// dispatch turns one decoded inbound packet into the ClientAction(s) it
// implies.
func (c *Client) dispatch(pkt any) {
	switch p := pkt.(type) {
	case protocol.PlayerAppearance:
		c.action <- SetPlayerName{Name: p.Name}
		c.action <- SetPlayerAppearance{Appearance: p}

	case protocol.PlayerUUID:
		c.action <- SetPlayerUUID{UUID: p.UUID}

	case protocol.PlayerHp, protocol.PlayerMana, protocol.PlayerBuff:
		c.action <- SetPlayerStat{Packet: p}

	case protocol.PlayerInventorySlot:
		c.action <- UpdateInventorySlot{Packet: p}

	case protocol.WorldDataRequest:
		c.action <- RequestWorldInfo{}

	case protocol.EssentialTilesRequest:
		c.action <- SendPacket{Packet: protocol.Status{
			Max:   15,
			Text:  protocol.LocalizedText{Mode: protocol.TextLocalizationKey, Text: "LegacyInterface.44"},
			Flags: 0,
		}}
		c.action <- RequestEssentialTiles{Tile: p}

	default:
		c.logger.Debug("unhandled packet", zap.String("type", fmt.Sprintf("%T", p)))
	}
}

// writeLoop owns conn's write half and the player record. It applies
// actions off c.action until the reader reports the connection is gone,
// draining actions the reader queued before stopping so a final Disconnect
// still reaches the socket.
func (c *Client) writeLoop(conn net.Conn, readerDone <-chan struct{}) {
	for {
		select {
		case action := <-c.action:
			if !c.apply(conn, action) {
				return
			}
		case <-readerDone:
			for {
				select {
				case action := <-c.action:
					if !c.apply(conn, action) {
						return
					}
				default:
					return
				}
			}
		}
	}
}

// apply handles one action; it reports false when the client must stop.
func (c *Client) apply(conn net.Conn, action ClientAction) bool {
	switch a := action.(type) {
	case SendPacket:
		if err := c.send(conn, a.Packet); err != nil {
			c.logger.Debug("send failed, closing client", zap.Error(err))
			conn.Close()
			return false
		}

	case SetClientID:
		c.player.Slot = a.Slot

	case SetPlayerName:
		if err := c.player.SetName(a.Name); err != nil {
			c.logger.Warn("player name write rejected, closing client", zap.Error(err))
			conn.Close()
			return false
		}
		c.connected = true
		c.server <- ConnectClient{Name: a.Name, Action: c.action}

	case SetPlayerAppearance:
		if err := c.player.SetAppearance(a.Appearance); err != nil {
			c.logger.Warn("duplicate appearance write", zap.Error(err))
		}

	case SetPlayerUUID:
		if err := c.player.SetUUID(a.UUID); err != nil {
			c.logger.Warn("duplicate uuid write", zap.Error(err))
		}

	case SetPlayerStat:
		if err := c.applyStat(a.Packet); err != nil {
			c.logger.Warn("player stat write rejected, closing client", zap.Error(err))
			conn.Close()
			return false
		}

	case UpdateInventorySlot:
		if _, err := c.player.ApplyInventorySlot(a.Packet); err != nil {
			c.logger.Warn("inventory write rejected", zap.Error(err))
		}

	case RequestWorldInfo:
		c.world <- RequestWorldInfoAction{Reply: c.action}

	case RequestEssentialTiles:
		if c.chunkAction == nil {
			c.resolveChunkHandler(a.Tile.X, a.Tile.Y)
		}
		if c.chunkAction != nil {
			c.chunkAction <- chunkmgr.RequestSections{Reply: toSectionReplyChan(c.action)}
		}

	case SetChunkHandler:
		c.chunkAction = a.Handler
	}
	return true
}

// applyStat routes one of the player-stat packets to the matching Player
// setter. Each packet kind writes a one-write field (PlayerHp sets max_hp,
// PlayerMana sets max_mana, PlayerBuff sets buffs): the first well-formed
// packet of each kind sets it, and every later one of that kind is rejected
// as a WrongField error, which the caller turns into a disconnect.
func (c *Client) applyStat(pkt any) error {
	switch p := pkt.(type) {
	case protocol.PlayerHp:
		return c.player.SetMaxHp(p.MaxHp)
	case protocol.PlayerMana:
		return c.player.SetMaxMana(p.MaxMana)
	case protocol.PlayerBuff:
		return c.player.SetBuffs(p.BuffIDs)
	}
	return nil
}

// resolveChunkHandler asks the world manager to resolve and cache the chunk
// owning (x, y), blocking until the reply arrives.
func (c *Client) resolveChunkHandler(x, y int32) {
	reply := make(chan chunkmgr.ChunkActionSender, 1)
	c.world <- SpawnClientAction{TileX: x, TileY: y, Reply: reply}
	c.chunkAction = <-reply
}

// send encodes and writes one outbound packet directly to conn.
func (c *Client) send(conn net.Conn, packet any) error {
	frame, err := protocol.EncodeOutbound(packet)
	if err != nil {
		return fmt.Errorf("encode outbound packet: %w", err)
	}
	_, err = conn.Write(frame)
	return err
}

// toSectionReplyChan adapts a client's ClientActionChan into the
// chunkmgr.SectionPayload reply channel RequestSections expects, wrapping
// each payload as a WorldInfo-shaped SendPacket before forwarding it.
func toSectionReplyChan(action ClientActionChan) chan<- chunkmgr.SectionPayload {
	reply := make(chan chunkmgr.SectionPayload, 16)
	go func() {
		for section := range reply {
			action <- SendPacket{Packet: protocol.WorldInfo{Payload: section.Data}}
		}
	}()
	return reply
}
