package session

import (
	"go.uber.org/zap"
)

// ServerAction is the message type the registry task consumes.
type ServerAction interface {
	isServerAction()
}

// ServerActionChan is the channel type backing the registry's inbound
// queue.
type ServerActionChan = chan ServerAction

// ServerActionSender is the send-only handle other tasks use to address
// the registry.
type ServerActionSender = chan<- ServerAction

// ConnectClient registers name against a newly assigned slot and hands the
// client its action channel for the registry to address it by later.
type ConnectClient struct {
	Name   string
	Action ClientActionSender
}

func (ConnectClient) isServerAction() {}

// DisconnectClient removes a previously connected client by name.
type DisconnectClient struct{ Name string }

func (DisconnectClient) isServerAction() {}

// Broadcast fans a packet out to every currently registered client.
type Broadcast struct{ Packet any }

func (Broadcast) isServerAction() {}

// Chat logs a chat line; it is not yet fanned out to clients beyond the
// log (no chat-relay feature is in scope).
type Chat struct{ Text string }

func (Chat) isServerAction() {}

// Registry owns {slot -> client-action-channel} and {name -> slot}. It is
// the only task permitted to mutate either map.
type Registry struct {
	actions ServerActionChan
	logger  *zap.Logger

	clients  map[uint8]ClientActionSender
	names    map[string]uint8
	nextSlot uint8
}

// NewRegistry returns a Registry with its inbound channel ready; call Run
// to start serving it.
func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		actions: make(ServerActionChan, 100),
		logger:  logger,
		clients: make(map[uint8]ClientActionSender),
		names:   make(map[string]uint8),
	}
}

// Actions returns the send-only handle other tasks use to reach this
// registry.
func (r *Registry) Actions() ServerActionSender { return r.actions }

// Run processes registry actions until its channel is closed.
func (r *Registry) Run() {
	for action := range r.actions {
		switch a := action.(type) {
		case ConnectClient:
			slot := r.nextSlot
			r.nextSlot++
			select {
			case a.Action <- SetClientID{Slot: slot}:
			default:
				// A client that cannot even take its slot id is already
				// dead; registering it would only wedge later broadcasts.
				r.logger.Warn("client unresponsive during connect", zap.String("name", a.Name))
				continue
			}
			r.names[a.Name] = slot
			r.clients[slot] = a.Action
			r.logger.Info("client connected", zap.String("name", a.Name), zap.Uint8("slot", slot))

		case DisconnectClient:
			slot, ok := r.names[a.Name]
			if !ok {
				r.logger.Warn("disconnect for unknown client", zap.String("name", a.Name))
				continue
			}
			delete(r.names, a.Name)
			delete(r.clients, slot)
			r.logger.Info("client disconnected", zap.String("name", a.Name), zap.Uint8("slot", slot))

		case Broadcast:
			r.broadcast(a.Packet)

		case Chat:
			r.logger.Info("chat", zap.String("text", a.Text))
		}
	}
}

// broadcast fans a packet out to every registered client, dropping any
// whose send channel is full or whose receiver has gone away. A permanently
// blocked channel is treated the same as a dead client.
func (r *Registry) broadcast(packet any) {
	for slot, ch := range r.clients {
		select {
		case ch <- SendPacket{Packet: packet}:
		default:
			r.logger.Warn("dropping broadcast to unresponsive client", zap.Uint8("slot", slot))
		}
	}
}
