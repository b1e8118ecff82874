package session

import (
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/duskvault/terrasrv/internal/world"
)

// Listener binds a TCP endpoint and spawns a reader/writer client pair for
// every accepted connection, wiring each into the shared registry and
// world manager tasks.
type Listener struct {
	addr   string
	logger *zap.Logger

	registry *Registry
	world    *WorldManager
}

// NewListener returns a Listener over a freshly constructed registry and
// world manager for w; both are started as background tasks immediately.
func NewListener(addr string, w *world.World, logger *zap.Logger) *Listener {
	registry := NewRegistry(logger)
	worldMgr := NewWorldManager(w, logger)

	go registry.Run()
	go worldMgr.Run()

	return &Listener{
		addr:     addr,
		logger:   logger,
		registry: registry,
		world:    worldMgr,
	}
}

// Serve binds addr and accepts connections until the listener errors or is
// closed. It returns the error that ended the accept loop.
func (l *Listener) Serve() error {
	ln, err := net.Listen("tcp", l.addr)
	if err != nil {
		return fmt.Errorf("bind %s: %w", l.addr, err)
	}
	defer ln.Close()

	l.logger.Info("listening", zap.String("addr", l.addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}

		client := NewClient(l.registry.Actions(), l.world.Actions(), l.logger)
		go client.Serve(conn)
	}
}
