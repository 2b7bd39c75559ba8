// Package gateway fans draft events out to connected clients. Clients open
// a websocket scoped to one draft; a JetStream consumer feeds committed
// domain events in, and the connection manager broadcasts them to every
// watcher of that draft.
package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/cdurbin34/draftroom/internal/draft/outbox"
)

// ConnectionConfig tunes websocket handling.
type ConnectionConfig struct {
	WriteTimeout    time.Duration
	PongTimeout     time.Duration
	PingInterval    time.Duration
	MaxMessageSize  int64
	ReadBufferSize  int
	WriteBufferSize int
	CheckOrigin     func(r *http.Request) bool
}

// DefaultConnectionConfig returns the websocket defaults.
func DefaultConnectionConfig() ConnectionConfig {
	return ConnectionConfig{
		WriteTimeout:    10 * time.Second,
		PongTimeout:     60 * time.Second,
		PingInterval:    30 * time.Second,
		MaxMessageSize:  1024,
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			// Allow all origins in development - restrict in production.
			return true
		},
	}
}

// ConnectionManager tracks websocket connections per draft and broadcasts
// event envelopes to them.
type ConnectionManager struct {
	mu          sync.RWMutex
	connections map[uuid.UUID]map[*Connection]bool

	upgrader    websocket.Upgrader
	config      ConnectionConfig
	broadcastCh chan broadcast
}

// Connection is one client watching one draft.
type Connection struct {
	ID      string
	DraftID uuid.UUID

	conn    *websocket.Conn
	send    chan []byte
	manager *ConnectionManager
}

type broadcast struct {
	draftID  uuid.UUID
	envelope outbox.Envelope
}

// NewConnectionManager creates a connection manager.
func NewConnectionManager(config ConnectionConfig) *ConnectionManager {
	return &ConnectionManager{
		connections: make(map[uuid.UUID]map[*Connection]bool),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  config.ReadBufferSize,
			WriteBufferSize: config.WriteBufferSize,
			CheckOrigin:     config.CheckOrigin,
		},
		config:      config,
		broadcastCh: make(chan broadcast, 1000),
	}
}

// Start processes broadcasts until ctx is cancelled.
func (cm *ConnectionManager) Start(ctx context.Context) {
	log.Info().Msg("connection manager started")
	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("connection manager shutting down")
			cm.closeAll()
			return
		case msg := <-cm.broadcastCh:
			cm.deliver(msg)
		}
	}
}

// Broadcast queues an event envelope for every watcher of a draft.
func (cm *ConnectionManager) Broadcast(draftID uuid.UUID, envelope outbox.Envelope) {
	select {
	case cm.broadcastCh <- broadcast{draftID: draftID, envelope: envelope}:
	default:
		log.Warn().Str("draft_id", draftID.String()).Msg("broadcast buffer full, dropping event")
	}
}

// Upgrade promotes an HTTP request to a websocket watching draftID.
func (cm *ConnectionManager) Upgrade(w http.ResponseWriter, r *http.Request, draftID uuid.UUID) error {
	ws, err := cm.upgrader.Upgrade(w, r, nil)
	if err != nil {
		return err
	}

	conn := &Connection{
		ID:      uuid.NewString(),
		DraftID: draftID,
		conn:    ws,
		send:    make(chan []byte, 256),
		manager: cm,
	}
	cm.register(conn)

	go conn.writePump()
	go conn.readPump()

	log.Info().
		Str("connection_id", conn.ID).
		Str("draft_id", draftID.String()).
		Msg("websocket connection established")
	return nil
}

// ConnectionCount returns the number of open connections for a draft.
func (cm *ConnectionManager) ConnectionCount(draftID uuid.UUID) int {
	cm.mu.RLock()
	defer cm.mu.RUnlock()
	return len(cm.connections[draftID])
}

func (cm *ConnectionManager) register(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if cm.connections[conn.DraftID] == nil {
		cm.connections[conn.DraftID] = make(map[*Connection]bool)
	}
	cm.connections[conn.DraftID][conn] = true
}

func (cm *ConnectionManager) unregister(conn *Connection) {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	if conns, ok := cm.connections[conn.DraftID]; ok {
		if conns[conn] {
			delete(conns, conn)
			close(conn.send)
		}
		if len(conns) == 0 {
			delete(cm.connections, conn.DraftID)
		}
	}
}

func (cm *ConnectionManager) deliver(msg broadcast) {
	data, err := json.Marshal(msg.envelope)
	if err != nil {
		log.Error().Err(err).Msg("failed to marshal event envelope")
		return
	}

	cm.mu.RLock()
	conns := make([]*Connection, 0, len(cm.connections[msg.draftID]))
	for conn := range cm.connections[msg.draftID] {
		conns = append(conns, conn)
	}
	cm.mu.RUnlock()

	for _, conn := range conns {
		select {
		case conn.send <- data:
		default:
			// Slow consumer: drop the connection rather than the draft feed.
			log.Warn().Str("connection_id", conn.ID).Msg("send buffer full, closing connection")
			cm.unregister(conn)
			conn.conn.Close()
		}
	}
}

func (cm *ConnectionManager) closeAll() {
	cm.mu.Lock()
	defer cm.mu.Unlock()
	for draftID, conns := range cm.connections {
		for conn := range conns {
			close(conn.send)
			conn.conn.Close()
		}
		delete(cm.connections, draftID)
	}
}

// writePump pushes queued events and periodic pings to the client.
func (c *Connection) writePump() {
	ticker := time.NewTicker(c.manager.config.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.manager.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump discards client messages (the feed is one-way) and tracks pongs
// so dead connections get reaped.
func (c *Connection) readPump() {
	defer func() {
		c.manager.unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.manager.config.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.manager.config.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(c.manager.config.PongTimeout))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
