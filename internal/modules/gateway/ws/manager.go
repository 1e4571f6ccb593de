// Package ws keeps the websocket connections of seated players.
package ws

import (
	"context"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/stuagano/wolf-goat-pig/internal/modules/gateway/domain"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

type CloseReason string

const (
	ReasonWriteError CloseReason = "write_error"
	ReasonPingError  CloseReason = "ping_error"
	ReasonReadError  CloseReason = "read_error"
	ReasonReplaced   CloseReason = "replaced_by_new_connection"
	ReasonShutdown   CloseReason = "server_shutdown"
	ReasonBufferFull CloseReason = "buffer_full"
	ReasonTimeout    CloseReason = "timeout"
)

const (
	sendBuffer     = 256
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 8192
	slowSeatWait   = 5 * time.Second
)

// Connection is one seated player's websocket
type Connection struct {
	Seat      domain.Seat
	Conn      *websocket.Conn
	Send      chan []byte
	manager   *Manager
	closeOnce sync.Once
	done      chan struct{}
}

// Manager tracks connections by seat and by game
type Manager struct {
	seats      map[domain.Seat]*Connection
	games      map[string]map[domain.Seat]*Connection
	register   chan *Connection
	unregister chan *Connection
	mu         sync.RWMutex
}

var _ domain.GatewayBroadcaster = (*Manager)(nil)

// NewManager creates a new connection manager
func NewManager() *Manager {
	return &Manager{
		seats:      make(map[domain.Seat]*Connection),
		games:      make(map[string]map[domain.Seat]*Connection),
		register:   make(chan *Connection),
		unregister: make(chan *Connection),
	}
}

// Register hands a new connection to the manager loop
func (m *Manager) Register(conn *websocket.Conn, seat domain.Seat) *Connection {
	c := &Connection{
		Seat:    seat,
		Conn:    conn,
		Send:    make(chan []byte, sendBuffer),
		manager: m,
		done:    make(chan struct{}),
	}
	m.register <- c
	return c
}

// Run starts the manager loop
func (m *Manager) Run() {
	for {
		select {
		case c := <-m.register:
			m.mu.Lock()
			// One connection per seat: a reconnect replaces the old socket
			if old, ok := m.seats[c.Seat]; ok {
				old.CloseWithReason(ReasonReplaced, nil)
			}
			m.seats[c.Seat] = c
			if m.games[c.Seat.GameID] == nil {
				m.games[c.Seat.GameID] = make(map[domain.Seat]*Connection)
			}
			m.games[c.Seat.GameID][c.Seat] = c
			m.mu.Unlock()

		case c := <-m.unregister:
			m.mu.Lock()
			if cur, ok := m.seats[c.Seat]; ok && cur == c {
				delete(m.seats, c.Seat)
				delete(m.games[c.Seat.GameID], c.Seat)
				if len(m.games[c.Seat.GameID]) == 0 {
					delete(m.games, c.Seat.GameID)
				}
			}
			m.mu.Unlock()
		}
	}
}

// BroadcastToGame sends a message to every connected seat of a game
func (m *Manager) BroadcastToGame(gameID string, message []byte) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, c := range m.games[gameID] {
		select {
		case c.Send <- message:
		default:
			// Buffer full; ReadPump unregisters it once the socket closes
			c.CloseWithReason(ReasonBufferFull, nil)
		}
	}
}

// SendToSeat sends a message to one seat, waiting briefly for a slow reader
func (m *Manager) SendToSeat(seat domain.Seat, message []byte) {
	m.mu.RLock()
	c, ok := m.seats[seat]
	m.mu.RUnlock()
	if !ok {
		return
	}

	select {
	case c.Send <- message:
		return
	default:
	}

	select {
	case c.Send <- message:
	case <-c.done:
	case <-time.After(slowSeatWait):
		c.CloseWithReason(ReasonTimeout, nil)
	}
}

// SeatCount returns the number of connected seats in a game
func (m *Manager) SeatCount(gameID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games[gameID])
}

// Shutdown closes all connections
func (m *Manager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, c := range m.seats {
		c.CloseWithReason(ReasonShutdown, nil)
	}
}

// CloseWithReason closes the connection once, logging why
func (c *Connection) CloseWithReason(r CloseReason, err error) {
	c.closeOnce.Do(func() {
		ev := logger.Info(context.Background())
		if err != nil {
			ev = logger.Warn(context.Background()).Err(err)
		}
		ev.Str("game_id", c.Seat.GameID).
			Str("player_id", string(c.Seat.PlayerID)).
			Str("reason", string(r)).
			Msg("ws connection closed")
		close(c.done)
		c.Conn.Close()
	})
}

// WritePump pumps queued messages to the websocket connection
func (c *Connection) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.CloseWithReason(ReasonWriteError, err)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				c.CloseWithReason(ReasonPingError, err)
				return
			}

		case <-c.done:
			return
		}
	}
}

// ReadPump reads envelopes from the websocket and hands them to handleMessage
func (c *Connection) ReadPump(handleMessage func(domain.Seat, []byte)) {
	var readErr error
	defer func() {
		c.manager.unregister <- c
		c.CloseWithReason(ReasonReadError, readErr)
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				readErr = err
			}
			break
		}
		handleMessage(c.Seat, message)
	}
}
