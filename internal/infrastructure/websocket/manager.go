package websocket

import (
	"context"
	"sync"

	"github.com/gorilla/websocket"

	"talkapp/pkg/logger"
)

// Client represents one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// InboundHandler receives every frame a client sends. CloseHandler fires
// after a client is unregistered, so owners can release subscriptions.
type InboundHandler func(client *Client, payload []byte)
type CloseHandler func(client *Client)

// Manager tracks active connections and per-conversation rooms.
type Manager struct {
	clients    map[string]*Client
	rooms      map[string]map[string]*Client // conversationID -> userID -> client
	Register   chan *Client
	Unregister chan *Client
	inbound    InboundHandler
	onClose    CloseHandler
	mutex      sync.RWMutex
}

func NewManager() *Manager {
	return &Manager{
		clients:    make(map[string]*Client),
		rooms:      make(map[string]map[string]*Client),
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

func (m *Manager) SetInboundHandler(h InboundHandler) {
	m.inbound = h
}

func (m *Manager) SetCloseHandler(h CloseHandler) {
	m.onClose = h
}

// Start runs the manager's main loop in a goroutine.
func (m *Manager) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-m.Register:
				m.mutex.Lock()
				if old, ok := m.clients[client.UserID]; ok && old != client {
					// A reconnect supersedes the previous connection; close
					// its send channel so the old WritePump exits.
					close(old.Send)
					m.removeFromRoomsLocked(old)
				}
				m.clients[client.UserID] = client
				m.mutex.Unlock()
				logger.Info("Client registered: %s", client.UserID)

			case client := <-m.Unregister:
				m.mutex.Lock()
				if current, ok := m.clients[client.UserID]; ok && current == client {
					delete(m.clients, client.UserID)
					close(client.Send)
				}
				m.removeFromRoomsLocked(client)
				m.mutex.Unlock()
				logger.Info("Client unregistered: %s", client.UserID)

				if m.onClose != nil {
					m.onClose(client)
				}

			case <-ctx.Done():
				return
			}
		}
	}()
}

func (m *Manager) removeFromRoomsLocked(client *Client) {
	for conversationID, members := range m.rooms {
		if members[client.UserID] == client {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.rooms, conversationID)
			}
		}
	}
}

func (m *Manager) JoinRoom(conversationID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.rooms[conversationID] == nil {
		m.rooms[conversationID] = make(map[string]*Client)
	}
	m.rooms[conversationID][client.UserID] = client
}

func (m *Manager) LeaveRoom(conversationID string, client *Client) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if members, ok := m.rooms[conversationID]; ok {
		if members[client.UserID] == client {
			delete(members, client.UserID)
			if len(members) == 0 {
				delete(m.rooms, conversationID)
			}
		}
	}
}

// SendToUser delivers a payload to one user's connection, dropping it when
// the user is offline or the send buffer is full.
func (m *Manager) SendToUser(userID string, payload []byte) {
	m.mutex.RLock()
	client, ok := m.clients[userID]
	m.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- payload:
	default:
		logger.Warn("Dropping payload for slow client %s", userID)
	}
}

// SendToRoom delivers a payload to every member of a conversation room,
// optionally excluding one user.
func (m *Manager) SendToRoom(conversationID string, payload []byte, excludeUserID string) {
	m.mutex.RLock()
	var targets []*Client
	for userID, client := range m.rooms[conversationID] {
		if userID != excludeUserID {
			targets = append(targets, client)
		}
	}
	m.mutex.RUnlock()

	for _, client := range targets {
		select {
		case client.Send <- payload:
		default:
			logger.Warn("Dropping room payload for slow client %s", client.UserID)
		}
	}
}

// ReadPump reads frames from the connection until it closes, forwarding each
// one to the manager's inbound handler.
func (c *Client) ReadPump(m *Manager) {
	defer func() {
		m.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, payload, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Warn("WebSocket read error for %s: %v", c.UserID, err)
			}
			break
		}

		if m.inbound != nil {
			m.inbound(c, payload)
		}
	}
}

// WritePump drains the send channel into the connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		payload, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			logger.Warn("WebSocket write error for %s: %v", c.UserID, err)
			return
		}
	}
}
