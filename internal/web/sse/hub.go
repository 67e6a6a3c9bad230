package sse

import (
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/mcoot/fogwalk/internal/model"
)

// message is one formatted SSE frame, addressed to a player or to the whole world
type message struct {
	playerID model.PlayerID // empty means everyone
	data     []byte
}

// Hub manages SSE clients for a single world
type Hub struct {
	worldID model.WorldID
	clients map[*Client]bool
	mu      sync.RWMutex
	logger  *slog.Logger

	// Channels for managing clients
	register   chan *Client
	unregister chan *Client
	broadcast  chan message
	done       chan struct{}
	closeOnce  sync.Once
}

// NewHub creates a new Hub for a world
func NewHub(worldID model.WorldID, logger *slog.Logger) *Hub {
	return &Hub{
		worldID:    worldID,
		clients:    make(map[*Client]bool),
		logger:     logger.With(slog.String("world_id", string(worldID))),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan message, 256),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's event loop
func (h *Hub) Run() {
	h.logger.Info("sse hub started")
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			clientCount := len(h.clients)
			h.mu.Unlock()
			h.logger.Info("sse client registered",
				slog.String("player_id", string(client.playerID)),
				slog.Bool("watch_all", client.watchAll),
				slog.Int("total_clients", clientCount))

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				clientCount := len(h.clients)
				h.mu.Unlock()
				h.logger.Info("sse client unregistered",
					slog.String("player_id", string(client.playerID)),
					slog.Duration("connection_duration", time.Since(client.connectedAt)),
					slog.Int("total_clients", clientCount))
			} else {
				h.mu.Unlock()
			}

		case msg := <-h.broadcast:
			h.mu.RLock()
			sentCount := 0
			droppedCount := 0
			for client := range h.clients {
				if !client.wants(msg.playerID) {
					continue
				}
				select {
				case client.send <- msg.data:
					sentCount++
				default:
					droppedCount++
					h.logger.Warn("sse message dropped - client buffer full",
						slog.String("player_id", string(client.playerID)))
				}
			}
			h.mu.RUnlock()
			if droppedCount > 0 {
				h.logger.Warn("sse broadcast partial failure",
					slog.Int("sent", sentCount),
					slog.Int("dropped", droppedCount))
			}

		case <-h.done:
			h.mu.Lock()
			clientCount := len(h.clients)
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			h.logger.Info("sse hub stopped", slog.Int("disconnected_clients", clientCount))
			return
		}
	}
}

// Register adds a client to the hub
func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.done:
		close(client.send)
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.done:
	}
}

// BroadcastEvent sends an SSE event to every client of the world
func (h *Hub) BroadcastEvent(eventName, data string) {
	h.enqueue(message{data: formatSSEMessage(eventName, data)})
}

// SendEvent sends an SSE event to the clients of one player, plus world watchers
func (h *Hub) SendEvent(playerID model.PlayerID, eventName, data string) {
	h.enqueue(message{playerID: playerID, data: formatSSEMessage(eventName, data)})
}

func (h *Hub) enqueue(msg message) {
	select {
	case h.broadcast <- msg:
	default:
		h.logger.Warn("sse broadcast dropped - hub buffer full")
	}
}

// Close shuts down the hub
func (h *Hub) Close() {
	h.closeOnce.Do(func() { close(h.done) })
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// formatSSEMessage formats an SSE message with event name and data
// Multi-line data is properly formatted with "data: " prefix on each line
func formatSSEMessage(eventName, data string) []byte {
	var b strings.Builder
	b.WriteString("event: " + eventName + "\n")
	for _, line := range splitLines(data) {
		b.WriteString("data: " + line + "\n")
	}
	b.WriteString("\n")
	return []byte(b.String())
}

// splitLines splits a string into lines, handling various line endings
func splitLines(s string) []string {
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.TrimSuffix(s, "\n")
	return strings.Split(s, "\n")
}

// HubManager manages hubs for all worlds
type HubManager struct {
	hubs   map[model.WorldID]*Hub
	mu     sync.RWMutex
	logger *slog.Logger
}

// NewHubManager creates a new HubManager
func NewHubManager(logger *slog.Logger) *HubManager {
	return &HubManager{
		hubs:   make(map[model.WorldID]*Hub),
		logger: logger.With(slog.String("component", "sse")),
	}
}

// GetOrCreateHub returns the hub for a world, creating one if it doesn't exist
func (m *HubManager) GetOrCreateHub(worldID model.WorldID) *Hub {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[worldID]; ok {
		return hub
	}

	hub := NewHub(worldID, m.logger)
	m.hubs[worldID] = hub
	go hub.Run()
	return hub
}

// GetHub returns the hub for a world, or nil if it doesn't exist
func (m *HubManager) GetHub(worldID model.WorldID) *Hub {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.hubs[worldID]
}

// RemoveHub removes and closes a hub
func (m *HubManager) RemoveHub(worldID model.WorldID) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if hub, ok := m.hubs[worldID]; ok {
		hub.Close()
		delete(m.hubs, worldID)
		m.logger.Info("sse hub removed", slog.String("world_id", string(worldID)))
	}
}

// CloseWorld disconnects every stream watching a deleted world
func (m *HubManager) CloseWorld(worldID model.WorldID) {
	m.RemoveHub(worldID)
}

// CleanupEmptyHubs removes hubs with no clients
func (m *HubManager) CleanupEmptyHubs() {
	m.mu.Lock()
	defer m.mu.Unlock()

	removedCount := 0
	for id, hub := range m.hubs {
		if hub.ClientCount() == 0 {
			hub.Close()
			delete(m.hubs, id)
			removedCount++
		}
	}
	if removedCount > 0 {
		m.logger.Info("sse empty hubs cleaned up", slog.Int("removed", removedCount))
	}
}

// Close stops every hub
func (m *HubManager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, hub := range m.hubs {
		hub.Close()
		delete(m.hubs, id)
	}
}
