package sse

import (
	"net/http"
	"time"

	"github.com/mcoot/fogwalk/internal/model"
)

const (
	// Time between keepalive pings
	pingPeriod = 30 * time.Second

	// Buffer size for outgoing messages
	sendBufferSize = 256
)

// Client represents a connected SSE client
type Client struct {
	hub         *Hub
	playerID    model.PlayerID
	watchAll    bool // receive every player's updates, not just our own
	send        chan []byte
	connectedAt time.Time
}

// NewClient creates a new SSE client
func NewClient(hub *Hub, playerID model.PlayerID, watchAll bool) *Client {
	return &Client{
		hub:         hub,
		playerID:    playerID,
		watchAll:    watchAll,
		send:        make(chan []byte, sendBufferSize),
		connectedAt: time.Now(),
	}
}

func (c *Client) wants(target model.PlayerID) bool {
	return target == "" || c.watchAll || target == c.playerID
}

// ServeSSE handles the SSE connection for a client
func ServeSSE(w http.ResponseWriter, r *http.Request, hub *Hub, playerID model.PlayerID, watchAll bool) {
	// Check if SSE is supported
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	// Set SSE headers
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	client := NewClient(hub, playerID, watchAll)
	hub.Register(client)
	defer hub.Unregister(client)

	// Ask browsers to reconnect after 3s
	_, _ = w.Write([]byte("retry: 3000\n\n"))
	_, _ = w.Write(formatSSEMessage("connected", `{"status":"connected","world_id":"`+string(hub.worldID)+`"}`))
	flusher.Flush()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case message, ok := <-client.send:
			if !ok {
				// Hub closed the channel
				return
			}
			if _, err := w.Write(message); err != nil {
				return
			}
			flusher.Flush()

		case <-ticker.C:
			if _, err := w.Write([]byte(": keepalive\n\n")); err != nil {
				return
			}
			flusher.Flush()

		case <-r.Context().Done():
			return
		}
	}
}
