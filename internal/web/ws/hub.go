// Package ws carries commands and updates over a WebSocket per player and world.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mcoot/fogwalk/internal/i18n"
	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/services/game"
	"github.com/mcoot/fogwalk/internal/updates"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings with this period, must be less than pongWait
	pingPeriod = (pongWait * 9) / 10

	maxMessageSize = 4096

	sendBufferSize = 256
)

// ActionUnknown is sent back for an action the server does not understand
const ActionUnknown = "unknown"

var errUnknownAction = errors.New("unknown action")

// Message is the {action, data} envelope read from clients
type Message struct {
	Action string          `json:"action"`
	Data   json.RawMessage `json:"data,omitempty"`
}

// Outgoing is the {action, data} envelope written to clients.
// Action is an update type such as "player:update".
type Outgoing struct {
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
	Data      any       `json:"data"`
}

// JoinData is the optional payload of player:join
type JoinData struct {
	Locale string `json:"locale"`
}

// MoveData is the payload of player:move
type MoveData struct {
	Direction string `json:"direction"`
}

// Hub tracks open connections per world and runs their commands
type Hub struct {
	mu    sync.RWMutex
	conns map[model.WorldID]map[*Conn]struct{}

	gameController game.ControllerInterface
	bus            *updates.Bus
	localizer      *i18n.Localizer
	logger         *slog.Logger
	upgrader       websocket.Upgrader
}

// NewHub creates a new Hub
func NewHub(gameController game.ControllerInterface, bus *updates.Bus, localizer *i18n.Localizer, logger *slog.Logger) *Hub {
	return &Hub{
		conns:          make(map[model.WorldID]map[*Conn]struct{}),
		gameController: gameController,
		bus:            bus,
		localizer:      localizer,
		logger:         logger.With(slog.String("component", "ws")),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CLI and browser clients alike
			},
		},
	}
}

// Conn is one player's socket into one world
type Conn struct {
	hub     *Hub
	ws      *websocket.Conn
	worldID model.WorldID
	player  *model.Player
	locale  string

	sub  *updates.Subscription
	send chan Outgoing
	done chan struct{}
}

// Serve upgrades the request and runs the connection until either side closes it.
// The caller has already authenticated player.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, worldID model.WorldID, player *model.Player, locale string) {
	wsConn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written an HTTP error
		h.logger.Warn("ws upgrade failed", slog.Any("error", err))
		return
	}

	c := &Conn{
		hub:     h,
		ws:      wsConn,
		worldID: worldID,
		player:  player,
		locale:  locale,
		sub:     h.bus.Subscribe(updates.ForPlayer(worldID, player.ID), sendBufferSize),
		send:    make(chan Outgoing, 16),
		done:    make(chan struct{}),
	}
	h.add(c)

	writerDone := make(chan struct{})
	go func() {
		defer close(writerDone)
		c.writePump()
	}()

	c.readPump(r.Context())

	close(c.done)
	<-writerDone
	c.sub.Close()
	h.remove(c)
	_ = wsConn.Close()
}

// ConnectionCount returns the number of open sockets for a world
func (h *Hub) ConnectionCount(worldID model.WorldID) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.conns[worldID])
}

// CloseWorld drops every socket of a world
func (h *Hub) CloseWorld(worldID model.WorldID) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.conns[worldID] {
		_ = c.ws.Close()
	}
}

// Close drops every open socket
func (h *Hub) Close() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, conns := range h.conns {
		for c := range conns {
			_ = c.ws.Close()
		}
	}
}

func (h *Hub) add(c *Conn) {
	h.mu.Lock()
	if _, ok := h.conns[c.worldID]; !ok {
		h.conns[c.worldID] = make(map[*Conn]struct{})
	}
	h.conns[c.worldID][c] = struct{}{}
	total := len(h.conns[c.worldID])
	h.mu.Unlock()

	h.logger.Info("ws connection opened",
		slog.String("world_id", string(c.worldID)),
		slog.String("player_id", string(c.player.ID)),
		slog.Int("world_connections", total))
}

func (h *Hub) remove(c *Conn) {
	h.mu.Lock()
	delete(h.conns[c.worldID], c)
	if len(h.conns[c.worldID]) == 0 {
		delete(h.conns, c.worldID)
	}
	h.mu.Unlock()

	h.logger.Info("ws connection closed",
		slog.String("world_id", string(c.worldID)),
		slog.String("player_id", string(c.player.ID)))
}

// readPump reads commands until the socket fails
func (c *Conn) readPump(ctx context.Context) {
	c.ws.SetReadLimit(maxMessageSize)
	_ = c.ws.SetReadDeadline(time.Now().Add(pongWait))
	c.ws.SetPongHandler(func(string) error {
		return c.ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		var msg Message
		if err := c.ws.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.hub.logger.Warn("ws read failed",
					slog.String("player_id", string(c.player.ID)),
					slog.Any("error", err))
			}
			return
		}
		c.handle(ctx, msg)
	}
}

// writePump is the only goroutine writing to the socket
func (c *Conn) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case u, ok := <-c.sub.C():
			if !ok {
				return
			}
			if !c.write(Outgoing{Action: string(u.Type), Timestamp: u.Timestamp, Data: u.Payload}) {
				return
			}

		case out := <-c.send:
			if !c.write(out) {
				return
			}

		case <-ticker.C:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.ws.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}

		case <-c.done:
			_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
			_ = c.ws.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}

func (c *Conn) write(out Outgoing) bool {
	_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.ws.WriteJSON(out); err != nil {
		c.hub.logger.Warn("ws write failed",
			slog.String("player_id", string(c.player.ID)),
			slog.Any("error", err))
		// Unblocks readPump
		_ = c.ws.Close()
		return false
	}
	return true
}

// handle runs one command. Rejected turn transitions are reported by the game
// controller through the bus; anything else is answered here.
func (c *Conn) handle(ctx context.Context, msg Message) {
	command := model.CommandType(msg.Action)
	var err error

	switch command {
	case model.CommandJoin:
		var data JoinData
		if len(msg.Data) > 0 {
			_ = json.Unmarshal(msg.Data, &data)
		}
		if data.Locale != "" {
			c.locale = data.Locale
		}
		_, err = c.hub.gameController.Join(ctx, c.worldID, c.player, c.locale)

	case model.CommandRoll:
		_, err = c.hub.gameController.Roll(ctx, c.worldID, c.player.ID)

	case model.CommandMove:
		var data MoveData
		if len(msg.Data) > 0 {
			_ = json.Unmarshal(msg.Data, &data)
		}
		dir, parseErr := model.ParseDirection(data.Direction)
		if parseErr != nil {
			// Let the state machine reject it like any other bad move
			dir = model.Direction(-1)
		}
		_, err = c.hub.gameController.Move(ctx, c.worldID, c.player.ID, dir)

	case model.CommandEndTurn:
		_, err = c.hub.gameController.EndTurn(ctx, c.worldID, c.player.ID)

	default:
		c.reply(Outgoing{
			Action: string(model.UpdateError),
			Data:   model.ErrorPayload{Command: model.CommandType(ActionUnknown), Message: errUnknownAction.Error() + ": " + msg.Action},
		})
		return
	}

	if err != nil && !model.IsInvalidTransition(err) {
		c.hub.logger.Debug("ws command failed",
			slog.String("world_id", string(c.worldID)),
			slog.String("player_id", string(c.player.ID)),
			slog.String("command", msg.Action),
			slog.Any("error", err))
		c.reply(Outgoing{
			Action: string(model.UpdateError),
			Data:   model.ErrorPayload{Command: command, Message: c.hub.localizer.RenderError(c.locale, err)},
		})
	}
}

func (c *Conn) reply(out Outgoing) {
	if out.Timestamp.IsZero() {
		out.Timestamp = time.Now()
	}
	select {
	case c.send <- out:
	case <-c.done:
	default:
		c.hub.logger.Warn("ws reply dropped - send buffer full",
			slog.String("player_id", string(c.player.ID)))
	}
}
