package sse

import (
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/mcoot/fogwalk/internal/model"
	"github.com/mcoot/fogwalk/internal/updates"
)

// Broadcaster relays game updates from the bus to the world hubs.
// Updates for worlds nobody is streaming are dropped.
type Broadcaster struct {
	hubManager *HubManager
	bus        *updates.Bus
	logger     *slog.Logger

	mu   sync.Mutex
	sub  *updates.Subscription
	done chan struct{}
}

// NewBroadcaster creates a new Broadcaster
func NewBroadcaster(hubManager *HubManager, bus *updates.Bus, logger *slog.Logger) *Broadcaster {
	return &Broadcaster{
		hubManager: hubManager,
		bus:        bus,
		logger:     logger.With(slog.String("component", "sse-broadcaster")),
	}
}

// Start subscribes to the bus. Calling Start twice is a no-op.
func (b *Broadcaster) Start() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.sub != nil {
		return
	}
	b.sub = b.bus.Subscribe(nil, 1024)
	b.done = make(chan struct{})
	go b.run(b.sub, b.done)
}

// Stop unsubscribes and waits for the relay loop to exit
func (b *Broadcaster) Stop() {
	b.mu.Lock()
	sub, done := b.sub, b.done
	b.sub, b.done = nil, nil
	b.mu.Unlock()
	if sub == nil {
		return
	}
	sub.Close()
	<-done
}

func (b *Broadcaster) run(sub *updates.Subscription, done chan struct{}) {
	defer close(done)
	for u := range sub.C() {
		b.Broadcast(u)
	}
}

// Broadcast writes one update to its world's hub, addressed to its player
func (b *Broadcaster) Broadcast(u model.Update) {
	hub := b.hubManager.GetHub(u.WorldID)
	if hub == nil {
		return
	}

	data, err := json.Marshal(u)
	if err != nil {
		b.logger.Error("sse failed to encode update",
			slog.String("world_id", string(u.WorldID)),
			slog.String("type", string(u.Type)),
			slog.Any("error", err))
		return
	}
	hub.SendEvent(u.PlayerID, string(u.Type), string(data))
}
