// Package updates fans game updates out to any number of subscribers.
package updates

import (
	"log/slog"
	"sync"

	"github.com/mcoot/fogwalk/internal/model"
)

// DefaultBuffer is the channel size used when Subscribe is given a non-positive buffer
const DefaultBuffer = 64

// Filter selects the updates a subscriber receives. A nil filter receives everything.
type Filter func(model.Update) bool

// ForWorld matches updates for one world
func ForWorld(worldID model.WorldID) Filter {
	return func(u model.Update) bool {
		return u.WorldID == worldID
	}
}

// ForPlayer matches updates for one player in one world
func ForPlayer(worldID model.WorldID, playerID model.PlayerID) Filter {
	return func(u model.Update) bool {
		return u.WorldID == worldID && u.PlayerID == playerID
	}
}

// Subscription is a registered consumer of the bus
type Subscription struct {
	bus    *Bus
	filter Filter
	ch     chan model.Update
	once   sync.Once
}

// C returns the channel updates are delivered on. It is closed by Close or Bus.Close.
func (s *Subscription) C() <-chan model.Update {
	return s.ch
}

// Close unsubscribes. Safe to call more than once.
func (s *Subscription) Close() {
	s.bus.remove(s)
}

// Bus delivers updates to subscribers without blocking the publisher.
// A subscriber whose buffer is full misses the update.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	closed bool
	logger *slog.Logger
}

// NewBus creates an empty bus
func NewBus(logger *slog.Logger) *Bus {
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		logger: logger.With(slog.String("component", "update_bus")),
	}
}

// Subscribe registers a consumer
func (b *Bus) Subscribe(filter Filter, buffer int) *Subscription {
	if buffer <= 0 {
		buffer = DefaultBuffer
	}
	sub := &Subscription{
		bus:    b,
		filter: filter,
		ch:     make(chan model.Update, buffer),
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		sub.once.Do(func() { close(sub.ch) })
		return sub
	}
	b.subs[sub] = struct{}{}
	return sub
}

// Publish delivers u to every matching subscriber
func (b *Bus) Publish(u model.Update) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}

	dropped := 0
	for sub := range b.subs {
		if sub.filter != nil && !sub.filter(u) {
			continue
		}
		select {
		case sub.ch <- u:
		default:
			dropped++
		}
	}
	if dropped > 0 {
		b.logger.Warn("update dropped - subscriber buffer full",
			slog.String("type", string(u.Type)),
			slog.String("world_id", string(u.WorldID)),
			slog.String("player_id", string(u.PlayerID)),
			slog.Int("dropped", dropped))
	}
}

// SubscriberCount returns the number of live subscriptions
func (b *Bus) SubscriberCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for sub := range b.subs {
		sub.once.Do(func() { close(sub.ch) })
		delete(b.subs, sub)
	}
}

func (b *Bus) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subs, sub)
	sub.once.Do(func() { close(sub.ch) })
}
