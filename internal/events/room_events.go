package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/easylearn/easylearn-backend/internal/config"
	"github.com/easylearn/easylearn-backend/internal/model"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RoomBus fans live room events out over Redis PubSub so every replica's
// WebSocket subscribers see them.
type RoomBus struct {
	rdb *redis.Client
}

// NewRoomBus creates a new RoomBus.
func NewRoomBus(rdb *redis.Client) *RoomBus {
	return &RoomBus{rdb: rdb}
}

// Publish broadcasts ev on its room's channel.
func (b *RoomBus) Publish(ctx context.Context, ev model.RoomEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal room event: %w", err)
	}
	return b.rdb.Publish(ctx, config.CacheKey.RoomEventsChannel(ev.RoomID), raw).Err()
}

// Subscription delivers a room's events until Close is called.
type Subscription struct {
	ps   *redis.PubSub
	ch   chan model.RoomEvent
	done chan struct{}
	once sync.Once
}

// Subscribe starts listening to roomID. The returned subscription is ready
// once Subscribe returns.
func (b *RoomBus) Subscribe(ctx context.Context, roomID uuid.UUID) (*Subscription, error) {
	ps := b.rdb.Subscribe(ctx, config.CacheKey.RoomEventsChannel(roomID))
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("subscribe room events: %w", err)
	}

	sub := &Subscription{ps: ps, ch: make(chan model.RoomEvent, 16), done: make(chan struct{})}
	go sub.pump()
	return sub, nil
}

func (s *Subscription) pump() {
	defer close(s.ch)
	for msg := range s.ps.Channel() {
		var ev model.RoomEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			continue
		}
		select {
		case s.ch <- ev:
		case <-s.done:
			return
		}
	}
}

// Events returns the channel of decoded events. It is closed after Close.
func (s *Subscription) Events() <-chan model.RoomEvent {
	return s.ch
}

// Close stops the subscription.
func (s *Subscription) Close() error {
	s.once.Do(func() { close(s.done) })
	return s.ps.Close()
}
