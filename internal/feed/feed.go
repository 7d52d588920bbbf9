// Package feed broadcasts per-event booking changes over Redis pub/sub.
// Clients showing an event page subscribe to its channel and re-fetch on
// every message; the payload carries no booking data.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const publishTimeout = 5 * time.Second

// ChannelFor returns the pub/sub channel for an event's booking set.
func ChannelFor(eventID uint) string {
	return fmt.Sprintf("mixing:%d:bookings", eventID)
}

type change struct {
	EventID uint  `json:"event_id"`
	At      int64 `json:"at"`
}

type Publisher struct {
	client *redis.Client
	logger *zap.Logger
}

func NewPublisher(client *redis.Client, logger *zap.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// BookingsChanged announces that the booking set for an event changed.
// Failures are logged; the triggering operation has already committed.
func (p *Publisher) BookingsChanged(ctx context.Context, eventID uint) {
	body, err := json.Marshal(change{EventID: eventID, At: time.Now().Unix()})
	if err != nil {
		p.logger.Error("feed payload marshal failed", zap.Uint("event_id", eventID), zap.Error(err))
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := p.client.Publish(ctx, ChannelFor(eventID), body).Err(); err != nil {
		p.logger.Error("feed publish failed", zap.Uint("event_id", eventID), zap.Error(err))
	}
}

// Subscribe listens for booking changes on one event and invokes handler
// for each. The returned cancel function stops the subscription.
func (p *Publisher) Subscribe(eventID uint, handler func(eventID uint)) (cancel func(), err error) {
	ctx, cancelCtx := context.WithCancel(context.Background())
	pubsub := p.client.Subscribe(ctx, ChannelFor(eventID))
	if _, err := pubsub.Receive(ctx); err != nil {
		cancelCtx()
		return nil, fmt.Errorf("feed subscribe: %w", err)
	}

	ch := pubsub.Channel()
	go func() {
		defer pubsub.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var c change
				if err := json.Unmarshal([]byte(msg.Payload), &c); err != nil {
					continue
				}
				handler(c.EventID)
			}
		}
	}()
	return func() { cancelCtx() }, nil
}
