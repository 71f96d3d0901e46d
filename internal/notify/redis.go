package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"naimuModeration/internal/logging"
	"naimuModeration/internal/models"
)

const DefaultChannel = "moderation:notifications"

// RedisBridge fans notifications out to every instance. Push publishes on
// the channel; Start delivers whatever arrives on it to the local hub.
type RedisBridge struct {
	rdb     *redis.Client
	channel string
	local   *Hub
	logger  logging.Logger
}

func NewRedisBridge(rdb *redis.Client, channel string, local *Hub, logger logging.Logger) *RedisBridge {
	if channel == "" {
		channel = DefaultChannel
	}
	return &RedisBridge{rdb: rdb, channel: channel, local: local, logger: logger}
}

func (b *RedisBridge) Push(ctx context.Context, n models.Notification) error {
	data, err := json.Marshal(n)
	if err != nil {
		return err
	}
	if err := b.rdb.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish notification %d: %w", n.ID, err)
	}
	return nil
}

// Start confirms the subscription and then forwards messages in the
// background until ctx is cancelled.
func (b *RedisBridge) Start(ctx context.Context) error {
	sub := b.rdb.Subscribe(ctx, b.channel)
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe %s: %w", b.channel, err)
	}

	go func() {
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var n models.Notification
				if err := json.Unmarshal([]byte(msg.Payload), &n); err != nil {
					b.logger.Errorf("notification bridge: bad payload: %v", err)
					continue
				}
				if err := b.local.Push(ctx, n); err != nil {
					b.logger.Errorf("notification bridge: deliver %d: %v", n.ID, err)
				}
			}
		}
	}()
	return nil
}
