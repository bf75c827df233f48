// Package notifications delivers realtime discussion events over Redis pub/sub.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"

	"github.com/redis/go-redis/v9"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
)

// Notifier publishes discussion events into Redis channels and subscribes to them.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier instance using the provided Redis client.
// A nil client turns every operation into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// DiscussionChannel is the channel carrying events of one discussion.
func DiscussionChannel(discussionID uint) string {
	return fmt.Sprintf("discussion:%d", discussionID)
}

// Enabled reports whether a Redis client backs the notifier.
func (n *Notifier) Enabled() bool {
	return n != nil && n.rdb != nil
}

// PublishDiscussionEvent sends ev to the discussion's channel.
func (n *Notifier) PublishDiscussionEvent(ctx context.Context, ev models.DiscussionEvent) error {
	if !n.Enabled() {
		return nil
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := n.rdb.Publish(ctx, DiscussionChannel(ev.DiscussionID), payload).Err(); err != nil {
		observability.EventsPublished.WithLabelValues(string(ev.Type), "error").Inc()
		return err
	}
	observability.EventsPublished.WithLabelValues(string(ev.Type), "ok").Inc()
	return nil
}

// SubscribeDiscussion calls onMessage with each raw payload published for the
// discussion until ctx is cancelled. It returns once the subscription is
// confirmed by Redis.
func (n *Notifier) SubscribeDiscussion(ctx context.Context, discussionID uint, onMessage func(payload string)) error {
	if !n.Enabled() {
		return nil
	}
	sub := n.rdb.Subscribe(ctx, DiscussionChannel(discussionID))
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return fmt.Errorf("subscribe discussion %d: %w", discussionID, err)
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							middleware.Logger.Error("panic in discussion subscriber",
								slog.Any("panic", r),
								slog.String("stack", string(debug.Stack())),
							)
						}
					}()
					onMessage(msg.Payload)
				}()
			}
		}
	}()

	return nil
}
