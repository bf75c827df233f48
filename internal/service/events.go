package service

import (
	"context"
	"log/slog"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
)

// EventPublisher delivers realtime discussion events.
type EventPublisher interface {
	PublishDiscussionEvent(ctx context.Context, event models.DiscussionEvent) error
}

// publish sends a best-effort event. Failures are logged and never reach the
// caller of the mutation.
func publish(ctx context.Context, events EventPublisher, typ models.DiscussionEventType, discussionID uint, commentID *uint, actorID uint) {
	if events == nil {
		return
	}
	ev := models.DiscussionEvent{
		Type:         typ,
		DiscussionID: discussionID,
		CommentID:    commentID,
		ActorID:      actorID,
		At:           time.Now().UTC(),
	}
	if err := events.PublishDiscussionEvent(ctx, ev); err != nil {
		middleware.Logger.WarnContext(ctx, "failed to publish discussion event",
			slog.String("event_type", string(typ)),
			slog.Uint64("discussion_id", uint64(discussionID)),
			slog.String("error", err.Error()),
		)
	}
}
