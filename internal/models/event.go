package models

import "time"

// DiscussionEventType names a realtime discussion event.
type DiscussionEventType string

const (
	EventDiscussionCreated DiscussionEventType = "discussion_created"
	EventDiscussionUpdated DiscussionEventType = "discussion_updated"
	EventDiscussionDeleted DiscussionEventType = "discussion_deleted"
	EventDiscussionLiked   DiscussionEventType = "discussion_liked"
	EventDiscussionUnliked DiscussionEventType = "discussion_unliked"
	EventCommentCreated    DiscussionEventType = "comment_created"
	EventCommentUpdated    DiscussionEventType = "comment_updated"
	EventCommentDeleted    DiscussionEventType = "comment_deleted"
	EventCommentLiked      DiscussionEventType = "comment_liked"
	EventCommentUnliked    DiscussionEventType = "comment_unliked"
)

// DiscussionEvent is published on the discussion's realtime channel after a
// successful mutation.
type DiscussionEvent struct {
	Type         DiscussionEventType `json:"type"`
	DiscussionID uint                `json:"discussion_id"`
	CommentID    *uint               `json:"comment_id,omitempty"`
	ActorID      uint                `json:"actor_id"`
	At           time.Time           `json:"at"`
}
