package models

import "time"

// LikeKind names a likeable subject.
type LikeKind string

const (
	// LikeKindDiscussion marks likes on discussions.
	LikeKindDiscussion LikeKind = "discussion"
	// LikeKindComment marks likes on comments.
	LikeKindComment LikeKind = "comment"
)

// DiscussionLike is one (discussion, user) pair of a like set. The composite
// primary key gives set semantics.
type DiscussionLike struct {
	DiscussionID uint      `gorm:"primaryKey;autoIncrement:false" json:"discussion_id"`
	UserID       uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt    time.Time `json:"created_at"`
}

// TableName specifies the database table name for GORM.
func (DiscussionLike) TableName() string {
	return "discussion_likes"
}

// CommentLike is one (comment, user) pair of a like set.
type CommentLike struct {
	CommentID uint      `gorm:"primaryKey;autoIncrement:false" json:"comment_id"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}

// TableName specifies the database table name for GORM.
func (CommentLike) TableName() string {
	return "comment_likes"
}
