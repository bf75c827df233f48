package models

import "time"

// Comment is a reply to a discussion. ParentID, when set, points at a comment
// of the same discussion.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Content      string    `gorm:"size:1000;not null" json:"content"`
	AuthorID     uint      `gorm:"not null;index" json:"author_id"`
	DiscussionID uint      `gorm:"not null;index" json:"discussion_id"`
	ParentID     *uint     `gorm:"index" json:"parent_id,omitempty"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// TableName specifies the database table name for GORM.
func (Comment) TableName() string {
	return "comments"
}
