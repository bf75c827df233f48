package models

import "time"

// Discussion is a top-level post inside exactly one community.
type Discussion struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Title       string    `gorm:"size:300;not null" json:"title"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	AuthorID    uint      `gorm:"not null;index" json:"author_id"`
	CommunityID uint      `gorm:"not null;index" json:"community_id"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the database table name for GORM.
func (Discussion) TableName() string {
	return "discussions"
}
