package models

import (
	"strings"
	"time"
)

// Community is a named group of users. Private communities expose their
// discussions to members only.
type Community struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"size:120;not null" json:"name"`
	NameKey     string    `gorm:"size:120;uniqueIndex;not null" json:"-"`
	Description string    `gorm:"size:1000" json:"description"`
	ImageURL    string    `gorm:"size:500" json:"image_url"`
	CreatorID   uint      `gorm:"not null;index" json:"creator_id"`
	IsPrivate   bool      `gorm:"not null;index" json:"is_private"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName specifies the database table name for GORM.
func (Community) TableName() string {
	return "communities"
}

// CommunityNameKey folds a community name for case-insensitive uniqueness.
func CommunityNameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// CommunityMember is one row of a community's member set.
type CommunityMember struct {
	CommunityID uint      `gorm:"primaryKey;autoIncrement:false" json:"community_id"`
	UserID      uint      `gorm:"primaryKey;autoIncrement:false;index" json:"user_id"`
	CreatedAt   time.Time `json:"created_at"`
}

// TableName specifies the database table name for GORM.
func (CommunityMember) TableName() string {
	return "community_members"
}
