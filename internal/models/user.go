package models

import "time"

// UserRole is the coarse role used for administrative routes.
type UserRole string

const (
	// RoleUser is the default role.
	RoleUser UserRole = "USER"
	// RoleAdmin grants access to /api/admin.
	RoleAdmin UserRole = "ADMIN"
)

// User is an account. Other records reference it by id only.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Username  string    `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email     string    `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Password  string    `gorm:"size:255;not null" json:"-"`
	IsPublic  bool      `gorm:"not null" json:"is_public"`
	Role      UserRole  `gorm:"type:varchar(20);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the database table name for GORM.
func (User) TableName() string {
	return "users"
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}
