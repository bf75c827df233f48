package models

import "time"

// GoalStatus tracks a personal goal's outcome.
type GoalStatus string

const (
	GoalInProgress GoalStatus = "IN_PROGRESS"
	GoalCompleted  GoalStatus = "COMPLETED"
	GoalFailed     GoalStatus = "FAILED"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// Goal is a user's private target, such as a distance or a weight, with the
// progress logged against it. Only its owner can see or change it.
type Goal struct {
	ID           uint       `gorm:"primaryKey" json:"id"`
	UserID       uint       `gorm:"not null;index" json:"user_id"`
	Title        string     `gorm:"size:120;not null" json:"title"`
	Description  string     `gorm:"size:500;not null" json:"description"`
	TargetValue  float64    `gorm:"not null" json:"target_value"`
	CurrentValue float64    `gorm:"not null;default:0" json:"current_value"`
	Unit         string     `gorm:"size:20;not null" json:"unit"`
	Status       GoalStatus `gorm:"type:varchar(20);not null;index" json:"status"`
	StartDate    time.Time  `gorm:"not null" json:"start_date"`
	EndDate      *time.Time `json:"end_date,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// TableName specifies the database table name for GORM.
func (Goal) TableName() string {
	return "goals"
}

// AddProgress adds delta to the current value and re-evaluates the status.
// Reaching the target completes the goal; falling short after the end date
// fails it. today is compared by calendar day.
func (g *Goal) AddProgress(delta float64, today time.Time) {
	g.CurrentValue += delta
	switch {
	case g.CurrentValue >= g.TargetValue:
		g.Status = GoalCompleted
	case g.EndDate != nil && Day(today).After(Day(*g.EndDate)):
		g.Status = GoalFailed
	}
}

// Day truncates t to midnight UTC of its calendar date.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
