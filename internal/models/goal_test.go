package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGoal_AddProgress(t *testing.T) {
	t.Parallel()

	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	onEndDay := time.Date(2025, 3, 31, 23, 30, 0, 0, time.UTC)
	dayAfter := time.Date(2025, 4, 1, 8, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		current    float64
		endDate    *time.Time
		delta      float64
		today      time.Time
		wantValue  float64
		wantStatus GoalStatus
	}{
		{name: "still in progress", current: 10, endDate: &end, delta: 5, today: onEndDay, wantValue: 15, wantStatus: GoalInProgress},
		{name: "reaches target exactly", current: 90, endDate: &end, delta: 10, today: onEndDay, wantValue: 100, wantStatus: GoalCompleted},
		{name: "target reached after end date still completes", current: 95, endDate: &end, delta: 10, today: dayAfter, wantValue: 105, wantStatus: GoalCompleted},
		{name: "short after end date fails", current: 10, endDate: &end, delta: 5, today: dayAfter, wantValue: 15, wantStatus: GoalFailed},
		{name: "no end date never fails", current: 10, delta: 5, today: dayAfter, wantValue: 15, wantStatus: GoalInProgress},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			g := &Goal{TargetValue: 100, CurrentValue: tt.current, EndDate: tt.endDate, Status: GoalInProgress}
			g.AddProgress(tt.delta, tt.today)
			assert.InDelta(t, tt.wantValue, g.CurrentValue, 1e-9)
			assert.Equal(t, tt.wantStatus, g.Status)
		})
	}
}

func TestNewGoalView_Dates(t *testing.T) {
	t.Parallel()

	end := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	v := NewGoalView(&Goal{ID: 4, StartDate: time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC), EndDate: &end})
	assert.Equal(t, "2025-05-01", v.StartDate)
	if assert.NotNil(t, v.EndDate) {
		assert.Equal(t, "2025-06-01", *v.EndDate)
	}

	v = NewGoalView(&Goal{StartDate: end})
	assert.Nil(t, v.EndDate)
}
