package service

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/models"
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func TestGoalService_CreateDefaults(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "")
	ctx := context.Background()
	f.svc.Goals.now = func() time.Time { return time.Date(2025, 3, 10, 15, 4, 0, 0, time.UTC) }

	a := f.user(t, "alice")
	g, err := f.svc.Goals.CreateGoal(ctx, a.ID, GoalInput{Title: " Run ", TargetValue: 100, Unit: "km"})
	require.NoError(t, err)
	assert.Equal(t, "Run", g.Title)
	assert.Equal(t, models.GoalInProgress, g.Status)
	assert.Equal(t, "2025-03-10", g.StartDate)
	assert.Nil(t, g.EndDate)
	assert.Zero(t, g.CurrentValue)

	_, err = f.svc.Goals.CreateGoal(ctx, 999, GoalInput{Title: "Run", TargetValue: 1, Unit: "km"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}

func TestGoalService_Validation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "")
	ctx := context.Background()
	a := f.user(t, "alice")

	tests := []struct {
		name string
		in   GoalInput
	}{
		{name: "missing title", in: GoalInput{TargetValue: 10, Unit: "km"}},
		{name: "negative target", in: GoalInput{Title: "Run", TargetValue: -1, Unit: "km"}},
		{name: "missing unit", in: GoalInput{Title: "Run", TargetValue: 10}},
		{name: "end before start", in: GoalInput{Title: "Run", TargetValue: 10, Unit: "km", StartDate: date(2025, 5, 2), EndDate: date(2025, 5, 1)}},
	}
	for _, tt := range tests {
		_, err := f.svc.Goals.CreateGoal(ctx, a.ID, tt.in)
		assert.True(t, models.HasCode(err, models.CodeValidation), tt.name)
	}

	g, err := f.svc.Goals.CreateGoal(ctx, a.ID, GoalInput{Title: "Run", TargetValue: 10, Unit: "km"})
	require.NoError(t, err)
	_, err = f.svc.Goals.UpdateProgress(ctx, g.ID, a.ID, math.Inf(1))
	assert.True(t, models.HasCode(err, models.CodeValidation))

	_, err = f.svc.Goals.ListGoals(ctx, a.ID, "DONE")
	assert.True(t, models.HasCode(err, models.CodeValidation))
}

func TestGoalService_ProgressTransitions(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "")
	ctx := context.Background()
	today := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	f.svc.Goals.now = func() time.Time { return today }

	a := f.user(t, "alice")
	in := GoalInput{Title: "Run", TargetValue: 100, Unit: "km", StartDate: date(2025, 3, 1), EndDate: date(2025, 3, 31)}

	g, err := f.svc.Goals.CreateGoal(ctx, a.ID, in)
	require.NoError(t, err)

	g, err = f.svc.Goals.UpdateProgress(ctx, g.ID, a.ID, 60)
	require.NoError(t, err)
	assert.Equal(t, models.GoalInProgress, g.Status)

	g, err = f.svc.Goals.UpdateProgress(ctx, g.ID, a.ID, 40)
	require.NoError(t, err)
	assert.InDelta(t, 100, g.CurrentValue, 1e-9)
	assert.Equal(t, models.GoalCompleted, g.Status)

	late, err := f.svc.Goals.CreateGoal(ctx, a.ID, in)
	require.NoError(t, err)

	// The end day itself still counts.
	today = time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	late, err = f.svc.Goals.UpdateProgress(ctx, late.ID, a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.GoalInProgress, late.Status)

	today = time.Date(2025, 4, 1, 6, 0, 0, 0, time.UTC)
	late, err = f.svc.Goals.UpdateProgress(ctx, late.ID, a.ID, 10)
	require.NoError(t, err)
	assert.Equal(t, models.GoalFailed, late.Status)

	failed, err := f.svc.Goals.ListGoals(ctx, a.ID, models.GoalFailed)
	require.NoError(t, err)
	require.Len(t, failed, 1)
	assert.Equal(t, late.ID, failed[0].ID)
}

func TestGoalService_OwnerIsolation(t *testing.T) {
	t.Parallel()
	f := newFixture(t, "")
	ctx := context.Background()

	a := f.user(t, "alice")
	b := f.user(t, "bob")
	g, err := f.svc.Goals.CreateGoal(ctx, a.ID, GoalInput{Title: "Run", TargetValue: 100, Unit: "km"})
	require.NoError(t, err)

	_, err = f.svc.Goals.GetGoal(ctx, g.ID, b.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	_, err = f.svc.Goals.UpdateGoal(ctx, g.ID, b.ID, GoalInput{Title: "Mine", TargetValue: 1, Unit: "km"})
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	_, err = f.svc.Goals.UpdateProgress(ctx, g.ID, b.ID, 5)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
	assert.True(t, models.HasCode(f.svc.Goals.DeleteGoal(ctx, g.ID, b.ID), models.CodeNotFound))

	others, err := f.svc.Goals.ListGoals(ctx, b.ID, "")
	require.NoError(t, err)
	assert.Empty(t, others)

	updated, err := f.svc.Goals.UpdateGoal(ctx, g.ID, a.ID, GoalInput{Title: "Run far", TargetValue: 200, Unit: "km", EndDate: date(2030, 1, 1)})
	require.NoError(t, err)
	assert.Equal(t, "Run far", updated.Title)
	assert.Equal(t, g.StartDate, updated.StartDate, "start date kept when omitted")
	require.NotNil(t, updated.EndDate)
	assert.Equal(t, "2030-01-01", *updated.EndDate)

	require.NoError(t, f.svc.Goals.DeleteGoal(ctx, g.ID, a.ID))
	_, err = f.svc.Goals.GetGoal(ctx, g.ID, a.ID)
	assert.True(t, models.HasCode(err, models.CodeNotFound))
}
