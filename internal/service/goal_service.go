package service

import (
	"context"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

// GoalService manages personal goals. A goal belongs to exactly one user and
// is invisible to everyone else, admins included.
type GoalService struct {
	goals repository.GoalRepository
	users repository.UserRepository
	now   func() time.Time
}

// GoalInput is the writable part of a goal. A nil StartDate means today on
// create and "unchanged" on update.
type GoalInput struct {
	Title       string
	Description string
	TargetValue float64
	Unit        string
	StartDate   *time.Time
	EndDate     *time.Time
}

func NewGoalService(goals repository.GoalRepository, users repository.UserRepository) *GoalService {
	return &GoalService{goals: goals, users: users, now: time.Now}
}

func (s *GoalService) today() time.Time {
	return models.Day(s.now())
}

func validateGoal(in GoalInput, start time.Time) error {
	if err := validation.ValidateGoal(in.Title, in.Description, in.Unit, in.TargetValue); err != nil {
		return models.NewValidationError(err.Error())
	}
	if in.EndDate != nil && models.Day(*in.EndDate).Before(models.Day(start)) {
		return models.NewValidationError("goal end date cannot be before its start date")
	}
	return nil
}

func dayPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := models.Day(*t)
	return &d
}

// CreateGoal stores a new IN_PROGRESS goal for userID.
func (s *GoalService) CreateGoal(ctx context.Context, userID uint, in GoalInput) (_ *models.GoalView, err error) {
	ctx, span := observability.StartSpan(ctx, "goal_service", "create")
	defer func() { span.End(err) }()

	start := s.today()
	if in.StartDate != nil {
		start = models.Day(*in.StartDate)
	}
	if err := validateGoal(in, start); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, lookupError(err, "User", userID)
	}

	goal := &models.Goal{
		UserID:      userID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		TargetValue: in.TargetValue,
		Unit:        strings.TrimSpace(in.Unit),
		Status:      models.GoalInProgress,
		StartDate:   start,
		EndDate:     dayPtr(in.EndDate),
	}
	if err := s.goals.Create(ctx, goal); err != nil {
		return nil, storeError(err)
	}
	return models.NewGoalView(goal), nil
}

// UpdateGoal replaces the goal's fields. Progress and status are untouched.
func (s *GoalService) UpdateGoal(ctx context.Context, goalID, userID uint, in GoalInput) (_ *models.GoalView, err error) {
	ctx, span := observability.StartSpan(ctx, "goal_service", "update",
		attribute.Int64("goal.id", int64(goalID)))
	defer func() { span.End(err) }()

	goal, err := s.goals.GetForOwner(ctx, goalID, userID)
	if err != nil {
		return nil, lookupError(err, "Goal", goalID)
	}
	start := goal.StartDate
	if in.StartDate != nil {
		start = models.Day(*in.StartDate)
	}
	if err := validateGoal(in, start); err != nil {
		return nil, err
	}

	goal.Title = strings.TrimSpace(in.Title)
	goal.Description = in.Description
	goal.TargetValue = in.TargetValue
	goal.Unit = strings.TrimSpace(in.Unit)
	goal.StartDate = start
	goal.EndDate = dayPtr(in.EndDate)
	if err := s.goals.Update(ctx, goal); err != nil {
		return nil, storeError(err)
	}
	return models.NewGoalView(goal), nil
}

// ListGoals returns the user's goals, optionally filtered by status.
func (s *GoalService) ListGoals(ctx context.Context, userID uint, status models.GoalStatus) ([]*models.GoalView, error) {
	switch status {
	case "", models.GoalInProgress, models.GoalCompleted, models.GoalFailed:
	default:
		return nil, models.NewValidationError("unknown goal status " + string(status))
	}
	goals, err := s.goals.ListByOwner(ctx, userID, status)
	if err != nil {
		return nil, storeError(err)
	}
	views := make([]*models.GoalView, len(goals))
	for i, g := range goals {
		views[i] = models.NewGoalView(g)
	}
	return views, nil
}

// GetGoal returns one of the user's goals. Other users' goals are NotFound.
func (s *GoalService) GetGoal(ctx context.Context, goalID, userID uint) (*models.GoalView, error) {
	goal, err := s.goals.GetForOwner(ctx, goalID, userID)
	if err != nil {
		return nil, lookupError(err, "Goal", goalID)
	}
	return models.NewGoalView(goal), nil
}

func (s *GoalService) DeleteGoal(ctx context.Context, goalID, userID uint) error {
	if err := s.goals.DeleteForOwner(ctx, goalID, userID); err != nil {
		return lookupError(err, "Goal", goalID)
	}
	return nil
}

// UpdateProgress adds delta to the goal's current value. The goal completes
// once the target is reached and fails when progress arrives after its end
// date without reaching it.
func (s *GoalService) UpdateProgress(ctx context.Context, goalID, userID uint, delta float64) (_ *models.GoalView, err error) {
	ctx, span := observability.StartSpan(ctx, "goal_service", "progress",
		attribute.Int64("goal.id", int64(goalID)))
	defer func() { span.End(err) }()

	if err := validation.ValidateProgress(delta); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	var before models.GoalStatus
	goal, err := s.goals.Mutate(ctx, goalID, userID, func(g *models.Goal) error {
		before = g.Status
		g.AddProgress(delta, s.now())
		return nil
	})
	if err != nil {
		return nil, lookupError(err, "Goal", goalID)
	}
	if goal.Status != before {
		observability.GoalTransitions.WithLabelValues(string(goal.Status)).Inc()
	}
	return models.NewGoalView(goal), nil
}
