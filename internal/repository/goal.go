package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GoalRepository stores personal goals. Every lookup is scoped to the owner,
// so another user's goal reads as ErrNotFound.
type GoalRepository interface {
	Create(ctx context.Context, goal *models.Goal) error
	GetForOwner(ctx context.Context, id, ownerID uint) (*models.Goal, error)
	ListByOwner(ctx context.Context, ownerID uint, status models.GoalStatus) ([]*models.Goal, error)
	Update(ctx context.Context, goal *models.Goal) error
	DeleteForOwner(ctx context.Context, id, ownerID uint) error
	// Mutate loads the owner's goal under a row lock, applies fn and saves
	// the result in one transaction.
	Mutate(ctx context.Context, id, ownerID uint, fn func(*models.Goal) error) (*models.Goal, error)
}

type goalRepository struct {
	db *gorm.DB
}

// NewGoalRepository creates a new GoalRepository
func NewGoalRepository(db *gorm.DB) GoalRepository {
	return &goalRepository{db: db}
}

func (r *goalRepository) Create(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Create(goal).Error
}

func (r *goalRepository) GetForOwner(ctx context.Context, id, ownerID uint) (*models.Goal, error) {
	var goal models.Goal
	if err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, ownerID).
		First(&goal).Error; err != nil {
		return nil, translate(err)
	}
	return &goal, nil
}

// ListByOwner returns the owner's goals oldest first. An empty status means all.
func (r *goalRepository) ListByOwner(ctx context.Context, ownerID uint, status models.GoalStatus) ([]*models.Goal, error) {
	var goals []*models.Goal
	q := r.db.WithContext(ctx).Where("user_id = ?", ownerID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	err := q.Order("id asc").Find(&goals).Error
	return goals, err
}

func (r *goalRepository) Update(ctx context.Context, goal *models.Goal) error {
	return r.db.WithContext(ctx).Save(goal).Error
}

func (r *goalRepository) DeleteForOwner(ctx context.Context, id, ownerID uint) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, ownerID).Delete(&models.Goal{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *goalRepository) Mutate(ctx context.Context, id, ownerID uint, fn func(*models.Goal) error) (*models.Goal, error) {
	var goal models.Goal
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND user_id = ?", id, ownerID).
			First(&goal).Error; err != nil {
			return err
		}
		if err := fn(&goal); err != nil {
			return err
		}
		return tx.Save(&goal).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &goal, nil
}
