package repository

import (
	"context"

	"agora/internal/models"

	"gorm.io/gorm"
)

// CommentRepository defines interface for comment operations
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, id uint) (*models.Comment, error)
	Update(ctx context.Context, comment *models.Comment) error
	DeleteSubtree(ctx context.Context, id uint) (int, error)
	ListByDiscussion(ctx context.Context, discussionID uint) ([]*models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new CommentRepository
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, id uint) (*models.Comment, error) {
	var comment models.Comment
	if err := r.db.WithContext(ctx).First(&comment, id).Error; err != nil {
		return nil, translate(err)
	}
	return &comment, nil
}

func (r *commentRepository) Update(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Save(comment).Error
}

// DeleteSubtree removes the comment, every reply beneath it and their likes.
// It returns the number of comments removed.
func (r *commentRepository) DeleteSubtree(ctx context.Context, id uint) (int, error) {
	removed := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var root models.Comment
		if err := tx.First(&root, id).Error; err != nil {
			return translate(err)
		}

		all := []uint{root.ID}
		seen := map[uint]bool{root.ID: true}
		frontier := []uint{root.ID}
		for len(frontier) > 0 {
			var children []uint
			if err := tx.Model(&models.Comment{}).
				Where("parent_id IN ? AND discussion_id = ?", frontier, root.DiscussionID).
				Pluck("id", &children).Error; err != nil {
				return err
			}
			frontier = frontier[:0]
			for _, child := range children {
				if seen[child] {
					continue
				}
				seen[child] = true
				all = append(all, child)
				frontier = append(frontier, child)
			}
		}

		if err := tx.Where("comment_id IN ?", all).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", all).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		removed = len(all)
		return nil
	})
	return removed, err
}

// ListByDiscussion returns the discussion's flat comment set in creation order.
func (r *commentRepository) ListByDiscussion(ctx context.Context, discussionID uint) ([]*models.Comment, error) {
	var comments []*models.Comment
	err := r.db.WithContext(ctx).
		Where("discussion_id = ?", discussionID).
		Order("created_at asc").
		Order("id asc").
		Find(&comments).Error
	return comments, err
}
