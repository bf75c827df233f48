package repository

import (
	"context"

	"agora/internal/models"
	"agora/internal/observability"

	"gorm.io/gorm"
)

// DiscussionRepository defines interface for discussion operations
type DiscussionRepository interface {
	Create(ctx context.Context, discussion *models.Discussion) error
	GetByID(ctx context.Context, id uint) (*models.Discussion, error)
	Update(ctx context.Context, discussion *models.Discussion) error
	Delete(ctx context.Context, id uint) error
	ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]*models.Discussion, int64, error)
	ListByAuthor(ctx context.Context, authorID uint) ([]*models.Discussion, error)
	Search(ctx context.Context, term string) ([]*models.Discussion, error)
	ListMostCommented(ctx context.Context) ([]*models.Discussion, error)
	CountByCommunity(ctx context.Context, communityID uint) (int64, error)
	CommentCounts(ctx context.Context, discussionIDs []uint) (map[uint]int64, error)
}

type discussionRepository struct {
	db *gorm.DB
}

// NewDiscussionRepository creates a new DiscussionRepository
func NewDiscussionRepository(db *gorm.DB) DiscussionRepository {
	return &discussionRepository{db: db}
}

func (r *discussionRepository) Create(ctx context.Context, discussion *models.Discussion) error {
	return r.db.WithContext(ctx).Create(discussion).Error
}

func (r *discussionRepository) GetByID(ctx context.Context, id uint) (*models.Discussion, error) {
	var discussion models.Discussion
	if err := r.db.WithContext(ctx).First(&discussion, id).Error; err != nil {
		return nil, translate(err)
	}
	return &discussion, nil
}

func (r *discussionRepository) Update(ctx context.Context, discussion *models.Discussion) error {
	return r.db.WithContext(ctx).Save(discussion).Error
}

// Delete removes the discussion, all of its comments and every like attached to either.
func (r *discussionRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Discussion{}).Where("id = ?", id).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			return ErrNotFound
		}
		return deleteDiscussionsTx(tx, []uint{id})
	})
}

func deleteDiscussionsTx(tx *gorm.DB, discussionIDs []uint) error {
	if len(discussionIDs) == 0 {
		return nil
	}
	var commentIDs []uint
	if err := tx.Model(&models.Comment{}).Where("discussion_id IN ?", discussionIDs).Pluck("id", &commentIDs).Error; err != nil {
		return err
	}
	if len(commentIDs) > 0 {
		if err := tx.Where("comment_id IN ?", commentIDs).Delete(&models.CommentLike{}).Error; err != nil {
			return err
		}
		if err := tx.Where("id IN ?", commentIDs).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
	}
	if err := tx.Where("discussion_id IN ?", discussionIDs).Delete(&models.DiscussionLike{}).Error; err != nil {
		return err
	}
	return tx.Where("id IN ?", discussionIDs).Delete(&models.Discussion{}).Error
}

func (r *discussionRepository) ListByCommunity(ctx context.Context, communityID uint, limit, offset int) ([]*models.Discussion, int64, error) {
	total, err := r.CountByCommunity(ctx, communityID)
	if err != nil {
		return nil, 0, err
	}
	var discussions []*models.Discussion
	err = r.db.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&discussions).Error
	return discussions, total, err
}

func (r *discussionRepository) ListByAuthor(ctx context.Context, authorID uint) ([]*models.Discussion, error) {
	var discussions []*models.Discussion
	err := r.db.WithContext(ctx).
		Where("author_id = ?", authorID).
		Order("created_at desc").
		Order("id desc").
		Find(&discussions).Error
	return discussions, err
}

// Search matches term case-insensitively against title or content.
func (r *discussionRepository) Search(ctx context.Context, term string) ([]*models.Discussion, error) {
	defer observability.TrackQuery("search", "discussions")()

	pattern := containsPattern(term)
	var discussions []*models.Discussion
	err := r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ?"+likeEscapeClause+" OR LOWER(content) LIKE ?"+likeEscapeClause, pattern, pattern).
		Order("created_at desc").
		Order("id desc").
		Find(&discussions).Error
	return discussions, err
}

// ListMostCommented orders every discussion by comment count descending, then id ascending.
func (r *discussionRepository) ListMostCommented(ctx context.Context) ([]*models.Discussion, error) {
	defer observability.TrackQuery("most_commented", "discussions")()

	var discussions []*models.Discussion
	err := r.db.WithContext(ctx).
		Model(&models.Discussion{}).
		Select("discussions.*").
		Joins("LEFT JOIN comments ON comments.discussion_id = discussions.id").
		Group("discussions.id").
		Order("COUNT(comments.id) DESC").
		Order("discussions.id ASC").
		Find(&discussions).Error
	return discussions, err
}

func (r *discussionRepository) CountByCommunity(ctx context.Context, communityID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Discussion{}).
		Where("community_id = ?", communityID).
		Count(&count).Error
	return count, err
}

func (r *discussionRepository) CommentCounts(ctx context.Context, discussionIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(discussionIDs))
	if len(discussionIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		ID    uint
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(&models.Comment{}).
		Select("discussion_id AS id, COUNT(*) AS count").
		Where("discussion_id IN ?", discussionIDs).
		Group("discussion_id").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}
