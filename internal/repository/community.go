package repository

import (
	"context"

	"agora/internal/cache"
	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CommunityRepository defines interface for community and membership operations
type CommunityRepository interface {
	Create(ctx context.Context, community *models.Community) error
	GetByID(ctx context.Context, id uint) (*models.Community, error)
	GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Community, error)
	NameTaken(ctx context.Context, name string, excludeID uint) (bool, error)
	Update(ctx context.Context, community *models.Community) error
	Delete(ctx context.Context, id uint) error
	ListPublic(ctx context.Context, limit, offset int) ([]*models.Community, int64, error)
	Search(ctx context.Context, term string) ([]*models.Community, error)
	ListByMember(ctx context.Context, userID uint) ([]*models.Community, error)

	IsMember(ctx context.Context, communityID, userID uint) (bool, error)
	MemberCommunityIDs(ctx context.Context, userID uint, communityIDs []uint) (map[uint]bool, error)
	AddMember(ctx context.Context, communityID, userID uint) (bool, error)
	RemoveMember(ctx context.Context, communityID, userID uint) (bool, error)
	MemberIDs(ctx context.Context, communityID uint) ([]uint, error)
}

type communityRepository struct {
	db *gorm.DB
}

// NewCommunityRepository creates a new CommunityRepository
func NewCommunityRepository(db *gorm.DB) CommunityRepository {
	return &communityRepository{db: db}
}

// Create stores the community and makes its creator the first member in one transaction.
func (r *communityRepository) Create(ctx context.Context, community *models.Community) error {
	community.NameKey = models.CommunityNameKey(community.Name)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(community).Error; err != nil {
			return err
		}
		return tx.Create(&models.CommunityMember{
			CommunityID: community.ID,
			UserID:      community.CreatorID,
		}).Error
	})
	return translate(err)
}

func (r *communityRepository) GetByID(ctx context.Context, id uint) (*models.Community, error) {
	var community models.Community
	err := cache.Aside(ctx, cache.CommunityKey(id), &community, cache.CommunityTTL, func() error {
		return r.db.WithContext(ctx).First(&community, id).Error
	})
	if err != nil {
		return nil, translate(err)
	}
	return &community, nil
}

func (r *communityRepository) GetByIDs(ctx context.Context, ids []uint) (map[uint]*models.Community, error) {
	out := make(map[uint]*models.Community, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	var communities []*models.Community
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&communities).Error; err != nil {
		return nil, err
	}
	for _, c := range communities {
		out[c.ID] = c
	}
	return out, nil
}

// NameTaken reports whether another community already uses name, ignoring case.
func (r *communityRepository) NameTaken(ctx context.Context, name string, excludeID uint) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).
		Model(&models.Community{}).
		Where("name_key = ?", models.CommunityNameKey(name))
	if excludeID != 0 {
		q = q.Where("id <> ?", excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *communityRepository) Update(ctx context.Context, community *models.Community) error {
	community.NameKey = models.CommunityNameKey(community.Name)
	err := r.db.WithContext(ctx).Save(community).Error
	if err == nil {
		cache.InvalidateCommunity(ctx, community.ID)
	}
	return translate(err)
}

// Delete removes the community with its discussions, their comments and likes, and its member set.
func (r *communityRepository) Delete(ctx context.Context, id uint) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var discussionIDs []uint
		if err := tx.Model(&models.Discussion{}).Where("community_id = ?", id).Pluck("id", &discussionIDs).Error; err != nil {
			return err
		}
		if err := deleteDiscussionsTx(tx, discussionIDs); err != nil {
			return err
		}
		if err := tx.Where("community_id = ?", id).Delete(&models.CommunityMember{}).Error; err != nil {
			return err
		}
		res := tx.Delete(&models.Community{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
	if err == nil {
		cache.InvalidateCommunity(ctx, id)
	}
	return err
}

func (r *communityRepository) ListPublic(ctx context.Context, limit, offset int) ([]*models.Community, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.Community{}).Where("is_private = ?", false).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Where("is_private = ?", false).
		Order("created_at desc").
		Order("id desc").
		Limit(limit).
		Offset(offset).
		Find(&communities).Error
	return communities, total, err
}

func (r *communityRepository) Search(ctx context.Context, term string) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Where("LOWER(name) LIKE ?"+likeEscapeClause, containsPattern(term)).
		Order("name asc").
		Order("id asc").
		Find(&communities).Error
	return communities, err
}

func (r *communityRepository) ListByMember(ctx context.Context, userID uint) ([]*models.Community, error) {
	var communities []*models.Community
	err := r.db.WithContext(ctx).
		Joins("JOIN community_members ON community_members.community_id = communities.id").
		Where("community_members.user_id = ?", userID).
		Order("communities.name asc").
		Find(&communities).Error
	return communities, err
}

// IsMember answers false for an unknown community or user.
func (r *communityRepository) IsMember(ctx context.Context, communityID, userID uint) (bool, error) {
	if communityID == 0 || userID == 0 {
		return false, nil
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommunityMember{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *communityRepository) MemberCommunityIDs(ctx context.Context, userID uint, communityIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if userID == 0 || len(communityIDs) == 0 {
		return out, nil
	}
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(&models.CommunityMember{}).
		Where("user_id = ? AND community_id IN ?", userID, communityIDs).
		Pluck("community_id", &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}

// AddMember inserts the membership row, reporting false when it already existed.
func (r *communityRepository) AddMember(ctx context.Context, communityID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&models.CommunityMember{CommunityID: communityID, UserID: userID})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RemoveMember deletes the membership row, reporting false when there was none.
func (r *communityRepository) RemoveMember(ctx context.Context, communityID, userID uint) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		Delete(&models.CommunityMember{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *communityRepository) MemberIDs(ctx context.Context, communityID uint) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).
		Model(&models.CommunityMember{}).
		Where("community_id = ?", communityID).
		Order("user_id asc").
		Pluck("user_id", &ids).Error
	if ids == nil {
		ids = []uint{}
	}
	return ids, err
}
