package repository

import (
	"context"
	"fmt"

	"agora/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository stores like sets for every likeable subject kind.
type LikeRepository interface {
	Add(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error)
	Remove(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error)
	Exists(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error)
	Count(ctx context.Context, kind models.LikeKind, subjectID uint) (int64, error)
	Counts(ctx context.Context, kind models.LikeKind, subjectIDs []uint) (map[uint]int64, error)
	LikedBy(ctx context.Context, kind models.LikeKind, userID uint, subjectIDs []uint) (map[uint]bool, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new LikeRepository
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

type likeTable struct {
	model  interface{}
	column string
}

func tableFor(kind models.LikeKind) (likeTable, error) {
	switch kind {
	case models.LikeKindDiscussion:
		return likeTable{model: &models.DiscussionLike{}, column: "discussion_id"}, nil
	case models.LikeKindComment:
		return likeTable{model: &models.CommentLike{}, column: "comment_id"}, nil
	default:
		return likeTable{}, fmt.Errorf("unknown like kind %q", kind)
	}
}

func newLikeRow(kind models.LikeKind, subjectID, userID uint) interface{} {
	if kind == models.LikeKindComment {
		return &models.CommentLike{CommentID: subjectID, UserID: userID}
	}
	return &models.DiscussionLike{DiscussionID: subjectID, UserID: userID}
}

// Add inserts the (subject, user) pair. Concurrent duplicates collapse on the
// primary key; the return value is true only for the call that inserted.
func (r *likeRepository) Add(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error) {
	if _, err := tableFor(kind); err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(newLikeRow(kind, subjectID, userID))
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// Remove deletes the pair; the return value is true only for the call that deleted.
func (r *likeRepository) Remove(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	res := r.db.WithContext(ctx).
		Where(t.column+" = ? AND user_id = ?", subjectID, userID).
		Delete(t.model)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var count int64
	if err := r.db.WithContext(ctx).
		Model(t.model).
		Where(t.column+" = ? AND user_id = ?", subjectID, userID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, kind models.LikeKind, subjectID uint) (int64, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	var count int64
	err = r.db.WithContext(ctx).
		Model(t.model).
		Where(t.column+" = ?", subjectID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) Counts(ctx context.Context, kind models.LikeKind, subjectIDs []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(subjectIDs))
	if len(subjectIDs) == 0 {
		return out, nil
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var rows []struct {
		ID    uint
		Count int64
	}
	if err := r.db.WithContext(ctx).
		Model(t.model).
		Select(t.column+" AS id, COUNT(*) AS count").
		Where(t.column+" IN ?", subjectIDs).
		Group(t.column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.ID] = row.Count
	}
	return out, nil
}

func (r *likeRepository) LikedBy(ctx context.Context, kind models.LikeKind, userID uint, subjectIDs []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if userID == 0 || len(subjectIDs) == 0 {
		return out, nil
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	var ids []uint
	if err := r.db.WithContext(ctx).
		Model(t.model).
		Where("user_id = ? AND "+t.column+" IN ?", userID, subjectIDs).
		Pluck(t.column, &ids).Error; err != nil {
		return nil, err
	}
	for _, id := range ids {
		out[id] = true
	}
	return out, nil
}
