package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// LikeLedger records and removes (subject, user) likes for discussions and
// comments. Every operation resolves the subject's owning community and
// passes the VisibilityGuard first.
type LikeLedger struct {
	likes       repository.LikeRepository
	discussions repository.DiscussionRepository
	comments    repository.CommentRepository
	communities repository.CommunityRepository
	users       repository.UserRepository
	guard       *VisibilityGuard
	events      EventPublisher
}

func NewLikeLedger(
	likes repository.LikeRepository,
	discussions repository.DiscussionRepository,
	comments repository.CommentRepository,
	communities repository.CommunityRepository,
	users repository.UserRepository,
	guard *VisibilityGuard,
	events EventPublisher,
) *LikeLedger {
	return &LikeLedger{
		likes:       likes,
		discussions: discussions,
		comments:    comments,
		communities: communities,
		users:       users,
		guard:       guard,
		events:      events,
	}
}

type likeSubject struct {
	discussionID uint
	commentID    *uint
	community    *models.Community
}

func (l *LikeLedger) Like(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (_ *models.LikeState, err error) {
	ctx, span := observability.StartSpan(ctx, "like_ledger", "like",
		attribute.String("subject", string(kind)),
		attribute.Int64("subject_id", int64(subjectID)),
	)
	defer func() { span.End(err) }()

	subject, err := l.authorize(ctx, "like_"+string(kind), kind, subjectID, userID)
	if err != nil {
		return nil, err
	}

	added, err := l.likes.Add(ctx, kind, subjectID, userID)
	if err != nil {
		observability.LikeMutations.WithLabelValues(string(kind), "like", "error").Inc()
		return nil, storeError(err)
	}
	if !added {
		observability.LikeMutations.WithLabelValues(string(kind), "like", "conflict").Inc()
		return nil, models.NewConflictError(fmt.Sprintf("You have already liked this %s", kind))
	}
	observability.LikeMutations.WithLabelValues(string(kind), "like", "ok").Inc()

	publish(ctx, l.events, likeEvent(kind, true), subject.discussionID, subject.commentID, userID)
	return l.state(ctx, kind, subjectID, true)
}

func (l *LikeLedger) Unlike(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (_ *models.LikeState, err error) {
	ctx, span := observability.StartSpan(ctx, "like_ledger", "unlike",
		attribute.String("subject", string(kind)),
		attribute.Int64("subject_id", int64(subjectID)),
	)
	defer func() { span.End(err) }()

	subject, err := l.authorize(ctx, "unlike_"+string(kind), kind, subjectID, userID)
	if err != nil {
		return nil, err
	}

	removed, err := l.likes.Remove(ctx, kind, subjectID, userID)
	if err != nil {
		observability.LikeMutations.WithLabelValues(string(kind), "unlike", "error").Inc()
		return nil, storeError(err)
	}
	if !removed {
		observability.LikeMutations.WithLabelValues(string(kind), "unlike", "conflict").Inc()
		return nil, models.NewConflictError(fmt.Sprintf("You have not liked this %s yet", kind))
	}
	observability.LikeMutations.WithLabelValues(string(kind), "unlike", "ok").Inc()

	publish(ctx, l.events, likeEvent(kind, false), subject.discussionID, subject.commentID, userID)
	return l.state(ctx, kind, subjectID, false)
}

// HasLiked reports whether userID currently likes the subject.
func (l *LikeLedger) HasLiked(ctx context.Context, kind models.LikeKind, subjectID, userID uint) (bool, error) {
	if _, err := l.authorize(ctx, "liked_"+string(kind), kind, subjectID, userID); err != nil {
		return false, err
	}
	liked, err := l.likes.Exists(ctx, kind, subjectID, userID)
	if err != nil {
		return false, storeError(err)
	}
	return liked, nil
}

func (l *LikeLedger) authorize(ctx context.Context, operation string, kind models.LikeKind, subjectID, userID uint) (*likeSubject, error) {
	subject, err := l.resolve(ctx, kind, subjectID)
	if err != nil {
		return nil, err
	}
	if _, err := l.users.GetByID(ctx, userID); err != nil {
		return nil, lookupError(err, "User", userID)
	}
	if err := l.guard.Check(ctx, operation, subject.community, userID); err != nil {
		return nil, err
	}
	return subject, nil
}

func (l *LikeLedger) resolve(ctx context.Context, kind models.LikeKind, subjectID uint) (*likeSubject, error) {
	subject := &likeSubject{}
	var discussionID uint

	switch kind {
	case models.LikeKindDiscussion:
		discussionID = subjectID
	case models.LikeKindComment:
		comment, err := l.comments.GetByID(ctx, subjectID)
		if err != nil {
			return nil, lookupError(err, "Comment", subjectID)
		}
		discussionID = comment.DiscussionID
		subject.commentID = &comment.ID
	default:
		return nil, models.NewValidationError(fmt.Sprintf("Unknown like subject %q", kind))
	}

	discussion, err := l.discussions.GetByID(ctx, discussionID)
	if err != nil {
		return nil, lookupError(err, "Discussion", discussionID)
	}
	community, err := l.communities.GetByID(ctx, discussion.CommunityID)
	if err != nil {
		return nil, lookupError(err, "Community", discussion.CommunityID)
	}
	subject.discussionID = discussion.ID
	subject.community = community
	return subject, nil
}

func (l *LikeLedger) state(ctx context.Context, kind models.LikeKind, subjectID uint, liked bool) (*models.LikeState, error) {
	count, err := l.likes.Count(ctx, kind, subjectID)
	if err != nil {
		return nil, storeError(err)
	}
	return &models.LikeState{
		Kind:         kind,
		SubjectID:    subjectID,
		LikeCount:    count,
		UserHasLiked: liked,
	}, nil
}

func likeEvent(kind models.LikeKind, liked bool) models.DiscussionEventType {
	switch {
	case kind == models.LikeKindComment && liked:
		return models.EventCommentLiked
	case kind == models.LikeKindComment:
		return models.EventCommentUnliked
	case liked:
		return models.EventDiscussionLiked
	default:
		return models.EventDiscussionUnliked
	}
}
