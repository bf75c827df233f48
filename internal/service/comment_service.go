package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

const maxCommentLen = 1000

type CommentService struct {
	comments    repository.CommentRepository
	discussions repository.DiscussionRepository
	communities repository.CommunityRepository
	users       repository.UserRepository
	guard       *VisibilityGuard
	ledger      *LikeLedger
	tree        *CommentTreeBuilder
	events      EventPublisher
}

type CreateCommentInput struct {
	AuthorID     uint
	DiscussionID uint
	ParentID     *uint
	Content      string
}

type UpdateCommentInput struct {
	ActorID   uint
	CommentID uint
	Content   string
}

func NewCommentService(
	comments repository.CommentRepository,
	discussions repository.DiscussionRepository,
	communities repository.CommunityRepository,
	users repository.UserRepository,
	guard *VisibilityGuard,
	ledger *LikeLedger,
	tree *CommentTreeBuilder,
	events EventPublisher,
) *CommentService {
	return &CommentService{
		comments:    comments,
		discussions: discussions,
		communities: communities,
		users:       users,
		guard:       guard,
		ledger:      ledger,
		tree:        tree,
		events:      events,
	}
}

func validateCommentContent(content string) error {
	if strings.TrimSpace(content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(content) > maxCommentLen {
		return models.NewValidationError("Comment too long (max 1000 characters)")
	}
	return nil
}

// ListComments returns the discussion's comment tree for viewerID.
func (s *CommentService) ListComments(ctx context.Context, discussionID, viewerID uint) (_ []*models.CommentNode, err error) {
	ctx, span := observability.StartSpan(ctx, "comment_service", "list",
		attribute.Int64("discussion_id", int64(discussionID)))
	defer func() { span.End(err) }()

	_, community, err := s.loadDiscussion(ctx, discussionID)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, "list_comments", community, viewerID); err != nil {
		return nil, err
	}
	return s.tree.Build(ctx, discussionID, viewerID)
}

// CreateComment adds a root comment or, with ParentID, a reply. The parent
// must belong to the same discussion.
func (s *CommentService) CreateComment(ctx context.Context, in CreateCommentInput) (_ *models.CommentNode, err error) {
	ctx, span := observability.StartSpan(ctx, "comment_service", "create",
		attribute.Int64("discussion_id", int64(in.DiscussionID)))
	defer func() { span.End(err) }()

	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	discussion, community, err := s.loadDiscussion(ctx, in.DiscussionID)
	if err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.AuthorID); err != nil {
		return nil, lookupError(err, "User", in.AuthorID)
	}
	if err := s.guard.Check(ctx, "create_comment", community, in.AuthorID); err != nil {
		return nil, err
	}

	if in.ParentID != nil {
		parent, err := s.comments.GetByID(ctx, *in.ParentID)
		if err != nil {
			return nil, lookupError(err, "Comment", *in.ParentID)
		}
		if parent.DiscussionID != discussion.ID {
			return nil, models.NewConflictError("Parent comment belongs to a different discussion")
		}
	}

	comment := &models.Comment{
		Content:      in.Content,
		AuthorID:     in.AuthorID,
		DiscussionID: discussion.ID,
		ParentID:     in.ParentID,
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, storeError(err)
	}

	publish(ctx, s.events, models.EventCommentCreated, discussion.ID, &comment.ID, in.AuthorID)
	return s.tree.Node(ctx, comment, in.AuthorID)
}

// UpdateComment is restricted to the comment's author.
func (s *CommentService) UpdateComment(ctx context.Context, in UpdateCommentInput) (*models.CommentNode, error) {
	if err := validateCommentContent(in.Content); err != nil {
		return nil, err
	}
	comment, err := s.comments.GetByID(ctx, in.CommentID)
	if err != nil {
		return nil, lookupError(err, "Comment", in.CommentID)
	}
	if comment.AuthorID != in.ActorID {
		return nil, deny(ctx, "update_comment", "You can only update your own comments")
	}

	comment.Content = in.Content
	if err := s.comments.Update(ctx, comment); err != nil {
		return nil, storeError(err)
	}

	publish(ctx, s.events, models.EventCommentUpdated, comment.DiscussionID, &comment.ID, in.ActorID)
	return s.tree.Node(ctx, comment, in.ActorID)
}

// DeleteComment removes the comment and its whole reply subtree. Allowed for
// the author and for the creator of the discussion's community. It returns
// the number of comments removed.
func (s *CommentService) DeleteComment(ctx context.Context, id, actorID uint) (int, error) {
	comment, err := s.comments.GetByID(ctx, id)
	if err != nil {
		return 0, lookupError(err, "Comment", id)
	}
	_, community, err := s.loadDiscussion(ctx, comment.DiscussionID)
	if err != nil {
		return 0, err
	}
	if comment.AuthorID != actorID && community.CreatorID != actorID {
		return 0, deny(ctx, "delete_comment", "Only the author or the community creator can delete this comment")
	}

	removed, err := s.comments.DeleteSubtree(ctx, id)
	if err != nil {
		return 0, lookupError(err, "Comment", id)
	}

	publish(ctx, s.events, models.EventCommentDeleted, comment.DiscussionID, &comment.ID, actorID)
	return removed, nil
}

func (s *CommentService) LikeComment(ctx context.Context, id, userID uint) (*models.LikeState, error) {
	return s.ledger.Like(ctx, models.LikeKindComment, id, userID)
}

func (s *CommentService) UnlikeComment(ctx context.Context, id, userID uint) (*models.LikeState, error) {
	return s.ledger.Unlike(ctx, models.LikeKindComment, id, userID)
}

func (s *CommentService) HasLiked(ctx context.Context, id, userID uint) (bool, error) {
	return s.ledger.HasLiked(ctx, models.LikeKindComment, id, userID)
}

func (s *CommentService) loadDiscussion(ctx context.Context, id uint) (*models.Discussion, *models.Community, error) {
	discussion, err := s.discussions.GetByID(ctx, id)
	if err != nil {
		return nil, nil, lookupError(err, "Discussion", id)
	}
	community, err := s.communities.GetByID(ctx, discussion.CommunityID)
	if err != nil {
		return nil, nil, lookupError(err, "Community", discussion.CommunityID)
	}
	return discussion, community, nil
}
