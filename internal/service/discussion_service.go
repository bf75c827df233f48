package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"agora/internal/featureflags"
	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/render"
	"agora/internal/repository"
)

const (
	maxTitleLen   = 300
	maxContentLen = 40000
)

type DiscussionService struct {
	discussions repository.DiscussionRepository
	communities repository.CommunityRepository
	users       repository.UserRepository
	likes       repository.LikeRepository
	guard       *VisibilityGuard
	ledger      *LikeLedger
	directory   *UserDirectory
	events      EventPublisher
	flags       *featureflags.Manager
}

type discussionPage = models.Page[models.DiscussionView]

type DiscussionInput struct {
	Title       string
	Content     string
	CommunityID uint
}

type CreateDiscussionInput struct {
	AuthorID uint
	DiscussionInput
}

type UpdateDiscussionInput struct {
	ActorID      uint
	DiscussionID uint
	DiscussionInput
}

func NewDiscussionService(
	discussions repository.DiscussionRepository,
	communities repository.CommunityRepository,
	users repository.UserRepository,
	likes repository.LikeRepository,
	guard *VisibilityGuard,
	ledger *LikeLedger,
	directory *UserDirectory,
	events EventPublisher,
	flags *featureflags.Manager,
) *DiscussionService {
	return &DiscussionService{
		discussions: discussions,
		communities: communities,
		users:       users,
		likes:       likes,
		guard:       guard,
		ledger:      ledger,
		directory:   directory,
		events:      events,
		flags:       flags,
	}
}

func validateDiscussion(in DiscussionInput) error {
	if strings.TrimSpace(in.Title) == "" {
		return models.NewValidationError("Title is required")
	}
	if utf8.RuneCountInString(in.Title) > maxTitleLen {
		return models.NewValidationError("Title too long (max 300 characters)")
	}
	if strings.TrimSpace(in.Content) == "" {
		return models.NewValidationError("Content is required")
	}
	if utf8.RuneCountInString(in.Content) > maxContentLen {
		return models.NewValidationError("Content too long (max 40000 characters)")
	}
	return nil
}

// GetDiscussion returns the discussion projected for viewerID.
func (s *DiscussionService) GetDiscussion(ctx context.Context, id, viewerID uint) (_ *models.DiscussionView, err error) {
	ctx, span := observability.StartSpan(ctx, "discussion_service", "get",
		attribute.Int64("discussion_id", int64(id)))
	defer func() { span.End(err) }()

	discussion, community, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guard.Check(ctx, "get_discussion", community, viewerID); err != nil {
		return nil, err
	}
	return s.projectOne(ctx, discussion, community, viewerID)
}

// CreateDiscussion requires the community to exist and the author to be a member.
func (s *DiscussionService) CreateDiscussion(ctx context.Context, in CreateDiscussionInput) (_ *models.DiscussionView, err error) {
	ctx, span := observability.StartSpan(ctx, "discussion_service", "create",
		attribute.Int64("community_id", int64(in.CommunityID)))
	defer func() { span.End(err) }()

	if err := validateDiscussion(in.DiscussionInput); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, in.AuthorID); err != nil {
		return nil, lookupError(err, "User", in.AuthorID)
	}
	community, err := s.communities.GetByID(ctx, in.CommunityID)
	if err != nil {
		return nil, lookupError(err, "Community", in.CommunityID)
	}
	if err := s.requireMember(ctx, "create_discussion", community.ID, in.AuthorID); err != nil {
		return nil, err
	}

	discussion := &models.Discussion{
		Title:       in.Title,
		Content:     in.Content,
		AuthorID:    in.AuthorID,
		CommunityID: community.ID,
	}
	if err := s.discussions.Create(ctx, discussion); err != nil {
		return nil, storeError(err)
	}

	publish(ctx, s.events, models.EventDiscussionCreated, discussion.ID, nil, in.AuthorID)
	return s.projectOne(ctx, discussion, community, in.AuthorID)
}

// UpdateDiscussion lets the author edit title and content, and move the
// discussion to another community the author belongs to.
func (s *DiscussionService) UpdateDiscussion(ctx context.Context, in UpdateDiscussionInput) (_ *models.DiscussionView, err error) {
	ctx, span := observability.StartSpan(ctx, "discussion_service", "update",
		attribute.Int64("discussion_id", int64(in.DiscussionID)))
	defer func() { span.End(err) }()

	if err := validateDiscussion(in.DiscussionInput); err != nil {
		return nil, err
	}
	discussion, community, err := s.load(ctx, in.DiscussionID)
	if err != nil {
		return nil, err
	}
	if discussion.AuthorID != in.ActorID {
		return nil, deny(ctx, "update_discussion", "You can only update your own discussions")
	}

	if in.CommunityID != 0 && in.CommunityID != discussion.CommunityID {
		dest, err := s.communities.GetByID(ctx, in.CommunityID)
		if err != nil {
			return nil, lookupError(err, "Community", in.CommunityID)
		}
		if err := s.requireMember(ctx, "move_discussion", dest.ID, in.ActorID); err != nil {
			return nil, err
		}
		discussion.CommunityID = dest.ID
		community = dest
	}

	discussion.Title = in.Title
	discussion.Content = in.Content
	if err := s.discussions.Update(ctx, discussion); err != nil {
		return nil, storeError(err)
	}

	publish(ctx, s.events, models.EventDiscussionUpdated, discussion.ID, nil, in.ActorID)
	return s.projectOne(ctx, discussion, community, in.ActorID)
}

// DeleteDiscussion is allowed for the author and for the community's creator.
// Comments and likes go with it.
func (s *DiscussionService) DeleteDiscussion(ctx context.Context, id, actorID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "discussion_service", "delete",
		attribute.Int64("discussion_id", int64(id)))
	defer func() { span.End(err) }()

	discussion, community, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if discussion.AuthorID != actorID && community.CreatorID != actorID {
		return deny(ctx, "delete_discussion", "Only the author or the community creator can delete this discussion")
	}
	if err := s.discussions.Delete(ctx, id); err != nil {
		return lookupError(err, "Discussion", id)
	}

	publish(ctx, s.events, models.EventDiscussionDeleted, id, nil, actorID)
	return nil
}

// ListByCommunity pages the community's discussions, newest first.
func (s *DiscussionService) ListByCommunity(ctx context.Context, communityID, viewerID uint, page, size int) (discussionPage, error) {
	community, err := s.communities.GetByID(ctx, communityID)
	if err != nil {
		return discussionPage{}, lookupError(err, "Community", communityID)
	}
	if err := s.guard.Check(ctx, "list_community_discussions", community, viewerID); err != nil {
		return discussionPage{}, err
	}

	page = max(page, 0)
	if size <= 0 {
		return models.NewPage[models.DiscussionView](nil, page, size, 0), nil
	}
	rows, total, err := s.discussions.ListByCommunity(ctx, communityID, size, models.Offset(page, size))
	if err != nil {
		return discussionPage{}, storeError(err)
	}
	views, err := s.project(ctx, rows, map[uint]*models.Community{community.ID: community}, viewerID)
	if err != nil {
		return discussionPage{}, err
	}
	return models.NewPage(views, page, size, total), nil
}

// ListByUser pages the user's discussions that viewerID may see.
func (s *DiscussionService) ListByUser(ctx context.Context, userID, viewerID uint, page, size int) (discussionPage, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return discussionPage{}, lookupError(err, "User", userID)
	}
	rows, err := s.discussions.ListByAuthor(ctx, userID)
	if err != nil {
		return discussionPage{}, storeError(err)
	}
	return s.visiblePage(ctx, rows, viewerID, page, size)
}

// Search matches term against title and content, ignoring case.
func (s *DiscussionService) Search(ctx context.Context, term string, viewerID uint, page, size int) (discussionPage, error) {
	if strings.TrimSpace(term) == "" {
		return discussionPage{}, models.NewValidationError("Search term is required")
	}
	rows, err := s.discussions.Search(ctx, term)
	if err != nil {
		return discussionPage{}, storeError(err)
	}
	return s.visiblePage(ctx, rows, viewerID, page, size)
}

// Trending orders discussions by comment count, most first; equal counts by id.
func (s *DiscussionService) Trending(ctx context.Context, viewerID uint, page, size int) (discussionPage, error) {
	rows, err := s.discussions.ListMostCommented(ctx)
	if err != nil {
		return discussionPage{}, storeError(err)
	}
	return s.visiblePage(ctx, rows, viewerID, page, size)
}

func (s *DiscussionService) LikeDiscussion(ctx context.Context, id, userID uint) (*models.LikeState, error) {
	return s.ledger.Like(ctx, models.LikeKindDiscussion, id, userID)
}

func (s *DiscussionService) UnlikeDiscussion(ctx context.Context, id, userID uint) (*models.LikeState, error) {
	return s.ledger.Unlike(ctx, models.LikeKindDiscussion, id, userID)
}

func (s *DiscussionService) HasLiked(ctx context.Context, id, userID uint) (bool, error) {
	return s.ledger.HasLiked(ctx, models.LikeKindDiscussion, id, userID)
}

func (s *DiscussionService) load(ctx context.Context, id uint) (*models.Discussion, *models.Community, error) {
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

func (s *DiscussionService) requireMember(ctx context.Context, operation string, communityID, userID uint) error {
	member, err := s.communities.IsMember(ctx, communityID, userID)
	if err != nil {
		return storeError(err)
	}
	if !member {
		return deny(ctx, operation, "You must be a member of this community")
	}
	return nil
}

// visiblePage drops discussions viewerID may not see, then slices the page,
// so page boundaries only count visible rows.
func (s *DiscussionService) visiblePage(ctx context.Context, rows []*models.Discussion, viewerID uint, page, size int) (discussionPage, error) {
	communityIDs := lo.Uniq(lo.Map(rows, func(d *models.Discussion, _ int) uint { return d.CommunityID }))
	communities, err := s.communities.GetByIDs(ctx, communityIDs)
	if err != nil {
		return discussionPage{}, storeError(err)
	}
	visible, err := s.guard.Visible(ctx, communities, viewerID)
	if err != nil {
		return discussionPage{}, err
	}
	filtered := lo.Filter(rows, func(d *models.Discussion, _ int) bool {
		return visible[d.CommunityID]
	})

	slice := models.Paginate(filtered, page, size)
	views, err := s.project(ctx, slice.Content, communities, viewerID)
	if err != nil {
		return discussionPage{}, err
	}
	return models.NewPage(views, slice.Page, slice.Size, slice.TotalElements), nil
}

func (s *DiscussionService) projectOne(ctx context.Context, d *models.Discussion, community *models.Community, viewerID uint) (*models.DiscussionView, error) {
	views, err := s.project(ctx, []*models.Discussion{d}, map[uint]*models.Community{community.ID: community}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// project builds viewer-relative views with one batched query per derived field.
func (s *DiscussionService) project(ctx context.Context, rows []*models.Discussion, communities map[uint]*models.Community, viewerID uint) ([]models.DiscussionView, error) {
	if len(rows) == 0 {
		return []models.DiscussionView{}, nil
	}
	ids := lo.Map(rows, func(d *models.Discussion, _ int) uint { return d.ID })
	authors := lo.Map(rows, func(d *models.Discussion, _ int) uint { return d.AuthorID })

	usernames, err := s.directory.Usernames(ctx, authors)
	if err != nil {
		return nil, storeError(err)
	}
	commentCounts, err := s.discussions.CommentCounts(ctx, ids)
	if err != nil {
		return nil, storeError(err)
	}
	likeCounts, err := s.likes.Counts(ctx, models.LikeKindDiscussion, ids)
	if err != nil {
		return nil, storeError(err)
	}
	liked, err := s.likes.LikedBy(ctx, models.LikeKindDiscussion, viewerID, ids)
	if err != nil {
		return nil, storeError(err)
	}
	withHTML := s.flags.Enabled(featureflags.MarkdownHTML, viewerID)

	return lo.Map(rows, func(d *models.Discussion, _ int) models.DiscussionView {
		v := models.DiscussionView{
			ID:             d.ID,
			Title:          d.Title,
			Content:        d.Content,
			AuthorID:       d.AuthorID,
			AuthorUsername: usernames[d.AuthorID],
			CommunityID:    d.CommunityID,
			CreatedAt:      d.CreatedAt,
			UpdatedAt:      d.UpdatedAt,
			CommentCount:   commentCounts[d.ID],
			LikeCount:      likeCounts[d.ID],
			UserHasLiked:   liked[d.ID],
		}
		if c, ok := communities[d.CommunityID]; ok {
			v.CommunityName = c.Name
		}
		if withHTML {
			v.ContentHTML = render.Markdown(d.Content)
		}
		return v
	}), nil
}
