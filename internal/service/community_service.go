package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel/attribute"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
	"agora/internal/validation"
)

type CommunityService struct {
	communities repository.CommunityRepository
	discussions repository.DiscussionRepository
	users       repository.UserRepository
	guard       *VisibilityGuard
	directory   *UserDirectory
}

type CommunityInput struct {
	Name        string
	Description string
	ImageURL    string
	IsPrivate   bool
}

type communityPage = models.Page[models.CommunityView]

func NewCommunityService(
	communities repository.CommunityRepository,
	discussions repository.DiscussionRepository,
	users repository.UserRepository,
	guard *VisibilityGuard,
	directory *UserDirectory,
) *CommunityService {
	return &CommunityService{
		communities: communities,
		discussions: discussions,
		users:       users,
		guard:       guard,
		directory:   directory,
	}
}

func validateCommunity(in CommunityInput) error {
	if err := validation.ValidateCommunityName(in.Name); err != nil {
		return models.NewValidationError(err.Error())
	}
	if err := validation.ValidateDescription(in.Description); err != nil {
		return models.NewValidationError(err.Error())
	}
	return nil
}

// CreateCommunity stores a community with the creator as its first member.
// Names are unique ignoring case.
func (s *CommunityService) CreateCommunity(ctx context.Context, in CommunityInput, creatorID uint) (_ *models.CommunityView, err error) {
	ctx, span := observability.StartSpan(ctx, "community_service", "create")
	defer func() { span.End(err) }()

	if err := validateCommunity(in); err != nil {
		return nil, err
	}
	if _, err := s.users.GetByID(ctx, creatorID); err != nil {
		return nil, lookupError(err, "User", creatorID)
	}
	if err := s.ensureNameFree(ctx, in.Name, 0); err != nil {
		return nil, err
	}

	community := &models.Community{
		Name:        in.Name,
		Description: in.Description,
		ImageURL:    in.ImageURL,
		CreatorID:   creatorID,
		IsPrivate:   in.IsPrivate,
	}
	if err := s.communities.Create(ctx, community); err != nil {
		return nil, nameError(err, in.Name)
	}
	return s.projectOne(ctx, community, creatorID)
}

func (s *CommunityService) GetCommunity(ctx context.Context, id, viewerID uint) (*models.CommunityView, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Community", id)
	}
	if err := s.guard.Check(ctx, "get_community", community, viewerID); err != nil {
		return nil, err
	}
	return s.projectOne(ctx, community, viewerID)
}

// UpdateCommunity is restricted to the creator. A rename is checked for uniqueness again.
func (s *CommunityService) UpdateCommunity(ctx context.Context, id uint, in CommunityInput, actorID uint) (_ *models.CommunityView, err error) {
	ctx, span := observability.StartSpan(ctx, "community_service", "update",
		attribute.Int64("community_id", int64(id)))
	defer func() { span.End(err) }()

	if err := validateCommunity(in); err != nil {
		return nil, err
	}
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Community", id)
	}
	if community.CreatorID != actorID {
		return nil, deny(ctx, "update_community", "Only the creator can update this community")
	}
	if models.CommunityNameKey(in.Name) != models.CommunityNameKey(community.Name) {
		if err := s.ensureNameFree(ctx, in.Name, community.ID); err != nil {
			return nil, err
		}
	}

	community.Name = in.Name
	community.Description = in.Description
	community.ImageURL = in.ImageURL
	community.IsPrivate = in.IsPrivate
	if err := s.communities.Update(ctx, community); err != nil {
		return nil, nameError(err, in.Name)
	}
	return s.projectOne(ctx, community, actorID)
}

// DeleteCommunity is restricted to the creator and removes all of the
// community's discussions, comments, likes and memberships.
func (s *CommunityService) DeleteCommunity(ctx context.Context, id, actorID uint) (err error) {
	ctx, span := observability.StartSpan(ctx, "community_service", "delete",
		attribute.Int64("community_id", int64(id)))
	defer func() { span.End(err) }()

	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return lookupError(err, "Community", id)
	}
	if community.CreatorID != actorID {
		return deny(ctx, "delete_community", "Only the creator can delete this community")
	}
	if err := s.communities.Delete(ctx, id); err != nil {
		return lookupError(err, "Community", id)
	}
	return nil
}

// ListPublic pages public communities by name.
func (s *CommunityService) ListPublic(ctx context.Context, viewerID uint, page, size int) (communityPage, error) {
	page = max(page, 0)
	if size <= 0 {
		return models.NewPage[models.CommunityView](nil, page, size, 0), nil
	}
	rows, total, err := s.communities.ListPublic(ctx, size, models.Offset(page, size))
	if err != nil {
		return communityPage{}, storeError(err)
	}
	views, err := s.project(ctx, rows, viewerID)
	if err != nil {
		return communityPage{}, err
	}
	return models.NewPage(views, page, size, total), nil
}

// Search matches term against names, dropping private communities viewerID
// cannot see before paging.
func (s *CommunityService) Search(ctx context.Context, term string, viewerID uint, page, size int) (communityPage, error) {
	if strings.TrimSpace(term) == "" {
		return communityPage{}, models.NewValidationError("Search term is required")
	}
	rows, err := s.communities.Search(ctx, term)
	if err != nil {
		return communityPage{}, storeError(err)
	}
	visible, err := s.guard.FilterCommunities(ctx, rows, viewerID)
	if err != nil {
		return communityPage{}, err
	}
	slice := models.Paginate(visible, page, size)
	views, err := s.project(ctx, slice.Content, viewerID)
	if err != nil {
		return communityPage{}, err
	}
	return models.NewPage(views, slice.Page, slice.Size, slice.TotalElements), nil
}

// UserCommunities lists the communities userID belongs to. Private ones are
// shown only to the user and to fellow members.
func (s *CommunityService) UserCommunities(ctx context.Context, userID, viewerID uint) ([]models.CommunityView, error) {
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, lookupError(err, "User", userID)
	}
	rows, err := s.communities.ListByMember(ctx, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if viewerID != userID {
		rows, err = s.guard.FilterCommunities(ctx, rows, viewerID)
		if err != nil {
			return nil, err
		}
	}
	return s.project(ctx, rows, viewerID)
}

// Join adds userID to the community's member set.
func (s *CommunityService) Join(ctx context.Context, id, userID uint) (*models.CommunityView, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Community", id)
	}
	if _, err := s.users.GetByID(ctx, userID); err != nil {
		return nil, lookupError(err, "User", userID)
	}
	added, err := s.communities.AddMember(ctx, id, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if !added {
		return nil, models.NewConflictError("You are already a member of this community")
	}
	return s.projectOne(ctx, community, userID)
}

// Leave removes userID from the member set. The creator can never leave.
func (s *CommunityService) Leave(ctx context.Context, id, userID uint) (*models.CommunityView, error) {
	community, err := s.communities.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "Community", id)
	}
	if community.CreatorID == userID {
		return nil, models.NewConflictError("The creator cannot leave the community")
	}
	removed, err := s.communities.RemoveMember(ctx, id, userID)
	if err != nil {
		return nil, storeError(err)
	}
	if !removed {
		return nil, models.NewConflictError("You are not a member of this community")
	}
	return s.projectOne(ctx, community, userID)
}

// MemberStatus reports whether userID belongs to the community.
func (s *CommunityService) MemberStatus(ctx context.Context, id, userID uint) (bool, error) {
	if _, err := s.communities.GetByID(ctx, id); err != nil {
		return false, lookupError(err, "Community", id)
	}
	member, err := s.communities.IsMember(ctx, id, userID)
	if err != nil {
		return false, storeError(err)
	}
	return member, nil
}

func (s *CommunityService) ensureNameFree(ctx context.Context, name string, excludeID uint) error {
	taken, err := s.communities.NameTaken(ctx, name, excludeID)
	if err != nil {
		return storeError(err)
	}
	if taken {
		return nameConflict(name)
	}
	return nil
}

// nameError covers a concurrent writer claiming the name after ensureNameFree.
func nameError(err error, name string) error {
	if errors.Is(err, repository.ErrDuplicate) {
		return nameConflict(name)
	}
	return storeError(err)
}

func nameConflict(name string) error {
	return models.NewConflictError(fmt.Sprintf("A community named %q already exists", name))
}

func (s *CommunityService) projectOne(ctx context.Context, c *models.Community, viewerID uint) (*models.CommunityView, error) {
	views, err := s.project(ctx, []*models.Community{c}, viewerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (s *CommunityService) project(ctx context.Context, rows []*models.Community, viewerID uint) ([]models.CommunityView, error) {
	creators := lo.Map(rows, func(c *models.Community, _ int) uint { return c.CreatorID })
	usernames, err := s.directory.Usernames(ctx, creators)
	if err != nil {
		return nil, storeError(err)
	}

	views := make([]models.CommunityView, 0, len(rows))
	for _, c := range rows {
		members, err := s.communities.MemberIDs(ctx, c.ID)
		if err != nil {
			return nil, storeError(err)
		}
		discussionCount, err := s.discussions.CountByCommunity(ctx, c.ID)
		if err != nil {
			return nil, storeError(err)
		}
		views = append(views, models.CommunityView{
			ID:              c.ID,
			Name:            c.Name,
			Description:     c.Description,
			ImageURL:        c.ImageURL,
			IsPrivate:       c.IsPrivate,
			CreatorID:       c.CreatorID,
			CreatorUsername: usernames[c.CreatorID],
			MemberIDs:       members,
			MemberCount:     len(members),
			DiscussionCount: discussionCount,
			Member:          viewerID != 0 && lo.Contains(members, viewerID),
			CreatedAt:       c.CreatedAt,
			UpdatedAt:       c.UpdatedAt,
		})
	}
	return views, nil
}
