package service

import (
	"context"

	"agora/internal/models"
)

// userRepoStub is a stub for repository.UserRepository.
type userRepoStub struct {
	createFn         func(context.Context, *models.User) error
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	existsFn         func(context.Context, string, string) (bool, error)
	usernamesByIDsFn func(context.Context, []uint) (map[uint]string, error)
	deleteFn         func(context.Context, uint) error
}

func (s *userRepoStub) Create(ctx context.Context, u *models.User) error { return s.createFn(ctx, u) }
func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) ExistsByUsernameOrEmail(ctx context.Context, username, email string) (bool, error) {
	return s.existsFn(ctx, username, email)
}
func (s *userRepoStub) UsernamesByIDs(ctx context.Context, ids []uint) (map[uint]string, error) {
	return s.usernamesByIDsFn(ctx, ids)
}
func (s *userRepoStub) Delete(ctx context.Context, id uint) error { return s.deleteFn(ctx, id) }

func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		createFn:        func(_ context.Context, _ *models.User) error { return nil },
		getByIDFn:       func(_ context.Context, id uint) (*models.User, error) { return &models.User{ID: id}, nil },
		getByUsernameFn: func(_ context.Context, _ string) (*models.User, error) { return &models.User{}, nil },
		existsFn:        func(_ context.Context, _, _ string) (bool, error) { return false, nil },
		usernamesByIDsFn: func(_ context.Context, ids []uint) (map[uint]string, error) {
			out := make(map[uint]string, len(ids))
			for _, id := range ids {
				out[id] = "user"
			}
			return out, nil
		},
		deleteFn: func(_ context.Context, _ uint) error { return nil },
	}
}

// commentRepoStub is a stub for repository.CommentRepository.
type commentRepoStub struct {
	listByDiscussionFn func(context.Context, uint) ([]*models.Comment, error)
}

func (s *commentRepoStub) Create(context.Context, *models.Comment) error { return nil }
func (s *commentRepoStub) GetByID(context.Context, uint) (*models.Comment, error) {
	return &models.Comment{}, nil
}
func (s *commentRepoStub) Update(context.Context, *models.Comment) error      { return nil }
func (s *commentRepoStub) DeleteSubtree(context.Context, uint) (int, error) { return 0, nil }
func (s *commentRepoStub) ListByDiscussion(ctx context.Context, discussionID uint) ([]*models.Comment, error) {
	return s.listByDiscussionFn(ctx, discussionID)
}

// likeRepoStub is a stub for repository.LikeRepository backed by fixed maps.
type likeRepoStub struct {
	counts map[uint]int64
	liked  map[uint]bool
}

func (s *likeRepoStub) Add(context.Context, models.LikeKind, uint, uint) (bool, error) {
	return true, nil
}
func (s *likeRepoStub) Remove(context.Context, models.LikeKind, uint, uint) (bool, error) {
	return true, nil
}
func (s *likeRepoStub) Exists(_ context.Context, _ models.LikeKind, id, _ uint) (bool, error) {
	return s.liked[id], nil
}
func (s *likeRepoStub) Count(_ context.Context, _ models.LikeKind, id uint) (int64, error) {
	return s.counts[id], nil
}
func (s *likeRepoStub) Counts(context.Context, models.LikeKind, []uint) (map[uint]int64, error) {
	out := make(map[uint]int64, len(s.counts))
	for k, v := range s.counts {
		out[k] = v
	}
	return out, nil
}
func (s *likeRepoStub) LikedBy(_ context.Context, _ models.LikeKind, userID uint, _ []uint) (map[uint]bool, error) {
	out := make(map[uint]bool)
	if userID == 0 {
		return out, nil
	}
	for k, v := range s.liked {
		out[k] = v
	}
	return out, nil
}

// membershipStub answers membership from a fixed set of (community, user) pairs.
type membershipStub struct {
	members map[[2]uint]bool
	err     error
}

func (s *membershipStub) IsMember(_ context.Context, communityID, userID uint) (bool, error) {
	if s.err != nil {
		return false, s.err
	}
	return s.members[[2]uint{communityID, userID}], nil
}

func (s *membershipStub) MemberCommunityIDs(_ context.Context, userID uint, ids []uint) (map[uint]bool, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make(map[uint]bool)
	for _, id := range ids {
		if s.members[[2]uint{id, userID}] {
			out[id] = true
		}
	}
	return out, nil
}

// eventRecorder captures published events.
type eventRecorder struct {
	events []models.DiscussionEvent
	err    error
}

func (r *eventRecorder) PublishDiscussionEvent(_ context.Context, ev models.DiscussionEvent) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *eventRecorder) types() []models.DiscussionEventType {
	out := make([]models.DiscussionEventType, 0, len(r.events))
	for _, ev := range r.events {
		out = append(out, ev.Type)
	}
	return out
}
