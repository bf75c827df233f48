package seed

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/service"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/samber/lo"
	"gorm.io/gorm"
)

// DemoPassword is shared by every generated account.
const DemoPassword = "password123"

// Options control the size of a demo data run.
type Options struct {
	Users                   int
	DiscussionsPerCommunity int
	CommentsPerDiscussion   int
	// LikePercent is the chance (0-100) that a member likes a given discussion or comment.
	LikePercent  int
	GoalsPerUser int
}

// Result summarises what a run created.
type Result struct {
	RunID       string
	Users       int
	Memberships int
	Discussions int
	Comments    int
	Likes       int
	Goals       int
}

// Seeder generates demo data through the service layer so every stored row
// satisfies the same rules as API traffic.
type Seeder struct {
	db    *gorm.DB
	svc   *service.Services
	faker *gofakeit.Faker
	runID string
}

// NewSeeder creates a Seeder bound to svc. A non-zero seed makes the generated
// content reproducible.
func NewSeeder(db *gorm.DB, svc *service.Services, seed int64) *Seeder {
	return &Seeder{
		db:    db,
		svc:   svc,
		faker: gofakeit.New(seed),
		runID: strings.ReplaceAll(uuid.NewString(), "-", "")[:8],
	}
}

// RunID tags the accounts created by this seeder.
func (s *Seeder) RunID() string {
	return s.runID
}

// ClearAll removes every row the service owns, children first.
func (s *Seeder) ClearAll() error {
	for _, model := range lo.Reverse(models.AllModels()) {
		if err := s.db.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
			return fmt.Errorf("clear %T: %w", model, err)
		}
	}
	return nil
}

// Run creates users, joins them to communities and fills every community
// with discussions, threaded comments and likes.
func (s *Seeder) Run(ctx context.Context, communities []uint, opts Options) (*Result, error) {
	res := &Result{RunID: s.runID}

	users := make([]*models.User, 0, opts.Users)
	for i := 0; i < opts.Users; i++ {
		username := fmt.Sprintf("seed_%s_%d", s.runID, i)
		u, err := s.svc.Users.Register(ctx, service.RegisterInput{
			Username: username,
			Email:    username + "@example.com",
			Password: DemoPassword,
			IsPublic: s.faker.Number(0, 99) < 80,
		})
		if err != nil {
			return res, fmt.Errorf("register user %d: %w", i, err)
		}
		users = append(users, u)
		for g := 0; g < opts.GoalsPerUser; g++ {
			if err := s.goal(ctx, u.ID, res); err != nil {
				return res, err
			}
		}
	}
	res.Users = len(users)

	for _, communityID := range communities {
		members, err := s.joinSome(ctx, communityID, users, res)
		if err != nil {
			return res, err
		}
		if len(members) == 0 {
			continue
		}
		for d := 0; d < opts.DiscussionsPerCommunity; d++ {
			if err := s.discussion(ctx, communityID, members, opts, res); err != nil {
				return res, err
			}
		}
	}

	middleware.Logger.Info("seed run complete",
		slog.String("run_id", res.RunID),
		slog.Int("users", res.Users),
		slog.Int("discussions", res.Discussions),
		slog.Int("comments", res.Comments),
		slog.Int("likes", res.Likes),
		slog.Int("goals", res.Goals),
	)
	return res, nil
}

var goalUnits = []string{"km", "pages", "hours", "sessions"}

// goal creates a goal with some progress already logged.
func (s *Seeder) goal(ctx context.Context, userID uint, res *Result) error {
	start := s.faker.DateRange(time.Now().AddDate(0, -2, 0), time.Now())
	end := start.AddDate(0, s.faker.Number(1, 6), 0)
	target := float64(s.faker.Number(10, 500))
	g, err := s.svc.Goals.CreateGoal(ctx, userID, service.GoalInput{
		Title:       strings.TrimSuffix(s.faker.Sentence(3), "."),
		Description: s.faker.Sentence(10),
		TargetValue: target,
		Unit:        goalUnits[s.faker.Number(0, len(goalUnits)-1)],
		StartDate:   &start,
		EndDate:     &end,
	})
	if err != nil {
		return fmt.Errorf("create goal: %w", err)
	}
	if _, err := s.svc.Goals.UpdateProgress(ctx, g.ID, userID, target*float64(s.faker.Number(0, 120))/100); err != nil {
		return fmt.Errorf("log goal progress: %w", err)
	}
	res.Goals++
	return nil
}

func (s *Seeder) joinSome(ctx context.Context, communityID uint, users []*models.User, res *Result) ([]*models.User, error) {
	var members []*models.User
	for _, u := range users {
		if s.faker.Number(0, 99) >= 60 {
			continue
		}
		if _, err := s.svc.Communities.Join(ctx, communityID, u.ID); err != nil {
			if models.HasCode(err, models.CodeConflict) {
				members = append(members, u)
				continue
			}
			return nil, fmt.Errorf("join community %d: %w", communityID, err)
		}
		members = append(members, u)
		res.Memberships++
	}
	return members, nil
}

func (s *Seeder) discussion(ctx context.Context, communityID uint, members []*models.User, opts Options, res *Result) error {
	author := members[s.faker.Number(0, len(members)-1)]
	d, err := s.svc.Discussions.CreateDiscussion(ctx, service.CreateDiscussionInput{
		AuthorID: author.ID,
		DiscussionInput: service.DiscussionInput{
			Title:       strings.TrimSuffix(s.faker.Sentence(6), "."),
			Content:     s.faker.Paragraph(2, 4, 12, "\n\n"),
			CommunityID: communityID,
		},
	})
	if err != nil {
		return fmt.Errorf("create discussion: %w", err)
	}
	res.Discussions++

	var comments []uint
	for i := 0; i < opts.CommentsPerDiscussion; i++ {
		in := service.CreateCommentInput{
			AuthorID:     members[s.faker.Number(0, len(members)-1)].ID,
			DiscussionID: d.ID,
			Content:      s.faker.Sentence(s.faker.Number(4, 18)),
		}
		// Roughly half of the comments reply to an earlier one.
		if len(comments) > 0 && s.faker.Bool() {
			parent := comments[s.faker.Number(0, len(comments)-1)]
			in.ParentID = &parent
		}
		node, err := s.svc.Comments.CreateComment(ctx, in)
		if err != nil {
			return fmt.Errorf("create comment: %w", err)
		}
		comments = append(comments, node.ID)
		res.Comments++
	}

	for _, m := range members {
		if s.faker.Number(0, 99) < opts.LikePercent {
			if _, err := s.svc.Discussions.LikeDiscussion(ctx, d.ID, m.ID); err != nil {
				return fmt.Errorf("like discussion: %w", err)
			}
			res.Likes++
		}
		for _, commentID := range comments {
			if s.faker.Number(0, 99) < opts.LikePercent/2 {
				if _, err := s.svc.Comments.LikeComment(ctx, commentID, m.ID); err != nil {
					return fmt.Errorf("like comment: %w", err)
				}
				res.Likes++
			}
		}
	}
	return nil
}
