package service

import (
	"time"

	"gorm.io/gorm"

	"agora/internal/featureflags"
	"agora/internal/repository"
)

const defaultUsernameTTL = 5 * time.Minute

// Options configures the service graph.
type Options struct {
	BcryptCost        int
	AdminEmailDomain  string
	UsernameCacheSize int
	UsernameTTL       time.Duration
	Events            EventPublisher
	Flags             *featureflags.Manager
}

// Services is the wired service graph shared by the transport layer.
type Services struct {
	Users       *UserService
	Communities *CommunityService
	Discussions *DiscussionService
	Comments    *CommentService
	Goals       *GoalService
	Guard       *VisibilityGuard
	Directory   *UserDirectory
	Ledger      *LikeLedger
}

// New builds every service over db.
func New(db *gorm.DB, opts Options) *Services {
	users := repository.NewUserRepository(db)
	communities := repository.NewCommunityRepository(db)
	discussions := repository.NewDiscussionRepository(db)
	comments := repository.NewCommentRepository(db)
	likes := repository.NewLikeRepository(db)

	if opts.UsernameTTL <= 0 {
		opts.UsernameTTL = defaultUsernameTTL
	}

	guard := NewVisibilityGuard(communities)
	directory := NewUserDirectory(users, opts.UsernameCacheSize, opts.UsernameTTL)
	ledger := NewLikeLedger(likes, discussions, comments, communities, users, guard, opts.Events)
	tree := NewCommentTreeBuilder(comments, likes, directory)

	return &Services{
		Users:       NewUserService(users, NewPasswordHasher(opts.BcryptCost), directory, opts.AdminEmailDomain),
		Communities: NewCommunityService(communities, discussions, users, guard, directory),
		Discussions: NewDiscussionService(discussions, communities, users, likes, guard, ledger, directory, opts.Events, opts.Flags),
		Comments:    NewCommentService(comments, discussions, communities, users, guard, ledger, tree, opts.Events),
		Goals:       NewGoalService(repository.NewGoalRepository(db), users),
		Guard:       guard,
		Directory:   directory,
		Ledger:      ledger,
	}
}
