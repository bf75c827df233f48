package service

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/validation"
)

// Textual outcomes of an administrative user deletion.
const (
	UserDeletedStatus      = "User deleted successfully"
	UserNotDeletedStatus   = "Unable to delete the user"
	invalidCredentialsText = "Invalid username or password"
)

type UserService struct {
	users       repository.UserRepository
	hasher      *PasswordHasher
	directory   *UserDirectory
	adminDomain string
}

type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsPublic bool
}

func NewUserService(users repository.UserRepository, hasher *PasswordHasher, directory *UserDirectory, adminDomain string) *UserService {
	return &UserService{
		users:       users,
		hasher:      hasher,
		directory:   directory,
		adminDomain: adminDomain,
	}
}

// Register creates a regular account. Username and email must be unused.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	return s.create(ctx, in, models.RoleUser)
}

// CreateAdmin creates an administrator. The email must belong to the
// configured admin domain.
func (s *UserService) CreateAdmin(ctx context.Context, in RegisterInput) (*models.User, error) {
	if !validation.EmailInDomain(in.Email, s.adminDomain) {
		return nil, models.NewValidationError("Admin accounts require an @" + s.adminDomain + " email address")
	}
	return s.create(ctx, in, models.RoleAdmin)
}

func (s *UserService) create(ctx context.Context, in RegisterInput, role models.UserRole) (*models.User, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	exists, err := s.users.ExistsByUsernameOrEmail(ctx, in.Username, in.Email)
	if err != nil {
		return nil, storeError(err)
	}
	if exists {
		return nil, models.NewConflictError("Username or email is already registered")
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	user := &models.User{
		Username: in.Username,
		Email:    in.Email,
		Password: hash,
		IsPublic: in.IsPublic,
		Role:     role,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, storeError(err)
	}
	return user, nil
}

// Authenticate returns the user whose credentials match. Unknown usernames and
// wrong passwords are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, models.NewUnauthorizedError(invalidCredentialsText)
	}
	if err != nil {
		return nil, storeError(err)
	}
	if !s.hasher.Matches(user.Password, password) {
		return nil, models.NewUnauthorizedError(invalidCredentialsText)
	}
	return user, nil
}

func (s *UserService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, lookupError(err, "User", id)
	}
	return user, nil
}

// IsAdmin reports whether id names an administrator.
func (s *UserService) IsAdmin(ctx context.Context, id uint) (bool, error) {
	user, err := s.GetUser(ctx, id)
	if err != nil {
		return false, err
	}
	return user.IsAdmin(), nil
}

// DeleteUser removes a user on a best-effort basis and reports the outcome as
// text. It never returns an error.
func (s *UserService) DeleteUser(ctx context.Context, id uint) string {
	if err := s.users.Delete(ctx, id); err != nil {
		middleware.Logger.WarnContext(ctx, "admin user deletion failed",
			slog.Uint64("user_id", uint64(id)),
			slog.String("error", err.Error()),
		)
		return UserNotDeletedStatus
	}
	s.directory.Forget(id)
	return UserDeletedStatus
}
