package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"agora/internal/models"
	"agora/internal/repository"
)

func newUserServiceWith(users *userRepoStub) *UserService {
	return NewUserService(users, NewPasswordHasher(bcrypt.MinCost), NewUserDirectory(users, 8, time.Minute), "agora.dev")
}

func TestUserService_Register_Validation(t *testing.T) {
	t.Parallel()

	svc := newUserServiceWith(noopUserRepo())
	tests := []struct {
		name string
		in   RegisterInput
	}{
		{"bad username", RegisterInput{Username: "x", Email: "x@example.com", Password: "password1"}},
		{"bad email", RegisterInput{Username: "alice", Email: "nope", Password: "password1"}},
		{"weak password", RegisterInput{Username: "alice", Email: "alice@example.com", Password: "short"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := svc.Register(context.Background(), tt.in)
			assert.True(t, models.HasCode(err, models.CodeValidation), "got %v", err)
		})
	}
}

func TestUserService_Register_Conflict(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.existsFn = func(_ context.Context, _, _ string) (bool, error) { return true, nil }
	_, err := newUserServiceWith(users).Register(context.Background(), RegisterInput{
		Username: "alice", Email: "alice@example.com", Password: "password1",
	})
	assert.True(t, models.HasCode(err, models.CodeConflict))
}

func TestUserService_RegisterAndAuthenticate(t *testing.T) {
	t.Parallel()

	var stored *models.User
	users := noopUserRepo()
	users.createFn = func(_ context.Context, u *models.User) error {
		u.ID = 9
		stored = u
		return nil
	}
	users.getByUsernameFn = func(_ context.Context, username string) (*models.User, error) {
		if stored == nil || stored.Username != username {
			return nil, repository.ErrNotFound
		}
		return stored, nil
	}
	svc := newUserServiceWith(users)
	ctx := context.Background()

	user, err := svc.Register(ctx, RegisterInput{Username: "alice", Email: " Alice@Example.com ", Password: "password1"})
	require.NoError(t, err)
	assert.Equal(t, models.RoleUser, user.Role)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "password1", user.Password)

	got, err := svc.Authenticate(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, uint(9), got.ID)

	_, err = svc.Authenticate(ctx, "alice", "wrong-password1")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))

	_, err = svc.Authenticate(ctx, "bob", "password1")
	assert.True(t, models.HasCode(err, models.CodeUnauthorized))
}

func TestUserService_CreateAdmin_RequiresDomain(t *testing.T) {
	t.Parallel()

	svc := newUserServiceWith(noopUserRepo())
	ctx := context.Background()

	_, err := svc.CreateAdmin(ctx, RegisterInput{Username: "root", Email: "root@example.com", Password: "password1"})
	assert.True(t, models.HasCode(err, models.CodeValidation))

	admin, err := svc.CreateAdmin(ctx, RegisterInput{Username: "root", Email: "root@agora.dev", Password: "password1"})
	require.NoError(t, err)
	assert.True(t, admin.IsAdmin())
}

func TestUserService_DeleteUser_ReportsStatus(t *testing.T) {
	t.Parallel()

	users := noopUserRepo()
	users.deleteFn = func(_ context.Context, id uint) error {
		if id == 1 {
			return nil
		}
		return errors.New("foreign key violation")
	}
	svc := newUserServiceWith(users)

	assert.Equal(t, UserDeletedStatus, svc.DeleteUser(context.Background(), 1))
	assert.Equal(t, UserNotDeletedStatus, svc.DeleteUser(context.Background(), 2))
}

func TestPasswordHasher(t *testing.T) {
	t.Parallel()

	h := NewPasswordHasher(bcrypt.MinCost)
	hash, err := h.Hash("correct horse 1")
	require.NoError(t, err)
	assert.True(t, h.Matches(hash, "correct horse 1"))
	assert.False(t, h.Matches(hash, "correct horse 2"))

	assert.Equal(t, bcrypt.DefaultCost, NewPasswordHasher(0).cost)
}
