package seed

import (
	"context"
	"os"
	"testing"

	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	os.Setenv("APP_ENV", "test")
	os.Exit(m.Run())
}

func setup(t *testing.T) (*gorm.DB, *service.Services) {
	t.Helper()
	db, err := database.OpenInMemory()
	require.NoError(t, err)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	svc := service.New(db, service.Options{BcryptCost: bcrypt.MinCost, AdminEmailDomain: "agora.dev"})
	return db, svc
}

func TestBuiltInCommunities_Parse(t *testing.T) {
	t.Parallel()

	items, err := BuiltInCommunities()
	require.NoError(t, err)
	require.NotEmpty(t, items)

	names := map[string]bool{}
	for _, item := range items {
		assert.NotEmpty(t, item.Name)
		assert.False(t, names[models.CommunityNameKey(item.Name)], "duplicate %q", item.Name)
		names[models.CommunityNameKey(item.Name)] = true
	}
	assert.True(t, names["moderators"])
}

func TestCommunities_Idempotent(t *testing.T) {
	t.Parallel()
	db, svc := setup(t)
	ctx := context.Background()

	owner, err := SystemUser(ctx, svc, repository.NewUserRepository(db), "agora.dev")
	require.NoError(t, err)
	assert.True(t, owner.IsAdmin())

	again, err := SystemUser(ctx, svc, repository.NewUserRepository(db), "agora.dev")
	require.NoError(t, err)
	assert.Equal(t, owner.ID, again.ID)

	items, err := BuiltInCommunities()
	require.NoError(t, err)

	created, err := Communities(ctx, svc, owner.ID)
	require.NoError(t, err)
	assert.Equal(t, len(items), created)

	created, err = Communities(ctx, svc, owner.ID)
	require.NoError(t, err)
	assert.Zero(t, created)

	var count int64
	require.NoError(t, db.Model(&models.Community{}).Count(&count).Error)
	assert.Equal(t, int64(len(items)), count)

	var private int64
	require.NoError(t, db.Model(&models.Community{}).Where("is_private = ?", true).Count(&private).Error)
	assert.Equal(t, int64(1), private)
}

func TestSeeder_Run(t *testing.T) {
	t.Parallel()
	db, svc := setup(t)
	ctx := context.Background()

	owner, err := SystemUser(ctx, svc, repository.NewUserRepository(db), "agora.dev")
	require.NoError(t, err)
	_, err = Communities(ctx, svc, owner.ID)
	require.NoError(t, err)

	var ids []uint
	require.NoError(t, db.Model(&models.Community{}).Order("id").Limit(2).Pluck("id", &ids).Error)

	s := NewSeeder(db, svc, 42)
	res, err := s.Run(ctx, ids, Options{
		Users:                   6,
		DiscussionsPerCommunity: 2,
		CommentsPerDiscussion:   3,
		LikePercent:             50,
		GoalsPerUser:            2,
	})
	require.NoError(t, err)
	assert.Equal(t, s.RunID(), res.RunID)
	assert.Equal(t, 6, res.Users)
	assert.Equal(t, res.Discussions*3, res.Comments)
	assert.Equal(t, 12, res.Goals)

	var goals int64
	require.NoError(t, db.Model(&models.Goal{}).Count(&goals).Error)
	assert.Equal(t, int64(12), goals)

	var discussions int64
	require.NoError(t, db.Model(&models.Discussion{}).Count(&discussions).Error)
	assert.Equal(t, int64(res.Discussions), discussions)

	// Every reply must point at a comment of its own discussion.
	var orphans int64
	require.NoError(t, db.Table("comments AS c").
		Joins("JOIN comments AS p ON p.id = c.parent_id").
		Where("p.discussion_id <> c.discussion_id").
		Count(&orphans).Error)
	assert.Zero(t, orphans)

	_, err = svc.Users.Authenticate(ctx, "seed_"+res.RunID+"_0", DemoPassword)
	assert.NoError(t, err)
}

func TestSeeder_ClearAll(t *testing.T) {
	t.Parallel()
	db, svc := setup(t)
	ctx := context.Background()

	owner, err := SystemUser(ctx, svc, repository.NewUserRepository(db), "agora.dev")
	require.NoError(t, err)
	_, err = Communities(ctx, svc, owner.ID)
	require.NoError(t, err)

	require.NoError(t, NewSeeder(db, svc, 1).ClearAll())

	for _, model := range models.AllModels() {
		var count int64
		require.NoError(t, db.Model(model).Count(&count).Error)
		assert.Zero(t, count, "%T", model)
	}
}
