package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"agora/internal/cache"
	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserRepository_Lookups(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	got, err := repo.GetByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, alice.ID, got.ID)

	_, err = repo.GetByID(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := repo.ExistsByUsernameOrEmail(ctx, "nobody", "bob@example.com")
	require.NoError(t, err)
	assert.True(t, exists)

	names, err := repo.UsernamesByIDs(ctx, []uint{alice.ID, bob.ID, 404})
	require.NoError(t, err)
	assert.Equal(t, map[uint]string{alice.ID: "alice", bob.ID: "bob"}, names)
}

func TestUserRepository_Delete(t *testing.T) {
	db := setupTestDB(t)
	repo := NewUserRepository(db)
	communities := NewCommunityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	c := seedCommunity(t, db, "Runners", alice, false)
	_, err := communities.AddMember(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	require.NoError(t, db.Create(&models.Goal{UserID: bob.ID, Title: "Run", Unit: "km", TargetValue: 10, Status: models.GoalInProgress, StartDate: time.Now()}).Error)

	assert.ErrorIs(t, repo.Delete(ctx, alice.ID), ErrUserOwnsCommunities)

	require.NoError(t, repo.Delete(ctx, bob.ID))
	member, err := communities.IsMember(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, member)

	var goals int64
	require.NoError(t, db.Model(&models.Goal{}).Where("user_id = ?", bob.ID).Count(&goals).Error)
	assert.Zero(t, goals)

	assert.ErrorIs(t, repo.Delete(ctx, bob.ID), ErrNotFound)
}

func TestUserRepository_GetByIDQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewUserRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT * FROM "users" WHERE "users"."id" = $1 ORDER BY "users"."id" LIMIT $2`)).
		WithArgs(5, 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "username"}).AddRow(5, "erin"))

	u, err := repo.GetByID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, "erin", u.Username)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserRepository_GetByIDReadsThroughCache(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	cache.SetClient(rdb)
	t.Cleanup(func() {
		cache.SetClient(nil)
		_ = rdb.Close()
	})

	db := setupTestDB(t)
	repo := NewUserRepository(db)
	ctx := context.Background()
	alice := seedUser(t, db, "alice")

	got, err := repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)
	assert.True(t, mr.Exists(cache.UserKey(alice.ID)))

	raw, err := mr.Get(cache.UserKey(alice.ID))
	require.NoError(t, err)
	assert.NotContains(t, raw, "hash")

	// Reads are served from the cache until the entry is invalidated.
	require.NoError(t, db.Exec("UPDATE users SET username = ? WHERE id = ?", "renamed", alice.ID).Error)
	got, err = repo.GetByID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", got.Username)

	require.NoError(t, repo.Delete(ctx, alice.ID))
	assert.False(t, mr.Exists(cache.UserKey(alice.ID)))
	_, err = repo.GetByID(ctx, alice.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
