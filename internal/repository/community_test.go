package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommunityRepository_CreateAddsCreatorAsMember(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	c := seedCommunity(t, db, "Runners", alice, true)

	assert.Equal(t, "runners", c.NameKey)
	member, err := repo.IsMember(ctx, c.ID, alice.ID)
	require.NoError(t, err)
	assert.True(t, member)

	ids, err := repo.MemberIDs(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, []uint{alice.ID}, ids)
}

func TestCommunityRepository_NameTakenIgnoresCase(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	c := seedCommunity(t, db, "Runners", alice, false)

	taken, err := repo.NameTaken(ctx, "  RUNNERS ", 0)
	require.NoError(t, err)
	assert.True(t, taken)

	taken, err = repo.NameTaken(ctx, "runners", c.ID)
	require.NoError(t, err)
	assert.False(t, taken, "a community does not collide with itself")

	dup := &models.Community{Name: "rUnNeRs", CreatorID: alice.ID}
	assert.Error(t, repo.Create(ctx, dup), "unique index on name_key")
}

func TestCommunityRepository_DuplicateNameKey(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	seedCommunity(t, db, "Runners", alice, false)
	other := &models.Community{Name: "Walkers", CreatorID: alice.ID}
	require.NoError(t, repo.Create(ctx, other))

	err := repo.Create(ctx, &models.Community{Name: "RUNNERS", CreatorID: alice.ID})
	assert.ErrorIs(t, err, ErrDuplicate)

	other.Name = "runners"
	assert.ErrorIs(t, repo.Update(ctx, other), ErrDuplicate)

	var count int64
	require.NoError(t, db.Model(&models.Community{}).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}

func TestCommunityRepository_Membership(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	c := seedCommunity(t, db, "Runners", alice, true)

	added, err := repo.AddMember(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, added)

	added, err = repo.AddMember(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, added)

	set, err := repo.MemberCommunityIDs(ctx, bob.ID, []uint{c.ID, c.ID + 100})
	require.NoError(t, err)
	assert.Equal(t, map[uint]bool{c.ID: true}, set)

	removed, err := repo.RemoveMember(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	removed, err = repo.RemoveMember(ctx, c.ID, bob.ID)
	require.NoError(t, err)
	assert.False(t, removed)

	member, err := repo.IsMember(ctx, c.ID, 0)
	require.NoError(t, err)
	assert.False(t, member)

	member, err = repo.IsMember(ctx, 9999, bob.ID)
	require.NoError(t, err)
	assert.False(t, member, "unknown community is not an error")
}

func TestCommunityRepository_ListingAndSearch(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	seedCommunity(t, db, "Trail Runners", alice, false)
	seedCommunity(t, db, "Secret Runners", alice, true)
	seedCommunity(t, db, "Chess", bob, false)

	public, total, err := repo.ListPublic(ctx, 10, 0)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Len(t, public, 2)

	found, err := repo.Search(ctx, "RUNNERS")
	require.NoError(t, err)
	require.Len(t, found, 2)
	assert.Equal(t, "Secret Runners", found[0].Name)
	assert.Equal(t, "Trail Runners", found[1].Name)

	none, err := repo.Search(ctx, "%")
	require.NoError(t, err)
	assert.Empty(t, none, "wildcards in the term are literal")

	mine, err := repo.ListByMember(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Chess", mine[0].Name)
}

func TestCommunityRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewCommunityRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	c := seedCommunity(t, db, "Runners", alice, false)
	other := seedCommunity(t, db, "Chess", alice, false)
	d := seedDiscussion(t, db, "Long run", alice, c)
	keep := seedDiscussion(t, db, "Openings", alice, other)
	root := seedComment(t, db, d, alice, nil, time.Now())
	seedComment(t, db, d, alice, root, time.Now())
	_, err := likes.Add(ctx, models.LikeKindDiscussion, d.ID, alice.ID)
	require.NoError(t, err)
	_, err = likes.Add(ctx, models.LikeKindComment, root.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, c.ID))

	_, err = repo.GetByID(ctx, c.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.Discussion{}).Count(&count)
	assert.Equal(t, int64(1), count)
	db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.DiscussionLike{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.CommentLike{}).Count(&count)
	assert.Equal(t, int64(0), count)
	db.Model(&models.CommunityMember{}).Where("community_id = ?", c.ID).Count(&count)
	assert.Equal(t, int64(0), count)

	_, err = NewDiscussionRepository(db).GetByID(ctx, keep.ID)
	assert.NoError(t, err)

	assert.ErrorIs(t, repo.Delete(ctx, c.ID), ErrNotFound)
}

func TestCommunityRepository_IsMemberQuery(t *testing.T) {
	db, mock := setupMockDB(t)
	repo := NewCommunityRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT count(*) FROM "community_members" WHERE community_id = $1 AND user_id = $2`)).
		WithArgs(3, 8).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	member, err := repo.IsMember(context.Background(), 3, 8)
	require.NoError(t, err)
	assert.True(t, member)
	assert.NoError(t, mock.ExpectationsWereMet())
}
