package repository

import (
	"context"
	"testing"
	"time"

	"agora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiscussionRepository_ListMostCommented(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	c := seedCommunity(t, db, "Runners", alice, false)
	quiet := seedDiscussion(t, db, "quiet", alice, c)
	busy := seedDiscussion(t, db, "busy", alice, c)
	tieA := seedDiscussion(t, db, "tie a", alice, c)
	tieB := seedDiscussion(t, db, "tie b", alice, c)

	now := time.Now()
	for i := 0; i < 3; i++ {
		seedComment(t, db, busy, alice, nil, now)
	}
	seedComment(t, db, tieB, alice, nil, now)
	seedComment(t, db, tieA, alice, nil, now)

	got, err := repo.ListMostCommented(ctx)
	require.NoError(t, err)
	require.Len(t, got, 4)
	assert.Equal(t, []uint{busy.ID, tieA.ID, tieB.ID, quiet.ID}, []uint{got[0].ID, got[1].ID, got[2].ID, got[3].ID})

	counts, err := repo.CommentCounts(ctx, []uint{busy.ID, quiet.ID, tieA.ID})
	require.NoError(t, err)
	assert.Equal(t, int64(3), counts[busy.ID])
	assert.Equal(t, int64(0), counts[quiet.ID])
	assert.Equal(t, int64(1), counts[tieA.ID])
}

func TestDiscussionRepository_Search(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	c := seedCommunity(t, db, "Runners", alice, false)
	byTitle := seedDiscussion(t, db, "Marathon pacing", alice, c)
	byContent := &models.Discussion{Title: "Shoes", Content: "best for a MARATHON?", AuthorID: alice.ID, CommunityID: c.ID}
	require.NoError(t, repo.Create(ctx, byContent))
	seedDiscussion(t, db, "Hill repeats", alice, c)

	got, err := repo.Search(ctx, "marathon")
	require.NoError(t, err)
	ids := []uint{}
	for _, d := range got {
		ids = append(ids, d.ID)
	}
	assert.ElementsMatch(t, []uint{byTitle.ID, byContent.ID}, ids)

	got, err = repo.Search(ctx, "100%")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestDiscussionRepository_ListByCommunityAndAuthor(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")
	c := seedCommunity(t, db, "Runners", alice, false)
	other := seedCommunity(t, db, "Chess", bob, false)
	for i := 0; i < 5; i++ {
		seedDiscussion(t, db, "run", alice, c)
	}
	seedDiscussion(t, db, "gambit", bob, other)

	page, total, err := repo.ListByCommunity(ctx, c.ID, 2, 4)
	require.NoError(t, err)
	assert.Equal(t, int64(5), total)
	assert.Len(t, page, 1)

	byBob, err := repo.ListByAuthor(ctx, bob.ID)
	require.NoError(t, err)
	require.Len(t, byBob, 1)
	assert.Equal(t, "gambit", byBob[0].Title)
}

func TestDiscussionRepository_DeleteCascades(t *testing.T) {
	db := setupTestDB(t)
	repo := NewDiscussionRepository(db)
	likes := NewLikeRepository(db)
	ctx := context.Background()

	alice := seedUser(t, db, "alice")
	c := seedCommunity(t, db, "Runners", alice, false)
	d := seedDiscussion(t, db, "Long run", alice, c)
	keep := seedDiscussion(t, db, "Tempo", alice, c)
	root := seedComment(t, db, d, alice, nil, time.Now())
	seedComment(t, db, d, alice, root, time.Now())
	kept := seedComment(t, db, keep, alice, nil, time.Now())
	_, err := likes.Add(ctx, models.LikeKindComment, root.ID, alice.ID)
	require.NoError(t, err)
	_, err = likes.Add(ctx, models.LikeKindDiscussion, d.ID, alice.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, d.ID))

	_, err = repo.GetByID(ctx, d.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	var count int64
	db.Model(&models.Comment{}).Count(&count)
	assert.Equal(t, int64(1), count)
	_, err = NewCommentRepository(db).GetByID(ctx, kept.ID)
	assert.NoError(t, err)

	n, err := likes.Count(ctx, models.LikeKindDiscussion, d.ID)
	require.NoError(t, err)
	assert.Zero(t, n)

	assert.ErrorIs(t, repo.Delete(ctx, d.ID), ErrNotFound)
}
