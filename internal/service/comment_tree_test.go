package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"agora/internal/models"
)

func ptr(id uint) *uint { return &id }

func newTreeBuilder(rows []*models.Comment, likes *likeRepoStub) *CommentTreeBuilder {
	comments := &commentRepoStub{
		listByDiscussionFn: func(_ context.Context, _ uint) ([]*models.Comment, error) { return rows, nil },
	}
	if likes == nil {
		likes = &likeRepoStub{}
	}
	return NewCommentTreeBuilder(comments, likes, NewUserDirectory(noopUserRepo(), 16, time.Minute))
}

func TestCommentTreeBuilder_NestedReplies(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rows := []*models.Comment{
		{ID: 1, Content: "R1", AuthorID: 10, DiscussionID: 7, CreatedAt: base},
		{ID: 2, Content: "R1a", AuthorID: 11, DiscussionID: 7, ParentID: ptr(1), CreatedAt: base.Add(time.Minute)},
		{ID: 3, Content: "R1a-i", AuthorID: 10, DiscussionID: 7, ParentID: ptr(2), CreatedAt: base.Add(2 * time.Minute)},
	}
	tree, err := newTreeBuilder(rows, &likeRepoStub{counts: map[uint]int64{2: 4}, liked: map[uint]bool{2: true}}).
		Build(context.Background(), 7, 11)
	require.NoError(t, err)

	require.Len(t, tree, 1)
	r1 := tree[0]
	assert.Equal(t, "R1", r1.Content)
	require.Len(t, r1.Replies, 1)

	r1a := r1.Replies[0]
	assert.Equal(t, "R1a", r1a.Content)
	assert.Equal(t, int64(4), r1a.LikeCount)
	assert.True(t, r1a.UserHasLiked)
	require.Len(t, r1a.Replies, 1)

	leaf := r1a.Replies[0]
	assert.Equal(t, "R1a-i", leaf.Content)
	assert.NotNil(t, leaf.Replies)
	assert.Empty(t, leaf.Replies)
	assert.False(t, leaf.UserHasLiked)
	assert.Equal(t, "user", leaf.AuthorUsername)
}

func TestCommentTreeBuilder_OrderAndCompleteness(t *testing.T) {
	t.Parallel()

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	// Rows arrive ordered by created_at, then id.
	rows := []*models.Comment{
		{ID: 5, DiscussionID: 1, CreatedAt: base},
		{ID: 2, DiscussionID: 1, CreatedAt: base.Add(time.Second)},
		{ID: 3, DiscussionID: 1, ParentID: ptr(5), CreatedAt: base.Add(2 * time.Second)},
		{ID: 4, DiscussionID: 1, ParentID: ptr(5), CreatedAt: base.Add(2 * time.Second)},
		{ID: 6, DiscussionID: 1, ParentID: ptr(2), CreatedAt: base.Add(3 * time.Second)},
		{ID: 7, DiscussionID: 1, ParentID: ptr(3), CreatedAt: base.Add(4 * time.Second)},
	}
	builder := newTreeBuilder(rows, nil)

	tree, err := builder.Build(context.Background(), 1, 0)
	require.NoError(t, err)

	require.Len(t, tree, 2)
	assert.Equal(t, uint(5), tree[0].ID)
	assert.Equal(t, uint(2), tree[1].ID)
	require.Len(t, tree[0].Replies, 2)
	assert.Equal(t, uint(3), tree[0].Replies[0].ID)
	assert.Equal(t, uint(4), tree[0].Replies[1].ID)
	assert.Equal(t, uint(7), tree[0].Replies[0].Replies[0].ID)
	assert.Equal(t, uint(6), tree[1].Replies[0].ID)

	total := 0
	for _, root := range tree {
		total += root.Size()
	}
	assert.Equal(t, len(rows), total, "every comment appears exactly once")

	again, err := builder.Build(context.Background(), 1, 0)
	require.NoError(t, err)
	assert.Equal(t, tree, again, "building twice yields the same tree")
}

func TestCommentTreeBuilder_UntrustedParents(t *testing.T) {
	t.Parallel()

	rows := []*models.Comment{
		{ID: 1, DiscussionID: 1},
		// Parent lives in another discussion.
		{ID: 2, DiscussionID: 1, ParentID: ptr(99)},
		// Self-reference.
		{ID: 3, DiscussionID: 1, ParentID: ptr(3)},
		// Two-node cycle with no root.
		{ID: 4, DiscussionID: 1, ParentID: ptr(5)},
		{ID: 5, DiscussionID: 1, ParentID: ptr(4)},
		{ID: 6, DiscussionID: 1, ParentID: ptr(1)},
	}
	tree, err := newTreeBuilder(rows, nil).Build(context.Background(), 1, 0)
	require.NoError(t, err)

	require.Len(t, tree, 1)
	assert.Equal(t, uint(1), tree[0].ID)
	require.Len(t, tree[0].Replies, 1)
	assert.Equal(t, uint(6), tree[0].Replies[0].ID)
}

func TestCommentTreeBuilder_Empty(t *testing.T) {
	t.Parallel()

	tree, err := newTreeBuilder(nil, nil).Build(context.Background(), 1, 1)
	require.NoError(t, err)
	assert.NotNil(t, tree)
	assert.Empty(t, tree)
}

func TestCommentTreeBuilder_StoreError(t *testing.T) {
	t.Parallel()

	comments := &commentRepoStub{
		listByDiscussionFn: func(_ context.Context, _ uint) ([]*models.Comment, error) {
			return nil, errors.New("connection reset")
		},
	}
	builder := NewCommentTreeBuilder(comments, &likeRepoStub{}, NewUserDirectory(noopUserRepo(), 16, time.Minute))
	_, err := builder.Build(context.Background(), 1, 1)
	assert.True(t, models.HasCode(err, models.CodeInternal))
}
