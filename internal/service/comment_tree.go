package service

import (
	"context"

	"github.com/samber/lo"

	"agora/internal/models"
	"agora/internal/observability"
	"agora/internal/repository"
)

// CommentTreeBuilder assembles a discussion's reply forest from its flat
// comment rows and decorates every node for one viewer.
type CommentTreeBuilder struct {
	comments  repository.CommentRepository
	likes     repository.LikeRepository
	directory *UserDirectory
}

func NewCommentTreeBuilder(comments repository.CommentRepository, likes repository.LikeRepository, directory *UserDirectory) *CommentTreeBuilder {
	return &CommentTreeBuilder{comments: comments, likes: likes, directory: directory}
}

// commentArena addresses a discussion's comments by id; parent/child links are
// id references only.
type commentArena struct {
	rows     map[uint]*models.Comment
	children map[uint][]uint
	roots    []uint
}

// newCommentArena indexes rows, which must be ordered by creation time then
// id. A comment whose parent is not among rows is never linked, so it is
// unreachable from any root.
func newCommentArena(rows []*models.Comment) *commentArena {
	a := &commentArena{
		rows:     make(map[uint]*models.Comment, len(rows)),
		children: make(map[uint][]uint),
	}
	for _, c := range rows {
		a.rows[c.ID] = c
	}
	for _, c := range rows {
		if c.ParentID == nil {
			a.roots = append(a.roots, c.ID)
			continue
		}
		parent := *c.ParentID
		if parent == c.ID {
			continue
		}
		if _, ok := a.rows[parent]; !ok {
			continue
		}
		a.children[parent] = append(a.children[parent], c.ID)
	}
	return a
}

type nodeDecoration struct {
	usernames map[uint]string
	counts    map[uint]int64
	liked     map[uint]bool
}

// Build returns the discussion's root comments with nested replies. Siblings
// are ordered by creation time, ties by id. Leaves carry an empty Replies slice.
func (b *CommentTreeBuilder) Build(ctx context.Context, discussionID, viewerID uint) ([]*models.CommentNode, error) {
	rows, err := b.comments.ListByDiscussion(ctx, discussionID)
	if err != nil {
		return nil, storeError(err)
	}
	arena := newCommentArena(rows)

	deco, err := b.decorations(ctx, rows, viewerID)
	if err != nil {
		return nil, err
	}

	visited := make(map[uint]bool, len(rows))
	var walk func(id uint) *models.CommentNode
	walk = func(id uint) *models.CommentNode {
		visited[id] = true
		node := newCommentNode(arena.rows[id], deco)
		kids := arena.children[id]
		node.Replies = make([]*models.CommentNode, 0, len(kids))
		for _, kid := range kids {
			if visited[kid] {
				continue
			}
			node.Replies = append(node.Replies, walk(kid))
		}
		return node
	}

	roots := make([]*models.CommentNode, 0, len(arena.roots))
	for _, id := range arena.roots {
		roots = append(roots, walk(id))
	}
	observability.CommentTreeNodes.Observe(float64(len(visited)))
	return roots, nil
}

// Node decorates a single comment as a leaf-shaped node without loading its replies.
func (b *CommentTreeBuilder) Node(ctx context.Context, comment *models.Comment, viewerID uint) (*models.CommentNode, error) {
	deco, err := b.decorations(ctx, []*models.Comment{comment}, viewerID)
	if err != nil {
		return nil, err
	}
	node := newCommentNode(comment, deco)
	node.Replies = []*models.CommentNode{}
	return node, nil
}

func (b *CommentTreeBuilder) decorations(ctx context.Context, rows []*models.Comment, viewerID uint) (*nodeDecoration, error) {
	ids := lo.Map(rows, func(c *models.Comment, _ int) uint { return c.ID })
	authors := lo.Map(rows, func(c *models.Comment, _ int) uint { return c.AuthorID })

	usernames, err := b.directory.Usernames(ctx, authors)
	if err != nil {
		return nil, storeError(err)
	}
	counts, err := b.likes.Counts(ctx, models.LikeKindComment, ids)
	if err != nil {
		return nil, storeError(err)
	}
	liked, err := b.likes.LikedBy(ctx, models.LikeKindComment, viewerID, ids)
	if err != nil {
		return nil, storeError(err)
	}
	return &nodeDecoration{usernames: usernames, counts: counts, liked: liked}, nil
}

func newCommentNode(c *models.Comment, deco *nodeDecoration) *models.CommentNode {
	return &models.CommentNode{
		ID:             c.ID,
		Content:        c.Content,
		AuthorID:       c.AuthorID,
		AuthorUsername: deco.usernames[c.AuthorID],
		DiscussionID:   c.DiscussionID,
		ParentID:       c.ParentID,
		CreatedAt:      c.CreatedAt,
		UpdatedAt:      c.UpdatedAt,
		LikeCount:      deco.counts[c.ID],
		UserHasLiked:   deco.liked[c.ID],
	}
}
