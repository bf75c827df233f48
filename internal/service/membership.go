package service

import (
	"context"
	"log/slog"

	"github.com/samber/lo"

	"agora/internal/middleware"
	"agora/internal/models"
	"agora/internal/observability"
)

// MembershipOracle answers whether users belong to communities. Unknown
// communities or users are reported as non-members, never as errors.
type MembershipOracle interface {
	IsMember(ctx context.Context, communityID, userID uint) (bool, error)
	MemberCommunityIDs(ctx context.Context, userID uint, communityIDs []uint) (map[uint]bool, error)
}

// VisibilityGuard decides whether a viewer may see or act on a community's
// content. Public communities are open to everyone; private ones require
// membership.
type VisibilityGuard struct {
	members MembershipOracle
}

func NewVisibilityGuard(members MembershipOracle) *VisibilityGuard {
	return &VisibilityGuard{members: members}
}

// CanView reports whether viewerID may access content of community.
func (g *VisibilityGuard) CanView(ctx context.Context, community *models.Community, viewerID uint) (bool, error) {
	if !community.IsPrivate {
		return true, nil
	}
	if viewerID == 0 {
		return false, nil
	}
	return g.members.IsMember(ctx, community.ID, viewerID)
}

// Check fails with AccessDenied when viewerID may not access community.
// operation labels the rejection in logs and metrics.
func (g *VisibilityGuard) Check(ctx context.Context, operation string, community *models.Community, viewerID uint) error {
	ok, err := g.CanView(ctx, community, viewerID)
	if err != nil {
		return storeError(err)
	}
	if !ok {
		return deny(ctx, operation, "This community is private; only members can access its content")
	}
	return nil
}

// Visible returns the ids of the given communities viewerID may access, using
// one membership query for all private ones.
func (g *VisibilityGuard) Visible(ctx context.Context, communities map[uint]*models.Community, viewerID uint) (map[uint]bool, error) {
	out := make(map[uint]bool, len(communities))
	var private []uint
	for id, c := range communities {
		if c.IsPrivate {
			private = append(private, id)
			continue
		}
		out[id] = true
	}
	if len(private) == 0 || viewerID == 0 {
		return out, nil
	}

	member, err := g.members.MemberCommunityIDs(ctx, viewerID, private)
	if err != nil {
		return nil, storeError(err)
	}
	for _, id := range private {
		if member[id] {
			out[id] = true
		}
	}
	return out, nil
}

// FilterCommunities keeps the communities viewerID may access, preserving order.
func (g *VisibilityGuard) FilterCommunities(ctx context.Context, communities []*models.Community, viewerID uint) ([]*models.Community, error) {
	byID := lo.KeyBy(communities, func(c *models.Community) uint {
		return c.ID
	})
	visible, err := g.Visible(ctx, byID, viewerID)
	if err != nil {
		return nil, err
	}
	return lo.Filter(communities, func(c *models.Community, _ int) bool {
		return visible[c.ID]
	}), nil
}

// deny records an access rejection and returns the AccessDenied condition.
func deny(ctx context.Context, operation, message string) error {
	observability.AccessDenied.WithLabelValues(operation).Inc()
	middleware.Logger.DebugContext(ctx, "access denied", slog.String("operation", operation))
	return models.NewAccessDeniedError(message)
}
