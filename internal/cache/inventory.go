package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	CommunityKeyPrefix = "community:%d"
	UserKeyPrefix      = "user:%d"
)

const (
	CommunityTTL = 10 * time.Minute
	UserTTL      = 5 * time.Minute
)

// CommunityKey holds the stored community row. Member sets and viewer-relative
// fields are never cached.
func CommunityKey(communityID uint) string {
	return fmt.Sprintf(CommunityKeyPrefix, communityID)
}

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateCommunity(ctx context.Context, communityID uint) {
	Invalidate(ctx, CommunityKey(communityID))
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}
