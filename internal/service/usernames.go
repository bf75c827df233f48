package service

import (
	"context"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/samber/lo"

	"agora/internal/repository"
)

const defaultUsernameCacheSize = 1024

type usernameEntry struct {
	name      string
	expiresAt time.Time
}

// UserDirectory resolves user ids to usernames for projections, keeping a
// bounded in-process LRU in front of the user store.
type UserDirectory struct {
	users repository.UserRepository
	cache *lru.Cache[uint, usernameEntry]
	ttl   time.Duration
}

func NewUserDirectory(users repository.UserRepository, size int, ttl time.Duration) *UserDirectory {
	if size <= 0 {
		size = defaultUsernameCacheSize
	}
	// lru.New only fails for a non-positive size.
	c, _ := lru.New[uint, usernameEntry](size)
	return &UserDirectory{users: users, cache: c, ttl: ttl}
}

// Usernames returns the usernames of ids. Ids without a user are absent from
// the result.
func (d *UserDirectory) Usernames(ctx context.Context, ids []uint) (map[uint]string, error) {
	out := make(map[uint]string, len(ids))
	now := time.Now()
	var missing []uint
	for _, id := range lo.Uniq(ids) {
		if e, ok := d.cache.Get(id); ok && now.Before(e.expiresAt) {
			out[id] = e.name
			continue
		}
		missing = append(missing, id)
	}
	if len(missing) == 0 {
		return out, nil
	}

	found, err := d.users.UsernamesByIDs(ctx, missing)
	if err != nil {
		return nil, err
	}
	for id, name := range found {
		out[id] = name
		d.cache.Add(id, usernameEntry{name: name, expiresAt: now.Add(d.ttl)})
	}
	return out, nil
}

// Username resolves a single id; unknown ids yield "".
func (d *UserDirectory) Username(ctx context.Context, id uint) (string, error) {
	names, err := d.Usernames(ctx, []uint{id})
	if err != nil {
		return "", err
	}
	return names[id], nil
}

// Forget drops id from the cache.
func (d *UserDirectory) Forget(id uint) {
	d.cache.Remove(id)
}
