package cache

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedRow struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() {
		SetClient(nil)
		mr.Close()
	})
	return mr
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedRow) func() error {
		return func() error {
			calls++
			*dest = cachedRow{ID: 7, Name: "Runners"}
			return nil
		}
	}

	var first cachedRow
	require.NoError(t, Aside(ctx, CommunityKey(7), &first, CommunityTTL, fetch(&first)))
	assert.Equal(t, "Runners", first.Name)
	assert.True(t, mr.Exists("community:7"))

	var second cachedRow
	require.NoError(t, Aside(ctx, CommunityKey(7), &second, CommunityTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls)

	InvalidateCommunity(ctx, 7)
	assert.False(t, mr.Exists("community:7"))
}

func TestAside_FetchErrorIsNotCached(t *testing.T) {
	mr := setupMiniredis(t)

	var dest cachedRow
	err := Aside(context.Background(), CommunityKey(9), &dest, CommunityTTL, func() error {
		return errors.New("db down")
	})
	assert.Error(t, err)
	assert.False(t, mr.Exists("community:9"))
}

func TestAside_WithoutClient(t *testing.T) {
	SetClient(nil)

	var dest cachedRow
	err := Aside(context.Background(), CommunityKey(1), &dest, CommunityTTL, func() error {
		dest.ID = 1
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(1), dest.ID)

	found, err := GetJSON(context.Background(), CommunityKey(1), &dest)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestInitRedis_InvalidURLLeavesClientNil(t *testing.T) {
	InitRedis("redis://%zz")
	assert.Nil(t, GetClient())
}

func TestKeys(t *testing.T) {
	assert.Equal(t, "community:12", CommunityKey(12))
	assert.Equal(t, "user:3", UserKey(3))
}
