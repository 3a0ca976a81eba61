package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedChannel struct {
	SlugHash string `json:"slug_hash"`
	Name     string `json:"name"`
}

func withTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	client = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
		client = nil
	})
	return mr
}

func TestAsideMissThenHit(t *testing.T) {
	withTestRedis(t)
	ctx := context.Background()

	loads := 0
	loader := func(dest *cachedChannel) func() error {
		return func() error {
			loads++
			dest.SlugHash = "0xabc"
			dest.Name = "general"
			return nil
		}
	}

	var first cachedChannel
	require.NoError(t, Aside(ctx, ChannelKey("0xabc"), &first, ChannelTTL, loader(&first)))
	assert.Equal(t, 1, loads)
	assert.Equal(t, "general", first.Name)

	// Second read is served from Redis without touching the loader.
	var second cachedChannel
	require.NoError(t, Aside(ctx, ChannelKey("0xabc"), &second, ChannelTTL, loader(&second)))
	assert.Equal(t, 1, loads)
	assert.Equal(t, "general", second.Name)
}

func TestAsideWithoutRedis(t *testing.T) {
	client = nil

	loads := 0
	var dest cachedChannel
	err := Aside(context.Background(), "channel:none", &dest, time.Minute, func() error {
		loads++
		dest.Name = "direct"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, loads)
	assert.Equal(t, "direct", dest.Name)
}

func TestAsideCorruptEntryFallsBack(t *testing.T) {
	mr := withTestRedis(t)
	require.NoError(t, mr.Set(ChannelKey("0xbad"), "{not json"))

	var dest cachedChannel
	err := Aside(context.Background(), ChannelKey("0xbad"), &dest, time.Minute, func() error {
		dest.Name = "reloaded"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "reloaded", dest.Name)
}

func TestInvalidateChannel(t *testing.T) {
	mr := withTestRedis(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(ChannelKey("0xabc"), `{}`))
	require.NoError(t, mr.Set(MessageHistoryKey("0xabc"), `[]`))
	require.NoError(t, mr.Set(ChannelDirectoryKey, `[]`))

	InvalidateChannel(ctx, "0xabc")

	assert.False(t, mr.Exists(ChannelKey("0xabc")))
	assert.False(t, mr.Exists(MessageHistoryKey("0xabc")))
	assert.False(t, mr.Exists(ChannelDirectoryKey))
}
