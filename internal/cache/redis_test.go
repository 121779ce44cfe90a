package cache

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	hostPort := strings.SplitN(mr.Addr(), ":", 2)

	c, err := NewRedisCache(Config{Host: hostPort[0], Port: hostPort[1]})
	require.NoError(t, err, "Should connect to test redis")
	t.Cleanup(func() { c.Close() })

	return c, mr
}

type cachedValue struct {
	Prob float64 `json:"prob"`
	Note string  `json:"note"`
}

func TestRedisCache_SetGetJSON(t *testing.T) {
	c, _ := setupCache(t)
	ctx := context.Background()

	in := cachedValue{Prob: 0.625, Note: "home favored"}
	c.SetJSON(ctx, "predict:1:2:2024-01-10:10", in, time.Minute)

	var out cachedValue
	require.True(t, c.GetJSON(ctx, "predict:1:2:2024-01-10:10", &out))
	assert.Equal(t, in, out)
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := setupCache(t)

	var out cachedValue
	assert.False(t, c.GetJSON(context.Background(), "predict:missing", &out))
}

func TestRedisCache_TTLExpiry(t *testing.T) {
	c, mr := setupCache(t)
	ctx := context.Background()

	c.SetJSON(ctx, "gameplan:1:2:2024-01-10:10", cachedValue{Prob: 0.5}, 10*time.Second)

	var out cachedValue
	require.True(t, c.GetJSON(ctx, "gameplan:1:2:2024-01-10:10", &out))

	mr.FastForward(11 * time.Second)
	assert.False(t, c.GetJSON(ctx, "gameplan:1:2:2024-01-10:10", &out), "Expired keys read as misses")
}

func TestRedisCache_CorruptValueIsMiss(t *testing.T) {
	c, mr := setupCache(t)

	require.NoError(t, mr.Set("predict:bad", "{not json"))

	var out cachedValue
	assert.False(t, c.GetJSON(context.Background(), "predict:bad", &out))
}

func TestCacheKeys(t *testing.T) {
	date := time.Date(2024, 1, 10, 19, 30, 0, 0, time.UTC)

	assert.Equal(t, "predict:1:2:2023-24:2024-01-10:10", PredictionKey(1, 2, "2023-24", date, 10))
	assert.Equal(t, "gameplan:1:2:2023-24:2024-01-10:10", GameplanKey(1, 2, "2023-24", date, 10))

	// Keyed by calendar day: time of day must not split cache entries.
	later := time.Date(2024, 1, 10, 23, 0, 0, 0, time.UTC)
	assert.Equal(t, PredictionKey(1, 2, "2023-24", date, 10), PredictionKey(1, 2, "2023-24", later, 10))

	// Same teams and date in different seasons must not share an entry.
	assert.NotEqual(t, PredictionKey(1, 2, "2023-24", date, 10), PredictionKey(1, 2, "2024-25", date, 10))
	assert.NotEqual(t, GameplanKey(1, 2, "2023-24", date, 10), GameplanKey(1, 2, "2024-25", date, 10))
}
