package cache

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedValue struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

func newTestRedisCache(t *testing.T) (*RedisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	c := NewRedisCacheFromClient(client)
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRedisCache_SetGet(t *testing.T) {
	c, _ := newTestRedisCache(t)

	require.NoError(t, c.Set("key1", cachedValue{Name: "alpha", Count: 3}, time.Minute))

	var got cachedValue
	require.NoError(t, c.Get("key1", &got))
	assert.Equal(t, "alpha", got.Name)
	assert.Equal(t, 3, got.Count)
}

func TestRedisCache_Miss(t *testing.T) {
	c, _ := newTestRedisCache(t)

	var got cachedValue
	assert.ErrorIs(t, c.Get("missing", &got), ErrCacheMiss)
}

func TestRedisCache_Expiry(t *testing.T) {
	c, mr := newTestRedisCache(t)

	require.NoError(t, c.Set("fleeting", cachedValue{Name: "gone"}, time.Second))
	mr.FastForward(2 * time.Second)

	var got cachedValue
	assert.ErrorIs(t, c.Get("fleeting", &got), ErrCacheMiss)
}

func TestRedisCache_Delete(t *testing.T) {
	c, _ := newTestRedisCache(t)

	require.NoError(t, c.Set("key1", cachedValue{}, time.Minute))
	require.NoError(t, c.Delete("key1"))

	exists, err := c.Exists("key1")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestRedisCache_DeletePattern(t *testing.T) {
	c, _ := newTestRedisCache(t)

	require.NoError(t, c.Set("tasks:list:0:100", cachedValue{}, time.Minute))
	require.NoError(t, c.Set("tasks:list:100:100", cachedValue{}, time.Minute))
	require.NoError(t, c.Set("task:1", cachedValue{Name: "keep"}, time.Minute))

	require.NoError(t, c.DeletePattern("tasks:list:*"))

	exists, err := c.Exists("tasks:list:0:100")
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = c.Exists("task:1")
	require.NoError(t, err)
	assert.True(t, exists, "per-task entries survive list invalidation")
}

func TestRedisCache_Health(t *testing.T) {
	c, mr := newTestRedisCache(t)

	assert.NoError(t, c.Health())

	mr.Close()
	assert.ErrorIs(t, c.Health(), ErrCacheDown)
}

func TestMemoryCache_SetGet(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set("key1", cachedValue{Name: "beta", Count: 9}, time.Minute))

	var got cachedValue
	require.NoError(t, c.Get("key1", &got))
	assert.Equal(t, "beta", got.Name)
}

func TestMemoryCache_Expiry(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set("fleeting", cachedValue{}, -time.Second))

	var got cachedValue
	assert.ErrorIs(t, c.Get("fleeting", &got), ErrCacheMiss)
}

func TestMemoryCache_DeletePattern(t *testing.T) {
	c := NewMemoryCache()

	require.NoError(t, c.Set("tasks:list:0:100", cachedValue{}, time.Minute))
	require.NoError(t, c.Set("task:1", cachedValue{}, time.Minute))

	require.NoError(t, c.DeletePattern("tasks:list:*"))

	exists, _ := c.Exists("tasks:list:0:100")
	assert.False(t, exists)
	exists, _ = c.Exists("task:1")
	assert.True(t, exists)
}

func TestMultiLevelCache_PromotesL2Hits(t *testing.T) {
	redisCache, _ := newTestRedisCache(t)
	c := NewMultiLevelCache(redisCache)

	// Seed L2 directly so the first read has to go through it.
	require.NoError(t, redisCache.Set("key1", cachedValue{Name: "promoted"}, time.Minute))

	var got cachedValue
	require.NoError(t, c.Get("key1", &got))
	assert.Equal(t, "promoted", got.Name)

	// After the promotion the value is served from L1 even if L2 loses it.
	require.NoError(t, redisCache.Delete("key1"))

	got = cachedValue{}
	require.NoError(t, c.Get("key1", &got))
	assert.Equal(t, "promoted", got.Name)
}

func TestMultiLevelCache_WritesBothLevels(t *testing.T) {
	redisCache, _ := newTestRedisCache(t)
	c := NewMultiLevelCache(redisCache)

	require.NoError(t, c.Set("key1", cachedValue{Name: "both"}, time.Minute))

	var got cachedValue
	require.NoError(t, redisCache.Get("key1", &got))
	assert.Equal(t, "both", got.Name)
}

func TestMultiLevelCache_MemoryOnly(t *testing.T) {
	c := NewMultiLevelCache(nil)

	require.NoError(t, c.Set("key1", cachedValue{Name: "local"}, time.Minute))

	var got cachedValue
	require.NoError(t, c.Get("key1", &got))
	assert.Equal(t, "local", got.Name)

	var miss cachedValue
	assert.ErrorIs(t, c.Get("absent", &miss), ErrCacheMiss)

	assert.NoError(t, c.Health())
	assert.NoError(t, c.Close())
}

func TestMultiLevelCache_DeleteClearsBothLevels(t *testing.T) {
	redisCache, _ := newTestRedisCache(t)
	c := NewMultiLevelCache(redisCache)

	require.NoError(t, c.Set("key1", cachedValue{}, time.Minute))
	require.NoError(t, c.Delete("key1"))

	var got cachedValue
	assert.ErrorIs(t, c.Get("key1", &got), ErrCacheMiss)
}
