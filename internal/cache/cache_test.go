package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/janseva-labs/janseva-bot-go/internal/errors"
	"github.com/janseva-labs/janseva-bot-go/internal/model"
)

func newTestCache(t *testing.T, ttl time.Duration) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return New(rdb, ttl), mr
}

func TestKey_Normalization(t *testing.T) {
	a := Key("Passport Renewal", "Kothrud,  Pune")
	b := Key("passport   renewal", "kothrud, pune")
	assert.Equal(t, a, b, "keys must be case- and whitespace-insensitive")
}

func TestGetPutRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	key := Key("passport renewal", "Kothrud")
	places := []model.RawPlace{
		{Name: "Passport Seva Kendra", Address: "Kothrud Depot", City: "Pune", HasCoords: true, Lat: 18.5, Lon: 73.8},
	}

	require.NoError(t, c.Put(ctx, key, places))

	entry, err := c.Get(ctx, key)
	require.NoError(t, err)
	require.Len(t, entry.Places, 1)
	assert.Equal(t, "Passport Seva Kendra", entry.Places[0].Name)
	assert.Equal(t, key, entry.Key)
}

func TestGet_MissReturnsErrCacheMiss(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	_, err := c.Get(context.Background(), Key("ration card", "Camp"))
	assert.True(t, errors.Is(err, apperrors.ErrCacheMiss))
}

func TestGet_TTLExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	key := Key("passport renewal", "Kothrud")
	require.NoError(t, c.Put(ctx, key, []model.RawPlace{{Name: "PSK", Address: "x"}}))

	mr.FastForward(2 * time.Minute)

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, apperrors.ErrCacheMiss), "expired entry must read as a miss")
}

func TestInvalidate(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	key := Key("passport renewal", "Kothrud")
	require.NoError(t, c.Put(ctx, key, []model.RawPlace{{Name: "PSK", Address: "x"}}))
	require.NoError(t, c.Invalidate(ctx, key))

	_, err := c.Get(ctx, key)
	assert.True(t, errors.Is(err, apperrors.ErrCacheMiss))
}

func TestGet_CorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	key := Key("passport renewal", "Kothrud")
	mr.Set("janseva:live:"+key, "{not json")

	_, err := c.Get(context.Background(), key)
	assert.True(t, errors.Is(err, apperrors.ErrCacheMiss))
}

func TestNilCacheIsSafe(t *testing.T) {
	var c *Cache
	_, err := c.Get(context.Background(), "k")
	assert.True(t, errors.Is(err, apperrors.ErrCacheMiss))
	assert.NoError(t, c.Put(context.Background(), "k", nil))
	assert.NoError(t, c.Invalidate(context.Background(), "k"))
}
