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
)

type cachedContact struct {
	ID  uint   `json:"id"`
	Nom string `json:"nom"`
}

func setupMiniredis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr := miniredis.RunT(t)
	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { _ = Close() })
	return mr
}

func TestContactKey(t *testing.T) {
	assert.Equal(t, "contact:42", ContactKey(42))
}

func TestAside_MissThenHit(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	calls := 0
	fetch := func(dest *cachedContact) func() error {
		return func() error {
			calls++
			*dest = cachedContact{ID: 1, Nom: "Dupont"}
			return nil
		}
	}

	var first cachedContact
	require.NoError(t, Aside(ctx, ContactKey(1), &first, ContactTTL, fetch(&first)))
	assert.Equal(t, "Dupont", first.Nom)
	assert.Equal(t, 1, calls)
	assert.True(t, mr.Exists("contact:1"))
	assert.Equal(t, ContactTTL, mr.TTL("contact:1"))

	var second cachedContact
	require.NoError(t, Aside(ctx, ContactKey(1), &second, ContactTTL, fetch(&second)))
	assert.Equal(t, first, second)
	assert.Equal(t, 1, calls, "second read should be served from cache")
}

func TestAside_FetchErrorNotCached(t *testing.T) {
	mr := setupMiniredis(t)
	boom := errors.New("not found")

	var c cachedContact
	err := Aside(context.Background(), ContactKey(2), &c, ContactTTL, func() error { return boom })
	assert.ErrorIs(t, err, boom)
	assert.False(t, mr.Exists("contact:2"))
}

func TestAside_RedisDownFallsThrough(t *testing.T) {
	mr := setupMiniredis(t)
	mr.Close()

	var c cachedContact
	err := Aside(context.Background(), ContactKey(3), &c, ContactTTL, func() error {
		c = cachedContact{ID: 3, Nom: "Martin"}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Martin", c.Nom)
}

func TestAside_NilClient(t *testing.T) {
	SetClient(nil)

	var c cachedContact
	err := Aside(context.Background(), ContactKey(4), &c, ContactTTL, func() error {
		c.ID = 4
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, uint(4), c.ID)
	Invalidate(context.Background(), ContactKey(4))
}

func TestInvalidateContact(t *testing.T) {
	mr := setupMiniredis(t)
	require.NoError(t, SetJSON(context.Background(), ContactKey(5), cachedContact{ID: 5}, time.Minute))
	require.True(t, mr.Exists("contact:5"))

	InvalidateContact(context.Background(), 5)
	assert.False(t, mr.Exists("contact:5"))
}

func TestAside_InvalidationDuringFetchSkipsFill(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	var c cachedContact
	err := Aside(ctx, ContactKey(6), &c, ContactTTL, func() error {
		c = cachedContact{ID: 6, Nom: "Stale"}
		// a concurrent write commits and invalidates after the row was read
		InvalidateContact(ctx, 6)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Stale", c.Nom, "the caller still gets what it read")
	assert.False(t, mr.Exists("contact:6"), "the stale row must not be cached")

	// the next read fills normally
	var fresh cachedContact
	require.NoError(t, Aside(ctx, ContactKey(6), &fresh, ContactTTL, func() error {
		fresh = cachedContact{ID: 6, Nom: "Fresh"}
		return nil
	}))
	assert.True(t, mr.Exists("contact:6"))
}

func TestInvalidateRotatesGeneration(t *testing.T) {
	mr := setupMiniredis(t)
	ctx := context.Background()

	InvalidateContact(ctx, 7)
	first, err := mr.Get(GenerationKey("contact:7"))
	require.NoError(t, err)
	assert.NotEmpty(t, first)
	assert.Equal(t, GenerationTTL, mr.TTL(GenerationKey("contact:7")))

	InvalidateContact(ctx, 7)
	second, err := mr.Get(GenerationKey("contact:7"))
	require.NoError(t, err)
	assert.NotEqual(t, first, second)
}
