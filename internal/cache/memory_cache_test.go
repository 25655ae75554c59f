package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/awnumar/memguard"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.now = f.now.Add(d)
}

func newTestCache(t *testing.T, cfg MemoryConfig) (*MemoryCache, *fakeClock) {
	t.Helper()
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewMemoryCache(cfg)
	c.now = clock.Now
	t.Cleanup(func() { _ = c.Close() })
	return c, clock
}

func TestBuildKey(t *testing.T) {
	assert.Equal(t, "a:b:c", BuildKey("a", "b", "c"))
	assert.Equal(t, "42", BuildKey("42"))
	assert.Equal(t, "", BuildKey())
}

func TestMemoryCache_ReadWrite(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_Hit", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "secret message", time.Minute))

		v, ok, err := c.Read(ctx, "1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "secret message", v)
	})

	t.Run("Success_EmptyValue", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "", time.Minute))

		v, ok, err := c.Read(ctx, "1")
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, "", v)
	})

	t.Run("Success_Miss", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{})
		v, ok, err := c.Read(ctx, "missing")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, v)
	})

	t.Run("Success_Overwrite", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "old", time.Minute))
		require.NoError(t, c.Write(ctx, "1", "new", time.Minute))

		v, _, err := c.Read(ctx, "1")
		require.NoError(t, err)
		assert.Equal(t, "new", v)
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Success_ZeroTTLExpiresImmediately", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "v", time.Minute))
		require.NoError(t, c.Write(ctx, "1", "v2", 0))

		ok, err := c.Contains(ctx, "1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryCache_Expiry(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_ExpiresAfterTTL", func(t *testing.T) {
		c, clock := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "v", time.Minute))

		clock.Advance(59 * time.Second)
		ok, err := c.Contains(ctx, "1")
		require.NoError(t, err)
		assert.True(t, ok)

		clock.Advance(time.Second)
		ok, err = c.Contains(ctx, "1")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Equal(t, 0, c.Len())
	})

	t.Run("Success_ReadRefreshesTTL", func(t *testing.T) {
		c, clock := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "v", time.Minute))

		clock.Advance(50 * time.Second)
		_, ok, err := c.Read(ctx, "1")
		require.NoError(t, err)
		require.True(t, ok)

		clock.Advance(50 * time.Second)
		ok, err = c.Contains(ctx, "1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("Success_ContainsDoesNotRefresh", func(t *testing.T) {
		c, clock := newTestCache(t, MemoryConfig{})
		require.NoError(t, c.Write(ctx, "1", "v", time.Minute))

		clock.Advance(50 * time.Second)
		_, _ = c.Contains(ctx, "1")
		clock.Advance(10 * time.Second)

		_, ok, err := c.Read(ctx, "1")
		require.NoError(t, err)
		assert.False(t, ok)
	})
}

func TestMemoryCache_MaxEntries(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_EvictsClosestToExpiry", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{MaxEntries: 2})
		require.NoError(t, c.Write(ctx, "short", "v", time.Second))
		require.NoError(t, c.Write(ctx, "long", "v", time.Hour))
		require.NoError(t, c.Write(ctx, "new", "v", time.Minute))

		assert.Equal(t, 2, c.Len())
		ok, _ := c.Contains(ctx, "short")
		assert.False(t, ok)
		ok, _ = c.Contains(ctx, "long")
		assert.True(t, ok)
		ok, _ = c.Contains(ctx, "new")
		assert.True(t, ok)
	})

	t.Run("Success_PrefersExpiredEntries", func(t *testing.T) {
		c, clock := newTestCache(t, MemoryConfig{MaxEntries: 2})
		require.NoError(t, c.Write(ctx, "a", "v", time.Second))
		require.NoError(t, c.Write(ctx, "b", "v", time.Second))
		clock.Advance(2 * time.Second)

		require.NoError(t, c.Write(ctx, "c", "v", time.Minute))
		assert.Equal(t, 1, c.Len())
	})

	t.Run("Success_OverwriteDoesNotEvict", func(t *testing.T) {
		c, _ := newTestCache(t, MemoryConfig{MaxEntries: 2})
		require.NoError(t, c.Write(ctx, "a", "v", time.Minute))
		require.NoError(t, c.Write(ctx, "b", "v", time.Minute))
		require.NoError(t, c.Write(ctx, "a", "v2", time.Minute))

		assert.Equal(t, 2, c.Len())
	})
}

func TestMemoryCache_DeleteAndPurge(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, MemoryConfig{})

	require.NoError(t, c.Write(ctx, "a", "1", time.Minute))
	require.NoError(t, c.Write(ctx, "b", "2", time.Minute))

	require.NoError(t, c.Delete(ctx, "a"))
	require.NoError(t, c.Delete(ctx, "a"))
	ok, _ := c.Contains(ctx, "a")
	assert.False(t, ok)

	require.NoError(t, c.Purge(ctx))
	assert.Equal(t, 0, c.Len())
}

func TestMemoryCache_Janitor(t *testing.T) {
	// Create an enclave first so memguard's own background goroutine is already running.
	memguard.NewEnclave([]byte("warm up"))
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	ctx := context.Background()
	c := NewMemoryCache(MemoryConfig{CleanupInterval: 5 * time.Millisecond})

	require.NoError(t, c.Write(ctx, "a", "v", time.Millisecond))
	assert.Eventually(t, func() bool { return c.Len() == 0 }, time.Second, 5*time.Millisecond)

	require.NoError(t, c.Close())
	require.NoError(t, c.Close())
}

func TestMemoryCache_Concurrent(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestCache(t, MemoryConfig{MaxEntries: 8})

	var wg sync.WaitGroup
	for i := range 16 {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := BuildKey("k", string(rune('a'+i)))
			for range 50 {
				assert.NoError(t, c.Write(ctx, key, "value", time.Minute))
				_, _, err := c.Read(ctx, key)
				assert.NoError(t, err)
				assert.NoError(t, c.Delete(ctx, key))
			}
		}(i)
	}
	wg.Wait()
	assert.LessOrEqual(t, c.Len(), 8)
}
