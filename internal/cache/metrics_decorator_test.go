package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockBusinessMetrics struct {
	mock.Mock
}

func (m *mockBusinessMetrics) RecordOperation(ctx context.Context, domain, operation, status string) {
	m.Called(ctx, domain, operation, status)
}

func (m *mockBusinessMetrics) RecordDuration(
	ctx context.Context,
	domain, operation string,
	duration time.Duration,
	status string,
) {
	m.Called(ctx, domain, operation, duration, status)
}

type failingStore struct{ err error }

func (f failingStore) Read(context.Context, string) (string, bool, error) { return "", false, f.err }
func (f failingStore) Write(context.Context, string, string, time.Duration) error {
	return f.err
}
func (f failingStore) Delete(context.Context, string) error           { return f.err }
func (f failingStore) Contains(context.Context, string) (bool, error) { return false, f.err }

func TestStoreWithMetrics(t *testing.T) {
	ctx := context.Background()

	t.Run("Success_HitAndMiss", func(t *testing.T) {
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "cache", "cache_write", "success").Return().Once()
		m.On("RecordOperation", ctx, "cache", "cache_read", "hit").Return().Once()
		m.On("RecordDuration", ctx, "cache", "cache_read", mock.AnythingOfType("time.Duration"), "hit").Return().Once()
		m.On("RecordOperation", ctx, "cache", "cache_read", "miss").Return().Once()
		m.On("RecordDuration", ctx, "cache", "cache_read", mock.AnythingOfType("time.Duration"), "miss").Return().Once()
		m.On("RecordOperation", ctx, "cache", "cache_purge", "success").Return().Once()

		mem, _ := newTestCache(t, MemoryConfig{})
		store := NewStoreWithMetrics(mem, m)

		require.NoError(t, store.Write(ctx, "a", "v", time.Minute))
		_, ok, err := store.Read(ctx, "a")
		require.NoError(t, err)
		assert.True(t, ok)
		_, ok, err = store.Read(ctx, "b")
		require.NoError(t, err)
		assert.False(t, ok)

		p, isPurger := store.(purger)
		require.True(t, isPurger)
		require.NoError(t, p.Purge(ctx))

		m.AssertExpectations(t)
	})

	t.Run("Error_RecordsErrors", func(t *testing.T) {
		boom := errors.New("cache down")
		m := &mockBusinessMetrics{}
		m.On("RecordOperation", ctx, "cache", "cache_read", "error").Return().Once()
		m.On("RecordDuration", ctx, "cache", "cache_read", mock.AnythingOfType("time.Duration"), "error").Return().Once()
		m.On("RecordOperation", ctx, "cache", "cache_delete", "error").Return().Once()

		store := NewStoreWithMetrics(failingStore{err: boom}, m)
		_, _, err := store.Read(ctx, "a")
		assert.ErrorIs(t, err, boom)
		assert.ErrorIs(t, store.Delete(ctx, "a"), boom)

		_, isPurger := store.(purger)
		assert.False(t, isPurger)
		m.AssertExpectations(t)
	})
}
