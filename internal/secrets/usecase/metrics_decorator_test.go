package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
	"github.com/allisson/secrethold/internal/secrets/usecase/mocks"
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

func expectRecord(ctx context.Context, m *mockBusinessMetrics, operation, status string) {
	m.On("RecordOperation", ctx, "secrets", operation, status).Return().Once()
	m.On("RecordDuration", ctx, "secrets", operation, mock.AnythingOfType("time.Duration"), status).Return().Once()
}

func TestSecretUseCaseWithMetrics(t *testing.T) {
	ctx := context.Background()
	id := secretsDomain.ID("1")

	t.Run("GetSecret", func(t *testing.T) {
		next := mocks.NewMockSecretUseCase[NoTx, string](t)
		m := &mockBusinessMetrics{}
		useCase := NewSecretUseCaseWithMetrics[NoTx, string](next, m)

		next.On("GetSecret", ctx, id, "p").Return("s", true, nil).Once()
		next.On("GetSecret", ctx, id, "p").Return(nil, false, nil).Once()
		next.On("GetSecret", ctx, id, "p").Return(nil, false, secretsDomain.ErrWrongPin).Once()
		expectRecord(ctx, m, "secret_get", "success")
		expectRecord(ctx, m, "secret_get", "not_found")
		expectRecord(ctx, m, "secret_get", "wrong_pin")

		secret, found, err := useCase.GetSecret(ctx, id, "p")
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "s", secret)

		_, found, err = useCase.GetSecret(ctx, id, "p")
		require.NoError(t, err)
		assert.False(t, found)

		_, _, err = useCase.GetSecret(ctx, id, "p")
		assert.ErrorIs(t, err, secretsDomain.ErrWrongPin)

		m.AssertExpectations(t)
	})

	t.Run("Mutations", func(t *testing.T) {
		next := mocks.NewMockSecretUseCase[NoTx, string](t)
		m := &mockBusinessMetrics{}
		useCase := NewSecretUseCaseWithMetrics[NoTx, string](next, m)
		boom := errors.New("boom")

		next.On("SetSecret", ctx, id, "s", "p", NoTx{}).Return(nil).Once()
		next.On("ChangePin", ctx, id, "p", "q", NoTx{}).Return(secretsDomain.ErrWrongID).Once()
		next.On("DeleteSecret", ctx, id, NoTx{}).Return(nil).Once()
		next.On("Cached", ctx, id).Return(false, nil).Once()
		next.On("DeleteCachedSecret", ctx, id).Return(nil).Once()
		next.On("CleanCache", ctx).Return(boom).Once()
		expectRecord(ctx, m, "secret_set", "success")
		expectRecord(ctx, m, "secret_change_pin", "wrong_id")
		expectRecord(ctx, m, "secret_delete", "success")
		expectRecord(ctx, m, "secret_cached", "success")
		expectRecord(ctx, m, "secret_cache_delete", "success")
		expectRecord(ctx, m, "secret_cache_clean", "error")

		require.NoError(t, useCase.SetSecret(ctx, id, "s", "p", NoTx{}))
		assert.ErrorIs(t, useCase.ChangePin(ctx, id, "p", "q", NoTx{}), secretsDomain.ErrWrongID)
		require.NoError(t, useCase.DeleteSecret(ctx, id, NoTx{}))
		_, err := useCase.Cached(ctx, id)
		require.NoError(t, err)
		require.NoError(t, useCase.DeleteCachedSecret(ctx, id))
		assert.ErrorIs(t, useCase.CleanCache(ctx), boom)

		m.AssertExpectations(t)
	})
}
