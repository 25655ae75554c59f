package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/allisson/secrethold/internal/metrics"
	secretsDomain "github.com/allisson/secrethold/internal/secrets/domain"
)

// secretUseCaseWithMetrics decorates SecretUseCase with metrics instrumentation.
type secretUseCaseWithMetrics[Tx any, T any] struct {
	next    SecretUseCase[Tx, T]
	metrics metrics.BusinessMetrics
}

// NewSecretUseCaseWithMetrics wraps a SecretUseCase with metrics recording.
func NewSecretUseCaseWithMetrics[Tx any, T any](
	useCase SecretUseCase[Tx, T],
	m metrics.BusinessMetrics,
) SecretUseCase[Tx, T] {
	return &secretUseCaseWithMetrics[Tx, T]{
		next:    useCase,
		metrics: m,
	}
}

// GetSecret records metrics for secret retrieval operations. Absent secrets are counted
// with the not_found status and PIN mismatches with wrong_pin.
func (s *secretUseCaseWithMetrics[Tx, T]) GetSecret(
	ctx context.Context,
	id secretsDomain.ID,
	pin string,
) (T, bool, error) {
	start := time.Now()
	secret, found, err := s.next.GetSecret(ctx, id, pin)

	status := statusOf(err)
	if err == nil && !found {
		status = metrics.StatusNotFound
	}

	s.record(ctx, "secret_get", start, status)
	return secret, found, err
}

// SetSecret records metrics for secret writes.
func (s *secretUseCaseWithMetrics[Tx, T]) SetSecret(
	ctx context.Context,
	id secretsDomain.ID,
	secret, pin string,
	tx Tx,
) error {
	start := time.Now()
	err := s.next.SetSecret(ctx, id, secret, pin, tx)
	s.record(ctx, "secret_set", start, statusOf(err))
	return err
}

// ChangePin records metrics for PIN rotations.
func (s *secretUseCaseWithMetrics[Tx, T]) ChangePin(
	ctx context.Context,
	id secretsDomain.ID,
	oldPin, newPin string,
	tx Tx,
) error {
	start := time.Now()
	err := s.next.ChangePin(ctx, id, oldPin, newPin, tx)
	s.record(ctx, "secret_change_pin", start, statusOf(err))
	return err
}

// DeleteSecret records metrics for secret deletion operations.
func (s *secretUseCaseWithMetrics[Tx, T]) DeleteSecret(ctx context.Context, id secretsDomain.ID, tx Tx) error {
	start := time.Now()
	err := s.next.DeleteSecret(ctx, id, tx)
	s.record(ctx, "secret_delete", start, statusOf(err))
	return err
}

func (s *secretUseCaseWithMetrics[Tx, T]) Cached(ctx context.Context, id secretsDomain.ID) (bool, error) {
	start := time.Now()
	cached, err := s.next.Cached(ctx, id)
	s.record(ctx, "secret_cached", start, statusOf(err))
	return cached, err
}

func (s *secretUseCaseWithMetrics[Tx, T]) DeleteCachedSecret(ctx context.Context, id secretsDomain.ID) error {
	start := time.Now()
	err := s.next.DeleteCachedSecret(ctx, id)
	s.record(ctx, "secret_cache_delete", start, statusOf(err))
	return err
}

func (s *secretUseCaseWithMetrics[Tx, T]) CleanCache(ctx context.Context) error {
	start := time.Now()
	err := s.next.CleanCache(ctx)
	s.record(ctx, "secret_cache_clean", start, statusOf(err))
	return err
}

func (s *secretUseCaseWithMetrics[Tx, T]) record(ctx context.Context, operation string, start time.Time, status string) {
	metrics.Observe(ctx, s.metrics, metrics.DomainSecrets, operation, start, status)
}

// statusOf separates PIN and id mismatches from other failures so guessing shows up
// on its own series.
func statusOf(err error) string {
	switch {
	case errors.Is(err, secretsDomain.ErrWrongPin):
		return metrics.StatusWrongPin
	case errors.Is(err, secretsDomain.ErrWrongID):
		return metrics.StatusWrongID
	default:
		return metrics.StatusOf(err)
	}
}
