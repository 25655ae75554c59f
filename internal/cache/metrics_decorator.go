package cache

import (
	"context"
	"time"

	"github.com/allisson/secrethold/internal/metrics"
)

// Store is the cache contract the metrics decorator wraps.
type Store interface {
	Read(ctx context.Context, key string) (string, bool, error)
	Write(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Contains(ctx context.Context, key string) (bool, error)
}

type purger interface {
	Purge(ctx context.Context) error
}

// storeWithMetrics records hit, miss and error counts for reads.
type storeWithMetrics struct {
	next    Store
	metrics metrics.BusinessMetrics
}

type purgingStoreWithMetrics struct {
	storeWithMetrics
	purger purger
}

// NewStoreWithMetrics wraps next with read metrics. The result supports Purge only when
// next does.
func NewStoreWithMetrics(next Store, m metrics.BusinessMetrics) Store {
	s := storeWithMetrics{next: next, metrics: m}
	if p, ok := next.(purger); ok {
		return &purgingStoreWithMetrics{storeWithMetrics: s, purger: p}
	}
	return &s
}

func (s *storeWithMetrics) Read(ctx context.Context, key string) (string, bool, error) {
	start := time.Now()
	value, ok, err := s.next.Read(ctx, key)

	status := metrics.StatusMiss
	switch {
	case err != nil:
		status = metrics.StatusError
	case ok:
		status = metrics.StatusHit
	}

	metrics.Observe(ctx, s.metrics, metrics.DomainCache, "cache_read", start, status)

	return value, ok, err
}

func (s *storeWithMetrics) Write(ctx context.Context, key, value string, ttl time.Duration) error {
	err := s.next.Write(ctx, key, value, ttl)
	s.metrics.RecordOperation(ctx, metrics.DomainCache, "cache_write", metrics.StatusOf(err))
	return err
}

func (s *storeWithMetrics) Delete(ctx context.Context, key string) error {
	err := s.next.Delete(ctx, key)
	s.metrics.RecordOperation(ctx, metrics.DomainCache, "cache_delete", metrics.StatusOf(err))
	return err
}

func (s *storeWithMetrics) Contains(ctx context.Context, key string) (bool, error) {
	return s.next.Contains(ctx, key)
}

func (s *purgingStoreWithMetrics) Purge(ctx context.Context) error {
	err := s.purger.Purge(ctx)
	s.metrics.RecordOperation(ctx, metrics.DomainCache, "cache_purge", metrics.StatusOf(err))
	return err
}
