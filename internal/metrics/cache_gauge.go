package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/metric"
)

// RegisterCacheEntriesGauge exports the number of resident cache entries as
// <namespace>_cache_entries. size is called on every collection.
func RegisterCacheEntriesGauge(meterProvider metric.MeterProvider, namespace string, size func() int) error {
	meter := meterProvider.Meter(namespace)

	_, err := meter.Int64ObservableGauge(
		fmt.Sprintf("%s_cache_entries", namespace),
		metric.WithDescription("Number of plaintext secrets resident in the cache"),
		metric.WithUnit("{entry}"),
		metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
			o.Observe(int64(size()))
			return nil
		}),
	)
	if err != nil {
		return fmt.Errorf("failed to create cache entries gauge: %w", err)
	}
	return nil
}
