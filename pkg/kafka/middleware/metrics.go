package kafka_middleware

import (
	"context"

	"furnace/pkg/kafka"
	"furnace/pkg/metrics"
)

// MetricsProducerMiddleware counts publish outcomes.
func MetricsProducerMiddleware() kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		if err != nil {
			metrics.IncEventPublished(metrics.OutcomeError)
		} else {
			metrics.IncEventPublished(metrics.OutcomeSuccess)
		}
		return err
	}
}
