package kafka_middleware

import (
	"context"
	"tms/pkg/kafka"
	"tms/pkg/metrics"
)

func MetricsProducerMiddleware(collector *metrics.Collector) kafka.ProducerMiddleware {
	return func(ctx context.Context, msg kafka.Message, next func(ctx context.Context, msg kafka.Message) error) error {
		err := next(ctx, msg)
		collector.RecordEventPublished(msg.EventType(), err)
		return err
	}
}
