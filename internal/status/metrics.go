package status

import (
	"loracom/internal/logctx"
	"loracom/internal/metrics"
	"time"
)

func (producer *Producer) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	now := time.Now()
	namespace := logctx.GetTagList(producer.ctx)

	add := func(name, desc string, value uint64) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: desc,
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      value,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: now,
		})
	}

	add("sent", "Status broadcasts queued", producer.Metrics.Sent.Swap(0))
	add("enqueue_failed", "Status broadcasts refused by the send queue", producer.Metrics.EnqueueFailed.Swap(0))
	add("sample_failed", "Telemetry samples that failed", producer.Metrics.SampleFailed.Swap(0))
	return
}
