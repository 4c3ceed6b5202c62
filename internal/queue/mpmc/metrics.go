package mpmc

import (
	"loracom/internal/metrics"
	"time"
)

func (queue *Queue[T]) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()

	add := func(name string, raw uint64, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   queue.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     "count",
				Interval: interval,
			},
		})
	}

	add("depth", queue.Metrics.Depth.Load(), metrics.Gauge, "Current number of items in the queue")
	add("capacity", uint64(queue.Size), metrics.Gauge, "Fixed number of slots in the queue")
	add("push_attempts", queue.Metrics.PushAttempts.Swap(0), metrics.Counter, "Push calls in the interval")
	add("push_full", queue.Metrics.PushFull.Swap(0), metrics.Counter, "Pushes rejected by a full queue in the interval")
	add("pop_success", queue.Metrics.PopSuccess.Swap(0), metrics.Counter, "Items consumed in the interval")
	add("pop_waits", queue.Metrics.PopWaits.Swap(0), metrics.Counter, "Times a consumer waited on an empty queue in the interval")
	return
}
