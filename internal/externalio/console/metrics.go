package console

import (
	"loracom/internal/metrics"
	"time"
)

func (console *Console) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	if console == nil {
		return
	}
	now := time.Now()

	add := func(name, desc string, value uint64) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: desc,
			Namespace:   console.Namespace,
			Value: metrics.MetricValue{
				Raw:      value,
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: now,
		})
	}

	add("lines_read", "Command lines read from the console", console.Metrics.LinesRead.Swap(0))
	add("submitted", "Console commands queued for delivery", console.Metrics.Submitted.Swap(0))
	add("rejected", "Console commands refused by the parser or queue", console.Metrics.Rejected.Swap(0))
	add("lines_written", "Status and outcome lines printed", console.Metrics.LinesWritten.Swap(0))
	return
}
