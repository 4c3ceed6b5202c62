package metrics

import (
	"loracom/internal/metrics"
	"time"
)

// Component reporting its counters once per interval
type Collector interface {
	CollectMetrics(interval time.Duration) []metrics.Metric
}

type Gatherer struct {
	Interval  time.Duration     // Polling interval to gather metrics at
	Retention time.Duration     // Maximum time to maintain metrics for
	Registry  *metrics.Registry // Storage for metric data
	Sources   []Collector
}
