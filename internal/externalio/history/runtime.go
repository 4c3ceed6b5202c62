package history

import (
	"loracom/internal/global"
	"loracom/internal/metrics"
	"time"
)

// Gracefully stops module
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	err = mod.db.Close()
	return
}

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	if mod == nil {
		return
	}
	now := time.Now()
	namespace := []string{global.NSNode, global.NSoHistory}

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

	add("deliveries_recorded", "Delivery outcomes written to history", mod.Metrics.Deliveries.Swap(0))
	add("statuses_recorded", "Status readings written to history", mod.Metrics.Statuses.Swap(0))
	add("write_failures", "History inserts that failed", mod.Metrics.WriteFailure.Swap(0))
	return
}
