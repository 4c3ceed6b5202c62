package journald

import (
	"loracom/internal/global"
	"loracom/internal/metrics"
	"time"
)

// Gracefully stops module (err always nil)
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.sink != nil {
		mod.sink.CloseIdleConnections()
	}
	return
}

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	if mod == nil {
		return
	}
	now := time.Now()
	namespace := []string{global.NSNode, global.NSoJournal}

	collection = []metrics.Metric{
		{
			Name:        "entries_sent",
			Description: "Journal entries accepted by the remote journal",
			Namespace:   namespace,
			Value:       metrics.MetricValue{Raw: mod.Metrics.EntriesSent.Swap(0), Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   now,
		},
		{
			Name:        "write_failures",
			Description: "Journal entries that could not be uploaded",
			Namespace:   namespace,
			Value:       metrics.MetricValue{Raw: mod.Metrics.WriteFailure.Swap(0), Unit: "count", Interval: interval},
			Type:        metrics.Counter,
			Timestamp:   now,
		},
	}
	return
}
