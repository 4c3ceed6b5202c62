package file

import (
	"loracom/internal/global"
	"loracom/internal/metrics"
	"time"
)

// Flushes buffered lines and closes the file
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	_, err = mod.FlushBuffer()
	if mod.sink != nil {
		closeErr := mod.sink.Close()
		if err == nil {
			err = closeErr
		}
	}
	return
}

func (mod *OutModule) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	if mod == nil {
		return
	}
	recordTime := time.Now()
	namespace := []string{global.NSNode, global.NSoFile}

	collection = []metrics.Metric{
		{
			Name:        "lines_written",
			Description: "Event lines written to the log file in the interval",
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      mod.Metrics.LinesWritten.Swap(0),
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
		{
			Name:        "write_failures",
			Description: "Failed event log flushes in the interval",
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      mod.Metrics.WriteFailure.Swap(0),
				Unit:     "count",
				Interval: interval,
			},
			Type:      metrics.Counter,
			Timestamp: recordTime,
		},
	}
	return
}
