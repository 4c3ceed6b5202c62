package loracom

import (
	"loracom/internal/metrics"
	"time"
)

func (engine *Engine) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	recordTime := time.Now()
	live, done := engine.Depths()

	add := func(name string, raw any, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   engine.Namespace,
			Type:        t,
			Timestamp:   recordTime,
			Value: metrics.MetricValue{
				Raw:      raw,
				Unit:     unit,
				Interval: interval,
			},
		})
	}

	add("send_queue_depth", uint64(live), "count", metrics.Gauge, "Entries occupying send queue slots")
	add("done_queue_depth", uint64(done), "count", metrics.Gauge, "Terminal outcomes held for lookup")
	add("state", uint64(engine.State()), "state", metrics.Gauge, "Radio mode (0 idle, 1 listening, 2 transmitting)")
	add("rssi", int64(engine.RSSI()), "dBm", metrics.Gauge, "Signal strength of the last received frame")

	counters := []struct {
		name        string
		value       uint64
		description string
	}{
		{"enqueued", engine.Metrics.Enqueued.Swap(0), "Messages accepted into the send queue"},
		{"rejected_full", engine.Metrics.RejectedFull.Swap(0), "Messages rejected by a full send queue"},
		{"transmissions", engine.Metrics.Transmissions.Swap(0), "Frames handed to the radio, acks and retries included"},
		{"acked", engine.Metrics.Acked.Swap(0), "Messages resolved as delivered"},
		{"failed", engine.Metrics.Failed.Swap(0), "Messages resolved as failed"},
		{"acks_sent", engine.Metrics.AcksSent.Swap(0), "Acknowledgements sent for received commands"},
		{"rx_frames", engine.Metrics.RxFrames.Swap(0), "Frames read from the radio"},
		{"rx_malformed", engine.Metrics.RxMalformed.Swap(0), "Received frames that failed to decode"},
		{"rx_foreign", engine.Metrics.RxForeign.Swap(0), "Received frames addressed to other devices"},
		{"stale_acks", engine.Metrics.StaleAcks.Swap(0), "Acks matching no pending message"},
		{"tx_timeouts", engine.Metrics.TxTimeouts.Swap(0), "Sends abandoned waiting for the radio"},
		{"completion_overflow", engine.Metrics.CompletionOverflow.Swap(0), "Transmit completions dropped by a full channel"},
	}
	for _, counter := range counters {
		add(counter.name, counter.value, "count", metrics.Counter, counter.description)
	}
	return
}
