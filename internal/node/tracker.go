package node

import (
	"loracom/internal/calc"
	"loracom/internal/externalio"
	"loracom/internal/global"
	"loracom/internal/loracom"
	"loracom/internal/metrics"
	"loracom/pkg/protocol"
	"sort"
	"sync"
	"time"
)

// Looks up the delivery state of a sequence ID
type outcomeSource interface {
	Outcome(seq uint8) loracom.Outcome
}

// Follows relayed commands until the engine resolves them
type tracker struct {
	mutex    sync.Mutex
	source   outcomeSource
	deviceID uint8
	pending  map[uint8]pending

	// Reset on every metric collection
	latencies []time.Duration
	outcomes  map[loracom.Outcome]uint64
}

func newTracker(source outcomeSource, deviceID uint8) (t *tracker) {
	t = &tracker{
		source:   source,
		deviceID: deviceID,
		pending:  make(map[uint8]pending),
		outcomes: make(map[loracom.Outcome]uint64),
	}
	return
}

func (t *tracker) track(seq uint8, receiver uint8, command protocol.CommandPayload, queued time.Time) {
	t.mutex.Lock()
	t.pending[seq] = pending{receiver: receiver, command: command, queued: queued}
	t.mutex.Unlock()
}

func (t *tracker) count() (n int) {
	t.mutex.Lock()
	n = len(t.pending)
	t.mutex.Unlock()
	return
}

// Returns reports for every tracked command that reached a terminal state, oldest first.
// A sequence the engine no longer knows is reported as unknown.
func (t *tracker) poll(now time.Time) (reports []externalio.DeliveryReport) {
	t.mutex.Lock()
	defer t.mutex.Unlock()

	for seq, entry := range t.pending {
		outcome := t.source.Outcome(seq)
		if outcome == loracom.OutcomeQueued {
			continue
		}
		delete(t.pending, seq)
		t.outcomes[outcome]++
		if outcome == loracom.OutcomeAcked {
			t.latencies = append(t.latencies, now.Sub(entry.queued))
		}
		reports = append(reports, externalio.DeliveryReport{
			Timestamp: now,
			DeviceID:  t.deviceID,
			Receiver:  entry.receiver,
			Sequence:  seq,
			Command:   entry.command,
			Outcome:   outcome.String(),
			Latency:   now.Sub(entry.queued),
		})
	}

	sort.Slice(reports, func(i, j int) bool {
		return reports[i].Latency > reports[j].Latency
	})
	return
}

// Share of extreme ack latencies ignored by the latency metric
const latencyTrim float64 = 0.1

func (t *tracker) CollectMetrics(interval time.Duration) (collection []metrics.Metric) {
	t.mutex.Lock()
	latencies := t.latencies
	t.latencies = nil
	outcomes := t.outcomes
	t.outcomes = make(map[loracom.Outcome]uint64)
	tracked := uint64(len(t.pending))
	t.mutex.Unlock()

	now := time.Now()
	namespace := []string{global.NSNode, global.NSTracker}

	add := func(name, desc, unit string, kind metrics.MetricType, value uint64) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: desc,
			Namespace:   namespace,
			Value: metrics.MetricValue{
				Raw:      value,
				Unit:     unit,
				Interval: interval,
			},
			Type:      kind,
			Timestamp: now,
		})
	}

	add("delivered", "Relayed commands acknowledged by their receiver", "count", metrics.Counter, outcomes[loracom.OutcomeAcked])
	add("failed", "Relayed commands that exhausted their retries", "count", metrics.Counter, outcomes[loracom.OutcomeFailed])
	add("lost_track", "Relayed commands evicted before an outcome was read", "count", metrics.Counter, outcomes[loracom.OutcomeUnknown])
	add("in_flight", "Relayed commands awaiting an outcome", "count", metrics.Gauge, tracked)

	mean := calc.TrimmedMeanDuration(latencies, latencyTrim)
	add("ack_latency", "Trimmed mean time from queueing to acknowledgement", "ms", metrics.Gauge, uint64(mean.Milliseconds()))
	return
}
