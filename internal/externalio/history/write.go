package history

import (
	"context"
	"fmt"
	"loracom/internal/externalio"
	"math"
	"strconv"
	"strings"
)

func (mod *OutModule) WriteDelivery(ctx context.Context, report externalio.DeliveryReport) (err error) {
	if mod == nil {
		return
	}
	_, err = mod.db.ExecContext(ctx,
		`INSERT INTO deliveries (recorded_at, device_id, receiver_id, sequence_id, command, outcome, latency_ms)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		report.Timestamp.UnixMilli(), report.DeviceID, report.Receiver, report.Sequence,
		report.Command.String(), report.Outcome, report.Latency.Milliseconds(),
	)
	if err != nil {
		mod.Metrics.WriteFailure.Add(1)
		err = fmt.Errorf("failed to record delivery of sequence %d: %w", report.Sequence, err)
		return
	}
	mod.Metrics.Deliveries.Add(1)
	return
}

func (mod *OutModule) WriteStatus(ctx context.Context, report externalio.StatusReport) (err error) {
	if mod == nil {
		return
	}

	inputs := make([]string, len(report.Status.Inputs))
	for i, input := range report.Status.Inputs {
		if math.IsNaN(float64(input)) {
			continue
		}
		inputs[i] = strconv.FormatFloat(float64(input), 'g', -1, 32)
	}

	_, err = mod.db.ExecContext(ctx,
		`INSERT INTO statuses (recorded_at, device_id, sender_id, frame_rssi, rssi, battery, status, inputs)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		report.Timestamp.UnixMilli(), report.DeviceID, report.SenderID, report.FrameRSSI,
		report.Status.RSSI, report.Status.BatteryVoltage, uint8(report.Status.Status), strings.Join(inputs, ","),
	)
	if err != nil {
		mod.Metrics.WriteFailure.Add(1)
		err = fmt.Errorf("failed to record status from device %d: %w", report.SenderID, err)
		return
	}
	mod.Metrics.Statuses.Add(1)
	return
}
