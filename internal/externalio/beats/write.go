package beats

import (
	"context"
	"fmt"
	"loracom/internal/externalio"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"math"
	"os"
)

// Sends a command delivery outcome to the configured beats server
func (mod *OutModule) WriteDelivery(ctx context.Context, report externalio.DeliveryReport) (eventsSent int, err error) {
	if mod == nil {
		return
	}
	eventsSent, err = mod.send(ctx, "command-delivery", deliveryFields(report))
	return
}

// Sends received telemetry to the configured beats server
func (mod *OutModule) WriteStatus(ctx context.Context, report externalio.StatusReport) (eventsSent int, err error) {
	if mod == nil {
		return
	}
	eventsSent, err = mod.send(ctx, "status", statusFields(report))
	return
}

func deliveryFields(report externalio.DeliveryReport) (fields map[string]interface{}) {
	fields = baseFields(report.DeviceID)
	fields["@timestamp"] = report.Timestamp
	fields["message"] = fmt.Sprintf("command '%s' to device %d %s", report.Command.String(), report.Receiver, report.Outcome)
	fields["event"] = map[string]interface{}{
		"kind":     "event",
		"action":   "command-delivery",
		"outcome":  report.Outcome,
		"duration": report.Latency.Nanoseconds(),
	}
	fields["loracom"] = map[string]interface{}{
		"sequence": report.Sequence,
		"receiver": report.Receiver,
		"command": map[string]interface{}{
			"id":   report.Command.CommandID,
			"line": report.Command.String(),
		},
	}
	return
}

func statusFields(report externalio.StatusReport) (fields map[string]interface{}) {
	inputs := make([]interface{}, 0, len(report.Status.Inputs))
	for _, input := range report.Status.Inputs {
		// JSON has no NaN, unwired inputs are sent as null
		if math.IsNaN(float64(input)) || math.IsInf(float64(input), 0) {
			inputs = append(inputs, nil)
			continue
		}
		inputs = append(inputs, input)
	}

	fields = baseFields(report.DeviceID)
	fields["@timestamp"] = report.Timestamp
	fields["message"] = fmt.Sprintf("status from device %d: %s", report.SenderID, report.Status.Status)
	fields["event"] = map[string]interface{}{
		"kind":   "metric",
		"action": "status",
	}
	fields["loracom"] = map[string]interface{}{
		"sender":     report.SenderID,
		"frame_rssi": report.FrameRSSI,
		"status": map[string]interface{}{
			"code":    uint8(report.Status.Status),
			"name":    report.Status.Status.String(),
			"rssi":    report.Status.RSSI,
			"battery": report.Status.BatteryVoltage,
			"inputs":  inputs,
		},
	}
	return
}

// Meta fields identifying this node
func baseFields(deviceID uint8) (fields map[string]interface{}) {
	fields = map[string]interface{}{
		"host": map[string]interface{}{
			"name":     global.Hostname,
			"hostname": global.Hostname,
			"id":       deviceID,
		},
		"agent": map[string]interface{}{
			"name":    global.Hostname,
			"program": global.ProgBaseName,
			"version": global.ProgVersion,
			"type":    "loracom",
			"pid":     os.Getpid(),
		},
	}
	return
}

func (mod *OutModule) send(ctx context.Context, action string, fields map[string]interface{}) (eventsSent int, err error) {
	events := []interface{}{fields}

	eventsSent, err = mod.sink.Send(events)
	if err != nil {
		err = fmt.Errorf("failed to forward %s event to beats server: %w", action, err)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityData, global.InfoLog, "Forwarded %s event to beats server\n", action)
	return
}
