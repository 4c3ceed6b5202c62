package journald

import (
	"bytes"
	"context"
	"fmt"
	"loracom/internal/externalio"
	"loracom/internal/global"
	"loracom/internal/loracom"
	"loracom/internal/syslog"
	"loracom/pkg/protocol"
	"math"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

var bootID = sync.OnceValue(func() string {
	raw, err := os.ReadFile("/proc/sys/kernel/random/boot_id")
	if err != nil {
		return ""
	}
	return strings.ReplaceAll(strings.TrimSpace(string(raw)), "-", "")
})

// Journal entry for a relayed command outcome
func (mod *OutModule) WriteDelivery(ctx context.Context, report externalio.DeliveryReport) (entriesWritten int, err error) {
	if mod == nil {
		return
	}
	fields := deliveryFields(report)
	fields["HOSTNAME"] = mod.hostname
	entriesWritten, err = mod.send(ctx, fields)
	if err != nil {
		err = fmt.Errorf("%w (delivery: sequence %d to device %d)", err, report.Sequence, report.Receiver)
	}
	return
}

// Journal entry for a received status broadcast
func (mod *OutModule) WriteStatus(ctx context.Context, report externalio.StatusReport) (entriesWritten int, err error) {
	if mod == nil {
		return
	}
	fields := statusFields(report)
	fields["HOSTNAME"] = mod.hostname
	entriesWritten, err = mod.send(ctx, fields)
	if err != nil {
		err = fmt.Errorf("%w (status: device %d)", err, report.SenderID)
	}
	return
}

func deliveryFields(report externalio.DeliveryReport) (fields map[string]string) {
	severity := syslog.Informational
	if report.Outcome != loracom.OutcomeAcked.String() {
		severity = syslog.Warning
	}

	fields = baseFields(report.Timestamp, report.DeviceID, severity)
	fields["MESSAGE"] = fmt.Sprintf("command '%s' to device %d %s", report.Command, report.Receiver, report.Outcome)
	fields["LORACOM_EVENT"] = "delivery"
	fields["LORACOM_RECEIVER"] = strconv.Itoa(int(report.Receiver))
	fields["LORACOM_SEQUENCE"] = strconv.Itoa(int(report.Sequence))
	fields["LORACOM_COMMAND"] = report.Command.String()
	fields["LORACOM_OUTCOME"] = report.Outcome
	fields["LORACOM_LATENCY_MS"] = strconv.FormatInt(report.Latency.Milliseconds(), 10)
	return
}

func statusFields(report externalio.StatusReport) (fields map[string]string) {
	fields = baseFields(report.Timestamp, report.DeviceID, syslog.Informational)
	fields["MESSAGE"] = strings.TrimSuffix(protocol.FormatStatusLine(report.SenderID, report.Status), "\n")
	fields["LORACOM_EVENT"] = "status"
	fields["LORACOM_SENDER"] = strconv.Itoa(int(report.SenderID))
	fields["LORACOM_FRAME_RSSI"] = strconv.Itoa(report.FrameRSSI)
	fields["LORACOM_BATTERY"] = strconv.FormatFloat(float64(report.Status.BatteryVoltage), 'f', 2, 32)
	fields["LORACOM_STATE"] = report.Status.Status.String()
	for i, input := range report.Status.Inputs {
		if math.IsNaN(float64(input)) {
			continue
		}
		fields["LORACOM_INPUT_"+strconv.Itoa(i)] = strconv.FormatFloat(float64(input), 'g', -1, 32)
	}
	return
}

func baseFields(timestamp time.Time, deviceID uint8, severity syslog.Severity) (fields map[string]string) {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	fields = map[string]string{
		"__REALTIME_TIMESTAMP": strconv.FormatInt(timestamp.UnixMicro(), 10), // Required field
		"_BOOT_ID":             bootID(),                                     // Required field
		"PRIORITY":             strconv.Itoa(int(severity)),
		"SYSLOG_FACILITY":      strconv.Itoa(int(syslog.Daemon)),
		"SYSLOG_IDENTIFIER":    global.ProgBaseName,
		"LORACOM_DEVICE":       strconv.Itoa(int(deviceID)),
	}
	return
}

// Key=val\n export format, terminated by an empty line
func encodeExport(fields map[string]string) (payload []byte) {
	keys := make([]string, 0, len(fields))
	for key, value := range fields {
		if key == "" || value == "" || strings.ContainsRune(value, '\n') {
			continue
		}
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var buf bytes.Buffer
	for _, key := range keys {
		buf.WriteString(key)
		buf.WriteByte('=')
		buf.WriteString(fields[key])
		buf.WriteByte('\n')
	}
	buf.WriteByte('\n')
	payload = buf.Bytes()
	return
}

func (mod *OutModule) send(ctx context.Context, fields map[string]string) (entriesWritten int, err error) {
	err = sendJournalExport(ctx, mod.sink, mod.url, encodeExport(fields))
	if err != nil {
		mod.Metrics.WriteFailure.Add(1)
		return
	}
	mod.Metrics.EntriesSent.Add(1)
	entriesWritten = 1
	return
}
