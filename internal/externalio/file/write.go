package file

import (
	"fmt"
	"io"
	"loracom/internal/externalio"
	"loracom/pkg/protocol"
	"sort"
	"strings"
	"time"
)

// Lines held before a forced flush
const batchSize int = 20

func (mod *OutModule) WriteDelivery(report externalio.DeliveryReport) (linesWritten int, err error) {
	if mod == nil {
		return
	}
	line := fmt.Sprintf("%s device:%d delivery seq:%d to:%d cmd:%s outcome:%s latency:%s",
		stamp(report.Timestamp), report.DeviceID, report.Sequence, report.Receiver,
		report.Command, report.Outcome, report.Latency.Round(time.Millisecond))
	linesWritten, err = mod.add(line)
	return
}

func (mod *OutModule) WriteStatus(report externalio.StatusReport) (linesWritten int, err error) {
	if mod == nil {
		return
	}
	line := fmt.Sprintf("%s device:%d frameRSSI:%d %s",
		stamp(report.Timestamp), report.DeviceID, report.FrameRSSI,
		protocol.FormatStatusLine(report.SenderID, report.Status))
	linesWritten, err = mod.add(line)
	return
}

func stamp(timestamp time.Time) string {
	if timestamp.IsZero() {
		timestamp = time.Now()
	}
	return timestamp.UTC().Format(time.RFC3339Nano)
}

// Buffers a small amount to reorder and write in batches
func (mod *OutModule) add(line string) (linesWritten int, err error) {
	// Always ensure outputs have only one trailing newline
	line = strings.TrimRight(line, "\n") + "\n"

	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	mod.batchBuffer = append(mod.batchBuffer, line)
	if len(mod.batchBuffer) >= batchSize {
		linesWritten, err = mod.flushLocked()
	}
	return
}

// Flushes line buffer to the file, oldest first
func (mod *OutModule) FlushBuffer() (flushedCnt int, err error) {
	if mod == nil {
		return
	}
	mod.mutex.Lock()
	defer mod.mutex.Unlock()
	flushedCnt, err = mod.flushLocked()
	return
}

func (mod *OutModule) flushLocked() (flushedCnt int, err error) {
	if len(mod.batchBuffer) == 0 {
		return
	}

	// Extract timestamp prefix (up to first space)
	getTime := func(s string) time.Time {
		ts, _, _ := strings.Cut(s, " ")
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return time.Time{}
		}
		return t
	}
	sort.SliceStable(mod.batchBuffer, func(i, j int) bool {
		return getTime(mod.batchBuffer[i]).Before(getTime(mod.batchBuffer[j]))
	})

	for _, line := range mod.batchBuffer {
		_, err = io.WriteString(mod.sink, line)
		if err != nil {
			mod.Metrics.WriteFailure.Add(1)
			// Keep what was not written for the next flush
			mod.batchBuffer = mod.batchBuffer[flushedCnt:]
			err = fmt.Errorf("failed to write event log: %w", err)
			return
		}
		flushedCnt++
	}
	mod.Metrics.LinesWritten.Add(uint64(flushedCnt))

	// All writes succeeded, empty buffer
	mod.batchBuffer = mod.batchBuffer[:0]
	return
}
