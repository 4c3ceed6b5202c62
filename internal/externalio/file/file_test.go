package file

import (
	"errors"
	"loracom/internal/externalio"
	"loracom/pkg/protocol"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNewOutput_NoPath(t *testing.T) {
	module, err := NewOutput("")
	if err != nil || module != nil {
		t.Fatalf("NewOutput(\"\") = %v, %v; want nil, nil", module, err)
	}
	if n, err := module.WriteDelivery(externalio.DeliveryReport{}); n != 0 || err != nil {
		t.Errorf("WriteDelivery on nil module = %d, %v", n, err)
	}
	if err := module.Shutdown(); err != nil {
		t.Errorf("Shutdown on nil module: %v", err)
	}
}

func TestWrite_OrderedFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events", "node.log")
	module, err := NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}

	base := time.Date(2026, 6, 1, 10, 0, 0, 0, time.UTC)
	cmd := protocol.CommandPayload{CommandID: 12, ParamType: protocol.ParamFloat, Float: 3.1}

	// Written out of order
	module.WriteDelivery(externalio.DeliveryReport{Timestamp: base.Add(2 * time.Second), DeviceID: 1, Receiver: 2, Sequence: 2, Command: cmd, Outcome: "failed"})
	module.WriteStatus(externalio.StatusReport{Timestamp: base, DeviceID: 1, SenderID: 4, FrameRSSI: -70})
	module.WriteDelivery(externalio.DeliveryReport{Timestamp: base.Add(time.Second), DeviceID: 1, Receiver: 2, Sequence: 1, Command: cmd, Outcome: "acked", Latency: 240 * time.Millisecond})

	// Nothing on disk until flushed
	raw, _ := os.ReadFile(path)
	if len(raw) != 0 {
		t.Fatalf("expected buffered writes, file has %q", raw)
	}

	n, err := module.FlushBuffer()
	if err != nil || n != 3 {
		t.Fatalf("FlushBuffer = %d, %v", n, err)
	}
	if err := module.Shutdown(); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}

	raw, err = os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSuffix(string(raw), "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %q", lines)
	}
	if !strings.Contains(lines[0], "status ID:4") {
		t.Errorf("line 0 = %q", lines[0])
	}
	if !strings.Contains(lines[1], "seq:1 to:2 cmd:12 3.1 outcome:acked latency:240ms") {
		t.Errorf("line 1 = %q", lines[1])
	}
	if !strings.Contains(lines[2], "seq:2") || !strings.HasPrefix(lines[2], "2026-06-01T10:00:02Z") {
		t.Errorf("line 2 = %q", lines[2])
	}
}

func TestWrite_BatchFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.log")
	module, err := NewOutput(path)
	if err != nil {
		t.Fatalf("NewOutput: %v", err)
	}
	defer module.Shutdown()

	var written int
	for i := 0; i < batchSize; i++ {
		n, err := module.WriteStatus(externalio.StatusReport{SenderID: uint8(i)})
		if err != nil {
			t.Fatalf("WriteStatus: %v", err)
		}
		written += n
	}
	if written != batchSize {
		t.Errorf("expected a flush of %d lines at batch size, got %d", batchSize, written)
	}
	if got := module.Metrics.LinesWritten.Load(); got != uint64(batchSize) {
		t.Errorf("lines written metric = %d", got)
	}
}

type failingSink struct{ writes int }

func (sink *failingSink) Write(p []byte) (int, error) {
	sink.writes++
	if sink.writes > 1 {
		return 0, errors.New("disk full")
	}
	return len(p), nil
}

func (sink *failingSink) Close() error { return nil }

func TestFlush_KeepsUnwritten(t *testing.T) {
	sink := &failingSink{}
	module := &OutModule{sink: sink}
	module.WriteStatus(externalio.StatusReport{SenderID: 1})
	module.WriteStatus(externalio.StatusReport{SenderID: 2})

	n, err := module.FlushBuffer()
	if err == nil || n != 1 {
		t.Fatalf("FlushBuffer = %d, %v; want 1 line and an error", n, err)
	}
	if len(module.batchBuffer) != 1 {
		t.Errorf("expected 1 line kept for retry, got %d", len(module.batchBuffer))
	}
	if module.Metrics.WriteFailure.Load() != 1 {
		t.Errorf("write failure not counted")
	}
}
