package logctx

import (
	"bytes"
	"context"
	"loracom/internal/global"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestLogEvent(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	ctx := New(context.Background(), global.NSTest, 2, done)
	logger := GetLogger(ctx)
	if logger == nil {
		t.Fatalf("expected logger creation, got nil logger")
	}

	tests := []struct {
		name          string
		logLevel      int
		eventLevel    int
		severity      string
		message       string
		vars          []any
		expectEvents  int
		expectMessage string
	}{
		{
			name:          "event level within print level",
			logLevel:      2,
			eventLevel:    1,
			severity:      global.InfoLog,
			message:       "radio ready\n",
			expectEvents:  1,
			expectMessage: "radio ready\n",
		},
		{
			name:         "event level above print level dropped",
			logLevel:     1,
			eventLevel:   3,
			severity:     global.InfoLog,
			message:      "frame bytes",
			expectEvents: 0,
		},
		{
			name:          "errors bypass level filtering",
			logLevel:      0,
			eventLevel:    5,
			severity:      global.ErrorLog,
			message:       "transmit failed",
			expectEvents:  1,
			expectMessage: "transmit failed",
		},
		{
			name:          "formatted with vars",
			logLevel:      3,
			eventLevel:    2,
			severity:      global.InfoLog,
			message:       "seq=%d",
			vars:          []any{42},
			expectEvents:  1,
			expectMessage: "seq=42",
		},
		{
			name:          "verb without vars left alone",
			logLevel:      3,
			eventLevel:    2,
			severity:      global.WarnLog,
			message:       "retry %d",
			expectEvents:  1,
			expectMessage: "retry %d",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger.mutex.Lock()
			logger.backlog = nil
			logger.mutex.Unlock()

			SetLogLevel(ctx, tt.logLevel)
			LogEvent(ctx, tt.eventLevel, tt.severity, tt.message, tt.vars...)

			logger.mutex.Lock()
			defer logger.mutex.Unlock()

			if got := len(logger.backlog); got != tt.expectEvents {
				t.Fatalf("expected %d events, got %d", tt.expectEvents, got)
			}
			if tt.expectEvents == 1 {
				ev := logger.backlog[0]
				if ev.Severity != tt.severity {
					t.Errorf("severity mismatch: got %q want %q", ev.Severity, tt.severity)
				}
				if ev.Message != tt.expectMessage {
					t.Errorf("message mismatch: got %q want %q", ev.Message, tt.expectMessage)
				}
				if time.Since(ev.Timestamp) > time.Second {
					t.Errorf("event timestamp too old: %v", ev.Timestamp)
				}
			}
		})
	}
}

func TestLogEvent_NoLogger(t *testing.T) {
	// Must not panic without a logger in context
	LogEvent(context.Background(), global.VerbosityStandard, global.InfoLog, "nothing\n")
}

func TestBacklogBound(t *testing.T) {
	done := make(chan struct{})
	defer close(done)

	ctx := New(context.Background(), global.NSTest, global.VerbosityDebug, done)
	logger := GetLogger(ctx)

	for i := 0; i < maxBacklog+5; i++ {
		LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "event %d\n", i)
	}

	logger.mutex.Lock()
	depth := len(logger.backlog)
	first := logger.backlog[0].Message
	logger.mutex.Unlock()

	if depth != maxBacklog {
		t.Fatalf("expected backlog capped at %d, got %d", maxBacklog, depth)
	}
	if logger.Dropped() != 5 {
		t.Errorf("expected 5 dropped events, got %d", logger.Dropped())
	}
	if first != "event 5\n" {
		t.Errorf("expected oldest events dropped first, head is %q", first)
	}
}

func TestTags(t *testing.T) {
	base := context.Background()
	if got := GetTagList(base); len(got) != 0 {
		t.Fatalf("expected empty tag list, got %v", got)
	}

	parent := AppendCtxTag(base, global.NSNode)
	child := AppendCtxTag(parent, global.NSEngine)
	sibling := AppendCtxTag(parent, global.NSRadio)

	if got := GetTagList(child); !reflect.DeepEqual(got, []string{global.NSNode, global.NSEngine}) {
		t.Errorf("unexpected child tags %v", got)
	}
	if got := GetTagList(sibling); !reflect.DeepEqual(got, []string{global.NSNode, global.NSRadio}) {
		t.Errorf("sibling tags affected by child: %v", got)
	}
	if got := GetTagList(RemoveLastCtxTag(child)); !reflect.DeepEqual(got, []string{global.NSNode}) {
		t.Errorf("unexpected tags after removal %v", got)
	}
	if got := GetTagList(RemoveLastCtxTag(base)); len(got) != 0 {
		t.Errorf("removing from empty list should stay empty, got %v", got)
	}
	wrongType := context.WithValue(base, global.LogTagsKey, "nope")
	if got := GetTagList(wrongType); len(got) != 0 {
		t.Errorf("expected empty list for wrong stored type, got %v", got)
	}
}

func TestTags_ConcurrentAppend(t *testing.T) {
	parent := AppendCtxTag(context.Background(), "root")

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			child := AppendCtxTag(parent, "leaf")
			if got := GetTagList(child); len(got) != 2 {
				t.Errorf("expected 2 tags, got %v", got)
			}
		}()
	}
	wg.Wait()

	if got := GetTagList(parent); len(got) != 1 {
		t.Errorf("parent mutated: %v", got)
	}
}

func TestEventFormat(t *testing.T) {
	ts := time.Date(2026, 1, 31, 12, 34, 56, 1200, time.UTC)
	tests := []struct {
		name   string
		event  Event
		expect string
	}{
		{
			name:   "all fields",
			event:  Event{Timestamp: ts, Severity: "Info", Tags: []string{"Node", "Engine"}, Message: "hello"},
			expect: "[2026-01-31T12:34:56.000001200Z] [Node/Engine] [Info] hello",
		},
		{
			name:   "no tags",
			event:  Event{Timestamp: ts, Severity: "Warn", Message: "late ack"},
			expect: "[2026-01-31T12:34:56.000001200Z] [Warn] late ack",
		},
		{
			name:   "only message",
			event:  Event{Message: "bare"},
			expect: "bare",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.event.Format(); got != tt.expect {
				t.Errorf("expected %q, got %q", tt.expect, got)
			}
		})
	}
}

func TestWatcher_DrainAndDedup(t *testing.T) {
	done := make(chan struct{})
	ctx := New(context.Background(), global.NSTest, global.VerbosityDebug, done)
	logger := GetLogger(ctx)

	var output bytes.Buffer
	StartWatcher(logger, &output)

	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "first\n")
	for i := 0; i < 11; i++ {
		LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "repeat\n")
	}

	close(done)
	logger.Wake()
	logger.Wait()

	out := output.String()
	if !strings.Contains(out, "first") {
		t.Errorf("expected first message in output, got:\n%s", out)
	}
	if strings.Count(out, "] repeat") != 1 {
		t.Errorf("expected repeated message printed once, got:\n%s", out)
	}
	if !strings.Contains(out, "Suppressed 10 repeated messages") {
		t.Errorf("expected suppression summary, got:\n%s", out)
	}
}
