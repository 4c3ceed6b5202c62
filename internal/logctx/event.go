package logctx

import (
	"context"
	"fmt"
	"loracom/internal/global"
	"strings"
	"time"
)

// Entry for logging events. Messages carry their own trailing newline.
func LogEvent(ctx context.Context, eventLevel int, severity string, message string, vars ...any) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}

	// Only format when there is something to substitute
	if len(vars) > 0 && strings.Contains(message, "%") {
		message = fmt.Sprintf(message, vars...)
	}

	logger.record(eventLevel, severity, GetTagList(ctx), message)
}

func (logger *Logger) record(eventLevel int, severity string, tags []string, message string) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	if eventLevel > logger.PrintLevel && severity != global.ErrorLog {
		return
	}

	if len(logger.backlog) >= maxBacklog {
		logger.backlog = logger.backlog[1:]
		logger.dropped++
	}

	logger.backlog = append(logger.backlog, Event{
		Timestamp: time.Now(),
		Severity:  severity,
		Tags:      tags,
		Message:   message,
	})
	logger.cond.Signal()
}

// Stringify full event, skipping empty parts
func (event Event) Format() (text string) {
	parts := make([]string, 0, 4)
	if !event.Timestamp.IsZero() {
		parts = append(parts, "["+padTimestamp(event.Timestamp)+"]")
	}
	if len(event.Tags) > 0 {
		parts = append(parts, "["+strings.Join(event.Tags, "/")+"]")
	}
	if event.Severity != "" {
		parts = append(parts, "["+event.Severity+"]")
	}
	if event.Message != "" {
		parts = append(parts, event.Message)
	}
	text = strings.Join(parts, " ")
	return
}

// Fixed width RFC3339 timestamp (nanoseconds always 9 digits)
func padTimestamp(timestamp time.Time) (formatted string) {
	formatted = timestamp.Format("2006-01-02T15:04:05.000000000Z07:00")
	return
}
