package logctx

import (
	"fmt"
	"io"
	"loracom/internal/global"
	"strings"
	"time"
)

const (
	dedupWindow      time.Duration = 5 * time.Second
	dedupMinRepeats  int           = 10
	suppressCooldown time.Duration = 1 * time.Minute
)

type dedupState struct {
	lastMsg          string
	repeatCount      int
	lastSuppressTime time.Time
}

// Starts a goroutine writing formatted events to output.
// Exits once logger.Done is closed and the backlog is empty.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}
			if dedup.suppress(event, output) {
				continue
			}
			fmt.Fprint(output, event.Format())
		}
	}()
}

// Blocks for the next event. Returns false when done with nothing left to write.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.backlog) == 0 {
		select {
		case <-logger.Done:
			return
		default:
		}
		logger.cond.Wait()
	}

	event = logger.backlog[0]
	logger.backlog = logger.backlog[1:]
	ok = true
	return
}

// Collapses bursts of one repeated message into a periodic summary line
func (dedup *dedupState) suppress(event Event, output io.Writer) (skip bool) {
	now := time.Now()

	if event.Message == "" || event.Message != dedup.lastMsg || now.Sub(event.Timestamp) > dedupWindow {
		dedup.lastMsg = event.Message
		dedup.repeatCount = 1
		return
	}

	dedup.repeatCount++
	if dedup.repeatCount >= dedupMinRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
		fmt.Fprintf(output, "[%s] [%s] [%s] Suppressed %d repeated messages: %s",
			padTimestamp(event.Timestamp),
			strings.Join(event.Tags, "/"),
			global.InfoLog,
			dedup.repeatCount,
			dedup.lastMsg)
		dedup.lastSuppressTime = now
		dedup.repeatCount = 0
	}
	skip = true
	return
}
