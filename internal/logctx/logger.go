// Context carried logger. Events are buffered and written out by a watcher goroutine
package logctx

import (
	"context"
	"loracom/internal/global"
	"sync"
	"time"
)

// Oldest events are dropped past this backlog
const maxBacklog int = 8192

type Event struct {
	Timestamp time.Time
	Severity  string
	Tags      []string
	Message   string
}

type Logger struct {
	ID         string
	CreatedAt  time.Time
	PrintLevel int // Events above this level are dropped (errors always kept)
	Done       <-chan struct{}

	mutex   sync.Mutex
	cond    *sync.Cond // signals watcher of new events
	backlog []Event
	dropped uint64
	wg      sync.WaitGroup
}

// Creates logger without attaching it to a context
func NewLogger(id string, logLevel int, done <-chan struct{}) (logger *Logger) {
	logger = &Logger{
		ID:         id,
		CreatedAt:  time.Now(),
		PrintLevel: logLevel,
		Done:       done,
		backlog:    make([]Event, 0, 64),
	}
	logger.cond = sync.NewCond(&logger.mutex)
	return
}

// Creates logger and embeds it in a child of baseCtx
func New(baseCtx context.Context, id string, logLevel int, done <-chan struct{}) (ctxLogger context.Context) {
	ctxLogger = WithLogger(baseCtx, NewLogger(id, logLevel, done))
	return
}

// Attach the logger to context
func WithLogger(ctx context.Context, logger *Logger) (ctxLogger context.Context) {
	ctxLogger = context.WithValue(ctx, global.LoggerKey, logger)
	return
}

// Extracts Logger from context or returns nil
func GetLogger(ctx context.Context) (logger *Logger) {
	logger, _ = ctx.Value(global.LoggerKey).(*Logger)
	return
}

// Change the logger's level
func SetLogLevel(ctx context.Context, newLevel int) {
	logger := GetLogger(ctx)
	if logger == nil {
		return
	}
	logger.mutex.Lock()
	logger.PrintLevel = newLevel
	logger.mutex.Unlock()
}

// Hold main thread exit until watchers have written everything
func (logger *Logger) Wait() {
	logger.wg.Wait()
}

// Wakes watchers blocked on an empty backlog
func (logger *Logger) Wake() {
	logger.mutex.Lock()
	logger.cond.Broadcast()
	logger.mutex.Unlock()
}

// Number of events discarded because the backlog was full
func (logger *Logger) Dropped() (count uint64) {
	logger.mutex.Lock()
	count = logger.dropped
	logger.mutex.Unlock()
	return
}
