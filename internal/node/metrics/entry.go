// Gathers component metrics and saves to central registry
package metrics

import (
	"context"
	"loracom/internal/global"
	"loracom/internal/logctx"
	"loracom/internal/metrics"
	"runtime/debug"
	"time"
)

// Ticks between retention sweeps
const pruneEveryTicks int = 30

func New(interval time.Duration, maximumMetricAge time.Duration, sources ...Collector) (new *Gatherer) {
	new = &Gatherer{
		Registry:  metrics.New(),
		Interval:  interval,
		Retention: maximumMetricAge,
	}
	for _, source := range sources {
		if source != nil {
			new.Sources = append(new.Sources, source)
		}
	}
	return
}

func (gatherer *Gatherer) Run(ctx context.Context) {
	ctx = logctx.AppendCtxTag(ctx, global.NSMetric)

	// Tracking last interval run time
	lastRun := time.Now()

	ticker := time.NewTicker(gatherer.Interval / 2) // Use polling interval half of desired record interval
	defer ticker.Stop()

	// Counter to track how many ticks have passed (for retention)
	var tickCount int

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if now.Sub(lastRun) >= gatherer.Interval {
				lastRun = now
				gatherer.runIntervalTasks(ctx, now)
			}

			// Conduct old metric evaluations and cleanup
			tickCount++
			if tickCount >= pruneEveryTicks {
				gatherer.Registry.Prune(now, gatherer.Retention)
				tickCount = 0
			}
		}
	}
}

// Reads every source into the interval bucket for now
func (gatherer *Gatherer) runIntervalTasks(ctx context.Context, now time.Time) {
	// Record panics and continue on next interval
	defer func() {
		if fatalError := recover(); fatalError != nil {
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in metric collector: %v\n%s", fatalError, stack)
		}
	}()

	for _, source := range gatherer.Sources {
		collection := source.CollectMetrics(gatherer.Interval)
		gatherer.Registry.Record(now, gatherer.Interval, collection)
	}
}
