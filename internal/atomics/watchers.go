// Helpers for waiting on and updating atomic values
package atomics

import (
	"sync/atomic"
	"time"
)

const (
	initialBackoff time.Duration = 500 * time.Microsecond
	maxBackoff     time.Duration = 20 * time.Millisecond
)

// Polls condition with exponential backoff until it holds or timeout elapses.
// Condition is always checked at least once and once more at the deadline.
func WaitFor(condition func() bool, timeout time.Duration) (met bool) {
	deadline := time.Now().Add(timeout)
	backoff := initialBackoff

	for {
		if condition() {
			met = true
			return
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return
		}

		sleep := backoff
		if sleep > remaining {
			sleep = remaining
		}
		time.Sleep(sleep)

		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}

// Waits until value reads zero, returning the last value seen
func WaitUntilZero(value *atomic.Uint64, timeout time.Duration) (reachedZero bool, lastValue uint64) {
	reachedZero = WaitFor(func() bool {
		lastValue = value.Load()
		return lastValue == 0
	}, timeout)
	return
}
