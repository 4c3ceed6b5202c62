package atomics

import "sync/atomic"

// Subtracts value from source, stopping at zero instead of wrapping
func SaturatingSub(source *atomic.Uint64, value uint64) (newValue uint64) {
	for {
		current := source.Load()
		if value >= current {
			newValue = 0
		} else {
			newValue = current - value
		}
		if source.CompareAndSwap(current, newValue) {
			return
		}
	}
}
