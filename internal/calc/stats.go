// Basic calculation functions
package calc

import (
	"cmp"
	"slices"
	"time"
)

type Number interface {
	~int | ~int64 | ~uint64 | ~float64
}

// Mean of values after dropping trimPercent of the sorted values from each end.
// At least the middle value is always kept.
func TrimmedMean[T Number](values []T, trimPercent float64) (mean T) {
	n := len(values)
	if n == 0 {
		return
	}
	if trimPercent < 0 {
		trimPercent = 0
	}

	nums := slices.Clone(values)
	slices.SortFunc(nums, cmp.Compare[T])

	trimCount := int(float64(n) * trimPercent)
	if trimCount*2 >= n {
		trimCount = (n - 1) / 2
	}
	kept := nums[trimCount : n-trimCount]

	var sum T
	for _, v := range kept {
		sum += v
	}
	mean = sum / T(len(kept))
	return
}

// Trimmed mean of durations, resistant to the odd retry-inflated sample
func TrimmedMeanDuration(values []time.Duration, trimPercent float64) (mean time.Duration) {
	mean = TrimmedMean(values, trimPercent)
	return
}
