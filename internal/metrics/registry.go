// Central registry for storing interval collected metrics from node components
package metrics

import (
	"strings"
	"time"
)

func New() (registry *Registry) {
	registry = &Registry{
		slices: make(map[time.Time]map[string]Metric),
	}
	return
}

// Stores a batch of metrics under the interval bucket containing now.
// A later batch for the same namespace and name replaces the earlier one.
func (registry *Registry) Record(now time.Time, interval time.Duration, batch []Metric) (slice time.Time) {
	if interval > 0 {
		slice = now.Truncate(interval)
	} else {
		slice = now
	}

	registry.mu.Lock()
	defer registry.mu.Unlock()

	bucket := registry.slices[slice]
	if bucket == nil {
		bucket = make(map[string]Metric, len(batch))
		registry.slices[slice] = bucket
	}
	for _, metric := range batch {
		if metric.Timestamp.IsZero() {
			metric.Timestamp = slice
		}
		bucket[metricKey(metric.Namespace, metric.Name)] = metric
	}
	return
}

// Deletes buckets older than maxAge relative to now
func (registry *Registry) Prune(now time.Time, maxAge time.Duration) (removed int) {
	registry.mu.Lock()
	defer registry.mu.Unlock()

	for slice := range registry.slices {
		if now.Sub(slice) > maxAge {
			delete(registry.slices, slice)
			removed++
		}
	}
	return
}

func metricKey(namespace []string, name string) (key string) {
	key = strings.Join(namespace, "/") + "|" + name
	return
}

// Exact or prefix namespace match. Empty prefix matches everything.
func hasPrefix(namespace, prefix []string) (matches bool) {
	if len(prefix) > len(namespace) {
		return
	}
	for i := range prefix {
		if prefix[i] != "" && namespace[i] != prefix[i] {
			return
		}
	}
	matches = true
	return
}
