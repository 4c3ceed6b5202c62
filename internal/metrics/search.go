package metrics

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Returns stored metrics matching query, oldest first.
// Name matches exactly. Description, unit and type are ignored.
func (registry *Registry) Search(query Query) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	slices := make([]time.Time, 0, len(registry.slices))
	for slice := range registry.slices {
		if !query.Start.IsZero() && slice.Before(query.Start) {
			continue
		}
		if !query.End.IsZero() && slice.After(query.End) {
			continue
		}
		slices = append(slices, slice)
	}
	sort.Slice(slices, func(i, j int) bool { return slices[i].Before(slices[j]) })

	for _, slice := range slices {
		bucket := registry.slices[slice]
		keys := make([]string, 0, len(bucket))
		for key, metric := range bucket {
			if query.Name != "" && metric.Name != query.Name {
				continue
			}
			if !hasPrefix(metric.Namespace, query.Namespace) {
				continue
			}
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			results = append(results, bucket[key])
		}
	}
	return
}

// Lists distinct metrics (no values or timestamps) that match the query filters.
// Name and description are substring matches.
func (registry *Registry) Discover(query Query) (results []Metric) {
	registry.mu.RLock()
	defer registry.mu.RUnlock()

	seen := make(map[string]Metric)
	for _, bucket := range registry.slices {
		for _, metric := range bucket {
			if !hasPrefix(metric.Namespace, query.Namespace) {
				continue
			}
			if query.Name != "" && !strings.Contains(metric.Name, query.Name) {
				continue
			}
			if query.Description != "" && !strings.Contains(metric.Description, query.Description) {
				continue
			}
			if query.Unit != "" && metric.Value.Unit != query.Unit {
				continue
			}
			if query.Type != "" && metric.Type != query.Type {
				continue
			}

			key := metricKey(metric.Namespace, metric.Name) + "|" + metric.Value.Unit
			if _, exists := seen[key]; exists {
				continue
			}
			seen[key] = Metric{
				Name:        metric.Name,
				Description: metric.Description,
				Namespace:   metric.Namespace,
				Type:        metric.Type,
				Value:       MetricValue{Unit: metric.Value.Unit},
			}
		}
	}

	results = make([]Metric, 0, len(seen))
	for _, metric := range seen {
		results = append(results, metric)
	}
	sort.Slice(results, func(i, j int) bool {
		if results[i].Name != results[j].Name {
			return results[i].Name < results[j].Name
		}
		return strings.Join(results[i].Namespace, "/") < strings.Join(results[j].Namespace, "/")
	})
	return
}

// Folds every matching sample into one summary metric
func (registry *Registry) Aggregate(kind string, query Query) (result Metric, err error) {
	samples := registry.Search(query)
	if len(samples) == 0 {
		err = fmt.Errorf("no samples for metric %q", query.Name)
		return
	}

	var sum float64
	min := math.Inf(1)
	max := math.Inf(-1)
	for _, sample := range samples {
		var value float64
		value, err = numeric(sample.Value.Raw)
		if err != nil {
			err = fmt.Errorf("metric %q: %w", sample.Name, err)
			return
		}
		sum += value
		min = math.Min(min, value)
		max = math.Max(max, value)
	}

	var value float64
	switch kind {
	case AggSum:
		value = sum
	case AggMin:
		value = min
	case AggMax:
		value = max
	case AggAvg:
		value = sum / float64(len(samples))
	default:
		err = fmt.Errorf("unknown aggregation %q", kind)
		return
	}

	last := samples[len(samples)-1]
	result = Metric{
		Name:        last.Name,
		Description: kind + " of " + last.Description,
		Namespace:   last.Namespace,
		Type:        Summary,
		Timestamp:   last.Timestamp,
		Value: MetricValue{
			Raw:      value,
			Unit:     last.Value.Unit,
			Interval: last.Timestamp.Sub(samples[0].Timestamp) + last.Value.Interval,
		},
	}
	return
}

func numeric(raw any) (value float64, err error) {
	switch typed := raw.(type) {
	case int:
		value = float64(typed)
	case int8:
		value = float64(typed)
	case int32:
		value = float64(typed)
	case int64:
		value = float64(typed)
	case uint8:
		value = float64(typed)
	case uint32:
		value = float64(typed)
	case uint64:
		value = float64(typed)
	case float32:
		value = float64(typed)
	case float64:
		value = typed
	case string:
		value, err = strconv.ParseFloat(typed, 64)
	default:
		err = fmt.Errorf("non-numeric value of type %T", raw)
	}
	return
}
