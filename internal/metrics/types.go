package metrics

import (
	"sync"
	"time"
)

// Time bucketed store of collected metrics
type Registry struct {
	mu     sync.RWMutex
	slices map[time.Time]map[string]Metric // key0=interval start, key1=namespace/name
}

type MetricType string

const (
	Counter MetricType = "counter" // reset every interval
	Gauge   MetricType = "gauge"   // point in time reading
	Summary MetricType = "summary" // derived from other metrics
)

// Aggregation kinds understood by Aggregate
const (
	AggSum string = "sum"
	AggMin string = "min"
	AggMax string = "max"
	AggAvg string = "avg"
)

type Metric struct {
	Name        string // e.g. send_queue_depth, acked
	Description string
	Namespace   []string // e.g. Node/Engine
	Value       MetricValue
	Type        MetricType
	Timestamp   time.Time
}

type MetricValue struct {
	Raw      any    // integer, float or numeric string
	Unit     string // count, dBm, volts
	Interval time.Duration
}

// Search and discovery filters. Zero fields match everything.
type Query struct {
	Name        string
	Description string
	Namespace   []string // prefix match
	Unit        string
	Type        MetricType
	Start       time.Time
	End         time.Time
}

// JSON form of a metric
type JMetric struct {
	Name        string       `json:"name"`
	Description string       `json:"description"`
	Namespace   string       `json:"namespace"`
	Value       JMetricValue `json:"value"`
	Type        string       `json:"type"`
	Timestamp   string       `json:"timestamp,omitempty"`
}

type JMetricValue struct {
	Raw      string `json:"raw,omitempty"`
	Unit     string `json:"unit"`
	Interval string `json:"interval,omitempty"`
}
