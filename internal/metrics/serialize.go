package metrics

import (
	"fmt"
	"strings"
	"time"
)

// Converts to export (JSON) form
func (metric Metric) Convert() (out JMetric) {
	out.Name = metric.Name
	out.Description = metric.Description
	out.Namespace = strings.Join(metric.Namespace, "/")
	out.Type = string(metric.Type)
	out.Value.Unit = metric.Value.Unit

	if metric.Value.Raw != nil {
		out.Value.Raw = fmt.Sprintf("%v", metric.Value.Raw)
	}
	if metric.Value.Interval > 0 {
		out.Value.Interval = metric.Value.Interval.String()
	}
	if !metric.Timestamp.IsZero() {
		out.Timestamp = metric.Timestamp.Format(time.RFC3339Nano)
	}
	return
}
