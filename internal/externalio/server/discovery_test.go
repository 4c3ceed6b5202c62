package server

import (
	"context"
	"encoding/json"
	"loracom/internal/global"
	"loracom/internal/metrics"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestHandleDiscovery(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		query      string
		results    []metrics.Metric
		wantStatus int
		wantError  bool
	}{
		{
			name:       "empty results returns JSON error",
			query:      "",
			results:    nil,
			wantStatus: http.StatusOK,
			wantError:  true,
		},
		{
			name:  "valid results name only",
			query: "?name=test",
			results: []metrics.Metric{
				{
					Name: "test",
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "valid results with namespace",
			query: "Node/Engine/?name=test",
			results: []metrics.Metric{
				{
					Name:      "test",
					Namespace: []string{"Node", "Engine"},
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:  "valid results with type",
			query: "Node/Engine/?name=test&type=counter",
			results: []metrics.Metric{
				{
					Name:      "test",
					Namespace: []string{"Node", "Engine"},
					Type:      metrics.Counter,
				},
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "invalid metric type",
			query:      "?type=invalid",
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(
				http.MethodGet,
				global.DiscoveryPath+tt.query,
				nil,
			)

			handleDiscovery(ctx, mockDiscoverer(tt.results), rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}

			if tt.wantError {
				var je Jerror
				if err := json.NewDecoder(rr.Body).Decode(&je); err != nil {
					t.Fatalf("failed decoding JSON error: %v", err)
				}
				if je.Msg == "" {
					t.Fatal("expected non-empty error message")
				}
			}
		})
	}
}

// Discovery over a registry fed with the node's engine and tracker metrics
func TestHandleDiscovery_NodeNamespaces(t *testing.T) {
	ctx := context.Background()
	now := time.Now()
	interval := 10 * time.Second

	metric := func(namespace []string, name, unit string, kind metrics.MetricType, raw any) metrics.Metric {
		return metrics.Metric{
			Name:      name,
			Namespace: namespace,
			Type:      kind,
			Value:     metrics.MetricValue{Raw: raw, Unit: unit, Interval: interval},
			Timestamp: now,
		}
	}
	engineNS := []string{global.NSNode, global.NSEngine}
	trackerNS := []string{global.NSNode, global.NSTracker}

	registry := metrics.New()
	registry.Record(now, interval, []metrics.Metric{
		metric(engineNS, "enqueued", "count", metrics.Counter, uint64(4)),
		metric(engineNS, "send_queue_depth", "count", metrics.Gauge, uint64(1)),
		metric(trackerNS, "delivered", "count", metrics.Counter, uint64(3)),
		metric(trackerNS, "in_flight", "count", metrics.Gauge, uint64(1)),
		metric(trackerNS, "ack_latency", "ms", metrics.Gauge, uint64(245)),
	})

	tests := []struct {
		name      string
		query     string
		wantNames []string
		wantNS    string
	}{
		{"engine namespace", "Node/Engine/", []string{"enqueued", "send_queue_depth"}, "Node/Engine"},
		{"tracker gauges", "Node/Tracker/?type=gauge", []string{"ack_latency", "in_flight"}, "Node/Tracker"},
		{"tracker counter by name", "Node/Tracker/?name=delivered&type=counter", []string{"delivered"}, "Node/Tracker"},
		{"latency by unit", "Node/?unit=ms", []string{"ack_latency"}, "Node/Tracker"},
		{"unknown namespace", "Node/Radio/", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, global.DiscoveryPath+tt.query, nil)

			handleDiscovery(ctx, registry.Discover, rr, req)
			if rr.Code != http.StatusOK {
				t.Fatalf("status=%d want=%d", rr.Code, http.StatusOK)
			}

			if tt.wantNames == nil {
				var je Jerror
				if err := json.NewDecoder(rr.Body).Decode(&je); err != nil || je.Msg == "" {
					t.Fatalf("expected JSON error for empty discovery (err %v)", err)
				}
				return
			}

			var results []metrics.JMetric
			if err := json.NewDecoder(rr.Body).Decode(&results); err != nil {
				t.Fatalf("failed decoding results: %v", err)
			}
			var names []string
			for _, result := range results {
				names = append(names, result.Name)
				if result.Namespace != tt.wantNS {
					t.Errorf("metric %s in namespace %q, want %q", result.Name, result.Namespace, tt.wantNS)
				}
				if result.Value.Raw != "" || result.Timestamp != "" {
					t.Errorf("discovery must not carry values, got %+v", result)
				}
			}
			if strings.Join(names, ",") != strings.Join(tt.wantNames, ",") {
				t.Errorf("names=%v want=%v", names, tt.wantNames)
			}
		})
	}
}
