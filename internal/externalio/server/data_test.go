package server

import (
	"context"
	"errors"
	"loracom/internal/global"
	"loracom/internal/metrics"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestHandleDataAndAggregation(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		path       string
		handler    func(http.ResponseWriter, *http.Request)
		wantStatus int
	}{
		{
			name: "data default times",
			path: global.DataPath + "?name=test",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "data invalid starttime",
			path: global.DataPath + "?starttime=badtime",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "data invalid triggers default relative start time",
			path: global.DataPath + "?starttime=-5w",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "data invalid relative end time",
			path: global.DataPath + "?endtime=+2y",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "data relative start time past",
			path: global.DataPath + "?starttime=-5m",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "data relative start time future",
			path: global.DataPath + "?starttime=+15m",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "data absolute start time",
			path: global.DataPath + "?starttime=2001-01-02T01:02:03.001Z",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleData(ctx, mockDataSearcher(nil), w, r)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "agg invalid starttime",
			path: global.AggregationPath + "?starttime=badtime",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, nil), w, r,
				)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "agg invalid triggers default relative start time",
			path: global.AggregationPath + "?starttime=-5w",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, nil), w, r,
				)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "agg invalid relative end time",
			path: global.AggregationPath + "?endtime=+2y",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, nil), w, r,
				)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "agg relative start time past",
			path: global.AggregationPath + "?starttime=-5m",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, nil), w, r,
				)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "agg relative start time future",
			path: global.AggregationPath + "?starttime=+15m",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, nil), w, r,
				)
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "agg absolute start time",
			path: global.AggregationPath + "?starttime=2001-01-02T01:02:03.001Z",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, nil), w, r,
				)
			},
			wantStatus: http.StatusOK,
		},
		{
			name: "aggregation returns error as JSON",
			path: global.AggregationPath + "?aggregation=sum",
			handler: func(w http.ResponseWriter, r *http.Request) {
				handleAggregation(ctx,
					mockAggSearcher(metrics.Metric{}, errors.New("boom")), w, r,
				)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)

			tt.handler(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status=%d want=%d", rr.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleData_Query(t *testing.T) {
	var got metrics.Query
	search := func(query metrics.Query) []metrics.Metric {
		got = query
		return []metrics.Metric{{Name: "acked", Namespace: []string{"Node", "Engine"}}}
	}

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, global.DataPath+"Node/Engine/?name=acked&starttime=-10m", nil)
	handleData(context.Background(), search, rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status=%d want=%d", rr.Code, http.StatusOK)
	}
	if got.Name != "acked" {
		t.Errorf("name=%q want=%q", got.Name, "acked")
	}
	if len(got.Namespace) != 2 || got.Namespace[0] != "Node" || got.Namespace[1] != "Engine" {
		t.Errorf("namespace=%v want=[Node Engine]", got.Namespace)
	}
	window := got.End.Sub(got.Start)
	if window < 9*time.Minute || window > 11*time.Minute {
		t.Errorf("window=%v want about 10m", window)
	}
}

func TestParseTimeRange(t *testing.T) {
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		query     string
		wantStart time.Time
		wantEnd   time.Time
		wantErr   bool
	}{
		{
			name:      "defaults",
			query:     "",
			wantStart: now.Add(-time.Minute),
			wantEnd:   now,
		},
		{
			name:      "relative start",
			query:     "?starttime=-1h",
			wantStart: now.Add(-time.Hour),
			wantEnd:   now,
		},
		{
			name:      "absolute range",
			query:     "?starttime=2024-05-01T10:00:00Z&endtime=2024-05-01T11:00:00Z",
			wantStart: time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
			wantEnd:   time.Date(2024, 5, 1, 11, 0, 0, 0, time.UTC),
		},
		{
			name:    "future relative start",
			query:   "?starttime=%2B5m",
			wantErr: true,
		},
		{
			name:    "end before start",
			query:   "?starttime=2024-05-01T11:00:00Z&endtime=2024-05-01T10:00:00Z",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, global.DataPath+tt.query, nil)
			start, end, err := parseTimeRange(req, now)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got start=%v end=%v", start, end)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !start.Equal(tt.wantStart) || !end.Equal(tt.wantEnd) {
				t.Errorf("range=%v..%v want %v..%v", start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
