package server

import (
	"context"
	"loracom/internal/global"
	"loracom/internal/metrics"
	"net/http"
	"time"
)

// Handles metric search requests based on time and aggregation type
func handleAggregation(baseCtx context.Context, search AggSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqStartTime, reqEndTime, err := parseTimeRange(clientRequest, time.Now())
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	aggType := clientRequest.FormValue("aggregation")
	query := metrics.Query{
		Name:      clientRequest.FormValue("name"),
		Namespace: splitNamespace(clientRequest.URL.Path, global.AggregationPath),
		Start:     reqStartTime,
		End:       reqEndTime,
	}

	// Query internal metric registry
	result, err := search(aggType, query)
	if err != nil {
		jResp(baseCtx, serverResponder, Jerror{Msg: err.Error()})
		return
	}
	jResp(baseCtx, serverResponder, result.Convert())
}
