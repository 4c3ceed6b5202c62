package server

import (
	"context"
	"loracom/internal/global"
	"loracom/internal/metrics"
	"net/http"
	"time"
)

// Handles metric search requests based on time for data
func handleData(baseCtx context.Context, search DataSearcher, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	reqStartTime, reqEndTime, err := parseTimeRange(clientRequest, time.Now())
	if err != nil {
		serverResponder.WriteHeader(http.StatusBadRequest)
		return
	}

	query := metrics.Query{
		Name:      clientRequest.FormValue("name"),
		Namespace: splitNamespace(clientRequest.URL.Path, global.DataPath),
		Start:     reqStartTime,
		End:       reqEndTime,
	}

	// Query internal metric registry
	rawResults := search(query)

	var results []metrics.JMetric
	for _, rawResult := range rawResults {
		results = append(results, rawResult.Convert())
	}

	if len(results) == 0 {
		jResp(baseCtx, serverResponder, Jerror{Msg: "Search returned no results"})
	} else {
		jResp(baseCtx, serverResponder, results)
	}
}
