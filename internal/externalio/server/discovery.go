package server

import (
	"context"
	"loracom/internal/global"
	"loracom/internal/metrics"
	"net/http"
	"strings"
)

// Handles metric search to discover metrics (returns no actual data, only sample metric per individual metric)
func handleDiscovery(baseCtx context.Context, discover Discoverer, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	query := metrics.Query{
		Name:        clientRequest.FormValue("name"),
		Description: clientRequest.FormValue("description"),
		Namespace:   splitNamespace(clientRequest.URL.Path, global.DiscoveryPath),
		Unit:        clientRequest.FormValue("unit"),
	}

	rawType := clientRequest.FormValue("type")
	switch metrics.MetricType(strings.ToLower(rawType)) {
	case metrics.Counter:
		query.Type = metrics.Counter
	case metrics.Gauge:
		query.Type = metrics.Gauge
	case metrics.Summary:
		query.Type = metrics.Summary
	default:
		// Empty is valid
		if rawType != "" {
			serverResponder.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	// Query internal metric registry
	rawResults := discover(query)

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

// Namespace components after the route prefix, nil when none were given
func splitNamespace(path, prefix string) (namespace []string) {
	rawNamespace := strings.Trim(strings.TrimPrefix(path, prefix), "/")
	if rawNamespace == "" {
		return
	}
	namespace = strings.Split(rawNamespace, "/")
	return
}
