package server

import (
	"context"
	"logup/internal/global"
	"logup/internal/metrics"
	"net/http"
	"slices"
	"strings"
)

// Lists current metric values, filtered by namespace prefix (request path) and query parameters
func handleDiscovery(baseCtx context.Context, snapshot Snapshotter, serverResponder http.ResponseWriter, clientRequest *http.Request) {
	rawNamespace := strings.Trim(strings.TrimPrefix(clientRequest.URL.Path, global.DiscoveryPath), "/")

	var reqNamespace []string
	if rawNamespace != "" {
		reqNamespace = strings.Split(rawNamespace, "/")
	}

	reqName := clientRequest.FormValue("name")
	reqUnit := clientRequest.FormValue("unit")
	rawType := clientRequest.FormValue("type")

	var reqType metrics.MetricType
	switch metrics.MetricType(strings.ToLower(rawType)) {
	case metrics.Counter:
		reqType = metrics.Counter
	case metrics.Gauge:
		reqType = metrics.Gauge
	default:
		// Empty is valid
		if rawType != "" {
			serverResponder.WriteHeader(http.StatusBadRequest)
			return
		}
	}

	var results []JMetric
	for _, metric := range snapshot() {
		if reqName != "" && !strings.Contains(metric.Name, reqName) {
			continue
		}
		if reqUnit != "" && metric.Unit != reqUnit {
			continue
		}
		if reqType != "" && metric.Type != reqType {
			continue
		}
		if len(reqNamespace) > 0 &&
			(len(metric.Namespace) < len(reqNamespace) || !slices.Equal(metric.Namespace[:len(reqNamespace)], reqNamespace)) {
			continue
		}

		results = append(results, JMetric{
			Name:        metric.Name,
			Description: metric.Description,
			Namespace:   strings.Join(metric.Namespace, "/"),
			Unit:        metric.Unit,
			Type:        string(metric.Type),
			Value:       metric.Value,
		})
	}

	if len(results) == 0 {
		jResp(baseCtx, serverResponder, Jerror{Msg: "Search returned no results"})
	} else {
		jResp(baseCtx, serverResponder, results)
	}
}
