package server

import (
	"context"
	"logup/internal/metrics"
)

type httpLogWriter struct {
	ctx context.Context
}

type Jerror struct {
	Msg string `json:"error"`
}

// JSON form of one metric value
type JMetric struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Namespace   string  `json:"namespace"`
	Unit        string  `json:"unit"`
	Type        string  `json:"type"`
	Value       float64 `json:"value"`
}

// Returns the current value of every registered metric
type Snapshotter func() []metrics.Metric
