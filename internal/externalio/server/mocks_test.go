package server

import (
	"logup/internal/metrics"
)

func mockSnapshot(results []metrics.Metric) Snapshotter {
	return func() []metrics.Metric {
		return results
	}
}

var sampleMetrics = []metrics.Metric{
	{
		Name:      "queue_dropped_full_total",
		Namespace: []string{"Forwarder", "Output", "CloudWatch", "Queue"},
		Unit:      "count",
		Type:      metrics.Counter,
		Value:     7,
	},
	{
		Name:      "queue_depth",
		Namespace: []string{"Forwarder", "Output", "CloudWatch", "Queue"},
		Unit:      "count",
		Type:      metrics.Gauge,
		Value:     3,
	},
	{
		Name:      "assembler_input_bytes_total",
		Namespace: []string{"Forwarder", "Assembler"},
		Unit:      "bytes",
		Type:      metrics.Counter,
		Value:     2048,
	},
}
