package forwarder

import (
	"logup/internal/global"
	"logup/internal/metrics"
)

// Read loop counters
func (daemon *Daemon) CollectMetrics() (collection []metrics.Metric) {
	namespace := []string{global.NSFwd, global.NSLoop}

	collection = append(collection,
		metrics.Metric{
			Name:        "read_chunks_total",
			Description: "Reads from the input stream that returned data",
			Namespace:   namespace,
			Unit:        "count",
			Type:        metrics.Counter,
			Value:       float64(daemon.Metrics.Chunks.Load()),
		},
		metrics.Metric{
			Name:        "read_bytes_total",
			Description: "Bytes read from the input stream",
			Namespace:   namespace,
			Unit:        "bytes",
			Type:        metrics.Counter,
			Value:       float64(daemon.Metrics.Bytes.Load()),
		},
	)
	return
}
