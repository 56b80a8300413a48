package bounded

import "logup/internal/metrics"

func (queue *Queue) CollectMetrics() (collection []metrics.Metric) {
	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   queue.Namespace,
			Unit:        unit,
			Type:        t,
			Value:       float64(raw),
		})
	}

	add("queue_accepted_total", queue.Metrics.Accepted.Load(), "count", metrics.Counter, "Records accepted into the backlog")
	add("queue_dropped_full_total", queue.Metrics.DroppedFull.Load(), "count", metrics.Counter, "Records dropped because the backlog was full")
	add("queue_attempts_total", queue.Metrics.Attempts.Load(), "count", metrics.Counter, "Destination write attempts")
	add("queue_retries_total", queue.Metrics.Retries.Load(), "count", metrics.Counter, "Destination write attempts after a failure")
	add("queue_delivered_total", queue.Metrics.Delivered.Load(), "count", metrics.Counter, "Records the destination accepted")
	add("queue_dropped_failed_total", queue.Metrics.DroppedFailed.Load(), "count", metrics.Counter, "Records dropped after exhausting retries")
	add("queue_dropped_shutdown_total", queue.Metrics.DroppedShutdown.Load(), "count", metrics.Counter, "Records dropped when delivery was cancelled")
	add("queue_panics_total", queue.Metrics.Panics.Load(), "count", metrics.Counter, "Destination writes that panicked")
	add("queue_depth", uint64(queue.Depth()), "count", metrics.Gauge, "Records currently waiting")
	add("queue_max_depth", queue.Metrics.MaxDepth.Load(), "count", metrics.Gauge, "Highest backlog occupancy seen")
	add("queue_capacity", uint64(queue.capacity), "count", metrics.Gauge, "Backlog size limit")
	add("queue_bytes", queue.Metrics.QueuedBytes.Load(), "bytes", metrics.Gauge, "Payload bytes currently waiting")
	return
}
