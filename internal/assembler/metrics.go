package assembler

import "logup/internal/metrics"

func (instance *Instance) CollectMetrics() (collection []metrics.Metric) {
	add := func(name string, raw uint64, unit string, t metrics.MetricType, description string) {
		collection = append(collection, metrics.Metric{
			Name:        name,
			Description: description,
			Namespace:   instance.Namespace,
			Unit:        unit,
			Type:        t,
			Value:       float64(raw),
		})
	}

	add("assembler_input_bytes_total", instance.Metrics.BytesIn.Load(), "bytes", metrics.Counter, "Raw bytes received from the input stream")
	add("assembler_records_total", instance.Metrics.Records.Load(), "count", metrics.Counter, "Records forwarded downstream")
	add("assembler_forced_flushes_total", instance.Metrics.ForcedFlushes.Load(), "count", metrics.Counter, "Records cut at the maximum record size before a line terminator")
	add("assembler_failed_emissions_total", instance.Metrics.FailedEmission.Load(), "count", metrics.Counter, "Records the downstream sink rejected")
	add("assembler_pending_bytes", instance.Metrics.PendingBytes.Load(), "bytes", metrics.Gauge, "Bytes waiting for a line terminator")
	return
}
