package fanout

import "logup/internal/metrics"

func (instance *Instance) CollectMetrics() (collection []metrics.Metric) {
	collection = []metrics.Metric{
		{
			Name:        "fanout_writes_total",
			Description: "Records offered to the fan-out",
			Namespace:   instance.Namespace,
			Unit:        "count",
			Type:        metrics.Counter,
			Value:       float64(instance.Metrics.Writes.Load()),
		},
		{
			Name:        "fanout_failures_total",
			Description: "Records whose delivery stopped at a failing target",
			Namespace:   instance.Namespace,
			Unit:        "count",
			Type:        metrics.Counter,
			Value:       float64(instance.Metrics.Failures.Load()),
		},
		{
			Name:        "fanout_targets",
			Description: "Registered destinations",
			Namespace:   instance.Namespace,
			Unit:        "count",
			Type:        metrics.Gauge,
			Value:       float64(len(instance.targets)),
		},
	}
	return
}
