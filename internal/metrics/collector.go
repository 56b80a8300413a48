package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// Unchecked collector: the set of components is only known at scrape time
func (collector *sourceCollector) Describe(ch chan<- *prometheus.Desc) {}

func (collector *sourceCollector) Collect(ch chan<- prometheus.Metric) {
	for _, metric := range collector.registry.Snapshot() {
		valueType := prometheus.GaugeValue
		if metric.Type == Counter {
			valueType = prometheus.CounterValue
		}

		help := metric.Description
		if metric.Unit != "" {
			help += " (" + metric.Unit + ")"
		}

		desc := prometheus.NewDesc(
			prometheus.BuildFQName(promNamespace, "", metric.Name),
			help,
			[]string{"component"},
			nil,
		)
		ch <- prometheus.MustNewConstMetric(desc, valueType, metric.Value, strings.Join(metric.Namespace, "/"))
	}
}
