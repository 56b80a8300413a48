package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

type MetricType string

const (
	Counter MetricType = "counter" // always increasing
	Gauge   MetricType = "gauge"   // can go up/down
)

// Container for a metric and associated data
type Metric struct {
	Name        string // e.g. records_emitted_total, queue_depth
	Description string
	Namespace   []string // e.g. "Forwarder/Output/CloudWatch/Queue"
	Unit        string   // e.g. "bytes", "count"
	Type        MetricType
	Value       float64
}

// Anything that reports its current counters on demand
type Source interface {
	CollectMetrics() (collection []Metric)
}

type Registry struct {
	mu      sync.RWMutex
	sources []Source
	prom    *prometheus.Registry
}

// Prometheus bridge over the registered sources
type sourceCollector struct {
	registry *Registry
}
