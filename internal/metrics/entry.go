// Registry of pipeline component counters, exported in Prometheus exposition format
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metric name prefix for everything this program exports
const promNamespace = "logup"

// Creates a new registry including Go runtime and process metrics
func NewRegistry() (new *Registry) {
	new = &Registry{
		prom: prometheus.NewRegistry(),
	}
	new.prom.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		&sourceCollector{registry: new},
	)
	return
}

// Adds a component to be polled on every scrape
func (registry *Registry) Add(source Source) {
	if registry == nil || source == nil {
		return
	}
	registry.mu.Lock()
	defer registry.mu.Unlock()
	registry.sources = append(registry.sources, source)
}

// Current values of every registered component
func (registry *Registry) Snapshot() (collection []Metric) {
	registry.mu.RLock()
	sources := append([]Source(nil), registry.sources...)
	registry.mu.RUnlock()

	for _, source := range sources {
		collection = append(collection, source.CollectMetrics()...)
	}
	return
}

// Gatherer for the HTTP exposition handler
func (registry *Registry) Gatherer() (gatherer prometheus.Gatherer) {
	gatherer = registry.prom
	return
}
