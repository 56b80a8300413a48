package fanout

import (
	"logup/pkg/logstream"
	"sync/atomic"
)

// Destination registered with the fan-out, in delivery order
type Target struct {
	Name string
	Sink logstream.Sink
}

type Instance struct {
	Namespace []string
	targets   []Target
	Metrics   *MetricStorage
}

type MetricStorage struct {
	Writes   atomic.Uint64 // records received
	Failures atomic.Uint64 // records that stopped at a failing target
}
