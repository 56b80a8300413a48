// Replicates each record to an ordered list of sinks
package fanout

import (
	"context"
	"fmt"
	"logup/internal/global"
	"logup/internal/logctx"
	"time"
)

// Creates fan-out over targets. Delivery follows the given order.
func New(namespace []string, targets ...Target) (new *Instance, err error) {
	for index, target := range targets {
		if target.Sink == nil {
			err = fmt.Errorf("fan-out target %d (%s) has no sink", index, target.Name)
			return
		}
	}

	new = &Instance{
		Namespace: append(append([]string(nil), namespace...), global.NSFanout),
		targets:   append([]Target(nil), targets...),
		Metrics:   &MetricStorage{},
	}
	return
}

// Delivers the record to every target in registration order.
// The first failure is returned and the remaining targets are not called.
func (instance *Instance) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	instance.Metrics.Writes.Add(1)

	for index, target := range instance.targets {
		err = target.Sink.Write(ctx, timestamp, payload)
		if err != nil {
			instance.Metrics.Failures.Add(1)
			logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
				"Delivery stopped at target %d (%s), %d later target(s) skipped: %v\n",
				index, target.Name, len(instance.targets)-index-1, err)
			err = fmt.Errorf("fan-out target %d (%s): %w", index, target.Name, err)
			return
		}
	}
	return
}

// Number of registered targets
func (instance *Instance) Len() (count int) {
	count = len(instance.targets)
	return
}
