// Helper functions for atomic counters shared between a producer and a consumer
package atomics

import (
	"sync/atomic"
)

// Subtracts value from source, stopping at zero instead of wrapping around
func SubtractClamped(source *atomic.Uint64, value uint64) (newValue uint64) {
	for {
		current := source.Load()
		if value >= current {
			newValue = 0
		} else {
			newValue = current - value
		}

		// CAS will only succeed if the value has not changed since we last read it
		if source.CompareAndSwap(current, newValue) {
			return
		}
	}
}

// Raises source to value if value is larger (high watermark)
func StoreMax(source *atomic.Uint64, value uint64) (raised bool) {
	for {
		current := source.Load()
		if value <= current {
			return
		}
		if source.CompareAndSwap(current, value) {
			raised = true
			return
		}
	}
}
