package bounded

import (
	"context"
	"logup/pkg/logstream"
	"sync"
	"sync/atomic"
)

// Fixed capacity mailbox in front of one sink, drained by a single worker goroutine
type Queue struct {
	Namespace  []string
	name       string // namespace joined for messages
	inner      logstream.Sink
	capacity   int
	maxRetries int

	mailbox chan logstream.Record
	mutex   sync.RWMutex // guards closed against concurrent sends
	closed  bool

	cancel context.CancelFunc // stops the worker, interrupting an in-flight write
	done   chan struct{}      // closed when the worker exits

	lastFullReport atomic.Int64 // unix nanoseconds of the last full-mailbox warning, 0 before the first

	Metrics *MetricStorage
}

type MetricStorage struct {
	Accepted        atomic.Uint64 // records placed in the mailbox
	DroppedFull     atomic.Uint64 // records refused because the mailbox was full
	Attempts        atomic.Uint64 // inner sink write calls
	Retries         atomic.Uint64 // attempts after the first for a record
	Delivered       atomic.Uint64 // records the inner sink accepted
	DroppedFailed   atomic.Uint64 // records abandoned after every attempt failed
	DroppedShutdown atomic.Uint64 // records abandoned when the worker was cancelled
	Panics          atomic.Uint64 // attempts that panicked inside the inner sink
	QueuedBytes     atomic.Uint64 // payload bytes currently waiting in the mailbox
	MaxDepth        atomic.Uint64 // highest mailbox occupancy seen
}
