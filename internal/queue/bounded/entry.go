// Decouples a slow or failing destination from the ingest path with a bounded, lossy mailbox
package bounded

import (
	"bytes"
	"context"
	"fmt"
	"logup/internal/atomics"
	"logup/internal/global"
	"logup/internal/logctx"
	"logup/pkg/logstream"
	"runtime/debug"
	"strings"
	"time"
)

// How long Wait lets a cancelled worker unwind before abandoning it
var abandonGrace = time.Second

// Minimum gap between warnings about a full mailbox
var fullReportInterval = 10 * time.Second

// Creates a queue of capacity records in front of inner and starts its worker.
// Each record gets up to maxRetries+1 immediate attempts.
func New(ctx context.Context, namespace []string, inner logstream.Sink, capacity int, maxRetries int) (new *Queue, err error) {
	if inner == nil {
		err = fmt.Errorf("queue requires a destination sink")
		return
	}
	if capacity < 1 {
		err = fmt.Errorf("queue capacity must be at least 1, got %d", capacity)
		return
	}
	if maxRetries < 0 {
		err = fmt.Errorf("maximum retries cannot be negative, got %d", maxRetries)
		return
	}

	new = &Queue{
		Namespace:  append(append([]string(nil), namespace...), global.NSQueue),
		inner:      inner,
		capacity:   capacity,
		maxRetries: maxRetries,
		mailbox:    make(chan logstream.Record, capacity),
		done:       make(chan struct{}),
		Metrics:    &MetricStorage{},
	}
	new.name = strings.Join(new.Namespace, "/")

	workerCtx, cancel := context.WithCancel(ctx)
	new.cancel = cancel
	workerCtx = logctx.OverwriteCtxTag(workerCtx, new.Namespace)

	go new.run(workerCtx)
	return
}

// Hands the record to the worker without blocking.
// A full mailbox drops the record (counted and logged) and still returns nil.
// Returns logstream.ErrQueueClosed once the queue was closed or its worker stopped.
func (queue *Queue) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	queue.mutex.RLock()
	defer queue.mutex.RUnlock()

	if queue.closed {
		err = logstream.ErrQueueClosed
		return
	}
	select {
	case <-queue.done:
		err = logstream.ErrQueueClosed
		return
	default:
	}

	record := logstream.Record{
		Timestamp: timestamp,
		Payload:   bytes.Clone(payload),
	}

	select {
	case queue.mailbox <- record:
		queue.Metrics.Accepted.Add(1)
		queue.Metrics.QueuedBytes.Add(uint64(len(record.Payload)))
		atomics.StoreMax(&queue.Metrics.MaxDepth, uint64(len(queue.mailbox)))
	default:
		queue.Metrics.DroppedFull.Add(1)
		queue.reportFull(ctx)
	}
	return
}

// Warns on the first drop, then at most once per fullReportInterval with the running total
func (queue *Queue) reportFull(ctx context.Context) {
	now := time.Now().UnixNano()
	last := queue.lastFullReport.Load()
	if last != 0 && now-last < int64(fullReportInterval) {
		return
	}
	if !queue.lastFullReport.CompareAndSwap(last, now) {
		return
	}

	if last == 0 {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
			"Backlog for %s is full (%d records), dropping records (repeats reported every %v)\n",
			queue.name, queue.capacity, fullReportInterval)
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
		"Backlog for %s still full, %d record(s) dropped so far\n", queue.name, queue.Metrics.DroppedFull.Load())
}

// Stops accepting records. The worker keeps delivering what is already queued. Safe to call repeatedly.
func (queue *Queue) Close() {
	queue.mutex.Lock()
	defer queue.mutex.Unlock()

	if queue.closed {
		return
	}
	queue.closed = true
	close(queue.mailbox)
}

// Blocks until the worker delivered (or gave up on) every queued record.
// Closes the queue first if that has not happened yet.
// When ctx expires first, the worker is cancelled, the remaining records are dropped
// and an error reporting how many were lost is returned.
func (queue *Queue) Wait(ctx context.Context) (err error) {
	queue.Close()

	select {
	case <-queue.done:
		// Worker may have stopped early (cancelled parent) with records left behind
		before := queue.Metrics.DroppedShutdown.Load()
		queue.discardRemaining(ctx)
		if lost := queue.Metrics.DroppedShutdown.Load() - before; lost > 0 {
			err = fmt.Errorf("delivery for %s stopped early: %d undelivered record(s) dropped", queue.name, lost)
		}
		return
	case <-ctx.Done():
	}

	logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
		"Timed out draining %s with %d record(s) queued, cancelling delivery\n", queue.name, queue.Depth())
	queue.cancel()

	select {
	case <-queue.done:
		err = fmt.Errorf("timed out draining %s: %d undelivered record(s) dropped",
			queue.name, queue.Metrics.DroppedShutdown.Load())
	case <-time.After(abandonGrace):
		err = fmt.Errorf("timed out draining %s: destination write did not return after cancellation, abandoning %d queued record(s)",
			queue.name, queue.Depth())
	}
	return
}

// Records currently waiting in the mailbox
func (queue *Queue) Depth() (depth int) {
	depth = len(queue.mailbox)
	return
}

// Mailbox size fixed at creation
func (queue *Queue) Capacity() (capacity int) {
	capacity = queue.capacity
	return
}

// Worker: sole caller of the inner sink
func (queue *Queue) run(ctx context.Context) {
	defer close(queue.done)
	defer queue.cancel()

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Started delivery worker (capacity %d, retries %d)\n", queue.capacity, queue.maxRetries)

	for {
		if ctx.Err() != nil {
			queue.discardRemaining(ctx)
			return
		}

		select {
		case <-ctx.Done():
			queue.discardRemaining(ctx)
			return
		case record, ok := <-queue.mailbox:
			if !ok {
				logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
					"Delivery worker finished\n")
				return
			}
			atomics.SubtractClamped(&queue.Metrics.QueuedBytes, uint64(len(record.Payload)))
			queue.deliver(ctx, record)
		}
	}
}

// Up to maxRetries+1 immediate attempts, then the record is dropped
func (queue *Queue) deliver(ctx context.Context, record logstream.Record) {
	var err error
	for attempt := 0; attempt <= queue.maxRetries; attempt++ {
		if ctx.Err() != nil {
			queue.Metrics.DroppedShutdown.Add(1)
			return
		}

		queue.Metrics.Attempts.Add(1)
		if attempt > 0 {
			queue.Metrics.Retries.Add(1)
		}

		err = queue.attempt(ctx, record)
		if err == nil {
			queue.Metrics.Delivered.Add(1)
			return
		}

		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Attempt %d/%d failed: %v\n", attempt+1, queue.maxRetries+1, err)
	}

	queue.Metrics.DroppedFailed.Add(1)
	logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
		"Dropping record after %d failed attempt(s): %v\n", queue.maxRetries+1, err)
}

// One inner write. Panics are recorded and reported as a failed attempt.
func (queue *Queue) attempt(ctx context.Context, record logstream.Record) (err error) {
	defer func() {
		if fatalError := recover(); fatalError != nil {
			queue.Metrics.Panics.Add(1)
			stack := debug.Stack()
			logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
				"panic in destination write: %v\n%s", fatalError, stack)
			err = &logstream.SinkWriteError{Sink: queue.name, Err: fmt.Errorf("panic: %v", fatalError)}
		}
	}()

	err = queue.inner.Write(ctx, record.Timestamp, record.Payload)
	if err != nil {
		err = &logstream.SinkWriteError{Sink: queue.name, Err: err}
	}
	return
}

// Counts every record still in the mailbox as lost. Only used after cancellation.
func (queue *Queue) discardRemaining(ctx context.Context) {
	var discarded uint64
	for {
		select {
		case record, ok := <-queue.mailbox:
			if !ok {
				queue.reportDiscarded(ctx, discarded)
				return
			}
			atomics.SubtractClamped(&queue.Metrics.QueuedBytes, uint64(len(record.Payload)))
			queue.Metrics.DroppedShutdown.Add(1)
			discarded++
		default:
			// Not closed yet (parent context cancelled), later writes see the stopped worker
			queue.reportDiscarded(ctx, discarded)
			return
		}
	}
}

func (queue *Queue) reportDiscarded(ctx context.Context, discarded uint64) {
	if discarded == 0 {
		return
	}
	logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
		"Delivery cancelled, discarded %d queued record(s)\n", discarded)
}
