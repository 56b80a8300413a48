// Reassembles an arbitrarily chunked byte stream into newline delimited records of bounded size
package assembler

import (
	"bytes"
	"context"
	"fmt"
	"logup/internal/global"
	"logup/internal/logctx"
	"logup/pkg/logstream"
	"time"
)

// Creates new line assembler forwarding complete records to inner
func New(namespace []string, inner logstream.Sink, maxRecordSize int) (new *Instance, err error) {
	if inner == nil {
		err = fmt.Errorf("line assembler requires a downstream sink")
		return
	}
	if maxRecordSize < 1 {
		err = fmt.Errorf("maximum record size must be at least 1 byte, got %d", maxRecordSize)
		return
	}

	new = &Instance{
		Namespace:     append(append([]string(nil), namespace...), global.NSAssm),
		inner:         inner,
		maxRecordSize: maxRecordSize,
		partial:       make([]byte, 0, min(maxRecordSize, 4096)),
		Metrics:       &MetricStorage{},
	}
	return
}

// Splits chunk on newlines, emitting every completed (or size capped) record to the inner sink.
// Trailing bytes without a newline are kept for the next call.
// Inner sink errors are returned immediately, bytes consumed before the failure are not restored.
func (instance *Instance) Write(ctx context.Context, timestamp time.Time, chunk []byte) (err error) {
	instance.Metrics.BytesIn.Add(uint64(len(chunk)))
	defer func() { instance.Metrics.PendingBytes.Store(uint64(len(instance.partial))) }()

	for len(chunk) > 0 {
		newline := bytes.IndexByte(chunk, '\n')
		if newline >= 0 {
			// Candidate line is partial + chunk[:newline+1], cut at the size cap
			take := min(len(instance.partial)+newline+1, instance.maxRecordSize) - len(instance.partial)
			line := chunk[:take]
			chunk = chunk[take:]

			record := line
			if len(instance.partial) > 0 {
				record = append(instance.partial, line...)
				instance.partial = instance.partial[:0] // cleared before the emission can fail
			}

			err = instance.emit(ctx, timestamp, record)
			if err != nil {
				return
			}
			continue
		}

		// No newline: buffer what fits
		take := min(len(instance.partial)+len(chunk), instance.maxRecordSize) - len(instance.partial)
		instance.partial = append(instance.partial, chunk[:take]...)
		chunk = chunk[take:]

		if len(chunk) > 0 {
			// Remainder does not fit, the buffer is full
			record := instance.partial
			instance.partial = instance.partial[:0]

			err = instance.emit(ctx, timestamp, record)
			if err != nil {
				return
			}
		}
	}
	return
}

// Emits any pending partial record regardless of newline or size. No-op when nothing is pending.
func (instance *Instance) Flush(ctx context.Context, timestamp time.Time) (err error) {
	if len(instance.partial) == 0 {
		return
	}
	record := instance.partial
	instance.partial = instance.partial[:0]
	instance.Metrics.PendingBytes.Store(0)

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Flushing %d pending bytes without line terminator\n", len(record))
	err = instance.emit(ctx, timestamp, record)
	return
}

// Number of bytes waiting for a line terminator
func (instance *Instance) Pending() (size int) {
	size = len(instance.partial)
	return
}

func (instance *Instance) emit(ctx context.Context, timestamp time.Time, record []byte) (err error) {
	if record[len(record)-1] != '\n' {
		instance.Metrics.ForcedFlushes.Add(1)
	}

	logctx.LogEvent(ctx, global.VerbosityFullData, global.InfoLog,
		"Emitting record (%d bytes): %q\n", len(record), record)

	err = instance.inner.Write(ctx, timestamp, record)
	if err != nil {
		instance.Metrics.FailedEmission.Add(1)
		err = fmt.Errorf("failed to forward reassembled record: %w", err)
		return
	}
	instance.Metrics.Records.Add(1)
	return
}
