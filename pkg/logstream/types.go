// Shared contracts between the input source, the pipeline stages and the output destinations
package logstream

import (
	"context"
	"time"
)

// One reassembled unit of log data and the time its final chunk was captured
type Record struct {
	Timestamp time.Time
	Payload   []byte
}

// Accepts (timestamp, payload) pairs and reports success or failure.
// Implementations must not retain payload after Write returns.
type Sink interface {
	Write(ctx context.Context, timestamp time.Time, payload []byte) (err error)
}

// Adapter allowing plain functions to be used as a Sink
type SinkFunc func(ctx context.Context, timestamp time.Time, payload []byte) (err error)

func (fn SinkFunc) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	err = fn(ctx, timestamp, payload)
	return
}

// Yields raw byte chunks with the wall clock time sampled at the read.
// A zero byte read with a nil error signals end of stream.
type Source interface {
	Read(buf []byte) (n int, captured time.Time, err error)
}
