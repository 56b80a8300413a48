package forwarder

import (
	"context"
	"errors"
	"fmt"
	"logup/pkg/logstream"
	"time"
)

// Moves chunks from source into sink until end of stream. Returns the first source or sink error.
// Each chunk carries the time its read completed.
func ReadAndWriteLoop(ctx context.Context, source logstream.Source, sink logstream.Sink, bufferSize int) (stats LoopStats, err error) {
	if bufferSize < 1 {
		err = fmt.Errorf("read buffer size must be at least 1 byte, got %d", bufferSize)
		return
	}

	buf := make([]byte, bufferSize)
	for {
		n, captured, readErr := source.Read(buf)
		if n > 0 {
			stats.Chunks++
			stats.Bytes += uint64(n)

			err = sink.Write(ctx, captured, buf[:n])
			if err != nil {
				err = fmt.Errorf("failed writing chunk: %w", err)
				return
			}
		}

		if readErr != nil {
			var sourceErr *logstream.SourceReadError
			if !errors.As(readErr, &sourceErr) {
				readErr = &logstream.SourceReadError{Err: readErr}
			}
			err = readErr
			return
		}
		if n == 0 {
			// End of stream
			return
		}
	}
}

// Records loop progress in daemon metrics
type countingSource struct {
	inner   logstream.Source
	metrics *MetricStorage
}

func (source countingSource) Read(buf []byte) (n int, captured time.Time, err error) {
	n, captured, err = source.inner.Read(buf)
	if n > 0 {
		source.metrics.Chunks.Add(1)
		source.metrics.Bytes.Add(uint64(n))
	}
	return
}
