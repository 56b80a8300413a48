package file

import (
	"context"
	"fmt"
	"logup/pkg/logstream"
	"time"
)

// Appends the record as one "<RFC3339Nano timestamp> <message>" line, flushed before returning
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	mod.buffer.WriteString(timestamp.UTC().Format(time.RFC3339Nano))
	mod.buffer.WriteByte(' ')
	mod.buffer.Write(logstream.TrimNewline(payload))
	mod.buffer.WriteByte('\n')

	err = mod.buffer.Flush()
	if err != nil {
		// Discard the unwritten line so a retry starts clean
		mod.buffer.Reset(mod.sink)
		err = fmt.Errorf("failed to append record to file: %w", err)
		return
	}
	return
}
