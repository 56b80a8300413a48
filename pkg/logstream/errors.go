package logstream

import (
	"errors"
	"fmt"
)

// Enqueue attempted after the queue stopped accepting records
var ErrQueueClosed = errors.New("downstream writer is closed")

// Failure reading the input stream
type SourceReadError struct {
	Err error
}

func (err *SourceReadError) Error() string {
	return fmt.Sprintf("failed reading input stream: %v", err.Err)
}

func (err *SourceReadError) Unwrap() error {
	return err.Err
}

// Failure of one sink write attempt
type SinkWriteError struct {
	Sink string
	Err  error
}

func (err *SinkWriteError) Error() string {
	return fmt.Sprintf("write to %s failed: %v", err.Sink, err.Err)
}

func (err *SinkWriteError) Unwrap() error {
	return err.Err
}
