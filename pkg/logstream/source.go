package logstream

import (
	"bytes"
	"errors"
	"io"
	"time"
)

// Source backed by any io.Reader (stdin, files, pipes)
type ReaderSource struct {
	reader io.Reader
	now    func() time.Time
}

func NewReaderSource(reader io.Reader) (new *ReaderSource) {
	new = &ReaderSource{
		reader: reader,
		now:    time.Now,
	}
	return
}

// Empty reads tolerated before the reader is considered stuck
const maxConsecutiveEmptyReads = 100

// Reads from the underlying reader until it returns data, an error or io.EOF.
// io.EOF without data is reported as end of stream (0, nil).
func (source *ReaderSource) Read(buf []byte) (n int, captured time.Time, err error) {
	if len(buf) == 0 {
		err = &SourceReadError{Err: io.ErrShortBuffer}
		return
	}

	for empty := 0; ; empty++ {
		if empty == maxConsecutiveEmptyReads {
			err = &SourceReadError{Err: io.ErrNoProgress}
			return
		}
		n, err = source.reader.Read(buf)
		if n > 0 || err != nil {
			break
		}
	}
	captured = source.now()

	if errors.Is(err, io.EOF) {
		// Data returned alongside EOF is still delivered, the next call reports the end
		err = nil
		return
	}
	if err != nil {
		err = &SourceReadError{Err: err}
		return
	}
	return
}

// Removes one trailing line terminator ("\n" or "\r\n") for backends that store messages without it
func TrimNewline(payload []byte) (trimmed []byte) {
	trimmed = bytes.TrimSuffix(payload, []byte("\n"))
	if len(trimmed) != len(payload) {
		trimmed = bytes.TrimSuffix(trimmed, []byte("\r"))
	}
	return
}
