package assembler

import (
	"context"
	"time"
)

type recordedWrite struct {
	timestamp time.Time
	payload   string
}

// Records a copy of every payload, optionally failing on a given call (1-based)
type recordingSink struct {
	writes []recordedWrite
	failOn int
	err    error
}

func (sink *recordingSink) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if sink.failOn > 0 && len(sink.writes)+1 == sink.failOn {
		sink.failOn = 0
		err = sink.err
		return
	}
	sink.writes = append(sink.writes, recordedWrite{timestamp: timestamp, payload: string(payload)})
	return
}

func (sink *recordingSink) payloads() (out []string) {
	for _, write := range sink.writes {
		out = append(out, write.payload)
	}
	return
}
