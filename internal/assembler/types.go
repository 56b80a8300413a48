package assembler

import (
	"logup/pkg/logstream"
	"sync/atomic"
)

type Instance struct {
	Namespace     []string
	inner         logstream.Sink
	maxRecordSize int
	partial       []byte // bytes received since the last emitted record, never longer than maxRecordSize
	Metrics       *MetricStorage
}

type MetricStorage struct {
	BytesIn        atomic.Uint64 // raw chunk bytes received
	Records        atomic.Uint64 // records handed to the inner sink
	ForcedFlushes  atomic.Uint64 // records cut at the size cap before a newline
	FailedEmission atomic.Uint64 // inner sink write errors
	PendingBytes   atomic.Uint64 // partial buffer length as of the last call
}
