package forwarder

import (
	"context"
	"sync"
	"time"
)

type readResult struct {
	data []byte
	err  error
}

// Source replaying a fixed list of reads, then end of stream
type scriptedSource struct {
	reads []readResult
	calls int
	clock time.Time
}

func (source *scriptedSource) Read(buf []byte) (n int, captured time.Time, err error) {
	source.calls++
	source.clock = source.clock.Add(time.Second)
	captured = source.clock

	if len(source.reads) == 0 {
		return
	}
	next := source.reads[0]
	source.reads = source.reads[1:]

	n = copy(buf, next.data)
	err = next.err
	return
}

type recordedWrite struct {
	timestamp time.Time
	payload   string
}

// Destination recording every write. Fails every call when err is set.
type recordingModule struct {
	mutex     sync.Mutex
	err       error
	block     bool // wait for ctx cancellation on every write
	writes    []recordedWrite
	calls     int
	shutdowns int
}

func (mod *recordingModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod.block {
		<-ctx.Done()
		err = ctx.Err()
		return
	}

	mod.mutex.Lock()
	defer mod.mutex.Unlock()

	mod.calls++
	if mod.err != nil {
		err = mod.err
		return
	}
	mod.writes = append(mod.writes, recordedWrite{timestamp: timestamp, payload: string(payload)})
	return
}

func (mod *recordingModule) Shutdown() (err error) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()
	mod.shutdowns++
	return
}

func (mod *recordingModule) payloads() (payloads []string) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()
	for _, write := range mod.writes {
		payloads = append(payloads, write.payload)
	}
	return
}

func (mod *recordingModule) stats() (calls int, shutdowns int) {
	mod.mutex.Lock()
	defer mod.mutex.Unlock()
	calls = mod.calls
	shutdowns = mod.shutdowns
	return
}
