package bounded

import (
	"context"
	"sync"
	"time"
)

// Scriptable destination. Results are consumed per call (nil when exhausted).
type mockSink struct {
	mutex     sync.Mutex
	results   []error
	panicOn   map[int]bool // 1-based call numbers that panic
	calls     int
	delivered []string

	started chan struct{} // receives once per call, if set
	release chan struct{} // each call waits for a value (or ctx) if set
	honorCtx bool
}

func (sink *mockSink) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	sink.mutex.Lock()
	sink.calls++
	call := sink.calls
	sink.mutex.Unlock()

	if sink.started != nil {
		sink.started <- struct{}{}
	}
	if sink.release != nil {
		if sink.honorCtx {
			select {
			case <-sink.release:
			case <-ctx.Done():
				err = ctx.Err()
				return
			}
		} else {
			<-sink.release
		}
	}

	sink.mutex.Lock()
	defer sink.mutex.Unlock()

	if sink.panicOn[call] {
		panic("destination exploded")
	}
	if len(sink.results) > 0 {
		err = sink.results[0]
		sink.results = sink.results[1:]
	}
	if err == nil {
		sink.delivered = append(sink.delivered, string(payload))
	}
	return
}

func (sink *mockSink) snapshot() (calls int, delivered []string) {
	sink.mutex.Lock()
	defer sink.mutex.Unlock()
	calls = sink.calls
	delivered = append([]string(nil), sink.delivered...)
	return
}
