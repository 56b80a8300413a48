package logctx

import (
	"fmt"
	"io"
	"logup/internal/global"
	"strings"
	"time"
)

const (
	dedupWindow      = 5 * time.Second // Duplicates older than this are printed again
	dedupMinRepeats  = 10              // Repeats collected before a suppression notice
	suppressCooldown = 1 * time.Minute // Minimum gap between suppression notices
)

// Starts a go routine that reads events and writes formatted output to io.Writer.
// Stops when logger.Done is closed and every queued event was written.
func StartWatcher(logger *Logger, output io.Writer) {
	logger.wg.Add(1)

	go func() {
		defer logger.wg.Done()

		var dedup dedupState
		for {
			event, ok := logger.next()
			if !ok {
				return
			}

			skip, notice := dedup.check(event, time.Now())
			if notice != "" {
				fmt.Fprint(output, notice)
			}
			if skip {
				continue
			}

			// Message creator determines newlines
			fmt.Fprint(output, event.Format())
		}
	}()
}

// Blocks until an event is queued. Returns false once Done is closed and the queue is empty.
func (logger *Logger) next() (event Event, ok bool) {
	logger.mutex.Lock()
	defer logger.mutex.Unlock()

	for len(logger.queue) == 0 {
		select {
		case <-logger.Done:
			return
		default:
			logger.cond.Wait()
		}
	}

	event = logger.queue[0]
	logger.queue = logger.queue[1:]
	ok = true
	return
}

// Suppresses highly repetitive messages. Returns whether to skip the event and an optional suppression notice.
func (dedup *dedupState) check(event Event, now time.Time) (skip bool, notice string) {
	if event.Message == "" || event.Message != dedup.lastMsg || now.Sub(event.Timestamp) > dedupWindow {
		dedup.lastMsg = event.Message
		dedup.repeatCount = 1
		return
	}

	skip = true
	dedup.repeatCount++
	if dedup.repeatCount >= dedupMinRepeats && now.Sub(dedup.lastSuppressTime) >= suppressCooldown {
		notice = Event{
			Timestamp: event.Timestamp,
			Tags:      event.Tags,
			Severity:  global.InfoLog,
			Message:   fmt.Sprintf("Suppressed %d repeated messages: %s", dedup.repeatCount, strings.TrimSuffix(dedup.lastMsg, "\n")+"\n"),
		}.Format()
		dedup.lastSuppressTime = now
		dedup.repeatCount = 0
	}
	return
}
