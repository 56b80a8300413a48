package beats

import (
	"context"
	"fmt"
	"logup/internal/global"
	"logup/pkg/logstream"
	"time"
)

// Sends one record as a filebeat style event to the configured beats server
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	fields := map[string]interface{}{
		// Minimum required fields
		"@timestamp": timestamp,
		"message":    string(logstream.TrimNewline(payload)),

		// Common fields
		"host": map[string]interface{}{
			"name":     global.Hostname,
			"hostname": global.Hostname,
		},
		"agent": agentFields,
		"process": map[string]interface{}{
			"pid": global.PID,
		},
		"log": map[string]interface{}{
			"original_size": len(payload),
		},
	}
	events := []interface{}{fields}

	sent, err := mod.sink.Send(events)
	if err != nil {
		err = fmt.Errorf("failed sending event to beats server: %w", err)
		return
	}
	if sent != len(events) {
		err = fmt.Errorf("beats server acknowledged %d of %d events", sent, len(events))
		return
	}
	return
}
