package journald

import (
	"context"
	"fmt"
	"logup/internal/global"
	"logup/pkg/logstream"
	"strconv"
	"time"
)

// Uploads one record as a journal entry to journald-remote
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	pid := strconv.Itoa(global.PID)
	fields := []field{
		{key: "__REALTIME_TIMESTAMP", val: strconv.FormatInt(timestamp.UnixMicro(), 10)}, // Required field
		{key: "_BOOT_ID", val: global.BootID()},                                          // Required field
		{key: "PRIORITY", val: "6"},                                                      // info
		{key: "SYSLOG_IDENTIFIER", val: mod.identifier},
		{key: "MESSAGE", val: string(logstream.TrimNewline(payload))}, // Required field
		{key: "SYSLOG_PID", val: pid},
		{key: "HOSTNAME", val: global.Hostname},
		{key: "SYSLOG_HOSTNAME", val: global.Hostname},
		{key: "SYSLOG_TIMESTAMP", val: timestamp.Format(time.RFC3339Nano)},
	}

	err = sendJournalExport(ctx, mod.sink, mod.url, encodeEntry(fields))
	if err != nil {
		err = fmt.Errorf("journald upload of %d byte record: %w", len(payload), err)
		return
	}
	return
}
