package newrelic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"logup/internal/global"
	"logup/pkg/logstream"
	"net/http"
	"strings"
	"time"
)

// Limit on how much of an error response body is quoted
const maxErrorBody = 4096

// Log API request body for a single entry
type logEntry struct {
	Timestamp  int64             `json:"timestamp"` // milliseconds since epoch
	Message    string            `json:"message"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// Posts one record to the Log API
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	body, err := json.Marshal(logEntry{
		Timestamp: timestamp.UnixMilli(),
		Message:   strings.ToValidUTF8(string(logstream.TrimNewline(payload)), "�"),
		Attributes: map[string]string{
			"hostname": global.Hostname,
			"plugin":   global.ProgBaseName + "/" + global.ProgVersion,
		},
	})
	if err != nil {
		err = fmt.Errorf("failed encoding log entry: %w", err)
		return
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, mod.endpoint, bytes.NewReader(body))
	if err != nil {
		err = fmt.Errorf("failed request creation: %w", err)
		return
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", mod.apiKey)

	resp, err := mod.sink.Do(req)
	if err != nil {
		err = fmt.Errorf("failed HTTP request to New Relic: %w", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		err = fmt.Errorf("New Relic rejected log entry with HTTP status '%s': %s", resp.Status, bytes.TrimSpace(detail))
		return
	}

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)
	return
}
