package journald

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
)

// Limit on how much of an error response body is quoted
const maxErrorBody = 4096

// Writes journald export format byte payload to the journald-remote HTTP endpoint
func sendJournalExport(ctx context.Context, client *http.Client, url string, payload []byte) (err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		err = fmt.Errorf("failed request creation: %w", err)
		return
	}

	req.Header.Set("Content-Type", "application/vnd.fdo.journal") // journald export format
	req.Header.Del("Expect")                                      // Unsupported by journal remote server (will cause errors if set)

	resp, err := client.Do(req)
	if err != nil {
		err = fmt.Errorf("failed HTTP request: %w", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		err = fmt.Errorf("received HTTP status '%s'", resp.Status)

		// Include response body if present for additional error details
		body, lerr := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		if lerr != nil {
			err = fmt.Errorf("%w: response body read failed: %v", err, lerr)
		} else if len(body) > 0 {
			err = fmt.Errorf("%w: %s", err, bytes.TrimSpace(body))
		}
		return
	}

	// Drain so the connection can be reused
	io.Copy(io.Discard, resp.Body)
	return
}
