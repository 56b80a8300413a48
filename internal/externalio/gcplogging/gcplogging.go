// Writes records to Google Cloud Logging
package gcplogging

import (
	"context"
	"fmt"
	"io"
	"logup/internal/global"
	"logup/internal/logctx"
	"logup/pkg/logstream"
	"strings"
	"time"

	cl "cloud.google.com/go/logging"
)

// Synchronous writer for one Cloud Logging log
type entryLogger interface {
	LogSync(ctx context.Context, entry cl.Entry) error
}

type OutModule struct {
	Namespace []string
	sink      entryLogger
	client    io.Closer
}

// Creates new Cloud Logging output module using application default credentials.
// Returns nil nil if no project.
func NewOutput(ctx context.Context, namespace []string, projectID string, logID string) (module *OutModule, err error) {
	if projectID == "" {
		return
	}
	if logID == "" {
		logID = global.ProgBaseName
	}

	client, err := cl.NewClient(ctx, projectID)
	if err != nil {
		err = fmt.Errorf("failed creating Cloud Logging client: %w", err)
		return
	}
	// Background errors only occur for asynchronous writes, none are issued
	client.OnError = func(err error) {
		logctx.LogEvent(ctx, global.VerbosityStandard, global.ErrorLog,
			"Cloud Logging client error: %v\n", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, global.DefaultRequestTimeout)
	defer cancel()
	err = client.Ping(pingCtx)
	if err != nil {
		client.Close()
		err = fmt.Errorf("failed reaching Cloud Logging for project %s: %w", projectID, err)
		return
	}

	logger := client.Logger(logID, cl.CommonLabels(map[string]string{
		"hostname": global.Hostname,
	}))

	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoGCP),
		sink:      logger,
		client:    client,
	}
	return
}

// Writes one record as a text entry and waits for the API to accept it
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	err = mod.sink.LogSync(ctx, cl.Entry{
		Timestamp: timestamp,
		Severity:  cl.Default,
		Payload:   strings.ToValidUTF8(string(logstream.TrimNewline(payload)), "�"),
	})
	if err != nil {
		err = fmt.Errorf("failed writing Cloud Logging entry: %w", err)
		return
	}
	return
}

// Gracefully stops module
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.client != nil {
		err = mod.client.Close()
	}
	return
}
