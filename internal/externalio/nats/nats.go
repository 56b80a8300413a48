// Publishes records to a NATS subject
package nats

import (
	"context"
	"fmt"
	"logup/internal/global"
	"logup/internal/logctx"
	"logup/pkg/logstream"
	"time"

	natsgo "github.com/nats-io/nats.go"
)

// Connection calls used by the module
type publisher interface {
	PublishMsg(msg *natsgo.Msg) error
	FlushWithContext(ctx context.Context) error
	Drain() error
}

type OutModule struct {
	Namespace []string
	sink      publisher
	subject   string
}

// Creates new NATS output module. Returns nil nil if no server URL.
func NewOutput(ctx context.Context, namespace []string, serverURL string, subject string) (module *OutModule, err error) {
	if serverURL == "" {
		return
	}
	if subject == "" {
		err = fmt.Errorf("nats output requires a subject")
		return
	}

	conn, err := natsgo.Connect(serverURL,
		natsgo.Name(global.ProgBaseName+"@"+global.Hostname),
		natsgo.Timeout(global.DefaultDialTimeout),
		natsgo.MaxReconnects(-1),
		natsgo.ReconnectWait(time.Second),
		natsgo.DisconnectErrHandler(func(_ *natsgo.Conn, err error) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.WarnLog,
				"Disconnected from NATS: %v\n", err)
		}),
		natsgo.ReconnectHandler(func(conn *natsgo.Conn) {
			logctx.LogEvent(ctx, global.VerbosityStandard, global.InfoLog,
				"Reconnected to NATS at %s\n", conn.ConnectedUrl())
		}),
	)
	if err != nil {
		err = fmt.Errorf("failed connecting to NATS: %w", err)
		return
	}

	module = newOutput(namespace, conn, subject)
	return
}

func newOutput(namespace []string, conn publisher, subject string) (module *OutModule) {
	module = &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoNATS),
		sink:      conn,
		subject:   subject,
	}
	return
}

// Publishes one record and waits until the server has processed it
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	msg := natsgo.NewMsg(mod.subject)
	msg.Data = logstream.TrimNewline(payload) // copied into the connection buffer by PublishMsg
	msg.Header.Set("Logup-Timestamp", timestamp.UTC().Format(time.RFC3339Nano))
	msg.Header.Set("Logup-Host", global.Hostname)

	err = mod.sink.PublishMsg(msg)
	if err != nil {
		err = fmt.Errorf("failed publishing to %s: %w", mod.subject, err)
		return
	}

	// Round trip so a lost connection surfaces as a failed write (flush requires a deadline)
	flushCtx, cancel := context.WithTimeout(ctx, global.DefaultRequestTimeout)
	defer cancel()
	err = mod.sink.FlushWithContext(flushCtx)
	if err != nil {
		err = fmt.Errorf("failed confirming publish to %s: %w", mod.subject, err)
		return
	}
	return
}

// Gracefully stops module, draining buffered publishes
func (mod *OutModule) Shutdown() (err error) {
	if mod == nil {
		return
	}
	if mod.sink != nil {
		err = mod.sink.Drain()
	}
	return
}
