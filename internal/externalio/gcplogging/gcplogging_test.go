package gcplogging

import (
	"context"
	"errors"
	"testing"
	"time"

	cl "cloud.google.com/go/logging"
)

type mockLogger struct {
	entries []cl.Entry
	err     error
}

func (m *mockLogger) LogSync(ctx context.Context, entry cl.Entry) error {
	if m.err != nil {
		return m.err
	}
	m.entries = append(m.entries, entry)
	return nil
}

type mockCloser struct{ closed bool }

func (m *mockCloser) Close() error {
	m.closed = true
	return nil
}

func TestWrite(t *testing.T) {
	logger := &mockLogger{}
	closer := &mockCloser{}
	mod := &OutModule{sink: logger, client: closer}

	ts := time.Date(2026, 9, 9, 9, 9, 9, 0, time.UTC)
	if err := mod.Write(context.Background(), ts, []byte("cache warmed\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(logger.entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(logger.entries))
	}
	entry := logger.entries[0]
	if entry.Payload != "cache warmed" {
		t.Errorf("expected trimmed text payload, got %#v", entry.Payload)
	}
	if !entry.Timestamp.Equal(ts) {
		t.Errorf("expected timestamp %v, got %v", ts, entry.Timestamp)
	}

	if err := mod.Shutdown(); err != nil || !closer.closed {
		t.Errorf("expected client closed on shutdown (err %v)", err)
	}
}

func TestWrite_Error(t *testing.T) {
	cause := errors.New("quota exceeded")
	mod := &OutModule{sink: &mockLogger{err: cause}}
	if err := mod.Write(context.Background(), time.Now(), []byte("x")); !errors.Is(err, cause) {
		t.Errorf("expected logger error in chain, got %v", err)
	}
}

func TestNewOutput_Disabled(t *testing.T) {
	mod, err := NewOutput(context.Background(), nil, "", "")
	if mod != nil || err != nil {
		t.Errorf("expected nil module without project, got %v, %v", mod, err)
	}
}
