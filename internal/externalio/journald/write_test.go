package journald

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"logup/internal/global"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEncodeEntry(t *testing.T) {
	tests := []struct {
		name   string
		fields []field
		want   map[string]string
	}{
		{
			name:   "text fields",
			fields: []field{{"MESSAGE", "hello"}, {"PRIORITY", "6"}},
			want:   map[string]string{"MESSAGE": "hello", "PRIORITY": "6"},
		},
		{
			name:   "multiline value uses binary form",
			fields: []field{{"MESSAGE", "first\nsecond"}},
			want:   map[string]string{"MESSAGE": "first\nsecond"},
		},
		{
			name:   "empty optional values omitted",
			fields: []field{{"MESSAGE", "x"}, {"HOSTNAME", ""}, {"", "orphan"}},
			want:   map[string]string{"MESSAGE": "x"},
		},
		{
			name:   "empty message kept",
			fields: []field{{"MESSAGE", ""}},
			want:   map[string]string{"MESSAGE": ""},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entry := encodeEntry(tt.fields)
			if !bytes.HasSuffix(entry, []byte("\n\n")) {
				t.Fatalf("entry not terminated by an empty line: %q", entry)
			}

			got, err := decodeEntry(bufio.NewReader(bytes.NewReader(entry)))
			if err != nil {
				t.Fatalf("failed to decode entry %q: %v", entry, err)
			}
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d fields, got %d (%v)", len(tt.want), len(got), got)
			}
			for key, want := range tt.want {
				if got[key] != want {
					t.Errorf("field %s: expected %q, got %q", key, want, got[key])
				}
			}
		})
	}
}

// Fake journald-remote accepting uploads on /upload
type uploadRecorder struct {
	mutex   sync.Mutex
	entries []map[string]string
	status  int
	body    string
}

func (rec *uploadRecorder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/upload" {
		// connection test on the base URL
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Header.Get("Content-Type") != "application/vnd.fdo.journal" {
		w.WriteHeader(http.StatusUnsupportedMediaType)
		return
	}
	if rec.status != 0 {
		w.WriteHeader(rec.status)
		io.WriteString(w, rec.body)
		return
	}

	fields, err := decodeEntry(bufio.NewReader(r.Body))
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, err.Error())
		return
	}

	rec.mutex.Lock()
	rec.entries = append(rec.entries, fields)
	rec.mutex.Unlock()
}

func TestWrite(t *testing.T) {
	global.Hostname = "testhost"
	recorder := &uploadRecorder{}
	server := httptest.NewServer(recorder)
	defer server.Close()

	mod, err := NewOutput([]string{global.NSTest}, server.URL, "")
	if err != nil {
		t.Fatalf("unexpected error creating module: %v", err)
	}
	defer mod.Shutdown()

	timestamp := time.Date(2026, 4, 2, 12, 30, 0, 0, time.UTC)
	if err := mod.Write(context.Background(), timestamp, []byte("service started\n")); err != nil {
		t.Fatalf("unexpected write error: %v", err)
	}

	if len(recorder.entries) != 1 {
		t.Fatalf("expected 1 uploaded entry, got %d", len(recorder.entries))
	}
	entry := recorder.entries[0]

	checks := map[string]string{
		"MESSAGE":              "service started",
		"__REALTIME_TIMESTAMP": strconv.FormatInt(timestamp.UnixMicro(), 10),
		"SYSLOG_IDENTIFIER":    global.ProgBaseName,
		"HOSTNAME":             "testhost",
		"PRIORITY":             "6",
	}
	for key, want := range checks {
		if entry[key] != want {
			t.Errorf("field %s: expected %q, got %q", key, want, entry[key])
		}
	}
}

func TestWrite_ServerRejects(t *testing.T) {
	recorder := &uploadRecorder{status: http.StatusBadRequest, body: "malformed entry"}
	server := httptest.NewServer(recorder)
	defer server.Close()

	mod, err := NewOutput(nil, server.URL, "custom")
	if err != nil {
		t.Fatalf("unexpected error creating module: %v", err)
	}

	err = mod.Write(context.Background(), time.Now(), []byte("x\n"))
	if err == nil {
		t.Fatalf("expected error for rejected upload")
	}
	if !strings.Contains(err.Error(), "400") || !strings.Contains(err.Error(), "malformed entry") {
		t.Errorf("expected status and body in error, got %q", err)
	}
}

func TestNewOutput(t *testing.T) {
	mod, err := NewOutput(nil, "", "")
	if mod != nil || err != nil {
		t.Fatalf("expected nil module and error for empty endpoint, got %v, %v", mod, err)
	}
	if err := mod.Write(context.Background(), time.Now(), []byte("x")); err != nil {
		t.Errorf("nil module write should be a no-op, got %v", err)
	}

	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	if _, err := NewOutput(nil, url, ""); err == nil {
		t.Errorf("expected connection test to fail against a closed server")
	}
}
