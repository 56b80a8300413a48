package logctx

import (
	"context"
	"fmt"
	"logup/internal/global"
	"strings"
	"testing"
	"time"
)

func TestEventFormat(t *testing.T) {
	ts := time.Date(2026, 1, 31, 12, 34, 56, 123456789, time.UTC)
	tests := []struct {
		name   string
		event  Event
		expect string
	}{
		{
			name:   "all fields",
			event:  Event{Timestamp: ts, Severity: "Info", Tags: []string{"tag1", "tag2"}, Message: "hello world"},
			expect: fmt.Sprintf("[%s] [tag1/tag2] [Info] hello world", padTimestamp(ts)),
		},
		{
			name:   "no tags",
			event:  Event{Timestamp: ts, Severity: "Warn", Message: "something happened"},
			expect: fmt.Sprintf("[%s] [Warn] something happened", padTimestamp(ts)),
		},
		{
			name:   "only message",
			event:  Event{Message: "bare message"},
			expect: "bare message",
		},
		{
			name:   "empty event",
			event:  Event{},
			expect: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.event.Format()
			if got != tt.expect {
				t.Errorf("\ngot  %q\nwant %q", got, tt.expect)
			}
		})
	}
}

func TestPadTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    time.Time
		expected string
	}{
		{"short nanoseconds", time.Date(2026, 1, 31, 12, 34, 56, 4832, time.UTC), "2026-01-31T12:34:56.000004832Z"},
		{"zero nanoseconds", time.Date(2026, 1, 31, 12, 34, 56, 0, time.UTC), "2026-01-31T12:34:56.000000000Z"},
		{"positive offset", time.Date(2026, 1, 31, 12, 34, 56, 987654321, time.FixedZone("UTC+2", 2*3600)), "2026-01-31T12:34:56.987654321+02:00"},
		{"negative offset", time.Date(2026, 1, 31, 12, 34, 56, 765, time.FixedZone("UTC-8", -8*3600)), "2026-01-31T12:34:56.000000765-08:00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := padTimestamp(tt.input)
			if got != tt.expected {
				t.Errorf("got %q, want %q", got, tt.expected)
			}
		})
	}
}

func TestGetFormattedLogLines(t *testing.T) {
	logger := NewLogger(global.NSTest, global.VerbosityData, nil)
	testCtx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	ctx := AppendCtxTag(WithLogger(testCtx, logger), "Unit")

	LogEvent(ctx, global.VerbosityStandard, global.InfoLog, "first %d", 1)
	LogEvent(ctx, global.VerbosityDebug, global.InfoLog, "filtered by level\n")
	LogEvent(ctx, global.VerbosityDebug, global.ErrorLog, "errors always recorded\n")

	lines := logger.GetFormattedLogLines()
	if len(lines) != 2 {
		t.Fatalf("expected 2 buffered lines, got %d: %q", len(lines), lines)
	}
	if !strings.HasSuffix(lines[0], "[Unit] [Info] first 1\n") {
		t.Errorf("unexpected first line %q", lines[0])
	}
	if !strings.Contains(lines[1], "[Error] errors always recorded") {
		t.Errorf("unexpected second line %q", lines[1])
	}
}
