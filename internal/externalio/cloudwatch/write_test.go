package cloudwatch

import (
	"context"
	"errors"
	"logup/internal/global"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

type mockLogs struct {
	groupErr  error
	streamErr error
	putErr    error
	rejected  *types.RejectedLogEventsInfo

	groups  []string
	streams []string
	puts    []*cloudwatchlogs.PutLogEventsInput
}

func (m *mockLogs) CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error) {
	m.groups = append(m.groups, aws.ToString(params.LogGroupName))
	return &cloudwatchlogs.CreateLogGroupOutput{}, m.groupErr
}

func (m *mockLogs) CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error) {
	m.streams = append(m.streams, aws.ToString(params.LogStreamName))
	return &cloudwatchlogs.CreateLogStreamOutput{}, m.streamErr
}

func (m *mockLogs) PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error) {
	if m.putErr != nil {
		return nil, m.putErr
	}
	m.puts = append(m.puts, params)
	return &cloudwatchlogs.PutLogEventsOutput{RejectedLogEventsInfo: m.rejected}, nil
}

func TestNewOutput_CreatesGroupAndStream(t *testing.T) {
	global.Hostname = "cwhost"

	tests := []struct {
		name       string
		client     *mockLogs
		stream     string
		wantStream string
		wantErr    bool
	}{
		{
			name:       "fresh resources, stream defaults to hostname",
			client:     &mockLogs{},
			wantStream: "cwhost",
		},
		{
			name: "existing resources tolerated",
			client: &mockLogs{
				groupErr:  &types.ResourceAlreadyExistsException{Message: aws.String("exists")},
				streamErr: &types.ResourceAlreadyExistsException{Message: aws.String("exists")},
			},
			stream:     "custom",
			wantStream: "custom",
		},
		{
			name:       "group creation denied",
			client:     &mockLogs{groupErr: errors.New("access denied")},
			wantStream: "",
			wantErr:    true,
		},
		{
			name:       "stream creation denied",
			client:     &mockLogs{streamErr: errors.New("access denied")},
			wantStream: "cwhost",
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod, err := newOutput(context.Background(), nil, tt.client, "app-logs", tt.stream)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				if mod != nil {
					t.Errorf("expected no module on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if mod.stream != tt.wantStream {
				t.Errorf("expected stream %q, got %q", tt.wantStream, mod.stream)
			}
			if len(tt.client.groups) != 1 || tt.client.groups[0] != "app-logs" {
				t.Errorf("expected log group creation for app-logs, got %v", tt.client.groups)
			}
			if len(tt.client.streams) != 1 || tt.client.streams[0] != tt.wantStream {
				t.Errorf("expected stream creation for %s, got %v", tt.wantStream, tt.client.streams)
			}
		})
	}
}

func TestWrite(t *testing.T) {
	client := &mockLogs{}
	mod, err := newOutput(context.Background(), []string{global.NSTest}, client, "app-logs", "web-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	ts := time.UnixMilli(1767225600123)
	if err := mod.Write(context.Background(), ts, []byte("request served\n")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	mod.Write(context.Background(), ts, []byte("bad \xff byte\n"))

	if len(client.puts) != 2 {
		t.Fatalf("expected 2 put calls, got %d", len(client.puts))
	}
	put := client.puts[0]
	if aws.ToString(put.LogGroupName) != "app-logs" || aws.ToString(put.LogStreamName) != "web-1" {
		t.Errorf("wrong destination %s/%s", aws.ToString(put.LogGroupName), aws.ToString(put.LogStreamName))
	}
	if len(put.LogEvents) != 1 {
		t.Fatalf("expected 1 event per put, got %d", len(put.LogEvents))
	}
	if got := aws.ToString(put.LogEvents[0].Message); got != "request served" {
		t.Errorf("expected trimmed message, got %q", got)
	}
	if got := aws.ToInt64(put.LogEvents[0].Timestamp); got != 1767225600123 {
		t.Errorf("expected millisecond timestamp, got %d", got)
	}
	if got := aws.ToString(client.puts[1].LogEvents[0].Message); got != "bad � byte" {
		t.Errorf("expected invalid UTF-8 replaced, got %q", got)
	}
}

func TestWrite_Errors(t *testing.T) {
	cause := errors.New("throttled")
	mod := &OutModule{sink: &mockLogs{putErr: cause}, group: "g", stream: "s"}
	if err := mod.Write(context.Background(), time.Now(), []byte("x")); !errors.Is(err, cause) {
		t.Errorf("expected put error in chain, got %v", err)
	}

	mod = &OutModule{
		sink:  &mockLogs{rejected: &types.RejectedLogEventsInfo{TooOldLogEventEndIndex: aws.Int32(0)}},
		group: "g", stream: "s",
	}
	if err := mod.Write(context.Background(), time.Now(), []byte("x")); err == nil {
		t.Errorf("expected error for rejected event")
	}
}

func TestWrite_OversizedMessageFitsEventLimit(t *testing.T) {
	tests := []struct {
		name    string
		payload []byte
	}{
		{"full size ascii record", []byte(strings.Repeat("a", maxEventSize))},
		{"invalid bytes grow on replacement", []byte(strings.Repeat("\xff", maxEventSize/2))},
		{"multibyte runes at the limit", []byte(strings.Repeat("é", maxEventSize/2) + "\n")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &mockLogs{}
			mod := &OutModule{sink: client, group: "g", stream: "s"}

			if err := mod.Write(context.Background(), time.Now(), tt.payload); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			message := aws.ToString(client.puts[0].LogEvents[0].Message)
			if len(message)+eventOverhead > maxEventSize {
				t.Errorf("event of %d bytes exceeds limit %d", len(message)+eventOverhead, maxEventSize)
			}
			if !utf8.ValidString(message) {
				t.Errorf("truncated message is not valid UTF-8")
			}
		})
	}
}

func TestTruncateUTF8(t *testing.T) {
	tests := []struct {
		in    string
		limit int
		want  string
	}{
		{"short", 10, "short"},
		{"exact", 5, "exact"},
		{"abcdef", 3, "abc"},
		{"aé", 2, "a"}, // é is two bytes
		{"aé", 3, "aé"},
		{"€€", 4, "€"}, // € is three bytes
	}

	for _, tt := range tests {
		if got := truncateUTF8(tt.in, tt.limit); got != tt.want {
			t.Errorf("truncateUTF8(%q, %d) = %q, want %q", tt.in, tt.limit, got, tt.want)
		}
	}
}
