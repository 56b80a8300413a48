package cloudwatch

import (
	"context"
	"fmt"
	"logup/internal/global"
	"logup/internal/logctx"
	"logup/pkg/logstream"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	maxEventSize    = 256 * 1024 // per event, service side accounting includes the overhead
	eventOverhead   = 26
	maxMessageBytes = maxEventSize - eventOverhead
)

// Puts one record as a log event with a millisecond timestamp
func (mod *OutModule) Write(ctx context.Context, timestamp time.Time, payload []byte) (err error) {
	if mod == nil {
		return
	}

	// CloudWatch requires valid UTF-8
	message := strings.ToValidUTF8(string(logstream.TrimNewline(payload)), "�")
	if len(message) > maxMessageBytes {
		logctx.LogEvent(ctx, global.VerbosityProgress, global.WarnLog,
			"Truncating %d byte message to the %d byte event limit\n", len(message), maxMessageBytes)
		message = truncateUTF8(message, maxMessageBytes)
	}

	output, err := mod.sink.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(mod.group),
		LogStreamName: aws.String(mod.stream),
		LogEvents: []types.InputLogEvent{
			{
				Message:   aws.String(message),
				Timestamp: aws.Int64(timestamp.UnixMilli()),
			},
		},
	})
	if err != nil {
		err = fmt.Errorf("failed putting log event to %s:log-stream:%s: %w", mod.group, mod.stream, err)
		return
	}

	if output != nil && output.RejectedLogEventsInfo != nil {
		rejected := output.RejectedLogEventsInfo
		switch {
		case rejected.TooOldLogEventEndIndex != nil:
			err = fmt.Errorf("log event rejected: timestamp %s is too old", timestamp.Format(time.RFC3339))
		case rejected.TooNewLogEventStartIndex != nil:
			err = fmt.Errorf("log event rejected: timestamp %s is too far in the future", timestamp.Format(time.RFC3339))
		case rejected.ExpiredLogEventEndIndex != nil:
			err = fmt.Errorf("log event rejected: timestamp %s is past the retention period", timestamp.Format(time.RFC3339))
		}
	}
	return
}

// Cuts message to at most limit bytes without splitting a UTF-8 sequence
func truncateUTF8(message string, limit int) (truncated string) {
	if len(message) <= limit {
		truncated = message
		return
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(message[cut]) {
		cut--
	}
	truncated = message[:cut]
	return
}
