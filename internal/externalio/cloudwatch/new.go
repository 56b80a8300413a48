// Uploads records to an AWS CloudWatch Logs stream
package cloudwatch

import (
	"context"
	"errors"
	"fmt"
	"logup/internal/global"
	"logup/internal/logctx"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

// Creates new CloudWatch output module using the default AWS credential chain.
// Stream defaults to the local hostname. Returns nil nil if no group.
func NewOutput(ctx context.Context, namespace []string, group string, stream string) (module *OutModule, err error) {
	if group == "" {
		return
	}

	// Retries belong to the delivery queue, one SDK attempt per write
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRetryMaxAttempts(1))
	if err != nil {
		err = fmt.Errorf("failed to load AWS configuration: %w", err)
		return
	}

	module, err = newOutput(ctx, namespace, cloudwatchlogs.NewFromConfig(cfg), group, stream)
	return
}

func newOutput(ctx context.Context, namespace []string, client logsAPI, group string, stream string) (module *OutModule, err error) {
	if stream == "" {
		stream = global.Hostname
	}

	new := &OutModule{
		Namespace: append(append([]string(nil), namespace...), global.NSoCW),
		sink:      client,
		group:     group,
		stream:    stream,
	}

	setupCtx, cancel := context.WithTimeout(ctx, global.DefaultRequestTimeout)
	defer cancel()

	_, err = client.CreateLogGroup(setupCtx, &cloudwatchlogs.CreateLogGroupInput{
		LogGroupName: aws.String(group),
	})
	if err != nil && !alreadyExists(err) {
		err = fmt.Errorf("failed creating log group %s: %w", group, err)
		return
	}

	_, err = client.CreateLogStream(setupCtx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(group),
		LogStreamName: aws.String(stream),
	})
	if err != nil && !alreadyExists(err) {
		err = fmt.Errorf("failed creating log stream %s:log-stream:%s: %w", group, stream, err)
		return
	}
	err = nil

	logctx.LogEvent(ctx, global.VerbosityProgress, global.InfoLog,
		"Using CloudWatch log stream %s:log-stream:%s\n", group, stream)

	module = new
	return
}

func alreadyExists(err error) (exists bool) {
	var existsErr *types.ResourceAlreadyExistsException
	exists = errors.As(err, &existsErr)
	return
}

// Nothing to release, the SDK client holds no persistent connection state
func (mod *OutModule) Shutdown() (err error) {
	return
}
