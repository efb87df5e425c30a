package client

import (
	"context"
	"os"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
)

// LogsAPI is the subset of the CloudWatch Logs API we use.
type LogsAPI interface {
	FilterLogEvents(ctx context.Context, params *cloudwatchlogs.FilterLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.FilterLogEventsOutput, error)
}

// Event is a single CloudWatch log event.
type Event struct {
	Timestamp time.Time
	LogGroup  string
	LogStream string
	Message   string
}

// AuthOptions selects how AWS configuration is resolved.
type AuthOptions struct {
	Region  string
	Profile string
}

// CloudWatchClient pulls log events from CloudWatch Logs.
type CloudWatchClient struct {
	client LogsAPI
}

// NewCloudWatchOptions derives config loader options. The profile comes from
// the flag or AWS_PROFILE; static credentials from AWS_ACCESS_KEY_ID and
// AWS_SECRET_ACCESS_KEY are used only when no profile is set.
func NewCloudWatchOptions(o AuthOptions) []func(*config.LoadOptions) error {
	var opts []func(*config.LoadOptions) error
	if o.Region != "" {
		opts = append(opts, config.WithRegion(o.Region))
	}
	profile := o.Profile
	if profile == "" {
		profile = os.Getenv("AWS_PROFILE")
	}
	if profile != "" {
		return append(opts, config.WithSharedConfigProfile(profile))
	}
	key, secret := os.Getenv("AWS_ACCESS_KEY_ID"), os.Getenv("AWS_SECRET_ACCESS_KEY")
	if key != "" && secret != "" {
		provider := credentials.NewStaticCredentialsProvider(key, secret, os.Getenv("AWS_SESSION_TOKEN"))
		opts = append(opts, config.WithCredentialsProvider(provider))
	}
	return opts
}

// NewCloudWatchClient loads AWS configuration and returns a client.
func NewCloudWatchClient(ctx context.Context, o AuthOptions) (*CloudWatchClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, NewCloudWatchOptions(o)...)
	if err != nil {
		return nil, err
	}
	return &CloudWatchClient{client: cloudwatchlogs.NewFromConfig(cfg)}, nil
}

// NewWithAPI wraps an existing API implementation.
func NewWithAPI(api LogsAPI) *CloudWatchClient {
	return &CloudWatchClient{client: api}
}

// SearchGroup returns the events of one group matching filterPattern within
// [startMs, endMs]. An empty pattern matches every event. Pages are followed
// until there is no next token or the token repeats.
func (c *CloudWatchClient) SearchGroup(ctx context.Context, group, filterPattern string, startMs, endMs int64) ([]Event, error) {
	var events []Event
	var next *string
	for {
		in := &cloudwatchlogs.FilterLogEventsInput{
			LogGroupName: aws.String(group),
			StartTime:    aws.Int64(startMs),
			EndTime:      aws.Int64(endMs),
			NextToken:    next,
		}
		if filterPattern != "" {
			in.FilterPattern = aws.String(filterPattern)
		}
		out, err := c.client.FilterLogEvents(ctx, in)
		if err != nil {
			return nil, err
		}
		for _, e := range out.Events {
			events = append(events, Event{
				Timestamp: time.UnixMilli(aws.ToInt64(e.Timestamp)),
				LogGroup:  group,
				LogStream: aws.ToString(e.LogStreamName),
				Message:   aws.ToString(e.Message),
			})
		}
		if out.NextToken == nil || (next != nil && aws.ToString(out.NextToken) == aws.ToString(next)) {
			break
		}
		next = out.NextToken
	}
	return events, nil
}
