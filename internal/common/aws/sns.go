// internal/common/aws/sns.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
)

var ErrTopicNotConfigured = errors.New("sns topic arn is not configured")

// Publisher is the subset of the SNS API used here. *sns.Client satisfies it.
type Publisher interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSClient publishes JSON events to a single topic.
type SNSClient struct {
	api      Publisher
	topicARN string
}

func NewSNSClient(ctx context.Context, region, topicARN string) (*SNSClient, error) {
	cfg, err := config.LoadDefaultConfig(ctx, config.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewSNSClientWithAPI(sns.NewFromConfig(cfg), topicARN), nil
}

func NewSNSClientWithAPI(api Publisher, topicARN string) *SNSClient {
	return &SNSClient{api: api, topicARN: topicARN}
}

func (s *SNSClient) TopicARN() string {
	return s.topicARN
}

// PublishEvent marshals payload as the message body. eventType is sent as the
// "eventType" message attribute so subscribers can filter on it; attrs are added
// alongside.
func (s *SNSClient) PublishEvent(ctx context.Context, eventType string, payload interface{}, attrs map[string]string) (string, error) {
	if s.topicARN == "" {
		return "", ErrTopicNotConfigured
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	attributes := map[string]types.MessageAttributeValue{
		"eventType": stringAttribute(eventType),
	}
	for k, v := range attrs {
		attributes[k] = stringAttribute(v)
	}

	out, err := s.api.Publish(ctx, &sns.PublishInput{
		TopicArn:          awssdk.String(s.topicARN),
		Message:           awssdk.String(string(body)),
		Subject:           awssdk.String(eventType),
		MessageAttributes: attributes,
	})
	if err != nil {
		return "", fmt.Errorf("publish %s: %w", eventType, err)
	}
	return awssdk.ToString(out.MessageId), nil
}

func stringAttribute(v string) types.MessageAttributeValue {
	return types.MessageAttributeValue{
		DataType:    awssdk.String("String"),
		StringValue: awssdk.String(v),
	}
}
