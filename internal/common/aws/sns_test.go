// internal/common/aws/sns_test.go
package aws

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePublisher struct {
	input *sns.PublishInput
	err   error
}

func (f *fakePublisher) Publish(_ context.Context, params *sns.PublishInput, _ ...func(*sns.Options)) (*sns.PublishOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &sns.PublishOutput{MessageId: awssdk.String("msg-1")}, nil
}

func TestSNSClient_PublishEvent(t *testing.T) {
	api := &fakePublisher{}
	client := NewSNSClientWithAPI(api, "arn:aws:sns:us-west-2:123456789012:mix-recommendations")

	id, err := client.PublishEvent(context.Background(), "mix.recommended",
		map[string]interface{}{"campaignId": "cmp-1", "selected": []string{"a", "b"}},
		map[string]string{"campaignId": "cmp-1"})
	require.NoError(t, err)
	assert.Equal(t, "msg-1", id)

	require.NotNil(t, api.input)
	assert.Equal(t, "arn:aws:sns:us-west-2:123456789012:mix-recommendations", awssdk.ToString(api.input.TopicArn))
	assert.Equal(t, "mix.recommended", awssdk.ToString(api.input.Subject))
	assert.Equal(t, "mix.recommended", awssdk.ToString(api.input.MessageAttributes["eventType"].StringValue))
	assert.Equal(t, "cmp-1", awssdk.ToString(api.input.MessageAttributes["campaignId"].StringValue))
	assert.Equal(t, "String", awssdk.ToString(api.input.MessageAttributes["campaignId"].DataType))

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(awssdk.ToString(api.input.Message)), &body))
	assert.Equal(t, "cmp-1", body["campaignId"])
}

func TestSNSClient_PublishEvent_Errors(t *testing.T) {
	t.Run("no topic", func(t *testing.T) {
		api := &fakePublisher{}
		_, err := NewSNSClientWithAPI(api, "").PublishEvent(context.Background(), "mix.recommended", struct{}{}, nil)
		assert.ErrorIs(t, err, ErrTopicNotConfigured)
		assert.Nil(t, api.input)
	})

	t.Run("api failure", func(t *testing.T) {
		cause := errors.New("throttled")
		client := NewSNSClientWithAPI(&fakePublisher{err: cause}, "arn:aws:sns:us-west-2:1:topic")
		_, err := client.PublishEvent(context.Background(), "mix.recommended", struct{}{}, nil)
		assert.ErrorIs(t, err, cause)
		assert.ErrorContains(t, err, "publish mix.recommended")
	})

	t.Run("unmarshalable payload", func(t *testing.T) {
		client := NewSNSClientWithAPI(&fakePublisher{}, "arn:aws:sns:us-west-2:1:topic")
		_, err := client.PublishEvent(context.Background(), "mix.recommended", make(chan int), nil)
		assert.ErrorContains(t, err, "marshal mix.recommended payload")
	})
}
