package sns

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"
	"github.com/go-mail-verify/internal/domain"
)

const eventAccountCreated = "account.created"

// AccountEvent is the JSON payload published for account lifecycle events.
type AccountEvent struct {
	Event     string    `json:"event"`
	UserID    string    `json:"userId"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// Publisher publishes account events to an SNS topic.
type Publisher struct {
	client   *sns.Client
	topicARN string
}

// NewPublisher creates a publisher. When endpointURL is set (LocalStack) it
// overrides the service endpoint.
func NewPublisher(awsCfg aws.Config, endpointURL, topicARN string) *Publisher {
	clientOpts := []func(*sns.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *sns.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}
	return &Publisher{client: sns.NewFromConfig(awsCfg, clientOpts...), topicARN: topicARN}
}

func (p *Publisher) PublishAccountCreated(ctx context.Context, a *domain.Account) error {
	body, err := accountCreatedMessage(a)
	if err != nil {
		return err
	}
	_, err = p.client.Publish(ctx, &sns.PublishInput{
		TopicArn: aws.String(p.topicARN),
		Message:  aws.String(body),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"event": {DataType: aws.String("String"), StringValue: aws.String(eventAccountCreated)},
		},
	})
	if err != nil {
		return fmt.Errorf("sns publish %s: %w", eventAccountCreated, err)
	}
	return nil
}

func accountCreatedMessage(a *domain.Account) (string, error) {
	b, err := json.Marshal(AccountEvent{
		Event:     eventAccountCreated,
		UserID:    a.UserID,
		Email:     a.Email,
		CreatedAt: a.CreatedAt,
	})
	if err != nil {
		return "", fmt.Errorf("marshal account event: %w", err)
	}
	return string(b), nil
}
