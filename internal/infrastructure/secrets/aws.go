package secrets

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
)

// AWSFetcher reads secrets from AWS Secrets Manager.
type AWSFetcher struct {
	client *secretsmanager.Client
}

// NewAWSFetcher creates a Secrets Manager backed fetcher. When endpointURL is
// set (LocalStack) it overrides the service endpoint.
func NewAWSFetcher(awsCfg aws.Config, endpointURL string) *AWSFetcher {
	clientOpts := []func(*secretsmanager.Options){}
	if endpointURL != "" {
		clientOpts = append(clientOpts, func(o *secretsmanager.Options) {
			o.BaseEndpoint = aws.String(endpointURL)
		})
	}
	return &AWSFetcher{client: secretsmanager.NewFromConfig(awsCfg, clientOpts...)}
}

// Fetch returns the AWSCURRENT version. A missing secret yields an empty payload.
func (f *AWSFetcher) Fetch(ctx context.Context, secretID string) (string, error) {
	out, err := f.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String("AWSCURRENT"),
	})
	if err != nil {
		var nf *types.ResourceNotFoundException
		if errors.As(err, &nf) {
			return "", nil
		}
		return "", err
	}
	if out.SecretString != nil {
		return *out.SecretString, nil
	}
	return string(out.SecretBinary), nil
}
