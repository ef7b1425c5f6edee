package secrets

import (
	"context"
	"os"
	"strings"
)

// EnvFetcher resolves secrets from environment variables named after the last
// path segment of the secret id. Meant for local development only.
type EnvFetcher struct{}

func (EnvFetcher) Fetch(_ context.Context, secretID string) (string, error) {
	name := secretID
	if i := strings.LastIndex(secretID, "/"); i >= 0 {
		name = secretID[i+1:]
	}
	return os.Getenv(name), nil
}
