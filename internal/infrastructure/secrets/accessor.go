// Package secrets resolves named deployment secrets and memoizes them for the
// lifetime of the process.
package secrets

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/go-mail-verify/internal/domain"
	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
)

// Fetcher loads the latest version of a secret by its fully qualified id.
// Implementations return an empty string when the secret has no payload.
type Fetcher interface {
	Fetch(ctx context.Context, secretID string) (string, error)
}

// Accessor caches secrets forever once fetched. There is no invalidation:
// rotating a secret requires a process restart.
type Accessor struct {
	fetcher Fetcher
	project string
	cache   *gocache.Cache
	group   singleflight.Group
}

// NewAccessor builds an accessor scoped to project. An empty project is only
// reported when a secret is first requested.
func NewAccessor(fetcher Fetcher, project string) *Accessor {
	return &Accessor{
		fetcher: fetcher,
		project: project,
		cache:   gocache.New(gocache.NoExpiration, 0),
	}
}

// Get returns the secret value for name.
func (a *Accessor) Get(ctx context.Context, name string) (string, error) {
	if v, ok := a.cache.Get(name); ok {
		return v.(string), nil
	}
	if a.project == "" {
		return "", fmt.Errorf("secrets project id not set: %w", domain.ErrConfiguration)
	}

	v, err, _ := a.group.Do(name, func() (interface{}, error) {
		payload, err := a.fetcher.Fetch(ctx, a.secretID(name))
		if err != nil {
			slog.Error("failed to access secret", "secret", name, "err", err)
			return "", fmt.Errorf("could not retrieve secret %s", name)
		}
		if payload == "" {
			return "", fmt.Errorf("secret %s is empty or not found: %w", name, domain.ErrConfiguration)
		}
		a.cache.Set(name, payload, gocache.NoExpiration)
		return payload, nil
	})
	if err != nil {
		return "", err
	}
	return v.(string), nil
}

func (a *Accessor) secretID(name string) string {
	return a.project + "/" + name
}
