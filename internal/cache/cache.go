package cache

import (
	"context"
	"time"
)

// AdvisoryCache stores raw advisory responses by prompt key.
type AdvisoryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
}

type NoopAdvisoryCache struct{}

func (NoopAdvisoryCache) Get(_ context.Context, _ string) (string, bool, error) {
	return "", false, nil
}

func (NoopAdvisoryCache) Set(_ context.Context, _ string, _ string, _ time.Duration) error {
	return nil
}
