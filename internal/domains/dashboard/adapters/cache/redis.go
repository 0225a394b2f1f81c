// Package cache keeps rendered dashboard summaries in Redis.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
)

var _ ports.Cache = (*Redis)(nil)

type Redis struct {
	client redis.Cmdable
	prefix string
}

// NewRedis stores entries under prefix, which may be empty.
func NewRedis(client redis.Cmdable, prefix string) *Redis {
	return &Redis{client: client, prefix: prefix}
}

func (r *Redis) Get(ctx context.Context, key string) (*domain.Summary, error) {
	raw, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ports.ErrCacheMiss
	}
	if err != nil {
		return nil, err
	}
	var summary domain.Summary
	if err := json.Unmarshal(raw, &summary); err != nil {
		return nil, fmt.Errorf("decode cached summary %q: %w", key, err)
	}
	return &summary, nil
}

func (r *Redis) Set(ctx context.Context, key string, summary *domain.Summary, ttl time.Duration) error {
	raw, err := json.Marshal(summary)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, r.prefix+key, raw, ttl).Err()
}
