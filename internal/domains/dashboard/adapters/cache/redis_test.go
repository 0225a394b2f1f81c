package cache

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

func getRedisClient(t *testing.T) *redis.Client {
	t.Helper()
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedis_RoundTrip(t *testing.T) {
	client := getRedisClient(t)
	ctx := context.Background()
	cache := NewRedis(client, "test:")
	client.Del(ctx, "test:dashboard:summary:1")

	_, err := cache.Get(ctx, "dashboard:summary:1")
	require.ErrorIs(t, err, ports.ErrCacheMiss)

	summary := &domain.Summary{
		TotalSales:    decimal.RequireFromString("60.50"),
		TotalProducts: 2,
		SalesTrend:    domain.NewTrend(decimal.NewFromInt(60), decimal.NewFromInt(40)),
		UserContext:   domain.UserContext{UserID: 1, UserRole: actor.RoleAdmin, CanViewAllSales: true},
	}
	require.NoError(t, cache.Set(ctx, "dashboard:summary:1", summary, time.Minute))

	got, err := cache.Get(ctx, "dashboard:summary:1")
	require.NoError(t, err)
	require.True(t, got.TotalSales.Equal(summary.TotalSales))
	require.Equal(t, "50", got.SalesTrend.Percentage.String())
	require.Equal(t, actor.RoleAdmin, got.UserContext.UserRole)

	ttl := client.TTL(ctx, "test:dashboard:summary:1").Val()
	require.Greater(t, ttl, time.Duration(0))
}
