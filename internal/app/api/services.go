package api

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/redis/go-redis/v9"

	activitykafka "github.com/Apurer/go-pos-backoffice/internal/domains/activity/adapters/kafka"
	activityapp "github.com/Apurer/go-pos-backoffice/internal/domains/activity/application"
	catalogobs "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/observability"
	catalogapp "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/application"
	catalogports "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
	dashboardcache "github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/adapters/cache"
	dashboardsource "github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/adapters/source"
	dashboardapp "github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/application"
	dashboardports "github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
	ordersdirectory "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/directory"
	ordersobs "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/observability"
	ordersapp "github.com/Apurer/go-pos-backoffice/internal/domains/orders/application"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partyobs "github.com/Apurer/go-pos-backoffice/internal/domains/parties/adapters/observability"
	partyapp "github.com/Apurer/go-pos-backoffice/internal/domains/parties/application"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/adapters/credentials"
	userobs "github.com/Apurer/go-pos-backoffice/internal/domains/users/adapters/observability"
	userapp "github.com/Apurer/go-pos-backoffice/internal/domains/users/application"
	userports "github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	platformobservability "github.com/Apurer/go-pos-backoffice/internal/platform/observability"
)

// Services are the decorated application services behind the HTTP API.
type Services struct {
	Users     userports.Service
	Catalog   catalogports.Service
	Parties   partyports.Service
	Orders    ordersports.Service
	Dashboard dashboardports.Service
	History   *activityapp.History
	Recorder  *activityapp.Recorder
}

// NewActivityRecorder builds the asynchronous activity sink, forwarding to
// Kafka when brokers are configured. The returned cleanup flushes the queue.
func NewActivityRecorder(cfg Config, repos *Repositories, logger *slog.Logger) (*activityapp.Recorder, func(context.Context)) {
	opts := []activityapp.RecorderOption{
		activityapp.WithLogger(logger),
		activityapp.WithBufferSize(cfg.Activity.Buffer),
	}
	var publisher *activitykafka.Publisher
	if brokers := nonEmpty(cfg.Kafka.Brokers); len(brokers) > 0 {
		publisher = activitykafka.NewPublisher(activitykafka.NewWriter(brokers, cfg.Kafka.ActivityTopic))
		opts = append(opts, activityapp.WithPublisher(publisher))
		logger.Info("activity events published to kafka", slog.String("topic", cfg.Kafka.ActivityTopic))
	}
	recorder := activityapp.NewRecorder(repos.Activities, opts...)
	return recorder, func(ctx context.Context) {
		if err := recorder.Close(ctx); err != nil {
			logger.Warn("activity recorder did not drain", slog.String("error", err.Error()))
		}
		if publisher != nil {
			if err := publisher.Close(); err != nil {
				logger.Warn("failed to close kafka writer", slog.String("error", err.Error()))
			}
		}
	}
}

// NewOrderService wires the transaction engine with tracing, logs and metrics.
func NewOrderService(repos *Repositories, recorder *activityapp.Recorder, instruments *platformobservability.Instruments) ordersports.Service {
	core := ordersapp.NewService(
		repos.Orders,
		ordersdirectory.New(repos.Users, repos.Parties),
		ordersapp.WithActivitySink(recorder),
	)
	return ordersobs.New(core,
		ordersobs.WithLogger(instruments.Logger),
		ordersobs.WithTracer(instruments.Tracer("internal.orders.application")),
		ordersobs.WithMeter(instruments.Meter("internal.orders.application")),
	)
}

// BuildServices wires every bounded context. The cleanup closes the Redis
// client when one was opened.
func BuildServices(ctx context.Context, cfg Config, repos *Repositories, recorder *activityapp.Recorder, instruments *platformobservability.Instruments) (*Services, func(), error) {
	logger := instruments.Logger

	creds, err := credentials.New(cfg.Auth.JWTSecret, credentials.WithTTL(cfg.SessionTTL()))
	if err != nil {
		return nil, func() {}, fmt.Errorf("failed to configure credentials: %w", err)
	}
	users := userobs.New(userapp.NewService(repos.Users, creds, repos.Sessions),
		userobs.WithLogger(logger),
		userobs.WithTracer(instruments.Tracer("internal.users.application")),
		userobs.WithMeter(instruments.Meter("internal.users.application")),
	)
	catalog := catalogobs.New(catalogapp.NewService(repos.Catalog),
		catalogobs.WithLogger(logger),
		catalogobs.WithTracer(instruments.Tracer("internal.catalog.application")),
		catalogobs.WithMeter(instruments.Meter("internal.catalog.application")),
	)
	parties := partyobs.New(partyapp.NewService(repos.Parties),
		partyobs.WithLogger(logger),
		partyobs.WithTracer(instruments.Tracer("internal.parties.application")),
	)

	dashboardOpts := []dashboardapp.Option{
		dashboardapp.WithActivitySink(recorder),
		dashboardapp.WithLowStockThreshold(cfg.Dashboard.LowStockThreshold),
		dashboardapp.WithLogger(logger),
	}
	cleanup := func() {}
	if addr := strings.TrimSpace(cfg.Redis.Addr); addr != "" {
		client := redis.NewClient(&redis.Options{Addr: addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
		if err := client.Ping(ctx).Err(); err != nil {
			logger.Warn("redis unavailable, dashboard summary cache disabled", slog.String("error", err.Error()))
			_ = client.Close()
		} else {
			dashboardOpts = append(dashboardOpts, dashboardapp.WithCache(dashboardcache.NewRedis(client, "pos:"), cfg.Dashboard.CacheTTL))
			cleanup = func() { _ = client.Close() }
			logger.Info("dashboard summary cache enabled", slog.String("addr", addr))
		}
	}
	dashboard := dashboardapp.NewService(dashboardsource.New(repos.Orders, repos.Catalog, repos.Parties), dashboardOpts...)

	return &Services{
		Users:     users,
		Catalog:   catalog,
		Parties:   parties,
		Orders:    NewOrderService(repos, recorder, instruments),
		Dashboard: dashboard,
		History:   activityapp.NewHistory(repos.Activities),
		Recorder:  recorder,
	}, cleanup, nil
}

func nonEmpty(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
