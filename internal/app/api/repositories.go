package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	activitymemory "github.com/Apurer/go-pos-backoffice/internal/domains/activity/adapters/memory"
	activitypostgres "github.com/Apurer/go-pos-backoffice/internal/domains/activity/adapters/persistence/postgres"
	activityports "github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	catalogmemory "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/memory"
	catalogpostgres "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/persistence/postgres"
	catalogports "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
	ordersmemory "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/memory"
	orderspostgres "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/persistence/postgres"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partymemory "github.com/Apurer/go-pos-backoffice/internal/domains/parties/adapters/memory"
	partypostgres "github.com/Apurer/go-pos-backoffice/internal/domains/parties/adapters/persistence/postgres"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
	usermemory "github.com/Apurer/go-pos-backoffice/internal/domains/users/adapters/memory"
	userpostgres "github.com/Apurer/go-pos-backoffice/internal/domains/users/adapters/persistence/postgres"
	userports "github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	"github.com/Apurer/go-pos-backoffice/internal/platform/migrations"
	platformpostgres "github.com/Apurer/go-pos-backoffice/internal/platform/postgres"
)

// SessionPurger drops sessions whose token has expired.
type SessionPurger interface {
	userports.SessionStore
	PurgeExpired(ctx context.Context) (int64, error)
}

// Repositories is the storage every process shares, backed either by
// PostgreSQL or by in-memory adapters.
type Repositories struct {
	Users      userports.Repository
	Sessions   SessionPurger
	Catalog    catalogports.Repository
	Parties    partyports.Repository
	Orders     ordersports.Store
	Activities activityports.Repository
	// Durable is false when the in-memory fallback is in use.
	Durable bool
}

// OpenRepositories connects to PostgreSQL and migrates the schema. Without a
// DSN, or when the database is unreachable, it falls back to memory.
func OpenRepositories(ctx context.Context, dsn string, logger *slog.Logger) (*Repositories, func(), error) {
	db, cleanup := platformpostgres.ConnectOrFallback(ctx, dsn, logger)
	if db == nil {
		return memoryRepositories(), cleanup, nil
	}
	start := time.Now()
	if err := migrations.Run(db.WithContext(ctx)); err != nil {
		cleanup()
		return nil, func() {}, fmt.Errorf("failed to migrate schema: %w", err)
	}
	logger.Info("schema migrated", slog.Duration("took", time.Since(start)))
	return &Repositories{
		Users:      userpostgres.NewRepository(db),
		Sessions:   userpostgres.NewSessionStore(db),
		Catalog:    catalogpostgres.NewRepository(db),
		Parties:    partypostgres.NewRepository(db),
		Orders:     orderspostgres.NewStore(db),
		Activities: activitypostgres.NewRepository(db),
		Durable:    true,
	}, cleanup, nil
}

func memoryRepositories() *Repositories {
	catalog := catalogmemory.NewRepository()
	return &Repositories{
		Users:      usermemory.NewRepository(),
		Sessions:   usermemory.NewSessionStore(),
		Catalog:    catalog,
		Parties:    partymemory.NewRepository(),
		Orders:     ordersmemory.NewStore(catalog),
		Activities: activitymemory.NewRepository(),
	}
}
