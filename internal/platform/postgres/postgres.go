// Package postgres opens the shared gorm handle used by every repository.
package postgres

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	maxOpenConns    = 20
	maxIdleConns    = 5
	connMaxLifetime = 30 * time.Minute
	pingTimeout     = 5 * time.Second
)

var errEmptyDSN = errors.New("postgres DSN is empty")

// Connect opens the database and pings it. TranslateError is on so adapters
// can match gorm.ErrDuplicatedKey for unique names, barcodes and line items.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errEmptyDSN
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, err
	}
	return db, nil
}

// ConnectOrFallback returns a nil DB when dsn is empty or unreachable, which
// tells the caller to use the in-memory adapters. The cleanup func is never nil.
func ConnectOrFallback(ctx context.Context, dsn string, log *slog.Logger) (*gorm.DB, func()) {
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	noop := func() {}
	db, err := Connect(ctx, dsn)
	switch {
	case errors.Is(err, errEmptyDSN):
		log.Warn("POSTGRES_DSN not set, using in-memory repositories")
		return nil, noop
	case err != nil:
		log.Warn("postgres unavailable, using in-memory repositories", slog.String("error", err.Error()))
		return nil, noop
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Warn("postgres handle unusable, using in-memory repositories", slog.String("error", err.Error()))
		return nil, noop
	}
	log.Info("postgres connection established")
	return db, func() { _ = sqlDB.Close() }
}
