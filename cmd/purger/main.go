// Command purger drops expired sessions and activity entries older than the
// retention window. It is meant to run from cron.
package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/app/api"
	platformobservability "github.com/Apurer/go-pos-backoffice/internal/platform/observability"
)

func main() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger, err := platformobservability.NewLogger(os.Stdout, platformobservability.Settings{LogLevel: cfg.Log.Level, LogFormat: cfg.Log.Format})
	if err != nil {
		log.Fatalf("invalid logging configuration: %v", err)
	}
	repos, cleanup, err := api.OpenRepositories(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		log.Fatalf("failed to open repositories: %v", err)
	}
	defer cleanup()
	if !repos.Durable {
		log.Fatal("POSTGRES_DSN not set or connection failed; nothing to purge")
	}

	sessions, err := repos.Sessions.PurgeExpired(ctx)
	if err != nil {
		log.Fatalf("failed to purge sessions: %v", err)
	}
	cutoff := time.Now().Add(-cfg.ActivityRetention())
	activities, err := repos.Activities.PurgeBefore(ctx, cutoff)
	if err != nil {
		log.Fatalf("failed to purge activities: %v", err)
	}
	logger.Info("purge completed",
		slog.Int64("sessions", sessions),
		slog.Int64("activities", activities),
		slog.Time("activity_cutoff", cutoff),
	)
}
