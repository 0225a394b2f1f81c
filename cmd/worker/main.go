package main

import (
	"context"
	"log"
	"log/slog"
	"os"
	"time"

	"go.temporal.io/sdk/activity"
	"go.temporal.io/sdk/worker"
	"go.temporal.io/sdk/workflow"

	"github.com/Apurer/go-pos-backoffice/internal/app/api"
	platformobservability "github.com/Apurer/go-pos-backoffice/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-pos-backoffice/internal/platform/temporal"
	orderactivities "github.com/Apurer/go-pos-backoffice/internal/platform/temporal/activities/orders"
	orderworkflows "github.com/Apurer/go-pos-backoffice/internal/platform/temporal/workflows/orders"
)

func main() {
	ctx := context.Background()
	const serviceName = "pos-backoffice-worker"
	cfg, err := api.LoadConfig()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.Settings{
		LogLevel:    cfg.Log.Level,
		LogFormat:   cfg.Log.Format,
		Environment: cfg.Log.Environment,
	})
	if err != nil {
		log.Fatalf("failed to initialize observability: %v", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos, err := api.OpenRepositories(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		logger.Error("failed to open repositories", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer cleanupRepos()
	if !repos.Durable {
		logger.Warn("worker is running on in-memory repositories; bulk updates will not reach the API's data")
	}

	recorder, closeRecorder := api.NewActivityRecorder(cfg, repos, logger)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		closeRecorder(drainCtx)
	}()
	orderService := api.NewOrderService(repos, recorder, instruments)
	activities := orderactivities.NewActivities(orderService, recorder)

	temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Component: "temporal-worker",
	}, instruments)
	if err != nil {
		logger.Error("failed to create Temporal client", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer temporalClient.Close()

	w := worker.New(temporalClient, orderworkflows.BulkStatusTaskQueue, worker.Options{})
	w.RegisterWorkflowWithOptions(orderworkflows.BulkStatusWorkflow, workflow.RegisterOptions{Name: orderworkflows.BulkStatusWorkflowName})
	w.RegisterActivityWithOptions(activities.UpdateStatus, activity.RegisterOptions{Name: orderactivities.UpdateStatusActivityName})
	w.RegisterActivityWithOptions(activities.RecordBulkResult, activity.RegisterOptions{Name: orderactivities.RecordBulkResultActivityName})

	logger.Info("worker listening", slog.String("taskQueue", orderworkflows.BulkStatusTaskQueue), slog.String("namespace", cfg.Temporal.Namespace))
	if err := w.Run(worker.InterruptCh()); err != nil {
		logger.Error("Temporal worker exited with error", slog.String("error", err.Error()))
		return
	}
	logger.Info("Temporal worker stopped")
}
