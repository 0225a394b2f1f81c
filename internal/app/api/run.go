package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	posserver "github.com/Apurer/go-pos-backoffice/go"
	ordersworkflows "github.com/Apurer/go-pos-backoffice/internal/domains/orders/adapters/workflows"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/application/types"
	platformobservability "github.com/Apurer/go-pos-backoffice/internal/platform/observability"
	platformtemporal "github.com/Apurer/go-pos-backoffice/internal/platform/temporal"
)

const serviceName = "pos-backoffice-api"

// Run boots the back-office HTTP API with observability, repositories, and
// workflows wired. It returns once ctx is cancelled and the server drained.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, platformobservability.Settings{
		LogLevel:    cfg.Log.Level,
		LogFormat:   cfg.Log.Format,
		Environment: cfg.Log.Environment,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	repos, cleanupRepos, err := OpenRepositories(ctx, cfg.Postgres.DSN, logger)
	if err != nil {
		return err
	}
	defer cleanupRepos()

	recorder, closeRecorder := NewActivityRecorder(cfg, repos, logger)
	defer func() {
		drainCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		closeRecorder(drainCtx)
	}()

	services, cleanupServices, err := BuildServices(ctx, cfg, repos, recorder, instruments)
	if err != nil {
		return err
	}
	defer cleanupServices()

	if err := bootstrapAdmin(ctx, cfg, services, logger); err != nil {
		return err
	}

	var orderWorkflows ordersports.WorkflowOrchestrator = ordersworkflows.NewInlineOrderWorkflows(services.Orders)
	if temporalClient, err := platformtemporal.Dial(platformtemporal.Options{
		Address:   cfg.Temporal.Address,
		Namespace: cfg.Temporal.Namespace,
		Disabled:  cfg.Temporal.Disabled,
	}, instruments); err != nil {
		logger.Warn("Temporal workflows unavailable, running bulk status updates inline", slog.String("error", err.Error()))
	} else {
		defer temporalClient.Close()
		orderWorkflows = ordersworkflows.NewTemporalOrderWorkflows(temporalClient)
		logger.Info("Temporal workflows enabled", slog.String("namespace", cfg.Temporal.Namespace))
	}

	router := gin.New()
	router.Use(gin.Recovery(), otelgin.Middleware(serviceName))
	posserver.NewRouterWithGinEngine(router, Handlers(cfg, services, orderWorkflows), services.Users)

	server := &http.Server{
		Addr:              ":" + cfg.HTTP.Port,
		Handler:           corsHandler(cfg)(router),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("POS back-office API listening", slog.String("addr", server.Addr), slog.Bool("durable_storage", repos.Durable))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("POS back-office API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info("shutting down POS back-office API")
	return server.Shutdown(shutdownCtx)
}

// Handlers maps every HTTP resource onto its service.
func Handlers(cfg Config, services *Services, orderWorkflows ordersports.WorkflowOrchestrator) posserver.ApiHandleFunctions {
	return posserver.ApiHandleFunctions{
		AuthAPI:      posserver.NewAuthAPI(services.Users),
		UserAPI:      posserver.NewUserAPI(services.Users),
		CatalogAPI:   posserver.NewCatalogAPI(services.Catalog, cfg.Dashboard.LowStockThreshold),
		CustomerAPI:  posserver.NewPartyAPI(services.Parties, partydomain.KindCustomer),
		SupplierAPI:  posserver.NewPartyAPI(services.Parties, partydomain.KindSupplier),
		SaleAPI:      posserver.NewOrderAPI(services.Orders, orderWorkflows, ordersdomain.KindSale),
		PurchaseAPI:  posserver.NewOrderAPI(services.Orders, orderWorkflows, ordersdomain.KindPurchase),
		DashboardAPI: posserver.NewDashboardAPI(services.Dashboard),
		ActivityAPI:  posserver.NewActivityAPI(services.History),
	}
}

func bootstrapAdmin(ctx context.Context, cfg Config, services *Services, logger *slog.Logger) error {
	if cfg.Auth.AdminUsername == "" {
		return nil
	}
	_, err := services.Users.EnsureAdmin(ctx, types.CreateUserInput{
		FullName: cfg.Auth.AdminFullName,
		Username: cfg.Auth.AdminUsername,
		Email:    cfg.Auth.AdminEmail,
		Password: cfg.Auth.AdminPassword,
	})
	if err != nil {
		return fmt.Errorf("failed to bootstrap admin: %w", err)
	}
	logger.Debug("bootstrap admin checked", slog.String("username", cfg.Auth.AdminUsername))
	return nil
}

func corsHandler(cfg Config) func(http.Handler) http.Handler {
	return cors.Handler(cors.Options{
		AllowedOrigins:   cfg.HTTP.CORSAllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "Idempotency-Key"},
		ExposedHeaders:   []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
