package ports

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/domain"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// ErrCacheMiss is returned by Cache.Get when nothing is stored under a key.
var ErrCacheMiss = errors.New("cache miss")

// Source is the read side the reports aggregate over.
type Source interface {
	Orders(ctx context.Context, kind ordersdomain.Kind, filter ordersports.ListFilter) ([]*ordersdomain.Order, error)
	Products(ctx context.Context) ([]*catalogdomain.Product, error)
	LowStock(ctx context.Context, threshold int) ([]*catalogdomain.Product, error)
	Parties(ctx context.Context, kind partydomain.Kind) ([]*partydomain.Party, error)
}

// Cache stores rendered summaries for a short time.
type Cache interface {
	Get(ctx context.Context, key string) (*domain.Summary, error)
	Set(ctx context.Context, key string, summary *domain.Summary, ttl time.Duration) error
}

type Service interface {
	Summary(ctx context.Context, a actor.Actor) (*domain.Summary, error)
	LowStock(ctx context.Context, a actor.Actor, limit int) ([]domain.LowStockProduct, error)
	TopProducts(ctx context.Context, a actor.Actor, limit int) ([]domain.ProductSales, error)
	SalesByDay(ctx context.Context, a actor.Actor, days int) ([]domain.DailySales, error)

	SalesAnalytics(ctx context.Context, a actor.Actor, from, to *time.Time) (*domain.SalesAnalytics, error)
	DailyReport(ctx context.Context, a actor.Actor, day time.Time) (*domain.DailyReport, error)
	SalesTrends(ctx context.Context, a actor.Actor, days int) (*domain.SalesTrends, error)
	TopCustomers(ctx context.Context, a actor.Actor, limit int) ([]domain.CustomerRanking, error)
}
