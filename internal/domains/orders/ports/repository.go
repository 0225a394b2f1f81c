package ports

import (
	"context"
	"errors"
	"time"

	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
)

var (
	ErrNotFound                = errors.New("order not found")
	ErrItemNotFound            = errors.New("line item not found")
	ErrInventoryRecordNotFound = errors.New("inventory record not found")
	ErrActorNotFound           = errors.New("user not found")
	ErrCounterpartyNotFound    = errors.New("counterparty not found")
)

// IsNotFound reports whether err names any missing entity an order operation depends on.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrItemNotFound) ||
		errors.Is(err, ErrInventoryRecordNotFound) ||
		errors.Is(err, ErrActorNotFound) ||
		errors.Is(err, ErrCounterpartyNotFound)
}

// ListFilter narrows order listings. Zero values match everything.
type ListFilter struct {
	ActorID        *int64
	CounterpartyID *int64
	Status         *domain.Status
	From           *time.Time
	To             *time.Time
	IDs            []int64
}

// ItemFilter narrows line item listings.
type ItemFilter struct {
	OrderID *int64
	ActorID *int64
}

// Repository is the data-access contract for orders, their items and the
// stock they move. Calls made through a WithinTx repository share one
// transaction; GetOrder and GetInventoryRecord lock the rows they return.
type Repository interface {
	GetOrder(ctx context.Context, kind domain.Kind, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, kind domain.Kind, filter ListFilter) ([]*domain.Order, error)
	CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error)
	UpdateOrder(ctx context.Context, order *domain.Order) error
	DeleteOrder(ctx context.Context, kind domain.Kind, id int64) error

	GetItem(ctx context.Context, kind domain.Kind, itemID int64) (*domain.LineItem, error)
	ListItems(ctx context.Context, kind domain.Kind, filter ItemFilter) ([]*domain.LineItem, error)
	CreateItem(ctx context.Context, kind domain.Kind, item *domain.LineItem) (*domain.LineItem, error)
	UpdateItem(ctx context.Context, kind domain.Kind, item *domain.LineItem) error
	DeleteItem(ctx context.Context, kind domain.Kind, itemID int64) error

	GetInventoryRecord(ctx context.Context, id int64) (*catalogdomain.Product, error)
	SaveStock(ctx context.Context, recordID int64, stock int) error

	IdempotencyKeys
}

// Store runs fn atomically: every write made through repo commits together or not at all.
type Store interface {
	Repository
	WithinTx(ctx context.Context, fn func(ctx context.Context, repo Repository) error) error
}
