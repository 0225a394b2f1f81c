package ports

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// Service exposes the sale and purchase transaction engine to adapters.
type Service interface {
	CreateSale(ctx context.Context, a actor.Actor, input types.CreateSaleInput) (*domain.Order, error)
	CreatePurchase(ctx context.Context, a actor.Actor, input types.CreatePurchaseInput) (*domain.Order, error)
	GetOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64) (*domain.Order, error)
	ListOrders(ctx context.Context, a actor.Actor, kind domain.Kind, input types.ListOrdersInput) ([]*domain.Order, error)
	UpdateOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64, input types.UpdateOrderInput) (*domain.Order, error)
	DeleteOrder(ctx context.Context, a actor.Actor, kind domain.Kind, id int64) error
	BulkUpdateStatus(ctx context.Context, a actor.Actor, kind domain.Kind, input types.BulkStatusInput) (types.BulkResult, error)

	AddItem(ctx context.Context, a actor.Actor, kind domain.Kind, input types.AddItemInput) (*domain.LineItem, error)
	UpdateItem(ctx context.Context, a actor.Actor, kind domain.Kind, itemID int64, input types.UpdateItemInput) (*domain.LineItem, error)
	DeleteItem(ctx context.Context, a actor.Actor, kind domain.Kind, itemID int64) error
	GetItem(ctx context.Context, a actor.Actor, kind domain.Kind, itemID int64) (*domain.LineItem, error)
	ListItems(ctx context.Context, a actor.Actor, kind domain.Kind, orderID *int64) ([]*domain.LineItem, error)

	ValidatePayment(ctx context.Context, a actor.Actor, saleID int64, amount decimal.Decimal) (types.PaymentValidation, error)
	CustomerHistory(ctx context.Context, a actor.Actor, customerID int64) ([]*domain.Order, error)
}
