// Package source reads report input straight from the owning contexts'
// repositories.
package source

import (
	"context"

	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	catalogports "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
	"github.com/Apurer/go-pos-backoffice/internal/domains/dashboard/ports"
	ordersdomain "github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	ordersports "github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

var _ ports.Source = (*Repositories)(nil)

type Repositories struct {
	orders  ordersports.Repository
	catalog catalogports.Repository
	parties partyports.Repository
}

func New(orders ordersports.Repository, catalog catalogports.Repository, parties partyports.Repository) *Repositories {
	return &Repositories{orders: orders, catalog: catalog, parties: parties}
}

func (r *Repositories) Orders(ctx context.Context, kind ordersdomain.Kind, filter ordersports.ListFilter) ([]*ordersdomain.Order, error) {
	return r.orders.ListOrders(ctx, kind, filter)
}

func (r *Repositories) Products(ctx context.Context) ([]*catalogdomain.Product, error) {
	return r.catalog.ListProducts(ctx, catalogports.ProductFilter{})
}

func (r *Repositories) LowStock(ctx context.Context, threshold int) ([]*catalogdomain.Product, error) {
	return r.catalog.ListLowStock(ctx, threshold)
}

func (r *Repositories) Parties(ctx context.Context, kind partydomain.Kind) ([]*partydomain.Party, error) {
	return r.parties.List(ctx, kind)
}
