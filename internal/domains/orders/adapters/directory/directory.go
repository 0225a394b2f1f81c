// Package directory answers the orders context's existence checks from the
// users and parties repositories.
package directory

import (
	"context"
	"errors"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
	partydomain "github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	partyports "github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
	userports "github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
)

var _ ports.Directory = (*Directory)(nil)

type Directory struct {
	users   userports.Repository
	parties partyports.Repository
}

func New(users userports.Repository, parties partyports.Repository) *Directory {
	return &Directory{users: users, parties: parties}
}

func (d *Directory) ActorExists(ctx context.Context, id int64) (bool, error) {
	_, err := d.users.GetByID(ctx, id)
	if errors.Is(err, userports.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// CounterpartyExists looks up customers for sales and suppliers for purchases.
func (d *Directory) CounterpartyExists(ctx context.Context, kind domain.Kind, id int64) (bool, error) {
	partyKind := partydomain.KindCustomer
	if kind == domain.KindPurchase {
		partyKind = partydomain.KindSupplier
	}
	_, err := d.parties.Get(ctx, partyKind, id)
	if errors.Is(err, partyports.ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}
