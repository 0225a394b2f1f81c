package ports

import (
	"context"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
)

// Directory answers existence questions about users and counterparties.
type Directory interface {
	ActorExists(ctx context.Context, id int64) (bool, error)
	CounterpartyExists(ctx context.Context, kind domain.Kind, id int64) (bool, error)
}
