package ports

import (
	"context"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
)

// PartyInput carries contact fields. Nil pointers keep the current value on update.
type PartyInput struct {
	Name    *string
	Phone   *string
	Email   *string
	Address *string
}

type Service interface {
	Create(ctx context.Context, kind domain.Kind, input PartyInput) (*domain.Party, error)
	Update(ctx context.Context, kind domain.Kind, id int64, input PartyInput) (*domain.Party, error)
	Get(ctx context.Context, kind domain.Kind, id int64) (*domain.Party, error)
	List(ctx context.Context, kind domain.Kind) ([]*domain.Party, error)
	Delete(ctx context.Context, kind domain.Kind, id int64) error
}
