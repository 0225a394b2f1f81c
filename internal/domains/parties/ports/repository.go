package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
)

var (
	ErrNotFound = errors.New("party not found")
	// ErrConflict reports a phone or email already used by a party of the same kind.
	ErrConflict = errors.New("phone or email already exists")
)

type Repository interface {
	Save(ctx context.Context, party *domain.Party) (*domain.Party, error)
	Get(ctx context.Context, kind domain.Kind, id int64) (*domain.Party, error)
	List(ctx context.Context, kind domain.Kind) ([]*domain.Party, error)
	Delete(ctx context.Context, kind domain.Kind, id int64) error
}
