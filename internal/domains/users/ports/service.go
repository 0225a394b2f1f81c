package ports

import (
	"context"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
)

// Service exposes account and authentication use cases to adapters.
type Service interface {
	Register(ctx context.Context, input types.CreateUserInput) (*types.AuthResult, error)
	Login(ctx context.Context, identifier, password string) (*types.AuthResult, error)
	Logout(ctx context.Context, tokenID string) error
	Authenticate(ctx context.Context, token string) (types.Identity, error)
	ChangePassword(ctx context.Context, userID int64, current, next string) error
	EnsureAdmin(ctx context.Context, input types.CreateUserInput) (*domain.User, error)

	Create(ctx context.Context, input types.CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id int64) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Update(ctx context.Context, id int64, input types.UpdateUserInput) (*domain.User, error)
	Delete(ctx context.Context, id int64) error
}
