package ports

import (
	"context"
	"errors"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
)

var (
	ErrNotFound           = errors.New("user not found")
	ErrConflict           = errors.New("username or email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
)

type Repository interface {
	// Save inserts when ID is zero, otherwise updates. Duplicate username or email yields ErrConflict.
	Save(ctx context.Context, user *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context) ([]*domain.User, error)
	Delete(ctx context.Context, id int64) error
	Count(ctx context.Context) (int64, error)
}
