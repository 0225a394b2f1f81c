package types

import (
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

// CreateUserInput carries a new account. Role defaults to cashier.
type CreateUserInput struct {
	FullName string
	Username string
	Email    string
	Password string
	Role     actor.Role
}

// UpdateUserInput patches an account; nil fields are left alone.
type UpdateUserInput struct {
	FullName *string
	Username *string
	Email    *string
	Password *string
	Role     *actor.Role
}

// AuthResult is returned by login and registration.
type AuthResult struct {
	AccessToken string
	ExpiresAt   time.Time
	User        *domain.User
}

// Identity is the authenticated caller behind a bearer token.
type Identity struct {
	Actor   actor.Actor
	TokenID string
}
