package ports

import (
	"errors"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var ErrInvalidToken = errors.New("invalid or expired token")

// Token is a signed bearer credential.
type Token struct {
	Value     string
	ID        string
	ExpiresAt time.Time
}

// Claims are the verified contents of a Token.
type Claims struct {
	TokenID   string
	UserID    int64
	Username  string
	Role      actor.Role
	ExpiresAt time.Time
}

// CredentialService hashes passwords and issues and verifies bearer tokens.
type CredentialService interface {
	Hash(password string) (string, error)
	// Compare returns ErrInvalidCredentials on mismatch.
	Compare(hash, password string) error
	Issue(user *domain.User) (Token, error)
	Parse(token string) (Claims, error)
}
