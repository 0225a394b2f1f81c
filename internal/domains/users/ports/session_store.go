package ports

import (
	"context"
	"time"
)

// Session records an issued token so logout can revoke it.
type Session struct {
	TokenID   string
	UserID    int64
	Username  string
	ExpiresAt time.Time
}

// SessionStore abstracts session persistence.
type SessionStore interface {
	Save(ctx context.Context, session Session) error
	// Active reports whether tokenID was issued, not revoked and not expired.
	Active(ctx context.Context, tokenID string) (bool, error)
	Delete(ctx context.Context, tokenID string) error
	DeleteForUser(ctx context.Context, userID int64) error
}

// NoopSessionStore keeps nothing and treats every signed token as active.
var NoopSessionStore SessionStore = noopSessionStore{}

type noopSessionStore struct{}

func (noopSessionStore) Save(context.Context, Session) error          { return nil }
func (noopSessionStore) Active(context.Context, string) (bool, error) { return true, nil }
func (noopSessionStore) Delete(context.Context, string) error         { return nil }
func (noopSessionStore) DeleteForUser(context.Context, int64) error   { return nil }
