package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
)

var _ ports.SessionStore = (*SessionStore)(nil)

// SessionStore is an in-memory SessionStore keyed by token id.
type SessionStore struct {
	sessions sync.Map
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session ports.Session) error {
	s.sessions.Store(session.TokenID, session)
	return nil
}

func (s *SessionStore) Active(_ context.Context, tokenID string) (bool, error) {
	value, ok := s.sessions.Load(tokenID)
	if !ok {
		return false, nil
	}
	return value.(ports.Session).ExpiresAt.After(s.now()), nil
}

func (s *SessionStore) Delete(_ context.Context, tokenID string) error {
	s.sessions.Delete(tokenID)
	return nil
}

func (s *SessionStore) DeleteForUser(_ context.Context, userID int64) error {
	s.sessions.Range(func(key, value any) bool {
		if value.(ports.Session).UserID == userID {
			s.sessions.Delete(key)
		}
		return true
	})
	return nil
}

// PurgeExpired drops sessions past their expiry.
func (s *SessionStore) PurgeExpired(_ context.Context) (int64, error) {
	var purged int64
	now := s.now()
	s.sessions.Range(func(key, value any) bool {
		if !value.(ports.Session).ExpiresAt.After(now) {
			s.sessions.Delete(key)
			purged++
		}
		return true
	})
	return purged, nil
}
