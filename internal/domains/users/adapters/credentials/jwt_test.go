package credentials

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

func TestHashAndCompare(t *testing.T) {
	svc, err := New("secret", WithCost(bcrypt.MinCost))
	require.NoError(t, err)

	hash, err := svc.Hash("password123")
	require.NoError(t, err)
	require.NotEqual(t, "password123", hash)
	require.NoError(t, svc.Compare(hash, "password123"))
	require.ErrorIs(t, svc.Compare(hash, "wrong"), ports.ErrInvalidCredentials)
}

func TestIssueAndParse(t *testing.T) {
	svc, err := New("secret", WithTTL(time.Hour))
	require.NoError(t, err)
	user := &domain.User{ID: 7, Username: "cashier7", Role: actor.RoleCashier}

	token, err := svc.Issue(user)
	require.NoError(t, err)
	require.NotEmpty(t, token.ID)

	claims, err := svc.Parse(token.Value)
	require.NoError(t, err)
	require.Equal(t, int64(7), claims.UserID)
	require.Equal(t, actor.RoleCashier, claims.Role)
	require.Equal(t, token.ID, claims.TokenID)
}

func TestParse_RejectsExpiredAndForeignTokens(t *testing.T) {
	issuedAt := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc, err := New("secret", WithTTL(time.Minute), WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	token, err := svc.Issue(&domain.User{ID: 1, Username: "admin", Role: actor.RoleAdmin})
	require.NoError(t, err)

	later, err := New("secret", WithClock(func() time.Time { return issuedAt.Add(time.Hour) }))
	require.NoError(t, err)
	_, err = later.Parse(token.Value)
	require.ErrorIs(t, err, ports.ErrInvalidToken)

	other, err := New("other-secret", WithClock(func() time.Time { return issuedAt }))
	require.NoError(t, err)
	_, err = other.Parse(token.Value)
	require.ErrorIs(t, err, ports.ErrInvalidToken)
}

func TestNew_RequiresSecret(t *testing.T) {
	_, err := New("")
	require.Error(t, err)
}
