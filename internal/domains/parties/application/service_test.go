package application

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/adapters/memory"
	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

func str(s string) *string { return &s }

func TestCreate_DuplicatePhoneConflicts(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())

	_, err := svc.Create(ctx, domain.KindCustomer, ports.PartyInput{Name: str("Ana"), Phone: str("555-1000")})
	require.NoError(t, err)

	_, err = svc.Create(ctx, domain.KindCustomer, ports.PartyInput{Name: str("Bo"), Phone: str("555-1000")})
	require.ErrorIs(t, err, ports.ErrConflict)

	// suppliers are a separate namespace
	_, err = svc.Create(ctx, domain.KindSupplier, ports.PartyInput{Name: str("Acme"), Phone: str("555-1000")})
	require.NoError(t, err)
}

func TestCreate_DuplicateEmailCaseInsensitive(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())

	_, err := svc.Create(ctx, domain.KindCustomer, ports.PartyInput{Name: str("Ana"), Email: str("ana@shop.io")})
	require.NoError(t, err)
	_, err = svc.Create(ctx, domain.KindCustomer, ports.PartyInput{Name: str("Ana B"), Email: str("ANA@shop.io")})
	require.ErrorIs(t, err, ports.ErrConflict)
}

func TestUpdate_KeepsUnsetFields(t *testing.T) {
	ctx := context.Background()
	svc := NewService(memory.NewRepository())
	created, err := svc.Create(ctx, domain.KindSupplier, ports.PartyInput{Name: str("Acme"), Phone: str("1"), Address: str("Main St")})
	require.NoError(t, err)

	updated, err := svc.Update(ctx, domain.KindSupplier, created.ID, ports.PartyInput{Name: str("Acme Ltd")})
	require.NoError(t, err)
	require.Equal(t, "Acme Ltd", updated.Name)
	require.Equal(t, "1", updated.Phone)
	require.Equal(t, "Main St", updated.Address)

	_, err = svc.Get(ctx, domain.KindCustomer, created.ID)
	require.ErrorIs(t, err, ports.ErrNotFound)
}

func TestCreate_InvalidEmail(t *testing.T) {
	svc := NewService(memory.NewRepository())
	_, err := svc.Create(context.Background(), domain.KindCustomer, ports.PartyInput{Name: str("Ana"), Email: str("nope")})
	require.ErrorIs(t, err, ErrInvalidInput)
}
