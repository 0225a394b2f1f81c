package actor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRole_AtLeast(t *testing.T) {
	require.True(t, RoleAdmin.AtLeast(RoleManager))
	require.True(t, RoleManager.AtLeast(RoleManager))
	require.False(t, RoleCashier.AtLeast(RoleManager))
	require.False(t, Role("guest").AtLeast(Role("guest")))
}

func TestParseRole(t *testing.T) {
	role, err := ParseRole(" Manager ")
	require.NoError(t, err)
	require.Equal(t, RoleManager, role)

	_, err = ParseRole("owner")
	require.ErrorIs(t, err, ErrInvalidRole)
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithActor(context.Background(), Actor{ID: 7, Role: RoleCashier})
	got, ok := FromContext(ctx)
	require.True(t, ok)
	require.Equal(t, int64(7), got.ID)

	_, ok = FromContext(context.Background())
	require.False(t, ok)
}
