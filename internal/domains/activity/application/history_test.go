package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/adapters/memory"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

func seedHistory(t *testing.T, now time.Time) *memory.Repository {
	t.Helper()
	repo := memory.NewRepository()
	yesterday := now.Add(-24 * time.Hour)
	require.NoError(t, repo.Append(context.Background(), []domain.Activity{
		{UserID: 7, Action: "SALE_CREATED", Timestamp: yesterday},
		{UserID: 7, Action: "SALE_VIEWED", Timestamp: now.Add(-2 * time.Hour)},
		{UserID: 7, Action: "SALE_VIEWED", Timestamp: now.Add(-time.Hour)},
		{UserID: 7, Action: "SALE_CREATED", Timestamp: now.Add(-30 * time.Minute)},
		{UserID: 7, Action: "SALE_VIEWED", Timestamp: now.Add(-10 * time.Minute)},
		{UserID: 1, Action: "USER_CREATED", Timestamp: now.Add(-5 * time.Minute)},
	}))
	return repo
}

func TestUserHistory_OwnOrAdmin(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	history := NewHistory(seedHistory(t, now))
	ctx := context.Background()
	cashier := actor.Actor{ID: 7, Role: actor.RoleCashier}
	manager := actor.Actor{ID: 2, Role: actor.RoleManager}
	admin := actor.Actor{ID: 1, Role: actor.RoleAdmin}

	own, err := history.UserHistory(ctx, cashier, 7, 2)
	require.NoError(t, err)
	require.Len(t, own, 2)
	require.Equal(t, "SALE_VIEWED", own[0].Action)
	require.True(t, own[0].Timestamp.After(own[1].Timestamp))

	_, err = history.UserHistory(ctx, manager, 7, 0)
	require.ErrorIs(t, err, ErrForbidden)

	all, err := history.UserHistory(ctx, admin, 7, 0)
	require.NoError(t, err)
	require.Len(t, all, 5)

	_, err = history.UserHistory(ctx, cashier, 7, -1)
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSystemHistory_AdminOnly(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	history := NewHistory(seedHistory(t, now))
	ctx := context.Background()

	_, err := history.SystemHistory(ctx, actor.Actor{ID: 2, Role: actor.RoleManager}, ports.Query{})
	require.ErrorIs(t, err, ErrForbidden)

	entries, err := history.SystemHistory(ctx, actor.Actor{ID: 1, Role: actor.RoleAdmin}, ports.Query{Action: "SALE_CREATED"})
	require.NoError(t, err)
	require.Len(t, entries, 2)

	from, to := now, now.Add(-time.Hour)
	_, err = history.SystemHistory(ctx, actor.Actor{ID: 1, Role: actor.RoleAdmin}, ports.Query{From: &from, To: &to})
	require.ErrorIs(t, err, ErrInvalidInput)
}

func TestSummary_TodayAndCommonActions(t *testing.T) {
	now := time.Date(2024, 3, 1, 15, 0, 0, 0, time.UTC)
	history := NewHistory(seedHistory(t, now))
	history.now = func() time.Time { return now }

	summary, err := history.Summary(context.Background(), actor.Actor{ID: 7, Role: actor.RoleCashier})
	require.NoError(t, err)
	require.Equal(t, int64(4), summary.TodayCount)
	require.Equal(t, []domain.ActionCount{
		{Action: "SALE_VIEWED", Count: 3},
		{Action: "SALE_CREATED", Count: 2},
	}, summary.CommonActions)
}
