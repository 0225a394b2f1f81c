//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	"github.com/Apurer/go-pos-backoffice/internal/platform/postgres/pgtest"
)

func TestRepository_AppendFindPurge(t *testing.T) {
	db := pgtest.Start(t)
	repo := NewRepository(db)
	ctx := context.Background()

	now := time.Now().UTC().Truncate(time.Second)
	saleID := int64(42)
	require.NoError(t, repo.Append(ctx, []domain.Activity{
		{CorrelationID: "c-1", UserID: 7, UserName: "Cleo", UserRole: "cashier", Action: "SALE_CREATED", EntityType: "sale", EntityID: &saleID,
			Details: map[string]any{"total": "60.00", "itemCount": 1}, Timestamp: now.Add(-48 * time.Hour)},
		{CorrelationID: "c-2", UserID: 7, Action: "SALE_VIEWED", EntityType: "sale", EntityID: &saleID, Timestamp: now.Add(-time.Hour)},
		{CorrelationID: "c-3", UserID: 7, Action: "SALE_VIEWED", EntityType: "sale", Timestamp: now},
		{CorrelationID: "c-4", UserID: 1, Action: "USER_CREATED", EntityType: "user", Timestamp: now},
	}))

	userID := int64(7)
	entries, err := repo.Find(ctx, ports.Query{UserID: &userID, Limit: 2})
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "c-3", entries[0].CorrelationID)
	assert.Equal(t, "c-2", entries[1].CorrelationID)

	created, err := repo.Find(ctx, ports.Query{Action: "SALE_CREATED"})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, "60.00", created[0].Details["total"])
	assert.EqualValues(t, 1, created[0].Details["itemCount"])
	require.NotNil(t, created[0].EntityID)
	assert.Equal(t, saleID, *created[0].EntityID)

	counts, err := repo.CountActions(ctx, 7, 5)
	require.NoError(t, err)
	assert.Equal(t, []domain.ActionCount{{Action: "SALE_VIEWED", Count: 2}, {Action: "SALE_CREATED", Count: 1}}, counts)

	purged, err := repo.PurgeBefore(ctx, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	remaining, err := repo.Find(ctx, ports.Query{})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}
