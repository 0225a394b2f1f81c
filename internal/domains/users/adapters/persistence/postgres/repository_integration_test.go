//go:build integration

package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/Apurer/go-pos-backoffice/internal/domains/users/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/users/ports"
	"github.com/Apurer/go-pos-backoffice/internal/platform/migrations"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

func setupUsersPostgresContainer(t *testing.T) (*gorm.DB, func()) {
	ctx := context.Background()

	pgContainer, err := tcpostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcpostgres.WithDatabase("pos_test"),
		tcpostgres.WithUsername("test"),
		tcpostgres.WithPassword("test"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)

	dsn, err := pgContainer.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = migrations.Run(db)
	require.NoError(t, err)

	cleanup := func() {
		sqlDB, _ := db.DB()
		if sqlDB != nil {
			sqlDB.Close()
		}
		pgContainer.Terminate(ctx)
	}

	return db, cleanup
}

func newUser(t *testing.T, username, email string, role actor.Role) *domain.User {
	t.Helper()
	user, err := domain.NewUser("Test "+username, username, email, role)
	require.NoError(t, err)
	user.PasswordHash = "hash"
	return user
}

func TestRepository_SaveAndLookups(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newUser(t, "alice", "alice@example.com", actor.RoleManager))
	require.NoError(t, err)
	assert.NotZero(t, saved.ID)
	assert.Equal(t, actor.RoleManager, saved.Role)

	byName, err := repo.GetByUsername(ctx, "ALICE")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byName.ID)

	byEmail, err := repo.GetByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, byEmail.ID)

	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestRepository_DuplicateUsernameConflicts(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	_, err := repo.Save(ctx, newUser(t, "bob", "bob@example.com", actor.RoleCashier))
	require.NoError(t, err)
	_, err = repo.Save(ctx, newUser(t, "bob", "other@example.com", actor.RoleCashier))
	assert.ErrorIs(t, err, ports.ErrConflict)
}

func TestRepository_UpdateAndDelete(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	ctx := context.Background()

	saved, err := repo.Save(ctx, newUser(t, "carol", "carol@example.com", actor.RoleCashier))
	require.NoError(t, err)
	require.NoError(t, saved.SetRole(actor.RoleAdmin))
	updated, err := repo.Save(ctx, saved)
	require.NoError(t, err)
	assert.Equal(t, actor.RoleAdmin, updated.Role)
	assert.Equal(t, saved.ID, updated.ID)

	require.NoError(t, repo.Delete(ctx, saved.ID))
	_, err = repo.GetByID(ctx, saved.ID)
	assert.ErrorIs(t, err, ports.ErrNotFound)
	assert.ErrorIs(t, repo.Delete(ctx, saved.ID), ports.ErrNotFound)
}

func TestSessionStore_ActiveAndPurge(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}

	db, cleanup := setupUsersPostgresContainer(t)
	defer cleanup()

	repo := NewRepository(db)
	store := NewSessionStore(db)
	ctx := context.Background()

	user, err := repo.Save(ctx, newUser(t, "dave", "dave@example.com", actor.RoleCashier))
	require.NoError(t, err)

	require.NoError(t, store.Save(ctx, ports.Session{TokenID: "live", UserID: user.ID, Username: user.Username, ExpiresAt: time.Now().Add(time.Hour)}))
	require.NoError(t, store.Save(ctx, ports.Session{TokenID: "stale", UserID: user.ID, Username: user.Username, ExpiresAt: time.Now().Add(-time.Hour)}))

	active, err := store.Active(ctx, "live")
	require.NoError(t, err)
	assert.True(t, active)
	active, err = store.Active(ctx, "stale")
	require.NoError(t, err)
	assert.False(t, active)

	purged, err := store.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	require.NoError(t, store.DeleteForUser(ctx, user.ID))
	active, err = store.Active(ctx, "live")
	require.NoError(t, err)
	assert.False(t, active)
}
