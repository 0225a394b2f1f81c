package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
)

func TestRecorder_PersistsAndPublishes(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ports.NewMockRepository(ctrl)
	publisher := ports.NewMockPublisher(ctrl)

	var (
		mu        sync.Mutex
		persisted []domain.Activity
		published int
	)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entries []domain.Activity) error {
		mu.Lock()
		defer mu.Unlock()
		persisted = append(persisted, entries...)
		return nil
	}).MinTimes(1)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, entries []domain.Activity) error {
		mu.Lock()
		defer mu.Unlock()
		published += len(entries)
		return nil
	}).MinTimes(1)

	stamp := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	rec := NewRecorder(repo, WithPublisher(publisher), WithClock(func() time.Time { return stamp }))
	ctx := domain.WithRequestInfo(context.Background(), domain.RequestInfo{IPAddress: "10.0.0.1", UserAgent: "till/1.0"})

	rec.Record(ctx, domain.Activity{UserID: 7, Action: "SALE_CREATED"})
	rec.Record(ctx, domain.Activity{UserID: 7, Action: "SALE_VIEWED"})
	require.NoError(t, rec.Close(context.Background()))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, persisted, 2)
	require.Equal(t, 2, published)
	require.Equal(t, "SALE_CREATED", persisted[0].Action)
	require.NotEmpty(t, persisted[0].CorrelationID)
	require.NotEqual(t, persisted[0].CorrelationID, persisted[1].CorrelationID)
	require.Equal(t, "10.0.0.1", persisted[0].IPAddress)
	require.Equal(t, "till/1.0", persisted[0].UserAgent)
	require.Equal(t, stamp, persisted[0].Timestamp)
	require.Zero(t, rec.Dropped())
}

func TestRecorder_SwallowsWriteFailures(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := ports.NewMockRepository(ctrl)
	publisher := ports.NewMockPublisher(ctrl)
	repo.EXPECT().Append(gomock.Any(), gomock.Any()).Return(errors.New("db down")).MinTimes(1)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker down")).MinTimes(1)

	rec := NewRecorder(repo, WithPublisher(publisher))
	rec.Record(context.Background(), domain.Activity{UserID: 1, Action: "SALE_DELETED"})
	require.NoError(t, rec.Close(context.Background()))

	rec.Record(context.Background(), domain.Activity{UserID: 1, Action: "SALE_VIEWED"})
	require.Equal(t, int64(1), rec.Dropped())
}

type blockingRepository struct {
	release chan struct{}
	mu      sync.Mutex
	entries []domain.Activity
}

func (b *blockingRepository) Append(_ context.Context, entries []domain.Activity) error {
	<-b.release
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries = append(b.entries, entries...)
	return nil
}

func (b *blockingRepository) Find(context.Context, ports.Query) ([]domain.Activity, error) {
	return nil, nil
}

func (b *blockingRepository) PurgeBefore(context.Context, time.Time) (int64, error) {
	return 0, nil
}

func (b *blockingRepository) CountActions(context.Context, int64, int) ([]domain.ActionCount, error) {
	return nil, nil
}

func TestRecorder_DropsWhenBufferIsFull(t *testing.T) {
	repo := &blockingRepository{release: make(chan struct{})}
	rec := NewRecorder(repo, WithBufferSize(1))

	const total = 100
	for i := 0; i < total; i++ {
		rec.Record(context.Background(), domain.Activity{UserID: int64(i), Action: "PRODUCT_VIEWED"})
	}
	close(repo.release)
	require.NoError(t, rec.Close(context.Background()))

	repo.mu.Lock()
	defer repo.mu.Unlock()
	require.Positive(t, rec.Dropped())
	require.Equal(t, total, len(repo.entries)+int(rec.Dropped()))
}

func TestRecorder_CloseHonoursContext(t *testing.T) {
	repo := &blockingRepository{release: make(chan struct{})}
	rec := NewRecorder(repo)
	rec.Record(context.Background(), domain.Activity{UserID: 1, Action: "SALE_CREATED"})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	require.ErrorIs(t, rec.Close(ctx), context.DeadlineExceeded)

	close(repo.release)
	require.NoError(t, rec.Close(context.Background()))
}
