package ports

//go:generate mockgen -source=ports.go -destination=ports_mock.go -package=ports

import (
	"context"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
)

// Sink accepts activities without blocking the caller. Failures are the
// sink's problem and never reach the operation being audited.
type Sink interface {
	Record(ctx context.Context, entry domain.Activity)
}

// NoopSink discards everything.
var NoopSink Sink = noopSink{}

type noopSink struct{}

func (noopSink) Record(context.Context, domain.Activity) {}

// Query filters activity history.
type Query struct {
	UserID     *int64
	EntityType string
	Action     string
	From       *time.Time
	To         *time.Time
	Limit      int
}

// Repository stores activities for history queries.
type Repository interface {
	Append(ctx context.Context, entries []domain.Activity) error
	Find(ctx context.Context, query Query) ([]domain.Activity, error)
	PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error)
	CountActions(ctx context.Context, userID int64, limit int) ([]domain.ActionCount, error)
}

// Publisher forwards activities to an external stream.
type Publisher interface {
	Publish(ctx context.Context, entries []domain.Activity) error
}
