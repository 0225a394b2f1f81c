package application

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
)

const (
	DefaultBufferSize   = 256
	defaultWriteTimeout = 5 * time.Second
	maxBatch            = 50
)

// Recorder is an asynchronous Sink. Record never blocks: entries go onto a
// bounded queue drained by one worker that appends them to the repository
// and forwards them to the publisher. A full queue drops the entry.
type Recorder struct {
	repo      ports.Repository
	publisher ports.Publisher
	logger    *slog.Logger
	timeout   time.Duration
	now       func() time.Time

	mu      sync.RWMutex
	closed  bool
	queue   chan domain.Activity
	done    chan struct{}
	dropped atomic.Int64
}

type RecorderOption func(*Recorder)

// WithPublisher forwards every persisted batch to p as well.
func WithPublisher(p ports.Publisher) RecorderOption {
	return func(r *Recorder) { r.publisher = p }
}

func WithLogger(logger *slog.Logger) RecorderOption {
	return func(r *Recorder) {
		if logger != nil {
			r.logger = logger
		}
	}
}

func WithBufferSize(size int) RecorderOption {
	return func(r *Recorder) {
		if size > 0 {
			r.queue = make(chan domain.Activity, size)
		}
	}
}

func WithWriteTimeout(d time.Duration) RecorderOption {
	return func(r *Recorder) {
		if d > 0 {
			r.timeout = d
		}
	}
}

func WithClock(now func() time.Time) RecorderOption {
	return func(r *Recorder) {
		if now != nil {
			r.now = now
		}
	}
}

// NewRecorder starts the background worker. Call Close to drain it.
func NewRecorder(repo ports.Repository, opts ...RecorderOption) *Recorder {
	r := &Recorder{
		repo:    repo,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		timeout: defaultWriteTimeout,
		now:     time.Now,
		queue:   make(chan domain.Activity, DefaultBufferSize),
		done:    make(chan struct{}),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	go r.run()
	return r
}

// Record stamps entry with a correlation id, timestamp and request details
// from ctx and queues it.
func (r *Recorder) Record(ctx context.Context, entry domain.Activity) {
	if entry.CorrelationID == "" {
		entry.CorrelationID = uuid.NewString()
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = r.now()
	}
	if entry.IPAddress == "" && entry.UserAgent == "" {
		info := domain.RequestInfoFrom(ctx)
		entry.IPAddress, entry.UserAgent = info.IPAddress, info.UserAgent
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		r.dropped.Add(1)
		return
	}
	select {
	case r.queue <- entry:
	default:
		r.dropped.Add(1)
		r.logger.LogAttrs(ctx, slog.LevelWarn, "activity buffer full, dropping entry",
			slog.String("action", entry.Action), slog.Int64("user_id", entry.UserID))
	}
}

// Dropped reports how many entries were discarded because the queue was full or closed.
func (r *Recorder) Dropped() int64 {
	return r.dropped.Load()
}

// Close stops accepting entries and waits until queued ones are written or ctx ends.
func (r *Recorder) Close(ctx context.Context) error {
	r.mu.Lock()
	if !r.closed {
		r.closed = true
		close(r.queue)
	}
	r.mu.Unlock()

	select {
	case <-r.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Recorder) run() {
	defer close(r.done)
	for entry := range r.queue {
		batch := []domain.Activity{entry}
	drain:
		for len(batch) < maxBatch {
			select {
			case next, ok := <-r.queue:
				if !ok {
					break drain
				}
				batch = append(batch, next)
			default:
				break drain
			}
		}
		r.write(batch)
	}
}

func (r *Recorder) write(batch []domain.Activity) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	if err := r.repo.Append(ctx, batch); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to persist activities",
			slog.Int("count", len(batch)), slog.String("error", err.Error()))
	}
	if r.publisher == nil {
		return
	}
	if err := r.publisher.Publish(ctx, batch); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelError, "failed to publish activities",
			slog.Int("count", len(batch)), slog.String("error", err.Error()))
	}
}

var _ ports.Sink = (*Recorder)(nil)
