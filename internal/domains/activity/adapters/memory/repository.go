package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
)

// Repository keeps the audit trail in process memory.
type Repository struct {
	mu      sync.RWMutex
	entries []domain.Activity
	nextID  int64
}

func NewRepository() *Repository {
	return &Repository{}
}

func (r *Repository) Append(_ context.Context, entries []domain.Activity) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range entries {
		r.nextID++
		entry.ID = r.nextID
		entry.Details = cloneDetails(entry.Details)
		r.entries = append(r.entries, entry)
	}
	return nil
}

// Find returns matching entries newest first.
func (r *Repository) Find(_ context.Context, query ports.Query) ([]domain.Activity, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.Activity, 0)
	for _, entry := range r.entries {
		if query.UserID != nil && entry.UserID != *query.UserID {
			continue
		}
		if query.EntityType != "" && entry.EntityType != query.EntityType {
			continue
		}
		if query.Action != "" && entry.Action != query.Action {
			continue
		}
		if query.From != nil && entry.Timestamp.Before(*query.From) {
			continue
		}
		if query.To != nil && entry.Timestamp.After(*query.To) {
			continue
		}
		entry.Details = cloneDetails(entry.Details)
		out = append(out, entry)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Timestamp.Equal(out[j].Timestamp) {
			return out[i].ID > out[j].ID
		}
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if query.Limit > 0 && len(out) > query.Limit {
		out = out[:query.Limit]
	}
	return out, nil
}

func (r *Repository) PurgeBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.entries[:0]
	var purged int64
	for _, entry := range r.entries {
		if entry.Timestamp.Before(cutoff) {
			purged++
			continue
		}
		kept = append(kept, entry)
	}
	r.entries = kept
	return purged, nil
}

// CountActions ranks userID's actions by frequency, ties broken by name.
func (r *Repository) CountActions(_ context.Context, userID int64, limit int) ([]domain.ActionCount, error) {
	r.mu.RLock()
	counts := map[string]int64{}
	for _, entry := range r.entries {
		if entry.UserID == userID {
			counts[entry.Action]++
		}
	}
	r.mu.RUnlock()

	out := make([]domain.ActionCount, 0, len(counts))
	for action, count := range counts {
		out = append(out, domain.ActionCount{Action: action, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Action < out[j].Action
		}
		return out[i].Count > out[j].Count
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func cloneDetails(details map[string]any) map[string]any {
	if details == nil {
		return nil
	}
	out := make(map[string]any, len(details))
	for k, v := range details {
		out[k] = v
	}
	return out
}

var _ ports.Repository = (*Repository)(nil)
