package memory

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository keeps customers and suppliers in memory.
type Repository struct {
	mu      sync.RWMutex
	parties map[int64]*domain.Party
	nextID  int64
}

func NewRepository() *Repository {
	return &Repository{parties: map[int64]*domain.Party{}}
}

func (r *Repository) Save(_ context.Context, party *domain.Party) (*domain.Party, error) {
	if party == nil {
		return nil, errors.New("party is nil")
	}
	if err := party.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.parties {
		if id != party.ID && existing.Kind == party.Kind && party.SameContact(existing) {
			return nil, ports.ErrConflict
		}
	}
	clone := *party
	now := time.Now()
	if clone.ID == 0 {
		r.nextID++
		clone.ID = r.nextID
		clone.CreatedAt = now
	} else if clone.ID > r.nextID {
		r.nextID = clone.ID
	}
	clone.UpdatedAt = now
	r.parties[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) Get(_ context.Context, kind domain.Kind, id int64) (*domain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	party, ok := r.parties[id]
	if !ok || party.Kind != kind {
		return nil, ports.ErrNotFound
	}
	clone := *party
	return &clone, nil
}

func (r *Repository) List(_ context.Context, kind domain.Kind) ([]*domain.Party, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Party
	for _, party := range r.parties {
		if party.Kind == kind {
			clone := *party
			list = append(list, &clone)
		}
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) Delete(_ context.Context, kind domain.Kind, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	party, ok := r.parties[id]
	if !ok || party.Kind != kind {
		return ports.ErrNotFound
	}
	delete(r.parties, id)
	return nil
}
