package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
	"github.com/Apurer/go-pos-backoffice/internal/shared/actor"
)

var (
	ErrForbidden    = errors.New("forbidden")
	ErrInvalidInput = errors.New("invalid activity query")
)

const (
	defaultUserLimit   = 50
	defaultSystemLimit = 100
	maxLimit           = 500
	commonActionLimit  = 5
)

// History answers audit trail queries.
type History struct {
	repo ports.Repository
	now  func() time.Time
}

func NewHistory(repo ports.Repository) *History {
	return &History{repo: repo, now: time.Now}
}

// UserHistory returns userID's most recent activities. Only admins may read
// someone else's trail.
func (h *History) UserHistory(ctx context.Context, a actor.Actor, userID int64, limit int) ([]domain.Activity, error) {
	if userID != a.ID && !a.IsAdmin() {
		return nil, ErrForbidden
	}
	limit, err := clampLimit(limit, defaultUserLimit)
	if err != nil {
		return nil, err
	}
	return h.repo.Find(ctx, ports.Query{UserID: &userID, Limit: limit})
}

// SystemHistory returns the latest activities across all users.
func (h *History) SystemHistory(ctx context.Context, a actor.Actor, query ports.Query) ([]domain.Activity, error) {
	if !a.IsAdmin() {
		return nil, ErrForbidden
	}
	limit, err := clampLimit(query.Limit, defaultSystemLimit)
	if err != nil {
		return nil, err
	}
	query.Limit = limit
	if query.From != nil && query.To != nil && query.To.Before(*query.From) {
		return nil, fmt.Errorf("%w: end must not be before start", ErrInvalidInput)
	}
	return h.repo.Find(ctx, query)
}

// Summary counts the caller's activities today and their most common actions.
func (h *History) Summary(ctx context.Context, a actor.Actor) (domain.Summary, error) {
	now := h.now()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	userID := a.ID
	today, err := h.repo.Find(ctx, ports.Query{UserID: &userID, From: &startOfDay})
	if err != nil {
		return domain.Summary{}, err
	}
	common, err := h.repo.CountActions(ctx, userID, commonActionLimit)
	if err != nil {
		return domain.Summary{}, err
	}
	return domain.Summary{TodayCount: int64(len(today)), CommonActions: common}, nil
}

func clampLimit(limit, fallback int) (int, error) {
	switch {
	case limit < 0:
		return 0, fmt.Errorf("%w: limit must not be negative", ErrInvalidInput)
	case limit == 0:
		return fallback, nil
	case limit > maxLimit:
		return maxLimit, nil
	default:
		return limit, nil
	}
}
