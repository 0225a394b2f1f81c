package domain

import (
	"context"
	"time"
)

// Activity is one audit trail entry.
type Activity struct {
	ID            int64
	CorrelationID string
	UserID        int64
	UserName      string
	UserRole      string
	Action        string
	EntityType    string
	EntityID      *int64
	Details       map[string]any
	IPAddress     string
	UserAgent     string
	Timestamp     time.Time
}

// ActionCount is how often one user performed an action.
type ActionCount struct {
	Action string
	Count  int64
}

// Summary is a user's activity at a glance.
type Summary struct {
	TodayCount    int64
	CommonActions []ActionCount
}

// RequestInfo identifies the client behind an activity.
type RequestInfo struct {
	IPAddress string
	UserAgent string
}

type requestInfoKey struct{}

// WithRequestInfo attaches client details to ctx for later activity records.
func WithRequestInfo(ctx context.Context, info RequestInfo) context.Context {
	return context.WithValue(ctx, requestInfoKey{}, info)
}

func RequestInfoFrom(ctx context.Context) RequestInfo {
	info, _ := ctx.Value(requestInfoKey{}).(RequestInfo)
	return info
}
