package mapper

import (
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
)

type Activity struct {
	ID            int64          `json:"id"`
	CorrelationID string         `json:"correlationId,omitempty"`
	UserID        int64          `json:"userId"`
	UserName      string         `json:"userName,omitempty"`
	UserRole      string         `json:"userRole,omitempty"`
	Action        string         `json:"action"`
	EntityType    string         `json:"entityType,omitempty"`
	EntityID      *int64         `json:"entityId,omitempty"`
	Details       map[string]any `json:"details,omitempty"`
	IPAddress     string         `json:"ipAddress,omitempty"`
	UserAgent     string         `json:"userAgent,omitempty"`
	Timestamp     time.Time      `json:"timestamp"`
}

type ActionCount struct {
	Action string `json:"action"`
	Count  int64  `json:"count"`
}

type Summary struct {
	TodayCount    int64         `json:"todayCount"`
	CommonActions []ActionCount `json:"commonActions"`
}

func FromDomainActivities(entries []domain.Activity) []Activity {
	result := make([]Activity, 0, len(entries))
	for _, e := range entries {
		result = append(result, Activity{
			ID:            e.ID,
			CorrelationID: e.CorrelationID,
			UserID:        e.UserID,
			UserName:      e.UserName,
			UserRole:      e.UserRole,
			Action:        e.Action,
			EntityType:    e.EntityType,
			EntityID:      e.EntityID,
			Details:       e.Details,
			IPAddress:     e.IPAddress,
			UserAgent:     e.UserAgent,
			Timestamp:     e.Timestamp,
		})
	}
	return result
}

func FromDomainSummary(summary domain.Summary) Summary {
	out := Summary{TodayCount: summary.TodayCount, CommonActions: make([]ActionCount, 0, len(summary.CommonActions))}
	for _, c := range summary.CommonActions {
		out.CommonActions = append(out.CommonActions, ActionCount{Action: c.Action, Count: c.Count})
	}
	return out
}
