package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/activity/ports"
)

const appendBatchSize = 100

// Repository stores the audit trail in PostgreSQL. Caller owns DB lifecycle.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type activityRecord struct {
	ID            int64          `gorm:"primaryKey;column:id"`
	CorrelationID string         `gorm:"column:correlation_id;size:64"`
	UserID        int64          `gorm:"column:user_id;index"`
	UserName      string         `gorm:"column:user_name"`
	UserRole      string         `gorm:"column:user_role;size:16"`
	Action        string         `gorm:"column:action;size:64;index"`
	EntityType    string         `gorm:"column:entity_type;size:32"`
	EntityID      *int64         `gorm:"column:entity_id"`
	Details       map[string]any `gorm:"column:details;type:jsonb;serializer:json"`
	IPAddress     string         `gorm:"column:ip_address;size:64"`
	UserAgent     string         `gorm:"column:user_agent"`
	Timestamp     time.Time      `gorm:"column:occurred_at;index"`
}

func (activityRecord) TableName() string { return "user_activities" }

func (r *Repository) Append(ctx context.Context, entries []domain.Activity) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	records := make([]activityRecord, len(entries))
	for i, entry := range entries {
		records[i] = toRecord(entry)
	}
	return r.db.WithContext(ctx).CreateInBatches(&records, appendBatchSize).Error
}

func (r *Repository) Find(ctx context.Context, query ports.Query) ([]domain.Activity, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	q := r.db.WithContext(ctx).Model(&activityRecord{})
	if query.UserID != nil {
		q = q.Where("user_id = ?", *query.UserID)
	}
	if query.EntityType != "" {
		q = q.Where("entity_type = ?", query.EntityType)
	}
	if query.Action != "" {
		q = q.Where("action = ?", query.Action)
	}
	if query.From != nil {
		q = q.Where("occurred_at >= ?", *query.From)
	}
	if query.To != nil {
		q = q.Where("occurred_at <= ?", *query.To)
	}
	if query.Limit > 0 {
		q = q.Limit(query.Limit)
	}
	var records []activityRecord
	if err := q.Order("occurred_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]domain.Activity, len(records))
	for i := range records {
		out[i] = records[i].toDomain()
	}
	return out, nil
}

func (r *Repository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := r.ensureDB(); err != nil {
		return 0, err
	}
	res := r.db.WithContext(ctx).Where("occurred_at < ?", cutoff).Delete(&activityRecord{})
	return res.RowsAffected, res.Error
}

func (r *Repository) CountActions(ctx context.Context, userID int64, limit int) ([]domain.ActionCount, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var rows []struct {
		Action string
		Count  int64
	}
	q := r.db.WithContext(ctx).Model(&activityRecord{}).
		Select("action, COUNT(*) AS count").
		Where("user_id = ?", userID).
		Group("action").
		Order("count DESC, action ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Scan(&rows).Error; err != nil {
		return nil, err
	}
	out := make([]domain.ActionCount, len(rows))
	for i, row := range rows {
		out[i] = domain.ActionCount{Action: row.Action, Count: row.Count}
	}
	return out, nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres activity repository not initialized")
	}
	return nil
}

func toRecord(entry domain.Activity) activityRecord {
	return activityRecord{
		CorrelationID: entry.CorrelationID,
		UserID:        entry.UserID,
		UserName:      entry.UserName,
		UserRole:      entry.UserRole,
		Action:        entry.Action,
		EntityType:    entry.EntityType,
		EntityID:      entry.EntityID,
		Details:       entry.Details,
		IPAddress:     entry.IPAddress,
		UserAgent:     entry.UserAgent,
		Timestamp:     entry.Timestamp.UTC(),
	}
}

func (rec activityRecord) toDomain() domain.Activity {
	return domain.Activity{
		ID:            rec.ID,
		CorrelationID: rec.CorrelationID,
		UserID:        rec.UserID,
		UserName:      rec.UserName,
		UserRole:      rec.UserRole,
		Action:        rec.Action,
		EntityType:    rec.EntityType,
		EntityID:      rec.EntityID,
		Details:       rec.Details,
		IPAddress:     rec.IPAddress,
		UserAgent:     rec.UserAgent,
		Timestamp:     rec.Timestamp,
	}
}

var _ ports.Repository = (*Repository)(nil)
