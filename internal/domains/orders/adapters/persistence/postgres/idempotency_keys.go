package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
)

type idempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128"`
	SaleID      int64     `gorm:"column:sale_id"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (idempotencyRecord) TableName() string { return "sale_idempotency_keys" }

func (r *idempotencyRecord) toPort() *ports.IdempotencyRecord {
	return &ports.IdempotencyRecord{
		Key:         r.Key,
		RequestHash: r.RequestHash,
		OrderID:     r.SaleID,
		CreatedAt:   r.CreatedAt,
	}
}

// GetIdempotencyRecord loads a record by key, returning nil when absent.
func (r *repo) GetIdempotencyRecord(ctx context.Context, key string) (*ports.IdempotencyRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record idempotencyRecord
	if err := r.db.WithContext(ctx).First(&record, "key = ?", key).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return record.toPort(), nil
}

// ClaimIdempotencyKey inserts with ON CONFLICT DO NOTHING. A concurrent
// transaction inserting the same key makes this insert wait for its outcome,
// so a skipped insert always finds the winner's committed row.
func (r *repo) ClaimIdempotencyKey(ctx context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	row := idempotencyRecord{
		Key:         record.Key,
		RequestHash: record.RequestHash,
		SaleID:      record.OrderID,
	}
	result := r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&row)
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 1 {
		return row.toPort(), nil
	}
	existing, err := r.GetIdempotencyRecord(ctx, record.Key)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, errors.New("idempotency key vanished after conflict")
	}
	return existing, ports.ErrIdempotencyKeyTaken
}
