package ports

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrIdempotencyConflict indicates the same key was used with a different payload.
	ErrIdempotencyConflict = errors.New("idempotency key reused with a different request")
	// ErrIdempotencyKeyTaken is returned by ClaimIdempotencyKey when another
	// sale already holds the key. The transaction must be abandoned.
	ErrIdempotencyKeyTaken = errors.New("idempotency key already claimed")
)

// IdempotencyRecord ties a client key to the sale it produced.
type IdempotencyRecord struct {
	Key         string
	RequestHash string
	OrderID     int64
	CreatedAt   time.Time
}

// IdempotencyKeys is the part of Repository that binds checkout keys to sales.
// Claims made through a WithinTx repository commit or roll back with the sale.
type IdempotencyKeys interface {
	// GetIdempotencyRecord returns the record bound to key, or nil when unknown.
	GetIdempotencyRecord(ctx context.Context, key string) (*IdempotencyRecord, error)
	// ClaimIdempotencyKey binds record.Key to record.OrderID. When the key is
	// already bound it returns the stored record with ErrIdempotencyKeyTaken.
	ClaimIdempotencyKey(ctx context.Context, record IdempotencyRecord) (*IdempotencyRecord, error)
}
