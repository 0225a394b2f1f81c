package types

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
)

// SaleItemInput is one requested line of a new sale. UnitPrice defaults to the catalog price.
type SaleItemInput struct {
	InventoryRecordID int64
	Quantity          int
	UnitPrice         *decimal.Decimal
}

// CreateSaleInput describes a checkout. Unless Hold is set the sale is
// completed, and stock debited, in the same transaction.
type CreateSaleInput struct {
	ActorID        int64
	CustomerID     *int64
	PaymentMethod  domain.PaymentMethod
	Items          []SaleItemInput
	Hold           bool
	IdempotencyKey string
}

type CreatePurchaseInput struct {
	ActorID    int64
	SupplierID *int64
}

// UpdateOrderInput patches order header fields. Nil fields are left alone.
type UpdateOrderInput struct {
	Status         *domain.Status
	PaymentMethod  *domain.PaymentMethod
	CounterpartyID *int64
	ActorID        *int64
}

// IsEmpty reports whether the patch carries no field at all.
func (in UpdateOrderInput) IsEmpty() bool {
	return in.Status == nil && in.PaymentMethod == nil && in.CounterpartyID == nil && in.ActorID == nil
}

type ListOrdersInput struct {
	Status         *domain.Status
	CounterpartyID *int64
	From           *time.Time
	To             *time.Time
}

type AddItemInput struct {
	OrderID           int64
	InventoryRecordID int64
	Quantity          int
	UnitPrice         *decimal.Decimal
}

// UpdateItemInput changes a line. UnitPrice is honoured for purchases only.
type UpdateItemInput struct {
	Quantity  *int
	UnitPrice *decimal.Decimal
}

type BulkStatusInput struct {
	IDs    []int64
	Status domain.Status
}

// BulkResult counts per-id outcomes of a bulk status update.
type BulkResult struct {
	Updated int `json:"updated"`
	Failed  int `json:"failed"`
}

// PaymentValidation answers whether a tendered amount settles a sale.
type PaymentValidation struct {
	Valid   bool
	Change  decimal.Decimal
	Message string
}
