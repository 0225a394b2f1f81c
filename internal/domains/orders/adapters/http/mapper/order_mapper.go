package mapper

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/application/types"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
)

// Item is the transport form of a line item. Money is rendered with two decimals.
type Item struct {
	ID                int64  `json:"id"`
	OrderID           int64  `json:"orderId"`
	InventoryRecordID int64  `json:"inventoryRecordId"`
	Quantity          int    `json:"quantity"`
	UnitPrice         string `json:"unitPrice"`
	Total             string `json:"total"`
}

// Order is the transport form shared by sales and purchases.
type Order struct {
	ID             int64     `json:"id"`
	Total          string    `json:"total"`
	Status         string    `json:"status"`
	PaymentMethod  string    `json:"paymentMethod,omitempty"`
	CounterpartyID *int64    `json:"counterpartyId,omitempty"`
	ActorID        int64     `json:"actorId"`
	CreatedAt      time.Time `json:"createdAt"`
	UpdatedAt      time.Time `json:"updatedAt"`
	Items          []Item    `json:"items,omitempty"`
}

type SaleLine struct {
	InventoryRecordID int64            `json:"inventoryRecordId" binding:"required"`
	Quantity          int              `json:"quantity" binding:"required"`
	UnitPrice         *decimal.Decimal `json:"unitPrice,omitempty"`
}

// CreateSale is the checkout payload. Hold keeps the sale pending.
type CreateSale struct {
	CustomerID    *int64     `json:"customerId,omitempty"`
	PaymentMethod string     `json:"paymentMethod,omitempty"`
	Items         []SaleLine `json:"items"`
	Hold          bool       `json:"hold,omitempty"`
}

type CreatePurchase struct {
	SupplierID *int64 `json:"supplierId"`
}

// UpdateOrder keeps field presence so absent fields stay untouched.
type UpdateOrder struct {
	Status         *string `json:"status,omitempty"`
	PaymentMethod  *string `json:"paymentMethod,omitempty"`
	CounterpartyID *int64  `json:"counterpartyId,omitempty"`
	ActorID        *int64  `json:"actorId,omitempty"`
}

type BulkStatus struct {
	IDs    []int64 `json:"ids" binding:"required"`
	Status string  `json:"status" binding:"required"`
}

type AddItem struct {
	OrderID           int64            `json:"orderId" binding:"required"`
	InventoryRecordID int64            `json:"inventoryRecordId" binding:"required"`
	Quantity          int              `json:"quantity"`
	UnitPrice         *decimal.Decimal `json:"unitPrice,omitempty"`
}

type UpdateItem struct {
	Quantity  *int             `json:"quantity,omitempty"`
	UnitPrice *decimal.Decimal `json:"unitPrice,omitempty"`
}

type ValidatePayment struct {
	SaleID int64           `json:"saleId" binding:"required"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentValidation struct {
	Valid   bool   `json:"valid"`
	Change  string `json:"change"`
	Message string `json:"message"`
}

func ToCreateSaleInput(payload CreateSale, idempotencyKey string) (types.CreateSaleInput, error) {
	input := types.CreateSaleInput{
		CustomerID:     payload.CustomerID,
		Hold:           payload.Hold,
		IdempotencyKey: idempotencyKey,
		Items:          make([]types.SaleItemInput, 0, len(payload.Items)),
	}
	if payload.PaymentMethod != "" {
		method, err := domain.ParsePaymentMethod(payload.PaymentMethod)
		if err != nil {
			return types.CreateSaleInput{}, err
		}
		input.PaymentMethod = method
	}
	for _, line := range payload.Items {
		input.Items = append(input.Items, types.SaleItemInput{
			InventoryRecordID: line.InventoryRecordID,
			Quantity:          line.Quantity,
			UnitPrice:         line.UnitPrice,
		})
	}
	return input, nil
}

func ToUpdateOrderInput(payload UpdateOrder) (types.UpdateOrderInput, error) {
	input := types.UpdateOrderInput{
		CounterpartyID: payload.CounterpartyID,
		ActorID:        payload.ActorID,
	}
	if payload.Status != nil {
		status, err := domain.ParseStatus(*payload.Status)
		if err != nil {
			return types.UpdateOrderInput{}, err
		}
		input.Status = &status
	}
	if payload.PaymentMethod != nil {
		method, err := domain.ParsePaymentMethod(*payload.PaymentMethod)
		if err != nil {
			return types.UpdateOrderInput{}, err
		}
		input.PaymentMethod = &method
	}
	return input, nil
}

// ToBulkStatusInput refuses an unknown status for the whole batch; only
// per-id failures are counted.
func ToBulkStatusInput(payload BulkStatus) (types.BulkStatusInput, error) {
	status, err := domain.ParseStatus(payload.Status)
	if err != nil {
		return types.BulkStatusInput{}, err
	}
	return types.BulkStatusInput{IDs: payload.IDs, Status: status}, nil
}

func ToAddItemInput(payload AddItem) types.AddItemInput {
	return types.AddItemInput{
		OrderID:           payload.OrderID,
		InventoryRecordID: payload.InventoryRecordID,
		Quantity:          payload.Quantity,
		UnitPrice:         payload.UnitPrice,
	}
}

func ToUpdateItemInput(payload UpdateItem) types.UpdateItemInput {
	return types.UpdateItemInput{Quantity: payload.Quantity, UnitPrice: payload.UnitPrice}
}

func FromDomainItem(item *domain.LineItem) Item {
	if item == nil {
		return Item{}
	}
	return Item{
		ID:                item.ID,
		OrderID:           item.OrderID,
		InventoryRecordID: item.InventoryRecordID,
		Quantity:          item.Quantity,
		UnitPrice:         item.UnitPrice.StringFixed(2),
		Total:             item.Total.StringFixed(2),
	}
}

func FromDomainItems(items []*domain.LineItem) []Item {
	result := make([]Item, 0, len(items))
	for _, item := range items {
		result = append(result, FromDomainItem(item))
	}
	return result
}

// FromDomainOrder converts an order, including its items when loaded.
func FromDomainOrder(order *domain.Order) Order {
	if order == nil {
		return Order{}
	}
	out := Order{
		ID:             order.ID,
		Total:          order.Total.StringFixed(2),
		Status:         string(order.Status),
		PaymentMethod:  string(order.PaymentMethod),
		CounterpartyID: order.CounterpartyID,
		ActorID:        order.ActorID,
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	for i := range order.Items {
		out.Items = append(out.Items, FromDomainItem(&order.Items[i]))
	}
	return out
}

func FromDomainOrders(orders []*domain.Order) []Order {
	result := make([]Order, 0, len(orders))
	for _, order := range orders {
		result = append(result, FromDomainOrder(order))
	}
	return result
}

func FromPaymentValidation(v types.PaymentValidation) PaymentValidation {
	return PaymentValidation{Valid: v.Valid, Change: v.Change.StringFixed(2), Message: v.Message}
}
