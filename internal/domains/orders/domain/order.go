package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// LineItem is one inventory record entry within an order.
type LineItem struct {
	ID                int64
	OrderID           int64
	InventoryRecordID int64
	Quantity          int
	UnitPrice         decimal.Decimal
	Total             decimal.Decimal
}

// Order is the sale or purchase aggregate. Total is derived from Items and is
// only ever written by recalculateTotal.
type Order struct {
	ID             int64
	Kind           Kind
	CounterpartyID *int64
	ActorID        int64
	Total          decimal.Decimal
	Status         Status
	PaymentMethod  PaymentMethod
	Items          []LineItem
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewOrder builds an empty pending order.
func NewOrder(kind Kind, actorID int64, counterpartyID *int64, method PaymentMethod) (*Order, error) {
	if !kind.Valid() {
		return nil, ErrInvalidKind
	}
	if actorID <= 0 {
		return nil, ErrInvalidActor
	}
	if kind.RequiresCounterparty() && counterpartyID == nil {
		return nil, ErrCounterpartyRequired
	}
	order := &Order{
		Kind:           kind,
		ActorID:        actorID,
		CounterpartyID: counterpartyID,
		Status:         StatusPending,
		Total:          decimal.Zero,
	}
	if kind == KindSale {
		if method == "" {
			method = PaymentCash
		}
		if !method.Valid() {
			return nil, ErrInvalidPayment
		}
		order.PaymentMethod = method
	}
	return order, nil
}

// NewLineItem computes the line total for quantity units at unitPrice.
func NewLineItem(recordID int64, quantity int, unitPrice decimal.Decimal) (LineItem, error) {
	if quantity <= 0 {
		return LineItem{}, ErrInvalidQuantity
	}
	if !unitPrice.IsPositive() {
		return LineItem{}, ErrInvalidPrice
	}
	unitPrice = unitPrice.Round(2)
	return LineItem{
		InventoryRecordID: recordID,
		Quantity:          quantity,
		UnitPrice:         unitPrice,
		Total:             lineTotal(quantity, unitPrice),
	}, nil
}

// EnsureEditable fails unless items may still change.
func (o *Order) EnsureEditable() error {
	if o.Status != StatusPending {
		return ErrNotPending
	}
	return nil
}

// HasItemFor reports whether an item already references recordID.
func (o *Order) HasItemFor(recordID int64) bool {
	for i := range o.Items {
		if o.Items[i].InventoryRecordID == recordID {
			return true
		}
	}
	return false
}

// Item returns the item with the given id.
func (o *Order) Item(itemID int64) (*LineItem, bool) {
	for i := range o.Items {
		if o.Items[i].ID == itemID {
			return &o.Items[i], true
		}
	}
	return nil, false
}

// AddItem appends item and recomputes the total. The returned pointer aliases
// the stored element so callers can write back the persisted id.
func (o *Order) AddItem(item LineItem) (*LineItem, error) {
	if err := o.EnsureEditable(); err != nil {
		return nil, err
	}
	if item.Quantity <= 0 {
		return nil, ErrInvalidQuantity
	}
	if !item.UnitPrice.IsPositive() {
		return nil, ErrInvalidPrice
	}
	if o.HasItemFor(item.InventoryRecordID) {
		return nil, ErrDuplicateItem
	}
	item.OrderID = o.ID
	item.Total = lineTotal(item.Quantity, item.UnitPrice)
	o.Items = append(o.Items, item)
	if err := o.recalculateTotal(); err != nil {
		o.Items = o.Items[:len(o.Items)-1]
		return nil, err
	}
	return &o.Items[len(o.Items)-1], nil
}

// ReviseItem changes quantity and, when given, unit price at the existing
// line. It reports false when nothing changed.
func (o *Order) ReviseItem(itemID int64, quantity *int, unitPrice *decimal.Decimal) (*LineItem, bool, error) {
	item, ok := o.Item(itemID)
	if !ok {
		return nil, false, ErrItemMissing
	}
	if err := o.EnsureEditable(); err != nil {
		return nil, false, err
	}
	newQty := item.Quantity
	if quantity != nil {
		if *quantity <= 0 {
			return nil, false, ErrInvalidQuantity
		}
		newQty = *quantity
	}
	newPrice := item.UnitPrice
	if unitPrice != nil {
		if !unitPrice.IsPositive() {
			return nil, false, ErrInvalidPrice
		}
		newPrice = unitPrice.Round(2)
	}
	if newQty == item.Quantity && newPrice.Equal(item.UnitPrice) {
		return item, false, nil
	}
	prev := *item
	item.Quantity = newQty
	item.UnitPrice = newPrice
	item.Total = lineTotal(newQty, newPrice)
	if err := o.recalculateTotal(); err != nil {
		*item = prev
		return nil, false, err
	}
	return item, true, nil
}

// RemoveItem drops the item and subtracts its total.
func (o *Order) RemoveItem(itemID int64) (LineItem, error) {
	for i := range o.Items {
		if o.Items[i].ID != itemID {
			continue
		}
		if err := o.EnsureEditable(); err != nil {
			return LineItem{}, err
		}
		removed := o.Items[i]
		o.Items = append(o.Items[:i], o.Items[i+1:]...)
		if err := o.recalculateTotal(); err != nil {
			return LineItem{}, err
		}
		return removed, nil
	}
	return LineItem{}, ErrItemMissing
}

// TransitionTo moves the order to status. Same-status requests report false
// and leave the order untouched.
func (o *Order) TransitionTo(status Status) (bool, error) {
	if !status.Valid() {
		return false, ErrInvalidStatus
	}
	if status == o.Status {
		return false, nil
	}
	if !CanTransition(o.Status, status) {
		return false, ErrTransitionDenied
	}
	o.Status = status
	return true, nil
}

// ChangePaymentMethod is only meaningful for sales.
func (o *Order) ChangePaymentMethod(method PaymentMethod) error {
	if o.Kind != KindSale || !method.Valid() {
		return ErrInvalidPayment
	}
	o.PaymentMethod = method
	return nil
}

// ItemsTotal sums line totals without touching Total.
func (o *Order) ItemsTotal() decimal.Decimal {
	sum := decimal.Zero
	for i := range o.Items {
		sum = sum.Add(o.Items[i].Total)
	}
	return sum
}

func (o *Order) recalculateTotal() error {
	sum := o.ItemsTotal()
	if sum.IsNegative() {
		return ErrInvalidTotal
	}
	o.Total = sum
	return nil
}

func lineTotal(quantity int, unitPrice decimal.Decimal) decimal.Decimal {
	return unitPrice.Mul(decimal.NewFromInt(int64(quantity))).Round(2)
}
