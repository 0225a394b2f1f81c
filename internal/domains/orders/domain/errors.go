package domain

import "errors"

var (
	ErrInvalidKind          = errors.New("order kind must be sale or purchase")
	ErrInvalidActor         = errors.New("actor id must be greater than zero")
	ErrInvalidQuantity      = errors.New("quantity must be greater than zero")
	ErrInvalidPrice         = errors.New("unit price must be greater than zero")
	ErrPriceRequired        = errors.New("unit cost is required for purchase items")
	ErrInvalidTotal         = errors.New("order total must not be negative")
	ErrInvalidStatus        = errors.New("order status is invalid")
	ErrInvalidPayment       = errors.New("payment method is invalid")
	ErrEmptySale            = errors.New("sale must contain at least one item")
	ErrCounterpartyRequired = errors.New("purchase requires a supplier")
	ErrDuplicateItem        = errors.New("order already has an item for this inventory record")
	ErrNotPending           = errors.New("order items can only change while the order is pending")
	ErrTransitionDenied     = errors.New("order status transition is not allowed")
	ErrForbidden            = errors.New("operation not permitted for this role")
	ErrItemMissing          = errors.New("line item is not part of this order")
	ErrPriceLocked          = errors.New("sale item price is fixed when the item is added")
)
