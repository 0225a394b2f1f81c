package domain

// Kind selects between the two order flavours sharing one aggregate shape.
type Kind string

const (
	KindSale     Kind = "sale"
	KindPurchase Kind = "purchase"
)

func (k Kind) Valid() bool {
	return k == KindSale || k == KindPurchase
}

// StockSign is the direction completion moves stock: -1 for sales, +1 for purchases.
func (k Kind) StockSign() int {
	if k == KindPurchase {
		return 1
	}
	return -1
}

// ChecksStock reports whether adding items must respect available stock.
func (k Kind) ChecksStock() bool {
	return k == KindSale
}

// RequiresCounterparty is true for purchases, which always name a supplier.
func (k Kind) RequiresCounterparty() bool {
	return k == KindPurchase
}

// RequiresExplicitPrice is true for purchases, whose unit cost has no catalog default.
func (k Kind) RequiresExplicitPrice() bool {
	return k == KindPurchase
}

// Entity is the activity entity name for the kind.
func (k Kind) Entity() string {
	if k == KindPurchase {
		return "PURCHASE"
	}
	return "SALE"
}
