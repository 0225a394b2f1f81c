package domain

import (
	"errors"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

var (
	ErrEmptyName         = errors.New("name is required")
	ErrNegativePrice     = errors.New("price must not be negative")
	ErrNegativeStock     = errors.New("stock must not be negative")
	ErrInsufficientStock = errors.New("insufficient stock")
)

// Product is the inventory record sold and restocked through orders.
type Product struct {
	ID         int64
	Name       string
	Barcode    string
	CategoryID *int64
	Price      decimal.Decimal
	Stock      int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// NewProduct validates and constructs a Product.
func NewProduct(name, barcode string, categoryID *int64, price decimal.Decimal, stock int) (*Product, error) {
	p := &Product{Barcode: strings.TrimSpace(barcode), CategoryID: categoryID}
	if err := p.Rename(name); err != nil {
		return nil, err
	}
	if err := p.Reprice(price); err != nil {
		return nil, err
	}
	if err := p.SetStock(stock); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Product) Rename(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyName
	}
	p.Name = name
	return nil
}

func (p *Product) Reprice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	p.Price = price.Round(2)
	return nil
}

// SetStock is a direct catalog correction, not an order effect.
func (p *Product) SetStock(stock int) error {
	if stock < 0 {
		return ErrNegativeStock
	}
	p.Stock = stock
	return nil
}

// HasStock reports whether qty units can be debited.
func (p *Product) HasStock(qty int) bool {
	return qty <= p.Stock
}

// AdjustStock applies a signed delta and refuses to go below zero.
func (p *Product) AdjustStock(delta int) error {
	if p.Stock+delta < 0 {
		return ErrInsufficientStock
	}
	p.Stock += delta
	return nil
}

// Validate re-applies invariants before persistence.
func (p *Product) Validate() error {
	if strings.TrimSpace(p.Name) == "" {
		return ErrEmptyName
	}
	if p.Price.IsNegative() {
		return ErrNegativePrice
	}
	if p.Stock < 0 {
		return ErrNegativeStock
	}
	return nil
}

// IsLowStock reports whether stock fell under threshold.
func (p *Product) IsLowStock(threshold int) bool {
	return p.Stock < threshold
}
