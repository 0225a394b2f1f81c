package domain

import (
	"errors"
	"strings"
	"time"
)

// Kind distinguishes the counterparty role of a party.
type Kind string

const (
	KindCustomer Kind = "customer"
	KindSupplier Kind = "supplier"
)

var (
	ErrEmptyName    = errors.New("name is required")
	ErrInvalidEmail = errors.New("email must contain '@'")
	ErrInvalidKind  = errors.New("party kind must be customer or supplier")
)

// Party is a customer buying from, or a supplier selling to, the shop.
type Party struct {
	ID        int64
	Kind      Kind
	Name      string
	Phone     string
	Email     string
	Address   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

func NewParty(kind Kind, name, phone, email, address string) (*Party, error) {
	p := &Party{Kind: kind}
	if err := p.Update(name, phone, email, address); err != nil {
		return nil, err
	}
	return p, nil
}

// Update replaces contact fields after trimming.
func (p *Party) Update(name, phone, email, address string) error {
	p.Name = strings.TrimSpace(name)
	p.Phone = strings.TrimSpace(phone)
	p.Email = strings.ToLower(strings.TrimSpace(email))
	p.Address = strings.TrimSpace(address)
	return p.Validate()
}

func (p *Party) Validate() error {
	if p.Kind != KindCustomer && p.Kind != KindSupplier {
		return ErrInvalidKind
	}
	if p.Name == "" {
		return ErrEmptyName
	}
	if p.Email != "" && !strings.Contains(p.Email, "@") {
		return ErrInvalidEmail
	}
	return nil
}

// SameContact reports whether other shares a phone or email with p.
func (p *Party) SameContact(other *Party) bool {
	if p.Phone != "" && p.Phone == other.Phone {
		return true
	}
	return p.Email != "" && p.Email == other.Email
}
