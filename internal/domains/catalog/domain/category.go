package domain

import (
	"strings"
	"time"
)

// Category groups products for browsing and reporting.
type Category struct {
	ID          int64
	Name        string
	Description string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewCategory(name, description string) (*Category, error) {
	c := &Category{Description: strings.TrimSpace(description)}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrEmptyName
	}
	c.Name = name
	return c, nil
}
