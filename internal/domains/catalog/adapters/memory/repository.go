package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/catalog/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository is an in-memory catalog adapter.
type Repository struct {
	mu             sync.RWMutex
	products       map[int64]*domain.Product
	categories     map[int64]*domain.Category
	nextProductID  int64
	nextCategoryID int64
	now            func() time.Time
	references     []ReferenceCheck
}

// ReferenceCheck reports whether something outside the catalog still points
// at a product. It runs with the repository lock held.
type ReferenceCheck func(productID int64) bool

type Option func(*Repository)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(r *Repository) {
		if now != nil {
			r.now = now
		}
	}
}

func NewRepository(opts ...Option) *Repository {
	r := &Repository{
		products:   map[int64]*domain.Product{},
		categories: map[int64]*domain.Category{},
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Repository) SaveProduct(_ context.Context, product *domain.Product) (*domain.Product, error) {
	if product == nil {
		return nil, errors.New("product is nil")
	}
	if err := product.Validate(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.products {
		if id == product.ID {
			continue
		}
		if strings.EqualFold(existing.Name, product.Name) {
			return nil, ports.ErrConflict
		}
		if product.Barcode != "" && existing.Barcode == product.Barcode {
			return nil, ports.ErrConflict
		}
	}
	clone := cloneProduct(product)
	now := r.now()
	if clone.ID == 0 {
		r.nextProductID++
		clone.ID = r.nextProductID
		clone.CreatedAt = now
	} else {
		if clone.ID > r.nextProductID {
			r.nextProductID = clone.ID
		}
		if prev, ok := r.products[clone.ID]; ok {
			clone.CreatedAt = prev.CreatedAt
		} else if clone.CreatedAt.IsZero() {
			clone.CreatedAt = now
		}
	}
	clone.UpdatedAt = now
	r.products[clone.ID] = clone
	return cloneProduct(clone), nil
}

func (r *Repository) GetProduct(_ context.Context, id int64) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return cloneProduct(product), nil
}

func (r *Repository) GetProductByBarcode(_ context.Context, barcode string) (*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, product := range r.products {
		if product.Barcode != "" && product.Barcode == barcode {
			return cloneProduct(product), nil
		}
	}
	return nil, ports.ErrNotFound
}

func (r *Repository) ListProducts(_ context.Context, filter ports.ProductFilter) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var wanted map[int64]struct{}
	if len(filter.IDs) > 0 {
		wanted = make(map[int64]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			wanted[id] = struct{}{}
		}
	}
	search := strings.ToLower(strings.TrimSpace(filter.Search))
	list := make([]*domain.Product, 0, len(r.products))
	for _, product := range r.products {
		if wanted != nil {
			if _, ok := wanted[product.ID]; !ok {
				continue
			}
		}
		if filter.CategoryID != nil && (product.CategoryID == nil || *product.CategoryID != *filter.CategoryID) {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(product.Name), search) && product.Barcode != search {
			continue
		}
		list = append(list, cloneProduct(product))
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

func (r *Repository) ListLowStock(_ context.Context, threshold int) ([]*domain.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var list []*domain.Product
	for _, product := range r.products {
		if product.IsLowStock(threshold) {
			list = append(list, cloneProduct(product))
		}
	}
	sort.Slice(list, func(i, j int) bool {
		if list[i].Stock == list[j].Stock {
			return list[i].ID < list[j].ID
		}
		return list[i].Stock < list[j].Stock
	})
	return list, nil
}

// RestrictDelete makes DeleteProduct refuse products check reports as
// referenced, as the ON DELETE RESTRICT keys on the item tables do.
func (r *Repository) RestrictDelete(check ReferenceCheck) {
	if check == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.references = append(r.references, check)
}

func (r *Repository) DeleteProduct(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.products[id]; !ok {
		return ports.ErrNotFound
	}
	for _, referenced := range r.references {
		if referenced(id) {
			return ports.ErrProductInUse
		}
	}
	delete(r.products, id)
	return nil
}

func (r *Repository) SaveCategory(_ context.Context, category *domain.Category) (*domain.Category, error) {
	if category == nil {
		return nil, errors.New("category is nil")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, existing := range r.categories {
		if id != category.ID && strings.EqualFold(existing.Name, category.Name) {
			return nil, ports.ErrConflict
		}
	}
	clone := *category
	now := r.now()
	if clone.ID == 0 {
		r.nextCategoryID++
		clone.ID = r.nextCategoryID
		clone.CreatedAt = now
	} else if clone.ID > r.nextCategoryID {
		r.nextCategoryID = clone.ID
	}
	clone.UpdatedAt = now
	r.categories[clone.ID] = &clone
	out := clone
	return &out, nil
}

func (r *Repository) GetCategory(_ context.Context, id int64) (*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	category, ok := r.categories[id]
	if !ok {
		return nil, ports.ErrCategoryNotFound
	}
	clone := *category
	return &clone, nil
}

func (r *Repository) ListCategories(_ context.Context) ([]*domain.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	list := make([]*domain.Category, 0, len(r.categories))
	for _, category := range r.categories {
		clone := *category
		list = append(list, &clone)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].ID < list[j].ID })
	return list, nil
}

// DeleteCategory detaches products from the category, mirroring ON DELETE SET NULL.
func (r *Repository) DeleteCategory(_ context.Context, id int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.categories[id]; !ok {
		return ports.ErrCategoryNotFound
	}
	delete(r.categories, id)
	for _, product := range r.products {
		if product.CategoryID != nil && *product.CategoryID == id {
			product.CategoryID = nil
		}
	}
	return nil
}

// Transact runs fn against a private copy of the product table and commits
// the copy only when fn returns nil.
func (r *Repository) Transact(fn func(products map[int64]*domain.Product) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snapshot := make(map[int64]*domain.Product, len(r.products))
	for id, product := range r.products {
		snapshot[id] = cloneProduct(product)
	}
	if err := fn(snapshot); err != nil {
		return err
	}
	now := r.now()
	for id, product := range snapshot {
		if prev, ok := r.products[id]; ok && prev.Stock != product.Stock {
			product.UpdatedAt = now
		}
		r.products[id] = product
	}
	return nil
}

func cloneProduct(p *domain.Product) *domain.Product {
	clone := *p
	if p.CategoryID != nil {
		id := *p.CategoryID
		clone.CategoryID = &id
	}
	return &clone
}
