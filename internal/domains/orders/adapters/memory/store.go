package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	catalogmemory "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/adapters/memory"
	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
)

var _ ports.Store = (*Store)(nil)

// Store is an in-memory orders adapter. Transactions are serialized by a
// single writer lock and run against copies of the order tables and of the
// catalog's products; both are committed only when the callback succeeds.
// The tables are only replaced while the catalog lock is held, which is what
// lets the catalog ask whether a product is still referenced.
type Store struct {
	mu      sync.Mutex
	tables  *tables
	catalog *catalogmemory.Repository
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

// NewStore builds a store whose stock writes land in catalog.
func NewStore(catalog *catalogmemory.Repository, opts ...Option) *Store {
	s := &Store{
		tables:  newTables(),
		catalog: catalog,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	catalog.RestrictDelete(s.referencesProduct)
	return s
}

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog.Transact(func(products map[int64]*catalogdomain.Product) error {
		working := s.tables.clone()
		if err := fn(ctx, &txRepo{tables: working, products: products, now: s.now}); err != nil {
			return err
		}
		s.tables = working
		return nil
	})
}

// referencesProduct is called by the catalog under its lock.
func (s *Store) referencesProduct(productID int64) bool {
	for _, items := range s.tables.items {
		for _, item := range items {
			if item.InventoryRecordID == productID {
				return true
			}
		}
	}
	return false
}

func (s *Store) GetOrder(ctx context.Context, kind domain.Kind, id int64) (order *domain.Order, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		order, err = repo.GetOrder(ctx, kind, id)
		return err
	})
	return order, err
}

func (s *Store) ListOrders(ctx context.Context, kind domain.Kind, filter ports.ListFilter) (orders []*domain.Order, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		orders, err = repo.ListOrders(ctx, kind, filter)
		return err
	})
	return orders, err
}

func (s *Store) CreateOrder(ctx context.Context, order *domain.Order) (created *domain.Order, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		created, err = repo.CreateOrder(ctx, order)
		return err
	})
	return created, err
}

func (s *Store) UpdateOrder(ctx context.Context, order *domain.Order) error {
	return s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.UpdateOrder(ctx, order)
	})
}

func (s *Store) DeleteOrder(ctx context.Context, kind domain.Kind, id int64) error {
	return s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.DeleteOrder(ctx, kind, id)
	})
}

func (s *Store) GetItem(ctx context.Context, kind domain.Kind, itemID int64) (item *domain.LineItem, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		item, err = repo.GetItem(ctx, kind, itemID)
		return err
	})
	return item, err
}

func (s *Store) ListItems(ctx context.Context, kind domain.Kind, filter ports.ItemFilter) (items []*domain.LineItem, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		items, err = repo.ListItems(ctx, kind, filter)
		return err
	})
	return items, err
}

func (s *Store) CreateItem(ctx context.Context, kind domain.Kind, item *domain.LineItem) (created *domain.LineItem, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		created, err = repo.CreateItem(ctx, kind, item)
		return err
	})
	return created, err
}

func (s *Store) UpdateItem(ctx context.Context, kind domain.Kind, item *domain.LineItem) error {
	return s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.UpdateItem(ctx, kind, item)
	})
}

func (s *Store) DeleteItem(ctx context.Context, kind domain.Kind, itemID int64) error {
	return s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.DeleteItem(ctx, kind, itemID)
	})
}

func (s *Store) GetInventoryRecord(ctx context.Context, id int64) (record *catalogdomain.Product, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		record, err = repo.GetInventoryRecord(ctx, id)
		return err
	})
	return record, err
}

func (s *Store) SaveStock(ctx context.Context, recordID int64, stock int) error {
	return s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		return repo.SaveStock(ctx, recordID, stock)
	})
}

func (s *Store) GetIdempotencyRecord(ctx context.Context, key string) (record *ports.IdempotencyRecord, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		record, err = repo.GetIdempotencyRecord(ctx, key)
		return err
	})
	return record, err
}

func (s *Store) ClaimIdempotencyKey(ctx context.Context, record ports.IdempotencyRecord) (claimed *ports.IdempotencyRecord, err error) {
	err = s.WithinTx(ctx, func(ctx context.Context, repo ports.Repository) error {
		claimed, err = repo.ClaimIdempotencyKey(ctx, record)
		return err
	})
	return claimed, err
}

type tables struct {
	orders    map[domain.Kind]map[int64]*domain.Order
	items     map[domain.Kind]map[int64]*domain.LineItem
	nextOrder map[domain.Kind]int64
	nextItem  map[domain.Kind]int64
	keys      map[string]ports.IdempotencyRecord
}

func newTables() *tables {
	t := &tables{
		orders:    map[domain.Kind]map[int64]*domain.Order{},
		items:     map[domain.Kind]map[int64]*domain.LineItem{},
		nextOrder: map[domain.Kind]int64{},
		nextItem:  map[domain.Kind]int64{},
		keys:      map[string]ports.IdempotencyRecord{},
	}
	for _, kind := range []domain.Kind{domain.KindSale, domain.KindPurchase} {
		t.orders[kind] = map[int64]*domain.Order{}
		t.items[kind] = map[int64]*domain.LineItem{}
	}
	return t
}

func (t *tables) clone() *tables {
	c := newTables()
	for kind, orders := range t.orders {
		for id, order := range orders {
			c.orders[kind][id] = cloneHeader(order)
		}
	}
	for kind, items := range t.items {
		for id, item := range items {
			copied := *item
			c.items[kind][id] = &copied
		}
	}
	for kind, next := range t.nextOrder {
		c.nextOrder[kind] = next
	}
	for kind, next := range t.nextItem {
		c.nextItem[kind] = next
	}
	for key, record := range t.keys {
		c.keys[key] = record
	}
	return c
}

type txRepo struct {
	tables   *tables
	products map[int64]*catalogdomain.Product
	now      func() time.Time
}

func (r *txRepo) GetOrder(_ context.Context, kind domain.Kind, id int64) (*domain.Order, error) {
	order, ok := r.tables.orders[kind][id]
	if !ok {
		return nil, ports.ErrNotFound
	}
	return r.withItems(order), nil
}

func (r *txRepo) ListOrders(_ context.Context, kind domain.Kind, filter ports.ListFilter) ([]*domain.Order, error) {
	var ids map[int64]struct{}
	if len(filter.IDs) > 0 {
		ids = make(map[int64]struct{}, len(filter.IDs))
		for _, id := range filter.IDs {
			ids[id] = struct{}{}
		}
	}
	out := make([]*domain.Order, 0)
	for _, order := range r.tables.orders[kind] {
		if filter.ActorID != nil && order.ActorID != *filter.ActorID {
			continue
		}
		if filter.CounterpartyID != nil && (order.CounterpartyID == nil || *order.CounterpartyID != *filter.CounterpartyID) {
			continue
		}
		if filter.Status != nil && order.Status != *filter.Status {
			continue
		}
		if filter.From != nil && order.CreatedAt.Before(*filter.From) {
			continue
		}
		if filter.To != nil && order.CreatedAt.After(*filter.To) {
			continue
		}
		if ids != nil {
			if _, ok := ids[order.ID]; !ok {
				continue
			}
		}
		out = append(out, r.withItems(order))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (r *txRepo) CreateOrder(_ context.Context, order *domain.Order) (*domain.Order, error) {
	if order == nil || !order.Kind.Valid() {
		return nil, domain.ErrInvalidKind
	}
	r.tables.nextOrder[order.Kind]++
	stored := cloneHeader(order)
	stored.ID = r.tables.nextOrder[order.Kind]
	now := r.now()
	stored.CreatedAt = now
	stored.UpdatedAt = now
	r.tables.orders[order.Kind][stored.ID] = stored
	return r.withItems(stored), nil
}

func (r *txRepo) UpdateOrder(_ context.Context, order *domain.Order) error {
	existing, ok := r.tables.orders[order.Kind][order.ID]
	if !ok {
		return ports.ErrNotFound
	}
	stored := cloneHeader(order)
	stored.CreatedAt = existing.CreatedAt
	stored.UpdatedAt = r.now()
	r.tables.orders[order.Kind][order.ID] = stored
	order.UpdatedAt = stored.UpdatedAt
	return nil
}

func (r *txRepo) DeleteOrder(_ context.Context, kind domain.Kind, id int64) error {
	if _, ok := r.tables.orders[kind][id]; !ok {
		return ports.ErrNotFound
	}
	delete(r.tables.orders[kind], id)
	for itemID, item := range r.tables.items[kind] {
		if item.OrderID == id {
			delete(r.tables.items[kind], itemID)
		}
	}
	return nil
}

func (r *txRepo) GetItem(_ context.Context, kind domain.Kind, itemID int64) (*domain.LineItem, error) {
	item, ok := r.tables.items[kind][itemID]
	if !ok {
		return nil, ports.ErrItemNotFound
	}
	copied := *item
	return &copied, nil
}

func (r *txRepo) ListItems(_ context.Context, kind domain.Kind, filter ports.ItemFilter) ([]*domain.LineItem, error) {
	out := make([]*domain.LineItem, 0)
	for _, item := range r.tables.items[kind] {
		if filter.OrderID != nil && item.OrderID != *filter.OrderID {
			continue
		}
		if filter.ActorID != nil {
			order, ok := r.tables.orders[kind][item.OrderID]
			if !ok || order.ActorID != *filter.ActorID {
				continue
			}
		}
		copied := *item
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *txRepo) CreateItem(_ context.Context, kind domain.Kind, item *domain.LineItem) (*domain.LineItem, error) {
	if _, ok := r.tables.orders[kind][item.OrderID]; !ok {
		return nil, ports.ErrNotFound
	}
	if _, ok := r.products[item.InventoryRecordID]; !ok {
		return nil, ports.ErrInventoryRecordNotFound
	}
	for _, existing := range r.tables.items[kind] {
		if existing.OrderID == item.OrderID && existing.InventoryRecordID == item.InventoryRecordID {
			return nil, domain.ErrDuplicateItem
		}
	}
	r.tables.nextItem[kind]++
	stored := *item
	stored.ID = r.tables.nextItem[kind]
	r.tables.items[kind][stored.ID] = &stored
	out := stored
	return &out, nil
}

func (r *txRepo) UpdateItem(_ context.Context, kind domain.Kind, item *domain.LineItem) error {
	if _, ok := r.tables.items[kind][item.ID]; !ok {
		return ports.ErrItemNotFound
	}
	stored := *item
	r.tables.items[kind][item.ID] = &stored
	return nil
}

func (r *txRepo) DeleteItem(_ context.Context, kind domain.Kind, itemID int64) error {
	if _, ok := r.tables.items[kind][itemID]; !ok {
		return ports.ErrItemNotFound
	}
	delete(r.tables.items[kind], itemID)
	return nil
}

func (r *txRepo) GetInventoryRecord(_ context.Context, id int64) (*catalogdomain.Product, error) {
	product, ok := r.products[id]
	if !ok {
		return nil, ports.ErrInventoryRecordNotFound
	}
	copied := *product
	return &copied, nil
}

func (r *txRepo) SaveStock(_ context.Context, recordID int64, stock int) error {
	product, ok := r.products[recordID]
	if !ok {
		return ports.ErrInventoryRecordNotFound
	}
	if stock < 0 {
		return catalogdomain.ErrNegativeStock
	}
	product.Stock = stock
	return nil
}

func (r *txRepo) GetIdempotencyRecord(_ context.Context, key string) (*ports.IdempotencyRecord, error) {
	record, ok := r.tables.keys[key]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (r *txRepo) ClaimIdempotencyKey(_ context.Context, record ports.IdempotencyRecord) (*ports.IdempotencyRecord, error) {
	if existing, ok := r.tables.keys[record.Key]; ok {
		return &existing, ports.ErrIdempotencyKeyTaken
	}
	record.CreatedAt = r.now()
	r.tables.keys[record.Key] = record
	return &record, nil
}

func (r *txRepo) withItems(header *domain.Order) *domain.Order {
	order := cloneHeader(header)
	for _, item := range r.tables.items[header.Kind] {
		if item.OrderID == header.ID {
			order.Items = append(order.Items, *item)
		}
	}
	sort.Slice(order.Items, func(i, j int) bool { return order.Items[i].ID < order.Items[j].ID })
	return order
}

func cloneHeader(order *domain.Order) *domain.Order {
	clone := *order
	clone.Items = nil
	if order.CounterpartyID != nil {
		id := *order.CounterpartyID
		clone.CounterpartyID = &id
	}
	return &clone
}
