package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	catalogdomain "github.com/Apurer/go-pos-backoffice/internal/domains/catalog/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/orders/ports"
)

var _ ports.Store = (*Store)(nil)

// Store persists sales and purchases in PostgreSQL. Both kinds share one row
// shape and live in their own tables. Schema is owned by platform/migrations.
type Store struct {
	*repo
}

func NewStore(db *gorm.DB) *Store {
	return &Store{repo: &repo{db: db}}
}

// WithinTx runs fn in one database transaction. Orders and products read
// through the transactional repository are locked FOR UPDATE.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context, repo ports.Repository) error) error {
	if err := s.ensureDB(); err != nil {
		return err
	}
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &repo{db: tx, lock: true})
	})
}

type tableSet struct {
	orders string
	items  string
}

var tables = map[domain.Kind]tableSet{
	domain.KindSale:     {orders: "sales", items: "sale_items"},
	domain.KindPurchase: {orders: "purchases", items: "purchase_items"},
}

func tablesFor(kind domain.Kind) (tableSet, error) {
	t, ok := tables[kind]
	if !ok {
		return tableSet{}, domain.ErrInvalidKind
	}
	return t, nil
}

type orderRecord struct {
	ID             int64           `gorm:"primaryKey;column:id"`
	CounterpartyID *int64          `gorm:"column:counterparty_id"`
	UserID         int64           `gorm:"column:user_id"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
	Status         string          `gorm:"column:status"`
	PaymentMethod  *string         `gorm:"column:payment_method"`
	CreatedAt      time.Time       `gorm:"column:created_at"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

type lineItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id"`
	ProductID int64           `gorm:"column:product_id"`
	Quantity  int             `gorm:"column:quantity"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2)"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2)"`
}

type inventoryRecord struct {
	ID         int64           `gorm:"primaryKey;column:id"`
	Name       string          `gorm:"column:name"`
	Barcode    *string         `gorm:"column:barcode"`
	CategoryID *int64          `gorm:"column:category_id"`
	Price      decimal.Decimal `gorm:"column:price"`
	Stock      int             `gorm:"column:stock"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (inventoryRecord) TableName() string { return "products" }

type repo struct {
	db   *gorm.DB
	lock bool
}

func (r *repo) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres orders store not configured")
	}
	return nil
}

func (r *repo) locked(q *gorm.DB) *gorm.DB {
	if r.lock {
		return q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *repo) GetOrder(ctx context.Context, kind domain.Kind, id int64) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	var record orderRecord
	if err := r.locked(r.db.WithContext(ctx).Table(t.orders)).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	var items []lineItemRecord
	if err := r.db.WithContext(ctx).Table(t.items).Where("order_id = ?", id).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	return toDomainOrder(kind, &record, items), nil
}

func (r *repo) ListOrders(ctx context.Context, kind domain.Kind, filter ports.ListFilter) ([]*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Table(t.orders)
	if filter.ActorID != nil {
		query = query.Where("user_id = ?", *filter.ActorID)
	}
	if filter.CounterpartyID != nil {
		query = query.Where("counterparty_id = ?", *filter.CounterpartyID)
	}
	if filter.Status != nil {
		query = query.Where("status = ?", string(*filter.Status))
	}
	if filter.From != nil {
		query = query.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		query = query.Where("created_at <= ?", *filter.To)
	}
	if len(filter.IDs) > 0 {
		query = query.Where("id = ANY(?)", pq.Array(filter.IDs))
	}
	var records []orderRecord
	if err := query.Order("created_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return []*domain.Order{}, nil
	}
	ids := make([]int64, len(records))
	for i := range records {
		ids[i] = records[i].ID
	}
	var items []lineItemRecord
	if err := r.db.WithContext(ctx).Table(t.items).Where("order_id = ANY(?)", pq.Array(ids)).Order("id").Find(&items).Error; err != nil {
		return nil, err
	}
	byOrder := make(map[int64][]lineItemRecord, len(records))
	for _, item := range items {
		byOrder[item.OrderID] = append(byOrder[item.OrderID], item)
	}
	out := make([]*domain.Order, 0, len(records))
	for i := range records {
		out = append(out, toDomainOrder(kind, &records[i], byOrder[records[i].ID]))
	}
	return out, nil
}

func (r *repo) CreateOrder(ctx context.Context, order *domain.Order) (*domain.Order, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if order == nil {
		return nil, errors.New("order is nil")
	}
	t, err := tablesFor(order.Kind)
	if err != nil {
		return nil, err
	}
	record := toOrderRecord(order)
	record.ID = 0
	if err := r.db.WithContext(ctx).Table(t.orders).Create(&record).Error; err != nil {
		return nil, translate(err)
	}
	return toDomainOrder(order.Kind, &record, nil), nil
}

func (r *repo) UpdateOrder(ctx context.Context, order *domain.Order) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	t, err := tablesFor(order.Kind)
	if err != nil {
		return err
	}
	record := toOrderRecord(order)
	now := time.Now().UTC()
	result := r.db.WithContext(ctx).Table(t.orders).Where("id = ?", order.ID).Updates(map[string]any{
		"counterparty_id": record.CounterpartyID,
		"user_id":         record.UserID,
		"total":           record.Total,
		"status":          record.Status,
		"payment_method":  record.PaymentMethod,
		"updated_at":      now,
	})
	if result.Error != nil {
		return translate(result.Error)
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	order.UpdatedAt = now
	return nil
}

func (r *repo) DeleteOrder(ctx context.Context, kind domain.Kind, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Table(t.items).Where("order_id = ?", id).Delete(&lineItemRecord{}).Error; err != nil {
			return err
		}
		result := tx.Table(t.orders).Where("id = ?", id).Delete(&orderRecord{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return ports.ErrNotFound
		}
		return nil
	})
}

func (r *repo) GetItem(ctx context.Context, kind domain.Kind, itemID int64) (*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	var record lineItemRecord
	if err := r.db.WithContext(ctx).Table(t.items).First(&record, "id = ?", itemID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrItemNotFound
		}
		return nil, err
	}
	item := record.toDomain()
	return &item, nil
}

func (r *repo) ListItems(ctx context.Context, kind domain.Kind, filter ports.ItemFilter) ([]*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	query := r.db.WithContext(ctx).Table(t.items)
	if filter.OrderID != nil {
		query = query.Where("order_id = ?", *filter.OrderID)
	}
	if filter.ActorID != nil {
		query = query.Where("order_id IN (?)", r.db.Table(t.orders).Select("id").Where("user_id = ?", *filter.ActorID))
	}
	var records []lineItemRecord
	if err := query.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	out := make([]*domain.LineItem, 0, len(records))
	for i := range records {
		item := records[i].toDomain()
		out = append(out, &item)
	}
	return out, nil
}

func (r *repo) CreateItem(ctx context.Context, kind domain.Kind, item *domain.LineItem) (*domain.LineItem, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return nil, err
	}
	record := toLineItemRecord(item)
	record.ID = 0
	if err := r.db.WithContext(ctx).Table(t.items).Create(&record).Error; err != nil {
		switch {
		case errors.Is(err, gorm.ErrDuplicatedKey):
			return nil, domain.ErrDuplicateItem
		case errors.Is(err, gorm.ErrForeignKeyViolated):
			return nil, ports.ErrInventoryRecordNotFound
		}
		return nil, err
	}
	created := record.toDomain()
	return &created, nil
}

func (r *repo) UpdateItem(ctx context.Context, kind domain.Kind, item *domain.LineItem) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Table(t.items).Where("id = ?", item.ID).Updates(map[string]any{
		"quantity":   item.Quantity,
		"unit_price": item.UnitPrice,
		"total":      item.Total,
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrItemNotFound
	}
	return nil
}

func (r *repo) DeleteItem(ctx context.Context, kind domain.Kind, itemID int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	t, err := tablesFor(kind)
	if err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Table(t.items).Where("id = ?", itemID).Delete(&lineItemRecord{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrItemNotFound
	}
	return nil
}

func (r *repo) GetInventoryRecord(ctx context.Context, id int64) (*catalogdomain.Product, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record inventoryRecord
	if err := r.locked(r.db.WithContext(ctx)).First(&record, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrInventoryRecordNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *repo) SaveStock(ctx context.Context, recordID int64, stock int) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	if stock < 0 {
		return catalogdomain.ErrNegativeStock
	}
	result := r.db.WithContext(ctx).Model(&inventoryRecord{}).Where("id = ?", recordID).Updates(map[string]any{
		"stock":      stock,
		"updated_at": gorm.Expr("NOW()"),
	})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrInventoryRecordNotFound
	}
	return nil
}

func translate(err error) error {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return ports.ErrCounterpartyNotFound
	}
	return err
}

func toOrderRecord(order *domain.Order) orderRecord {
	record := orderRecord{
		ID:             order.ID,
		CounterpartyID: order.CounterpartyID,
		UserID:         order.ActorID,
		Total:          order.Total,
		Status:         string(order.Status),
		CreatedAt:      order.CreatedAt,
		UpdatedAt:      order.UpdatedAt,
	}
	if order.PaymentMethod != "" {
		method := string(order.PaymentMethod)
		record.PaymentMethod = &method
	}
	return record
}

func toDomainOrder(kind domain.Kind, record *orderRecord, items []lineItemRecord) *domain.Order {
	order := &domain.Order{
		ID:             record.ID,
		Kind:           kind,
		CounterpartyID: record.CounterpartyID,
		ActorID:        record.UserID,
		Total:          record.Total,
		Status:         domain.Status(record.Status),
		CreatedAt:      record.CreatedAt,
		UpdatedAt:      record.UpdatedAt,
	}
	if record.PaymentMethod != nil {
		order.PaymentMethod = domain.PaymentMethod(*record.PaymentMethod)
	}
	for _, item := range items {
		order.Items = append(order.Items, item.toDomain())
	}
	return order
}

func toLineItemRecord(item *domain.LineItem) lineItemRecord {
	return lineItemRecord{
		ID:        item.ID,
		OrderID:   item.OrderID,
		ProductID: item.InventoryRecordID,
		Quantity:  item.Quantity,
		UnitPrice: item.UnitPrice,
		Total:     item.Total,
	}
}

func (r lineItemRecord) toDomain() domain.LineItem {
	return domain.LineItem{
		ID:                r.ID,
		OrderID:           r.OrderID,
		InventoryRecordID: r.ProductID,
		Quantity:          r.Quantity,
		UnitPrice:         r.UnitPrice,
		Total:             r.Total,
	}
}

func (r *inventoryRecord) toDomain() *catalogdomain.Product {
	product := &catalogdomain.Product{
		ID:         r.ID,
		Name:       r.Name,
		CategoryID: r.CategoryID,
		Price:      r.Price,
		Stock:      r.Stock,
		CreatedAt:  r.CreatedAt,
		UpdatedAt:  r.UpdatedAt,
	}
	if r.Barcode != nil {
		product.Barcode = *r.Barcode
	}
	return product
}
