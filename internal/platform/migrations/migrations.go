package migrations

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Run applies the schema for every bounded context. Adapters never migrate
// on their own; their record structs mirror the tables declared here.
func Run(db *gorm.DB) error {
	if db == nil {
		return nil
	}
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.AutoMigrate(
			&categoryRecord{},
			&productRecord{},
			&partyRecord{},
			&userRecord{},
			&sessionRecord{},
			&saleRecord{},
			&saleItemRecord{},
			&purchaseRecord{},
			&purchaseItemRecord{},
			&saleIdempotencyRecord{},
			&activityRecord{},
		); err != nil {
			return err
		}
		for _, fk := range foreignKeys {
			if err := fk.apply(tx); err != nil {
				return err
			}
		}
		return nil
	})
}

// Catalog schema mirrors the catalog Postgres adapter.
type categoryRecord struct {
	ID          int64     `gorm:"primaryKey;column:id"`
	Name        string    `gorm:"column:name;size:120;not null;uniqueIndex"`
	Description string    `gorm:"column:description"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (categoryRecord) TableName() string { return "categories" }

type productRecord struct {
	ID         int64           `gorm:"primaryKey;column:id"`
	Name       string          `gorm:"column:name;size:150;not null;uniqueIndex"`
	Barcode    *string         `gorm:"column:barcode;size:50;uniqueIndex"`
	CategoryID *int64          `gorm:"column:category_id;index"`
	Price      decimal.Decimal `gorm:"column:price;type:numeric(12,2);not null;check:chk_products_price,price >= 0"`
	Stock      int             `gorm:"column:stock;not null;default:0;check:chk_products_stock,stock >= 0"`
	CreatedAt  time.Time       `gorm:"column:created_at"`
	UpdatedAt  time.Time       `gorm:"column:updated_at"`
}

func (productRecord) TableName() string { return "products" }

// Party schema mirrors the parties Postgres adapter; customers and suppliers share it.
type partyRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Kind      string    `gorm:"column:kind;type:varchar(16);not null;index;uniqueIndex:idx_parties_kind_phone;uniqueIndex:idx_parties_kind_email"`
	Name      string    `gorm:"column:name;not null"`
	Phone     *string   `gorm:"column:phone;uniqueIndex:idx_parties_kind_phone"`
	Email     *string   `gorm:"column:email;uniqueIndex:idx_parties_kind_email"`
	Address   string    `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (partyRecord) TableName() string { return "parties" }

// User schema mirrors the users Postgres adapter.
type userRecord struct {
	ID           int64     `gorm:"primaryKey;column:id"`
	FullName     string    `gorm:"column:full_name;not null"`
	Username     string    `gorm:"column:username;not null;uniqueIndex"`
	Email        string    `gorm:"column:email;not null;uniqueIndex"`
	PasswordHash string    `gorm:"column:password_hash;not null"`
	Role         string    `gorm:"column:role;type:varchar(16);not null;default:cashier"`
	CreatedAt    time.Time `gorm:"column:created_at"`
	UpdatedAt    time.Time `gorm:"column:updated_at"`
}

func (userRecord) TableName() string { return "users" }

// Session schema mirrors the session store.
type sessionRecord struct {
	TokenID   string    `gorm:"primaryKey;column:token_id;size:64"`
	UserID    int64     `gorm:"column:user_id;index"`
	Username  string    `gorm:"column:username"`
	ExpiresAt time.Time `gorm:"column:expires_at;index"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (sessionRecord) TableName() string { return "user_sessions" }

// Sale and purchase schemas mirror the orders Postgres store, which selects
// the table per order kind.
type saleRecord struct {
	ID             int64           `gorm:"primaryKey;column:id"`
	CounterpartyID *int64          `gorm:"column:counterparty_id;index"`
	UserID         int64           `gorm:"column:user_id;not null;index"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0;check:chk_sales_total,total >= 0"`
	Status         string          `gorm:"column:status;type:varchar(16);not null;default:pending;index"`
	PaymentMethod  *string         `gorm:"column:payment_method;type:varchar(16)"`
	CreatedAt      time.Time       `gorm:"column:created_at;index"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (saleRecord) TableName() string { return "sales" }

type saleItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;not null;uniqueIndex:idx_sale_items_order_product"`
	ProductID int64           `gorm:"column:product_id;not null;uniqueIndex:idx_sale_items_order_product;index"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_sale_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
}

func (saleItemRecord) TableName() string { return "sale_items" }

type purchaseRecord struct {
	ID             int64           `gorm:"primaryKey;column:id"`
	CounterpartyID *int64          `gorm:"column:counterparty_id;index"`
	UserID         int64           `gorm:"column:user_id;not null;index"`
	Total          decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null;default:0;check:chk_purchases_total,total >= 0"`
	Status         string          `gorm:"column:status;type:varchar(16);not null;default:pending;index"`
	PaymentMethod  *string         `gorm:"column:payment_method;type:varchar(16)"`
	CreatedAt      time.Time       `gorm:"column:created_at;index"`
	UpdatedAt      time.Time       `gorm:"column:updated_at"`
}

func (purchaseRecord) TableName() string { return "purchases" }

type purchaseItemRecord struct {
	ID        int64           `gorm:"primaryKey;column:id"`
	OrderID   int64           `gorm:"column:order_id;not null;uniqueIndex:idx_purchase_items_order_product"`
	ProductID int64           `gorm:"column:product_id;not null;uniqueIndex:idx_purchase_items_order_product;index"`
	Quantity  int             `gorm:"column:quantity;not null;check:chk_purchase_items_quantity,quantity > 0"`
	UnitPrice decimal.Decimal `gorm:"column:unit_price;type:numeric(12,2);not null"`
	Total     decimal.Decimal `gorm:"column:total;type:numeric(12,2);not null"`
}

func (purchaseItemRecord) TableName() string { return "purchase_items" }

// Idempotency keys are claimed inside the sale transaction by the orders store.
type saleIdempotencyRecord struct {
	Key         string    `gorm:"primaryKey;column:key;size:255"`
	RequestHash string    `gorm:"column:request_hash;size:128;not null"`
	SaleID      int64     `gorm:"column:sale_id;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;index"`
}

func (saleIdempotencyRecord) TableName() string { return "sale_idempotency_keys" }

// Activity schema mirrors the activity Postgres repository.
type activityRecord struct {
	ID            int64          `gorm:"primaryKey;column:id"`
	CorrelationID string         `gorm:"column:correlation_id;size:64"`
	UserID        int64          `gorm:"column:user_id;index"`
	UserName      string         `gorm:"column:user_name"`
	UserRole      string         `gorm:"column:user_role;size:16"`
	Action        string         `gorm:"column:action;size:64;index"`
	EntityType    string         `gorm:"column:entity_type;size:32"`
	EntityID      *int64         `gorm:"column:entity_id"`
	Details       map[string]any `gorm:"column:details;type:jsonb;serializer:json"`
	IPAddress     string         `gorm:"column:ip_address;size:64"`
	UserAgent     string         `gorm:"column:user_agent"`
	Timestamp     time.Time      `gorm:"column:occurred_at;index"`
}

func (activityRecord) TableName() string { return "user_activities" }

type foreignKey struct {
	table, name, column, refTable, onDelete string
}

// Items cascade with their order; products, counterparties and users are
// referenced, never owned.
var foreignKeys = []foreignKey{
	{table: "products", name: "fk_products_category", column: "category_id", refTable: "categories", onDelete: "SET NULL"},
	{table: "sales", name: "fk_sales_customer", column: "counterparty_id", refTable: "parties", onDelete: "SET NULL"},
	{table: "sales", name: "fk_sales_user", column: "user_id", refTable: "users", onDelete: "RESTRICT"},
	{table: "sale_items", name: "fk_sale_items_sale", column: "order_id", refTable: "sales", onDelete: "CASCADE"},
	{table: "sale_items", name: "fk_sale_items_product", column: "product_id", refTable: "products", onDelete: "RESTRICT"},
	{table: "purchases", name: "fk_purchases_supplier", column: "counterparty_id", refTable: "parties", onDelete: "RESTRICT"},
	{table: "purchases", name: "fk_purchases_user", column: "user_id", refTable: "users", onDelete: "RESTRICT"},
	{table: "purchase_items", name: "fk_purchase_items_purchase", column: "order_id", refTable: "purchases", onDelete: "CASCADE"},
	{table: "purchase_items", name: "fk_purchase_items_product", column: "product_id", refTable: "products", onDelete: "RESTRICT"},
	{table: "user_sessions", name: "fk_user_sessions_user", column: "user_id", refTable: "users", onDelete: "CASCADE"},
}

func (fk foreignKey) apply(tx *gorm.DB) error {
	if tx.Migrator().HasConstraint(fk.table, fk.name) {
		return nil
	}
	stmt := fmt.Sprintf(
		"ALTER TABLE %s ADD CONSTRAINT %s FOREIGN KEY (%s) REFERENCES %s(id) ON DELETE %s",
		fk.table, fk.name, fk.column, fk.refTable, fk.onDelete,
	)
	return tx.Exec(stmt).Error
}
