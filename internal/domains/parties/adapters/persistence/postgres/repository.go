package postgres

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/domain"
	"github.com/Apurer/go-pos-backoffice/internal/domains/parties/ports"
)

var _ ports.Repository = (*Repository)(nil)

// Repository persists customers and suppliers in one PostgreSQL table keyed by kind.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

type partyRecord struct {
	ID        int64     `gorm:"primaryKey;column:id"`
	Kind      string    `gorm:"column:kind;type:varchar(16);index;uniqueIndex:idx_parties_kind_phone;uniqueIndex:idx_parties_kind_email"`
	Name      string    `gorm:"column:name"`
	Phone     *string   `gorm:"column:phone;uniqueIndex:idx_parties_kind_phone"`
	Email     *string   `gorm:"column:email;uniqueIndex:idx_parties_kind_email"`
	Address   string    `gorm:"column:address"`
	CreatedAt time.Time `gorm:"column:created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at"`
}

func (partyRecord) TableName() string { return "parties" }

func (r *Repository) Save(ctx context.Context, party *domain.Party) (*domain.Party, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	if party == nil {
		return nil, errors.New("party is nil")
	}
	record := toRecord(party)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "phone", "email", "address", "updated_at"}),
		}).Create(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ports.ErrConflict
		}
		return nil, err
	}
	return r.Get(ctx, party.Kind, record.ID)
}

func (r *Repository) Get(ctx context.Context, kind domain.Kind, id int64) (*domain.Party, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var record partyRecord
	if err := r.db.WithContext(ctx).First(&record, "id = ? AND kind = ?", id, string(kind)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ports.ErrNotFound
		}
		return nil, err
	}
	return record.toDomain(), nil
}

func (r *Repository) List(ctx context.Context, kind domain.Kind) ([]*domain.Party, error) {
	if err := r.ensureDB(); err != nil {
		return nil, err
	}
	var records []partyRecord
	if err := r.db.WithContext(ctx).Where("kind = ?", string(kind)).Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	list := make([]*domain.Party, 0, len(records))
	for i := range records {
		list = append(list, records[i].toDomain())
	}
	return list, nil
}

func (r *Repository) Delete(ctx context.Context, kind domain.Kind, id int64) error {
	if err := r.ensureDB(); err != nil {
		return err
	}
	result := r.db.WithContext(ctx).Where("kind = ?", string(kind)).Delete(&partyRecord{}, id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrForeignKeyViolated) {
			return ports.ErrConflict
		}
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ports.ErrNotFound
	}
	return nil
}

func (r *Repository) ensureDB() error {
	if r == nil || r.db == nil {
		return errors.New("postgres party repository not configured")
	}
	return nil
}

func toRecord(p *domain.Party) partyRecord {
	rec := partyRecord{ID: p.ID, Kind: string(p.Kind), Name: p.Name, Address: p.Address}
	if p.Phone != "" {
		phone := p.Phone
		rec.Phone = &phone
	}
	if p.Email != "" {
		email := p.Email
		rec.Email = &email
	}
	return rec
}

func (r partyRecord) toDomain() *domain.Party {
	p := &domain.Party{
		ID:        r.ID,
		Kind:      domain.Kind(r.Kind),
		Name:      r.Name,
		Address:   r.Address,
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
	if r.Phone != nil {
		p.Phone = *r.Phone
	}
	if r.Email != nil {
		p.Email = *r.Email
	}
	return p
}
