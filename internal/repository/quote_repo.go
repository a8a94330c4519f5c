package repository

import (
	"context"
	"database/sql"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QuoteRepository interface {
	// Create inserts the quote together with its Items
	Create(ctx context.Context, quote *model.Quote) error
	// Update saves header fields only
	Update(ctx context.Context, quote *model.Quote) error
	ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []model.QuoteItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error)
	List(ctx context.Context, f ListFilter) ([]model.Quote, int64, error)
	LastNumber(ctx context.Context, prefix string) (string, error)
}

type quoteRepository struct {
	db *gorm.DB
}

func NewQuoteRepository(db *gorm.DB) QuoteRepository {
	return &quoteRepository{db: db}
}

func (r *quoteRepository) Create(ctx context.Context, quote *model.Quote) error {
	return TranslateError(GetDB(ctx, r.db).Omit("Client", "Company").Create(quote).Error)
}

func (r *quoteRepository) Update(ctx context.Context, quote *model.Quote) error {
	return TranslateError(GetDB(ctx, r.db).Omit(clause.Associations).Save(quote).Error)
}

func (r *quoteRepository) ReplaceItems(ctx context.Context, quoteID uuid.UUID, items []model.QuoteItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("quote_id = ?", quoteID).Delete(&model.QuoteItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QuoteID = quoteID
	}
	return db.Create(&items).Error
}

func (r *quoteRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("quote_id = ?", id).Delete(&model.QuoteItem{}).Error; err != nil {
		return err
	}
	return db.Where("id = ?", id).Delete(&model.Quote{}).Error
}

func (r *quoteRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Quote, error) {
	var quote model.Quote
	err := GetDB(ctx, r.db).
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position asc") }).
		Preload("Client").
		Preload("Company").
		First(&quote, "id = ?", id).Error
	if err != nil {
		return nil, TranslateError(err)
	}
	return &quote, nil
}

func (r *quoteRepository) List(ctx context.Context, f ListFilter) ([]model.Quote, int64, error) {
	var quotes []model.Quote
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Quote{})
	db = f.scopeOwner(db, "representative_id")
	db = f.scopeStatus(db)
	db = searchColumns(db, f.Search, "number")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.paginate(db.Order("issued_at desc")).Find(&quotes).Error; err != nil {
		return nil, 0, err
	}
	return quotes, total, nil
}

// LastNumber returns the highest number issued under prefix, or "" when none exists.
// Numbers are zero padded so the lexical maximum is the latest one.
func (r *quoteRepository) LastNumber(ctx context.Context, prefix string) (string, error) {
	var last sql.NullString
	err := GetDB(ctx, r.db).Model(&model.Quote{}).
		Where("number LIKE ?", prefix+"%").
		Select("MAX(number)").Scan(&last).Error
	if err != nil {
		return "", err
	}
	return last.String, nil
}
