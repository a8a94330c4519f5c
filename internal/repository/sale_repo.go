package repository

import (
	"context"
	"database/sql"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SaleRepository interface {
	Create(ctx context.Context, sale *model.Sale) error
	Update(ctx context.Context, sale *model.Sale) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error)
	List(ctx context.Context, f ListFilter) ([]model.Sale, int64, error)
	LastNumber(ctx context.Context, prefix string) (string, error)
}

type saleRepository struct {
	db *gorm.DB
}

func NewSaleRepository(db *gorm.DB) SaleRepository {
	return &saleRepository{db: db}
}

func (r *saleRepository) Create(ctx context.Context, sale *model.Sale) error {
	return TranslateError(GetDB(ctx, r.db).Omit(clause.Associations).Create(sale).Error)
}

func (r *saleRepository) Update(ctx context.Context, sale *model.Sale) error {
	return TranslateError(GetDB(ctx, r.db).Omit(clause.Associations).Save(sale).Error)
}

func (r *saleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Sale{}).Error
}

func (r *saleRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Sale, error) {
	var sale model.Sale
	if err := GetDB(ctx, r.db).Preload("Client").Preload("Company").First(&sale, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &sale, nil
}

func (r *saleRepository) List(ctx context.Context, f ListFilter) ([]model.Sale, int64, error) {
	var sales []model.Sale
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Sale{})
	db = f.scopeOwner(db, "representative_id")
	db = f.scopeStatus(db)
	db = searchColumns(db, f.Search, "number")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.paginate(db.Order("sold_at desc")).Find(&sales).Error; err != nil {
		return nil, 0, err
	}
	return sales, total, nil
}

// LastNumber includes deleted sales so numbers are never reused.
func (r *saleRepository) LastNumber(ctx context.Context, prefix string) (string, error) {
	var last sql.NullString
	err := GetDB(ctx, r.db).Unscoped().Model(&model.Sale{}).
		Where("number LIKE ?", prefix+"%").
		Select("MAX(number)").Scan(&last).Error
	if err != nil {
		return "", err
	}
	return last.String, nil
}
