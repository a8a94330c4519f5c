package repository

import (
	"context"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductFilter struct {
	ListFilter
	CompanyID *uuid.UUID
}

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindBySKU(ctx context.Context, sku string) (*model.Product, error)
	List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return TranslateError(GetDB(ctx, r.db).Create(product).Error)
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return TranslateError(GetDB(ctx, r.db).Omit("Company").Save(product).Error)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Product{}).Error
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Preload("Company").First(&product, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &product, nil
}

func (r *productRepository) FindBySKU(ctx context.Context, sku string) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).Unscoped().Where("sku = ?", sku).First(&product).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &product, nil
}

func (r *productRepository) List(ctx context.Context, f ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{})
	if f.CompanyID != nil {
		db = db.Where("company_id = ?", *f.CompanyID)
	}
	db = searchColumns(db, f.Search, "name", "sku", "category")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.paginate(db.Order("name asc")).Find(&products).Error; err != nil {
		return nil, 0, err
	}
	return products, total, nil
}
