package repository

import (
	"context"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CompanyFilter struct {
	ListFilter
	Active *bool
}

type CompanyRepository interface {
	Create(ctx context.Context, company *model.Company) error
	Update(ctx context.Context, company *model.Company) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error)
	FindByTaxID(ctx context.Context, taxID string) (*model.Company, error)
	List(ctx context.Context, f CompanyFilter) ([]model.Company, int64, error)
}

type companyRepository struct {
	db *gorm.DB
}

func NewCompanyRepository(db *gorm.DB) CompanyRepository {
	return &companyRepository{db: db}
}

func (r *companyRepository) Create(ctx context.Context, company *model.Company) error {
	return TranslateError(GetDB(ctx, r.db).Create(company).Error)
}

func (r *companyRepository) Update(ctx context.Context, company *model.Company) error {
	return TranslateError(GetDB(ctx, r.db).Save(company).Error)
}

func (r *companyRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Company{}).Error
}

func (r *companyRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).First(&company, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &company, nil
}

func (r *companyRepository) FindByTaxID(ctx context.Context, taxID string) (*model.Company, error) {
	var company model.Company
	if err := GetDB(ctx, r.db).Unscoped().Where("tax_id = ?", taxID).First(&company).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &company, nil
}

func (r *companyRepository) List(ctx context.Context, f CompanyFilter) ([]model.Company, int64, error) {
	var companies []model.Company
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Company{})
	if f.Active != nil {
		db = db.Where("active = ?", *f.Active)
	}
	db = searchColumns(db, f.Search, "name", "tax_id")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.paginate(db.Order("name asc")).Find(&companies).Error; err != nil {
		return nil, 0, err
	}
	return companies, total, nil
}
