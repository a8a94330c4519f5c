package repository

import (
	"context"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type LeadRepository interface {
	Create(ctx context.Context, lead *model.Lead) error
	Update(ctx context.Context, lead *model.Lead) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error)
	List(ctx context.Context, f ListFilter) ([]model.Lead, int64, error)
	// Contacts returns the email and phone of every lead visible to ownerID
	Contacts(ctx context.Context, ownerID *uuid.UUID) ([]model.Lead, error)
}

type leadRepository struct {
	db *gorm.DB
}

func NewLeadRepository(db *gorm.DB) LeadRepository {
	return &leadRepository{db: db}
}

func (r *leadRepository) Create(ctx context.Context, lead *model.Lead) error {
	return TranslateError(GetDB(ctx, r.db).Create(lead).Error)
}

func (r *leadRepository) Update(ctx context.Context, lead *model.Lead) error {
	return TranslateError(GetDB(ctx, r.db).Save(lead).Error)
}

func (r *leadRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Lead{}).Error
}

func (r *leadRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Lead, error) {
	var lead model.Lead
	if err := GetDB(ctx, r.db).First(&lead, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &lead, nil
}

func (r *leadRepository) List(ctx context.Context, f ListFilter) ([]model.Lead, int64, error) {
	var leads []model.Lead
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Lead{})
	db = f.scopeOwner(db, "representative_id")
	db = f.scopeStatus(db)
	db = searchColumns(db, f.Search, "person_name", "establishment_name", "city", "phone", "email")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.paginate(db.Order("created_at desc")).Find(&leads).Error; err != nil {
		return nil, 0, err
	}
	return leads, total, nil
}

func (r *leadRepository) Contacts(ctx context.Context, ownerID *uuid.UUID) ([]model.Lead, error) {
	var leads []model.Lead
	db := GetDB(ctx, r.db).Model(&model.Lead{}).Select("id", "email", "phone")
	db = ListFilter{OwnerID: ownerID}.scopeOwner(db, "representative_id")
	if err := db.Find(&leads).Error; err != nil {
		return nil, err
	}
	return leads, nil
}
