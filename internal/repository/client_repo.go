package repository

import (
	"context"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ClientRepository interface {
	Create(ctx context.Context, client *model.Client) error
	Update(ctx context.Context, client *model.Client) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error)
	FindByTaxID(ctx context.Context, taxID string) (*model.Client, error)
	FindByEmail(ctx context.Context, email string) (*model.Client, error)
	List(ctx context.Context, f ListFilter) ([]model.Client, int64, error)
}

type clientRepository struct {
	db *gorm.DB
}

func NewClientRepository(db *gorm.DB) ClientRepository {
	return &clientRepository{db: db}
}

func (r *clientRepository) Create(ctx context.Context, client *model.Client) error {
	return TranslateError(GetDB(ctx, r.db).Create(client).Error)
}

func (r *clientRepository) Update(ctx context.Context, client *model.Client) error {
	return TranslateError(GetDB(ctx, r.db).Save(client).Error)
}

func (r *clientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Client{}).Error
}

func (r *clientRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).First(&client, "id = ?", id).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &client, nil
}

// FindByTaxID also sees soft-deleted rows since the unique index still holds them.
func (r *clientRepository) FindByTaxID(ctx context.Context, taxID string) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).Unscoped().Where("tax_id = ?", taxID).First(&client).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &client, nil
}

func (r *clientRepository) FindByEmail(ctx context.Context, email string) (*model.Client, error) {
	var client model.Client
	if err := GetDB(ctx, r.db).Where("LOWER(email) = LOWER(?)", email).First(&client).Error; err != nil {
		return nil, TranslateError(err)
	}
	return &client, nil
}

func (r *clientRepository) List(ctx context.Context, f ListFilter) ([]model.Client, int64, error) {
	var clients []model.Client
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Client{})
	db = f.scopeOwner(db, "representative_id")
	db = f.scopeStatus(db)
	db = searchColumns(db, f.Search, "person_name", "establishment_name", "tax_id", "email")

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if err := f.paginate(db.Order("created_at desc")).Find(&clients).Error; err != nil {
		return nil, 0, err
	}
	return clients, total, nil
}
