package repository

import (
	"context"

	"crm/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// LeadHistoryRepository is append-only: history rows are never updated or removed.
type LeadHistoryRepository interface {
	Append(ctx context.Context, entry *model.LeadStatusHistory) error
	ListByLead(ctx context.Context, leadID uuid.UUID) ([]model.LeadStatusHistory, error)
}

type leadHistoryRepository struct {
	db *gorm.DB
}

func NewLeadHistoryRepository(db *gorm.DB) LeadHistoryRepository {
	return &leadHistoryRepository{db: db}
}

func (r *leadHistoryRepository) Append(ctx context.Context, entry *model.LeadStatusHistory) error {
	return GetDB(ctx, r.db).Create(entry).Error
}

func (r *leadHistoryRepository) ListByLead(ctx context.Context, leadID uuid.UUID) ([]model.LeadStatusHistory, error) {
	var entries []model.LeadStatusHistory
	if err := GetDB(ctx, r.db).
		Where("lead_id = ?", leadID).
		Order("changed_at desc").
		Find(&entries).Error; err != nil {
		return nil, err
	}
	return entries, nil
}
