package repository

import (
	"context"
	"fmt"
	"time"

	"crm/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type SalesTotals struct {
	Count      int64
	Total      decimal.Decimal
	Commission decimal.Decimal
}

type ReportRepository interface {
	LeadCountsByStatus(ctx context.Context, ownerID *uuid.UUID) (map[string]int64, error)
	CountClients(ctx context.Context, ownerID *uuid.UUID, status string) (int64, error)
	CountQuotes(ctx context.Context, ownerID *uuid.UUID, statuses ...string) (int64, error)
	SalesTotals(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) (SalesTotals, error)
	CommissionSummary(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) ([]model.CommissionSummary, error)
}

type reportRepository struct {
	db *gorm.DB
}

func NewReportRepository(db *gorm.DB) ReportRepository {
	return &reportRepository{db: db}
}

func (r *reportRepository) LeadCountsByStatus(ctx context.Context, ownerID *uuid.UUID) (map[string]int64, error) {
	var rows []struct {
		Status string
		Count  int64
	}
	db := GetDB(ctx, r.db).Model(&model.Lead{}).Select("status, COUNT(*) as count")
	db = ListFilter{OwnerID: ownerID}.scopeOwner(db, "representative_id")
	if err := db.Group("status").Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to count leads: %w", err)
	}

	counts := make(map[string]int64, len(model.LeadStatuses))
	for _, s := range model.LeadStatuses {
		counts[s] = 0
	}
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *reportRepository) CountClients(ctx context.Context, ownerID *uuid.UUID, status string) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.Client{})
	f := ListFilter{OwnerID: ownerID, Status: status}
	db = f.scopeStatus(f.scopeOwner(db, "representative_id"))
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *reportRepository) CountQuotes(ctx context.Context, ownerID *uuid.UUID, statuses ...string) (int64, error) {
	var count int64
	db := GetDB(ctx, r.db).Model(&model.Quote{})
	db = ListFilter{OwnerID: ownerID}.scopeOwner(db, "representative_id")
	if len(statuses) > 0 {
		db = db.Where("status IN ?", statuses)
	}
	if err := db.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// SalesTotals sums non-cancelled sales sold inside [start, end].
func (r *reportRepository) SalesTotals(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) (SalesTotals, error) {
	var result struct {
		Count      int64
		Total      decimal.Decimal
		Commission decimal.Decimal
	}
	db := GetDB(ctx, r.db).Model(&model.Sale{}).
		Select("COUNT(*) as count, COALESCE(SUM(total_amount), 0) as total, COALESCE(SUM(commission_amount), 0) as commission").
		Where("status <> ? AND sold_at >= ? AND sold_at <= ?", model.SaleStatusCancelled, start, end)
	db = ListFilter{OwnerID: ownerID}.scopeOwner(db, "representative_id")
	if err := db.Scan(&result).Error; err != nil {
		return SalesTotals{}, fmt.Errorf("failed to sum sales: %w", err)
	}
	return SalesTotals(result), nil
}

func (r *reportRepository) CommissionSummary(ctx context.Context, ownerID *uuid.UUID, start, end time.Time) ([]model.CommissionSummary, error) {
	var rows []model.CommissionSummary
	db := GetDB(ctx, r.db).Table("sales").
		Select("sales.representative_id as representative_id, COALESCE(users.name, '') as representative_name, sales.status as status, " +
			"COUNT(*) as sales_count, COALESCE(SUM(sales.total_amount), 0) as sales_total, COALESCE(SUM(sales.commission_amount), 0) as commission_total").
		Joins("LEFT JOIN users ON users.id = sales.representative_id").
		Where("sales.deleted_at IS NULL AND sales.sold_at >= ? AND sales.sold_at <= ?", start, end)
	db = ListFilter{OwnerID: ownerID}.scopeOwner(db, "sales.representative_id")
	if err := db.Group("sales.representative_id, users.name, sales.status").
		Order("commission_total DESC").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query commissions: %w", err)
	}
	return rows, nil
}
