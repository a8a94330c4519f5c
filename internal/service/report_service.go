package service

import (
	"context"
	"fmt"
	"time"

	"crm/internal/model"
	"crm/internal/repository"
)

type ReportService interface {
	Dashboard(ctx context.Context, actor model.Actor, start, end time.Time) (model.DashboardStats, error)
	Commissions(ctx context.Context, actor model.Actor, start, end time.Time) ([]model.CommissionSummary, error)
}

type reportService struct {
	reportRepo repository.ReportRepository
}

func NewReportService(reportRepo repository.ReportRepository) ReportService {
	return &reportService{reportRepo: reportRepo}
}

func validateWindow(start, end time.Time) error {
	if end.Before(start) {
		return validationError("end_date must not be before start_date")
	}
	return nil
}

// Dashboard aggregates the actor-visible counters; sales figures use the window.
func (s *reportService) Dashboard(ctx context.Context, actor model.Actor, start, end time.Time) (model.DashboardStats, error) {
	if err := validateWindow(start, end); err != nil {
		return model.DashboardStats{}, err
	}
	owner := ownerScope(actor)
	stats := model.DashboardStats{StartDate: start, EndDate: end}

	byStatus, err := s.reportRepo.LeadCountsByStatus(ctx, owner)
	if err != nil {
		return stats, err
	}
	stats.LeadsByStatus = byStatus
	for _, n := range byStatus {
		stats.TotalLeads += n
	}

	if stats.ActiveClients, err = s.reportRepo.CountClients(ctx, owner, model.ClientStatusActive); err != nil {
		return stats, fmt.Errorf("failed to count clients: %w", err)
	}
	if stats.OpenQuotes, err = s.reportRepo.CountQuotes(ctx, owner, model.QuoteStatusDraft, model.QuoteStatusSent); err != nil {
		return stats, fmt.Errorf("failed to count quotes: %w", err)
	}

	totals, err := s.reportRepo.SalesTotals(ctx, owner, start, end)
	if err != nil {
		return stats, err
	}
	stats.SalesCount = totals.Count
	stats.SalesTotal = totals.Total
	stats.CommissionTotal = totals.Commission
	return stats, nil
}

func (s *reportService) Commissions(ctx context.Context, actor model.Actor, start, end time.Time) ([]model.CommissionSummary, error) {
	if err := validateWindow(start, end); err != nil {
		return nil, err
	}
	return s.reportRepo.CommissionSummary(ctx, ownerScope(actor), start, end)
}
