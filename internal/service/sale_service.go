package service

import (
	"context"
	"fmt"
	"time"

	"crm/internal/model"
	"crm/internal/notifier"
	"crm/internal/pricing"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateSaleRequest struct {
	QuoteID            *uuid.UUID       `json:"quote_id"`
	ClientID           uuid.UUID        `json:"client_id"`
	CompanyID          uuid.UUID        `json:"company_id"`
	TotalAmount        *decimal.Decimal `json:"total_amount"`
	CommissionPercent  *decimal.Decimal `json:"commission_percent"`
	SoldAt             string           `json:"sold_at"`
	ExpectedDeliveryAt string           `json:"expected_delivery_at"`
	Status             string           `json:"status"`
	Notes              string           `json:"notes"`
}

type UpdateSaleRequest struct {
	TotalAmount        *decimal.Decimal `json:"total_amount"`
	CommissionPercent  *decimal.Decimal `json:"commission_percent"`
	SoldAt             *string          `json:"sold_at"`
	ExpectedDeliveryAt *string          `json:"expected_delivery_at"`
	Status             *string          `json:"status"`
	Notes              *string          `json:"notes"`
}

type SaleEvent struct {
	SaleID           uuid.UUID       `json:"sale_id"`
	Number           string          `json:"number"`
	RepresentativeID uuid.UUID       `json:"representative_id"`
	TotalAmount      decimal.Decimal `json:"total_amount"`
	CommissionAmount decimal.Decimal `json:"commission_amount"`
	EmailSent        bool            `json:"email_sent"`
}

type SaleService interface {
	List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Sale, int64, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Sale, error)
	Create(ctx context.Context, actor model.Actor, req CreateSaleRequest) (*model.Sale, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateSaleRequest) (*model.Sale, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type saleService struct {
	saleRepo    repository.SaleRepository
	quoteRepo   repository.QuoteRepository
	clientRepo  repository.ClientRepository
	companyRepo repository.CompanyRepository
	userRepo    repository.UserRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    Notifier
	events      EventPublisher
}

func NewSaleService(
	saleRepo repository.SaleRepository,
	quoteRepo repository.QuoteRepository,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
	userRepo repository.UserRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	events EventPublisher,
) SaleService {
	return &saleService{
		saleRepo:    saleRepo,
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
		userRepo:    userRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
		events:      publisherOrNoop(events),
	}
}

func (s *saleService) List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Sale, int64, error) {
	if params.Status != "" && !model.IsSaleStatus(params.Status) {
		return nil, 0, validationError("unknown sale status %q", params.Status)
	}
	sales, total, err := s.saleRepo.List(ctx, params.filter(actor))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch sales: %w", err)
	}
	return sales, total, nil
}

func (s *saleService) load(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Sale, error) {
	sale, err := s.saleRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("sale", err)
	}
	if !actor.CanAccess(sale.RepresentativeID) {
		return nil, forbiddenError("sale belongs to another representative")
	}
	return sale, nil
}

func (s *saleService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Sale, error) {
	return s.load(ctx, actor, id)
}

func validateCommission(percent *decimal.Decimal) error {
	if percent == nil {
		return nil
	}
	if err := pricing.ValidatePercent(*percent); err != nil {
		return validationError("commission_percent must be between 0 and 100")
	}
	return nil
}

func (s *saleService) Create(ctx context.Context, actor model.Actor, req CreateSaleRequest) (*model.Sale, error) {
	if err := validateCommission(req.CommissionPercent); err != nil {
		return nil, err
	}
	if err := nonNegative("total_amount", req.TotalAmount); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.SaleStatusPending
	}
	if !model.IsSaleStatus(status) {
		return nil, validationError("unknown sale status %q", status)
	}
	soldAt := time.Now()
	if t, err := parseDate("sold_at", req.SoldAt); err != nil {
		return nil, err
	} else if t != nil {
		soldAt = *t
	}
	expected, err := parseDate("expected_delivery_at", req.ExpectedDeliveryAt)
	if err != nil {
		return nil, err
	}

	sale := &model.Sale{
		QuoteID:            req.QuoteID,
		ClientID:           req.ClientID,
		CompanyID:          req.CompanyID,
		RepresentativeID:   actor.ID,
		CommissionPercent:  req.CommissionPercent,
		SoldAt:             soldAt,
		ExpectedDeliveryAt: expected,
		Status:             status,
		Notes:              req.Notes,
	}
	if status == model.SaleStatusDelivered {
		sale.DeliveredAt = &soldAt
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if req.QuoteID != nil {
			quote, err := s.quoteRepo.FindByID(txCtx, *req.QuoteID)
			if err != nil {
				return storeError("quote", err)
			}
			if !actor.CanAccess(quote.RepresentativeID) {
				return forbiddenError("quote belongs to another representative")
			}
			if sale.ClientID == uuid.Nil {
				sale.ClientID = quote.ClientID
			}
			if sale.ClientID != quote.ClientID {
				return validationError("quote belongs to a different client")
			}
			if sale.CompanyID == uuid.Nil {
				sale.CompanyID = quote.CompanyID
			}
			if req.TotalAmount == nil {
				sale.TotalAmount = quote.NetTotal
			}
			quote.Status = model.QuoteStatusAccepted
			if err := s.quoteRepo.Update(txCtx, quote); err != nil {
				return fmt.Errorf("failed to accept quote: %w", err)
			}
		}
		if req.TotalAmount != nil {
			sale.TotalAmount = req.TotalAmount.RoundBank(2)
		} else if req.QuoteID == nil {
			return validationError("total_amount is required")
		}

		if sale.ClientID == uuid.Nil {
			return validationError("client_id is required")
		}
		if sale.CompanyID == uuid.Nil {
			return validationError("company_id is required")
		}
		client, err := s.clientRepo.FindByID(txCtx, sale.ClientID)
		if err != nil {
			return storeError("client", err)
		}
		if !actor.CanAccess(client.RepresentativeID) {
			return forbiddenError("client belongs to another representative")
		}
		if _, err := s.companyRepo.FindByID(txCtx, sale.CompanyID); err != nil {
			return storeError("company", err)
		}

		sale.CommissionAmount = pricing.Commission(sale.TotalAmount, sale.CommissionPercent)
		if sale.Number, err = nextNumber(txCtx, "VND", s.saleRepo.LastNumber); err != nil {
			return fmt.Errorf("failed to number sale: %w", err)
		}
		if err := s.saleRepo.Create(txCtx, sale); err != nil {
			return storeError("sale", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if sale.Status == model.SaleStatusConfirmed {
		s.announceConfirmed(ctx, sale)
	}
	return sale, nil
}

func (s *saleService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateSaleRequest) (*model.Sale, error) {
	if req.Status != nil && !model.IsSaleStatus(*req.Status) {
		return nil, validationError("unknown sale status %q", *req.Status)
	}
	if err := validateCommission(req.CommissionPercent); err != nil {
		return nil, err
	}
	if err := nonNegative("total_amount", req.TotalAmount); err != nil {
		return nil, err
	}

	var sale *model.Sale
	confirmed := false
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if sale, err = s.load(txCtx, actor, id); err != nil {
			return err
		}

		recompute := false
		if req.TotalAmount != nil {
			sale.TotalAmount = req.TotalAmount.RoundBank(2)
			recompute = true
		}
		if req.CommissionPercent != nil {
			sale.CommissionPercent = req.CommissionPercent
			recompute = true
		}
		if recompute {
			sale.CommissionAmount = pricing.Commission(sale.TotalAmount, sale.CommissionPercent)
		}
		if req.SoldAt != nil {
			t, err := parseDate("sold_at", *req.SoldAt)
			if err != nil {
				return err
			}
			if t != nil {
				sale.SoldAt = *t
			}
		}
		if req.ExpectedDeliveryAt != nil {
			t, err := parseDate("expected_delivery_at", *req.ExpectedDeliveryAt)
			if err != nil {
				return err
			}
			sale.ExpectedDeliveryAt = t
		}
		if req.Notes != nil {
			sale.Notes = *req.Notes
		}
		if req.Status != nil && *req.Status != sale.Status {
			confirmed = *req.Status == model.SaleStatusConfirmed
			if *req.Status == model.SaleStatusDelivered && sale.DeliveredAt == nil {
				now := time.Now()
				sale.DeliveredAt = &now
			}
			sale.Status = *req.Status
		}

		if err := s.saleRepo.Update(txCtx, sale); err != nil {
			return storeError("sale", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if confirmed {
		s.announceConfirmed(ctx, sale)
	}
	return sale, nil
}

// announceConfirmed emails the client and notifies realtime subscribers.
// Failures never undo the committed sale.
func (s *saleService) announceConfirmed(ctx context.Context, sale *model.Sale) {
	sent := false
	if s.notifier != nil {
		data := notifier.SaleEmail{
			SaleNumber: sale.Number,
			Total:      sale.TotalAmount,
			Commission: sale.CommissionAmount,
		}
		client := sale.Client
		if client == nil {
			client, _ = s.clientRepo.FindByID(ctx, sale.ClientID)
		}
		if client != nil {
			data.To = client.Email
			data.ClientName = client.PersonName
		}
		if rep, err := s.userRepo.FindByID(ctx, sale.RepresentativeID); err == nil {
			data.RepresentativeName = rep.Name
		}
		sent = s.notifier.SendSaleConfirmation(ctx, data)
	}

	s.events.Publish(sale.RepresentativeID, EventSaleConfirmed, SaleEvent{
		SaleID:           sale.ID,
		Number:           sale.Number,
		RepresentativeID: sale.RepresentativeID,
		TotalAmount:      sale.TotalAmount,
		CommissionAmount: sale.CommissionAmount,
		EmailSent:        sent,
	})
}

func (s *saleService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return forbiddenError("only administrators can delete sales")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		sale, err := s.saleRepo.FindByID(txCtx, id)
		if err != nil {
			return storeError("sale", err)
		}
		if err := s.saleRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete sale: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteSale, sale.ID, sale.Number, nil)
	})
}
