package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"crm/internal/model"
	"crm/internal/notifier"
	"crm/internal/pricing"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type QuoteItemRequest struct {
	ProductID   *uuid.UUID      `json:"product_id"`
	ProductName string          `json:"product_name"`
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Position    *int            `json:"position"`
}

type CreateQuoteRequest struct {
	ClientID        uuid.UUID          `json:"client_id" binding:"required"`
	CompanyID       uuid.UUID          `json:"company_id" binding:"required"`
	ValidUntil      string             `json:"valid_until"`
	DiscountPercent *decimal.Decimal   `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal   `json:"discount_amount"`
	Notes           string             `json:"notes"`
	PaymentTerms    string             `json:"payment_terms"`
	Items           []QuoteItemRequest `json:"items"`
}

// UpdateQuoteRequest: Items, when present, replace every stored item.
// Setting one discount kind clears the other.
type UpdateQuoteRequest struct {
	ValidUntil      *string             `json:"valid_until"`
	Status          *string             `json:"status"`
	DiscountPercent *decimal.Decimal    `json:"discount_percent"`
	DiscountAmount  *decimal.Decimal    `json:"discount_amount"`
	Notes           *string             `json:"notes"`
	PaymentTerms    *string             `json:"payment_terms"`
	Items           *[]QuoteItemRequest `json:"items"`
}

type SendQuoteRequest struct {
	// To overrides the client email
	To string `json:"to" binding:"omitempty,email"`
}

type SendQuoteResult struct {
	Quote     *model.Quote `json:"quote"`
	EmailSent bool         `json:"email_sent"`
}

type QuoteService interface {
	List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Quote, int64, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Quote, error)
	Create(ctx context.Context, actor model.Actor, req CreateQuoteRequest) (*model.Quote, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateQuoteRequest) (*model.Quote, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
	Send(ctx context.Context, actor model.Actor, id uuid.UUID, req SendQuoteRequest) (SendQuoteResult, error)
}

type quoteService struct {
	quoteRepo   repository.QuoteRepository
	clientRepo  repository.ClientRepository
	companyRepo repository.CompanyRepository
	productRepo repository.ProductRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	notifier    Notifier
	events      EventPublisher
}

func NewQuoteService(
	quoteRepo repository.QuoteRepository,
	clientRepo repository.ClientRepository,
	companyRepo repository.CompanyRepository,
	productRepo repository.ProductRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	notifier Notifier,
	events EventPublisher,
) QuoteService {
	return &quoteService{
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		companyRepo: companyRepo,
		productRepo: productRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		notifier:    notifier,
		events:      publisherOrNoop(events),
	}
}

func (s *quoteService) List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Quote, int64, error) {
	if params.Status != "" && !model.IsQuoteStatus(params.Status) {
		return nil, 0, validationError("unknown quote status %q", params.Status)
	}
	quotes, total, err := s.quoteRepo.List(ctx, params.filter(actor))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch quotes: %w", err)
	}
	return quotes, total, nil
}

func (s *quoteService) load(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Quote, error) {
	quote, err := s.quoteRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("quote", err)
	}
	if !actor.CanAccess(quote.RepresentativeID) {
		return nil, forbiddenError("quote belongs to another representative")
	}
	return quote, nil
}

func (s *quoteService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Quote, error) {
	return s.load(ctx, actor, id)
}

// buildItems validates item requests and fills missing product names from the catalog.
func (s *quoteService) buildItems(ctx context.Context, reqs []QuoteItemRequest) ([]model.QuoteItem, error) {
	items := make([]model.QuoteItem, 0, len(reqs))
	for i, r := range reqs {
		name := strings.TrimSpace(r.ProductName)
		if name == "" && r.ProductID != nil {
			product, err := s.productRepo.FindByID(ctx, *r.ProductID)
			if err != nil {
				return nil, fmt.Errorf("items[%d]: %w", i, storeError("product", err))
			}
			name = product.Name
		}
		if name == "" {
			return nil, validationError("items[%d]: product_name is required", i)
		}
		position := i
		if r.Position != nil {
			position = *r.Position
		}
		items = append(items, model.QuoteItem{
			ProductID:   r.ProductID,
			ProductName: name,
			Description: r.Description,
			Quantity:    r.Quantity,
			UnitPrice:   r.UnitPrice,
			Position:    position,
		})
	}
	return items, nil
}

// priceQuote runs the calculator over items and writes totals back onto quote and items.
func priceQuote(quote *model.Quote, items []model.QuoteItem) error {
	lines := make([]pricing.Line, len(items))
	for i, it := range items {
		lines[i] = pricing.Line{Quantity: it.Quantity, UnitPrice: it.UnitPrice}
	}
	totals, err := pricing.CalculateQuote(lines, pricing.Discount{
		Percent: quote.DiscountPercent,
		Amount:  quote.DiscountAmount,
	})
	if err != nil {
		if errors.Is(err, pricing.ErrInvalidLine) {
			return validationError("every item needs a positive quantity and a non-negative unit price")
		}
		return validationError("%s", err.Error())
	}
	for i := range items {
		items[i].LineTotal = totals.LineTotals[i]
	}
	quote.GrossTotal = totals.Gross
	quote.NetTotal = totals.Net
	return nil
}

// nextNumber follows the highest number already issued today, so gaps left
// by deleted rows are never refilled.
func nextNumber(ctx context.Context, prefix string, last func(context.Context, string) (string, error)) (string, error) {
	full := prefix + "-" + time.Now().Format("20060102") + "-"
	prev, err := last(ctx, full)
	if err != nil {
		return "", err
	}
	var n int
	if prev != "" {
		if n, err = strconv.Atoi(strings.TrimPrefix(prev, full)); err != nil {
			return "", fmt.Errorf("parse number %q: %w", prev, err)
		}
	}
	return fmt.Sprintf("%s%05d", full, n+1), nil
}

func (s *quoteService) Create(ctx context.Context, actor model.Actor, req CreateQuoteRequest) (*model.Quote, error) {
	validUntil, err := parseDate("valid_until", req.ValidUntil)
	if err != nil {
		return nil, err
	}

	quote := &model.Quote{
		ClientID:         req.ClientID,
		CompanyID:        req.CompanyID,
		RepresentativeID: actor.ID,
		IssuedAt:         time.Now(),
		ValidUntil:       validUntil,
		Status:           model.QuoteStatusDraft,
		DiscountPercent:  req.DiscountPercent,
		DiscountAmount:   req.DiscountAmount,
		Notes:            req.Notes,
		PaymentTerms:     req.PaymentTerms,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, req.ClientID)
		if err != nil {
			return storeError("client", err)
		}
		if !actor.CanAccess(client.RepresentativeID) {
			return forbiddenError("client belongs to another representative")
		}
		if _, err := s.companyRepo.FindByID(txCtx, req.CompanyID); err != nil {
			return storeError("company", err)
		}

		items, err := s.buildItems(txCtx, req.Items)
		if err != nil {
			return err
		}
		if err := priceQuote(quote, items); err != nil {
			return err
		}
		quote.Items = items

		if quote.Number, err = nextNumber(txCtx, "ORC", s.quoteRepo.LastNumber); err != nil {
			return fmt.Errorf("failed to number quote: %w", err)
		}
		if err := s.quoteRepo.Create(txCtx, quote); err != nil {
			return storeError("quote", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return quote, nil
}

func (s *quoteService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateQuoteRequest) (*model.Quote, error) {
	if req.Status != nil && !model.IsQuoteStatus(*req.Status) {
		return nil, validationError("unknown quote status %q", *req.Status)
	}
	var validUntil *time.Time
	if req.ValidUntil != nil {
		var err error
		if validUntil, err = parseDate("valid_until", *req.ValidUntil); err != nil {
			return nil, err
		}
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, err := s.load(txCtx, actor, id)
		if err != nil {
			return err
		}

		if req.ValidUntil != nil {
			quote.ValidUntil = validUntil
		}
		if req.Status != nil {
			quote.Status = *req.Status
		}
		if req.Notes != nil {
			quote.Notes = *req.Notes
		}
		if req.PaymentTerms != nil {
			quote.PaymentTerms = *req.PaymentTerms
		}

		discountChanged := req.DiscountPercent != nil || req.DiscountAmount != nil
		if discountChanged {
			quote.DiscountPercent = req.DiscountPercent
			quote.DiscountAmount = req.DiscountAmount
		}

		items := quote.Items
		if req.Items != nil {
			if items, err = s.buildItems(txCtx, *req.Items); err != nil {
				return err
			}
		}
		if req.Items != nil || discountChanged {
			if err := priceQuote(quote, items); err != nil {
				return err
			}
		}

		if err := s.quoteRepo.Update(txCtx, quote); err != nil {
			return storeError("quote", err)
		}
		if req.Items != nil {
			if err := s.quoteRepo.ReplaceItems(txCtx, quote.ID, items); err != nil {
				return fmt.Errorf("failed to replace quote items: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.load(ctx, actor, id)
}

func (s *quoteService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		quote, err := s.load(txCtx, actor, id)
		if err != nil {
			return err
		}
		if err := s.quoteRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete quote: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteQuote, quote.ID, quote.Number, nil)
	})
}

func (s *quoteService) Send(ctx context.Context, actor model.Actor, id uuid.UUID, req SendQuoteRequest) (SendQuoteResult, error) {
	quote, err := s.load(ctx, actor, id)
	if err != nil {
		return SendQuoteResult{}, err
	}

	to := strings.TrimSpace(req.To)
	clientName := ""
	if quote.Client != nil {
		clientName = quote.Client.PersonName
		if to == "" {
			to = quote.Client.Email
		}
	}
	if err := validateEmail(to, true); err != nil {
		return SendQuoteResult{}, err
	}
	companyName := ""
	if quote.Company != nil {
		companyName = quote.Company.Name
	}

	sent := false
	if s.notifier != nil {
		sent = s.notifier.SendQuote(ctx, notifier.QuoteEmail{
			To:          to,
			ClientName:  clientName,
			CompanyName: companyName,
			QuoteNumber: quote.Number,
			Total:       quote.NetTotal,
			Link:        s.notifier.QuoteLink(quote.ID.String()),
		})
	}

	if sent && quote.Status == model.QuoteStatusDraft {
		quote.Status = model.QuoteStatusSent
		if err := s.quoteRepo.Update(ctx, quote); err != nil {
			return SendQuoteResult{}, storeError("quote", err)
		}
	}
	if sent {
		s.events.Publish(quote.RepresentativeID, EventQuoteSent, map[string]interface{}{
			"quote_id":          quote.ID,
			"number":            quote.Number,
			"representative_id": quote.RepresentativeID,
			"to":                to,
		})
	}
	return SendQuoteResult{Quote: quote, EmailSent: sent}, nil
}
