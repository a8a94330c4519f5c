package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ConvertedReason is the history reason recorded when a lead becomes a client
const ConvertedReason = "Convertido em cliente"

type CreateLeadRequest struct {
	PersonName        string `json:"person_name" binding:"required"`
	EstablishmentName string `json:"establishment_name" binding:"required"`
	City              string `json:"city" binding:"required"`
	Phone             string `json:"phone" binding:"required"`
	Email             string `json:"email" binding:"omitempty,email"`
	Notes             string `json:"notes"`
	Source            string `json:"source"`
	LastContactAt     string `json:"last_contact_at"` // YYYY-MM-DD or RFC3339
}

type UpdateLeadRequest struct {
	PersonName        *string `json:"person_name"`
	EstablishmentName *string `json:"establishment_name"`
	City              *string `json:"city"`
	Phone             *string `json:"phone"`
	Email             *string `json:"email"`
	Notes             *string `json:"notes"`
	Source            *string `json:"source"`
	Status            *string `json:"status"`
	LastContactAt     *string `json:"last_contact_at"`
	// Reason is recorded in the status history when Status changes
	Reason string `json:"reason"`
}

// ConvertLeadRequest carries the client fields a lead does not have
type ConvertLeadRequest struct {
	TaxID        string           `json:"tax_id"`
	CPF          string           `json:"cpf"`
	Email        string           `json:"email" binding:"omitempty,email"`
	Street       string           `json:"street"`
	Number       string           `json:"number"`
	Complement   string           `json:"complement"`
	Neighborhood string           `json:"neighborhood"`
	PostalCode   string           `json:"postal_code"`
	CreditLimit  *decimal.Decimal `json:"credit_limit"`
	PaymentTerms string           `json:"payment_terms"`
}

type LeadStatusEvent struct {
	LeadID           uuid.UUID `json:"lead_id"`
	PreviousStatus   string    `json:"previous_status"`
	NewStatus        string    `json:"new_status"`
	RepresentativeID uuid.UUID `json:"representative_id"`
	ChangedBy        uuid.UUID `json:"changed_by"`
}

type LeadService interface {
	List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Lead, int64, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Lead, error)
	Create(ctx context.Context, actor model.Actor, req CreateLeadRequest) (*model.Lead, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateLeadRequest) (*model.Lead, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
	History(ctx context.Context, actor model.Actor, id uuid.UUID) ([]model.LeadStatusHistory, error)
	Convert(ctx context.Context, actor model.Actor, id uuid.UUID, req ConvertLeadRequest) (*model.Client, error)
}

type leadService struct {
	leadRepo    repository.LeadRepository
	historyRepo repository.LeadHistoryRepository
	clientRepo  repository.ClientRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
	events      EventPublisher
}

func NewLeadService(
	leadRepo repository.LeadRepository,
	historyRepo repository.LeadHistoryRepository,
	clientRepo repository.ClientRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
	events EventPublisher,
) LeadService {
	return &leadService{
		leadRepo:    leadRepo,
		historyRepo: historyRepo,
		clientRepo:  clientRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
		events:      publisherOrNoop(events),
	}
}

func (s *leadService) List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Lead, int64, error) {
	if params.Status != "" && !model.IsLeadStatus(params.Status) {
		return nil, 0, validationError("unknown lead status %q", params.Status)
	}
	leads, total, err := s.leadRepo.List(ctx, params.filter(actor))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch leads: %w", err)
	}
	return leads, total, nil
}

// load fetches a lead and enforces ownership.
func (s *leadService) load(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Lead, error) {
	lead, err := s.leadRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("lead", err)
	}
	if !actor.CanAccess(lead.RepresentativeID) {
		return nil, forbiddenError("lead belongs to another representative")
	}
	return lead, nil
}

func (s *leadService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Lead, error) {
	return s.load(ctx, actor, id)
}

func (s *leadService) Create(ctx context.Context, actor model.Actor, req CreateLeadRequest) (*model.Lead, error) {
	if err := requireFields(
		[2]string{"person_name", req.PersonName},
		[2]string{"establishment_name", req.EstablishmentName},
		[2]string{"city", req.City},
		[2]string{"phone", req.Phone},
	); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if err := validateEmail(email, false); err != nil {
		return nil, err
	}
	source := req.Source
	if source == "" {
		source = model.LeadSourceOther
	}
	if !model.IsLeadSource(source) {
		return nil, validationError("unknown lead source %q", source)
	}
	lastContact, err := parseDate("last_contact_at", req.LastContactAt)
	if err != nil {
		return nil, err
	}

	lead := &model.Lead{
		PersonName:        strings.TrimSpace(req.PersonName),
		EstablishmentName: strings.TrimSpace(req.EstablishmentName),
		City:              strings.TrimSpace(req.City),
		Phone:             strings.TrimSpace(req.Phone),
		Email:             email,
		Notes:             req.Notes,
		Source:            source,
		Status:            model.LeadStatusNew,
		RepresentativeID:  actor.ID,
		LastContactAt:     lastContact,
	}
	if err := s.leadRepo.Create(ctx, lead); err != nil {
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}
	return lead, nil
}

func (s *leadService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateLeadRequest) (*model.Lead, error) {
	if req.Status != nil && !model.IsLeadStatus(*req.Status) {
		return nil, validationError("unknown lead status %q", *req.Status)
	}
	if req.Source != nil && !model.IsLeadSource(*req.Source) {
		return nil, validationError("unknown lead source %q", *req.Source)
	}
	if req.Email != nil {
		if err := validateEmail(strings.TrimSpace(*req.Email), false); err != nil {
			return nil, err
		}
	}
	var lastContact *time.Time
	if req.LastContactAt != nil {
		var err error
		if lastContact, err = parseDate("last_contact_at", *req.LastContactAt); err != nil {
			return nil, err
		}
	}

	var lead *model.Lead
	var change *model.LeadStatusHistory
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if lead, err = s.load(txCtx, actor, id); err != nil {
			return err
		}

		setString(&lead.PersonName, req.PersonName)
		setString(&lead.EstablishmentName, req.EstablishmentName)
		setString(&lead.City, req.City)
		setString(&lead.Phone, req.Phone)
		setString(&lead.Email, req.Email)
		setString(&lead.Notes, req.Notes)
		setString(&lead.Source, req.Source)
		if req.LastContactAt != nil {
			lead.LastContactAt = lastContact
		}
		if err := requireFields(
			[2]string{"person_name", lead.PersonName},
			[2]string{"establishment_name", lead.EstablishmentName},
			[2]string{"city", lead.City},
			[2]string{"phone", lead.Phone},
		); err != nil {
			return err
		}

		if req.Status != nil {
			change = lead.ChangeStatus(*req.Status, actor.ID, req.Reason)
		}
		if err := s.leadRepo.Update(txCtx, lead); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		if change != nil {
			if err := s.historyRepo.Append(txCtx, change); err != nil {
				return fmt.Errorf("failed to record status history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if change != nil {
		s.events.Publish(lead.RepresentativeID, EventLeadStatusChanged, LeadStatusEvent{
			LeadID:           lead.ID,
			PreviousStatus:   change.PreviousStatus,
			NewStatus:        change.NewStatus,
			RepresentativeID: lead.RepresentativeID,
			ChangedBy:        actor.ID,
		})
	}
	return lead, nil
}

func (s *leadService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return forbiddenError("only administrators can delete leads")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		lead, err := s.leadRepo.FindByID(txCtx, id)
		if err != nil {
			return storeError("lead", err)
		}
		if err := s.leadRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete lead: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteLead, lead.ID, lead.PersonName, nil)
	})
}

func (s *leadService) History(ctx context.Context, actor model.Actor, id uuid.UUID) ([]model.LeadStatusHistory, error) {
	if _, err := s.load(ctx, actor, id); err != nil {
		return nil, err
	}
	entries, err := s.historyRepo.ListByLead(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch lead history: %w", err)
	}
	return entries, nil
}

func (s *leadService) Convert(ctx context.Context, actor model.Actor, id uuid.UUID, req ConvertLeadRequest) (*model.Client, error) {
	taxID, err := normalizeCNPJ(req.TaxID)
	if err != nil {
		return nil, err
	}
	cpf, err := normalizeCPF(req.CPF)
	if err != nil {
		return nil, err
	}
	if err := nonNegative("credit_limit", req.CreditLimit); err != nil {
		return nil, err
	}

	var client *model.Client
	var lead *model.Lead
	var change *model.LeadStatusHistory
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if lead, err = s.load(txCtx, actor, id); err != nil {
			return err
		}
		if lead.Status == model.LeadStatusConverted {
			return validationError("lead is already converted")
		}

		email := strings.TrimSpace(req.Email)
		if email == "" {
			email = lead.Email
		}
		if err := validateEmail(email, true); err != nil {
			return err
		}
		if taxID != "" {
			if _, err := s.clientRepo.FindByTaxID(txCtx, taxID); err == nil {
				return fmt.Errorf("%w: a client with this CNPJ already exists", ErrDuplicate)
			}
		}

		now := time.Now()
		leadID := lead.ID
		client = &model.Client{
			PersonName:        lead.PersonName,
			EstablishmentName: lead.EstablishmentName,
			CPF:               cpf,
			City:              lead.City,
			Phone:             lead.Phone,
			Email:             email,
			Street:            req.Street,
			Number:            req.Number,
			Complement:        req.Complement,
			Neighborhood:      req.Neighborhood,
			PostalCode:        digitsOnly(req.PostalCode),
			Notes:             lead.Notes,
			LeadID:            &leadID,
			RepresentativeID:  lead.RepresentativeID,
			Status:            model.ClientStatusActive,
			ConvertedAt:       &now,
			CreditLimit:       req.CreditLimit,
			PaymentTerms:      req.PaymentTerms,
		}
		if taxID != "" {
			client.TaxID = &taxID
		}
		if err := s.clientRepo.Create(txCtx, client); err != nil {
			return storeError("client", err)
		}

		change = lead.ChangeStatus(model.LeadStatusConverted, actor.ID, ConvertedReason)
		if err := s.leadRepo.Update(txCtx, lead); err != nil {
			return fmt.Errorf("failed to update lead: %w", err)
		}
		if err := s.historyRepo.Append(txCtx, change); err != nil {
			return fmt.Errorf("failed to record status history: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionConvertLead, lead.ID, lead.PersonName,
			map[string]interface{}{"client_id": client.ID})
	})
	if err != nil {
		return nil, err
	}

	s.events.Publish(lead.RepresentativeID, EventLeadStatusChanged, LeadStatusEvent{
		LeadID:           lead.ID,
		PreviousStatus:   change.PreviousStatus,
		NewStatus:        change.NewStatus,
		RepresentativeID: lead.RepresentativeID,
		ChangedBy:        actor.ID,
	})
	return client, nil
}
