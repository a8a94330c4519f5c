package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CreateClientRequest struct {
	PersonName        string           `json:"person_name" binding:"required"`
	EstablishmentName string           `json:"establishment_name" binding:"required"`
	TaxID             string           `json:"tax_id"`
	CPF               string           `json:"cpf"`
	City              string           `json:"city" binding:"required"`
	Phone             string           `json:"phone" binding:"required"`
	Email             string           `json:"email" binding:"required,email"`
	Street            string           `json:"street"`
	Number            string           `json:"number"`
	Complement        string           `json:"complement"`
	Neighborhood      string           `json:"neighborhood"`
	PostalCode        string           `json:"postal_code"`
	Notes             string           `json:"notes"`
	Status            string           `json:"status"`
	CreditLimit       *decimal.Decimal `json:"credit_limit"`
	PaymentTerms      string           `json:"payment_terms"`
}

type UpdateClientRequest struct {
	PersonName        *string          `json:"person_name"`
	EstablishmentName *string          `json:"establishment_name"`
	TaxID             *string          `json:"tax_id"`
	CPF               *string          `json:"cpf"`
	City              *string          `json:"city"`
	Phone             *string          `json:"phone"`
	Email             *string          `json:"email"`
	Street            *string          `json:"street"`
	Number            *string          `json:"number"`
	Complement        *string          `json:"complement"`
	Neighborhood      *string          `json:"neighborhood"`
	PostalCode        *string          `json:"postal_code"`
	Notes             *string          `json:"notes"`
	Status            *string          `json:"status"`
	CreditLimit       *decimal.Decimal `json:"credit_limit"`
	PaymentTerms      *string          `json:"payment_terms"`
}

type ClientService interface {
	List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Client, int64, error)
	Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Client, error)
	Create(ctx context.Context, actor model.Actor, req CreateClientRequest) (*model.Client, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateClientRequest) (*model.Client, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type clientService struct {
	clientRepo repository.ClientRepository
	auditRepo  repository.AuditRepository
	txManager  repository.TransactionManager
}

func NewClientService(clientRepo repository.ClientRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) ClientService {
	return &clientService{clientRepo: clientRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *clientService) List(ctx context.Context, actor model.Actor, params ListParams) ([]model.Client, int64, error) {
	if params.Status != "" && !model.IsClientStatus(params.Status) {
		return nil, 0, validationError("unknown client status %q", params.Status)
	}
	clients, total, err := s.clientRepo.List(ctx, params.filter(actor))
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch clients: %w", err)
	}
	return clients, total, nil
}

func (s *clientService) load(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("client", err)
	}
	if !actor.CanAccess(client.RepresentativeID) {
		return nil, forbiddenError("client belongs to another representative")
	}
	return client, nil
}

func (s *clientService) Get(ctx context.Context, actor model.Actor, id uuid.UUID) (*model.Client, error) {
	return s.load(ctx, actor, id)
}

// ensureTaxIDFree rejects a CNPJ already used by a client other than self.
func (s *clientService) ensureTaxIDFree(ctx context.Context, taxID string, self uuid.UUID) error {
	existing, err := s.clientRepo.FindByTaxID(ctx, taxID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: a client with CNPJ %s already exists", ErrDuplicate, taxID)
	}
	return nil
}

func (s *clientService) Create(ctx context.Context, actor model.Actor, req CreateClientRequest) (*model.Client, error) {
	if err := requireFields(
		[2]string{"person_name", req.PersonName},
		[2]string{"establishment_name", req.EstablishmentName},
		[2]string{"city", req.City},
		[2]string{"phone", req.Phone},
	); err != nil {
		return nil, err
	}
	email := strings.TrimSpace(req.Email)
	if err := validateEmail(email, true); err != nil {
		return nil, err
	}
	taxID, err := normalizeCNPJ(req.TaxID)
	if err != nil {
		return nil, err
	}
	cpf, err := normalizeCPF(req.CPF)
	if err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = model.ClientStatusActive
	}
	if !model.IsClientStatus(status) {
		return nil, validationError("unknown client status %q", status)
	}
	if err := nonNegative("credit_limit", req.CreditLimit); err != nil {
		return nil, err
	}

	now := time.Now()
	client := &model.Client{
		PersonName:        strings.TrimSpace(req.PersonName),
		EstablishmentName: strings.TrimSpace(req.EstablishmentName),
		CPF:               cpf,
		City:              strings.TrimSpace(req.City),
		Phone:             strings.TrimSpace(req.Phone),
		Email:             email,
		Street:            req.Street,
		Number:            req.Number,
		Complement:        req.Complement,
		Neighborhood:      req.Neighborhood,
		PostalCode:        digitsOnly(req.PostalCode),
		Notes:             req.Notes,
		RepresentativeID:  actor.ID,
		Status:            status,
		ConvertedAt:       &now,
		CreditLimit:       req.CreditLimit,
		PaymentTerms:      req.PaymentTerms,
	}
	if taxID != "" {
		if err := s.ensureTaxIDFree(ctx, taxID, uuid.Nil); err != nil {
			return nil, err
		}
		client.TaxID = &taxID
	}

	if err := s.clientRepo.Create(ctx, client); err != nil {
		return nil, storeError("client", err)
	}
	return client, nil
}

func (s *clientService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateClientRequest) (*model.Client, error) {
	client, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	setString(&client.PersonName, req.PersonName)
	setString(&client.EstablishmentName, req.EstablishmentName)
	setString(&client.City, req.City)
	setString(&client.Phone, req.Phone)
	setString(&client.Street, req.Street)
	setString(&client.Number, req.Number)
	setString(&client.Complement, req.Complement)
	setString(&client.Neighborhood, req.Neighborhood)
	setString(&client.Notes, req.Notes)
	setString(&client.PaymentTerms, req.PaymentTerms)
	if err := requireFields(
		[2]string{"person_name", client.PersonName},
		[2]string{"establishment_name", client.EstablishmentName},
		[2]string{"city", client.City},
		[2]string{"phone", client.Phone},
	); err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := strings.TrimSpace(*req.Email)
		if err := validateEmail(email, true); err != nil {
			return nil, err
		}
		client.Email = email
	}
	if req.PostalCode != nil {
		client.PostalCode = digitsOnly(*req.PostalCode)
	}
	if req.CPF != nil {
		cpf, err := normalizeCPF(*req.CPF)
		if err != nil {
			return nil, err
		}
		client.CPF = cpf
	}
	if req.TaxID != nil {
		taxID, err := normalizeCNPJ(*req.TaxID)
		if err != nil {
			return nil, err
		}
		if taxID == "" {
			client.TaxID = nil
		} else {
			if err := s.ensureTaxIDFree(ctx, taxID, client.ID); err != nil {
				return nil, err
			}
			client.TaxID = &taxID
		}
	}
	if req.Status != nil {
		if !model.IsClientStatus(*req.Status) {
			return nil, validationError("unknown client status %q", *req.Status)
		}
		client.Status = *req.Status
	}
	if req.CreditLimit != nil {
		if err := nonNegative("credit_limit", req.CreditLimit); err != nil {
			return nil, err
		}
		client.CreditLimit = req.CreditLimit
	}

	if err := s.clientRepo.Update(ctx, client); err != nil {
		return nil, storeError("client", err)
	}
	return client, nil
}

func (s *clientService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return forbiddenError("only administrators can delete clients")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		client, err := s.clientRepo.FindByID(txCtx, id)
		if err != nil {
			return storeError("client", err)
		}
		if err := s.clientRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete client: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteClient, client.ID, client.EstablishmentName, nil)
	})
}
