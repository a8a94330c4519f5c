package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
)

type CompanyRequest struct {
	Name        string `json:"name" binding:"required"`
	TaxID       string `json:"tax_id" binding:"required"`
	LogoURL     string `json:"logo_url"`
	Description string `json:"description"`
	Phone       string `json:"phone"`
	Email       string `json:"email" binding:"omitempty,email"`
	Website     string `json:"website"`
	Address     string `json:"address"`
	City        string `json:"city"`
	State       string `json:"state"`
	Active      *bool  `json:"active"`
}

type UpdateCompanyRequest struct {
	Name        *string `json:"name"`
	TaxID       *string `json:"tax_id"`
	LogoURL     *string `json:"logo_url"`
	Description *string `json:"description"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email"`
	Website     *string `json:"website"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       *string `json:"state"`
	Active      *bool   `json:"active"`
}

type CompanyListParams struct {
	ListParams
	Active *bool
}

type CompanyService interface {
	List(ctx context.Context, params CompanyListParams) ([]model.Company, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Company, error)
	Create(ctx context.Context, actor model.Actor, req CompanyRequest) (*model.Company, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type companyService struct {
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewCompanyService(companyRepo repository.CompanyRepository, auditRepo repository.AuditRepository, txManager repository.TransactionManager) CompanyService {
	return &companyService{companyRepo: companyRepo, auditRepo: auditRepo, txManager: txManager}
}

func (s *companyService) List(ctx context.Context, params CompanyListParams) ([]model.Company, int64, error) {
	companies, total, err := s.companyRepo.List(ctx, repository.CompanyFilter{
		ListFilter: repository.ListFilter{Search: params.Search, Limit: params.Limit, Offset: params.Offset},
		Active:     params.Active,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch companies: %w", err)
	}
	return companies, total, nil
}

func (s *companyService) Get(ctx context.Context, id uuid.UUID) (*model.Company, error) {
	company, err := s.companyRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("company", err)
	}
	return company, nil
}

func (s *companyService) ensureTaxIDFree(ctx context.Context, taxID string, self uuid.UUID) error {
	existing, err := s.companyRepo.FindByTaxID(ctx, taxID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: a company with CNPJ %s already exists", ErrDuplicate, taxID)
	}
	return nil
}

func (s *companyService) Create(ctx context.Context, actor model.Actor, req CompanyRequest) (*model.Company, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("only administrators can manage companies")
	}
	if err := requireFields([2]string{"name", req.Name}, [2]string{"tax_id", req.TaxID}); err != nil {
		return nil, err
	}
	taxID, err := normalizeCNPJ(req.TaxID)
	if err != nil {
		return nil, err
	}
	if err := validateEmail(strings.TrimSpace(req.Email), false); err != nil {
		return nil, err
	}

	company := &model.Company{
		Name:        strings.TrimSpace(req.Name),
		TaxID:       taxID,
		LogoURL:     req.LogoURL,
		Description: req.Description,
		Phone:       req.Phone,
		Email:       strings.TrimSpace(req.Email),
		Website:     req.Website,
		Address:     req.Address,
		City:        req.City,
		State:       strings.ToUpper(req.State),
		Active:      true,
		CreatedBy:   actor.ID,
	}
	if req.Active != nil {
		company.Active = *req.Active
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.ensureTaxIDFree(txCtx, taxID, uuid.Nil); err != nil {
			return err
		}
		if err := s.companyRepo.Create(txCtx, company); err != nil {
			return storeError("company", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateCompany, company.ID, company.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateCompanyRequest) (*model.Company, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("only administrators can manage companies")
	}

	var company *model.Company
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if company, err = s.companyRepo.FindByID(txCtx, id); err != nil {
			return storeError("company", err)
		}

		setString(&company.Name, req.Name)
		setString(&company.LogoURL, req.LogoURL)
		setString(&company.Description, req.Description)
		setString(&company.Phone, req.Phone)
		setString(&company.Website, req.Website)
		setString(&company.Address, req.Address)
		setString(&company.City, req.City)
		if req.State != nil {
			company.State = strings.ToUpper(strings.TrimSpace(*req.State))
		}
		if req.Active != nil {
			company.Active = *req.Active
		}
		if req.Email != nil {
			email := strings.TrimSpace(*req.Email)
			if err := validateEmail(email, false); err != nil {
				return err
			}
			company.Email = email
		}
		if company.Name == "" {
			return validationError("name is required")
		}
		if req.TaxID != nil {
			taxID, err := normalizeCNPJ(*req.TaxID)
			if err != nil {
				return err
			}
			if taxID == "" {
				return validationError("tax_id is required")
			}
			if err := s.ensureTaxIDFree(txCtx, taxID, company.ID); err != nil {
				return err
			}
			company.TaxID = taxID
		}

		if err := s.companyRepo.Update(txCtx, company); err != nil {
			return storeError("company", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateCompany, company.ID, company.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return company, nil
}

func (s *companyService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return forbiddenError("only administrators can manage companies")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		company, err := s.companyRepo.FindByID(txCtx, id)
		if err != nil {
			return storeError("company", err)
		}
		if err := s.companyRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete company: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteCompany, company.ID, company.Name, nil)
	})
}
