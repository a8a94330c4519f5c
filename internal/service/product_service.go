package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"crm/internal/model"
	"crm/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	SKU         string          `json:"sku" binding:"required"`
	CompanyID   uuid.UUID       `json:"company_id" binding:"required"`
	Category    string          `json:"category"`
	BasePrice   decimal.Decimal `json:"base_price"`
	Active      *bool           `json:"active"`
}

type UpdateProductRequest struct {
	Name        *string          `json:"name"`
	Description *string          `json:"description"`
	SKU         *string          `json:"sku"`
	CompanyID   *uuid.UUID       `json:"company_id"`
	Category    *string          `json:"category"`
	BasePrice   *decimal.Decimal `json:"base_price"`
	Active      *bool            `json:"active"`
}

type ProductListParams struct {
	ListParams
	CompanyID *uuid.UUID
}

type ProductService interface {
	List(ctx context.Context, params ProductListParams) ([]model.Product, int64, error)
	Get(ctx context.Context, id uuid.UUID) (*model.Product, error)
	Create(ctx context.Context, actor model.Actor, req ProductRequest) (*model.Product, error)
	Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateProductRequest) (*model.Product, error)
	Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error
}

type productService struct {
	productRepo repository.ProductRepository
	companyRepo repository.CompanyRepository
	auditRepo   repository.AuditRepository
	txManager   repository.TransactionManager
}

func NewProductService(
	productRepo repository.ProductRepository,
	companyRepo repository.CompanyRepository,
	auditRepo repository.AuditRepository,
	txManager repository.TransactionManager,
) ProductService {
	return &productService{
		productRepo: productRepo,
		companyRepo: companyRepo,
		auditRepo:   auditRepo,
		txManager:   txManager,
	}
}

func (s *productService) List(ctx context.Context, params ProductListParams) ([]model.Product, int64, error) {
	products, total, err := s.productRepo.List(ctx, repository.ProductFilter{
		ListFilter: repository.ListFilter{Search: params.Search, Limit: params.Limit, Offset: params.Offset},
		CompanyID:  params.CompanyID,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("failed to fetch products: %w", err)
	}
	return products, total, nil
}

func (s *productService) Get(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	product, err := s.productRepo.FindByID(ctx, id)
	if err != nil {
		return nil, storeError("product", err)
	}
	return product, nil
}

func (s *productService) ensureSKUFree(ctx context.Context, sku string, self uuid.UUID) error {
	existing, err := s.productRepo.FindBySKU(ctx, sku)
	if errors.Is(err, repository.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID != self {
		return fmt.Errorf("%w: a product with SKU %s already exists", ErrDuplicate, sku)
	}
	return nil
}

func (s *productService) Create(ctx context.Context, actor model.Actor, req ProductRequest) (*model.Product, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("only administrators can manage products")
	}
	if err := requireFields([2]string{"name", req.Name}, [2]string{"sku", req.SKU}); err != nil {
		return nil, err
	}
	if req.CompanyID == uuid.Nil {
		return nil, validationError("company_id is required")
	}
	if req.BasePrice.IsNegative() {
		return nil, validationError("base_price must not be negative")
	}

	product := &model.Product{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		SKU:         strings.TrimSpace(req.SKU),
		CompanyID:   req.CompanyID,
		Category:    req.Category,
		BasePrice:   req.BasePrice.RoundBank(2),
		Active:      true,
	}
	if req.Active != nil {
		product.Active = *req.Active
	}

	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if _, err := s.companyRepo.FindByID(txCtx, req.CompanyID); err != nil {
			return storeError("company", err)
		}
		if err := s.ensureSKUFree(txCtx, product.SKU, uuid.Nil); err != nil {
			return err
		}
		if err := s.productRepo.Create(txCtx, product); err != nil {
			return storeError("product", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionCreateProduct, product.ID, product.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Update(ctx context.Context, actor model.Actor, id uuid.UUID, req UpdateProductRequest) (*model.Product, error) {
	if !actor.IsAdmin() {
		return nil, forbiddenError("only administrators can manage products")
	}
	if req.BasePrice != nil && req.BasePrice.IsNegative() {
		return nil, validationError("base_price must not be negative")
	}

	var product *model.Product
	err := s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		var err error
		if product, err = s.productRepo.FindByID(txCtx, id); err != nil {
			return storeError("product", err)
		}

		setString(&product.Name, req.Name)
		setString(&product.Description, req.Description)
		setString(&product.Category, req.Category)
		if product.Name == "" {
			return validationError("name is required")
		}
		if req.SKU != nil {
			sku := strings.TrimSpace(*req.SKU)
			if sku == "" {
				return validationError("sku is required")
			}
			if err := s.ensureSKUFree(txCtx, sku, product.ID); err != nil {
				return err
			}
			product.SKU = sku
		}
		if req.CompanyID != nil && *req.CompanyID != product.CompanyID {
			company, err := s.companyRepo.FindByID(txCtx, *req.CompanyID)
			if err != nil {
				return storeError("company", err)
			}
			product.CompanyID = company.ID
			product.Company = company
		}
		if req.BasePrice != nil {
			product.BasePrice = req.BasePrice.RoundBank(2)
		}
		if req.Active != nil {
			product.Active = *req.Active
		}

		if err := s.productRepo.Update(txCtx, product); err != nil {
			return storeError("product", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionUpdateProduct, product.ID, product.Name, req)
	})
	if err != nil {
		return nil, err
	}
	return product, nil
}

func (s *productService) Delete(ctx context.Context, actor model.Actor, id uuid.UUID) error {
	if !actor.IsAdmin() {
		return forbiddenError("only administrators can manage products")
	}
	return s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		product, err := s.productRepo.FindByID(txCtx, id)
		if err != nil {
			return storeError("product", err)
		}
		if err := s.productRepo.Delete(txCtx, id); err != nil {
			return fmt.Errorf("failed to delete product: %w", err)
		}
		return recordAudit(txCtx, s.auditRepo, actor, model.ActionDeleteProduct, product.ID, product.Name, nil)
	})
}
