package handler

import (
	"net/http"

	"crm/internal/middleware"
	"crm/internal/model"
	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	companyService service.CompanyService
}

func NewCompanyHandler(companyService service.CompanyService) *CompanyHandler {
	return &CompanyHandler{companyService: companyService}
}

func (h *CompanyHandler) RegisterRoutes(router *gin.RouterGroup) {
	companies := router.Group("/api/empresas")
	{
		companies.GET("", h.ListCompanies)
		companies.GET("/:id", h.GetCompany)
		companies.POST("", middleware.RequireRole(model.RoleAdmin), h.CreateCompany)
		companies.PUT("/:id", middleware.RequireRole(model.RoleAdmin), h.UpdateCompany)
		companies.DELETE("/:id", middleware.RequireRole(model.RoleAdmin), h.DeleteCompany)
	}
}

// ListCompanies lists the represented companies
// @Summary      List companies
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        search  query     string  false  "Matches name or CNPJ"
// @Param        active  query     bool    false  "Filter by active flag"
// @Param        limit   query     int     false  "Page size (default 25)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  response.Response{data=response.Page{items=[]model.Company}}
// @Router       /api/empresas [get]
func (h *CompanyHandler) ListCompanies(c *gin.Context) {
	params, page := listParams(c)
	active, ok := queryBool(c, "active")
	if !ok {
		return
	}
	companies, total, err := h.companyService.List(c.Request.Context(), service.CompanyListParams{ListParams: params, Active: active})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, companies, total, page.Limit, page.Offset))
}

// GetCompany
// @Summary      Get company
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response{data=model.Company}
// @Failure      404  {object}  response.Response
// @Router       /api/empresas/{id} [get]
func (h *CompanyHandler) GetCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	company, err := h.companyService.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// CreateCompany
// @Summary      Create company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CompanyRequest  true  "Company"
// @Success      201      {object}  response.Response{data=model.Company}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/empresas [post]
func (h *CompanyHandler) CreateCompany(c *gin.Context) {
	var req service.CompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, company))
}

// UpdateCompany
// @Summary      Update company
// @Tags         companies
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                        true  "Company ID"
// @Param        payload  body      service.UpdateCompanyRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Company}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/empresas/{id} [put]
func (h *CompanyHandler) UpdateCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}
	company, err := h.companyService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, company))
}

// DeleteCompany
// @Summary      Delete company
// @Tags         companies
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Company ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/empresas/{id} [delete]
func (h *CompanyHandler) DeleteCompany(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.companyService.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
