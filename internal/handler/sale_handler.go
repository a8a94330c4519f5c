package handler

import (
	"net/http"

	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

type SaleHandler struct {
	saleService service.SaleService
}

func NewSaleHandler(saleService service.SaleService) *SaleHandler {
	return &SaleHandler{saleService: saleService}
}

func (h *SaleHandler) RegisterRoutes(router *gin.RouterGroup) {
	sales := router.Group("/api/vendas")
	{
		sales.GET("", h.ListSales)
		sales.POST("", h.CreateSale)
		sales.GET("/:id", h.GetSale)
		sales.PUT("/:id", h.UpdateSale)
		sales.DELETE("/:id", h.DeleteSale)
	}
}

// ListSales
// @Summary      List sales
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "pending, confirmed, delivered or cancelled"
// @Param        search  query     string  false  "Matches the sale number"
// @Param        limit   query     int     false  "Page size (default 25)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  response.Response{data=response.Page{items=[]model.Sale}}
// @Router       /api/vendas [get]
func (h *SaleHandler) ListSales(c *gin.Context) {
	params, page := listParams(c)
	sales, total, err := h.saleService.List(c.Request.Context(), actor(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, sales, total, page.Limit, page.Offset))
}

// GetSale
// @Summary      Get sale
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Response{data=model.Sale}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/vendas/{id} [get]
func (h *SaleHandler) GetSale(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	sale, err := h.saleService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// CreateSale records a sale, optionally from an accepted quote
// @Summary      Create sale
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateSaleRequest  true  "Sale"
// @Success      201      {object}  response.Response{data=model.Sale}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/vendas [post]
func (h *SaleHandler) CreateSale(c *gin.Context) {
	var req service.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sale))
}

// UpdateSale
// @Summary      Update sale
// @Description  Moving to confirmed emails the client; commission is recomputed when total or percent change
// @Tags         sales
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Sale ID"
// @Param        payload  body      service.UpdateSaleRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Sale}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/vendas/{id} [put]
func (h *SaleHandler) UpdateSale(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	sale, err := h.saleService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sale))
}

// DeleteSale
// @Summary      Delete sale
// @Description  Admin only
// @Tags         sales
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Sale ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/vendas/{id} [delete]
func (h *SaleHandler) DeleteSale(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.saleService.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
