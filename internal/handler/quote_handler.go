package handler

import (
	"net/http"

	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

type QuoteHandler struct {
	quoteService service.QuoteService
}

func NewQuoteHandler(quoteService service.QuoteService) *QuoteHandler {
	return &QuoteHandler{quoteService: quoteService}
}

func (h *QuoteHandler) RegisterRoutes(router *gin.RouterGroup) {
	quotes := router.Group("/api/orcamentos")
	{
		quotes.GET("", h.ListQuotes)
		quotes.POST("", h.CreateQuote)
		quotes.GET("/:id", h.GetQuote)
		quotes.PUT("/:id", h.UpdateQuote)
		quotes.DELETE("/:id", h.DeleteQuote)
		quotes.POST("/:id/send", h.SendQuote)
	}
}

// ListQuotes
// @Summary      List quotes
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "draft, sent, accepted, rejected or expired"
// @Param        search  query     string  false  "Matches the quote number"
// @Param        limit   query     int     false  "Page size (default 25)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  response.Response{data=response.Page{items=[]model.Quote}}
// @Router       /api/orcamentos [get]
func (h *QuoteHandler) ListQuotes(c *gin.Context) {
	params, page := listParams(c)
	quotes, total, err := h.quoteService.List(c.Request.Context(), actor(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, quotes, total, page.Limit, page.Offset))
}

// GetQuote returns the quote with its items in position order
// @Summary      Get quote
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response{data=model.Quote}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orcamentos/{id} [get]
func (h *QuoteHandler) GetQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	quote, err := h.quoteService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// CreateQuote prices the items and stores quote and items together
// @Summary      Create quote
// @Description  Use either discount_percent or discount_amount, not both
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateQuoteRequest  true  "Quote"
// @Success      201      {object}  response.Response{data=model.Quote}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/orcamentos [post]
func (h *QuoteHandler) CreateQuote(c *gin.Context) {
	var req service.CreateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, quote))
}

// UpdateQuote
// @Summary      Update quote
// @Description  Supplying items replaces all stored items and recomputes totals
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Quote ID"
// @Param        payload  body      service.UpdateQuoteRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Quote}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /api/orcamentos/{id} [put]
func (h *QuoteHandler) UpdateQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateQuoteRequest
	if !bindJSON(c, &req) {
		return
	}
	quote, err := h.quoteService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, quote))
}

// DeleteQuote
// @Summary      Delete quote
// @Tags         quotes
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Quote ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/orcamentos/{id} [delete]
func (h *QuoteHandler) DeleteQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.quoteService.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// SendQuote emails the quote to the client
// @Summary      Send quote by email
// @Description  email_sent is false when delivery failed; the quote then stays a draft
// @Tags         quotes
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                    true   "Quote ID"
// @Param        payload  body      service.SendQuoteRequest  false  "Recipient override"
// @Success      200      {object}  response.Response{data=service.SendQuoteResult}
// @Failure      400      {object}  response.Response
// @Router       /api/orcamentos/{id}/send [post]
func (h *QuoteHandler) SendQuote(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.SendQuoteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	result, err := h.quoteService.Send(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}
