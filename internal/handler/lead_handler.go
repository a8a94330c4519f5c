package handler

import (
	"net/http"

	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

type LeadHandler struct {
	leadService service.LeadService
}

func NewLeadHandler(leadService service.LeadService) *LeadHandler {
	return &LeadHandler{leadService: leadService}
}

func (h *LeadHandler) RegisterRoutes(router *gin.RouterGroup) {
	leads := router.Group("/api/leads")
	{
		leads.GET("", h.ListLeads)
		leads.POST("", h.CreateLead)
		leads.GET("/:id", h.GetLead)
		leads.PUT("/:id", h.UpdateLead)
		leads.DELETE("/:id", h.DeleteLead)
		leads.GET("/:id/history", h.GetLeadHistory)
		leads.POST("/:id/convert", h.ConvertLead)
	}
}

// ListLeads returns the leads visible to the caller
// @Summary      List leads
// @Description  Representatives see their own leads, admins see all
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "Exact status"
// @Param        search  query     string  false  "Matches name, establishment, city, phone or email"
// @Param        limit   query     int     false  "Page size (default 25)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  response.Response{data=response.Page{items=[]model.Lead}}
// @Failure      400     {object}  response.Response
// @Router       /api/leads [get]
func (h *LeadHandler) ListLeads(c *gin.Context) {
	params, page := listParams(c)
	leads, total, err := h.leadService.List(c.Request.Context(), actor(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, leads, total, page.Limit, page.Offset))
}

// GetLead returns one lead
// @Summary      Get lead
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response{data=model.Lead}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [get]
func (h *LeadHandler) GetLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	lead, err := h.leadService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// CreateLead registers a lead owned by the caller
// @Summary      Create lead
// @Description  New leads start in status "new"
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateLeadRequest  true  "Lead"
// @Success      201      {object}  response.Response{data=model.Lead}
// @Failure      400      {object}  response.Response
// @Router       /api/leads [post]
func (h *LeadHandler) CreateLead(c *gin.Context) {
	var req service.CreateLeadRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.leadService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, lead))
}

// UpdateLead applies a partial update; a status change appends a history entry
// @Summary      Update lead
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "Lead ID"
// @Param        payload  body      service.UpdateLeadRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Lead}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/leads/{id} [put]
func (h *LeadHandler) UpdateLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateLeadRequest
	if !bindJSON(c, &req) {
		return
	}
	lead, err := h.leadService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, lead))
}

// DeleteLead soft-deletes a lead
// @Summary      Delete lead
// @Description  Admin only. The status history is kept.
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id} [delete]
func (h *LeadHandler) DeleteLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.leadService.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}

// GetLeadHistory lists the status changes of a lead
// @Summary      Lead status history
// @Description  Newest first
// @Tags         leads
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Lead ID"
// @Success      200  {object}  response.Response{data=[]model.LeadStatusHistory}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/leads/{id}/history [get]
func (h *LeadHandler) GetLeadHistory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	history, err := h.leadService.History(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, history))
}

// ConvertLead turns a lead into a client
// @Summary      Convert lead
// @Tags         leads
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                      true  "Lead ID"
// @Param        payload  body      service.ConvertLeadRequest  true  "Client data the lead lacks"
// @Success      201      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/leads/{id}/convert [post]
func (h *LeadHandler) ConvertLead(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.ConvertLeadRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	client, err := h.leadService.Convert(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}
