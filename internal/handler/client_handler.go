package handler

import (
	"net/http"

	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

type ClientHandler struct {
	clientService service.ClientService
}

func NewClientHandler(clientService service.ClientService) *ClientHandler {
	return &ClientHandler{clientService: clientService}
}

func (h *ClientHandler) RegisterRoutes(router *gin.RouterGroup) {
	clients := router.Group("/api/clientes")
	{
		clients.GET("", h.ListClients)
		clients.POST("", h.CreateClient)
		clients.GET("/:id", h.GetClient)
		clients.PUT("/:id", h.UpdateClient)
		clients.DELETE("/:id", h.DeleteClient)
	}
}

// ListClients
// @Summary      List clients
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        status  query     string  false  "active, inactive or suspended"
// @Param        search  query     string  false  "Matches names, CNPJ or email"
// @Param        limit   query     int     false  "Page size (default 25)"
// @Param        offset  query     int     false  "Rows to skip"
// @Success      200     {object}  response.Response{data=response.Page{items=[]model.Client}}
// @Router       /api/clientes [get]
func (h *ClientHandler) ListClients(c *gin.Context) {
	params, page := listParams(c)
	clients, total, err := h.clientService.List(c.Request.Context(), actor(c), params)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, clients, total, page.Limit, page.Offset))
}

// GetClient
// @Summary      Get client
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response{data=model.Client}
// @Failure      403  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/clientes/{id} [get]
func (h *ClientHandler) GetClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	client, err := h.clientService.Get(c.Request.Context(), actor(c), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// CreateClient
// @Summary      Create client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateClientRequest  true  "Client"
// @Success      201      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/clientes [post]
func (h *ClientHandler) CreateClient(c *gin.Context) {
	var req service.CreateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, client))
}

// UpdateClient
// @Summary      Update client
// @Tags         clients
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                       true  "Client ID"
// @Param        payload  body      service.UpdateClientRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.Client}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/clientes/{id} [put]
func (h *ClientHandler) UpdateClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateClientRequest
	if !bindJSON(c, &req) {
		return
	}
	client, err := h.clientService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, client))
}

// DeleteClient
// @Summary      Delete client
// @Description  Admin only
// @Tags         clients
// @Security     BearerAuth
// @Produce      json
// @Param        id   path      string  true  "Client ID"
// @Success      200  {object}  response.Response
// @Failure      403  {object}  response.Response
// @Router       /api/clientes/{id} [delete]
func (h *ClientHandler) DeleteClient(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	if err := h.clientService.Delete(c.Request.Context(), actor(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": true}))
}
