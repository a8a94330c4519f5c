package handler

import (
	"net/http"

	"crm/internal/middleware"
	"crm/internal/model"
	"crm/internal/service"
	"crm/pkg/pagination"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

// ActorCache is told when a user's role or status changes
type ActorCache interface {
	Forget(openID string)
}

type UserHandler struct {
	userService service.UserService
	cache       ActorCache
}

// NewUserHandler sets up the routing dependencies for User endpoints
func NewUserHandler(userService service.UserService, cache ActorCache) *UserHandler {
	return &UserHandler{userService: userService, cache: cache}
}

// RegisterRoutes binds the endpoints to the gin Engine or RouterGroup
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/auth/me", h.GetMe)

	users := router.Group("/api/users")
	users.Use(middleware.RequireRole(model.RoleAdmin))
	{
		users.GET("", h.ListUsers)
		users.PUT("/:id", h.UpdateUser)
	}
}

// GetMe handles GET /api/auth/me to return the caller's synced user
// @Summary      Get current user
// @Tags         auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  response.Response{data=model.User}
// @Failure      401  {object}  response.Response
// @Router       /api/auth/me [get]
func (h *UserHandler) GetMe(c *gin.Context) {
	user, err := h.userService.Me(c.Request.Context(), actor(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}

// ListUsers
// @Summary      List users
// @Tags         users
// @Security     BearerAuth
// @Produce      json
// @Param        limit   query     int  false  "Page size (default 25)"
// @Param        offset  query     int  false  "Rows to skip"
// @Success      200     {object}  response.Response{data=response.Page{items=[]model.User}}
// @Failure      403     {object}  response.Response
// @Router       /api/users [get]
func (h *UserHandler) ListUsers(c *gin.Context) {
	p := pagination.Parse(c)
	users, total, err := h.userService.List(c.Request.Context(), actor(c), p.Limit, p.Offset)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.SuccessWithPagination(http.StatusOK, users, total, p.Limit, p.Offset))
}

// UpdateUser changes name, role or active flag
// @Summary      Update user
// @Tags         users
// @Security     BearerAuth
// @Accept       json
// @Produce      json
// @Param        id       path      string                     true  "User ID"
// @Param        payload  body      service.UpdateUserRequest  true  "Changed fields"
// @Success      200      {object}  response.Response{data=model.User}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/users/{id} [put]
func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}
	var req service.UpdateUserRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := h.userService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	if h.cache != nil {
		h.cache.Forget(user.OpenID)
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, user))
}
