package handler

import (
	"context"
	"net/http"

	"crm/internal/cep"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

// AddressLookup resolves a CEP; nil means not found or unavailable
type AddressLookup interface {
	Lookup(ctx context.Context, code string) *cep.Address
}

type CEPHandler struct {
	lookup AddressLookup
}

func NewCEPHandler(lookup AddressLookup) *CEPHandler {
	return &CEPHandler{lookup: lookup}
}

func (h *CEPHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/api/cep/:cep", h.LookupCEP)
}

// LookupCEP
// @Summary      Look up a postal code
// @Tags         cep
// @Security     BearerAuth
// @Produce      json
// @Param        cep  path      string  true  "CEP, with or without the dash"
// @Success      200  {object}  response.Response{data=cep.Address}
// @Failure      400  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/cep/{cep} [get]
func (h *CEPHandler) LookupCEP(c *gin.Context) {
	code, err := cep.Normalize(c.Param("cep"))
	if err != nil {
		badRequest(c, err.Error())
		return
	}
	addr := h.lookup.Lookup(c.Request.Context(), code)
	if addr == nil {
		c.JSON(http.StatusNotFound, response.Response{
			Status:     "error",
			StatusCode: http.StatusNotFound,
			Data:       gin.H{"found": false, "cep": cep.Format(code)},
			Error:      "CEP not found",
		})
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, addr))
}
