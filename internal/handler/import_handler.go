package handler

import (
	"context"
	"io"
	"net/http"

	"crm/internal/model"
	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxUploadSize caps import files at 10 MiB
const maxUploadSize = 10 << 20

type ImportHandler struct {
	importService service.ImportService
}

func NewImportHandler(importService service.ImportService) *ImportHandler {
	return &ImportHandler{importService: importService}
}

func (h *ImportHandler) RegisterRoutes(router *gin.RouterGroup) {
	imports := router.Group("/api/import")
	{
		imports.POST("/leads", h.ImportLeads)
		imports.POST("/clientes", h.ImportClients)
	}
}

type importFunc func(ctx context.Context, actor model.Actor, filename string, r io.Reader) (service.ImportResult, error)

func (h *ImportHandler) handleUpload(c *gin.Context, run importFunc) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxUploadSize)
	fileHeader, err := c.FormFile("file")
	if err != nil {
		badRequest(c, "Multipart field 'file' is required")
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		badRequest(c, "Unable to read uploaded file")
		return
	}
	defer f.Close()

	result, err := run(c.Request.Context(), actor(c), fileHeader.Filename, f)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// ImportLeads creates leads from a spreadsheet
// @Summary      Import leads
// @Description  Accepts .csv (comma or semicolon) or .xlsx; every row is reported separately
// @Tags         import
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX file"
// @Success      200   {object}  response.Response{data=service.ImportResult}
// @Failure      400   {object}  response.Response
// @Router       /api/import/leads [post]
func (h *ImportHandler) ImportLeads(c *gin.Context) {
	h.handleUpload(c, h.importService.ImportLeads)
}

// ImportClients creates clients from a spreadsheet
// @Summary      Import clients
// @Tags         import
// @Security     BearerAuth
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "CSV or XLSX file"
// @Success      200   {object}  response.Response{data=service.ImportResult}
// @Failure      400   {object}  response.Response
// @Router       /api/import/clientes [post]
func (h *ImportHandler) ImportClients(c *gin.Context) {
	h.handleUpload(c, h.importService.ImportClients)
}
