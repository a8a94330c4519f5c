package handler

import (
	"net/http"

	"crm/internal/service"
	"crm/pkg/response"

	"github.com/gin-gonic/gin"
)

type ReportHandler struct {
	reportService service.ReportService
}

func NewReportHandler(reportService service.ReportService) *ReportHandler {
	return &ReportHandler{reportService: reportService}
}

func (h *ReportHandler) RegisterRoutes(router *gin.RouterGroup) {
	reports := router.Group("/api/reports")
	{
		reports.GET("/dashboard", h.GetDashboard)
		reports.GET("/commissions", h.GetCommissions)
	}
}

// GetDashboard returns the counters of the home screen
// @Summary      Dashboard
// @Description  Sales figures cover the window (default: current month); other counters are current
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200         {object}  response.Response{data=model.DashboardStats}
// @Failure      400         {object}  response.Response
// @Router       /api/reports/dashboard [get]
func (h *ReportHandler) GetDashboard(c *gin.Context) {
	start, end, ok := dateWindow(c)
	if !ok {
		return
	}
	stats, err := h.reportService.Dashboard(c.Request.Context(), actor(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, stats))
}

// GetCommissions
// @Summary      Commission report
// @Description  Per representative and sale status; representatives only see their own rows
// @Tags         reports
// @Security     BearerAuth
// @Produce      json
// @Param        start_date  query     string  false  "YYYY-MM-DD"
// @Param        end_date    query     string  false  "YYYY-MM-DD, inclusive"
// @Success      200         {object}  response.Response{data=[]model.CommissionSummary}
// @Failure      400         {object}  response.Response
// @Router       /api/reports/commissions [get]
func (h *ReportHandler) GetCommissions(c *gin.Context) {
	start, end, ok := dateWindow(c)
	if !ok {
		return
	}
	rows, err := h.reportService.Commissions(c.Request.Context(), actor(c), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, rows))
}
