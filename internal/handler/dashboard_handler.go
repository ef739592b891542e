package handler

import (
	"net/http"

	"expenseflow/internal/service"
	"expenseflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	statisticsService service.StatisticsService
}

func NewDashboardHandler(statisticsService service.StatisticsService) *DashboardHandler {
	return &DashboardHandler{statisticsService: statisticsService}
}

func (h *DashboardHandler) RegisterRoutes(router *gin.RouterGroup) {
	dashboard := router.Group("/api/dashboard")
	{
		dashboard.GET("/stats", h.GetStats)
		dashboard.GET("/monthly-requests", h.GetMonthlyRequests)
		dashboard.GET("/category-stats", h.GetCategoryStats)
		dashboard.GET("/monthly-amounts", h.GetMonthlyAmounts)
		dashboard.GET("/recent-requests", h.GetRecentRequests)
	}
	router.GET("/api/reports", h.GetReports)
}

func (h *DashboardHandler) GetStats(c *gin.Context) {
	stats, err := h.statisticsService.DashboardStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(stats))
}

func (h *DashboardHandler) GetMonthlyRequests(c *gin.Context) {
	series, err := h.statisticsService.MonthlySeries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]gin.H, 0, len(series))
	for _, bucket := range series {
		data = append(data, gin.H{"month": bucket.Month, "count": bucket.Count})
	}
	c.JSON(http.StatusOK, response.OK(data))
}

func (h *DashboardHandler) GetCategoryStats(c *gin.Context) {
	stats, err := h.statisticsService.CategoryStats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(stats))
}

func (h *DashboardHandler) GetMonthlyAmounts(c *gin.Context) {
	series, err := h.statisticsService.MonthlySeries(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	data := make([]gin.H, 0, len(series))
	for _, bucket := range series {
		data = append(data, gin.H{"month": bucket.Month, "total": bucket.Amount})
	}
	c.JSON(http.StatusOK, response.OK(data))
}

func (h *DashboardHandler) GetRecentRequests(c *gin.Context) {
	recent, err := h.statisticsService.RecentRequests(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(recent))
}

func (h *DashboardHandler) GetReports(c *gin.Context) {
	query := service.ReportQuery{
		StartDate:  c.Query("startDate"),
		EndDate:    c.Query("endDate"),
		Department: c.Query("department"),
		Category:   c.Query("category"),
		Status:     c.Query("status"),
	}

	rows, err := h.statisticsService.Report(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(rows))
}
