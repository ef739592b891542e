package handler

import (
	"net/http"

	"expenseflow/internal/service"
	"expenseflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type CatalogHandler struct {
	catalogService service.CatalogService
}

func NewCatalogHandler(catalogService service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) RegisterRoutes(router *gin.RouterGroup) {
	categories := router.Group("/api/categories")
	{
		categories.GET("", h.ListCategories)
		categories.POST("", h.CreateCategory)
		categories.PUT("/:id", h.UpdateCategory)
		categories.DELETE("/:id", h.DeleteCategory)
	}

	departments := router.Group("/api/departments")
	{
		departments.GET("", h.ListDepartments)
		departments.POST("", h.CreateDepartment)
		departments.PUT("/:id", h.UpdateDepartment)
		departments.DELETE("/:id", h.DeleteDepartment)
	}

	costCenters := router.Group("/api/cost-centers")
	{
		costCenters.GET("", h.ListCostCenters)
		costCenters.POST("", h.CreateCostCenter)
		costCenters.PUT("/:id", h.UpdateCostCenter)
		costCenters.DELETE("/:id", h.DeleteCostCenter)
	}
}

func (h *CatalogHandler) ListCategories(c *gin.Context) {
	cats, err := h.catalogService.ListCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(cats))
}

func (h *CatalogHandler) CreateCategory(c *gin.Context) {
	var input service.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Name is required"))
		return
	}
	cat, err := h.catalogService.CreateCategory(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: "Category created successfully",
		Data:    gin.H{"id": cat.ID},
	})
}

func (h *CatalogHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var input service.CategoryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid payload"))
		return
	}
	if err := h.catalogService.UpdateCategory(c.Request.Context(), id, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Category updated successfully"))
}

func (h *CatalogHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCategory(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Category deleted successfully"))
}

func (h *CatalogHandler) ListDepartments(c *gin.Context) {
	deps, err := h.catalogService.ListDepartments(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(deps))
}

func (h *CatalogHandler) CreateDepartment(c *gin.Context) {
	var input service.DepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Name is required"))
		return
	}
	dep, err := h.catalogService.CreateDepartment(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: "Department created successfully",
		Data:    gin.H{"id": dep.ID},
	})
}

func (h *CatalogHandler) UpdateDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var input service.DepartmentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid payload"))
		return
	}
	if err := h.catalogService.UpdateDepartment(c.Request.Context(), id, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Department updated successfully"))
}

func (h *CatalogHandler) DeleteDepartment(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteDepartment(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Department deleted successfully"))
}

func (h *CatalogHandler) ListCostCenters(c *gin.Context) {
	centers, err := h.catalogService.ListCostCenters(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(centers))
}

func (h *CatalogHandler) CreateCostCenter(c *gin.Context) {
	var input service.CostCenterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Code and name are required"))
		return
	}
	cc, err := h.catalogService.CreateCostCenter(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: "Cost center created successfully",
		Data:    cc,
	})
}

func (h *CatalogHandler) UpdateCostCenter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var input service.CostCenterInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid payload"))
		return
	}
	if err := h.catalogService.UpdateCostCenter(c.Request.Context(), id, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Cost center updated successfully"))
}

func (h *CatalogHandler) DeleteCostCenter(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.catalogService.DeleteCostCenter(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Cost center deleted successfully"))
}
