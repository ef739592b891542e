package handler

import (
	"net/http"

	"expenseflow/internal/service"
	"expenseflow/pkg/response"

	"github.com/gin-gonic/gin"
)

type UserHandler struct {
	userService service.UserService
}

func NewUserHandler(userService service.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

// RegisterRoutes binds the protected user-management endpoints.
func (h *UserHandler) RegisterRoutes(router *gin.RouterGroup) {
	users := router.Group("/api/users")
	{
		users.GET("", h.ListUsers)
		users.POST("", h.CreateUser)
		users.PUT("/:id", h.UpdateUser)
		users.DELETE("/:id", h.DeleteUser)
	}
	router.PUT("/resetPass", h.ResetPassword)
}

// RegisterPublicRoutes binds the endpoints reachable without a token.
func (h *UserHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.POST("/loginUsers", h.Login)
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.userService.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(users))
}

func (h *UserHandler) CreateUser(c *gin.Context) {
	var input service.CreateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Name, email, role and a password of at least 6 characters are required"))
		return
	}
	id, err := h.userService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: "User created successfully",
		Data:    gin.H{"id": id},
	})
}

func (h *UserHandler) UpdateUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	var input service.UpdateUserInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid payload"))
		return
	}
	if err := h.userService.Update(c.Request.Context(), id, input); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("User updated successfully"))
}

func (h *UserHandler) DeleteUser(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}
	if err := h.userService.Delete(c.Request.Context(), id); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("User deleted successfully"))
}

// Login authenticates by email/password. Failure modes are reported with
// result codes in a 200 body, which is what the frontend expects.
func (h *UserHandler) Login(c *gin.Context) {
	var payload struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Username and password are required"))
		return
	}

	result, err := h.userService.Login(c.Request.Context(), payload.Username, payload.Password)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *UserHandler) ResetPassword(c *gin.Context) {
	var payload struct {
		Username string `json:"username" binding:"required"`
		Password string `json:"password" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Username and password are required"))
		return
	}

	if err := h.userService.ResetPassword(c.Request.Context(), payload.Username, payload.Password); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Password updated"))
}
