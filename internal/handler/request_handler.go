package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"expenseflow/internal/service"
	"expenseflow/pkg/apperr"
	"expenseflow/pkg/pagination"
	"expenseflow/pkg/response"

	"github.com/gin-gonic/gin"
)

// maxAttachments caps files per request, matching the public API.
const maxAttachments = 5

type RequestHandler struct {
	requestService  service.RequestService
	approvalService service.ApprovalService
}

func NewRequestHandler(requestService service.RequestService, approvalService service.ApprovalService) *RequestHandler {
	return &RequestHandler{
		requestService:  requestService,
		approvalService: approvalService,
	}
}

func (h *RequestHandler) RegisterRoutes(router *gin.RouterGroup) {
	requests := router.Group("/api/requests")
	{
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequestDetail)
		requests.POST("", h.CreateRequest)
		requests.POST("/:id/approve", h.ApproveRequest)
		requests.POST("/:id/reject", h.RejectRequest)
	}
	router.POST("/api/request-lines/:id/provider", h.SetLineProvider)
}

// ListRequests returns the filtered request listing
// @Summary      List expense requests
// @Tags         requests
// @Produce      json
// @Param        status    query  string  false  "pending|approved|rejected"
// @Param        category  query  string  false  "category name"
// @Param        search    query  string  false  "free-text search"
// @Success      200  {object}  response.Envelope
// @Failure      500  {object}  response.Envelope
// @Router       /api/requests [get]
func (h *RequestHandler) ListRequests(c *gin.Context) {
	page := pagination.Parse(c)
	filter := service.ListRequestsFilter{
		Status:   normalizeFilterParam(c.Query("status")),
		Category: normalizeFilterParam(c.Query("category")),
		Search:   normalizeFilterParam(c.Query("search")),
		Offset:   page.Offset,
		Limit:    page.Limit,
	}

	requests, err := h.requestService.List(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(requests))
}

// GetRequestDetail returns a request with lines, attachments and history
// @Summary      Get request detail
// @Tags         requests
// @Produce      json
// @Param        id  path  int  true  "request id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/requests/{id} [get]
func (h *RequestHandler) GetRequestDetail(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	detail, err := h.requestService.GetDetail(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.OK(detail))
}

// CreateRequest accepts a multipart form: JSON fields plus `attachments` files
// @Summary      Create expense request
// @Tags         requests
// @Accept       multipart/form-data
// @Produce      json
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Router       /api/requests [post]
func (h *RequestHandler) CreateRequest(c *gin.Context) {
	requesterID, _ := strconv.ParseUint(c.PostForm("userId"), 10, 64)

	input := service.CreateRequestInput{
		RequesterID: uint(requesterID),
		Department:  c.PostForm("department"),
		CostCenter:  c.PostForm("costCenter"),
		Title:       c.PostForm("title"),
		Date:        c.PostForm("date"),
	}

	if raw := c.PostForm("lines"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &input.Lines); err != nil {
			c.JSON(http.StatusBadRequest, response.Fail("Invalid lines payload"))
			return
		}
	}

	if form, err := c.MultipartForm(); err == nil && form != nil {
		files := form.File["attachments"]
		if len(files) > maxAttachments {
			files = files[:maxAttachments]
		}
		input.Attachments = files
	}

	id, err := h.requestService.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Envelope{
		Success: true,
		Message: "Request created successfully",
		Data:    gin.H{"id": id},
	})
}

type decisionPayload struct {
	ApproverID uint   `json:"approverId"`
	Comments   string `json:"comments"`
}

// ApproveRequest transitions a pending request to approved
// @Summary      Approve request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "request id"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      409  {object}  response.Envelope
// @Router       /api/requests/{id}/approve [post]
func (h *RequestHandler) ApproveRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		// Empty body is tolerated; the service enforces the approver rule.
		payload = decisionPayload{}
	}

	if err := h.approvalService.Approve(c.Request.Context(), id, payload.ApproverID, payload.Comments); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Request approved successfully"))
}

// RejectRequest transitions a pending request to rejected
// @Summary      Reject request
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "request id"
// @Success      200  {object}  response.Envelope
// @Failure      400  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Failure      409  {object}  response.Envelope
// @Router       /api/requests/{id}/reject [post]
func (h *RequestHandler) RejectRequest(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload decisionPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		payload = decisionPayload{}
	}

	if err := h.approvalService.Reject(c.Request.Context(), id, payload.ApproverID, payload.Comments); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Request rejected successfully"))
}

// SetLineProvider records the vendor on an existing request line
// @Summary      Set line provider
// @Tags         requests
// @Accept       json
// @Produce      json
// @Param        id  path  int  true  "line id"
// @Success      200  {object}  response.Envelope
// @Failure      404  {object}  response.Envelope
// @Router       /api/request-lines/{id}/provider [post]
func (h *RequestHandler) SetLineProvider(c *gin.Context) {
	id, ok := parseIDParam(c)
	if !ok {
		return
	}

	var payload struct {
		Provider string `json:"provider" binding:"required"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Provider is required"))
		return
	}

	if err := h.requestService.SetLineProvider(c.Request.Context(), id, payload.Provider); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Message("Provider updated successfully"))
}

// --- shared helpers ---

func parseIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Fail("Invalid id"))
		return 0, false
	}
	return uint(id), true
}

// normalizeFilterParam drops the placeholder values frontends send for
// "no filter".
func normalizeFilterParam(v string) string {
	if v == "all" || v == "undefined" {
		return ""
	}
	return v
}

func respondError(c *gin.Context, err error) {
	c.JSON(apperr.HTTPStatus(err), response.Fail(err.Error()))
}
