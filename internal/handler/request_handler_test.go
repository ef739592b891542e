package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"expenseflow/internal/service"
	"expenseflow/pkg/apperr"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubRequestService struct {
	createInput createCapture
	createID    uint
	createErr   error
	detail      *service.RequestDetail
	detailErr   error
	list        []service.RequestSummary
	listFilter  service.ListRequestsFilter
	listErr     error
	providerErr error
}

type createCapture struct {
	called bool
	input  service.CreateRequestInput
}

func (s *stubRequestService) Create(_ context.Context, input service.CreateRequestInput) (uint, error) {
	s.createInput = createCapture{called: true, input: input}
	return s.createID, s.createErr
}

func (s *stubRequestService) GetDetail(_ context.Context, _ uint) (*service.RequestDetail, error) {
	return s.detail, s.detailErr
}

func (s *stubRequestService) List(_ context.Context, filter service.ListRequestsFilter) ([]service.RequestSummary, error) {
	s.listFilter = filter
	return s.list, s.listErr
}

func (s *stubRequestService) SetLineProvider(_ context.Context, _ uint, _ string) error {
	return s.providerErr
}

type stubApprovalService struct {
	approveErr  error
	rejectErr   error
	lastRequest uint
	lastActor   uint
	lastComment string
}

func (s *stubApprovalService) Approve(_ context.Context, requestID, approverID uint, comment string) error {
	s.lastRequest, s.lastActor, s.lastComment = requestID, approverID, comment
	return s.approveErr
}

func (s *stubApprovalService) Reject(_ context.Context, requestID, approverID uint, comment string) error {
	s.lastRequest, s.lastActor, s.lastComment = requestID, approverID, comment
	return s.rejectErr
}

type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Message string          `json:"message"`
}

func setupRequestRouter(reqSvc *stubRequestService, apprSvc *stubApprovalService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewRequestHandler(reqSvc, apprSvc).RegisterRoutes(router.Group(""))
	return router
}

func perform(router *gin.Engine, method, path, contentType string, body *bytes.Buffer) *httptest.ResponseRecorder {
	if body == nil {
		body = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return env
}

func TestListRequestsEnvelope(t *testing.T) {
	reqSvc := &stubRequestService{list: []service.RequestSummary{{ID: 1, RequestID: "REQ-001", Title: "Chairs"}}}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	rec := perform(router, http.MethodGet, "/api/requests?status=all&category=undefined&search=chairs", "", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)

	var summaries []service.RequestSummary
	require.NoError(t, json.Unmarshal(env.Data, &summaries))
	require.Len(t, summaries, 1)
	assert.Equal(t, "REQ-001", summaries[0].RequestID)

	// placeholder filter values are dropped before reaching the service
	assert.Empty(t, reqSvc.listFilter.Status)
	assert.Empty(t, reqSvc.listFilter.Category)
	assert.Equal(t, "chairs", reqSvc.listFilter.Search)
}

func TestListRequestsPagination(t *testing.T) {
	reqSvc := &stubRequestService{}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	perform(router, http.MethodGet, "/api/requests?page=3&limit=20", "", nil)
	assert.Equal(t, 40, reqSvc.listFilter.Offset)
	assert.Equal(t, 20, reqSvc.listFilter.Limit)

	perform(router, http.MethodGet, "/api/requests", "", nil)
	assert.Zero(t, reqSvc.listFilter.Limit)
}

func TestGetRequestDetailNotFound(t *testing.T) {
	reqSvc := &stubRequestService{detailErr: fmt.Errorf("request 99: %w", apperr.ErrNotFound)}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	rec := perform(router, http.MethodGet, "/api/requests/99", "", nil)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.NotEmpty(t, env.Message)
}

func TestGetRequestDetailBadID(t *testing.T) {
	router := setupRequestRouter(&stubRequestService{}, &stubApprovalService{})

	rec := perform(router, http.MethodGet, "/api/requests/abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateRequestMultipart(t *testing.T) {
	reqSvc := &stubRequestService{createID: 12}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("userId", "4"))
	require.NoError(t, writer.WriteField("department", "Finance"))
	require.NoError(t, writer.WriteField("costCenter", "CC-100"))
	require.NoError(t, writer.WriteField("title", "Team offsite"))
	require.NoError(t, writer.WriteField("date", "2026-08-15"))
	require.NoError(t, writer.WriteField("lines", `[{"category":2,"amount":"120.50","description":"Train tickets"}]`))
	part, err := writer.CreateFormFile("attachments", "receipt.png")
	require.NoError(t, err)
	_, err = part.Write([]byte("png-bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	rec := perform(router, http.MethodPost, "/api/requests", writer.FormDataContentType(), body)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
	assert.Equal(t, "Request created successfully", env.Message)

	require.True(t, reqSvc.createInput.called)
	input := reqSvc.createInput.input
	assert.Equal(t, uint(4), input.RequesterID)
	assert.Equal(t, "Finance", input.Department)
	assert.Equal(t, "CC-100", input.CostCenter)
	require.Len(t, input.Lines, 1)
	assert.Equal(t, uint(2), input.Lines[0].Category)
	assert.True(t, input.Lines[0].Amount.Equal(decimal.RequireFromString("120.50")))
	require.Len(t, input.Attachments, 1)
	assert.Equal(t, "receipt.png", input.Attachments[0].Filename)
}

func TestCreateRequestTruncatesExtraAttachments(t *testing.T) {
	reqSvc := &stubRequestService{createID: 1}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("lines", `[{"category":1,"amount":"5","description":"x"}]`))
	for i := 0; i < maxAttachments+2; i++ {
		part, err := writer.CreateFormFile("attachments", fmt.Sprintf("file-%d.pdf", i))
		require.NoError(t, err)
		_, err = part.Write([]byte("pdf"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())

	perform(router, http.MethodPost, "/api/requests", writer.FormDataContentType(), body)

	require.True(t, reqSvc.createInput.called)
	assert.Len(t, reqSvc.createInput.input.Attachments, maxAttachments)
}

func TestCreateRequestBadLinesJSON(t *testing.T) {
	reqSvc := &stubRequestService{}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("lines", "{not json"))
	require.NoError(t, writer.Close())

	rec := perform(router, http.MethodPost, "/api/requests", writer.FormDataContentType(), body)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.False(t, reqSvc.createInput.called)
}

func TestCreateRequestValidationError(t *testing.T) {
	reqSvc := &stubRequestService{createErr: fmt.Errorf("%w: at least one expense line is required", apperr.ErrValidation)}
	router := setupRequestRouter(reqSvc, &stubApprovalService{})

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)
	require.NoError(t, writer.WriteField("title", "empty request"))
	require.NoError(t, writer.Close())

	rec := perform(router, http.MethodPost, "/api/requests", writer.FormDataContentType(), body)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestApproveRequest(t *testing.T) {
	apprSvc := &stubApprovalService{}
	router := setupRequestRouter(&stubRequestService{}, apprSvc)

	payload := bytes.NewBufferString(`{"approverId": 9, "comments": "ok"}`)
	rec := perform(router, http.MethodPost, "/api/requests/5/approve", "application/json", payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(5), apprSvc.lastRequest)
	assert.Equal(t, uint(9), apprSvc.lastActor)
	assert.Equal(t, "ok", apprSvc.lastComment)
}

func TestApproveRequestEmptyBodyReachesService(t *testing.T) {
	apprSvc := &stubApprovalService{approveErr: fmt.Errorf("%w", apperr.ErrMissingApprover)}
	router := setupRequestRouter(&stubRequestService{}, apprSvc)

	rec := perform(router, http.MethodPost, "/api/requests/5/approve", "application/json", nil)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, apprSvc.lastActor)
}

func TestApproveRequestConflict(t *testing.T) {
	apprSvc := &stubApprovalService{approveErr: fmt.Errorf("request 5 is already APPROVED: %w", apperr.ErrInvalidTransition)}
	router := setupRequestRouter(&stubRequestService{}, apprSvc)

	payload := bytes.NewBufferString(`{"approverId": 9}`)
	rec := perform(router, http.MethodPost, "/api/requests/5/approve", "application/json", payload)

	assert.Equal(t, http.StatusConflict, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.False(t, env.Success)
	assert.True(t, strings.Contains(env.Message, "already"))
}

func TestRejectRequestMissingComment(t *testing.T) {
	apprSvc := &stubApprovalService{rejectErr: fmt.Errorf("%w", apperr.ErrMissingComment)}
	router := setupRequestRouter(&stubRequestService{}, apprSvc)

	payload := bytes.NewBufferString(`{"approverId": 9, "comments": ""}`)
	rec := perform(router, http.MethodPost, "/api/requests/5/reject", "application/json", payload)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSetLineProvider(t *testing.T) {
	router := setupRequestRouter(&stubRequestService{}, &stubApprovalService{})

	payload := bytes.NewBufferString(`{"provider": "Renfe"}`)
	rec := perform(router, http.MethodPost, "/api/request-lines/3/provider", "application/json", payload)

	assert.Equal(t, http.StatusOK, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.True(t, env.Success)
}

func TestSetLineProviderMissingBody(t *testing.T) {
	router := setupRequestRouter(&stubRequestService{}, &stubApprovalService{})

	rec := perform(router, http.MethodPost, "/api/request-lines/3/provider", "application/json", bytes.NewBufferString(`{}`))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
