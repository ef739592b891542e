package service

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"strings"
	"time"

	"expenseflow/internal/model"
	"expenseflow/internal/repository"
	"expenseflow/internal/storage"
	"expenseflow/pkg/apperr"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// relayTimeout bounds each external blob-relay call so a hung upload
// cannot block the surrounding request handling.
const relayTimeout = 30 * time.Second

const attachmentFolder = "requests"

// --- DTOs ---

type LineInput struct {
	Category    uint            `json:"category"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description"`
}

type CreateRequestInput struct {
	RequesterID uint
	Department  string
	CostCenter  string
	Title       string
	Date        string
	Lines       []LineInput
	Attachments []*multipart.FileHeader
}

type LineView struct {
	ID          uint    `json:"id"`
	Category    string  `json:"category"`
	CategoryID  uint    `json:"category_id"`
	Amount      string  `json:"amount"`
	Description string  `json:"description"`
	Provider    *string `json:"provider"`
	Position    int     `json:"position"`
}

type AttachmentView struct {
	Filename string `json:"filename"`
	URL      string `json:"url"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

type ApprovalEntry struct {
	Action     string `json:"action"`
	Comment    string `json:"comment"`
	Date       string `json:"date"`
	ApprovedBy string `json:"approvedBy"`
}

type RequestSummary struct {
	ID          uint   `json:"id"`
	RequestID   string `json:"requestId"`
	Title       string `json:"title"`
	Amount      string `json:"amount"`
	Status      string `json:"status"`
	Date        string `json:"date"`
	SubmittedBy string `json:"submittedBy"`
	Department  string `json:"department"`
	CostCenter  string `json:"costCenter"`
	Category    string `json:"category"`
	LineCount   int    `json:"lineCount"`
}

type RequestDetail struct {
	RequestSummary
	CostCenterName  string           `json:"costCenterName"`
	Lines           []LineView       `json:"lines"`
	Attachments     []AttachmentView `json:"attachments"`
	ApprovalHistory []ApprovalEntry  `json:"approvalHistory"`
}

// ListRequestsFilter carries the external filter vocabulary.
type ListRequestsFilter struct {
	Status   string
	Category string
	Search   string
	Offset   int
	Limit    int
}

// Lifecycle event types published to the Notifier.
const (
	EventRequestCreated  = "request.created"
	EventRequestApproved = "request.approved"
	EventRequestRejected = "request.rejected"
)

// Notifier publishes request lifecycle events; the websocket hub satisfies it.
type Notifier interface {
	NotifyRequest(eventType string, requestID uint, status string)
}

// --- Interface ---

type RequestService interface {
	Create(ctx context.Context, input CreateRequestInput) (uint, error)
	GetDetail(ctx context.Context, id uint) (*RequestDetail, error)
	List(ctx context.Context, filter ListRequestsFilter) ([]RequestSummary, error)
	SetLineProvider(ctx context.Context, lineID uint, provider string) error
}

type requestService struct {
	requests  repository.RequestRepository
	approvals repository.ApprovalRepository
	catalog   repository.CatalogRepository
	txManager repository.TransactionManager
	store     storage.Store
	notifier  Notifier
	logger    *zap.Logger
}

func NewRequestService(
	requests repository.RequestRepository,
	approvals repository.ApprovalRepository,
	catalog repository.CatalogRepository,
	txManager repository.TransactionManager,
	store storage.Store,
	notifier Notifier,
	logger *zap.Logger,
) RequestService {
	return &requestService{
		requests:  requests,
		approvals: approvals,
		catalog:   catalog,
		txManager: txManager,
		store:     store,
		notifier:  notifier,
		logger:    logger,
	}
}

// --- Implementation ---

func (s *requestService) Create(ctx context.Context, input CreateRequestInput) (uint, error) {
	if input.RequesterID == 0 || input.Department == "" || input.Date == "" || strings.TrimSpace(input.Title) == "" {
		return 0, fmt.Errorf("%w: requester, department, date and title are required", apperr.ErrValidation)
	}
	if len(input.Lines) == 0 {
		return 0, fmt.Errorf("%w: at least one expense line is required", apperr.ErrValidation)
	}
	for i, line := range input.Lines {
		if line.Category == 0 || !line.Amount.IsPositive() || strings.TrimSpace(line.Description) == "" {
			return 0, fmt.Errorf("%w: line %d needs a category, a positive amount and a description", apperr.ErrValidation, i+1)
		}
	}

	submittedAt, err := parseSubmissionDate(input.Date)
	if err != nil {
		return 0, fmt.Errorf("%w: invalid submission date %q", apperr.ErrValidation, input.Date)
	}

	department, err := s.catalog.FindDepartmentByName(ctx, input.Department)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, fmt.Errorf("%w: unknown department %q", apperr.ErrInvalidReference, input.Department)
		}
		return 0, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	// An unknown cost-center code is tolerated: the request proceeds with
	// a null cost center.
	var costCenterID *uint
	if input.CostCenter != "" {
		cc, err := s.catalog.FindCostCenterByCode(ctx, input.CostCenter)
		switch {
		case err == nil:
			costCenterID = &cc.ID
		case errors.Is(err, gorm.ErrRecordNotFound):
			s.logger.Warn("cost center not found, storing request without one",
				zap.String("code", input.CostCenter))
		default:
			return 0, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
		}
	}

	total := decimal.Zero
	for _, line := range input.Lines {
		total = total.Add(line.Amount)
	}
	total = total.Round(2)

	request := model.Request{
		Title:        strings.TrimSpace(input.Title),
		RequesterID:  input.RequesterID,
		DepartmentID: department.ID,
		CostCenterID: costCenterID,
		TotalAmount:  total,
		Status:       model.RequestStatusPending,
		SubmittedAt:  submittedAt,
	}

	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.requests.Create(txCtx, &request); err != nil {
			return fmt.Errorf("failed to create request: %w", err)
		}
		for i, line := range input.Lines {
			row := model.RequestLine{
				RequestID:   request.ID,
				CategoryID:  line.Category,
				Amount:      line.Amount.Round(2),
				Description: line.Description,
				Position:    i + 1,
			}
			if err := s.requests.CreateLine(txCtx, &row); err != nil {
				return fmt.Errorf("failed to create request line %d: %w", i+1, err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	// Attachments are relayed outside the transactional unit; a single
	// file's failure is logged and skipped without failing the request.
	s.relayAttachments(ctx, request.ID, input.Attachments)

	if s.notifier != nil {
		s.notifier.NotifyRequest(EventRequestCreated, request.ID, request.Status)
	}

	return request.ID, nil
}

func (s *requestService) relayAttachments(ctx context.Context, requestID uint, files []*multipart.FileHeader) {
	for _, file := range files {
		relayCtx, cancel := context.WithTimeout(ctx, relayTimeout)
		stored, err := s.store.Save(relayCtx, file, attachmentFolder)
		cancel()
		if err != nil {
			s.logger.Warn("attachment relay failed, skipping file",
				zap.Uint("request_id", requestID),
				zap.String("filename", file.Filename),
				zap.Error(err))
			continue
		}

		att := model.Attachment{
			RequestID: requestID,
			Filename:  stored.Filename,
			URL:       stored.URL,
			MIMEType:  stored.MIMEType,
			Size:      stored.Size,
		}
		if err := s.requests.CreateAttachment(ctx, &att); err != nil {
			s.logger.Warn("failed to record attachment metadata",
				zap.Uint("request_id", requestID),
				zap.String("filename", stored.Filename),
				zap.Error(err))
		}
	}
}

func (s *requestService) GetDetail(ctx context.Context, id uint) (*RequestDetail, error) {
	request, err := s.requests.FindByIDWithDetails(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("request %d: %w", id, apperr.ErrNotFound)
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	detail := RequestDetail{
		RequestSummary:  toSummary(request),
		Lines:           make([]LineView, 0, len(request.Lines)),
		Attachments:     make([]AttachmentView, 0, len(request.Attachments)),
		ApprovalHistory: []ApprovalEntry{},
	}
	if request.CostCenter != nil {
		detail.CostCenterName = request.CostCenter.Name
	}

	for _, line := range request.Lines {
		view := LineView{
			ID:          line.ID,
			CategoryID:  line.CategoryID,
			Amount:      line.Amount.StringFixed(2),
			Description: line.Description,
			Provider:    line.Provider,
			Position:    line.Position,
		}
		if line.Category != nil {
			view.Category = line.Category.Name
		}
		detail.Lines = append(detail.Lines, view)
	}

	for _, att := range request.Attachments {
		detail.Attachments = append(detail.Attachments, AttachmentView{
			Filename: att.Filename,
			URL:      att.URL,
			MIMEType: att.MIMEType,
			Size:     att.Size,
		})
	}

	history, err := s.approvals.ListByRequest(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	for _, entry := range history {
		view := ApprovalEntry{
			Action:     entry.Action,
			Comment:    entry.Comment,
			Date:       entry.DecidedAt.Format(time.RFC3339),
			ApprovedBy: "unknown",
		}
		if entry.Approver != nil {
			view.ApprovedBy = entry.Approver.Name
		}
		detail.ApprovalHistory = append(detail.ApprovalHistory, view)
	}

	// Rows migrated from the legacy flat schema carry the decision on the
	// request itself with no log entry; synthesize one so callers see a
	// consistent history.
	if len(detail.ApprovalHistory) == 0 && request.ApproverID != nil && request.DecidedAt != nil {
		action := model.ApprovalActionApproved
		if request.Status == model.RequestStatusRejected {
			action = model.ApprovalActionRejected
		}
		comment := ""
		if request.ApprovalComment != nil {
			comment = *request.ApprovalComment
		}
		approvedBy := "unknown"
		if request.Approver != nil {
			approvedBy = request.Approver.Name
		}
		detail.ApprovalHistory = append(detail.ApprovalHistory, ApprovalEntry{
			Action:     action,
			Comment:    comment,
			Date:       request.DecidedAt.Format(time.RFC3339),
			ApprovedBy: approvedBy,
		})
	}

	return &detail, nil
}

func (s *requestService) List(ctx context.Context, filter ListRequestsFilter) ([]RequestSummary, error) {
	repoFilter := repository.RequestFilter{
		Category: filter.Category,
		Search:   filter.Search,
		Offset:   filter.Offset,
		Limit:    filter.Limit,
	}
	if filter.Status != "" {
		repoFilter.Status = model.MapExternalStatus(strings.ToLower(filter.Status))
	}

	requests, err := s.requests.List(ctx, repoFilter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	summaries := make([]RequestSummary, 0, len(requests))
	for i := range requests {
		summaries = append(summaries, toSummary(&requests[i]))
	}
	return summaries, nil
}

func (s *requestService) SetLineProvider(ctx context.Context, lineID uint, provider string) error {
	if strings.TrimSpace(provider) == "" {
		return fmt.Errorf("%w: provider is required", apperr.ErrValidation)
	}
	rows, err := s.requests.UpdateLineProvider(ctx, lineID, provider)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	if rows == 0 {
		return fmt.Errorf("request line %d: %w", lineID, apperr.ErrNotFound)
	}
	return nil
}

// --- Helpers ---

func parseSubmissionDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}

func toSummary(r *model.Request) RequestSummary {
	summary := RequestSummary{
		ID:        r.ID,
		RequestID: r.DisplayID(),
		Title:     r.Title,
		Amount:    r.TotalAmount.StringFixed(2),
		Status:    r.Status,
		Date:      r.SubmittedAt.Format("2006-01-02"),
		LineCount: len(r.Lines),
	}
	if r.Requester != nil {
		summary.SubmittedBy = r.Requester.Name
	}
	if r.Department != nil {
		summary.Department = r.Department.Name
	}
	if r.CostCenter != nil {
		summary.CostCenter = r.CostCenter.Code
	}
	if len(r.Lines) > 0 && r.Lines[0].Category != nil {
		summary.Category = r.Lines[0].Category.Name
	}
	return summary
}
