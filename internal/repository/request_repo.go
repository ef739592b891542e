package repository

import (
	"context"
	"time"

	"expenseflow/internal/model"

	"gorm.io/gorm"
)

// RequestFilter is the parameterized predicate set for the listing query.
// Zero values mean "no constraint"; Limit == 0 disables pagination.
type RequestFilter struct {
	Status   string
	Category string
	Search   string
	Offset   int
	Limit    int
}

type RequestRepository interface {
	Create(ctx context.Context, req *model.Request) error
	CreateLine(ctx context.Context, line *model.RequestLine) error
	CreateAttachment(ctx context.Context, att *model.Attachment) error
	FindByID(ctx context.Context, id uint) (*model.Request, error)
	FindByIDWithDetails(ctx context.Context, id uint) (*model.Request, error)
	List(ctx context.Context, filter RequestFilter) ([]model.Request, error)
	DecideIfPending(ctx context.Context, id uint, status string, approverID uint, comment string, decidedAt time.Time) (int64, error)
	UpdateLineProvider(ctx context.Context, lineID uint, provider string) (int64, error)
}

type requestRepository struct {
	db *gorm.DB
}

func NewRequestRepository(db *gorm.DB) RequestRepository {
	return &requestRepository{db: db}
}

func (r *requestRepository) Create(ctx context.Context, req *model.Request) error {
	return GetDB(ctx, r.db).Create(req).Error
}

func (r *requestRepository) CreateLine(ctx context.Context, line *model.RequestLine) error {
	return GetDB(ctx, r.db).Create(line).Error
}

func (r *requestRepository) CreateAttachment(ctx context.Context, att *model.Attachment) error {
	return GetDB(ctx, r.db).Create(att).Error
}

func (r *requestRepository) FindByID(ctx context.Context, id uint) (*model.Request, error) {
	var req model.Request
	if err := GetDB(ctx, r.db).First(&req, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) FindByIDWithDetails(ctx context.Context, id uint) (*model.Request, error) {
	var req model.Request
	err := GetDB(ctx, r.db).
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_lines.position ASC")
		}).
		Preload("Lines.Category").
		Preload("Attachments").
		Preload("Requester").
		Preload("Department").
		Preload("CostCenter").
		Preload("Approver").
		First(&req, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *requestRepository) List(ctx context.Context, filter RequestFilter) ([]model.Request, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.Request{}).
		Joins("JOIN users ON users.id = requests.requester_id")

	if filter.Status != "" {
		query = query.Where("requests.status = ?", filter.Status)
	}
	if filter.Category != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM request_lines rl
			JOIN categories c ON c.id = rl.category_id
			WHERE rl.request_id = requests.id AND c.name = ?)`, filter.Category)
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		query = query.Where(
			"(requests.title ILIKE ? OR users.name ILIKE ? OR 'REQ-' || lpad(requests.id::text, 3, '0') ILIKE ?)",
			like, like, like,
		)
	}

	query = query.
		Preload("Requester").
		Preload("Department").
		Preload("CostCenter").
		Preload("Lines", func(db *gorm.DB) *gorm.DB {
			return db.Order("request_lines.position ASC")
		}).
		Preload("Lines.Category").
		Order("requests.created_at DESC")

	if filter.Limit > 0 {
		query = query.Offset(filter.Offset).Limit(filter.Limit)
	}

	var requests []model.Request
	if err := query.Find(&requests).Error; err != nil {
		return nil, err
	}
	return requests, nil
}

// DecideIfPending writes the approval outcome onto the request row only if
// it is still pending, returning the affected-row count so callers can tell
// a lost race from success.
func (r *requestRepository) DecideIfPending(ctx context.Context, id uint, status string, approverID uint, comment string, decidedAt time.Time) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.Request{}).
		Where("id = ? AND status = ?", id, model.RequestStatusPending).
		Updates(map[string]interface{}{
			"status":           status,
			"approver_id":      approverID,
			"approval_comment": comment,
			"decided_at":       decidedAt,
		})
	return res.RowsAffected, res.Error
}

func (r *requestRepository) UpdateLineProvider(ctx context.Context, lineID uint, provider string) (int64, error) {
	res := GetDB(ctx, r.db).Model(&model.RequestLine{}).
		Where("id = ?", lineID).
		Update("provider", provider)
	return res.RowsAffected, res.Error
}
