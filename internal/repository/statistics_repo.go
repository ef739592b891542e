package repository

import (
	"context"
	"fmt"
	"time"

	"expenseflow/internal/model"

	"gorm.io/gorm"
)

// DashboardStats aggregates the current month's request activity.
type DashboardStats struct {
	TotalRequests int64  `json:"totalRequests"`
	Pending       int64  `json:"pending"`
	Approved      int64  `json:"approved"`
	Rejected      int64  `json:"rejected"`
	TotalAmount   string `json:"totalAmount"`
}

// MonthlyBucket is one month of the trailing-six-months series.
type MonthlyBucket struct {
	Month  string `json:"month"`
	Count  int64  `json:"count"`
	Amount string `json:"total"`
}

// CategoryStat aggregates line spend per category.
type CategoryStat struct {
	Category string `json:"category"`
	Count    int64  `json:"count"`
	Total    string `json:"total"`
}

// ReportFilter narrows the reporting query; zero values mean no constraint.
type ReportFilter struct {
	StartDate  *time.Time
	EndDate    *time.Time
	Department string
	Category   string
	Status     string
}

type StatisticsRepository interface {
	GetDashboardStats(ctx context.Context, monthStart, monthEnd time.Time) (DashboardStats, error)
	GetMonthlySeries(ctx context.Context, since time.Time) ([]MonthlyBucket, error)
	GetCategoryStats(ctx context.Context, monthStart, monthEnd time.Time) ([]CategoryStat, error)
	GetRecentRequests(ctx context.Context, limit int) ([]model.Request, error)
	GetReport(ctx context.Context, filter ReportFilter) ([]model.Request, error)
}

type statisticsRepository struct {
	db *gorm.DB
}

func NewStatisticsRepository(db *gorm.DB) StatisticsRepository {
	return &statisticsRepository{db: db}
}

func (r *statisticsRepository) GetDashboardStats(ctx context.Context, monthStart, monthEnd time.Time) (DashboardStats, error) {
	var stats DashboardStats
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select(`COUNT(*) as total_requests,
			COALESCE(SUM(CASE WHEN status = 'PENDING' THEN 1 ELSE 0 END), 0) as pending,
			COALESCE(SUM(CASE WHEN status = 'APPROVED' THEN 1 ELSE 0 END), 0) as approved,
			COALESCE(SUM(CASE WHEN status = 'REJECTED' THEN 1 ELSE 0 END), 0) as rejected,
			COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as total_amount`).
		Where("submitted_at >= ? AND submitted_at < ?", monthStart, monthEnd).
		Scan(&stats).Error
	if err != nil {
		return DashboardStats{}, fmt.Errorf("failed to query dashboard stats: %w", err)
	}
	return stats, nil
}

func (r *statisticsRepository) GetMonthlySeries(ctx context.Context, since time.Time) ([]MonthlyBucket, error) {
	var buckets []MonthlyBucket
	err := r.db.WithContext(ctx).Model(&model.Request{}).
		Select(`to_char(submitted_at, 'Mon') as month,
			COUNT(*) as count,
			COALESCE(CAST(SUM(total_amount) AS TEXT), '0') as amount`).
		Where("submitted_at >= ?", since).
		Group("to_char(submitted_at, 'Mon'), date_trunc('month', submitted_at)").
		Order("date_trunc('month', submitted_at)").
		Scan(&buckets).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query monthly series: %w", err)
	}
	return buckets, nil
}

func (r *statisticsRepository) GetCategoryStats(ctx context.Context, monthStart, monthEnd time.Time) ([]CategoryStat, error) {
	var stats []CategoryStat
	err := r.db.WithContext(ctx).Table("request_lines").
		Select(`categories.name as category,
			COUNT(DISTINCT requests.id) as count,
			COALESCE(CAST(SUM(request_lines.amount) AS TEXT), '0') as total`).
		Joins("JOIN requests ON requests.id = request_lines.request_id").
		Joins("JOIN categories ON categories.id = request_lines.category_id").
		Where("requests.submitted_at >= ? AND requests.submitted_at < ?", monthStart, monthEnd).
		Group("categories.id, categories.name").
		Order("SUM(request_lines.amount) DESC").
		Scan(&stats).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query category stats: %w", err)
	}
	return stats, nil
}

func (r *statisticsRepository) GetRecentRequests(ctx context.Context, limit int) ([]model.Request, error) {
	var requests []model.Request
	err := r.db.WithContext(ctx).
		Preload("Requester").
		Preload("Lines.Category").
		Order("created_at DESC").
		Limit(limit).
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query recent requests: %w", err)
	}
	return requests, nil
}

func (r *statisticsRepository) GetReport(ctx context.Context, filter ReportFilter) ([]model.Request, error) {
	query := r.db.WithContext(ctx).Model(&model.Request{}).
		Joins("JOIN departments ON departments.id = requests.department_id")

	if filter.StartDate != nil {
		query = query.Where("requests.submitted_at >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("requests.submitted_at <= ?", *filter.EndDate)
	}
	if filter.Department != "" {
		query = query.Where("departments.name = ?", filter.Department)
	}
	if filter.Category != "" {
		query = query.Where(`EXISTS (
			SELECT 1 FROM request_lines rl
			JOIN categories c ON c.id = rl.category_id
			WHERE rl.request_id = requests.id AND c.name = ?)`, filter.Category)
	}
	if filter.Status != "" {
		query = query.Where("requests.status = ?", filter.Status)
	}

	var requests []model.Request
	err := query.
		Preload("Requester").
		Preload("Department").
		Preload("Lines.Category").
		Order("requests.submitted_at DESC").
		Find(&requests).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query report: %w", err)
	}
	return requests, nil
}
