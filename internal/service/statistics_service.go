package service

import (
	"context"
	"fmt"
	"time"

	"expenseflow/internal/model"
	"expenseflow/internal/repository"
	"expenseflow/pkg/apperr"
)

// ReportQuery is the external filter vocabulary of /api/reports.
type ReportQuery struct {
	StartDate  string
	EndDate    string
	Department string
	Category   string
	Status     string
}

type ReportRow struct {
	ID         uint   `json:"id"`
	Date       string `json:"date"`
	Requester  string `json:"requester"`
	Department string `json:"department"`
	Category   string `json:"category"`
	Title      string `json:"description"`
	Amount     string `json:"amount"`
	Status     string `json:"status"`
}

type RecentRequest struct {
	ID       uint   `json:"id"`
	Amount   string `json:"amount"`
	Status   string `json:"status"`
	Date     string `json:"date"`
	Employee string `json:"employee"`
	Category string `json:"category"`
}

type StatisticsService interface {
	DashboardStats(ctx context.Context) (repository.DashboardStats, error)
	MonthlySeries(ctx context.Context) ([]repository.MonthlyBucket, error)
	CategoryStats(ctx context.Context) ([]repository.CategoryStat, error)
	RecentRequests(ctx context.Context) ([]RecentRequest, error)
	Report(ctx context.Context, query ReportQuery) ([]ReportRow, error)
}

type statisticsService struct {
	repo repository.StatisticsRepository
}

func NewStatisticsService(repo repository.StatisticsRepository) StatisticsService {
	return &statisticsService{repo: repo}
}

func currentMonthBounds() (time.Time, time.Time) {
	now := time.Now()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 1, 0)
}

func (s *statisticsService) DashboardStats(ctx context.Context) (repository.DashboardStats, error) {
	start, end := currentMonthBounds()
	stats, err := s.repo.GetDashboardStats(ctx, start, end)
	if err != nil {
		return repository.DashboardStats{}, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return stats, nil
}

func (s *statisticsService) MonthlySeries(ctx context.Context) ([]repository.MonthlyBucket, error) {
	series, err := s.repo.GetMonthlySeries(ctx, time.Now().AddDate(0, -6, 0))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return series, nil
}

func (s *statisticsService) CategoryStats(ctx context.Context) ([]repository.CategoryStat, error) {
	start, end := currentMonthBounds()
	stats, err := s.repo.GetCategoryStats(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return stats, nil
}

func (s *statisticsService) RecentRequests(ctx context.Context) ([]RecentRequest, error) {
	requests, err := s.repo.GetRecentRequests(ctx, 5)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	recent := make([]RecentRequest, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		row := RecentRequest{
			ID:     r.ID,
			Amount: r.TotalAmount.StringFixed(2),
			Status: r.Status,
			Date:   r.SubmittedAt.Format("2006-01-02"),
		}
		if r.Requester != nil {
			row.Employee = r.Requester.Name
		}
		if len(r.Lines) > 0 && r.Lines[0].Category != nil {
			row.Category = r.Lines[0].Category.Name
		}
		recent = append(recent, row)
	}
	return recent, nil
}

func (s *statisticsService) Report(ctx context.Context, query ReportQuery) ([]ReportRow, error) {
	filter := repository.ReportFilter{
		Department: query.Department,
		Category:   query.Category,
	}
	if query.Status != "" && query.Status != "all" {
		filter.Status = model.MapExternalStatus(query.Status)
	}
	if query.StartDate != "" {
		if t, err := time.Parse("2006-01-02", query.StartDate); err == nil {
			filter.StartDate = &t
		}
	}
	if query.EndDate != "" {
		if t, err := time.Parse("2006-01-02", query.EndDate); err == nil {
			filter.EndDate = &t
		}
	}
	if filter.Department == "all" {
		filter.Department = ""
	}
	if filter.Category == "all" {
		filter.Category = ""
	}

	requests, err := s.repo.GetReport(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	rows := make([]ReportRow, 0, len(requests))
	for i := range requests {
		r := &requests[i]
		row := ReportRow{
			ID:     r.ID,
			Date:   r.SubmittedAt.Format("2006-01-02"),
			Title:  r.Title,
			Amount: r.TotalAmount.StringFixed(2),
			Status: r.Status,
		}
		if r.Requester != nil {
			row.Requester = r.Requester.Name
		}
		if r.Department != nil {
			row.Department = r.Department.Name
		}
		if len(r.Lines) > 0 && r.Lines[0].Category != nil {
			row.Category = r.Lines[0].Category.Name
		}
		rows = append(rows, row)
	}
	return rows, nil
}
