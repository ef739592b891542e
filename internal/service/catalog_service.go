package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"expenseflow/internal/model"
	"expenseflow/internal/repository"
	"expenseflow/pkg/apperr"

	"gorm.io/gorm"
)

// --- DTOs ---

type CategoryInput struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

type DepartmentInput struct {
	Name   string `json:"name" binding:"required"`
	Active *bool  `json:"active"`
}

type CostCenterInput struct {
	Code        string `json:"code" binding:"required"`
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	Active      *bool  `json:"active"`
}

// CatalogService manages the reference tables used by requests.
type CatalogService interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error)
	UpdateCategory(ctx context.Context, id uint, input CategoryInput) error
	DeleteCategory(ctx context.Context, id uint) error

	ListDepartments(ctx context.Context) ([]model.Department, error)
	CreateDepartment(ctx context.Context, input DepartmentInput) (*model.Department, error)
	UpdateDepartment(ctx context.Context, id uint, input DepartmentInput) error
	DeleteDepartment(ctx context.Context, id uint) error

	ListCostCenters(ctx context.Context) ([]model.CostCenter, error)
	CreateCostCenter(ctx context.Context, input CostCenterInput) (*model.CostCenter, error)
	UpdateCostCenter(ctx context.Context, id uint, input CostCenterInput) error
	DeleteCostCenter(ctx context.Context, id uint) error
}

type catalogService struct {
	repo repository.CatalogRepository
}

func NewCatalogService(repo repository.CatalogRepository) CatalogService {
	return &catalogService{repo: repo}
}

func (s *catalogService) ListCategories(ctx context.Context) ([]model.Category, error) {
	cats, err := s.repo.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return cats, nil
}

func (s *catalogService) CreateCategory(ctx context.Context, input CategoryInput) (*model.Category, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	cat := model.Category{
		Name:        input.Name,
		Description: input.Description,
		Active:      true,
	}
	if err := s.repo.CreateCategory(ctx, &cat); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return &cat, nil
}

func (s *catalogService) UpdateCategory(ctx context.Context, id uint, input CategoryInput) error {
	cat := model.Category{
		ID:          id,
		Name:        input.Name,
		Description: input.Description,
		Active:      input.Active == nil || *input.Active,
	}
	if err := s.repo.UpdateCategory(ctx, &cat); err != nil {
		return wrapCatalogErr(err)
	}
	return nil
}

func (s *catalogService) DeleteCategory(ctx context.Context, id uint) error {
	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return wrapCatalogErr(err)
	}
	return nil
}

func (s *catalogService) ListDepartments(ctx context.Context) ([]model.Department, error) {
	deps, err := s.repo.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return deps, nil
}

func (s *catalogService) CreateDepartment(ctx context.Context, input DepartmentInput) (*model.Department, error) {
	if strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", apperr.ErrValidation)
	}
	dep := model.Department{Name: input.Name, Active: true}
	if err := s.repo.CreateDepartment(ctx, &dep); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return &dep, nil
}

func (s *catalogService) UpdateDepartment(ctx context.Context, id uint, input DepartmentInput) error {
	dep := model.Department{
		ID:     id,
		Name:   input.Name,
		Active: input.Active == nil || *input.Active,
	}
	if err := s.repo.UpdateDepartment(ctx, &dep); err != nil {
		return wrapCatalogErr(err)
	}
	return nil
}

func (s *catalogService) DeleteDepartment(ctx context.Context, id uint) error {
	if err := s.repo.DeleteDepartment(ctx, id); err != nil {
		return wrapCatalogErr(err)
	}
	return nil
}

func (s *catalogService) ListCostCenters(ctx context.Context) ([]model.CostCenter, error) {
	centers, err := s.repo.ListCostCenters(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return centers, nil
}

func (s *catalogService) CreateCostCenter(ctx context.Context, input CostCenterInput) (*model.CostCenter, error) {
	if strings.TrimSpace(input.Code) == "" || strings.TrimSpace(input.Name) == "" {
		return nil, fmt.Errorf("%w: code and name are required", apperr.ErrValidation)
	}
	cc := model.CostCenter{
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		Active:      true,
	}
	if err := s.repo.CreateCostCenter(ctx, &cc); err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return &cc, nil
}

func (s *catalogService) UpdateCostCenter(ctx context.Context, id uint, input CostCenterInput) error {
	cc := model.CostCenter{
		ID:          id,
		Code:        input.Code,
		Name:        input.Name,
		Description: input.Description,
		Active:      input.Active == nil || *input.Active,
	}
	if err := s.repo.UpdateCostCenter(ctx, &cc); err != nil {
		return wrapCatalogErr(err)
	}
	return nil
}

func (s *catalogService) DeleteCostCenter(ctx context.Context, id uint) error {
	if err := s.repo.DeleteCostCenter(ctx, id); err != nil {
		return wrapCatalogErr(err)
	}
	return nil
}

func wrapCatalogErr(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w", apperr.ErrNotFound)
	}
	return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
}
