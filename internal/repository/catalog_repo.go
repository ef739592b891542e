package repository

import (
	"context"

	"expenseflow/internal/model"

	"gorm.io/gorm"
)

// CatalogRepository covers the reference tables: categories, departments
// and cost centers. They share a full-CRUD lifecycle with no cross-entity
// invariants beyond foreign-key existence.
type CatalogRepository interface {
	ListCategories(ctx context.Context) ([]model.Category, error)
	CreateCategory(ctx context.Context, cat *model.Category) error
	UpdateCategory(ctx context.Context, cat *model.Category) error
	DeleteCategory(ctx context.Context, id uint) error

	ListDepartments(ctx context.Context) ([]model.Department, error)
	FindDepartmentByName(ctx context.Context, name string) (*model.Department, error)
	CreateDepartment(ctx context.Context, dep *model.Department) error
	UpdateDepartment(ctx context.Context, dep *model.Department) error
	DeleteDepartment(ctx context.Context, id uint) error

	ListCostCenters(ctx context.Context) ([]model.CostCenter, error)
	FindCostCenterByCode(ctx context.Context, code string) (*model.CostCenter, error)
	CreateCostCenter(ctx context.Context, cc *model.CostCenter) error
	UpdateCostCenter(ctx context.Context, cc *model.CostCenter) error
	DeleteCostCenter(ctx context.Context, id uint) error
}

type catalogRepository struct {
	db *gorm.DB
}

func NewCatalogRepository(db *gorm.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

func (r *catalogRepository) ListCategories(ctx context.Context) ([]model.Category, error) {
	var cats []model.Category
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&cats).Error; err != nil {
		return nil, err
	}
	return cats, nil
}

func (r *catalogRepository) CreateCategory(ctx context.Context, cat *model.Category) error {
	return GetDB(ctx, r.db).Create(cat).Error
}

func (r *catalogRepository) UpdateCategory(ctx context.Context, cat *model.Category) error {
	return GetDB(ctx, r.db).Save(cat).Error
}

func (r *catalogRepository) DeleteCategory(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.Category{}, id).Error
}

func (r *catalogRepository) ListDepartments(ctx context.Context) ([]model.Department, error) {
	var deps []model.Department
	if err := GetDB(ctx, r.db).Order("name ASC").Find(&deps).Error; err != nil {
		return nil, err
	}
	return deps, nil
}

func (r *catalogRepository) FindDepartmentByName(ctx context.Context, name string) (*model.Department, error) {
	var dep model.Department
	if err := GetDB(ctx, r.db).First(&dep, "name = ?", name).Error; err != nil {
		return nil, err
	}
	return &dep, nil
}

func (r *catalogRepository) CreateDepartment(ctx context.Context, dep *model.Department) error {
	return GetDB(ctx, r.db).Create(dep).Error
}

func (r *catalogRepository) UpdateDepartment(ctx context.Context, dep *model.Department) error {
	return GetDB(ctx, r.db).Save(dep).Error
}

func (r *catalogRepository) DeleteDepartment(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.Department{}, id).Error
}

func (r *catalogRepository) ListCostCenters(ctx context.Context) ([]model.CostCenter, error) {
	var centers []model.CostCenter
	if err := GetDB(ctx, r.db).Order("code ASC").Find(&centers).Error; err != nil {
		return nil, err
	}
	return centers, nil
}

func (r *catalogRepository) FindCostCenterByCode(ctx context.Context, code string) (*model.CostCenter, error) {
	var cc model.CostCenter
	if err := GetDB(ctx, r.db).First(&cc, "code = ?", code).Error; err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *catalogRepository) CreateCostCenter(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Create(cc).Error
}

func (r *catalogRepository) UpdateCostCenter(ctx context.Context, cc *model.CostCenter) error {
	return GetDB(ctx, r.db).Save(cc).Error
}

func (r *catalogRepository) DeleteCostCenter(ctx context.Context, id uint) error {
	return GetDB(ctx, r.db).Delete(&model.CostCenter{}, id).Error
}
