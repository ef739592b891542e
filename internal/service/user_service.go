package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"expenseflow/internal/middleware"
	"expenseflow/internal/model"
	"expenseflow/internal/repository"
	"expenseflow/pkg/apperr"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Login result codes preserved from the public API.
const (
	LoginCodeUserNotFound  = "USR_NOT_EXIST"
	LoginCodeWrongPassword = "USR_INCOR"
)

// --- DTOs ---

type CreateUserInput struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Role       string `json:"role" binding:"required"`
	Department string `json:"department"`
	Password   string `json:"password" binding:"required,min=6"`
}

type UpdateUserInput struct {
	Name       string `json:"name"`
	Email      string `json:"email" binding:"omitempty,email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Active     *bool  `json:"active"`
}

type UserView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Role       string `json:"role"`
	Department string `json:"department"`
	Active     bool   `json:"active"`
}

// LoginResult carries either a token or a failure code the frontend
// understands.
type LoginResult struct {
	Code  string `json:"code,omitempty"`
	Token string `json:"token,omitempty"`
	ID    uint   `json:"id,omitempty"`
	Email string `json:"usuario,omitempty"`
	Role  string `json:"rol,omitempty"`
	Name  string `json:"nombre,omitempty"`
}

type UserService interface {
	List(ctx context.Context) ([]UserView, error)
	Create(ctx context.Context, input CreateUserInput) (uint, error)
	Update(ctx context.Context, id uint, input UpdateUserInput) error
	Delete(ctx context.Context, id uint) error
	Login(ctx context.Context, email, password string) (*LoginResult, error)
	ResetPassword(ctx context.Context, email, password string) error
}

type userService struct {
	users   repository.UserRepository
	catalog repository.CatalogRepository
}

func NewUserService(users repository.UserRepository, catalog repository.CatalogRepository) UserService {
	return &userService{users: users, catalog: catalog}
}

func (s *userService) List(ctx context.Context) ([]UserView, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	views := make([]UserView, 0, len(users))
	for i := range users {
		views = append(views, toUserView(&users[i]))
	}
	return views, nil
}

func (s *userService) Create(ctx context.Context, input CreateUserInput) (uint, error) {
	if input.Name == "" || input.Email == "" || input.Role == "" {
		return 0, fmt.Errorf("%w: name, email and role are required", apperr.ErrValidation)
	}
	if len(input.Password) < 6 {
		return 0, fmt.Errorf("%w: password must be at least 6 characters", apperr.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("%w: failed to hash password: %v", apperr.ErrPersistence, err)
	}

	user := model.User{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: string(hash),
		Role:         input.Role,
		DepartmentID: s.resolveDepartment(ctx, input.Department),
		Active:       true,
	}
	if err := s.users.Create(ctx, &user); err != nil {
		return 0, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return user.ID, nil
}

func (s *userService) Update(ctx context.Context, id uint, input UpdateUserInput) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Email != "" {
		user.Email = input.Email
	}
	if input.Role != "" {
		user.Role = input.Role
	}
	if input.Department != "" {
		user.DepartmentID = s.resolveDepartment(ctx, input.Department)
	}
	if input.Active != nil {
		user.Active = *input.Active
	}
	user.Department = nil

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *userService) Delete(ctx context.Context, id uint) error {
	if _, err := s.users.GetByID(ctx, id); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %d: %w", id, apperr.ErrNotFound)
		}
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

func (s *userService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return &LoginResult{Code: LoginCodeUserNotFound}, nil
		}
		return nil, fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return &LoginResult{Code: LoginCodeWrongPassword}, nil
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"id":   float64(user.ID),
		"role": user.Role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(middleware.GetJWTSecret())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to sign token: %v", apperr.ErrPersistence, err)
	}

	return &LoginResult{
		Token: signed,
		ID:    user.ID,
		Email: user.Email,
		Role:  user.Role,
		Name:  user.Name,
	}, nil
}

func (s *userService) ResetPassword(ctx context.Context, email, password string) error {
	if strings.TrimSpace(password) == "" {
		return fmt.Errorf("%w: password is required", apperr.ErrValidation)
	}
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("user %s: %w", email, apperr.ErrNotFound)
		}
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: failed to hash password: %v", apperr.ErrPersistence, err)
	}
	user.PasswordHash = string(hash)
	user.Department = nil

	if err := s.users.Update(ctx, user); err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrPersistence, err)
	}
	return nil
}

// resolveDepartment maps a department name to its id; unknown names store
// a null department, matching request-creation's soft handling of lookups
// on user records.
func (s *userService) resolveDepartment(ctx context.Context, name string) *uint {
	if name == "" {
		return nil
	}
	dep, err := s.catalog.FindDepartmentByName(ctx, name)
	if err != nil {
		return nil
	}
	return &dep.ID
}

func toUserView(u *model.User) UserView {
	view := UserView{
		ID:     u.ID,
		Name:   u.Name,
		Email:  u.Email,
		Role:   u.Role,
		Active: u.Active,
	}
	if u.Department != nil {
		view.Department = u.Department.Name
	}
	return view
}
