package service

import (
	"context"
	"strings"

	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffService manages organization entities: departments, the category and
// priority catalogs, and staff accounts. All operations require ADMIN.
type StaffService struct {
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	priorities  repository.PriorityRepository
	staff       repository.StaffRepository
	catalog     *CatalogService
	bcryptCost  int
}

// OrgDependencies encapsulates repositories required for org management.
type OrgDependencies struct {
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	PriorityRepo   repository.PriorityRepository
	StaffRepo      repository.StaffRepository
	Catalog        *CatalogService
}

// StaffCreateInput describes a new staff account.
type StaffCreateInput struct {
	Name         string
	Email        string
	Password     string
	Role         domain.StaffRole
	DepartmentID *string
}

// NewStaffService constructs the service.
func NewStaffService(cfg config.Config, deps OrgDependencies) *StaffService {
	return &StaffService{
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		priorities:  deps.PriorityRepo,
		staff:       deps.StaffRepo,
		catalog:     deps.Catalog,
		bcryptCost:  cfg.Auth.BcryptCost,
	}
}

func requireAdmin(actor *domain.StaffMember) error {
	if actor == nil || actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("admin role required")
	}
	return nil
}

// CreateDepartment creates a new department.
func (s *StaffService) CreateDepartment(ctx context.Context, actor *domain.StaffMember, name, description string) (*domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	dept := &domain.Department{
		Name:        strings.TrimSpace(name),
		Description: description,
		IsActive:    true,
	}
	if err := s.departments.Create(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCatalog(ctx)
	return dept, nil
}

// ListDepartments returns departments (optionally inactive).
func (s *StaffService) ListDepartments(ctx context.Context, actor *domain.StaffMember, includeInactive bool) ([]domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.departments.List(ctx, includeInactive)
}

// UpdateDepartment modifies department metadata or active flag.
func (s *StaffService) UpdateDepartment(ctx context.Context, actor *domain.StaffMember, dept *domain.Department) (*domain.Department, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.departments.Update(ctx, dept); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCatalog(ctx)
	return dept, nil
}

// CreateCategory adds a category catalog entry.
func (s *StaffService) CreateCategory(ctx context.Context, actor *domain.StaffMember, name, description string) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	cat := &domain.Category{
		Name:        strings.TrimSpace(name),
		Description: description,
		IsActive:    true,
	}
	if err := s.categories.Create(ctx, cat); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCatalog(ctx)
	return cat, nil
}

// ListCategories returns categories (optionally inactive).
func (s *StaffService) ListCategories(ctx context.Context, actor *domain.StaffMember, includeInactive bool) ([]domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.categories.List(ctx, includeInactive)
}

// UpdateCategory modifies a category catalog entry.
func (s *StaffService) UpdateCategory(ctx context.Context, actor *domain.StaffMember, cat *domain.Category) (*domain.Category, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.categories.Update(ctx, cat); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCatalog(ctx)
	return cat, nil
}

// CreatePriority adds a priority catalog entry.
func (s *StaffService) CreatePriority(ctx context.Context, actor *domain.StaffMember, name string, rank int) (*domain.Priority, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.NewValidationError("name required", nil)
	}
	pri := &domain.Priority{
		Name:     strings.TrimSpace(name),
		Rank:     rank,
		IsActive: true,
	}
	if err := s.priorities.Create(ctx, pri); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCatalog(ctx)
	return pri, nil
}

// ListPriorities returns priorities (optionally inactive).
func (s *StaffService) ListPriorities(ctx context.Context, actor *domain.StaffMember, includeInactive bool) ([]domain.Priority, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.priorities.List(ctx, includeInactive)
}

// UpdatePriority modifies a priority catalog entry.
func (s *StaffService) UpdatePriority(ctx context.Context, actor *domain.StaffMember, pri *domain.Priority) (*domain.Priority, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := s.priorities.Update(ctx, pri); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.invalidateCatalog(ctx)
	return pri, nil
}

// CreateStaff provisions a staff account.
func (s *StaffService) CreateStaff(ctx context.Context, actor *domain.StaffMember, input StaffCreateInput) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if input.Email == "" || input.Password == "" || input.Name == "" {
		return nil, apperrors.NewValidationError("name, email, password required", nil)
	}
	if input.DepartmentID != nil {
		if _, err := s.departments.GetByID(ctx, *input.DepartmentID); err != nil {
			return nil, apperrors.MapError(err)
		}
	}
	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	member := &domain.StaffMember{
		Name:         input.Name,
		Email:        input.Email,
		PasswordHash: hash,
		Role:         input.Role,
		DepartmentID: input.DepartmentID,
		Active:       true,
	}
	if member.Role == "" {
		member.Role = domain.StaffRoleAgent
	}
	if err := s.staff.Create(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

// ListStaff returns staff members matching the filter.
func (s *StaffService) ListStaff(ctx context.Context, actor *domain.StaffMember, filter repository.StaffFilter) ([]domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	return s.staff.List(ctx, filter)
}

// SetStaffActive toggles a staff account.
func (s *StaffService) SetStaffActive(ctx context.Context, actor *domain.StaffMember, staffID string, active bool) (*domain.StaffMember, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	member, err := s.staff.GetByID(ctx, staffID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	member.Active = active
	if err := s.staff.Update(ctx, member); err != nil {
		return nil, apperrors.MapError(err)
	}
	return member, nil
}

func (s *StaffService) invalidateCatalog(ctx context.Context) {
	if s.catalog != nil {
		s.catalog.Invalidate(ctx)
	}
}
