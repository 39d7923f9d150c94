package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffHandler exposes staff auth plus admin management of catalogs and
// staff accounts.
type StaffHandler struct {
	auth *service.AuthService
	org  *service.StaffService
}

// NewStaffHandler constructs handler.
func NewStaffHandler(authService *service.AuthService, orgService *service.StaffService) *StaffHandler {
	return &StaffHandler{auth: authService, org: orgService}
}

// Login handles POST /auth/staff/login.
func (h *StaffHandler) Login(c *fiber.Ctx) error {
	var req dto.StaffLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return fiber.NewError(http.StatusBadRequest, "email and password required")
	}

	member, token, exp, err := h.auth.LoginStaff(c.Context(), req.Email, req.Password)
	if err != nil {
		return fiber.NewError(http.StatusUnauthorized, err.Error())
	}

	return c.JSON(fiber.Map{
		"data": fiber.Map{
			"staff": dto.StaffEntry(member),
			"auth":  dto.AuthResponse{Token: token, ExpiresAt: exp},
		},
	})
}

// RequestPasswordReset handles POST /auth/staff/password-reset.
func (h *StaffHandler) RequestPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	// Always 202 so the endpoint cannot be used to probe accounts.
	_, _ = h.auth.RequestPasswordReset(c.Context(), req.Email)
	return c.SendStatus(http.StatusAccepted)
}

// ConfirmPasswordReset handles POST /auth/staff/password-reset/confirm.
func (h *StaffHandler) ConfirmPasswordReset(c *fiber.Ctx) error {
	var req dto.PasswordResetConfirmRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	if err := h.auth.ConfirmPasswordReset(c.Context(), req.Token, req.NewPassword); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// ChangePassword handles POST /staff/password.
func (h *StaffHandler) ChangePassword(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.PasswordChangeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(http.StatusBadRequest, "invalid payload")
	}
	subject := service.AuthSubject{Type: domain.SubjectTypeStaff, ID: staff.ID}
	if err := h.auth.ChangePassword(c.Context(), subject, req.CurrentPassword, req.NewPassword); err != nil {
		return fiber.NewError(http.StatusBadRequest, err.Error())
	}
	return c.SendStatus(http.StatusNoContent)
}

// CreateDepartment handles POST /staff/admin/departments.
func (h *StaffHandler) CreateDepartment(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept, err := h.org.CreateDepartment(c.Context(), staff, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.DepartmentEntry(dept)})
}

// ListDepartments handles GET /staff/admin/departments.
func (h *StaffHandler) ListDepartments(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	depts, err := h.org.ListDepartments(c.Context(), staff, c.QueryBool("include_inactive"))
	if err != nil {
		return err
	}
	items := make([]dto.CatalogEntryResponse, 0, len(depts))
	for i := range depts {
		items = append(items, dto.DepartmentEntry(&depts[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateDepartment handles PATCH /staff/admin/departments/:id.
func (h *StaffHandler) UpdateDepartment(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.DepartmentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	dept := &domain.Department{
		ID:          c.Params("id"),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	updated, err := h.org.UpdateDepartment(c.Context(), staff, dept)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentEntry(updated)})
}

// CreateCategory handles POST /staff/admin/categories.
func (h *StaffHandler) CreateCategory(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat, err := h.org.CreateCategory(c.Context(), staff, req.Name, req.Description)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.CategoryEntry(cat)})
}

// ListCategories handles GET /staff/admin/categories.
func (h *StaffHandler) ListCategories(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	cats, err := h.org.ListCategories(c.Context(), staff, c.QueryBool("include_inactive"))
	if err != nil {
		return err
	}
	items := make([]dto.CatalogEntryResponse, 0, len(cats))
	for i := range cats {
		items = append(items, dto.CategoryEntry(&cats[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdateCategory handles PATCH /staff/admin/categories/:id.
func (h *StaffHandler) UpdateCategory(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CategoryRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	cat := &domain.Category{
		ID:          c.Params("id"),
		Name:        req.Name,
		Description: req.Description,
		IsActive:    req.IsActive == nil || *req.IsActive,
	}
	updated, err := h.org.UpdateCategory(c.Context(), staff, cat)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CategoryEntry(updated)})
}

// CreatePriority handles POST /staff/admin/priorities.
func (h *StaffHandler) CreatePriority(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pri, err := h.org.CreatePriority(c.Context(), staff, req.Name, req.Rank)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.PriorityEntry(pri)})
}

// ListPriorities handles GET /staff/admin/priorities.
func (h *StaffHandler) ListPriorities(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	pris, err := h.org.ListPriorities(c.Context(), staff, c.QueryBool("include_inactive"))
	if err != nil {
		return err
	}
	items := make([]dto.CatalogEntryResponse, 0, len(pris))
	for i := range pris {
		items = append(items, dto.PriorityEntry(&pris[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// UpdatePriority handles PATCH /staff/admin/priorities/:id.
func (h *StaffHandler) UpdatePriority(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.PriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	pri := &domain.Priority{
		ID:       c.Params("id"),
		Name:     req.Name,
		Rank:     req.Rank,
		IsActive: req.IsActive == nil || *req.IsActive,
	}
	updated, err := h.org.UpdatePriority(c.Context(), staff, pri)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PriorityEntry(updated)})
}

// CreateStaff handles POST /staff/admin/staff.
func (h *StaffHandler) CreateStaff(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateStaffRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.org.CreateStaff(c.Context(), staff, service.StaffCreateInput{
		Name:         req.Name,
		Email:        req.Email,
		Password:     req.Password,
		Role:         req.Role,
		DepartmentID: req.DepartmentID,
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.StaffEntry(member)})
}

// ListStaff handles GET /staff/admin/staff.
func (h *StaffHandler) ListStaff(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	filter := repository.StaffFilter{
		Limit:  parseInt(c.Query("page_size"), 50),
		Offset: (parseInt(c.Query("page"), 1) - 1) * parseInt(c.Query("page_size"), 50),
	}
	if v := c.Query("role"); v != "" {
		role := domain.StaffRole(v)
		filter.Role = &role
	}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	members, err := h.org.ListStaff(c.Context(), staff, filter)
	if err != nil {
		return err
	}
	items := make([]dto.StaffResponse, 0, len(members))
	for i := range members {
		items = append(items, dto.StaffEntry(&members[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// SetStaffActive handles PATCH /staff/admin/staff/:id/active.
func (h *StaffHandler) SetStaffActive(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.StaffActiveRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	member, err := h.org.SetStaffActive(c.Context(), staff, c.Params("id"), req.Active)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.StaffEntry(member)})
}
