package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

// CatalogHandler serves the public option catalogs.
type CatalogHandler struct {
	catalog *service.CatalogService
}

// NewCatalogHandler constructs handler.
func NewCatalogHandler(catalog *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalog: catalog}
}

// GetCatalogs GET /catalogs. Returns all three lists in one call so the
// submission form can render without chained requests.
func (h *CatalogHandler) GetCatalogs(c *fiber.Ctx) error {
	depts, cats, pris, err := h.catalog.LoadAll(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CatalogResponse{
		Departments: dto.DepartmentOptions(depts),
		Categories:  dto.CategoryOptions(cats),
		Priorities:  dto.PriorityOptions(pris),
	}})
}

// GetDepartments GET /catalogs/departments.
func (h *CatalogHandler) GetDepartments(c *fiber.Ctx) error {
	depts, err := h.catalog.ListDepartments(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.DepartmentOptions(depts)})
}

// GetCategories GET /catalogs/categories.
func (h *CatalogHandler) GetCategories(c *fiber.Ctx) error {
	cats, err := h.catalog.ListCategories(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.CategoryOptions(cats)})
}

// GetPriorities GET /catalogs/priorities.
func (h *CatalogHandler) GetPriorities(c *fiber.Ctx) error {
	pris, err := h.catalog.ListPriorities(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PriorityOptions(pris)})
}
