package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// PublicTicketsHandler serves unauthenticated submission endpoints.
type PublicTicketsHandler struct {
	tickets *service.TicketService
}

// NewPublicTicketsHandler constructs handler.
func NewPublicTicketsHandler(tickets *service.TicketService) *PublicTicketsHandler {
	return &PublicTicketsHandler{tickets: tickets}
}

// CreateTicket POST /public/tickets.
func (h *PublicTicketsHandler) CreateTicket(c *fiber.Ctx) error {
	var req dto.PublicTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.ContactEmail) == "" || strings.TrimSpace(req.Description) == "" {
		return apperrors.NewValidationError("contact_email and description required", nil)
	}

	input := service.PublicTicketInput{
		ContactEmail: req.ContactEmail,
		Title:        req.Title,
		Description:  req.Description,
		Department:   catalogFieldInput(req.Department),
		Category:     catalogFieldInput(req.Category),
		Priority:     catalogFieldInput(req.Priority),
		Source:       domain.TicketSourceWeb,
		Tags:         req.Tags,
	}
	result, err := h.tickets.CreatePublicTicket(c.Context(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.PublicTicketResponse{
		ExternalKey:     result.Ticket.ExternalKey,
		Status:          string(result.Ticket.Status),
		DepartmentLabel: result.DepartmentLabel,
		PriorityLabel:   result.PriorityLabel,
		CreatedAt:       result.Ticket.CreatedAt,
	}})
}

// GetTicketStatus GET /public/tickets/:key. Lookup by external key with
// the contact email as a shared secret; only coarse status is exposed.
func (h *PublicTicketsHandler) GetTicketStatus(c *fiber.Ctx) error {
	email := strings.TrimSpace(c.Query("email"))
	if email == "" {
		return apperrors.NewValidationError("email query parameter required", nil)
	}
	ticket, err := h.tickets.GetPublicTicketStatus(c.Context(), c.Params("key"), email)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.PublicTicketResponse{
		ExternalKey: ticket.ExternalKey,
		Status:      string(ticket.Status),
		CreatedAt:   ticket.CreatedAt,
	}})
}

func catalogFieldInput(field dto.CatalogField) service.CatalogFieldInput {
	return service.CatalogFieldInput{ID: field.ID, Text: field.Text}
}
