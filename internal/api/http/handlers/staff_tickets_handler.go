package handlers

import (
	"encoding/csv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// StaffTicketsHandler manages the staff workspace endpoints.
type StaffTicketsHandler struct {
	tickets     *service.TicketService
	assignments *service.AssignmentService
	analytics   *service.AnalyticsService
}

// NewStaffTicketsHandler constructs handler.
func NewStaffTicketsHandler(tickets *service.TicketService, assignments *service.AssignmentService, analytics *service.AnalyticsService) *StaffTicketsHandler {
	return &StaffTicketsHandler{tickets: tickets, assignments: assignments, analytics: analytics}
}

// ListTickets GET /staff/tickets.
func (h *StaffTicketsHandler) ListTickets(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	filter := parseStaffTicketQuery(c)
	tickets, err := h.tickets.ListStaffTickets(c.Context(), staff, filter)
	if err != nil {
		return err
	}
	items := make([]dto.TicketSummary, 0, len(tickets))
	for i := range tickets {
		items = append(items, ticketSummary(&tickets[i]))
	}
	return c.JSON(fiber.Map{"data": items})
}

// ExportTickets GET /staff/tickets/export. Streams the filtered listing
// as CSV for offline reporting.
func (h *StaffTicketsHandler) ExportTickets(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	filter := parseStaffTicketQuery(c)
	if filter.Limit <= 0 || filter.Limit > 5000 {
		filter.Limit = 5000
	}
	tickets, err := h.tickets.ListStaffTickets(c.Context(), staff, filter)
	if err != nil {
		return err
	}

	var buf strings.Builder
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"external_key", "title", "status", "source", "department", "priority", "assignee_id", "created_at", "updated_at"})
	for i := range tickets {
		t := &tickets[i]
		_ = w.Write([]string{
			t.ExternalKey,
			t.Title,
			string(t.Status),
			string(t.Source),
			catalogLabel(t.DepartmentID, t.DepartmentText),
			catalogLabel(t.PriorityID, t.PriorityText),
			derefOrEmpty(t.AssigneeID),
			t.CreatedAt.Format(time.RFC3339),
			t.UpdatedAt.Format(time.RFC3339),
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return apperrors.NewInternalError(err)
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="tickets.csv"`)
	return c.SendString(buf.String())
}

// GetTicket GET /staff/tickets/:id.
func (h *StaffTicketsHandler) GetTicket(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, msgs, err := h.tickets.GetTicketForStaff(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	history, err := h.tickets.ListHistoryForStaff(c.Context(), staff, ticket.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketDetail(ticket, msgs, history)})
}

// AddMessage POST /staff/tickets/:id/messages.
func (h *StaffTicketsHandler) AddMessage(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.CreateMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Body) == "" {
		return apperrors.NewValidationError("body required", nil)
	}
	messageType := domain.MessageTypePublicReply
	if req.MessageType != "" {
		messageType = domain.TicketMessageType(req.MessageType)
	}
	msg, err := h.tickets.AddMessage(c.Context(), domain.SubjectTypeStaff, staff.ID, staff, c.Params("id"), messageType, req.Body)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": ticketMessageResponse(msg)})
}

// UpdateStatus PATCH /staff/tickets/:id/status.
func (h *StaffTicketsHandler) UpdateStatus(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdateStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	ticket, err := h.tickets.UpdateStatus(c.Context(), staff, c.Params("id"), req.Status, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// UpdatePriority PATCH /staff/tickets/:id/priority.
func (h *StaffTicketsHandler) UpdatePriority(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.UpdatePriorityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.PriorityID == "" {
		return apperrors.NewValidationError("priority_id required", nil)
	}
	ticket, err := h.tickets.UpdatePriority(c.Context(), staff, c.Params("id"), req.PriorityID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// SelfAssign POST /staff/tickets/:id/assign/self.
func (h *StaffTicketsHandler) SelfAssign(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.SelfAssignTicket(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Assign POST /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Assign(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.AssignRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.AssigneeStaffID == "" {
		return apperrors.NewValidationError("assignee_staff_id required", nil)
	}
	ticket, err := h.assignments.AssignTicketToStaff(c.Context(), staff, c.Params("id"), req.AssigneeStaffID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Unassign DELETE /staff/tickets/:id/assign.
func (h *StaffTicketsHandler) Unassign(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	ticket, err := h.assignments.UnassignTicket(c.Context(), staff, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// Merge POST /staff/tickets/:id/merge. The path ticket is the target.
func (h *StaffTicketsHandler) Merge(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	var req dto.MergeRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.SourceTicketID == "" {
		return apperrors.NewValidationError("source_ticket_id required", nil)
	}
	ticket, err := h.tickets.MergeTickets(c.Context(), staff, c.Params("id"), req.SourceTicketID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": ticketSummary(ticket)})
}

// AnalyticsOverview GET /staff/analytics/overview.
func (h *StaffTicketsHandler) AnalyticsOverview(c *fiber.Ctx) error {
	staff, err := staffFromContext(c)
	if err != nil {
		return err
	}
	days := parseInt(c.Query("days"), 30)
	overview, err := h.analytics.Overview(c.Context(), staff, days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AnalyticsOverview(overview)})
}

func staffFromContext(c *fiber.Ctx) (*domain.StaffMember, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.Staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	return principal.Staff, nil
}

func parseStaffTicketQuery(c *fiber.Ctx) service.TicketStaffFilter {
	filter := service.TicketStaffFilter{}
	if v := c.Query("department_id"); v != "" {
		filter.DepartmentID = &v
	}
	if v := c.Query("category_id"); v != "" {
		filter.CategoryID = &v
	}
	if v := c.Query("priority_id"); v != "" {
		filter.PriorityID = &v
	}
	if v := c.Query("assignee_id"); v != "" {
		filter.AssigneeID = &v
	}
	if v := c.Query("status"); v != "" {
		for _, part := range strings.Split(v, ",") {
			filter.Statuses = append(filter.Statuses, domain.TicketStatus(strings.TrimSpace(part)))
		}
	}
	if v := c.Query("source"); v != "" {
		source := domain.TicketSource(strings.ToUpper(v))
		filter.Source = &source
	}
	if v := c.Query("q"); v != "" {
		filter.SearchTerm = &v
	}
	if from := parseTime(c.Query("created_from")); from != nil {
		filter.CreatedFrom = from
	}
	if to := parseTime(c.Query("created_to")); to != nil {
		filter.CreatedTo = to
	}
	if from := parseTime(c.Query("updated_from")); from != nil {
		filter.UpdatedFrom = from
	}
	if to := parseTime(c.Query("updated_to")); to != nil {
		filter.UpdatedTo = to
	}
	page := parseInt(c.Query("page"), 1)
	pageSize := parseInt(c.Query("page_size"), 20)
	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	return filter
}

func catalogLabel(id *string, text string) string {
	if id != nil {
		return *id
	}
	return text
}

func derefOrEmpty(val *string) string {
	if val == nil {
		return ""
	}
	return *val
}
