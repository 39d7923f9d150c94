package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// AssignmentService handles ticket assignment operations.
type AssignmentService struct {
	tickets     repository.TicketRepository
	staff       repository.StaffRepository
	historyRepo repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
}

// AssignmentDependencies bundles repositories.
type AssignmentDependencies struct {
	TicketRepo  repository.TicketRepository
	StaffRepo   repository.StaffRepository
	HistoryRepo repository.TicketHistoryRepository
	Dispatcher  events.Dispatcher
}

// NewAssignmentService creates the service.
func NewAssignmentService(deps AssignmentDependencies) *AssignmentService {
	return &AssignmentService{
		tickets:     deps.TicketRepo,
		staff:       deps.StaffRepo,
		historyRepo: deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// SelfAssignTicket allows a staff member to assign a ticket to themselves.
func (s *AssignmentService) SelfAssignTicket(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccess(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.assign(ctx, staff.ID, ticket, &staff.ID)
}

// AssignTicketToStaff assigns a ticket to the given staff member
// (TEAM_LEAD or ADMIN only).
func (s *AssignmentService) AssignTicketToStaff(ctx context.Context, actor *domain.StaffMember, ticketID, assigneeStaffID string) (*domain.Ticket, error) {
	if err := requireAssignPriv(actor); err != nil {
		return nil, err
	}
	assignee, err := s.staff.GetByID(ctx, assigneeStaffID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("staff", map[string]any{"staff_id": assigneeStaffID})
		}
		return nil, apperrors.MapError(err)
	}
	if !assignee.Active {
		return nil, apperrors.NewConflict("assignee inactive", map[string]any{"staff_id": assigneeStaffID})
	}

	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if actor.Role != domain.StaffRoleAdmin && !s.staffMatchesTicketScope(assignee, ticket) {
		return nil, apperrors.NewForbidden("assignee outside ticket scope")
	}
	return s.assign(ctx, actor.ID, ticket, &assignee.ID)
}

// UnassignTicket clears the assignee (TEAM_LEAD or ADMIN only).
func (s *AssignmentService) UnassignTicket(ctx context.Context, actor *domain.StaffMember, ticketID string) (*domain.Ticket, error) {
	if err := requireAssignPriv(actor); err != nil {
		return nil, err
	}
	ticket, err := s.getTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccess(actor, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.assign(ctx, actor.ID, ticket, nil)
}

func (s *AssignmentService) assign(ctx context.Context, actorID string, ticket *domain.Ticket, assigneeID *string) (*domain.Ticket, error) {
	oldAssignee := ticket.AssigneeID
	ticket.AssigneeID = assigneeID
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.recordAssigneeChange(ctx, actorID, ticket.ID, oldAssignee, ticket.AssigneeID); err != nil {
		return nil, apperrors.MapError(err)
	}
	s.publishAssignmentEvent(ctx, actorID, events.TicketAssignedPayload{
		AssigneeStaffID: ticket.AssigneeID,
	}, ticket.ID)
	return ticket, nil
}

func (s *AssignmentService) getTicket(ctx context.Context, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": ticketID})
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

func requireAssignPriv(actor *domain.StaffMember) error {
	if actor == nil {
		return apperrors.NewUnauthorized("staff required")
	}
	if actor.Role != domain.StaffRoleTeamLead && actor.Role != domain.StaffRoleAdmin {
		return apperrors.NewForbidden("insufficient role for assignment")
	}
	return nil
}

func (s *AssignmentService) staffCanAccess(staff *domain.StaffMember, ticket *domain.Ticket) bool {
	if staff == nil {
		return false
	}
	if staff.Role == domain.StaffRoleAdmin {
		return true
	}
	if staff.DepartmentID == nil {
		return true
	}
	if ticket.DepartmentID != nil && *staff.DepartmentID == *ticket.DepartmentID {
		return true
	}
	return ticket.DepartmentID == nil
}

func (s *AssignmentService) staffMatchesTicketScope(staff *domain.StaffMember, ticket *domain.Ticket) bool {
	if staff.DepartmentID == nil || ticket.DepartmentID == nil {
		return true
	}
	return *staff.DepartmentID == *ticket.DepartmentID
}

func (s *AssignmentService) recordAssigneeChange(ctx context.Context, actorID, ticketID string, oldAssignee, newAssignee *string) error {
	if s.historyRepo == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: domain.AuthorTypeStaff,
		ChangedByID:   &actorID,
		ChangeType:    domain.ChangeTypeAssignee,
		OldValue:      map[string]any{"assignee_staff_id": oldAssignee},
		NewValue:      map[string]any{"assignee_staff_id": newAssignee},
	}
	return s.historyRepo.Create(ctx, entry)
}

func (s *AssignmentService) publishAssignmentEvent(ctx context.Context, actorID string, payload events.TicketAssignedPayload, ticketID string) {
	if s.dispatcher == nil {
		return
	}
	_ = s.dispatcher.Publish(ctx, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticketID,
		Actor:    staffActor(actorID),
		Payload:  payload,
	})
}
