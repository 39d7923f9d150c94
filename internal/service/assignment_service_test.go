package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type assignmentFixture struct {
	service    *AssignmentService
	tickets    *memTicketRepo
	history    *memHistoryRepo
	dispatcher *recordingDispatcher
}

func newAssignmentFixture(members ...domain.StaffMember) *assignmentFixture {
	tickets := newMemTicketRepo()
	history := newMemHistoryRepo()
	dispatcher := &recordingDispatcher{}
	svc := NewAssignmentService(AssignmentDependencies{
		TicketRepo:  tickets,
		StaffRepo:   newMemStaffRepo(members...),
		HistoryRepo: history,
		Dispatcher:  dispatcher,
	})
	return &assignmentFixture{service: svc, tickets: tickets, history: history, dispatcher: dispatcher}
}

func (fx *assignmentFixture) seedTicket(departmentID *string) *domain.Ticket {
	ticket := &domain.Ticket{
		ExternalKey:  "TCK-TEST0001",
		ContactEmail: "a@x.com",
		DepartmentID: departmentID,
		Title:        "t",
		Description:  "d",
		Status:       domain.TicketStatusOpen,
		Source:       domain.TicketSourceWeb,
	}
	if err := fx.tickets.Create(context.Background(), ticket); err != nil {
		panic(err)
	}
	return ticket
}

func TestSelfAssignTicket(t *testing.T) {
	fx := newAssignmentFixture()
	agent := agentInDept("dept-it")
	ticket := fx.seedTicket(strPtr("dept-it"))

	assigned, err := fx.service.SelfAssignTicket(context.Background(), agent, ticket.ID)
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, agent.ID, *assigned.AssigneeID)

	history, _ := fx.history.ListByTicket(context.Background(), ticket.ID)
	require.Len(t, history, 1)
	assert.Equal(t, domain.ChangeTypeAssignee, history[0].ChangeType)
	assert.Len(t, fx.dispatcher.byType(events.EventTicketAssigned), 1)
}

func TestSelfAssignOutsideDepartmentDenied(t *testing.T) {
	fx := newAssignmentFixture()
	ticket := fx.seedTicket(strPtr("dept-it"))

	_, err := fx.service.SelfAssignTicket(context.Background(), agentInDept("dept-bill"), ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)
}

func TestAssignRequiresTeamLeadOrAdmin(t *testing.T) {
	assignee := domain.StaffMember{ID: "staff-a", Role: domain.StaffRoleAgent, Active: true}
	fx := newAssignmentFixture(assignee)
	ticket := fx.seedTicket(nil)

	_, err := fx.service.AssignTicketToStaff(context.Background(), agentInDept("dept-it"), ticket.ID, "staff-a")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	lead := &domain.StaffMember{ID: "staff-lead", Role: domain.StaffRoleTeamLead, Active: true}
	assigned, err := fx.service.AssignTicketToStaff(context.Background(), lead, ticket.ID, "staff-a")
	require.NoError(t, err)
	require.NotNil(t, assigned.AssigneeID)
	assert.Equal(t, "staff-a", *assigned.AssigneeID)
}

func TestAssignRejectsInactiveAssignee(t *testing.T) {
	inactive := domain.StaffMember{ID: "staff-gone", Role: domain.StaffRoleAgent, Active: false}
	fx := newAssignmentFixture(inactive)
	ticket := fx.seedTicket(nil)

	_, err := fx.service.AssignTicketToStaff(context.Background(), adminStaff(), ticket.ID, "staff-gone")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestAssignRejectsUnknownAssignee(t *testing.T) {
	fx := newAssignmentFixture()
	ticket := fx.seedTicket(nil)

	_, err := fx.service.AssignTicketToStaff(context.Background(), adminStaff(), ticket.ID, "staff-missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestAssignRejectsAssigneeOutsideTicketScope(t *testing.T) {
	billing := "dept-bill"
	assignee := domain.StaffMember{ID: "staff-bill", Role: domain.StaffRoleAgent, DepartmentID: &billing, Active: true}
	fx := newAssignmentFixture(assignee)
	ticket := fx.seedTicket(strPtr("dept-it"))

	lead := &domain.StaffMember{ID: "staff-lead", Role: domain.StaffRoleTeamLead, Active: true}
	_, err := fx.service.AssignTicketToStaff(context.Background(), lead, ticket.ID, "staff-bill")
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// an admin may cross department scopes
	_, err = fx.service.AssignTicketToStaff(context.Background(), adminStaff(), ticket.ID, "staff-bill")
	assert.NoError(t, err)
}

func TestUnassignClearsAssignee(t *testing.T) {
	assignee := domain.StaffMember{ID: "staff-a", Role: domain.StaffRoleAgent, Active: true}
	fx := newAssignmentFixture(assignee)
	ticket := fx.seedTicket(nil)

	_, err := fx.service.AssignTicketToStaff(context.Background(), adminStaff(), ticket.ID, "staff-a")
	require.NoError(t, err)

	cleared, err := fx.service.UnassignTicket(context.Background(), adminStaff(), ticket.ID)
	require.NoError(t, err)
	assert.Nil(t, cleared.AssigneeID)

	history, _ := fx.history.ListByTicket(context.Background(), ticket.ID)
	assert.Len(t, history, 2)
}

func TestAssignUnknownTicket(t *testing.T) {
	fx := newAssignmentFixture()
	_, err := fx.service.SelfAssignTicket(context.Background(), adminStaff(), "ticket-missing")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}
