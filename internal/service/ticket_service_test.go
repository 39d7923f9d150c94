package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

type ticketServiceFixture struct {
	service    *TicketService
	tickets    *memTicketRepo
	messages   *memMessageRepo
	history    *memHistoryRepo
	dispatcher *recordingDispatcher
}

func newTicketServiceFixture() *ticketServiceFixture {
	tickets := newMemTicketRepo()
	messages := newMemMessageRepo()
	history := newMemHistoryRepo()
	dispatcher := &recordingDispatcher{}

	svc := NewTicketService(TicketDependencies{
		TicketRepo:  tickets,
		MessageRepo: messages,
		DepartmentRepo: newMemDepartmentRepo(
			domain.Department{ID: "dept-it", Name: "IT", IsActive: true},
			domain.Department{ID: "dept-bill", Name: "Billing", IsActive: true},
		),
		CategoryRepo: newMemCategoryRepo(
			domain.Category{ID: "cat-inc", Name: "Incident", IsActive: true},
		),
		PriorityRepo: newMemPriorityRepo(
			domain.Priority{ID: "pri-high", Name: "High", Rank: 3, IsActive: true},
		),
		HistoryRepo: history,
		Dispatcher:  dispatcher,
	})
	return &ticketServiceFixture{
		service:    svc,
		tickets:    tickets,
		messages:   messages,
		history:    history,
		dispatcher: dispatcher,
	}
}

func adminStaff() *domain.StaffMember {
	return &domain.StaffMember{ID: "staff-admin", Role: domain.StaffRoleAdmin, Active: true}
}

func agentInDept(dept string) *domain.StaffMember {
	return &domain.StaffMember{ID: "staff-" + dept, Role: domain.StaffRoleAgent, DepartmentID: &dept, Active: true}
}

func TestCreatePublicTicketWithFreeTextFields(t *testing.T) {
	fx := newTicketServiceFixture()

	result, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{
		ContactEmail: "bob@x.com",
		Description:  "the printer is jammed",
		Department:   CatalogFieldInput{Text: "Zarquon"},
		Priority:     CatalogFieldInput{Text: "super urgent"},
		Source:       domain.TicketSourceChatbot,
	})
	require.NoError(t, err)

	ticket := result.Ticket
	assert.Nil(t, ticket.RequesterID)
	assert.Equal(t, "bob@x.com", ticket.ContactEmail)
	assert.Nil(t, ticket.DepartmentID)
	assert.Equal(t, "Zarquon", ticket.DepartmentText)
	assert.Equal(t, "super urgent", ticket.PriorityText)
	assert.Equal(t, domain.TicketSourceChatbot, ticket.Source)
	assert.Equal(t, domain.TicketStatusOpen, ticket.Status)
	assert.True(t, strings.HasPrefix(ticket.ExternalKey, "TCK-"))
	// title derived from the description when none given
	assert.Equal(t, "the printer is jammed", ticket.Title)
	assert.Equal(t, "Zarquon", result.DepartmentLabel)
	assert.Equal(t, "super urgent", result.PriorityLabel)

	created := fx.dispatcher.byType(events.EventTicketCreated)
	require.Len(t, created, 1)
	assert.Nil(t, created[0].Actor.UserID)
}

func TestCreatePublicTicketResolvesCatalogIDs(t *testing.T) {
	fx := newTicketServiceFixture()

	result, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{
		ContactEmail: "bob@x.com",
		Description:  "vpn broken",
		Department:   CatalogFieldInput{ID: strPtr("dept-it")},
		Priority:     CatalogFieldInput{ID: strPtr("pri-high")},
	})
	require.NoError(t, err)

	ticket := result.Ticket
	require.NotNil(t, ticket.DepartmentID)
	assert.Equal(t, "dept-it", *ticket.DepartmentID)
	assert.Empty(t, ticket.DepartmentText)
	assert.Equal(t, "IT", result.DepartmentLabel)
	assert.Equal(t, "High", result.PriorityLabel)
	assert.Equal(t, domain.TicketSourceWeb, ticket.Source)
}

func TestCreatePublicTicketLongDescriptionTruncatesTitle(t *testing.T) {
	fx := newTicketServiceFixture()
	long := strings.Repeat("a", 200)

	result, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{
		ContactEmail: "bob@x.com",
		Description:  long,
	})
	require.NoError(t, err)
	assert.Len(t, result.Ticket.Title, 40)
	assert.Equal(t, long, result.Ticket.Description)
}

func TestCreatePublicTicketValidation(t *testing.T) {
	fx := newTicketServiceFixture()

	_, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{Description: "x"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)

	_, err = fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{ContactEmail: "a@b.c"})
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestGetPublicTicketStatusRequiresMatchingEmail(t *testing.T) {
	fx := newTicketServiceFixture()
	result, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{
		ContactEmail: "Bob@X.com",
		Description:  "broken",
	})
	require.NoError(t, err)

	found, err := fx.service.GetPublicTicketStatus(context.Background(), result.Ticket.ExternalKey, "bob@x.com")
	require.NoError(t, err)
	assert.Equal(t, result.Ticket.ID, found.ID)

	_, err = fx.service.GetPublicTicketStatus(context.Background(), result.Ticket.ExternalKey, "mallory@evil.com")
	require.Error(t, err)
	assert.Equal(t, "NOT_FOUND", apperrors.ToDomainError(err).Code)
}

func TestUpdateStatusEnforcesTransitions(t *testing.T) {
	fx := newTicketServiceFixture()
	staff := adminStaff()
	result, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{
		ContactEmail: "bob@x.com", Description: "broken",
	})
	require.NoError(t, err)
	id := result.Ticket.ID

	_, err = fx.service.UpdateStatus(context.Background(), staff, id, domain.TicketStatusResolved, "")
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	ticket, err := fx.service.UpdateStatus(context.Background(), staff, id, domain.TicketStatusInProgress, "picking up")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusInProgress, ticket.Status)

	ticket, err = fx.service.UpdateStatus(context.Background(), staff, id, domain.TicketStatusResolved, "fixed")
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusResolved, ticket.Status)

	history, err := fx.history.ListByTicket(context.Background(), id)
	require.NoError(t, err)
	assert.Len(t, history, 2)
}

func TestCloseTicketAsUserOnlyFromUserClosableStates(t *testing.T) {
	fx := newTicketServiceFixture()
	input := TicketCreateInput{DepartmentID: "dept-it", Title: "t", Description: "d"}
	ticket, err := fx.service.CreateTicket(context.Background(), "user-1", input)
	require.NoError(t, err)

	_, err = fx.service.CloseTicketAsUser(context.Background(), "user-1", ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)

	_, err = fx.service.UpdateStatus(context.Background(), adminStaff(), ticket.ID, domain.TicketStatusInProgress, "")
	require.NoError(t, err)
	_, err = fx.service.UpdateStatus(context.Background(), adminStaff(), ticket.ID, domain.TicketStatusResolved, "")
	require.NoError(t, err)

	_, err = fx.service.CloseTicketAsUser(context.Background(), "someone-else", ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	closed, err := fx.service.CloseTicketAsUser(context.Background(), "user-1", ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, closed.Status)
	require.NotNil(t, closed.ClosedAt)
}

func TestMergeTicketsMovesThreadAndClosesSource(t *testing.T) {
	fx := newTicketServiceFixture()
	staff := adminStaff()
	ctx := context.Background()

	target, err := fx.service.CreatePublicTicket(ctx, PublicTicketInput{ContactEmail: "a@x.com", Description: "first report"})
	require.NoError(t, err)
	source, err := fx.service.CreatePublicTicket(ctx, PublicTicketInput{ContactEmail: "b@x.com", Description: "duplicate report"})
	require.NoError(t, err)

	require.NoError(t, fx.messages.Create(ctx, &domain.TicketMessage{
		TicketID:    source.Ticket.ID,
		AuthorType:  domain.AuthorTypeUser,
		MessageType: domain.MessageTypePublicReply,
		Body:        "still broken",
	}))

	merged, err := fx.service.MergeTickets(ctx, staff, target.Ticket.ID, source.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, target.Ticket.ID, merged.ID)

	// source is closed and points at the target
	sourceAfter, err := fx.tickets.GetByID(ctx, source.Ticket.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.TicketStatusClosed, sourceAfter.Status)
	require.NotNil(t, sourceAfter.MergedIntoID)
	assert.Equal(t, target.Ticket.ID, *sourceAfter.MergedIntoID)

	// thread moved, plus the system note
	msgs, err := fx.messages.ListByTicket(ctx, target.Ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 2)
	bodies := []string{msgs[0].Body, msgs[1].Body}
	assert.Contains(t, bodies, "still broken")
	assert.Contains(t, strings.Join(bodies, "\n"), source.Ticket.ExternalKey)

	// history on both sides
	targetHistory, _ := fx.history.ListByTicket(ctx, target.Ticket.ID)
	sourceHistory, _ := fx.history.ListByTicket(ctx, source.Ticket.ID)
	assert.Len(t, targetHistory, 1)
	assert.Len(t, sourceHistory, 1)

	assert.Len(t, fx.dispatcher.byType(events.EventTicketMerged), 1)
}

func TestMergeTicketsRejectsSelfMerge(t *testing.T) {
	fx := newTicketServiceFixture()
	result, err := fx.service.CreatePublicTicket(context.Background(), PublicTicketInput{ContactEmail: "a@x.com", Description: "d"})
	require.NoError(t, err)

	_, err = fx.service.MergeTickets(context.Background(), adminStaff(), result.Ticket.ID, result.Ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}

func TestMergeTicketsRejectsAlreadyMergedSource(t *testing.T) {
	fx := newTicketServiceFixture()
	ctx := context.Background()
	a, _ := fx.service.CreatePublicTicket(ctx, PublicTicketInput{ContactEmail: "a@x.com", Description: "a"})
	b, _ := fx.service.CreatePublicTicket(ctx, PublicTicketInput{ContactEmail: "b@x.com", Description: "b"})
	c, _ := fx.service.CreatePublicTicket(ctx, PublicTicketInput{ContactEmail: "c@x.com", Description: "c"})

	_, err := fx.service.MergeTickets(ctx, adminStaff(), a.Ticket.ID, b.Ticket.ID)
	require.NoError(t, err)

	_, err = fx.service.MergeTickets(ctx, adminStaff(), c.Ticket.ID, b.Ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "CONFLICT", apperrors.ToDomainError(err).Code)
}

func TestStaffScopeByDepartment(t *testing.T) {
	fx := newTicketServiceFixture()
	ctx := context.Background()

	itTicket, err := fx.service.CreatePublicTicket(ctx, PublicTicketInput{
		ContactEmail: "a@x.com", Description: "a",
		Department: CatalogFieldInput{ID: strPtr("dept-it")},
	})
	require.NoError(t, err)
	freeTextTicket, err := fx.service.CreatePublicTicket(ctx, PublicTicketInput{
		ContactEmail: "b@x.com", Description: "b",
		Department: CatalogFieldInput{Text: "Zarquon"},
	})
	require.NoError(t, err)

	billingAgent := agentInDept("dept-bill")
	_, _, err = fx.service.GetTicketForStaff(ctx, billingAgent, itTicket.Ticket.ID)
	require.Error(t, err)
	assert.Equal(t, "FORBIDDEN", apperrors.ToDomainError(err).Code)

	// unscoped free-text tickets stay visible to every agent
	_, _, err = fx.service.GetTicketForStaff(ctx, billingAgent, freeTextTicket.Ticket.ID)
	assert.NoError(t, err)

	_, _, err = fx.service.GetTicketForStaff(ctx, adminStaff(), itTicket.Ticket.ID)
	assert.NoError(t, err)
}

func TestUserCannotSeeInternalNotes(t *testing.T) {
	fx := newTicketServiceFixture()
	ctx := context.Background()
	ticket, err := fx.service.CreateTicket(ctx, "user-1", TicketCreateInput{
		DepartmentID: "dept-it", Title: "t", Description: "d",
	})
	require.NoError(t, err)

	staff := adminStaff()
	_, err = fx.service.AddMessage(ctx, domain.SubjectTypeStaff, staff.ID, staff, ticket.ID, domain.MessageTypeInternalNote, "secret")
	require.NoError(t, err)
	_, err = fx.service.AddMessage(ctx, domain.SubjectTypeStaff, staff.ID, staff, ticket.ID, domain.MessageTypePublicReply, "hello")
	require.NoError(t, err)

	_, msgs, err := fx.service.GetTicketForUser(ctx, "user-1", ticket.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "hello", msgs[0].Body)
}

func TestUserMessageTypeRestrictedToPublicReply(t *testing.T) {
	fx := newTicketServiceFixture()
	ctx := context.Background()
	ticket, err := fx.service.CreateTicket(ctx, "user-1", TicketCreateInput{
		DepartmentID: "dept-it", Title: "t", Description: "d",
	})
	require.NoError(t, err)

	_, err = fx.service.AddMessage(ctx, domain.SubjectTypeUser, "user-1", nil, ticket.ID, domain.MessageTypeInternalNote, "sneaky")
	require.Error(t, err)
	assert.Equal(t, "VALIDATION_FAILED", apperrors.ToDomainError(err).Code)
}
