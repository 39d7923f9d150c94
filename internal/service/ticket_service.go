package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/repository"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// TicketService coordinates ticket workflows.
type TicketService struct {
	tickets     repository.TicketRepository
	messages    repository.TicketMessageRepository
	departments repository.DepartmentRepository
	categories  repository.CategoryRepository
	priorities  repository.PriorityRepository
	history     repository.TicketHistoryRepository
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles repositories for ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	MessageRepo    repository.TicketMessageRepository
	DepartmentRepo repository.DepartmentRepository
	CategoryRepo   repository.CategoryRepository
	PriorityRepo   repository.PriorityRepository
	HistoryRepo    repository.TicketHistoryRepository
	Dispatcher     events.Dispatcher
}

// CatalogFieldInput carries either a resolved catalog id or the free-text
// the requester typed when nothing matched. At most one is set.
type CatalogFieldInput struct {
	ID   *string
	Text string
}

// TicketCreateInput describes authenticated ticket creation.
type TicketCreateInput struct {
	DepartmentID string
	CategoryID   *string
	PriorityID   *string
	Title        string
	Description  string
	Tags         []string
}

// PublicTicketInput describes anonymous (public or chatbot) ticket creation.
type PublicTicketInput struct {
	ContactEmail string
	Title        string
	Description  string
	Department   CatalogFieldInput
	Category     CatalogFieldInput
	Priority     CatalogFieldInput
	Source       domain.TicketSource
	Tags         []string
}

// PublicTicketResult reports the created ticket plus the display labels the
// caller should echo back (catalog name when resolved, otherwise the
// requester's own text).
type PublicTicketResult struct {
	Ticket          *domain.Ticket
	DepartmentLabel string
	PriorityLabel   string
}

// TicketUserFilter describes end-user listing filters.
type TicketUserFilter struct {
	Statuses    []domain.TicketStatus
	PriorityID  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// TicketStaffFilter describes staff listing filters.
type TicketStaffFilter struct {
	DepartmentID *string
	CategoryID   *string
	PriorityID   *string
	AssigneeID   *string
	Statuses     []domain.TicketStatus
	Source       *domain.TicketSource
	SearchTerm   *string
	CreatedFrom  *time.Time
	CreatedTo    *time.Time
	UpdatedFrom  *time.Time
	UpdatedTo    *time.Time
	Limit        int
	Offset       int
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		messages:    deps.MessageRepo,
		departments: deps.DepartmentRepo,
		categories:  deps.CategoryRepo,
		priorities:  deps.PriorityRepo,
		history:     deps.HistoryRepo,
		dispatcher:  deps.Dispatcher,
	}
}

// CreateTicket creates a ticket for an authenticated user.
func (s *TicketService) CreateTicket(ctx context.Context, userID string, input TicketCreateInput) (*domain.Ticket, error) {
	dept, err := s.departments.GetByID(ctx, input.DepartmentID)
	if err != nil {
		return nil, err
	}
	if !dept.IsActive {
		return nil, apperrors.NewConflict("department inactive", nil)
	}
	if input.CategoryID != nil {
		if _, err := s.categories.GetByID(ctx, *input.CategoryID); err != nil {
			return nil, err
		}
	}
	if input.PriorityID != nil {
		if _, err := s.priorities.GetByID(ctx, *input.PriorityID); err != nil {
			return nil, err
		}
	}

	ticket := &domain.Ticket{
		ExternalKey:  generateTicketKey(),
		RequesterID:  &userID,
		DepartmentID: &dept.ID,
		CategoryID:   input.CategoryID,
		PriorityID:   input.PriorityID,
		Title:        strings.TrimSpace(input.Title),
		Description:  strings.TrimSpace(input.Description),
		Status:       domain.TicketStatusOpen,
		Source:       domain.TicketSourceWeb,
		Tags:         input.Tags,
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload: events.TicketCreatedPayload{
			DepartmentID: ticket.DepartmentID,
			PriorityID:   ticket.PriorityID,
			Source:       ticket.Source,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// CreatePublicTicket creates a ticket without an authenticated requester.
// Unresolved catalog fields are accepted as free-text hints rather than
// rejected; a description-only ticket is valid.
func (s *TicketService) CreatePublicTicket(ctx context.Context, input PublicTicketInput) (*PublicTicketResult, error) {
	if strings.TrimSpace(input.ContactEmail) == "" {
		return nil, apperrors.NewValidationError("contact email required", nil)
	}
	if strings.TrimSpace(input.Description) == "" {
		return nil, apperrors.NewValidationError("description required", nil)
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = titleFromDescription(input.Description)
	}

	source := input.Source
	if source == "" {
		source = domain.TicketSourceWeb
	}

	ticket := &domain.Ticket{
		ExternalKey:    generateTicketKey(),
		ContactEmail:   strings.TrimSpace(input.ContactEmail),
		DepartmentID:   input.Department.ID,
		DepartmentText: input.Department.Text,
		CategoryID:     input.Category.ID,
		CategoryText:   input.Category.Text,
		PriorityID:     input.Priority.ID,
		PriorityText:   input.Priority.Text,
		Title:          title,
		Description:    input.Description,
		Status:         domain.TicketStatusOpen,
		Source:         source,
		Tags:           input.Tags,
	}

	result := &PublicTicketResult{
		Ticket:          ticket,
		DepartmentLabel: input.Department.Text,
		PriorityLabel:   input.Priority.Text,
	}

	if input.Department.ID != nil {
		dept, err := s.departments.GetByID(ctx, *input.Department.ID)
		if err != nil {
			return nil, err
		}
		ticket.DepartmentText = ""
		result.DepartmentLabel = dept.Name
	}
	if input.Category.ID != nil {
		if _, err := s.categories.GetByID(ctx, *input.Category.ID); err != nil {
			return nil, err
		}
		ticket.CategoryText = ""
	}
	if input.Priority.ID != nil {
		pri, err := s.priorities.GetByID(ctx, *input.Priority.ID)
		if err != nil {
			return nil, err
		}
		ticket.PriorityText = ""
		result.PriorityLabel = pri.Name
	}

	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Actor:    events.Actor{Type: domain.SubjectTypeUser},
		Payload: events.TicketCreatedPayload{
			DepartmentID:   ticket.DepartmentID,
			DepartmentText: ticket.DepartmentText,
			PriorityID:     ticket.PriorityID,
			Source:         ticket.Source,
			Title:          ticket.Title,
		},
	})
	return result, nil
}

// GetPublicTicketStatus looks a ticket up by its external key for an
// anonymous requester. The contact email acts as a shared secret; a
// mismatch is indistinguishable from a missing ticket.
func (s *TicketService) GetPublicTicketStatus(ctx context.Context, externalKey, contactEmail string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByExternalKey(ctx, strings.TrimSpace(externalKey))
	if err != nil {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	if !strings.EqualFold(strings.TrimSpace(contactEmail), ticket.ContactEmail) {
		return nil, apperrors.NewNotFound("ticket", nil)
	}
	return ticket, nil
}

// ListUserTickets returns paginated tickets for a requester.
func (s *TicketService) ListUserTickets(ctx context.Context, userID string, filter TicketUserFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		RequesterID: &userID,
		Statuses:    filter.Statuses,
		PriorityID:  filter.PriorityID,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForUser fetches a ticket ensuring ownership.
func (s *TicketService) GetTicketForUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket.RequesterID == nil || *ticket.RequesterID != userID {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.visibleMessagesForUser(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// ListStaffTickets returns tickets accessible to staff.
func (s *TicketService) ListStaffTickets(ctx context.Context, staff *domain.StaffMember, filter TicketStaffFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		DepartmentID: filter.DepartmentID,
		CategoryID:   filter.CategoryID,
		PriorityID:   filter.PriorityID,
		AssigneeID:   filter.AssigneeID,
		Statuses:     filter.Statuses,
		Source:       filter.Source,
		SearchTerm:   filter.SearchTerm,
		CreatedFrom:  filter.CreatedFrom,
		CreatedTo:    filter.CreatedTo,
		UpdatedFrom:  filter.UpdatedFrom,
		UpdatedTo:    filter.UpdatedTo,
		Limit:        filter.Limit,
		Offset:       filter.Offset,
	}
	s.applyStaffScope(&repoFilter, staff)
	return s.tickets.ListWithFilter(ctx, repoFilter)
}

// GetTicketForStaff fetches ticket ensuring staff access.
func (s *TicketService) GetTicketForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) (*domain.Ticket, []domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if !s.staffCanAccessTicket(staff, ticket) {
		return nil, nil, apperrors.NewForbidden("access denied")
	}
	msgs, err := s.messages.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, nil, err
	}
	return ticket, msgs, nil
}

// AddMessage appends a message to a ticket.
func (s *TicketService) AddMessage(ctx context.Context, actor domain.SubjectType, actorID string, staff *domain.StaffMember, ticketID string, messageType domain.TicketMessageType, body string) (*domain.TicketMessage, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	switch actor {
	case domain.SubjectTypeUser:
		if ticket.RequesterID == nil || *ticket.RequesterID != actorID {
			return nil, apperrors.NewForbidden("access denied")
		}
		if messageType != domain.MessageTypePublicReply {
			return nil, apperrors.NewValidationError("users can only post public replies", nil)
		}
	case domain.SubjectTypeStaff:
		if staff == nil {
			return nil, apperrors.NewUnauthorized("staff context required")
		}
		if !s.staffCanAccessTicket(staff, ticket) {
			return nil, apperrors.NewForbidden("access denied")
		}
		if messageType != domain.MessageTypePublicReply && messageType != domain.MessageTypeInternalNote {
			return nil, apperrors.NewValidationError("invalid message type for staff", nil)
		}
	default:
		return nil, apperrors.NewValidationError("unknown actor", nil)
	}

	msg := &domain.TicketMessage{
		TicketID:    ticket.ID,
		MessageType: messageType,
		Body:        strings.TrimSpace(body),
	}
	if actor == domain.SubjectTypeUser {
		msg.AuthorType = domain.AuthorTypeUser
		authorID := actorID
		msg.AuthorID = &authorID
	} else {
		msg.AuthorType = domain.AuthorTypeStaff
		if staff != nil {
			msg.AuthorID = &staff.ID
		}
	}

	if err := s.messages.Create(ctx, msg); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMessageAdded,
		TicketID: ticket.ID,
		Actor:    actorFromSubject(actor, actorID),
		Payload: events.TicketMessageAddedPayload{
			MessageID:   msg.ID,
			MessageType: msg.MessageType,
			AuthorType:  msg.AuthorType,
			AuthorID:    msg.AuthorID,
			BodyPreview: stringPreview(msg.Body, 120),
		},
	})
	return msg, nil
}

// CloseTicketAsUser closes ticket when allowed states.
func (s *TicketService) CloseTicketAsUser(ctx context.Context, userID, ticketID string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID == nil || *ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	if ticket.Status != domain.TicketStatusResolved && ticket.Status != domain.TicketStatusPendingUser {
		return nil, apperrors.NewConflict("ticket cannot be closed in current status", nil)
	}
	now := time.Now()
	oldStatus := ticket.Status
	ticket.Status = domain.TicketStatusClosed
	ticket.ClosedAt = &now
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordStatusChange(ctx, domain.AuthorTypeUser, &userID, ticket.ID, oldStatus, ticket.Status, "user_closed"); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    userActor(userID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: ticket.Status,
			Comment:   "user_closed",
		},
	})
	return ticket, nil
}

// UpdateStatus updates ticket status by staff.
func (s *TicketService) UpdateStatus(ctx context.Context, staff *domain.StaffMember, ticketID string, newStatus domain.TicketStatus, comment string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if !isValidTransition(ticket.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": ticket.Status,
			"to":   newStatus,
		})
	}
	oldStatus := ticket.Status
	if newStatus == domain.TicketStatusClosed {
		now := time.Now()
		ticket.ClosedAt = &now
	} else if ticket.ClosedAt != nil {
		ticket.ClosedAt = nil
	}
	ticket.Status = newStatus
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if err := s.recordStatusChange(ctx, domain.AuthorTypeStaff, &staff.ID, ticket.ID, oldStatus, newStatus, comment); err != nil {
		return nil, err
	}
	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketStatusChanged,
		TicketID: ticket.ID,
		Actor:    staffActor(staff.ID),
		Payload: events.TicketStatusChangedPayload{
			OldStatus: oldStatus,
			NewStatus: newStatus,
			Comment:   comment,
		},
	})
	return ticket, nil
}

// UpdatePriority reassigns ticket priority to a catalog entry.
func (s *TicketService) UpdatePriority(ctx context.Context, staff *domain.StaffMember, ticketID, priorityID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	pri, err := s.priorities.GetByID(ctx, priorityID)
	if err != nil {
		return nil, err
	}
	oldPriority := ticket.PriorityID
	oldText := ticket.PriorityText
	ticket.PriorityID = &pri.ID
	ticket.PriorityText = ""
	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, err
	}
	if s.history != nil {
		entry := &domain.TicketHistory{
			TicketID:      ticket.ID,
			ChangedByType: domain.AuthorTypeStaff,
			ChangedByID:   &staff.ID,
			ChangeType:    domain.ChangeTypePriority,
			OldValue:      map[string]any{"priority_id": oldPriority, "priority_text": oldText},
			NewValue:      map[string]any{"priority_id": pri.ID},
		}
		if err := s.history.Create(ctx, entry); err != nil {
			return nil, err
		}
	}
	return ticket, nil
}

// MergeTickets folds the source ticket into the target: the source thread
// moves to the target, the source closes with a reference to the target.
func (s *TicketService) MergeTickets(ctx context.Context, staff *domain.StaffMember, targetID, sourceID string) (*domain.Ticket, error) {
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	if targetID == sourceID {
		return nil, apperrors.NewValidationError("cannot merge a ticket into itself", nil)
	}
	target, err := s.tickets.GetByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	source, err := s.tickets.GetByID(ctx, sourceID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccessTicket(staff, target) || !s.staffCanAccessTicket(staff, source) {
		return nil, apperrors.NewForbidden("access denied")
	}
	if source.MergedIntoID != nil {
		return nil, apperrors.NewConflict("source ticket already merged", nil)
	}
	if source.Status == domain.TicketStatusClosed || source.Status == domain.TicketStatusCancelled {
		return nil, apperrors.NewConflict("source ticket already finished", nil)
	}

	if err := s.messages.ReassignTicket(ctx, source.ID, target.ID); err != nil {
		return nil, err
	}

	note := &domain.TicketMessage{
		TicketID:    target.ID,
		AuthorType:  domain.AuthorTypeSystem,
		MessageType: domain.MessageTypeSystemEvent,
		Body:        "merged ticket " + source.ExternalKey + " into this ticket",
	}
	if err := s.messages.Create(ctx, note); err != nil {
		return nil, err
	}

	now := time.Now()
	source.Status = domain.TicketStatusClosed
	source.ClosedAt = &now
	source.MergedIntoID = &target.ID
	if err := s.tickets.Update(ctx, source); err != nil {
		return nil, err
	}

	if s.history != nil {
		for _, entry := range []*domain.TicketHistory{
			{
				TicketID:      source.ID,
				ChangedByType: domain.AuthorTypeStaff,
				ChangedByID:   &staff.ID,
				ChangeType:    domain.ChangeTypeMerge,
				NewValue:      map[string]any{"merged_into": target.ID},
			},
			{
				TicketID:      target.ID,
				ChangedByType: domain.AuthorTypeStaff,
				ChangedByID:   &staff.ID,
				ChangeType:    domain.ChangeTypeMerge,
				NewValue:      map[string]any{"merged_from": source.ID},
			},
		} {
			if err := s.history.Create(ctx, entry); err != nil {
				return nil, err
			}
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:     events.EventTicketMerged,
		TicketID: target.ID,
		Actor:    staffActor(staff.ID),
		Payload: events.TicketMergedPayload{
			SourceTicketID: source.ID,
			TargetTicketID: target.ID,
		},
	})
	return target, nil
}

// ListHistoryForStaff returns history entries for staff.
func (s *TicketService) ListHistoryForStaff(ctx context.Context, staff *domain.StaffMember, ticketID string) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	if staff == nil {
		return nil, apperrors.NewUnauthorized("staff required")
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if !s.staffCanAccessTicket(staff, ticket) {
		return nil, apperrors.NewForbidden("access denied")
	}
	return s.history.ListByTicket(ctx, ticketID)
}

// ListHistoryForUser returns user-safe history entries.
func (s *TicketService) ListHistoryForUser(ctx context.Context, userID, ticketID string) ([]domain.TicketHistory, error) {
	if s.history == nil {
		return []domain.TicketHistory{}, nil
	}
	ticket, err := s.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket.RequesterID == nil || *ticket.RequesterID != userID {
		return nil, apperrors.NewForbidden("access denied")
	}
	history, err := s.history.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	allowed := []domain.TicketHistory{}
	for _, entry := range history {
		if entry.ChangeType == domain.ChangeTypeStatus || entry.ChangeType == domain.ChangeTypeAssignee || entry.ChangeType == domain.ChangeTypeMerge {
			allowed = append(allowed, entry)
		}
	}
	return allowed, nil
}

func (s *TicketService) applyStaffScope(filter *repository.TicketFilter, staff *domain.StaffMember) {
	if staff == nil || staff.Role == domain.StaffRoleAdmin {
		return
	}
	if staff.DepartmentID != nil {
		filter.DepartmentID = staff.DepartmentID
	}
}

func (s *TicketService) staffCanAccessTicket(staff *domain.StaffMember, ticket *domain.Ticket) bool {
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
	// tickets with only a free-text department hint belong to no scope yet
	return ticket.DepartmentID == nil
}

func (s *TicketService) visibleMessagesForUser(ctx context.Context, ticketID string) ([]domain.TicketMessage, error) {
	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	filtered := make([]domain.TicketMessage, 0, len(msgs))
	for _, msg := range msgs {
		if msg.MessageType == domain.MessageTypeInternalNote {
			continue
		}
		filtered = append(filtered, msg)
	}
	return filtered, nil
}

func generateTicketKey() string {
	return "TCK-" + strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

func titleFromDescription(description string) string {
	return stringPreview(description, 40)
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}

func userActor(userID string) events.Actor {
	return events.Actor{
		Type:   domain.SubjectTypeUser,
		UserID: &userID,
	}
}

func staffActor(staffID string) events.Actor {
	return events.Actor{
		Type:    domain.SubjectTypeStaff,
		StaffID: &staffID,
	}
}

func actorFromSubject(subject domain.SubjectType, id string) events.Actor {
	switch subject {
	case domain.SubjectTypeStaff:
		return staffActor(id)
	default:
		return userActor(id)
	}
}

func stringPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	if len(body) <= max {
		return body
	}
	if max <= 3 {
		return body[:max]
	}
	return body[:max-3] + "..."
}

var allowedTransitions = map[domain.TicketStatus][]domain.TicketStatus{
	domain.TicketStatusOpen:        {domain.TicketStatusInProgress, domain.TicketStatusCancelled},
	domain.TicketStatusInProgress:  {domain.TicketStatusPendingUser, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusPendingUser: {domain.TicketStatusInProgress, domain.TicketStatusResolved, domain.TicketStatusCancelled},
	domain.TicketStatusResolved:    {domain.TicketStatusClosed, domain.TicketStatusInProgress},
	domain.TicketStatusClosed:      {},
	domain.TicketStatusCancelled:   {},
}

func isValidTransition(current, next domain.TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

func (s *TicketService) recordStatusChange(ctx context.Context, actorType domain.MessageAuthorType, actorID *string, ticketID string, oldStatus, newStatus domain.TicketStatus, comment string) error {
	if s.history == nil {
		return nil
	}
	entry := &domain.TicketHistory{
		TicketID:      ticketID,
		ChangedByType: actorType,
		ChangedByID:   actorID,
		ChangeType:    domain.ChangeTypeStatus,
		OldValue: map[string]any{
			"status": oldStatus,
		},
		NewValue: map[string]any{
			"status":  newStatus,
			"comment": comment,
		},
	}
	return s.history.Create(ctx, entry)
}
