package events

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated       EventType = "ticket_created"
	EventTicketStatusChanged EventType = "ticket_status_changed"
	EventTicketAssigned      EventType = "ticket_assigned"
	EventTicketMerged        EventType = "ticket_merged"
	EventTicketMessageAdded  EventType = "ticket_message_added"
	EventIntakeCompleted     EventType = "intake_completed"
)

// Actor encapsulates actor metadata for an event. Anonymous requesters
// (public submissions, intake chatbot) carry no id at all.
type Actor struct {
	Type    domain.SubjectType `json:"type"`
	UserID  *string            `json:"user_id,omitempty"`
	StaffID *string            `json:"staff_id,omitempty"`
}

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	TicketID  string      `json:"ticket_id"`
	Actor     Actor       `json:"actor"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// TicketCreatedPayload payload.
type TicketCreatedPayload struct {
	DepartmentID   *string             `json:"department_id,omitempty"`
	DepartmentText string              `json:"department_text,omitempty"`
	PriorityID     *string             `json:"priority_id,omitempty"`
	Source         domain.TicketSource `json:"source"`
	Title          string              `json:"title"`
}

// TicketStatusChangedPayload payload.
type TicketStatusChangedPayload struct {
	OldStatus domain.TicketStatus `json:"old_status"`
	NewStatus domain.TicketStatus `json:"new_status"`
	Comment   string              `json:"comment,omitempty"`
}

// TicketAssignedPayload payload.
type TicketAssignedPayload struct {
	AssigneeStaffID *string `json:"assignee_staff_id,omitempty"`
}

// TicketMergedPayload payload.
type TicketMergedPayload struct {
	SourceTicketID string `json:"source_ticket_id"`
	TargetTicketID string `json:"target_ticket_id"`
}

// TicketMessageAddedPayload payload.
type TicketMessageAddedPayload struct {
	MessageID   string                   `json:"message_id"`
	MessageType domain.TicketMessageType `json:"message_type"`
	AuthorType  domain.MessageAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	BodyPreview string                   `json:"body_preview"`
}

// IntakeCompletedPayload payload.
type IntakeCompletedPayload struct {
	SessionID    string `json:"session_id"`
	ContactEmail string `json:"contact_email"`
	Succeeded    bool   `json:"succeeded"`
}
