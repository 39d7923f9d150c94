package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload for authenticated ticket creation.
type CreateTicketRequest struct {
	DepartmentID string   `json:"department_id"`
	CategoryID   *string  `json:"category_id,omitempty"`
	PriorityID   *string  `json:"priority_id,omitempty"`
	Title        string   `json:"title"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags,omitempty"`
}

// CatalogField carries either a resolved catalog id or free text.
type CatalogField struct {
	ID   *string `json:"id,omitempty"`
	Text string  `json:"text,omitempty"`
}

// PublicTicketRequest payload for unauthenticated submission.
type PublicTicketRequest struct {
	ContactEmail string       `json:"contact_email"`
	Title        string       `json:"title,omitempty"`
	Description  string       `json:"description"`
	Department   CatalogField `json:"department"`
	Category     CatalogField `json:"category"`
	Priority     CatalogField `json:"priority"`
	Tags         []string     `json:"tags,omitempty"`
}

// PublicTicketResponse echoes the created ticket back to an anonymous
// requester without exposing internal fields.
type PublicTicketResponse struct {
	ExternalKey     string    `json:"external_key"`
	Status          string    `json:"status"`
	DepartmentLabel string    `json:"department_label,omitempty"`
	PriorityLabel   string    `json:"priority_label,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// CreateMessageRequest payload for appending a thread message.
type CreateMessageRequest struct {
	Body        string `json:"body"`
	MessageType string `json:"message_type,omitempty"`
}

// UpdateStatusRequest payload for staff status changes.
type UpdateStatusRequest struct {
	Status  domain.TicketStatus `json:"status"`
	Comment string              `json:"comment,omitempty"`
}

// UpdatePriorityRequest payload for staff priority changes.
type UpdatePriorityRequest struct {
	PriorityID string `json:"priority_id"`
}

// AssignRequest payload for explicit assignment.
type AssignRequest struct {
	AssigneeStaffID string `json:"assignee_staff_id"`
}

// MergeRequest payload for folding one ticket into another.
type MergeRequest struct {
	SourceTicketID string `json:"source_ticket_id"`
}

// TicketSummary is the list-view projection of a ticket.
type TicketSummary struct {
	ID             string              `json:"id"`
	ExternalKey    string              `json:"external_key"`
	DepartmentID   *string             `json:"department_id,omitempty"`
	DepartmentText string              `json:"department_text,omitempty"`
	CategoryID     *string             `json:"category_id,omitempty"`
	CategoryText   string              `json:"category_text,omitempty"`
	PriorityID     *string             `json:"priority_id,omitempty"`
	PriorityText   string              `json:"priority_text,omitempty"`
	AssigneeID     *string             `json:"assignee_id,omitempty"`
	Title          string              `json:"title"`
	Status         domain.TicketStatus `json:"status"`
	Source         domain.TicketSource `json:"source"`
	Tags           []string            `json:"tags,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

// TicketDetailResponse is the full ticket view with thread and history.
type TicketDetailResponse struct {
	TicketSummary
	ContactEmail string                  `json:"contact_email,omitempty"`
	Description  string                  `json:"description"`
	MergedIntoID *string                 `json:"merged_into_id,omitempty"`
	ClosedAt     *time.Time              `json:"closed_at,omitempty"`
	Messages     []TicketMessageResponse `json:"messages"`
	History      []TicketHistoryResponse `json:"history,omitempty"`
}

// TicketMessageResponse is one thread entry.
type TicketMessageResponse struct {
	ID          string                   `json:"id"`
	MessageType domain.TicketMessageType `json:"message_type"`
	AuthorType  domain.MessageAuthorType `json:"author_type"`
	AuthorID    *string                  `json:"author_id,omitempty"`
	Body        string                   `json:"body"`
	CreatedAt   time.Time                `json:"created_at"`
}

// TicketHistoryResponse is one audit trail entry.
type TicketHistoryResponse struct {
	ID            string                   `json:"id"`
	ChangeType    domain.TicketChangeType  `json:"change_type"`
	ChangedByType domain.MessageAuthorType `json:"changed_by_type"`
	ChangedByID   *string                  `json:"changed_by_id,omitempty"`
	OldValue      map[string]any           `json:"old_value,omitempty"`
	NewValue      map[string]any           `json:"new_value,omitempty"`
	CreatedAt     time.Time                `json:"created_at"`
}
