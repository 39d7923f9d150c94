package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen        TicketStatus = "OPEN"
	TicketStatusInProgress  TicketStatus = "IN_PROGRESS"
	TicketStatusPendingUser TicketStatus = "PENDING_USER"
	TicketStatusResolved    TicketStatus = "RESOLVED"
	TicketStatusClosed      TicketStatus = "CLOSED"
	TicketStatusCancelled   TicketStatus = "CANCELLED"
)

// TicketSource records which channel created a ticket.
type TicketSource string

const (
	TicketSourceWeb     TicketSource = "WEB"
	TicketSourceChatbot TicketSource = "CHATBOT"
)

// Ticket is the aggregate for support requests.
//
// Department, category and priority are catalog-backed fields: each holds
// either a resolved catalog id or the free-text the requester typed when
// no catalog entry matched, never both.
type Ticket struct {
	ID             string
	ExternalKey    string
	RequesterID    *string
	ContactEmail   string
	DepartmentID   *string
	DepartmentText string
	CategoryID     *string
	CategoryText   string
	PriorityID     *string
	PriorityText   string
	AssigneeID     *string
	Title          string
	Description    string
	Status         TicketStatus
	Source         TicketSource
	MergedIntoID   *string
	Tags           []string
	CreatedAt      time.Time
	UpdatedAt      time.Time
	ClosedAt       *time.Time
}
