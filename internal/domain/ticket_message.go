package domain

import "time"

// MessageAuthorType indicates who authored a message.
type MessageAuthorType string

const (
	AuthorTypeUser   MessageAuthorType = "USER"
	AuthorTypeStaff  MessageAuthorType = "STAFF"
	AuthorTypeSystem MessageAuthorType = "SYSTEM"
)

// TicketMessageType differentiates between replies, notes and system events.
type TicketMessageType string

const (
	MessageTypePublicReply  TicketMessageType = "PUBLIC_REPLY"
	MessageTypeInternalNote TicketMessageType = "INTERNAL_NOTE"
	MessageTypeSystemEvent  TicketMessageType = "SYSTEM_EVENT"
)

// TicketMessage captures communications in a ticket thread.
type TicketMessage struct {
	ID          string
	TicketID    string
	AuthorType  MessageAuthorType
	AuthorID    *string
	MessageType TicketMessageType
	Body        string
	CreatedAt   time.Time
}
