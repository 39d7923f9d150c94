package intake

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

var (
	// ErrSessionClosed is returned for input against an abandoned session.
	ErrSessionClosed = errors.New("intake session closed")
	// ErrSubmissionInFlight is returned while the ticket create is pending.
	ErrSubmissionInFlight = errors.New("submission already in progress")
	// ErrConversationOver is returned for input after a terminal outcome.
	ErrConversationOver = errors.New("conversation already finished")
	// ErrSessionNotFound is returned for an unknown or expired session id.
	ErrSessionNotFound = errors.New("intake session not found")
)

// SubmissionResult reports the outcome of a successful ticket create.
type SubmissionResult struct {
	TicketID        string `json:"ticket_id"`
	ExternalKey     string `json:"external_key"`
	DepartmentLabel string `json:"department_label"`
	PriorityLabel   string `json:"priority_label"`
}

// TicketSubmitter turns a completed answer set into a ticket.
type TicketSubmitter interface {
	Submit(ctx context.Context, answers AnswerSet) (*SubmissionResult, error)
}

// ServiceSubmitter adapts the ticket service to the intake engine.
type ServiceSubmitter struct {
	tickets *service.TicketService
}

// NewServiceSubmitter wraps the ticket service.
func NewServiceSubmitter(tickets *service.TicketService) *ServiceSubmitter {
	return &ServiceSubmitter{tickets: tickets}
}

const titleMaxLen = 40

// Submit maps the answer set onto a public ticket create. The title is
// derived from the description; catalog answers carry either the
// resolved id or the requester's raw text.
func (s *ServiceSubmitter) Submit(ctx context.Context, answers AnswerSet) (*SubmissionResult, error) {
	input := service.PublicTicketInput{
		ContactEmail: answers.Email,
		Title:        previewTitle(answers.Description),
		Description:  answers.Description,
		Department:   catalogField(answers.Department),
		Category:     catalogField(answers.Category),
		Priority:     catalogField(answers.Priority),
		Source:       domain.TicketSourceChatbot,
	}
	created, err := s.tickets.CreatePublicTicket(ctx, input)
	if err != nil {
		return nil, err
	}
	result := &SubmissionResult{
		TicketID:        created.Ticket.ID,
		ExternalKey:     created.Ticket.ExternalKey,
		DepartmentLabel: created.DepartmentLabel,
		PriorityLabel:   created.PriorityLabel,
	}
	if result.ExternalKey == "" {
		result.ExternalKey = "TCK-" + strings.ToUpper(uuid.NewString()[:8])
	}
	return result, nil
}

func catalogField(answer CatalogAnswer) service.CatalogFieldInput {
	if answer.Ref != nil {
		id := answer.Ref.ID
		return service.CatalogFieldInput{ID: &id}
	}
	return service.CatalogFieldInput{Text: answer.FreeText}
}

func previewTitle(description string) string {
	description = strings.TrimSpace(description)
	if len(description) <= titleMaxLen {
		return description
	}
	return description[:titleMaxLen-3] + "..."
}

// submitErrorMessage extracts a user-presentable message from a
// submission error, hiding internal details.
func submitErrorMessage(err error) string {
	de := apperrors.ToDomainError(err)
	if de == nil || de.Message == "" {
		return msgSubmitFallback
	}
	return de.Message
}
