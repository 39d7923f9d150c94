package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/intake"
)

// IntakeAnswerRequest payload for a typed answer or tapped suggestion.
type IntakeAnswerRequest struct {
	Text string `json:"text"`
}

// IntakeTurnResponse is one transcript entry.
type IntakeTurnResponse struct {
	ID          string    `json:"id"`
	Speaker     string    `json:"speaker"`
	Text        string    `json:"text"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// IntakeSessionResponse is the session view returned by every intake
// endpoint: current phase, new or full transcript, and the ticket result
// once a submission finished.
type IntakeSessionResponse struct {
	SessionID string                `json:"session_id"`
	Phase     string                `json:"phase"`
	Turns     []IntakeTurnResponse  `json:"turns"`
	Result    *IntakeResultResponse `json:"result,omitempty"`
}

// IntakeResultResponse reports the created ticket.
type IntakeResultResponse struct {
	TicketID        string `json:"ticket_id"`
	ExternalKey     string `json:"external_key"`
	DepartmentLabel string `json:"department_label,omitempty"`
	PriorityLabel   string `json:"priority_label,omitempty"`
}

// IntakeTurns maps engine turns into transport shape.
func IntakeTurns(turns []intake.Turn) []IntakeTurnResponse {
	out := make([]IntakeTurnResponse, 0, len(turns))
	for _, t := range turns {
		out = append(out, IntakeTurnResponse{
			ID:          t.ID,
			Speaker:     string(t.Speaker),
			Text:        t.Text,
			Suggestions: t.Suggestions,
			CreatedAt:   t.CreatedAt,
		})
	}
	return out
}

// IntakeResult maps a submission result, tolerating nil.
func IntakeResult(result *intake.SubmissionResult) *IntakeResultResponse {
	if result == nil {
		return nil
	}
	return &IntakeResultResponse{
		TicketID:        result.TicketID,
		ExternalKey:     result.ExternalKey,
		DepartmentLabel: result.DepartmentLabel,
		PriorityLabel:   result.PriorityLabel,
	}
}
