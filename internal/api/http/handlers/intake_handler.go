package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/intake"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// IntakeHandler serves the guided ticket intake conversation.
type IntakeHandler struct {
	sessions *intake.SessionManager
}

// NewIntakeHandler constructs handler.
func NewIntakeHandler(sessions *intake.SessionManager) *IntakeHandler {
	return &IntakeHandler{sessions: sessions}
}

// StartSession POST /intake/sessions.
func (h *IntakeHandler) StartSession(c *fiber.Ctx) error {
	id, turns, err := h.sessions.StartSession(c.Context())
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.IntakeSessionResponse{
		SessionID: id,
		Phase:     string(intake.PhaseAsking),
		Turns:     dto.IntakeTurns(turns),
	}})
}

// SubmitAnswer POST /intake/sessions/:id/answers.
func (h *IntakeHandler) SubmitAnswer(c *fiber.Ctx) error {
	conv, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return mapIntakeError(err)
	}
	var req dto.IntakeAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	turns, err := conv.SubmitAnswer(req.Text)
	if err != nil {
		return mapIntakeError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IntakeSessionResponse{
		SessionID: conv.ID(),
		Phase:     string(conv.Phase()),
		Turns:     dto.IntakeTurns(turns),
		Result:    dto.IntakeResult(conv.Result()),
	}})
}

// SelectSuggestion POST /intake/sessions/:id/suggestions.
func (h *IntakeHandler) SelectSuggestion(c *fiber.Ctx) error {
	conv, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return mapIntakeError(err)
	}
	var req dto.IntakeAnswerRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if strings.TrimSpace(req.Text) == "" {
		return apperrors.NewValidationError("text required", nil)
	}
	turns, err := conv.SelectSuggestion(req.Text)
	if err != nil {
		return mapIntakeError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IntakeSessionResponse{
		SessionID: conv.ID(),
		Phase:     string(conv.Phase()),
		Turns:     dto.IntakeTurns(turns),
		Result:    dto.IntakeResult(conv.Result()),
	}})
}

// GetSession GET /intake/sessions/:id. Returns the full transcript so a
// reconnecting client can repaint, plus the submission result if any.
func (h *IntakeHandler) GetSession(c *fiber.Ctx) error {
	conv, err := h.sessions.Get(c.Params("id"))
	if err != nil {
		return mapIntakeError(err)
	}
	return c.JSON(fiber.Map{"data": dto.IntakeSessionResponse{
		SessionID: conv.ID(),
		Phase:     string(conv.Phase()),
		Turns:     dto.IntakeTurns(conv.Transcript()),
		Result:    dto.IntakeResult(conv.Result()),
	}})
}

// CloseSession DELETE /intake/sessions/:id.
func (h *IntakeHandler) CloseSession(c *fiber.Ctx) error {
	h.sessions.CloseSession(c.Params("id"))
	return c.SendStatus(fiber.StatusNoContent)
}

func mapIntakeError(err error) error {
	switch {
	case errors.Is(err, intake.ErrSessionNotFound):
		return apperrors.NewNotFound("intake session", nil)
	case errors.Is(err, intake.ErrSessionClosed):
		return apperrors.NewConflict("intake session closed", nil)
	case errors.Is(err, intake.ErrSubmissionInFlight):
		return apperrors.NewConflict("ticket submission already in progress", nil)
	case errors.Is(err, intake.ErrConversationOver):
		return apperrors.NewConflict("conversation already finished", nil)
	default:
		return apperrors.MapError(err)
	}
}
