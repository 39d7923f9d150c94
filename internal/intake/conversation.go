package intake

import (
	"context"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Speaker tags who authored a transcript turn.
type Speaker string

const (
	SpeakerUser Speaker = "user"
	SpeakerBot  Speaker = "bot"
)

// Turn is one immutable transcript entry. The transcript is append-only:
// turns are never edited or removed once added.
type Turn struct {
	ID          string    `json:"id"`
	Speaker     Speaker   `json:"speaker"`
	Text        string    `json:"text"`
	Suggestions []string  `json:"suggestions,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Phase is the conversation lifecycle state.
type Phase string

const (
	PhaseAsking     Phase = "ASKING"
	PhaseSubmitting Phase = "SUBMITTING"
	PhaseSucceeded  Phase = "SUCCEEDED"
	PhaseFailed     Phase = "FAILED"
)

// CatalogAnswer holds one catalog-backed answer: either a resolved
// reference to a catalog entry, or the raw free text when nothing
// matched. Never both.
type CatalogAnswer struct {
	Ref      *Option `json:"ref,omitempty"`
	FreeText string  `json:"free_text,omitempty"`
}

// Answered reports whether the slot was filled at all.
func (a CatalogAnswer) Answered() bool {
	return a.Ref != nil || a.FreeText != ""
}

// Label returns the human-readable value of the answer.
func (a CatalogAnswer) Label() string {
	if a.Ref != nil {
		return a.Ref.Name
	}
	return a.FreeText
}

// AnswerSet accumulates answers across steps. Earlier answers are never
// overwritten once their step completes.
type AnswerSet struct {
	Email       string        `json:"email"`
	Department  CatalogAnswer `json:"department"`
	Category    CatalogAnswer `json:"category"`
	Priority    CatalogAnswer `json:"priority"`
	Description string        `json:"description"`
}

const (
	msgWelcome         = "Hi! I can help you open a support ticket."
	msgCatalogDegraded = "Heads up: I couldn't load some suggestion lists, but you can still type your answers."
	msgEmptyInput      = "Please type an answer so we can continue."
	msgInvalidEmail    = "That doesn't look like a valid email address. Could you try again?"
	msgSubmitting      = "Thanks! I'm creating your ticket now."
	msgSubmitFallback  = "something went wrong while creating your ticket"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ConversationConfig bundles everything a conversation needs at birth.
type ConversationConfig struct {
	ID            string
	Steps         []StepDefinition
	Catalog       Catalog
	Submitter     TicketSubmitter
	SubmitTimeout time.Duration
	OnResult      func(succeeded bool, result *SubmissionResult)
	Logger        *zap.Logger
}

// Conversation is the guided intake state machine for one session. It
// walks a fixed step sequence, accumulates answers, and hands the
// completed set to the submitter exactly once. All exported methods are
// safe for concurrent use.
type Conversation struct {
	mu sync.Mutex

	id            string
	steps         []StepDefinition
	catalog       Catalog
	submitter     TicketSubmitter
	submitTimeout time.Duration
	onResult      func(succeeded bool, result *SubmissionResult)
	logger        *zap.Logger

	stepIdx    int
	phase      Phase
	closed     bool
	transcript []Turn
	answers    AnswerSet
	result     *SubmissionResult

	done chan struct{}
}

// NewConversation builds a conversation positioned before its first
// question. Call Start to produce the opening turns.
func NewConversation(cfg ConversationConfig) *Conversation {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	timeout := cfg.SubmitTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	steps := cfg.Steps
	if len(steps) == 0 {
		steps = DefaultSteps()
	}
	return &Conversation{
		id:            cfg.ID,
		steps:         steps,
		catalog:       cfg.Catalog,
		submitter:     cfg.Submitter,
		submitTimeout: timeout,
		onResult:      cfg.OnResult,
		logger:        logger,
		phase:         PhaseAsking,
		done:          make(chan struct{}),
	}
}

// ID returns the session identifier.
func (c *Conversation) ID() string { return c.id }

// Start emits the welcome turn, a one-time degradation notice when the
// catalogs failed to load, and the first question.
func (c *Conversation) Start() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.transcript) > 0 {
		return nil
	}
	appended := []Turn{c.appendBot(msgWelcome, nil)}
	if c.catalog.LoadErr != nil {
		appended = append(appended, c.appendBot(msgCatalogDegraded, nil))
	}
	appended = append(appended, c.promptCurrentStep())
	return appended
}

// SubmitAnswer feeds one user answer into the state machine and returns
// the turns appended as a result.
func (c *Conversation) SubmitAnswer(raw string) ([]Turn, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, ErrSessionClosed
	}
	switch c.phase {
	case PhaseSubmitting:
		return nil, ErrSubmissionInFlight
	case PhaseSucceeded, PhaseFailed:
		return nil, ErrConversationOver
	}

	if strings.TrimSpace(raw) == "" {
		return []Turn{c.appendBot(msgEmptyInput, nil)}, nil
	}

	appended := []Turn{c.appendUser(raw)}
	step := c.steps[c.stepIdx]

	switch step.Kind {
	case StepEmail:
		email := strings.TrimSpace(raw)
		if !emailPattern.MatchString(email) {
			appended = append(appended, c.appendBot(msgInvalidEmail, nil))
			return appended, nil
		}
		c.answers.Email = email
		appended = append(appended, c.advance(1)...)

	case StepCatalog:
		advance := 1
		answer := c.resolveCatalogAnswer(step.Field, raw)
		c.storeCatalogAnswer(step.Field, answer)
		if step.Field == FieldDepartment && answer.Ref == nil {
			// Unknown department: the category catalogs are keyed to
			// known departments, so that question is skipped.
			advance = 2
		}
		appended = append(appended, c.advance(advance)...)

	case StepFreeText:
		c.storeFreeText(step.Field, raw)
		appended = append(appended, c.advance(1)...)
	}

	return appended, nil
}

// SelectSuggestion treats a tapped suggestion chip exactly like a typed
// answer with the chip's text.
func (c *Conversation) SelectSuggestion(choice string) ([]Turn, error) {
	return c.SubmitAnswer(choice)
}

// Close marks the session abandoned. A submission already in flight
// keeps running, but its outcome is discarded.
func (c *Conversation) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// Phase returns the current lifecycle state.
func (c *Conversation) Phase() Phase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.phase
}

// Closed reports whether the session has been abandoned.
func (c *Conversation) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

// Transcript returns a copy of the transcript so far.
func (c *Conversation) Transcript() []Turn {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Turn, len(c.transcript))
	copy(out, c.transcript)
	return out
}

// Answers returns a snapshot of the accumulated answers.
func (c *Conversation) Answers() AnswerSet {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.answers
}

// Result returns the submission outcome, or nil before completion.
func (c *Conversation) Result() *SubmissionResult {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.result
}

// Done is closed once the submission goroutine finishes (either way).
func (c *Conversation) Done() <-chan struct{} {
	return c.done
}

// advance moves the step pointer forward by n and returns the next
// prompt, or kicks off submission when the sequence is exhausted.
// Caller must hold the lock.
func (c *Conversation) advance(n int) []Turn {
	next := c.stepIdx + n
	if next < len(c.steps) {
		c.stepIdx = next
		return []Turn{c.promptCurrentStep()}
	}
	return c.beginSubmission()
}

// beginSubmission flips the conversation into SUBMITTING and launches
// the one and only submit attempt. Caller must hold the lock.
func (c *Conversation) beginSubmission() []Turn {
	c.phase = PhaseSubmitting
	notice := c.appendBot(msgSubmitting, nil)
	answers := c.answers
	go c.runSubmission(answers)
	return []Turn{notice}
}

func (c *Conversation) runSubmission(answers AnswerSet) {
	ctx, cancel := context.WithTimeout(context.Background(), c.submitTimeout)
	defer cancel()

	result, err := c.submitter.Submit(ctx, answers)

	c.mu.Lock()
	if c.closed {
		// The user walked away; nothing to report to.
		c.mu.Unlock()
		c.logger.Debug("intake result discarded, session closed",
			zap.String("session_id", c.id))
		close(c.done)
		return
	}
	var succeeded bool
	if err != nil {
		c.phase = PhaseFailed
		c.appendBot("I couldn't create your ticket: "+submitErrorMessage(err)+". Please try again later.", nil)
		c.logger.Warn("intake submission failed",
			zap.String("session_id", c.id), zap.Error(err))
	} else {
		succeeded = true
		c.phase = PhaseSucceeded
		c.result = result
		c.appendBot("All done! Your ticket "+result.ExternalKey+" has been created. We'll follow up at "+answers.Email+".", nil)
		c.logger.Info("intake submission succeeded",
			zap.String("session_id", c.id),
			zap.String("ticket_key", result.ExternalKey))
	}
	hook := c.onResult
	res := c.result
	c.mu.Unlock()

	if hook != nil {
		hook(succeeded, res)
	}
	close(c.done)
}

func (c *Conversation) promptCurrentStep() Turn {
	step := c.steps[c.stepIdx]
	return c.appendBot(step.Prompt, step.suggestions(c.catalog))
}

func (c *Conversation) resolveCatalogAnswer(field Field, raw string) CatalogAnswer {
	var options []Option
	switch field {
	case FieldDepartment:
		options = c.catalog.Departments
	case FieldCategory:
		options = c.catalog.Categories
	case FieldPriority:
		options = c.catalog.Priorities
	}
	if opt, ok := Resolve(options, raw); ok {
		ref := opt
		return CatalogAnswer{Ref: &ref}
	}
	return CatalogAnswer{FreeText: raw}
}

func (c *Conversation) storeCatalogAnswer(field Field, answer CatalogAnswer) {
	switch field {
	case FieldDepartment:
		c.answers.Department = answer
	case FieldCategory:
		c.answers.Category = answer
	case FieldPriority:
		c.answers.Priority = answer
	}
}

func (c *Conversation) storeFreeText(field Field, raw string) {
	switch field {
	case FieldEmail:
		c.answers.Email = raw
	case FieldDescription:
		c.answers.Description = raw
	}
}

func (c *Conversation) appendBot(text string, suggestions []string) Turn {
	turn := Turn{
		ID:          uuid.NewString(),
		Speaker:     SpeakerBot,
		Text:        text,
		Suggestions: suggestions,
		CreatedAt:   time.Now().UTC(),
	}
	c.transcript = append(c.transcript, turn)
	return turn
}

func (c *Conversation) appendUser(text string) Turn {
	turn := Turn{
		ID:        uuid.NewString(),
		Speaker:   SpeakerUser,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
	c.transcript = append(c.transcript, turn)
	return turn
}
