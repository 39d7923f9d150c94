package intake

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/events"
	"github.com/spec-kit/helpdesk-service/internal/observability"
)

// CatalogLoader supplies the option catalogs for a new session snapshot.
type CatalogLoader interface {
	LoadAll(ctx context.Context) ([]domain.Department, []domain.Category, []domain.Priority, error)
}

type session struct {
	conv       *Conversation
	lastActive time.Time
}

// SessionManagerDependencies bundles collaborators for the manager.
type SessionManagerDependencies struct {
	Catalogs      CatalogLoader
	Submitter     TicketSubmitter
	Dispatcher    events.Dispatcher
	Metrics       *observability.Metrics
	SubmitTimeout time.Duration
	SessionTTL    time.Duration
	Logger        *zap.Logger
}

// SessionManager owns the live intake conversations. Sessions are kept
// in memory, keyed by a random id, and reaped after the idle TTL.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]*session

	catalogs      CatalogLoader
	submitter     TicketSubmitter
	dispatcher    events.Dispatcher
	metrics       *observability.Metrics
	steps         []StepDefinition
	submitTimeout time.Duration
	ttl           time.Duration
	logger        *zap.Logger
}

// NewSessionManager constructs the manager.
func NewSessionManager(deps SessionManagerDependencies) *SessionManager {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	ttl := deps.SessionTTL
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionManager{
		sessions:      make(map[string]*session),
		catalogs:      deps.Catalogs,
		submitter:     deps.Submitter,
		dispatcher:    deps.Dispatcher,
		metrics:       deps.Metrics,
		steps:         DefaultSteps(),
		submitTimeout: deps.SubmitTimeout,
		ttl:           ttl,
		logger:        logger,
	}
}

// StartSession snapshots the catalogs, creates a conversation, and
// returns its id with the opening turns. A catalog fetch failure is not
// fatal: suggestions degrade to free text.
func (m *SessionManager) StartSession(ctx context.Context) (string, []Turn, error) {
	depts, cats, pris, loadErr := m.catalogs.LoadAll(ctx)
	if loadErr != nil {
		m.logger.Warn("intake catalog load degraded", zap.Error(loadErr))
	}

	id := uuid.NewString()
	conv := NewConversation(ConversationConfig{
		ID:            id,
		Steps:         m.steps,
		Catalog:       BuildCatalog(depts, cats, pris, loadErr),
		Submitter:     m.submitter,
		SubmitTimeout: m.submitTimeout,
		OnResult:      m.resultHook(id),
		Logger:        m.logger,
	})
	turns := conv.Start()

	m.mu.Lock()
	m.sessions[id] = &session{conv: conv, lastActive: time.Now()}
	m.mu.Unlock()

	m.metrics.RecordIntakeStarted()
	return id, turns, nil
}

// Get returns the live conversation for id and refreshes its idle clock.
func (m *SessionManager) Get(id string) (*Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess.lastActive = time.Now()
	return sess.conv, nil
}

// CloseSession abandons a session. Idempotent; unknown ids are ignored.
func (m *SessionManager) CloseSession(id string) {
	m.mu.Lock()
	sess, ok := m.sessions[id]
	if ok {
		delete(m.sessions, id)
	}
	m.mu.Unlock()
	if ok {
		sess.conv.Close()
	}
}

// SweepExpired closes and removes sessions idle past the TTL, returning
// how many were reaped.
func (m *SessionManager) SweepExpired(now time.Time) int {
	var expired []*session
	m.mu.Lock()
	for id, sess := range m.sessions {
		if now.Sub(sess.lastActive) > m.ttl {
			expired = append(expired, sess)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, sess := range expired {
		sess.conv.Close()
	}
	if len(expired) > 0 {
		m.logger.Info("intake sessions expired", zap.Int("count", len(expired)))
	}
	return len(expired)
}

// ActiveSessions reports the number of live sessions.
func (m *SessionManager) ActiveSessions() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

func (m *SessionManager) resultHook(sessionID string) func(bool, *SubmissionResult) {
	return func(succeeded bool, result *SubmissionResult) {
		outcome := "failed"
		ticketID := ""
		if succeeded {
			outcome = "succeeded"
			if result != nil {
				ticketID = result.TicketID
			}
		}
		m.metrics.RecordIntakeSubmission(outcome)

		conv, err := m.Get(sessionID)
		if err != nil {
			return
		}
		if m.dispatcher != nil {
			_ = m.dispatcher.Publish(context.Background(), events.Event{
				ID:        uuid.NewString(),
				Type:      events.EventIntakeCompleted,
				TicketID:  ticketID,
				Timestamp: time.Now(),
				Payload: events.IntakeCompletedPayload{
					SessionID:    sessionID,
					ContactEmail: conv.Answers().Email,
					Succeeded:    succeeded,
				},
			})
		}
	}
}
