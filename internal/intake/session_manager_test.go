package intake

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

type fakeCatalogLoader struct {
	depts []domain.Department
	cats  []domain.Category
	pris  []domain.Priority
	err   error
}

func (f *fakeCatalogLoader) LoadAll(context.Context) ([]domain.Department, []domain.Category, []domain.Priority, error) {
	return f.depts, f.cats, f.pris, f.err
}

func newTestManager(loader CatalogLoader, ttl time.Duration) *SessionManager {
	return NewSessionManager(SessionManagerDependencies{
		Catalogs:   loader,
		Submitter:  &fakeSubmitter{},
		SessionTTL: ttl,
	})
}

func TestStartSessionReturnsOpeningTurns(t *testing.T) {
	loader := &fakeCatalogLoader{
		depts: []domain.Department{{ID: "d1", Name: "IT"}},
		pris:  []domain.Priority{{ID: "p1", Name: "High"}},
	}
	mgr := newTestManager(loader, time.Minute)

	id, turns, err := mgr.StartSession(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	require.Len(t, turns, 2)
	assert.Equal(t, msgWelcome, turns[0].Text)
	assert.Equal(t, 1, mgr.ActiveSessions())
}

func TestStartSessionDegradesOnCatalogFailure(t *testing.T) {
	loader := &fakeCatalogLoader{err: errors.New("postgres down")}
	mgr := newTestManager(loader, time.Minute)

	id, turns, err := mgr.StartSession(context.Background())
	require.NoError(t, err)

	// degradation notice between welcome and first question
	require.Len(t, turns, 3)
	assert.Equal(t, msgCatalogDegraded, turns[1].Text)

	conv, err := mgr.Get(id)
	require.NoError(t, err)
	assert.Equal(t, PhaseAsking, conv.Phase())
}

func TestGetUnknownSession(t *testing.T) {
	mgr := newTestManager(&fakeCatalogLoader{}, time.Minute)
	_, err := mgr.Get("nope")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCloseSessionIsIdempotent(t *testing.T) {
	mgr := newTestManager(&fakeCatalogLoader{}, time.Minute)
	id, _, err := mgr.StartSession(context.Background())
	require.NoError(t, err)

	mgr.CloseSession(id)
	mgr.CloseSession(id)
	assert.Equal(t, 0, mgr.ActiveSessions())

	_, err = mgr.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepExpiredReapsIdleSessions(t *testing.T) {
	mgr := newTestManager(&fakeCatalogLoader{}, time.Minute)
	id, _, err := mgr.StartSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, mgr.SweepExpired(time.Now()))
	assert.Equal(t, 1, mgr.SweepExpired(time.Now().Add(2*time.Minute)))
	assert.Equal(t, 0, mgr.ActiveSessions())

	_, err = mgr.Get(id)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSweepKeepsActiveSessions(t *testing.T) {
	mgr := newTestManager(&fakeCatalogLoader{}, time.Hour)
	_, _, err := mgr.StartSession(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 0, mgr.SweepExpired(time.Now().Add(30*time.Minute)))
	assert.Equal(t, 1, mgr.ActiveSessions())
}
