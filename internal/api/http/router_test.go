package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk-service/internal/api/http/handlers"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/intake"
	"github.com/spec-kit/helpdesk-service/internal/service"
)

type staticDepartmentRepo struct{ depts []domain.Department }

func (r *staticDepartmentRepo) Create(context.Context, *domain.Department) error { return nil }
func (r *staticDepartmentRepo) Update(context.Context, *domain.Department) error { return nil }
func (r *staticDepartmentRepo) GetByID(context.Context, string) (*domain.Department, error) {
	return &r.depts[0], nil
}
func (r *staticDepartmentRepo) ListActive(context.Context) ([]domain.Department, error) {
	return r.depts, nil
}
func (r *staticDepartmentRepo) List(context.Context, bool) ([]domain.Department, error) {
	return r.depts, nil
}

type staticCategoryRepo struct{ cats []domain.Category }

func (r *staticCategoryRepo) Create(context.Context, *domain.Category) error { return nil }
func (r *staticCategoryRepo) Update(context.Context, *domain.Category) error { return nil }
func (r *staticCategoryRepo) GetByID(context.Context, string) (*domain.Category, error) {
	return &r.cats[0], nil
}
func (r *staticCategoryRepo) ListActive(context.Context) ([]domain.Category, error) {
	return r.cats, nil
}
func (r *staticCategoryRepo) List(context.Context, bool) ([]domain.Category, error) {
	return r.cats, nil
}

type staticPriorityRepo struct{ pris []domain.Priority }

func (r *staticPriorityRepo) Create(context.Context, *domain.Priority) error { return nil }
func (r *staticPriorityRepo) Update(context.Context, *domain.Priority) error { return nil }
func (r *staticPriorityRepo) GetByID(context.Context, string) (*domain.Priority, error) {
	return &r.pris[0], nil
}
func (r *staticPriorityRepo) ListActive(context.Context) ([]domain.Priority, error) {
	return r.pris, nil
}
func (r *staticPriorityRepo) List(context.Context, bool) ([]domain.Priority, error) {
	return r.pris, nil
}

type stubSubmitter struct{}

func (stubSubmitter) Submit(context.Context, intake.AnswerSet) (*intake.SubmissionResult, error) {
	return &intake.SubmissionResult{TicketID: "t-1", ExternalKey: "TCK-CAFEF00D"}, nil
}

func newTestApp(t *testing.T) (*fiber.App, *intake.SessionManager) {
	t.Helper()
	logger := zap.NewNop()

	catalogService := service.NewCatalogService(service.CatalogDependencies{
		DepartmentRepo: &staticDepartmentRepo{depts: []domain.Department{{ID: "d1", Name: "IT", IsActive: true}}},
		CategoryRepo:   &staticCategoryRepo{cats: []domain.Category{{ID: "c1", Name: "Incident", IsActive: true}}},
		PriorityRepo:   &staticPriorityRepo{pris: []domain.Priority{{ID: "p1", Name: "High", Rank: 3, IsActive: true}}},
	}, logger)

	sessions := intake.NewSessionManager(intake.SessionManagerDependencies{
		Catalogs:  catalogService,
		Submitter: stubSubmitter{},
		Logger:    logger,
	})

	app := fiber.New()
	RegisterMiddlewares(app, logger, nil, 0)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler("helpdesk-service", "test", nil, nil),
		Users:          handlers.NewUsersHandler(nil),
		Staff:          handlers.NewStaffHandler(nil, nil),
		Tickets:        handlers.NewTicketsHandler(nil),
		PublicTickets:  handlers.NewPublicTicketsHandler(nil),
		StaffTickets:   handlers.NewStaffTicketsHandler(nil, nil, nil),
		Catalogs:       handlers.NewCatalogHandler(catalogService),
		Intake:         handlers.NewIntakeHandler(sessions),
		AuthMiddleware: auth.NewAuthMiddleware(auth.NewTokenManager("test-secret", 60), nil, nil),
	})
	return app, sessions
}

type intakeSessionBody struct {
	Data struct {
		SessionID string `json:"session_id"`
		Phase     string `json:"phase"`
		Turns     []struct {
			Speaker     string   `json:"speaker"`
			Text        string   `json:"text"`
			Suggestions []string `json:"suggestions"`
		} `json:"turns"`
		Result *struct {
			TicketID    string `json:"ticket_id"`
			ExternalKey string `json:"external_key"`
		} `json:"result"`
	} `json:"data"`
}

func decodeJSON(t *testing.T, resp *http.Response, dest any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func postJSON(t *testing.T, app *fiber.App, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(fiber.MethodPost, path, bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func TestHealthLive(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/health/live", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestCatalogsEndpointReturnsAllLists(t *testing.T) {
	app, _ := newTestApp(t)
	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/catalogs", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body struct {
		Data struct {
			Departments []struct {
				ID   string `json:"id"`
				Name string `json:"name"`
			} `json:"departments"`
			Categories []any `json:"categories"`
			Priorities []any `json:"priorities"`
		} `json:"data"`
	}
	decodeJSON(t, resp, &body)
	require.Len(t, body.Data.Departments, 1)
	assert.Equal(t, "IT", body.Data.Departments[0].Name)
	assert.Len(t, body.Data.Categories, 1)
	assert.Len(t, body.Data.Priorities, 1)
}

func TestIntakeSessionLifecycleOverHTTP(t *testing.T) {
	app, sessions := newTestApp(t)

	resp := postJSON(t, app, "/intake/sessions", fiber.Map{})
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	var started intakeSessionBody
	decodeJSON(t, resp, &started)
	sessionID := started.Data.SessionID
	require.NotEmpty(t, sessionID)
	require.Len(t, started.Data.Turns, 2)
	assert.Equal(t, "ASKING", started.Data.Phase)

	var last intakeSessionBody
	for _, answer := range []string{"bob@x.com", "IT", "Incident", "High", "the printer is jammed"} {
		resp := postJSON(t, app, "/intake/sessions/"+sessionID+"/answers", fiber.Map{"text": answer})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		decodeJSON(t, resp, &last)
	}
	assert.Equal(t, "SUBMITTING", last.Data.Phase)

	conv, err := sessions.Get(sessionID)
	require.NoError(t, err)
	select {
	case <-conv.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("submission did not finish")
	}

	resp, err2 := app.Test(httptest.NewRequest(fiber.MethodGet, "/intake/sessions/"+sessionID, nil))
	require.NoError(t, err2)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	var final intakeSessionBody
	decodeJSON(t, resp, &final)
	assert.Equal(t, "SUCCEEDED", final.Data.Phase)
	require.NotNil(t, final.Data.Result)
	assert.Equal(t, "TCK-CAFEF00D", final.Data.Result.ExternalKey)

	resp, err2 = app.Test(httptest.NewRequest(fiber.MethodDelete, "/intake/sessions/"+sessionID, nil))
	require.NoError(t, err2)
	assert.Equal(t, fiber.StatusNoContent, resp.StatusCode)
}

func TestUnknownIntakeSessionReturnsNotFoundEnvelope(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/intake/sessions/nope", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	decodeJSON(t, resp, &body)
	assert.Equal(t, "NOT_FOUND", body.Error.Code)
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	app, _ := newTestApp(t)

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/tickets", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)

	resp, err = app.Test(httptest.NewRequest(fiber.MethodGet, "/staff/tickets", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}
