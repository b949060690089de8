package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daveenci-ai/leadchat-backend/internal/api"
	"github.com/daveenci-ai/leadchat-backend/internal/config"
	"github.com/daveenci-ai/leadchat-backend/internal/engine"
	"github.com/daveenci-ai/leadchat-backend/internal/models"
	"github.com/daveenci-ai/leadchat-backend/internal/providers/scripted"
)

const testSecret = "test-secret"

type memoryRepo struct {
	mu    sync.Mutex
	saved []*models.ChatSummary
}

func (m *memoryRepo) Save(ctx context.Context, summary *models.ChatSummary) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	summary.ID = "summary-1"
	m.saved = append(m.saved, summary)
	return summary.ID, nil
}

func (m *memoryRepo) Get(ctx context.Context, id string) (*models.ChatSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.saved {
		if s.ID == id {
			return s, nil
		}
	}
	return nil, nil
}

func (m *memoryRepo) List(ctx context.Context, limit, offset int) ([]*models.ChatSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]*models.ChatSummary(nil), m.saved...), nil
}

func (m *memoryRepo) CountPriorVisits(ctx context.Context, email string) (int, error) {
	return 0, nil
}

func newTestApp() (*fiber.App, *memoryRepo) {
	log := logrus.New()
	log.SetOutput(io.Discard)

	cfg := config.LLMConfig{
		Model:               "test-model",
		TimeoutSeconds:      2,
		ConfidenceThreshold: 0.5,
		HistoryWindow:       12,
	}

	repo := &memoryRepo{}
	store := engine.NewContextStore()
	generator := engine.NewGenerator(scripted.NewProvider(0.9), cfg, "https://example.com/book", log)
	orch := engine.NewOrchestrator(store, engine.NewExtractor(), generator, engine.NewQualifier(engine.DefaultWeights), repo, log)

	app := fiber.New()
	api.SetupRoutes(app, orch, repo, testSecret)
	return app, repo
}

func postJSON(t *testing.T, app *fiber.App, path string, body any) *http.Response {
	t.Helper()
	payload, err := json.Marshal(body)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response, out any) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestPostMessage_CreatesSessionAndReplies(t *testing.T) {
	app, _ := newTestApp()

	resp := postJSON(t, app, "/api/v1/chat/messages", fiber.Map{
		"message": "I need marketing automation, email me at a@b.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		SessionID string             `json:"session_id"`
		Stage     string             `json:"stage"`
		Response  models.LLMResponse `json:"response"`
	}
	decode(t, resp, &body)

	assert.NotEmpty(t, body.SessionID)
	assert.Equal(t, "discovery", body.Stage)
	assert.NotEmpty(t, body.Response.Content)
}

func TestPostMessage_RequiresMessage(t *testing.T) {
	app, _ := newTestApp()

	resp := postJSON(t, app, "/api/v1/chat/messages", fiber.Map{"session_id": "s1"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestFinalize_ReturnsSummaryAndPersists(t *testing.T) {
	app, repo := newTestApp()

	resp := postJSON(t, app, "/api/v1/chat/messages", fiber.Map{
		"session_id": "s1",
		"message":    "we're losing leads, reach me at jane@acme.com",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = postJSON(t, app, "/api/v1/chat/sessions/s1/finalize", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var summary models.ChatSummary
	decode(t, resp, &summary)
	assert.Equal(t, "jane@acme.com", summary.ContactEmail)
	assert.Equal(t, "jane@acme.com", summary.Contact.Email)
	assert.NotEmpty(t, summary.ChatSummary)

	repo.mu.Lock()
	defer repo.mu.Unlock()
	assert.Len(t, repo.saved, 1)
}

func TestFinalize_UnknownSession(t *testing.T) {
	app, _ := newTestApp()

	resp := postJSON(t, app, "/api/v1/chat/sessions/nope/finalize", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestGetContext_Snapshot(t *testing.T) {
	app, _ := newTestApp()

	resp := postJSON(t, app, "/api/v1/chat/messages", fiber.Map{
		"session_id": "s1",
		"message":    "hello",
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/chat/sessions/s1/context", nil)
	httpResp, err := app.Test(req, 5000)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, httpResp.StatusCode)

	var ctx models.LLMContext
	decode(t, httpResp, &ctx)
	assert.Equal(t, "s1", ctx.SessionID)
	assert.Len(t, ctx.History, 2)
}

func TestAdminRoutes_RequireToken(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/summaries", nil)
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestAdminRoutes_AcceptValidToken(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/summaries", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestGetSummary_MalformedID(t *testing.T) {
	app, _ := newTestApp()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/admin/summaries/not-a-uuid", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	resp, err := app.Test(req, 5000)
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "admin",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}
