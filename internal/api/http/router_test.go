package http

import (
	"context"
	"encoding/json"
	"io"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/encryptcookie"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/callbook-service/internal/api/http/handlers"
	"github.com/spec-kit/callbook-service/internal/auth"
	"github.com/spec-kit/callbook-service/internal/config"
	"github.com/spec-kit/callbook-service/internal/domain"
	"github.com/spec-kit/callbook-service/internal/observability"
	"github.com/spec-kit/callbook-service/internal/persistence"
	"github.com/spec-kit/callbook-service/internal/service"
	apperrors "github.com/spec-kit/callbook-service/pkg/util/errorutil"
)

var alice = &domain.User{ID: "u1", Username: "alice", Email: "alice@example.com", PhoneNumber: "+15551234567"}

type stubUsers struct{}

func (stubUsers) GetByID(_ context.Context, id string) (*domain.User, error) {
	if id == alice.ID {
		return alice, nil
	}
	return nil, pgx.ErrNoRows
}

type stubAuth struct{}

func (stubAuth) Register(_ context.Context, in service.RegisterInput) error {
	if in.Username == alice.Username {
		return apperrors.NewConflict("user already exists", nil)
	}
	return nil
}

func (stubAuth) Verify(_ context.Context, in service.LoginInput) (*domain.User, error) {
	if in.Username == alice.Username && in.Password == "secret1" {
		return alice, nil
	}
	return nil, apperrors.NewUnauthorized("invalid credentials")
}

type stubContacts struct {
	lastQuery service.ListQuery
	owner     string
}

func (s *stubContacts) Create(_ context.Context, ownerID string, in service.ContactInput) (*domain.Contact, error) {
	s.owner = ownerID
	return &domain.Contact{ID: "c1", UserID: ownerID, Name: in.Name, PhoneNumber: in.PhoneNumber}, nil
}

func (s *stubContacts) List(_ context.Context, ownerID string, q service.ListQuery) ([]domain.Contact, domain.Pagination, error) {
	s.owner = ownerID
	s.lastQuery = q
	return []domain.Contact{{ID: "c1", Name: "Bob", PhoneNumber: "+15550000001"}},
		domain.NewPagination(domain.Page{Page: q.Page, Limit: q.Limit}, 1), nil
}

func (s *stubContacts) Get(_ context.Context, _, id string) (*domain.Contact, error) {
	if id == "c1" {
		return &domain.Contact{ID: "c1", Name: "Bob", PhoneNumber: "+15550000001"}, nil
	}
	return nil, apperrors.NewNotFoundMessage("contact not found")
}

func (s *stubContacts) Update(_ context.Context, _, id string, in service.ContactInput) (*domain.Contact, error) {
	return &domain.Contact{ID: id, Name: in.Name, PhoneNumber: in.PhoneNumber}, nil
}

func (s *stubContacts) Delete(context.Context, string, string) error { return nil }

type stubCalls struct{}

func (stubCalls) InitiateCall(context.Context, string, string) (*service.InitiateResult, error) {
	return &service.InitiateResult{CallSID: "CA0123456789abcdef0123456789abcdef", Status: "queued"}, nil
}

func (stubCalls) EndCall(context.Context, string) (*service.EndResult, error) {
	return nil, apperrors.NewUpstreamError("failed to end call: boom", nil)
}

func (stubCalls) History(_ context.Context, _ string, q service.HistoryQuery) ([]domain.Call, domain.Pagination, error) {
	return []domain.Call{}, domain.NewPagination(domain.Page{Page: q.Page, Limit: q.Limit}, 0), nil
}

type pingFunc func(ctx context.Context) error

func (f pingFunc) Ping(ctx context.Context) error { return f(ctx) }

type testServer struct {
	app      *fiber.App
	contacts *stubContacts
}

func newTestServer(t *testing.T, cookieKey string) *testServer {
	t.Helper()
	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	sessions := auth.NewAuthenticator(
		auth.NewTokenManager("secret", time.Hour),
		stubUsers{},
		nil,
		config.CookieConfig{Name: "sid"},
		logger,
	)
	contacts := &stubContacts{}

	app := fiber.New()
	RegisterMiddlewares(app, MiddlewareConfig{
		Logger:              logger,
		Metrics:             metrics,
		Timeout:             time.Second,
		CookieEncryptionKey: cookieKey,
	})
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("callbook", "test",
			pingFunc(func(context.Context) error { return nil }),
			pingFunc(func(context.Context) error { return persistence.ErrRedisDisabled })),
		Auth:     handlers.NewAuthHandler(stubAuth{}, sessions),
		Contacts: handlers.NewContactsHandler(contacts),
		Calls:    handlers.NewCallsHandler(stubCalls{}),
		Sessions: sessions,
		Metrics:  metrics,
	})
	return &testServer{app: app, contacts: contacts}
}

func (s *testServer) do(t *testing.T, method, path, body string, cookies ...*nethttp.Cookie) (*nethttp.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	resp, err := s.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	out := map[string]any{}
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), "application/json") {
		require.NoError(t, json.Unmarshal(raw, &out))
	}
	return resp, out
}

func (s *testServer) login(t *testing.T) *nethttp.Cookie {
	t.Helper()
	resp, body := s.do(t, nethttp.MethodPost, "/login", `{"username":"alice","password":"secret1"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Logged in successfully", body["message"])
	for _, c := range resp.Cookies() {
		if c.Name == "sid" {
			return c
		}
	}
	t.Fatal("no session cookie")
	return nil
}

func errorCode(body map[string]any) string {
	e, _ := body["error"].(map[string]any)
	code, _ := e["code"].(string)
	return code
}

func TestRegister(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := s.do(t, nethttp.MethodPost, "/register", `{"username":"bob","email":"b@example.com","password":"secret1","phoneNumber":"+1555"}`)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "User registered successfully", body["message"])

	resp, body = s.do(t, nethttp.MethodPost, "/register", `{"username":"alice","email":"a@example.com","password":"secret1","phoneNumber":"+1555"}`)
	assert.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, apperrors.CodeConflict, errorCode(body))

	resp, body = s.do(t, nethttp.MethodPost, "/register", `{not json`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, errorCode(body))
}

func TestLoginFailure(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := s.do(t, nethttp.MethodPost, "/login", `{"username":"alice","password":"wrong"}`)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "invalid credentials", body["error"].(map[string]any)["message"])
	assert.Empty(t, resp.Cookies())
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	s := newTestServer(t, "")

	for _, route := range []struct{ method, path string }{
		{nethttp.MethodPost, "/logout"},
		{nethttp.MethodPost, "/initiateCall"},
		{nethttp.MethodPost, "/endCall"},
		{nethttp.MethodGet, "/calls/history"},
		{nethttp.MethodGet, "/contacts"},
		{nethttp.MethodPost, "/contacts"},
		{nethttp.MethodGet, "/contacts/c1"},
		{nethttp.MethodPut, "/contacts/c1"},
		{nethttp.MethodDelete, "/contacts/c1"},
	} {
		resp, body := s.do(t, route.method, route.path, "")
		assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode, route.path)
		assert.Equal(t, apperrors.CodeUnauthorized, errorCode(body), route.path)
	}
}

func TestCheckAuth(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := s.do(t, nethttp.MethodGet, "/check-auth", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, false, body["isAuthenticated"])
	assert.NotContains(t, body, "user")

	cookie := s.login(t)
	_, body = s.do(t, nethttp.MethodGet, "/check-auth", "", cookie)
	assert.Equal(t, true, body["isAuthenticated"])
	user := body["user"].(map[string]any)
	assert.Equal(t, "alice", user["username"])
	assert.Equal(t, "+15551234567", user["phoneNumber"])
}

func TestContactsFlow(t *testing.T) {
	s := newTestServer(t, "")
	cookie := s.login(t)

	resp, body := s.do(t, nethttp.MethodPost, "/contacts", `{"name":"Bob","phoneNumber":"+15550000001"}`, cookie)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Contact created successfully", body["message"])
	assert.Equal(t, "u1", s.contacts.owner)

	resp, body = s.do(t, nethttp.MethodGet, "/contacts?page=2&limit=5&search=bo", "", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, service.ListQuery{Page: 2, Limit: 5, Search: "bo"}, s.contacts.lastQuery)
	assert.Len(t, body["contacts"], 1)
	assert.Equal(t, float64(5), body["pagination"].(map[string]any)["limit"])

	_, _ = s.do(t, nethttp.MethodGet, "/contacts", "", cookie)
	assert.Equal(t, service.ListQuery{Page: 1, Limit: 10}, s.contacts.lastQuery)

	resp, body = s.do(t, nethttp.MethodGet, "/contacts?page=abc", "", cookie)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, apperrors.CodeValidation, errorCode(body))

	resp, body = s.do(t, nethttp.MethodGet, "/contacts/missing", "", cookie)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, apperrors.CodeNotFound, errorCode(body))

	resp, body = s.do(t, nethttp.MethodDelete, "/contacts/c1", "", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "Contact deleted successfully", body["message"])
}

func TestCallsRoutes(t *testing.T) {
	s := newTestServer(t, "")
	cookie := s.login(t)

	resp, body := s.do(t, nethttp.MethodPost, "/initiateCall", `{"phoneNumber":"+15552223333"}`, cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "CA0123456789abcdef0123456789abcdef", body["callSid"])
	assert.Equal(t, "queued", body["status"])

	resp, body = s.do(t, nethttp.MethodPost, "/endCall", `{"callSid":"CA0123456789abcdef0123456789abcdef"}`, cookie)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, apperrors.CodeUpstream, errorCode(body))
	assert.Equal(t, "failed to end call: boom", body["error"].(map[string]any)["message"])

	resp, body = s.do(t, nethttp.MethodGet, "/calls/history", "", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, []any{}, body["calls"])
}

func TestLogoutIsIdempotent(t *testing.T) {
	s := newTestServer(t, "")
	cookie := s.login(t)

	for i := 0; i < 2; i++ {
		resp, body := s.do(t, nethttp.MethodPost, "/logout", "", cookie)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, "Logged out successfully", body["message"])
	}
}

func TestEncryptedSessionCookie(t *testing.T) {
	s := newTestServer(t, encryptcookie.GenerateKey())
	cookie := s.login(t)

	_, err := auth.NewTokenManager("secret", time.Hour).ParseToken(cookie.Value)
	assert.Error(t, err, "cookie value must not be a bare token")

	resp, _ := s.do(t, nethttp.MethodGet, "/contacts", "", cookie)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestHealthAndMetrics(t *testing.T) {
	s := newTestServer(t, "")

	resp, body := s.do(t, nethttp.MethodGet, "/health/ready", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	deps := body["dependencies"].(map[string]any)
	assert.Equal(t, "ok", deps["postgres"])
	assert.Equal(t, "disabled", deps["redis"])

	resp, _ = s.do(t, nethttp.MethodGet, "/metrics", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))
}
