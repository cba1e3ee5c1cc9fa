package auth

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/propfind/propfind/internal/platform/httpx"
)

func newTestAuthRouter() http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc, _ := newTestAuthService()
	handler := NewHandler(logger, svc)

	r := chi.NewRouter()
	r.Route("/api/auth", handler.MountRoutes)
	return r
}

func postJSON(t *testing.T, router http.Handler, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) httpx.Envelope {
	t.Helper()
	var envelope httpx.Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	return envelope
}

const registerBody = `{
	"first_name": "Jane",
	"last_name": "Doe",
	"email": "jane@example.com",
	"phone": "+1 555 123 4567",
	"password": "secret1",
	"confirm_password": "secret1"
}`

func TestRegisterEndpoint(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/register", registerBody)
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Registration successful", envelope.Message)
	// Registration never hands out a token.
	assert.Nil(t, envelope.Data)
}

func TestRegisterEndpointDuplicate(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/register", registerBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/api/auth/register", registerBody)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Equal(t, "email already registered", envelope.Message)
}

func TestRegisterEndpointValidation(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/register", `{
		"first_name": "Jane",
		"last_name": "Doe",
		"email": "jane@example.com",
		"phone": "+1 555 123 4567",
		"password": "secret1",
		"confirm_password": "different"
	}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.False(t, envelope.Success)
	assert.Contains(t, envelope.Message, "passwords do not match")
}

func TestRegisterEndpointBadBody(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/register", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/register", registerBody)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = postJSON(t, router, "/api/auth/login", `{"email": "jane@example.com", "password": "secret1"}`)
	assert.Equal(t, http.StatusOK, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.True(t, envelope.Success)
	assert.Equal(t, "Login successful", envelope.Message)

	payload, err := json.Marshal(envelope.Data)
	require.NoError(t, err)
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(payload, &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "jane@example.com", resp.User.Email)
}

func TestLoginEndpointInvalidCredentials(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/register", registerBody)
	require.Equal(t, http.StatusOK, rec.Code)

	for _, body := range []string{
		`{"email": "jane@example.com", "password": "wrong"}`,
		`{"email": "nobody@example.com", "password": "secret1"}`,
	} {
		rec := postJSON(t, router, "/api/auth/login", body)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)

		envelope := decodeEnvelope(t, rec)
		assert.False(t, envelope.Success)
		assert.Equal(t, "invalid email or password", envelope.Message)
	}
}

func TestLoginEndpointMissingFields(t *testing.T) {
	router := newTestAuthRouter()

	rec := postJSON(t, router, "/api/auth/login", `{"email": "jane@example.com"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	envelope := decodeEnvelope(t, rec)
	assert.Equal(t, "email and password are required", envelope.Message)
}
