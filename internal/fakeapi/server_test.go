package fakeapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func do(t *testing.T, s *Server, method, path, token string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestLoginIssuesTokens(t *testing.T) {
	s := New()
	s.AddUser("Eka", "eka@example.com", "secret")

	rec, env := do(t, s, http.MethodPost, "/auth/v1/login", "", map[string]string{"email": "eka@example.com", "password": "secret"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, env.Success)

	rec, env = do(t, s, http.MethodPost, "/auth/v1/login", "", map[string]string{"email": "eka@example.com", "password": "nope"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid email or password", env.Message)
}

func TestExpiredAccessTokenIsRejected(t *testing.T) {
	s := New()
	s.AddUser("Eka", "eka@example.com", "secret")
	access, _ := s.IssueTokens("eka@example.com")

	rec, _ := do(t, s, http.MethodGet, "/api/v1/transactions", access, nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	s.ExpireAccessTokens()
	rec, env := do(t, s, http.MethodGet, "/api/v1/transactions", access, nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Unauthorized", env.Message)
	assert.Equal(t, 1, s.UnauthorizedCount())
}

func TestRefreshRotatesTokens(t *testing.T) {
	s := New()
	s.AddUser("Eka", "eka@example.com", "secret")
	_, refresh := s.IssueTokens("eka@example.com")

	rec, _ := do(t, s, http.MethodPost, "/auth/v1/refresh", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusOK, rec.Code)

	rec, _ = do(t, s, http.MethodPost, "/auth/v1/refresh", "", map[string]string{"refreshToken": refresh})
	assert.Equal(t, http.StatusUnauthorized, rec.Code, "a used refresh token must not work twice")
	assert.Equal(t, 2, s.RefreshCalls())
}

func TestListSplitsCurrentAndLastPeriod(t *testing.T) {
	s := New()
	s.Now = func() time.Time { return time.Date(2025, 11, 21, 10, 0, 0, 0, time.UTC) }
	s.AddUser("Eka", "eka@example.com", "secret")
	s.Seed("eka@example.com",
		Transaction{Amount: 100, Type: "income", CreatedAt: time.Date(2025, 11, 3, 0, 0, 0, 0, time.UTC)},
		Transaction{Amount: 50, Type: "expanse", CreatedAt: time.Date(2025, 10, 30, 0, 0, 0, 0, time.UTC)},
		Transaction{Amount: 70, Type: "expanse", CreatedAt: time.Date(2025, 8, 1, 0, 0, 0, 0, time.UTC)},
	)
	access, _ := s.IssueTokens("eka@example.com")

	_, env := do(t, s, http.MethodGet, "/api/v1/transactions?view=Month", access, nil)
	data := env.Data.(map[string]any)
	assert.Len(t, data["current"], 1)
	assert.Len(t, data["last"], 1)

	_, env = do(t, s, http.MethodGet, "/api/v1/transactions?view=All", access, nil)
	data = env.Data.(map[string]any)
	assert.Len(t, data["current"], 3)
	assert.Len(t, data["last"], 0)

	rec, _ := do(t, s, http.MethodGet, "/api/v1/transactions?view=Decade", access, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestTransactionsAreScopedToOwner(t *testing.T) {
	s := New()
	s.AddUser("A", "a@example.com", "secret")
	s.AddUser("B", "b@example.com", "secret")
	ids := s.Seed("a@example.com", Transaction{Amount: 1, Type: "income", CreatedAt: time.Now()})
	tokenB, _ := s.IssueTokens("b@example.com")

	rec, env := do(t, s, http.MethodGet, "/api/v1/transactions/"+ids[0], tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Transaction not found", env.Message)

	rec, _ = do(t, s, http.MethodDelete, "/api/v1/transactions/"+ids[0], tokenB, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, s.Transactions(), 1)
}

func TestCreateValidatesBody(t *testing.T) {
	s := New()
	s.AddUser("Eka", "eka@example.com", "secret")
	access, _ := s.IssueTokens("eka@example.com")

	rec, env := do(t, s, http.MethodPost, "/api/v1/transactions", access, map[string]any{
		"amount": 0, "type": "income", "description": "x", "createdAt": "2025-11-21",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Amount must be greater than zero", env.Message)

	rec, _ = do(t, s, http.MethodPost, "/api/v1/transactions", access, map[string]any{
		"amount": 10, "type": "expanse", "description": "lunch", "createdAt": "2025-11-21",
	})
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, s.Transactions(), 1)
	assert.Equal(t, "lunch", s.Transactions()[0].Description)
}

func TestFailNext(t *testing.T) {
	s := New()
	s.FailNext(1)

	rec, _ := do(t, s, http.MethodPost, "/auth/v1/login", "", map[string]string{})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	rec, _ = do(t, s, http.MethodPost, "/auth/v1/login", "", map[string]string{"email": "x", "password": "y"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleLoginCreatesAccountOnce(t *testing.T) {
	s := New()
	idToken := GoogleIDToken("g@example.com", "Gita", time.Now().Add(time.Hour))

	rec, env := do(t, s, http.MethodPost, "/auth/v1/login-with-google", "", map[string]string{"credential": idToken})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Login with Google successful", env.Message)
	require.Len(t, s.users, 1)
	assert.Equal(t, "Gita", s.users["g@example.com"].name)

	rec, _ = do(t, s, http.MethodPost, "/auth/v1/login-with-google", "", map[string]string{"credential": idToken})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, s.users, 1)

	// Google accounts have no password.
	rec, _ = do(t, s, http.MethodPost, "/auth/v1/login", "", map[string]string{"email": "g@example.com", "password": ""})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestGoogleLoginRejectsBadTokens(t *testing.T) {
	s := New()
	fixed := time.Date(2025, 11, 21, 10, 0, 0, 0, time.UTC)
	s.Now = func() time.Time { return fixed }

	for name, credential := range map[string]string{
		"garbage": "not-a-token",
		"expired": GoogleIDToken("g@example.com", "Gita", fixed.Add(-time.Minute)),
		"wrong key": func() string {
			access, _ := New().IssueTokens("g@example.com")
			return access
		}(),
	} {
		rec, env := do(t, s, http.MethodPost, "/auth/v1/login-with-google", "", map[string]string{"credential": credential})
		assert.Equal(t, http.StatusUnauthorized, rec.Code, name)
		assert.Equal(t, "Invalid Google credential", env.Message, name)
	}
	assert.Empty(t, s.users)
}
