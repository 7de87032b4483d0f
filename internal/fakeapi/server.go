// Package fakeapi is an in-memory stand-in for the ftracker backend, used by
// tests to drive the client end to end.
package fakeapi

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// ServerTimeLayout is how the backend renders timestamps.
const ServerTimeLayout = "2006-01-02T15:04:05.000Z"

const (
	defaultAccessTTL = time.Hour
	signingKey       = "fakeapi-signing-key"
	googleKey        = "fakeapi-google-key"
	// GoogleAudience is the client id the fake accepts in Google ID tokens.
	GoogleAudience = "ftracker-web-client"
)

// Transaction is the stored form of a transaction.
type Transaction struct {
	ID          string    `json:"_id"`
	User        string    `json:"user"`
	Amount      int64     `json:"amount"`
	Type        string    `json:"type"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"-"`
	UpdatedAt   time.Time `json:"-"`
}

type user struct {
	id       string
	name     string
	email    string
	password string
}

// Server is a fake backend. The zero value is not usable; call New.
type Server struct {
	// Now is the clock used for periods and timestamps.
	Now func() time.Time

	mu            sync.Mutex
	users         map[string]*user // by email
	access        map[string]string
	refresh       map[string]string
	transactions  map[string]*Transaction
	refreshCalls  int
	unauthorized  int
	refreshDelay  time.Duration
	failRefresh   bool
	serverErrors  int
	lastRequestID string

	router *mux.Router
}

// New creates an empty backend.
func New() *Server {
	s := &Server{
		Now:          time.Now,
		users:        make(map[string]*user),
		access:       make(map[string]string),
		refresh:      make(map[string]string),
		transactions: make(map[string]*Transaction),
	}
	s.router = s.routes()
	return s
}

// Start serves the backend on a local port. Close the returned server when done.
func (s *Server) Start() *httptest.Server {
	return httptest.NewServer(s)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.Use(s.requestIDMiddleware, s.failureMiddleware)

	authRoutes := r.PathPrefix("/auth/v1").Subrouter()
	authRoutes.HandleFunc("/login", s.handleLogin).Methods(http.MethodPost)
	authRoutes.HandleFunc("/login-with-google", s.handleGoogleLogin).Methods(http.MethodPost)
	authRoutes.HandleFunc("/register", s.handleRegister).Methods(http.MethodPost)
	authRoutes.HandleFunc("/refresh", s.handleRefresh).Methods(http.MethodPost)
	authRoutes.HandleFunc("/logout", s.handleLogout).Methods(http.MethodPost)

	api := r.PathPrefix("/api/v1").Subrouter()
	api.Use(s.authMiddleware)
	api.HandleFunc("/transactions", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/transactions", s.handleCreate).Methods(http.MethodPost)
	api.HandleFunc("/transactions/{id}", s.handleGet).Methods(http.MethodGet)
	api.HandleFunc("/transactions/{id}", s.handleUpdate).Methods(http.MethodPut)
	api.HandleFunc("/transactions/{id}", s.handleDelete).Methods(http.MethodDelete)
	return r
}

// AddUser registers an account directly.
func (s *Server) AddUser(name, email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = &user{id: uuid.NewString(), name: name, email: email, password: password}
}

// GoogleIDToken mints an ID token the fake accepts on login-with-google.
func GoogleIDToken(email, name string, expiresAt time.Time) string {
	claims := jwt.MapClaims{
		"iss":   "https://accounts.google.com",
		"aud":   GoogleAudience,
		"sub":   uuid.NewString(),
		"email": email,
		"name":  name,
		"exp":   expiresAt.Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(googleKey))
	if err != nil {
		panic(err)
	}
	return token
}

// Seed stores transactions for the account with the given email.
func (s *Server) Seed(email string, txs ...Transaction) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := s.users[email]
	ids := make([]string, 0, len(txs))
	for i := range txs {
		tx := txs[i]
		if tx.ID == "" {
			tx.ID = uuid.NewString()
		}
		if u != nil {
			tx.User = u.id
		}
		if tx.UpdatedAt.IsZero() {
			tx.UpdatedAt = tx.CreatedAt
		}
		s.transactions[tx.ID] = &tx
		ids = append(ids, tx.ID)
	}
	return ids
}

// IssueTokens creates a session for email as a login would.
func (s *Server) IssueTokens(email string) (accessToken, refreshToken string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.issueLocked(email)
}

// ExpireAccessTokens invalidates every access token, as if they timed out.
func (s *Server) ExpireAccessTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.access = make(map[string]string)
}

// RevokeRefreshTokens invalidates every refresh token.
func (s *Server) RevokeRefreshTokens() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refresh = make(map[string]string)
}

// SetRefreshDelay slows down refresh calls.
func (s *Server) SetRefreshDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refreshDelay = d
}

// FailRefresh makes refresh calls answer 500.
func (s *Server) FailRefresh(fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failRefresh = fail
}

// FailNext makes the next n requests answer 503.
func (s *Server) FailNext(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.serverErrors = n
}

// RefreshCalls returns the number of refresh requests received.
func (s *Server) RefreshCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.refreshCalls
}

// UnauthorizedCount returns the number of 401 responses sent by the API routes.
func (s *Server) UnauthorizedCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.unauthorized
}

// LastRequestID returns the X-Request-ID of the latest request.
func (s *Server) LastRequestID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRequestID
}

// Transactions returns a copy of the stored transactions.
func (s *Server) Transactions() []Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Transaction, 0, len(s.transactions))
	for _, tx := range s.transactions {
		out = append(out, *tx)
	}
	return out
}

// issueLocked must be called with mu held.
func (s *Server) issueLocked(email string) (string, string) {
	claims := jwt.MapClaims{
		"email": email,
		"type":  "access",
		"jti":   uuid.NewString(),
		"iat":   s.Now().Unix(),
		"exp":   s.Now().Add(defaultAccessTTL).Unix(),
	}
	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		// HS256 signing with a static key cannot fail.
		panic(err)
	}
	refreshToken := uuid.NewString()
	s.access[accessToken] = email
	s.refresh[refreshToken] = email
	return accessToken, refreshToken
}

type envelope struct {
	StatusCode int    `json:"statusCode"`
	Success    bool   `json:"success"`
	Message    string `json:"message"`
	Data       any    `json:"data"`
}

func writeJSON(w http.ResponseWriter, status int, message string, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(envelope{
		StatusCode: status,
		Success:    status >= 200 && status < 300,
		Message:    message,
		Data:       data,
	})
}
