package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

type contextKey struct{}

type tokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

type transactionView struct {
	ID          string `json:"_id"`
	User        string `json:"user"`
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

func render(tx *Transaction) transactionView {
	return transactionView{
		ID:          tx.ID,
		User:        tx.User,
		Amount:      tx.Amount,
		Type:        tx.Type,
		Description: tx.Description,
		CreatedAt:   tx.CreatedAt.UTC().Format(ServerTimeLayout),
		UpdatedAt:   tx.UpdatedAt.UTC().Format(ServerTimeLayout),
	}
}

func (s *Server) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.lastRequestID = r.Header.Get("X-Request-ID")
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) failureMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		fail := s.serverErrors > 0
		if fail {
			s.serverErrors--
		}
		s.mu.Unlock()
		if fail {
			writeJSON(w, http.StatusServiceUnavailable, "Service temporarily unavailable", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		token := strings.TrimPrefix(header, "Bearer ")

		s.mu.Lock()
		email, ok := s.access[token]
		var u *user
		if ok {
			u = s.users[email]
		}
		if u == nil {
			s.unauthorized++
		}
		s.mu.Unlock()

		if u == nil {
			writeJSON(w, http.StatusUnauthorized, "Unauthorized", nil)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, u)))
	})
}

func currentUser(r *http.Request) *user {
	u, _ := r.Context().Value(contextKey{}).(*user)
	return u
}

func decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeJSON(w, http.StatusBadRequest, "Invalid request body", nil)
		return false
	}
	return true
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	u, ok := s.users[body.Email]
	if !ok || u.password == "" || u.password != body.Password {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, "Invalid email or password", nil)
		return
	}
	access, refresh := s.issueLocked(u.email)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, "Login successful", tokenPair{AccessToken: access, RefreshToken: refresh})
}

// handleGoogleLogin signs in the owner of a Google ID token, creating the
// account on first use.
func (s *Server) handleGoogleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Credential string `json:"credential"`
	}
	if !decode(w, r, &body) {
		return
	}

	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(body.Credential, claims, func(*jwt.Token) (any, error) {
		return []byte(googleKey), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithAudience(GoogleAudience),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.Now),
	)
	email, _ := claims["email"].(string)
	if err != nil || email == "" {
		writeJSON(w, http.StatusUnauthorized, "Invalid Google credential", nil)
		return
	}

	s.mu.Lock()
	if _, exists := s.users[email]; !exists {
		name, _ := claims["name"].(string)
		s.users[email] = &user{id: uuid.NewString(), name: name, email: email}
	}
	access, refresh := s.issueLocked(email)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, "Login with Google successful", tokenPair{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if !decode(w, r, &body) {
		return
	}
	if body.Name == "" || body.Email == "" || body.Password == "" {
		writeJSON(w, http.StatusBadRequest, "Name, email and password are required", nil)
		return
	}

	s.mu.Lock()
	if _, exists := s.users[body.Email]; exists {
		s.mu.Unlock()
		writeJSON(w, http.StatusConflict, "Email already registered", nil)
		return
	}
	s.users[body.Email] = &user{id: uuid.NewString(), name: body.Name, email: body.Email, password: body.Password}
	access, refresh := s.issueLocked(body.Email)
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, "Registration successful", tokenPair{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		RefreshToken string `json:"refreshToken"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	s.refreshCalls++
	delay, fail := s.refreshDelay, s.failRefresh
	s.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if fail {
		writeJSON(w, http.StatusInternalServerError, "Internal server error", nil)
		return
	}

	s.mu.Lock()
	email, ok := s.refresh[body.RefreshToken]
	if !ok {
		s.mu.Unlock()
		writeJSON(w, http.StatusUnauthorized, "Invalid refresh token", nil)
		return
	}
	// Refresh tokens rotate on use.
	delete(s.refresh, body.RefreshToken)
	access, refresh := s.issueLocked(email)
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, "Token refreshed", tokenPair{AccessToken: access, RefreshToken: refresh})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Token string `json:"token"`
	}
	if !decode(w, r, &body) {
		return
	}

	s.mu.Lock()
	email, ok := s.access[body.Token]
	if ok {
		delete(s.access, body.Token)
		for rt, owner := range s.refresh {
			if owner == email {
				delete(s.refresh, rt)
			}
		}
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusUnauthorized, "Invalid token", nil)
		return
	}
	writeJSON(w, http.StatusOK, "Logout successful", "ok")
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	u := currentUser(r)
	view := r.URL.Query().Get("view")
	if view == "" {
		view = "Month"
	}
	curStart, curEnd, lastStart, ok := periodBounds(view, s.Now())
	if !ok {
		writeJSON(w, http.StatusBadRequest, "Invalid view option", nil)
		return
	}

	s.mu.Lock()
	current := make([]*Transaction, 0)
	last := make([]*Transaction, 0)
	for _, tx := range s.transactions {
		if tx.User != u.id {
			continue
		}
		switch {
		case view == "All":
			current = append(current, tx)
		case !tx.CreatedAt.Before(curStart) && tx.CreatedAt.Before(curEnd):
			current = append(current, tx)
		case !tx.CreatedAt.Before(lastStart) && tx.CreatedAt.Before(curStart):
			last = append(last, tx)
		}
	}
	data := struct {
		Current []transactionView `json:"current"`
		Last    []transactionView `json:"last"`
	}{Current: renderAll(current), Last: renderAll(last)}
	s.mu.Unlock()

	writeJSON(w, http.StatusOK, "Transactions retrieved", data)
}

func renderAll(txs []*Transaction) []transactionView {
	sort.SliceStable(txs, func(i, j int) bool { return txs[i].CreatedAt.After(txs[j].CreatedAt) })
	out := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		out = append(out, render(tx))
	}
	return out
}

// periodBounds returns the current period [curStart, curEnd) and the start of
// the previous period, which ends at curStart.
func periodBounds(view string, now time.Time) (curStart, curEnd, lastStart time.Time, ok bool) {
	now = now.UTC()
	day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	switch view {
	case "Day":
		return day, day.AddDate(0, 0, 1), day.AddDate(0, 0, -1), true
	case "Week":
		offset := (int(day.Weekday()) + 6) % 7
		start := day.AddDate(0, 0, -offset)
		return start, start.AddDate(0, 0, 7), start.AddDate(0, 0, -7), true
	case "Month":
		start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(0, 1, 0), start.AddDate(0, -1, 0), true
	case "Year":
		start := time.Date(now.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
		return start, start.AddDate(1, 0, 0), start.AddDate(-1, 0, 0), true
	case "All":
		return time.Time{}, time.Time{}, time.Time{}, true
	}
	return time.Time{}, time.Time{}, time.Time{}, false
}

func (s *Server) owned(r *http.Request) (*Transaction, bool) {
	u := currentUser(r)
	id := mux.Vars(r)["id"]
	tx, ok := s.transactions[id]
	if !ok || tx.User != u.id {
		return nil, false
	}
	return tx, true
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tx, ok := s.owned(r)
	var view transactionView
	if ok {
		view = render(tx)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, "Transaction retrieved", view)
}

type transactionBody struct {
	Amount      int64  `json:"amount"`
	Type        string `json:"type"`
	Description string `json:"description"`
	CreatedAt   string `json:"createdAt"`
}

func (b transactionBody) validate() (time.Time, string) {
	if b.Amount <= 0 {
		return time.Time{}, "Amount must be greater than zero"
	}
	if b.Type != "income" && b.Type != "expanse" {
		return time.Time{}, "Type must be income or expanse"
	}
	created, err := time.Parse("2006-01-02", b.CreatedAt)
	if err != nil {
		return time.Time{}, "createdAt must be YYYY-MM-DD"
	}
	return created, ""
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	var body transactionBody
	if !decode(w, r, &body) {
		return
	}
	created, problem := body.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, problem, nil)
		return
	}

	u := currentUser(r)
	s.mu.Lock()
	tx := &Transaction{
		ID:          uuid.NewString(),
		User:        u.id,
		Amount:      body.Amount,
		Type:        body.Type,
		Description: body.Description,
		CreatedAt:   created,
		UpdatedAt:   s.Now().UTC(),
	}
	s.transactions[tx.ID] = tx
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, "Transaction created successfully", map[string]string{"_id": tx.ID})
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var body transactionBody
	if !decode(w, r, &body) {
		return
	}
	created, problem := body.validate()
	if problem != "" {
		writeJSON(w, http.StatusBadRequest, problem, nil)
		return
	}

	s.mu.Lock()
	tx, ok := s.owned(r)
	if ok {
		tx.Amount = body.Amount
		tx.Type = body.Type
		tx.Description = body.Description
		tx.CreatedAt = created
		tx.UpdatedAt = s.Now().UTC()
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, "Transaction updated successfully", nil)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	tx, ok := s.owned(r)
	if ok {
		delete(s.transactions, tx.ID)
	}
	s.mu.Unlock()

	if !ok {
		writeJSON(w, http.StatusNotFound, "Transaction not found", nil)
		return
	}
	writeJSON(w, http.StatusOK, "Transaction deleted successfully", tx.ID)
}
