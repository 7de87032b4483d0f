package auth_test

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"

	"github.com/eka-dev/ftracker/auth"
)

// stubGateway is a programmable auth.Gateway.
type stubGateway struct {
	refreshFn func(ctx context.Context, refreshToken string) (auth.Credential, error)
	loginCred auth.Credential
	loginErr  error
	logoutMsg string
	logoutErr error

	refreshCalls atomic.Int64

	mu          sync.Mutex
	loggedOut   []string
	lastRefresh string
	lastLogin   [3]string
	lastGoogle  string
}

func (g *stubGateway) Login(_ context.Context, email, password string) (auth.Credential, error) {
	g.mu.Lock()
	g.lastLogin = [3]string{"", email, password}
	g.mu.Unlock()
	return g.loginCred, g.loginErr
}

func (g *stubGateway) Register(_ context.Context, name, email, password string) (auth.Credential, error) {
	g.mu.Lock()
	g.lastLogin = [3]string{name, email, password}
	g.mu.Unlock()
	return g.loginCred, g.loginErr
}

func (g *stubGateway) LoginWithGoogle(_ context.Context, idToken string) (auth.Credential, error) {
	g.mu.Lock()
	g.lastGoogle = idToken
	g.mu.Unlock()
	return g.loginCred, g.loginErr
}

func (g *stubGateway) Refresh(ctx context.Context, refreshToken string) (auth.Credential, error) {
	g.refreshCalls.Add(1)
	g.mu.Lock()
	g.lastRefresh = refreshToken
	g.mu.Unlock()
	if g.refreshFn == nil {
		return auth.Credential{}, errors.New("refresh not configured")
	}
	return g.refreshFn(ctx, refreshToken)
}

func (g *stubGateway) Logout(_ context.Context, accessToken string) (string, error) {
	g.mu.Lock()
	g.loggedOut = append(g.loggedOut, accessToken)
	g.mu.Unlock()
	return g.logoutMsg, g.logoutErr
}

func renewTo(access, refresh string) func(context.Context, string) (auth.Credential, error) {
	return func(context.Context, string) (auth.Credential, error) {
		return auth.Credential{AccessToken: access, RefreshToken: refresh}, nil
	}
}

// failingStore fails the configured operations.
type failingStore struct {
	*auth.MemoryStore
	getErr   error
	saveErr  error
	clearErr error
}

func (s *failingStore) Get(ctx context.Context) (auth.Credential, error) {
	if s.getErr != nil {
		return auth.Credential{}, s.getErr
	}
	return s.MemoryStore.Get(ctx)
}

func (s *failingStore) Save(ctx context.Context, access, refresh string) error {
	if s.saveErr != nil {
		return s.saveErr
	}
	return s.MemoryStore.Save(ctx, access, refresh)
}

func (s *failingStore) Clear(ctx context.Context) error {
	if s.clearErr != nil {
		return s.clearErr
	}
	return s.MemoryStore.Clear(ctx)
}

func mustGet(store auth.CredentialStore) auth.Credential {
	cred, err := store.Get(context.Background())
	if err != nil {
		panic(err)
	}
	return cred
}

// httpStatusError mimics a gateway error that carries a response status.
type httpStatusError int

func (e httpStatusError) Error() string   { return http.StatusText(int(e)) }
func (e httpStatusError) HTTPStatus() int { return int(e) }
