package client

import (
	"context"
	"net/http"
	"net/url"

	"github.com/eka-dev/ftracker/auth"
	"github.com/rs/zerolog/log"
)

const (
	loginPath       = "auth/v1/login"
	googleLoginPath = "auth/v1/login-with-google"
	registerPath    = "auth/v1/register"
	refreshPath     = "auth/v1/refresh"
	logoutPath      = "auth/v1/logout"
)

// AuthClient talks to the identity endpoints. Its http.Client must not use
// an auth.Transport: refresh calls are made while the Refresher holds its
// lock.
type AuthClient struct {
	baseURL *url.URL
	http    *http.Client
}

var _ auth.Gateway = (*AuthClient)(nil)

// NewAuthClient creates an AuthClient for baseURL.
func NewAuthClient(baseURL string, httpClient *http.Client) (*AuthClient, error) {
	base, err := parseBaseURL(baseURL)
	if err != nil {
		return nil, err
	}
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AuthClient{baseURL: base, http: httpClient}, nil
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type googleLoginRequest struct {
	Credential string `json:"credential"`
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

type logoutRequest struct {
	Token string `json:"token"`
}

func (c *AuthClient) Login(ctx context.Context, email, password string) (auth.Credential, error) {
	env, err := call[auth.Credential](ctx, c.http, 1, http.MethodPost, resolve(c.baseURL, loginPath), loginRequest{Email: email, Password: password})
	if err != nil {
		return auth.Credential{}, err
	}
	log.Info().Str("message", env.Message).Msg("Login accepted")
	return env.Data, nil
}

// LoginWithGoogle sends a Google ID token; the backend verifies it.
func (c *AuthClient) LoginWithGoogle(ctx context.Context, idToken string) (auth.Credential, error) {
	env, err := call[auth.Credential](ctx, c.http, 1, http.MethodPost, resolve(c.baseURL, googleLoginPath), googleLoginRequest{Credential: idToken})
	if err != nil {
		return auth.Credential{}, err
	}
	log.Info().Str("message", env.Message).Msg("Google login accepted")
	return env.Data, nil
}

func (c *AuthClient) Register(ctx context.Context, name, email, password string) (auth.Credential, error) {
	env, err := call[auth.Credential](ctx, c.http, 1, http.MethodPost, resolve(c.baseURL, registerPath), registerRequest{Name: name, Email: email, Password: password})
	if err != nil {
		return auth.Credential{}, err
	}
	log.Info().Str("message", env.Message).Msg("Registration accepted")
	return env.Data, nil
}

// Refresh exchanges a refresh token for a new pair.
func (c *AuthClient) Refresh(ctx context.Context, refreshToken string) (auth.Credential, error) {
	env, err := call[auth.Credential](ctx, c.http, 1, http.MethodPost, resolve(c.baseURL, refreshPath), refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return auth.Credential{}, err
	}
	return env.Data, nil
}

// Logout revokes the session and returns the backend's message.
func (c *AuthClient) Logout(ctx context.Context, accessToken string) (string, error) {
	env, err := call[string](ctx, c.http, 1, http.MethodPost, resolve(c.baseURL, logoutPath), logoutRequest{Token: accessToken})
	if err != nil {
		return "", err
	}
	return env.Message, nil
}
