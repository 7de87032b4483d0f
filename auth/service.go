package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/eka-dev/ftracker/pkg/validation"
	"github.com/rs/zerolog/log"
)

// Service runs the session flows that write the credential store directly:
// login, registration and logout.
type Service struct {
	store   CredentialStore
	gateway Gateway
}

// NewService is the constructor for the session service.
func NewService(store CredentialStore, gateway Gateway) *Service {
	return &Service{store: store, gateway: gateway}
}

// Status describes the stored session.
type Status struct {
	LoggedIn  bool
	HasExpiry bool
	ExpiresAt time.Time
}

// Expired reports whether the access token's exp claim is in the past.
// The token may still be renewed through the refresh token.
func (s Status) Expired(now time.Time) bool {
	return s.HasExpiry && !now.Before(s.ExpiresAt)
}

func (s *Service) Login(ctx context.Context, email, password string) error {
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err := validation.ValidateNonEmptyString("password", password); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	cred, err := s.gateway.Login(ctx, email, password)
	if err != nil {
		return fmt.Errorf("login failed: %w", err)
	}
	return s.establish(ctx, cred)
}

// LoginWithGoogle starts a session from a Google ID token. The token is
// checked locally only for shape and expiry; the backend verifies it.
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) error {
	idToken = strings.TrimSpace(idToken)
	if err := validation.ValidateNonEmptyString("Google ID token", idToken); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if !IsJWT(idToken) {
		return fmt.Errorf("%w: Google ID token is not a JWT", ErrInvalidCredentials)
	}
	if exp, ok := TokenExpiry(idToken); ok && !time.Now().Before(exp) {
		return fmt.Errorf("%w: Google ID token expired at %s", ErrInvalidCredentials, exp.Format(time.RFC3339))
	}

	cred, err := s.gateway.LoginWithGoogle(ctx, idToken)
	if err != nil {
		return fmt.Errorf("google login failed: %w", err)
	}
	return s.establish(ctx, cred)
}

func (s *Service) Register(ctx context.Context, name, email, password string) error {
	if err := validation.ValidateNonEmptyString("name", name); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err := validation.ValidateEmail(email); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}
	if err := validation.ValidatePassword(password); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidCredentials, err)
	}

	cred, err := s.gateway.Register(ctx, name, email, password)
	if err != nil {
		return fmt.Errorf("registration failed: %w", err)
	}
	return s.establish(ctx, cred)
}

func (s *Service) establish(ctx context.Context, cred Credential) error {
	if !cred.IsEstablished() {
		return errors.New("backend returned an incomplete token pair")
	}
	if err := s.store.Save(ctx, cred.AccessToken, cred.RefreshToken); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	log.Info().Msg("Session established")
	return nil
}

// Logout ends the session on the backend and clears the local credential.
// The credential is cleared even when the backend call fails; that failure
// is still returned.
func (s *Service) Logout(ctx context.Context) (string, error) {
	cred, err := s.store.Get(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if isBlank(cred.AccessToken) {
		if err := s.store.Clear(ctx); err != nil {
			return "", fmt.Errorf("failed to clear session: %w", err)
		}
		return "", ErrNoSession
	}

	message, logoutErr := s.gateway.Logout(ctx, cred.AccessToken)
	if logoutErr != nil {
		log.Warn().Err(logoutErr).Msg("Logout request failed, clearing local session anyway")
		logoutErr = fmt.Errorf("logout request failed: %w", logoutErr)
	}

	if err := s.store.Clear(ctx); err != nil {
		return "", errors.Join(logoutErr, fmt.Errorf("failed to clear session: %w", err))
	}
	if logoutErr != nil {
		return "", logoutErr
	}
	return message, nil
}

// Discard clears the local credential without contacting the backend. It is
// used once the backend has refused the refresh token.
func (s *Service) Discard(ctx context.Context) error {
	if err := s.store.Clear(ctx); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	log.Info().Msg("Rejected session discarded")
	return nil
}

func (s *Service) Status(ctx context.Context) (Status, error) {
	cred, err := s.store.Get(ctx)
	if err != nil {
		return Status{}, fmt.Errorf("failed to read session: %w", err)
	}
	if !cred.IsEstablished() {
		return Status{}, nil
	}
	st := Status{LoggedIn: true}
	st.ExpiresAt, st.HasExpiry = TokenExpiry(cred.AccessToken)
	return st, nil
}
