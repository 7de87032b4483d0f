package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog/log"
)

// DefaultRefreshTimeout bounds a single refresh call.
const DefaultRefreshTimeout = 15 * time.Second

var errBodyNotReplayable = errors.New("request body cannot be replayed")

// Refresher renews the session when the backend rejects an access token.
// All decisions for one rejected request happen under a single lock, so
// concurrent rejections of the same token cause one refresh call; the rest
// reuse its result.
type Refresher struct {
	store   CredentialStore
	gateway Gateway
	timeout time.Duration

	mu       sync.Mutex
	calls    atomic.Int64
	rejected atomic.Bool
}

// RefresherOption configures a Refresher.
type RefresherOption func(*Refresher)

// WithRefreshTimeout overrides DefaultRefreshTimeout.
func WithRefreshTimeout(d time.Duration) RefresherOption {
	return func(r *Refresher) {
		if d > 0 {
			r.timeout = d
		}
	}
}

// NewRefresher creates a Refresher. gateway must not route through a
// Transport that uses this Refresher.
func NewRefresher(store CredentialStore, gateway Gateway, options ...RefresherOption) *Refresher {
	r := &Refresher{
		store:   store,
		gateway: gateway,
		timeout: DefaultRefreshTimeout,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// RefreshCount returns how many refresh calls were issued.
func (r *Refresher) RefreshCount() int64 {
	return r.calls.Load()
}

// SessionRejected reports whether the last refresh attempt was refused by
// the backend. The stored pair is then unusable; callers may discard it.
// A later successful refresh or reuse resets it.
func (r *Refresher) SessionRejected() bool {
	return r.rejected.Load()
}

// statusError is implemented by gateway errors that carry an HTTP status.
type statusError interface {
	HTTPStatus() int
}

// isRejection reports a 4xx answer to the refresh call. Transport failures
// and 5xx answers may succeed on a later attempt.
func isRejection(err error) bool {
	var se statusError
	if !errors.As(err, &se) {
		return false
	}
	return se.HTTPStatus() >= http.StatusBadRequest && se.HTTPStatus() < http.StatusInternalServerError
}

// Authenticate inspects a response and returns the request to send instead.
// A nil request means "do not retry": the response was not a 401, or the
// session could not be renewed (err then wraps ErrSessionExpired).
func (r *Refresher) Authenticate(ctx context.Context, resp *http.Response) (*http.Request, error) {
	if resp == nil || resp.StatusCode != http.StatusUnauthorized {
		return nil, nil
	}
	failed := resp.Request
	if failed == nil {
		return nil, fmt.Errorf("unauthorized response carries no request")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	token, err := r.freshToken(ctx, BearerToken(failed))
	if err != nil {
		return nil, err
	}
	return rebuild(ctx, failed, token)
}

// freshToken returns the access token the failed request should be replayed
// with, refreshing the session only when no other caller already did.
func (r *Refresher) freshToken(ctx context.Context, sent string) (string, error) {
	cred, err := r.current(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}

	if !isBlank(cred.AccessToken) && cred.AccessToken != sent {
		log.Debug().Msg("Access token already renewed, replaying with the stored token")
		r.rejected.Store(false)
		return cred.AccessToken, nil
	}

	if isBlank(cred.RefreshToken) {
		log.Info().Msg("No refresh token stored, session cannot be renewed")
		return "", fmt.Errorf("%w: no refresh token stored", ErrSessionExpired)
	}

	// Other callers may be waiting on this refresh, so it outlives the
	// cancellation of the request that triggered it.
	refreshCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	r.calls.Add(1)
	log.Info().Msg("Access token rejected, refreshing session")
	renewed, err := r.gateway.Refresh(refreshCtx, cred.RefreshToken)
	if err != nil {
		if isRejection(err) {
			r.rejected.Store(true)
			log.Warn().Err(err).Msg("Refresh token rejected")
			return "", fmt.Errorf("%w: %w: %w", ErrSessionExpired, ErrRefreshRejected, err)
		}
		log.Warn().Err(err).Msg("Token refresh failed")
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	if !renewed.IsEstablished() {
		log.Warn().Msg("Token refresh returned an incomplete token pair")
		return "", fmt.Errorf("%w: refresh returned an incomplete token pair", ErrSessionExpired)
	}

	if err := r.store.Save(refreshCtx, renewed.AccessToken, renewed.RefreshToken); err != nil {
		log.Error().Err(err).Msg("Failed to persist refreshed tokens")
		return "", fmt.Errorf("%w: %w", ErrSessionExpired, err)
	}
	r.rejected.Store(false)
	log.Info().Msg("Token refreshed and saved successfully.")
	return renewed.AccessToken, nil
}

// current reads the stored pair. Another process may have refreshed the
// session since this one cached it, so shared stores are read durably.
func (r *Refresher) current(ctx context.Context) (Credential, error) {
	if reloader, ok := r.store.(Reloader); ok {
		return reloader.Reload(ctx)
	}
	return r.store.Get(ctx)
}

// rebuild copies the failed request with the given bearer token.
func rebuild(ctx context.Context, failed *http.Request, token string) (*http.Request, error) {
	retry := failed.Clone(ctx)
	if failed.Body != nil && failed.Body != http.NoBody {
		if failed.GetBody == nil {
			return nil, errBodyNotReplayable
		}
		body, err := failed.GetBody()
		if err != nil {
			return nil, fmt.Errorf("%w: %w", errBodyNotReplayable, err)
		}
		retry.Body = body
	}
	retry.Header.Set(HeaderAuthorization, BearerValue(token))
	return retry, nil
}
